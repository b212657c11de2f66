package reconcile

import (
	"encoding/json"
	"strings"

	"bulk-manager/core/utils"
)

// ValueKind discriminates the shapes a remote field value can take.
type ValueKind string

const (
	KindNull    ValueKind = "null"
	KindScalar  ValueKind = "scalar"
	KindNamed   ValueKind = "named"
	KindLabeled ValueKind = "labeled"
	KindList    ValueKind = "list"
)

// Value is a remote field value: a scalar, a {name} or {label} reference, or a list.
type Value struct {
	Kind   ValueKind `json:"kind"`
	Scalar any       `json:"scalar,omitempty"`
	ID     string    `json:"id,omitempty"`
	Name   string    `json:"name,omitempty"`
	Label  string    `json:"label,omitempty"`
	Items  []Value   `json:"items,omitempty"`
}

// Null is the absent value.
var Null = Value{Kind: KindNull}

// Scalar wraps a string, number or bool.
func Scalar(v any) Value {
	if v == nil {
		return Null
	}
	return Value{Kind: KindScalar, Scalar: v}
}

// ValueOf converts a decoded JSON value into a Value.
func ValueOf(raw any) Value {
	switch v := raw.(type) {
	case nil:
		return Null
	case Value:
		return v
	case []any:
		items := make([]Value, 0, len(v))
		for _, item := range v {
			items = append(items, ValueOf(item))
		}
		return Value{Kind: KindList, Items: items}
	case map[string]any:
		id, _ := v["id"].(string)
		if name, ok := v["name"].(string); ok {
			return Value{Kind: KindNamed, ID: id, Name: name}
		}
		if label, ok := v["label"].(string); ok {
			return Value{Kind: KindLabeled, ID: id, Label: label}
		}
		if value, ok := v["value"]; ok {
			return ValueOf(value)
		}
		return Value{Kind: KindScalar, Scalar: v}
	default:
		return Value{Kind: KindScalar, Scalar: v}
	}
}

// Display reduces any value shape to the text shown in previews and reports.
func (v Value) Display() string {
	switch v.Kind {
	case KindScalar:
		if m, ok := v.Scalar.(map[string]any); ok {
			b, err := json.Marshal(m)
			if err != nil {
				return ""
			}
			return string(b)
		}
		return utils.ToString(v.Scalar)
	case KindNamed:
		return v.Name
	case KindLabeled:
		return v.Label
	case KindList:
		parts := make([]string, 0, len(v.Items))
		for _, item := range v.Items {
			if s := item.Display(); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	default:
		return ""
	}
}

// IsPresent reports whether the value holds data worth preserving.
func (v Value) IsPresent() bool {
	switch v.Kind {
	case KindNull, "":
		return false
	case KindList:
		for _, item := range v.Items {
			if item.IsPresent() {
				return true
			}
		}
		return false
	default:
		return strings.TrimSpace(v.Display()) != ""
	}
}

// Raw converts the value back into the JSON shape the remote API accepts.
func (v Value) Raw() any {
	switch v.Kind {
	case KindScalar:
		return v.Scalar
	case KindNamed:
		m := map[string]any{"name": v.Name}
		if v.ID != "" {
			m["id"] = v.ID
		}
		return m
	case KindLabeled:
		m := map[string]any{"label": v.Label}
		if v.ID != "" {
			m["id"] = v.ID
		}
		return m
	case KindList:
		items := make([]any, 0, len(v.Items))
		for _, item := range v.Items {
			items = append(items, item.Raw())
		}
		return items
	default:
		return nil
	}
}

// FieldValue is the result of reading one field of one entity.
type FieldValue struct {
	HasValue bool  `json:"has_value"`
	Value    Value `json:"value"`

	// Err is set when the read itself failed.
	Err error `json:"-"`
}

// Present builds a FieldValue from a Value, deriving HasValue.
func Present(v Value) FieldValue {
	return FieldValue{HasValue: v.IsPresent(), Value: v}
}

// Record is a remote entity read through the source.
type Record struct {
	ID        string           `json:"id"`
	Type      string           `json:"type,omitempty"`
	Fields    map[string]Value `json:"fields"`
	CreatedAt string           `json:"created_at,omitempty"`
	ParentID  string           `json:"parent_id,omitempty"`
}

// Field returns the named field, or Null.
func (r Record) Field(key string) Value {
	if v, ok := r.Fields[key]; ok {
		return v
	}
	return Null
}

// Text returns the trimmed display text of a field.
func (r Record) Text(key string) string {
	return strings.TrimSpace(r.Field(key).Display())
}
