package mapping

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"bulk-manager/core/tabular"

	"github.com/goccy/go-yaml"
)

// ErrInvalid marks a mapping that cannot drive a run.
var ErrInvalid = errors.New("invalid mapping")

// Reserved target names. Any other mapped_to value is a remote custom field id.
const (
	FieldName        = "name"
	FieldDomain      = "domain"
	FieldUUID        = "uuid"
	FieldOwner       = "owner"
	FieldParent      = "parent"
	FieldDescription = "description"
	FieldTags        = "tags"
)

var singletons = map[string]bool{
	FieldName:   true,
	FieldDomain: true,
	FieldUUID:   true,
	FieldOwner:  true,
	FieldParent: true,
}

var concatenated = map[string]bool{
	FieldDescription: true,
	FieldTags:        true,
}

// IsReserved reports whether target is a reserved field name rather than a custom field.
func IsReserved(target string) bool {
	return singletons[target] || concatenated[target]
}

// ColumnMapping binds one upload column to a target.
type ColumnMapping struct {
	CSVColumn string  `yaml:"csv_column" json:"csv_column"`
	MappedTo  *string `yaml:"mapped_to" json:"mapped_to"`

	// FieldType is forwarded to the sink for custom fields (e.g. "number", "text").
	FieldType string `yaml:"field_type,omitempty" json:"field_type,omitempty"`
}

// Target returns the mapped target, or "" when the column is ignored.
func (c ColumnMapping) Target() string {
	if c.MappedTo == nil {
		return ""
	}
	return strings.TrimSpace(*c.MappedTo)
}

// Type returns the field type forwarded to the sink. Columns without one are numeric.
func (c ColumnMapping) Type() string {
	if c.FieldType == "" {
		return "number"
	}
	return c.FieldType
}

// Coerce converts a non-blank cell to the column's type. Text and date cells always
// convert; every other type must parse as a number.
func (c ColumnMapping) Coerce(raw string) (any, error) {
	switch c.Type() {
	case "text", "string":
		return strings.TrimSpace(raw), nil
	case "date":
		return tabular.ToIsoDate(raw), nil
	default:
		return tabular.ToNumeric(raw)
	}
}

// FieldRule is one source to target copy for the field-copy engine.
type FieldRule struct {
	Source    string `yaml:"source" json:"source"`
	Target    string `yaml:"target" json:"target"`
	FieldType string `yaml:"field_type,omitempty" json:"field_type,omitempty"`
}

// Mapping is the immutable configuration of one run.
type Mapping struct {
	// EntityType is the remote listing the run works on (e.g. "features", "companies").
	EntityType string `yaml:"entity_type" json:"entity_type"`

	Columns []ColumnMapping `yaml:"columns,omitempty" json:"columns,omitempty"`
	Rules   []FieldRule     `yaml:"rules,omitempty" json:"rules,omitempty"`

	// KeyColumns are the reserved targets combined into the natural key.
	KeyColumns []string `yaml:"key_columns,omitempty" json:"key_columns,omitempty"`

	// AllowDuplicateKeys classifies a repeated natural key like any other row instead of
	// rejecting every occurrence after the first.
	AllowDuplicateKeys bool `yaml:"allow_duplicate_keys,omitempty" json:"allow_duplicate_keys,omitempty"`

	OnlyEmptyTargets bool `yaml:"only_empty_targets,omitempty" json:"only_empty_targets,omitempty"`
	PreserveExisting bool `yaml:"preserve_existing,omitempty" json:"preserve_existing,omitempty"`
}

// Load reads and validates a YAML mapping file.
func Load(path string) (Mapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Mapping{}, fmt.Errorf("failed to read mapping %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML (or JSON) mapping.
func Parse(data []byte) (Mapping, error) {
	var m Mapping
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Mapping{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if err := m.Validate(); err != nil {
		return Mapping{}, err
	}
	return m, nil
}

// Marshal renders the mapping as YAML.
func Marshal(m Mapping) ([]byte, error) {
	return yaml.Marshal(m)
}

// Validate checks that no reserved singleton target is claimed twice.
func (m Mapping) Validate() error {
	claimed := make(map[string]string)
	for _, c := range m.Columns {
		if strings.TrimSpace(c.CSVColumn) == "" {
			return fmt.Errorf("%w: entry with empty csv_column", ErrInvalid)
		}
		target := c.Target()
		if !singletons[target] {
			continue
		}
		if prev, ok := claimed[target]; ok {
			return fmt.Errorf("%w: columns %q and %q both map to %s", ErrInvalid, prev, c.CSVColumn, target)
		}
		claimed[target] = c.CSVColumn
	}
	for _, r := range m.Rules {
		if r.Source == "" || r.Target == "" {
			return fmt.Errorf("%w: field rule needs both source and target", ErrInvalid)
		}
		if r.Source == r.Target {
			return fmt.Errorf("%w: field rule copies %s onto itself", ErrInvalid, r.Source)
		}
	}
	return nil
}

// ColumnFor returns the column mapped to a reserved singleton target.
func (m Mapping) ColumnFor(target string) (string, bool) {
	for _, c := range m.Columns {
		if c.Target() == target {
			return c.CSVColumn, true
		}
	}
	return "", false
}

// ColumnsFor returns every column mapped to target, in mapping order.
func (m Mapping) ColumnsFor(target string) []string {
	var cols []string
	for _, c := range m.Columns {
		if c.Target() == target {
			cols = append(cols, c.CSVColumn)
		}
	}
	return cols
}

// CustomFields returns the columns mapped to remote custom fields.
func (m Mapping) CustomFields() []ColumnMapping {
	var out []ColumnMapping
	for _, c := range m.Columns {
		target := c.Target()
		if target == "" || IsReserved(target) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// CustomFieldIDs returns the distinct custom field ids in mapping order.
func (m Mapping) CustomFieldIDs() []string {
	seen := make(map[string]bool)
	var ids []string
	for _, c := range m.CustomFields() {
		if !seen[c.Target()] {
			seen[c.Target()] = true
			ids = append(ids, c.Target())
		}
	}
	return ids
}

// Target is a convenience for building a ColumnMapping in code.
func Target(name string) *string {
	return &name
}

// MissingColumns returns the mapped columns absent from header.
func (m Mapping) MissingColumns(header []string) []string {
	present := make(map[string]bool, len(header))
	for _, h := range header {
		present[h] = true
	}
	var missing []string
	for _, c := range m.Columns {
		if c.Target() != "" && !present[c.CSVColumn] {
			missing = append(missing, c.CSVColumn)
		}
	}
	return missing
}

// CheckHeader fails when a mapped column is missing from header.
func (m Mapping) CheckHeader(header []string) error {
	if len(header) == 0 {
		return fmt.Errorf("%w: upload has no header row", ErrInvalid)
	}
	if missing := m.MissingColumns(header); len(missing) > 0 {
		return fmt.Errorf("%w: upload is missing columns %s", ErrInvalid, strings.Join(missing, ", "))
	}
	return nil
}
