package reconcile

import "time"

// ActionType is the classification assigned to one record or row.
type ActionType string

const (
	// ActionCreate creates a new remote record.
	ActionCreate ActionType = "create"
	// ActionUpdate writes one or more field values to an existing record.
	ActionUpdate ActionType = "update"
	// ActionDelete removes a remote record.
	ActionDelete ActionType = "delete"
	// ActionKeep marks the surviving member of a duplicate group.
	ActionKeep ActionType = "keep"
	// ActionSkipHasValue skips a target that already holds a value.
	ActionSkipHasValue ActionType = "skip_has_value"
	// ActionSkipSourceEmpty skips an entity whose source field is empty.
	ActionSkipSourceEmpty ActionType = "skip_source_empty"
	// ActionSkipBlank skips a row whose mapped cells are all blank.
	ActionSkipBlank ActionType = "skip_blank"
	// ActionNotFound marks a row whose target record does not exist remotely.
	ActionNotFound ActionType = "not_found"
	// ActionError marks an item that cannot be attempted (e.g. missing UUID).
	ActionError ActionType = "error"
)

// RequiresCall reports whether executing the action invokes the sink.
func (a ActionType) RequiresCall() bool {
	switch a {
	case ActionCreate, ActionUpdate, ActionDelete:
		return true
	default:
		return false
	}
}

// FieldStatus tracks one field of an item through classification and execution.
type FieldStatus string

const (
	FieldPending FieldStatus = "pending"
	FieldApplied FieldStatus = "applied"
	FieldSkipped FieldStatus = "skipped"
	FieldFailed  FieldStatus = "failed"
	FieldInvalid FieldStatus = "invalid"
)

// FieldChange is a single field write planned for an item.
type FieldChange struct {
	// FieldID is the remote field identifier (custom field id or reserved name).
	FieldID string `json:"field_id"`

	// FieldType is the remote field type forwarded to the sink (e.g. "number", "text").
	FieldType string `json:"field_type,omitempty"`

	// Column is the upload column the value came from, if any.
	Column string `json:"column,omitempty"`

	// Current is the remote value before the run, when it was fetched.
	Current *Value `json:"current,omitempty"`

	// New is the value to write.
	New Value `json:"new"`

	Status FieldStatus `json:"status"`

	// Error holds a coercion or apply error for this field only.
	Error string `json:"error,omitempty"`
}

// Item is one classified unit produced by a policy.
type Item struct {
	// Ref identifies the source of the item: an entity id or "row N".
	Ref string `json:"ref"`

	// EntityID is the remote record the action targets, if known.
	EntityID string `json:"entity_id,omitempty"`

	// Label is a human readable name for previews and reports.
	Label string `json:"label,omitempty"`

	Action ActionType `json:"action"`

	// Key is the comparison key used to classify the item.
	Key string `json:"key,omitempty"`

	// Reason explains the classification.
	Reason string `json:"reason,omitempty"`

	// Changes lists planned field writes.
	Changes []FieldChange `json:"changes,omitempty"`

	// AllFieldsSkipped is set when every mapped field already had data.
	AllFieldsSkipped bool `json:"all_fields_skipped,omitempty"`

	// Payload carries policy-specific data for the applier.
	Payload any `json:"-"`
}

// PendingChanges returns the changes that will be sent to the sink.
func (i Item) PendingChanges() []FieldChange {
	var pending []FieldChange
	for _, c := range i.Changes {
		if c.Status == FieldPending {
			pending = append(pending, c)
		}
	}
	return pending
}

// ResultStatus is the outcome of one executed item.
type ResultStatus string

const (
	StatusSuccess ResultStatus = "success"
	StatusSkipped ResultStatus = "skipped"
	StatusFailed  ResultStatus = "failed"
)

// Result is the execution outcome of one item.
type Result struct {
	Ref      string       `json:"ref"`
	EntityID string       `json:"entity_id,omitempty"`
	Label    string       `json:"label,omitempty"`
	Action   ActionType   `json:"action"`
	Status   ResultStatus `json:"status"`

	// Key copies the item's comparison key.
	Key string `json:"key,omitempty"`

	// Fields holds per-field outcomes.
	Fields []FieldChange `json:"fields,omitempty"`

	// Error is the sanitized failure message.
	Error string `json:"error,omitempty"`

	// CreatedID is the id returned by the sink for created records.
	CreatedID string `json:"created_id,omitempty"`

	AllFieldsSkipped bool `json:"all_fields_skipped,omitempty"`

	// OwnerSkipped is set when a create succeeded only after dropping the owner.
	OwnerSkipped bool `json:"owner_skipped,omitempty"`

	// Reason copies the classification reason for skipped items.
	Reason string `json:"reason,omitempty"`
}

// Success reports whether the item did not fail.
func (r Result) Success() bool {
	return r.Status != StatusFailed
}

// Progress is reported after every item.
type Progress struct {
	Current int `json:"current"`
	Total   int `json:"total"`
}

// RunState is the lifecycle state of an execution run.
type RunState string

const (
	RunIdle      RunState = "idle"
	RunRunning   RunState = "running"
	RunCompleted RunState = "completed"
	RunAborted   RunState = "aborted"
)

// Run is one execution of a plan.
type Run struct {
	ID          string     `json:"id"`
	Engine      string     `json:"engine"`
	State       RunState   `json:"state"`
	Total       int        `json:"total"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Results     []Result   `json:"results"`
}
