package migration

import "time"

// Status is the lifecycle state of a migration log.
type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Log records one field migration run.
type Log struct {
	ID            string `gorm:"primaryKey;size:36" json:"id"`
	RunID         string `gorm:"size:36;index" json:"run_id"`
	SourceFieldID string `gorm:"size:191;index" json:"source_field_id"`
	TargetFieldID string `gorm:"size:191;index" json:"target_field_id"`

	Processed int `json:"processed"`
	Updated   int `json:"updated"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`

	Status      Status     `gorm:"size:16;index" json:"status"`
	StartedAt   time.Time  `gorm:"index" json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// Details holds failure messages, capped at MaxDetails entries.
	Details []string `gorm:"serializer:json;type:text" json:"details"`
}

// TableName pins the table name.
func (Log) TableName() string {
	return "migration_logs"
}

// MaxDetails caps the number of detail lines stored per log.
const MaxDetails = 500
