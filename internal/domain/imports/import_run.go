package imports

import (
	"time"

	"gorm.io/datatypes"
)

const (
	RunStatusRunning    = "running"
	RunStatusCommitted  = "committed"
	RunStatusRolledBack = "rolled_back"
	RunStatusRejected   = "rejected"
)

// ImportRun is the audit record of one CSV import attempt.
type ImportRun struct {
	ID          uint           `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	UserID      *uint          `gorm:"column:user_id;index" json:"user_id,omitempty"`
	FileName    string         `gorm:"column:file_name;size:255" json:"file_name"`
	Status      string         `gorm:"column:status;size:20;not null;index" json:"status"`
	Message     string         `gorm:"column:message;type:text" json:"message"`
	RowCount    int            `gorm:"column:row_count" json:"row_count"`
	Stats       datatypes.JSON `gorm:"column:stats" json:"stats"`
	Diagnostics datatypes.JSON `gorm:"column:diagnostics" json:"diagnostics"`
	StartedAt   time.Time      `gorm:"column:started_at;not null" json:"started_at"`
	FinishedAt  *time.Time     `gorm:"column:finished_at" json:"finished_at,omitempty"`
}

func (ImportRun) TableName() string { return "import_runs" }
