package control

import (
	"time"
)

// Status is the lifecycle state of a processing log entry.
type Status string

const (
	StatusRunning Status = "running"
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// LogEntry is one pipeline-stage execution in the control log. An entry is
// opened when the stage starts and closed exactly once when it ends.
type LogEntry struct {
	ID               int64
	BatchID          string
	StepName         string
	Status           Status
	RecordsProcessed int
	RecordsSuccess   int
	RecordsFailed    int
	StartTime        time.Time
	EndTime          *time.Time
	ErrorMessage     *string
}

// ProcessingLogModel is the gorm model for the control log.
type ProcessingLogModel struct {
	ID               int64  `gorm:"primaryKey;autoIncrement"`
	BatchID          string `gorm:"not null;uniqueIndex"`
	StepName         string `gorm:"not null;index"`
	Status           string `gorm:"not null;default:'running'"`
	RecordsProcessed int    `gorm:"not null;default:0"`
	RecordsSuccess   int    `gorm:"not null;default:0"`
	RecordsFailed    int    `gorm:"not null;default:0"`
	StartTime        time.Time
	EndTime          *time.Time
	ErrorMessage     *string `gorm:"type:text"`
}

// TableName specifies the table name for GORM
func (ProcessingLogModel) TableName() string { return "processing_log" }

// ToDomain converts a ProcessingLogModel to a LogEntry
func (m *ProcessingLogModel) ToDomain() LogEntry {
	return LogEntry{
		ID:               m.ID,
		BatchID:          m.BatchID,
		StepName:         m.StepName,
		Status:           Status(m.Status),
		RecordsProcessed: m.RecordsProcessed,
		RecordsSuccess:   m.RecordsSuccess,
		RecordsFailed:    m.RecordsFailed,
		StartTime:        m.StartTime,
		EndTime:          m.EndTime,
		ErrorMessage:     m.ErrorMessage,
	}
}
