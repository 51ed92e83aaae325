package deadletter

import (
	"time"

	"github.com/omnicrm/backend/internal/domain/shared"
)

// MaxRetries is the retry budget of a dead-letter entry. Reaching it moves
// the entry to the terminal FAILED status.
const MaxRetries = 5

// maxStackTraceLen bounds stored diagnostic traces
const maxStackTraceLen = 4000

// Status represents the lifecycle status of a dead-letter entry
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusRetried  Status = "RETRIED"
	StatusResolved Status = "RESOLVED"
	StatusFailed   Status = "FAILED"
)

// IsTerminal returns true for statuses that accept no further changes
func (s Status) IsTerminal() bool {
	return s == StatusResolved || s == StatusFailed
}

// Entry is a durable record of a failed operation awaiting resolution or an
// explicit re-drive. Entries never leave RESOLVED or FAILED.
type Entry struct {
	shared.BaseEntity
	OperationType string         `gorm:"not null;size:100;index"`
	Payload       shared.JSONMap `gorm:"serializer:json;not null"`
	ErrorMessage  string         `gorm:"not null;size:500"`
	StackTrace    string         `gorm:"type:text"`
	RetryCount    int            `gorm:"not null;default:0"`
	Status        Status         `gorm:"not null;size:16;index"`
	LastRetriedAt *time.Time
}

// TableName overrides the gorm table name
func (Entry) TableName() string {
	return "dead_letter_queue"
}

// NewEntry creates a PENDING dead-letter entry for a failed operation.
// The stack trace is truncated to bound storage.
func NewEntry(operationType string, payload shared.JSONMap, cause error, stackTrace string) *Entry {
	message := "Unknown error"
	if cause != nil && cause.Error() != "" {
		message = cause.Error()
	}
	if len(stackTrace) > maxStackTraceLen {
		stackTrace = stackTrace[:maxStackTraceLen]
	}
	if payload == nil {
		payload = shared.JSONMap{}
	}

	return &Entry{
		BaseEntity:    shared.NewBaseEntity(),
		OperationType: operationType,
		Payload:       payload,
		ErrorMessage:  message,
		StackTrace:    stackTrace,
		Status:        StatusPending,
	}
}

// MarkResolved moves the entry to RESOLVED. It is a no-op when the entry is
// already terminal.
func (e *Entry) MarkResolved() {
	if e.Status.IsTerminal() {
		return
	}
	e.Status = StatusResolved
	e.UpdatedAt = time.Now()
}

// RegisterRetry records a retry attempt: the count is incremented and the
// entry becomes RETRIED, or FAILED once the count reaches MaxRetries.
// Terminal entries are left untouched.
func (e *Entry) RegisterRetry() {
	if e.Status.IsTerminal() {
		return
	}

	now := time.Now()
	e.RetryCount++
	e.LastRetriedAt = &now
	if e.RetryCount >= MaxRetries {
		e.Status = StatusFailed
	} else {
		e.Status = StatusRetried
	}
	e.UpdatedAt = now
}
