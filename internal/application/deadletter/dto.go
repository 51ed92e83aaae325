package deadletter

import (
	"time"

	"github.com/google/uuid"

	"github.com/omnicrm/backend/internal/domain/deadletter"
	"github.com/omnicrm/backend/internal/domain/shared"
)

// EntryResponse is the API representation of a dead letter entry
type EntryResponse struct {
	ID            uuid.UUID      `json:"id"`
	OperationType string         `json:"operation_type"`
	Payload       shared.JSONMap `json:"payload"`
	ErrorMessage  string         `json:"error_message"`
	RetryCount    int            `json:"retry_count"`
	Status        string         `json:"status"`
	LastRetriedAt *time.Time     `json:"last_retried_at,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
}

// ToEntryResponse converts a domain entry to its API representation
func ToEntryResponse(entry *deadletter.Entry) EntryResponse {
	return EntryResponse{
		ID:            entry.ID,
		OperationType: entry.OperationType,
		Payload:       entry.Payload,
		ErrorMessage:  entry.ErrorMessage,
		RetryCount:    entry.RetryCount,
		Status:        string(entry.Status),
		LastRetriedAt: entry.LastRetriedAt,
		CreatedAt:     entry.CreatedAt,
	}
}
