package shared

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// AuditEntry describes a business action taken against an aggregate.
// Entries are informational: recording one must never fail the action itself.
type AuditEntry struct {
	ID       uuid.UUID  `json:"id"`
	TenantID uuid.UUID  `json:"tenant_id"`
	Module   string     `json:"module"`
	Action   string     `json:"action"`
	EntityID uuid.UUID  `json:"entity_id"`
	ActorID  *uuid.UUID `json:"actor_id,omitempty"`
	Message  string     `json:"message"`
	At       time.Time  `json:"at"`
}

// NewAuditEntry creates an audit entry stamped with the current time
func NewAuditEntry(tenantID uuid.UUID, module, action string, entityID uuid.UUID, actorID *uuid.UUID, message string) AuditEntry {
	return AuditEntry{
		ID:       uuid.New(),
		TenantID: tenantID,
		Module:   module,
		Action:   action,
		EntityID: entityID,
		ActorID:  actorID,
		Message:  message,
		At:       time.Now(),
	}
}

// AuditRecorder persists audit entries. Implementations swallow storage
// failures (logging them) so callers can record fire-and-forget.
type AuditRecorder interface {
	Record(ctx context.Context, entry AuditEntry)
	ListRecent(ctx context.Context, tenantID uuid.UUID, module string, limit int) ([]AuditEntry, error)
}
