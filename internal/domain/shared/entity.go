package shared

import (
	"time"

	"github.com/google/uuid"
)

// Entity is the base interface for all domain entities
type Entity interface {
	GetID() uuid.UUID
	GetCreatedAt() time.Time
	GetUpdatedAt() time.Time
	IsRemoved() bool
}

// BaseEntity provides identity, timestamps and the soft-delete flag shared
// by every persisted domain type. Removed records stay addressable (reversal
// links keep pointing at them) but drop out of every active listing; nothing
// is ever physically erased.
type BaseEntity struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
	Removed   bool
}

// GetID returns the entity ID
func (e *BaseEntity) GetID() uuid.UUID {
	return e.ID
}

// GetCreatedAt returns the creation timestamp
func (e *BaseEntity) GetCreatedAt() time.Time {
	return e.CreatedAt
}

// GetUpdatedAt returns the last update timestamp
func (e *BaseEntity) GetUpdatedAt() time.Time {
	return e.UpdatedAt
}

// IsRemoved reports whether the entity has been soft-deleted
func (e *BaseEntity) IsRemoved() bool {
	return e.Removed
}

// MarkRemoved soft-deletes the entity
func (e *BaseEntity) MarkRemoved() {
	e.Removed = true
	e.UpdatedAt = time.Now()
}

// NewBaseEntity creates a new base entity with generated ID
func NewBaseEntity() BaseEntity {
	now := time.Now()
	return BaseEntity{
		ID:        uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}
