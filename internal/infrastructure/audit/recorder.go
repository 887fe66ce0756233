package audit

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/invoicing/backend/internal/domain/shared"
	"github.com/invoicing/backend/internal/infrastructure/persistence/models"
)

// GormRecorder persists audit entries with GORM. Write failures are logged
// and swallowed so the recorded action is never failed by its audit trail.
type GormRecorder struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewGormRecorder creates a new GormRecorder
func NewGormRecorder(db *gorm.DB, logger *zap.Logger) *GormRecorder {
	return &GormRecorder{db: db, logger: logger.Named("audit")}
}

// Record persists a single audit entry
func (r *GormRecorder) Record(ctx context.Context, entry shared.AuditEntry) {
	model := models.AuditEntryModel{
		ID:       entry.ID,
		TenantID: entry.TenantID,
		Module:   entry.Module,
		Action:   entry.Action,
		EntityID: entry.EntityID,
		ActorID:  entry.ActorID,
		Message:  entry.Message,
		At:       entry.At,
	}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		r.logger.Warn("failed to record audit entry",
			zap.String("module", entry.Module),
			zap.String("action", entry.Action),
			zap.String("entity_id", entry.EntityID.String()),
			zap.Error(err))
	}
}

// ListRecent returns the most recent audit entries for a tenant and module,
// newest first
func (r *GormRecorder) ListRecent(ctx context.Context, tenantID uuid.UUID, module string, limit int) ([]shared.AuditEntry, error) {
	if limit < 1 {
		limit = 50
	}

	var entryModels []models.AuditEntryModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND module = ?", tenantID, module).
		Order("at DESC").
		Limit(limit).
		Find(&entryModels).Error; err != nil {
		return nil, err
	}

	entries := make([]shared.AuditEntry, len(entryModels))
	for i, model := range entryModels {
		entries[i] = shared.AuditEntry{
			ID:       model.ID,
			TenantID: model.TenantID,
			Module:   model.Module,
			Action:   model.Action,
			EntityID: model.EntityID,
			ActorID:  model.ActorID,
			Message:  model.Message,
			At:       model.At,
		}
	}
	return entries, nil
}
