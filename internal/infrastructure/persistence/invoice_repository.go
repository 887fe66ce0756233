package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/invoicing/backend/internal/domain/invoicing"
	"github.com/invoicing/backend/internal/domain/shared"
	"github.com/invoicing/backend/internal/infrastructure/persistence/models"
)

// GormInvoiceRepository implements invoicing.InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// FindActiveByID finds a non-removed invoice by ID for a tenant.
// Returns (nil, nil) when no matching invoice exists.
func (r *GormInvoiceRepository) FindActiveByID(ctx context.Context, tenantID, id uuid.UUID) (*invoicing.Invoice, error) {
	var model models.InvoiceModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ? AND removed = FALSE", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// ListActive lists non-removed invoices for a tenant with filtering
func (r *GormInvoiceRepository) ListActive(ctx context.Context, tenantID uuid.UUID, filter invoicing.InvoiceFilter) ([]invoicing.Invoice, error) {
	var invoiceModels []models.InvoiceModel
	query := r.db.WithContext(ctx).Model(&models.InvoiceModel{}).
		Where("tenant_id = ? AND removed = FALSE", tenantID)
	query = r.applyInvoiceFilter(query, filter)

	if err := query.Find(&invoiceModels).Error; err != nil {
		return nil, err
	}
	invoices := make([]invoicing.Invoice, len(invoiceModels))
	for i, model := range invoiceModels {
		invoices[i] = *model.ToDomain()
	}
	return invoices, nil
}

// CountActive counts non-removed invoices matching the filter, without paging
func (r *GormInvoiceRepository) CountActive(ctx context.Context, tenantID uuid.UUID, filter invoicing.InvoiceFilter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.InvoiceModel{}).
		Where("tenant_id = ? AND removed = FALSE", tenantID)
	query = r.applyInvoiceConditions(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Insert persists a new invoice
func (r *GormInvoiceRepository) Insert(ctx context.Context, invoice *invoicing.Invoice) error {
	model := models.InvoiceModelFromDomain(invoice)
	return r.db.WithContext(ctx).Create(model).Error
}

// Replace overwrites an existing invoice with optimistic locking
func (r *GormInvoiceRepository) Replace(ctx context.Context, invoice *invoicing.Invoice) error {
	return replaceInvoice(r.db.WithContext(ctx), invoice)
}

// CommitReversalPair writes the storno invoice and the updated source invoice
// in a single transaction so a reader never observes one side of the link
// without the other.
func (r *GormInvoiceRepository) CommitReversalPair(ctx context.Context, storno, source *invoicing.Invoice) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(models.InvoiceModelFromDomain(storno)).Error; err != nil {
			return err
		}
		return replaceInvoice(tx, source)
	})
}

// WithCompanyLock runs fn inside a transaction holding the per-company
// activation lock. Sequence numbers are assigned under this lock, so two
// concurrent activations in the same company scope serialize instead of
// racing to the same number.
func (r *GormInvoiceRepository) WithCompanyLock(ctx context.Context, tenantID, companyID uuid.UUID, fn func(tx invoicing.InvoiceRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		key := fmt.Sprintf("invoice_activation:%s:%s", tenantID, companyID)
		if err := tx.Exec("SELECT pg_advisory_xact_lock(hashtextextended(?, 0))", key).Error; err != nil {
			return err
		}
		return fn(&GormInvoiceRepository{db: tx})
	})
}

// replaceInvoice updates every column of an existing invoice row. The domain
// mutators bump the aggregate version before the write, so the row is guarded
// by the version the aggregate was loaded at, one below the in-memory value.
func replaceInvoice(db *gorm.DB, invoice *invoicing.Invoice) error {
	model := models.InvoiceModelFromDomain(invoice)
	model.UpdatedAt = time.Now()

	result := db.Model(&models.InvoiceModel{}).
		Where("id = ? AND tenant_id = ? AND version = ?", invoice.ID, invoice.TenantID, invoice.Version-1).
		Select("*").
		Omit("id", "tenant_id", "created_at", "created_by").
		Updates(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}

	invoice.UpdatedAt = model.UpdatedAt
	return nil
}

// applyInvoiceFilter applies filter conditions plus ordering and paging
func (r *GormInvoiceRepository) applyInvoiceFilter(query *gorm.DB, filter invoicing.InvoiceFilter) *gorm.DB {
	query = r.applyInvoiceConditions(query, filter)

	if filter.Page.OrderBy != "" {
		orderDir := "ASC"
		if strings.ToLower(filter.Page.OrderDir) == "desc" {
			orderDir = "DESC"
		}
		query = query.Order(filter.Page.OrderBy + " " + orderDir)
	} else {
		query = query.Order("issue_date DESC, created_at DESC")
	}

	if offset := filter.Page.Offset(); offset > 0 {
		query = query.Offset(offset)
	}
	if limit := filter.Page.Limit(); limit > 0 {
		query = query.Limit(limit)
	}

	return query
}

// applyInvoiceConditions applies the filter's where-conditions only
func (r *GormInvoiceRepository) applyInvoiceConditions(query *gorm.DB, filter invoicing.InvoiceFilter) *gorm.DB {
	if filter.CompanyID != nil {
		query = query.Where("company_id = ?", *filter.CompanyID)
	}
	if len(filter.ClientIDs) > 0 {
		query = query.Where("client_id IN ?", filter.ClientIDs)
	}
	if filter.CreatedBy != nil {
		query = query.Where("created_by = ?", *filter.CreatedBy)
	}
	if len(filter.Statuses) > 0 {
		query = query.Where("status IN ?", filter.Statuses)
	}
	if filter.From != nil {
		query = query.Where("issue_date >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("issue_date <= ?", *filter.To)
	}
	if filter.Page.Search != "" {
		searchPattern := "%" + filter.Page.Search + "%"
		query = query.Where("name ILIKE ? OR serie ILIKE ? OR description ILIKE ?",
			searchPattern, searchPattern, searchPattern)
	}

	return query
}
