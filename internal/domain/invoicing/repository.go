package invoicing

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/invoicing/backend/internal/domain/shared"
)

// InvoiceFilter narrows active-invoice listings. Zero fields do not filter.
type InvoiceFilter struct {
	CompanyID *uuid.UUID
	ClientIDs []uuid.UUID
	CreatedBy *uuid.UUID
	Statuses  []InvoiceStatus
	From      *time.Time
	To        *time.Time
	Page      shared.Filter
}

// InvoiceRepository is the storage contract for the invoice aggregate.
// "Active" in method names means not soft-deleted; removed invoices are
// invisible to every read. FindActiveByID returns (nil, nil) when no
// matching invoice exists.
type InvoiceRepository interface {
	FindActiveByID(ctx context.Context, tenantID, id uuid.UUID) (*Invoice, error)
	ListActive(ctx context.Context, tenantID uuid.UUID, filter InvoiceFilter) ([]Invoice, error)

	// CountActive counts the invoices ListActive would return, ignoring the
	// filter's paging.
	CountActive(ctx context.Context, tenantID uuid.UUID, filter InvoiceFilter) (int64, error)

	Insert(ctx context.Context, invoice *Invoice) error
	Replace(ctx context.Context, invoice *Invoice) error

	// CommitReversalPair writes the storno and the updated source as one
	// unit: a reader never sees one side of the link without the other.
	CommitReversalPair(ctx context.Context, storno, source *Invoice) error

	// WithCompanyLock runs fn inside a transaction that holds the
	// per-company activation lock; the repository handed to fn operates on
	// that transaction. Sequence-number assignment must happen under this
	// lock so concurrent activations in the same company scope cannot race
	// to the same number.
	WithCompanyLock(ctx context.Context, tenantID, companyID uuid.UUID, fn func(tx InvoiceRepository) error) error
}

// CompanyRepository is the storage contract for company/client profiles.
// FindByID returns (nil, nil) when no matching company exists.
type CompanyRepository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*CompanyData, error)
	Save(ctx context.Context, company *CompanyData) error
	ListForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]CompanyData, error)
}
