package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/invoicing/backend/internal/domain/invoicing"
	"github.com/invoicing/backend/internal/domain/shared"
	"github.com/invoicing/backend/internal/infrastructure/persistence/models"
)

// GormCompanyRepository implements invoicing.CompanyRepository using GORM
type GormCompanyRepository struct {
	db *gorm.DB
}

// NewGormCompanyRepository creates a new GormCompanyRepository
func NewGormCompanyRepository(db *gorm.DB) *GormCompanyRepository {
	return &GormCompanyRepository{db: db}
}

// FindByID finds a company by ID for a tenant.
// Returns (nil, nil) when no matching company exists.
func (r *GormCompanyRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*invoicing.CompanyData, error) {
	var model models.CompanyDataModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save creates or overwrites a company profile
func (r *GormCompanyRepository) Save(ctx context.Context, company *invoicing.CompanyData) error {
	model := models.CompanyDataModelFromDomain(company)
	return r.db.WithContext(ctx).Save(model).Error
}

// ListForTenant lists company profiles for a tenant
func (r *GormCompanyRepository) ListForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]invoicing.CompanyData, error) {
	var companyModels []models.CompanyDataModel
	query := r.db.WithContext(ctx).Model(&models.CompanyDataModel{}).
		Where("tenant_id = ?", tenantID)

	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ? OR registration_code ILIKE ? OR vat_code ILIKE ?",
			searchPattern, searchPattern, searchPattern)
	}

	if filter.OrderBy != "" {
		orderDir := "ASC"
		if strings.ToLower(filter.OrderDir) == "desc" {
			orderDir = "DESC"
		}
		query = query.Order(filter.OrderBy + " " + orderDir)
	} else {
		query = query.Order("name ASC")
	}

	if offset := filter.Offset(); offset > 0 {
		query = query.Offset(offset)
	}
	if limit := filter.Limit(); limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&companyModels).Error; err != nil {
		return nil, err
	}
	companies := make([]invoicing.CompanyData, len(companyModels))
	for i, model := range companyModels {
		companies[i] = *model.ToDomain()
	}
	return companies, nil
}
