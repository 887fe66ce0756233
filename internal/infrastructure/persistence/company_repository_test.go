package persistence

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/invoicing/backend/internal/domain/invoicing"
	"github.com/invoicing/backend/internal/domain/shared"
)

// newMockCompanyRepository creates a GormCompanyRepository with a mocked SQL connection
func newMockCompanyRepository(t *testing.T) (*GormCompanyRepository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormCompanyRepository(gormDB), mock, mockDB
}

func TestGormCompanyRepository_FindByID(t *testing.T) {
	t.Run("finds company within tenant", func(t *testing.T) {
		repo, mock, mockDB := newMockCompanyRepository(t)
		defer mockDB.Close()

		companyID := uuid.New()
		tenantID := uuid.New()

		rows := sqlmock.NewRows([]string{"id", "tenant_id", "version", "name", "bank_accounts"}).
			AddRow(companyID, tenantID, 1, "Client SA",
				[]byte(`[{"bank_name":"First Bank","account":"RO49AAAA1B31007593840000","currency":"RON"}]`))

		mock.ExpectQuery(`SELECT \* FROM "companies" WHERE tenant_id = \$1 AND id = \$2 ORDER BY .* LIMIT .*`).
			WithArgs(tenantID, companyID, 1).
			WillReturnRows(rows)

		company, err := repo.FindByID(context.Background(), tenantID, companyID)

		require.NoError(t, err)
		require.NotNil(t, company)
		assert.Equal(t, "Client SA", company.Name)
		require.Len(t, company.BankAccounts, 1)
		assert.Equal(t, "First Bank", company.BankAccounts[0].BankName)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns nil without error when company does not exist", func(t *testing.T) {
		repo, mock, mockDB := newMockCompanyRepository(t)
		defer mockDB.Close()

		companyID := uuid.New()
		tenantID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "companies" WHERE tenant_id = \$1 AND id = \$2 ORDER BY .* LIMIT .*`).
			WithArgs(tenantID, companyID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		company, err := repo.FindByID(context.Background(), tenantID, companyID)

		assert.NoError(t, err)
		assert.Nil(t, company)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormCompanyRepository_Save(t *testing.T) {
	t.Run("saves company profile", func(t *testing.T) {
		repo, mock, mockDB := newMockCompanyRepository(t)
		defer mockDB.Close()

		company, err := invoicing.NewCompanyData(uuid.New(), "Client SA")
		require.NoError(t, err)

		mock.ExpectExec(`UPDATE "companies" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err = repo.Save(context.Background(), company)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormCompanyRepository_ListForTenant(t *testing.T) {
	t.Run("lists companies matching search", func(t *testing.T) {
		repo, mock, mockDB := newMockCompanyRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()

		rows := sqlmock.NewRows([]string{"id", "tenant_id", "version", "name"}).
			AddRow(uuid.New(), tenantID, 1, "Client SA").
			AddRow(uuid.New(), tenantID, 1, "Client SRL")

		mock.ExpectQuery(`SELECT \* FROM "companies" WHERE tenant_id = \$1 AND \(name ILIKE .* ORDER BY name ASC LIMIT .*`).
			WillReturnRows(rows)

		companies, err := repo.ListForTenant(context.Background(), tenantID, shared.Filter{Search: "Client"})

		require.NoError(t, err)
		require.Len(t, companies, 2)
		assert.Equal(t, "Client SA", companies[0].Name)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
