package invoicing

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/invoicing/backend/internal/domain/shared"
	"github.com/invoicing/backend/internal/domain/shared/valueobject"
)

func validDraft() Draft {
	return Draft{
		Name:        "Services March",
		CompanyID:   uuid.New(),
		ClientID:    uuid.New(),
		Serie:       "INV",
		IssueDate:   time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		PaymentTerm: "15",
		Currency:    valueobject.NewCurrencyDetails(valueobject.CurrencyEUR),
		Items: InvoiceItems{
			{ItemID: "item-1", Description: "Consulting", Quantity: 3, Price: dec("100"), VATRate: dec("19")},
			{ItemID: "item-2", Description: "Hosting", Quantity: 2, Price: dec("50")},
		},
	}
}

func TestNewInvoice(t *testing.T) {
	tenantID := uuid.New()

	t.Run("creates a draft with normalized row indexes", func(t *testing.T) {
		inv, err := NewInvoice(tenantID, validDraft())
		require.NoError(t, err)

		assert.Equal(t, StatusDraft, inv.Status)
		assert.Equal(t, tenantID, inv.TenantID)
		assert.Equal(t, 0, inv.Number)
		assert.Equal(t, 1, inv.Version)
		require.Len(t, inv.Items, 2)
		assert.Equal(t, 1, inv.Items[0].RowIndex)
		assert.Equal(t, 2, inv.Items[1].RowIndex)
	})

	t.Run("rejects empty item list", func(t *testing.T) {
		draft := validDraft()
		draft.Items = nil

		_, err := NewInvoice(tenantID, draft)
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "VALIDATION_FAILED", domainErr.Code)
	})

	t.Run("rejects missing company", func(t *testing.T) {
		draft := validDraft()
		draft.CompanyID = uuid.Nil

		_, err := NewInvoice(tenantID, draft)
		require.Error(t, err)
	})

	t.Run("rejects missing client", func(t *testing.T) {
		draft := validDraft()
		draft.ClientID = uuid.Nil

		_, err := NewInvoice(tenantID, draft)
		require.Error(t, err)
	})
}

func TestInvoiceComputedFields(t *testing.T) {
	inv, err := NewInvoice(uuid.New(), validDraft())
	require.NoError(t, err)

	// 3*100*1.19 + 2*50 = 457
	assert.True(t, dec("457").Equal(inv.SubTotal()))
	assert.True(t, dec("457").Equal(inv.Total()))
	assert.Equal(t, time.Date(2024, 3, 16, 0, 0, 0, 0, time.UTC), inv.DueDate())
}

func TestInvoiceUpdate(t *testing.T) {
	t.Run("replaces fields while draft", func(t *testing.T) {
		inv, err := NewInvoice(uuid.New(), validDraft())
		require.NoError(t, err)

		updated := validDraft()
		updated.Name = "Services April"
		updated.Items = InvoiceItems{{ItemID: "item-9", Quantity: 1, Price: dec("10")}}

		require.NoError(t, inv.Update(updated))
		assert.Equal(t, "Services April", inv.Name)
		require.Len(t, inv.Items, 1)
		assert.Equal(t, 2, inv.Version)
	})

	t.Run("rejected once issued", func(t *testing.T) {
		inv, err := NewInvoice(uuid.New(), validDraft())
		require.NoError(t, err)
		require.NoError(t, inv.Activate(1))

		before := *inv
		patch := validDraft()
		patch.Name = "Tampered"

		err = inv.Update(patch)
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_STATE", domainErr.Code)
		assert.Equal(t, before.Name, inv.Name)
		assert.Equal(t, before.Version, inv.Version)
	})

	t.Run("invalid draft leaves invoice unchanged", func(t *testing.T) {
		inv, err := NewInvoice(uuid.New(), validDraft())
		require.NoError(t, err)

		patch := validDraft()
		patch.Items = nil

		require.Error(t, inv.Update(patch))
		assert.Len(t, inv.Items, 2)
	})
}

func TestInvoiceActivate(t *testing.T) {
	t.Run("assigns number and moves to active", func(t *testing.T) {
		inv, err := NewInvoice(uuid.New(), validDraft())
		require.NoError(t, err)

		require.NoError(t, inv.Activate(6))
		assert.Equal(t, 6, inv.Number)
		assert.Equal(t, StatusActive, inv.Status)
	})

	t.Run("only drafts can be activated", func(t *testing.T) {
		inv, err := NewInvoice(uuid.New(), validDraft())
		require.NoError(t, err)
		require.NoError(t, inv.Activate(1))

		err = inv.Activate(2)
		require.Error(t, err)
		assert.Equal(t, 1, inv.Number)
	})

	t.Run("rejects non-positive numbers", func(t *testing.T) {
		inv, err := NewInvoice(uuid.New(), validDraft())
		require.NoError(t, err)

		require.Error(t, inv.Activate(0))
		assert.Equal(t, StatusDraft, inv.Status)
	})
}

func TestInvoiceWriteStatus(t *testing.T) {
	inv, err := NewInvoice(uuid.New(), validDraft())
	require.NoError(t, err)
	require.NoError(t, inv.Activate(1))

	require.NoError(t, inv.WriteStatus(StatusPaid))
	assert.Equal(t, StatusPaid, inv.Status)

	require.Error(t, inv.WriteStatus(InvoiceStatus(42)))
	assert.Equal(t, StatusPaid, inv.Status)
}

func TestInvoiceSetRepetitiveData(t *testing.T) {
	inv, err := NewInvoice(uuid.New(), validDraft())
	require.NoError(t, err)
	require.Nil(t, inv.Repetitive)

	start := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	inv.SetRepetitiveData(RepetitiveData{IsActive: true, Days: 30, StartOn: start, EndOn: start.AddDate(1, 0, 0)})

	require.NotNil(t, inv.Repetitive)
	assert.True(t, inv.Repetitive.IsActive)
	assert.Equal(t, 30, inv.Repetitive.Days)
}

func TestInvoiceMarkRemoved(t *testing.T) {
	inv, err := NewInvoice(uuid.New(), validDraft())
	require.NoError(t, err)
	require.False(t, inv.Removed)

	inv.MarkRemoved()
	assert.True(t, inv.Removed)
}

func TestInvoiceItemByID(t *testing.T) {
	inv, err := NewInvoice(uuid.New(), validDraft())
	require.NoError(t, err)

	item, ok := inv.ItemByID("item-2")
	require.True(t, ok)
	assert.Equal(t, "Hosting", item.Description)

	_, ok = inv.ItemByID("missing")
	assert.False(t, ok)
}
