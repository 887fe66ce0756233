package invoicing

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestExportInvoices(t *testing.T) {
	f := newServiceFixture(t)
	exporter := NewExportService(f.companies)
	exporter.now = func() time.Time { return time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC) }

	invoices := []InvoiceResponse{
		{
			ID:         uuid.New(),
			Name:       "Services March",
			Serie:      "INV",
			Number:     4,
			ClientID:   f.clientID,
			IssueDate:  time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			DueDate:    time.Date(2024, 3, 16, 0, 0, 0, 0, time.UTC),
			StatusText: "Active",
			Total:      decimal.RequireFromString("457"),
			Currency:   CurrencyResponse{BaseCurrency: "EUR", Effective: "EUR"},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, exporter.ExportInvoices(context.Background(), &buf, f.tenantID, invoices))

	workbook, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer workbook.Close()

	cell := func(ref string) string {
		value, err := workbook.GetCellValue(exportSheetName, ref)
		require.NoError(t, err)
		return value
	}

	assert.Equal(t, "Invoices List 2024-05-10", cell("A1"))
	assert.Equal(t, "No.", cell("A2"))
	assert.Equal(t, "Status", cell("G2"))
	assert.Equal(t, "1", cell("A3"))
	assert.Equal(t, "Services March - INV #4", cell("B3"))
	assert.Equal(t, "Client SA", cell("C3"))
	assert.Equal(t, "457.00 EUR", cell("D3"))
	assert.Equal(t, "2024-03-01", cell("E3"))
	assert.Equal(t, "2024-03-16", cell("F3"))
	assert.Equal(t, "Active", cell("G3"))
}

func TestExportInvoicesUnknownClientFallsBackToID(t *testing.T) {
	f := newServiceFixture(t)
	exporter := NewExportService(f.companies)

	clientID := uuid.New()
	invoices := []InvoiceResponse{{
		ID:       uuid.New(),
		Name:     "Orphan",
		ClientID: clientID,
		Total:    decimal.Zero,
		Currency: CurrencyResponse{Effective: "EUR"},
	}}

	var buf bytes.Buffer
	require.NoError(t, exporter.ExportInvoices(context.Background(), &buf, f.tenantID, invoices))

	workbook, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer workbook.Close()

	value, err := workbook.GetCellValue(exportSheetName, "C3")
	require.NoError(t, err)
	assert.Equal(t, clientID.String(), value)
}
