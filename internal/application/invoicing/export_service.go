package invoicing

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/invoicing/backend/internal/domain/invoicing"
)

const exportSheetName = "Invoices List"

var exportHeaders = []string{"No.", "Invoice", "Client", "Amount", "Date", "Due Date", "Status"}

// ExportService renders invoice lists to xlsx workbooks
type ExportService struct {
	companies invoicing.CompanyRepository
	now       func() time.Time
}

// NewExportService creates a new ExportService
func NewExportService(companies invoicing.CompanyRepository) *ExportService {
	return &ExportService{companies: companies, now: time.Now}
}

// ExportInvoices writes an xlsx workbook listing the given invoices to w.
// Layout: a dated title row, a header row, then one row per invoice with
// the client name resolved and the computed total with its currency.
func (s *ExportService) ExportInvoices(ctx context.Context, w io.Writer, tenantID uuid.UUID, invoices []InvoiceResponse) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(exportSheetName)
	if err != nil {
		return err
	}
	f.SetActiveSheet(index)

	if err := f.SetCellValue(exportSheetName, "A1", "Invoices List "+s.now().Format("2006-01-02")); err != nil {
		return err
	}

	for i, header := range exportHeaders {
		cell, err := excelize.CoordinatesToCellName(i+1, 2)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(exportSheetName, cell, header); err != nil {
			return err
		}
	}

	clientNames := make(map[uuid.UUID]string)
	for row, inv := range invoices {
		values := []interface{}{
			row + 1,
			fmt.Sprintf("%s - %s #%d", inv.Name, inv.Serie, inv.Number),
			s.clientName(ctx, tenantID, inv.ClientID, clientNames),
			fmt.Sprintf("%s %s", inv.Total.StringFixed(2), inv.Currency.Effective),
			inv.IssueDate.Format("2006-01-02"),
			inv.DueDate.Format("2006-01-02"),
			inv.StatusText,
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row+3)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(exportSheetName, cell, value); err != nil {
				return err
			}
		}
	}

	return f.Write(w)
}

// clientName resolves the client's display name, falling back to the raw id
// when the profile is unknown
func (s *ExportService) clientName(ctx context.Context, tenantID, clientID uuid.UUID, cache map[uuid.UUID]string) string {
	if name, ok := cache[clientID]; ok {
		return name
	}

	name := clientID.String()
	if s.companies != nil {
		if client, err := s.companies.FindByID(ctx, tenantID, clientID); err == nil && client != nil {
			name = client.Name
		}
	}
	cache[clientID] = name
	return name
}
