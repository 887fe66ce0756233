package invoicing

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/invoicing/backend/internal/domain/shared"
	"github.com/invoicing/backend/internal/domain/shared/valueobject"
)

// InvoiceItem represents one billable line of an invoice
// This is a value object within the Invoice aggregate, stored as JSONB
type InvoiceItem struct {
	RowIndex     int             `json:"row_index"`
	ItemID       string          `json:"item_id"`
	Description  string          `json:"description"`
	Quantity     int64           `json:"quantity"`
	Price        decimal.Decimal `json:"price"`
	VATRate      decimal.Decimal `json:"vat_rate"`       // percent
	OtherTaxRate decimal.Decimal `json:"other_tax_rate"` // percent
	DiscountRate decimal.Decimal `json:"discount_rate"`  // percent
}

// Amount returns quantity times unit price
func (i InvoiceItem) Amount() decimal.Decimal {
	return decimal.NewFromInt(i.Quantity).Mul(i.Price)
}

// VATAmount returns the VAT portion of the line amount
func (i InvoiceItem) VATAmount() decimal.Decimal {
	return i.Amount().Mul(i.VATRate).Div(oneHundred)
}

// DiscountAmount returns the discount portion of the line amount
func (i InvoiceItem) DiscountAmount() decimal.Decimal {
	return i.Amount().Mul(i.DiscountRate).Div(oneHundred)
}

// OtherTaxAmount returns the other-tax portion of the line amount
func (i InvoiceItem) OtherTaxAmount() decimal.Decimal {
	return i.Amount().Mul(i.OtherTaxRate).Div(oneHundred)
}

// Total returns the line total with VAT and other taxes applied and the
// discount deducted, in that multiplicative order
func (i InvoiceItem) Total() decimal.Decimal {
	one := decimal.NewFromInt(1)
	return i.Amount().
		Mul(one.Add(i.VATRate.Div(oneHundred))).
		Mul(one.Add(i.OtherTaxRate.Div(oneHundred))).
		Mul(one.Sub(i.DiscountRate.Div(oneHundred)))
}

// InvoiceItems is a slice of InvoiceItem that implements GORM Scanner/Valuer for JSONB storage
type InvoiceItems []InvoiceItem

// Value implements driver.Valuer interface for GORM to store as JSONB
func (items InvoiceItems) Value() (driver.Value, error) {
	if items == nil {
		return "[]", nil
	}
	return json.Marshal(items)
}

// Scan implements sql.Scanner interface for GORM to read from JSONB
func (items *InvoiceItems) Scan(value interface{}) error {
	return scanJSONB(value, items, func() { *items = InvoiceItems{} })
}

// ExtendedInfo is a named tax or discount applied at invoice level,
// either as a percentage of the subtotal or as a flat amount
type ExtendedInfo struct {
	Name         string          `json:"name"`
	Value        decimal.Decimal `json:"value"`
	IsPercentage bool            `json:"is_percentage"`
}

// ExtendedInfos is a slice of ExtendedInfo that implements GORM Scanner/Valuer for JSONB storage
type ExtendedInfos []ExtendedInfo

// Value implements driver.Valuer interface for GORM to store as JSONB
func (e ExtendedInfos) Value() (driver.Value, error) {
	if e == nil {
		return "[]", nil
	}
	return json.Marshal(e)
}

// Scan implements sql.Scanner interface for GORM to read from JSONB
func (e *ExtendedInfos) Scan(value interface{}) error {
	return scanJSONB(value, e, func() { *e = ExtendedInfos{} })
}

// RepetitiveData describes the recurring-billing window of an invoice.
// It is orthogonal to the invoice lifecycle and only mutated via its own setter.
type RepetitiveData struct {
	IsActive bool      `json:"is_active"`
	Days     int       `json:"days"`
	StartOn  time.Time `json:"start_on"`
	EndOn    time.Time `json:"end_on"`
}

// Value implements driver.Valuer interface for GORM to store as JSONB
func (r RepetitiveData) Value() (driver.Value, error) {
	return json.Marshal(r)
}

// Scan implements sql.Scanner interface for GORM to read from JSONB
func (r *RepetitiveData) Scan(value interface{}) error {
	return scanJSONB(value, r, func() { *r = RepetitiveData{} })
}

func scanJSONB(value interface{}, dest interface{}, reset func()) error {
	if value == nil {
		reset()
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan JSONB value: unsupported type")
	}

	if len(bytes) == 0 {
		reset()
		return nil
	}

	return json.Unmarshal(bytes, dest)
}

// Draft carries the caller-supplied fields for creating or replacing an invoice
type Draft struct {
	Name              string
	CompanyID         uuid.UUID
	ClientID          uuid.UUID
	ClientBankAccount string
	Description       string
	Serie             string
	IssueDate         time.Time
	PaymentTerm       string
	Language          string
	Template          string
	Note              string
	Type              string
	Currency          valueobject.CurrencyDetails
	Taxes             ExtendedInfos
	Discounts         ExtendedInfos
	Items             InvoiceItems
	DeliveryDate      *time.Time
	MeansOfTransport  string
	ClientLegalRep    string
	CompanyLegalRep   string
	ReverseTaxes      bool
}

// Invoice is the aggregate root for a commercial invoice.
// Totals and the due date are always derived from the current items, taxes
// and discounts; they are never stored.
type Invoice struct {
	shared.TenantAggregateRoot
	Name              string
	CompanyID         uuid.UUID
	ClientID          uuid.UUID
	ClientBankAccount string
	Description       string
	Serie             string
	Number            int
	IssueDate         time.Time
	PaymentTerm       string
	Language          string
	Template          string
	Note              string
	Type              string
	Status            InvoiceStatus
	Currency          valueobject.CurrencyDetails
	Taxes             ExtendedInfos
	Discounts         ExtendedInfos
	Items             InvoiceItems
	RelatedInvoiceID  *uuid.UUID
	RelatedMention    string
	Repetitive        *RepetitiveData
	DeliveryDate      *time.Time
	MeansOfTransport  string
	ClientLegalRep    string
	CompanyLegalRep   string
	ReverseTaxes      bool
}

// NewInvoice creates a Draft invoice from the given fields.
// An invoice cannot exist without items.
func NewInvoice(tenantID uuid.UUID, draft Draft) (*Invoice, error) {
	return newInvoice(shared.NewTenantAggregateRoot(tenantID), draft)
}

// NewInvoiceBy creates a Draft invoice attributed to the given creator.
// A Nil creator leaves the invoice unattributed.
func NewInvoiceBy(tenantID, creatorID uuid.UUID, draft Draft) (*Invoice, error) {
	if creatorID == uuid.Nil {
		return NewInvoice(tenantID, draft)
	}
	return newInvoice(shared.NewTenantAggregateRootWithCreator(tenantID, creatorID), draft)
}

func newInvoice(root shared.TenantAggregateRoot, draft Draft) (*Invoice, error) {
	if err := validateDraft(draft); err != nil {
		return nil, err
	}

	inv := &Invoice{
		TenantAggregateRoot: root,
		Status:              StatusDraft,
	}
	inv.applyDraft(draft)
	return inv, nil
}

func validateDraft(draft Draft) error {
	if draft.CompanyID == uuid.Nil {
		return shared.NewValidationError("Company ID cannot be empty")
	}
	if draft.ClientID == uuid.Nil {
		return shared.NewValidationError("Client ID cannot be empty")
	}
	if len(draft.Items) == 0 {
		return shared.NewValidationError("Invoice cannot be created without items")
	}
	return nil
}

func (inv *Invoice) applyDraft(draft Draft) {
	inv.Name = draft.Name
	inv.CompanyID = draft.CompanyID
	inv.ClientID = draft.ClientID
	inv.ClientBankAccount = draft.ClientBankAccount
	inv.Description = draft.Description
	inv.Serie = draft.Serie
	inv.IssueDate = draft.IssueDate
	inv.PaymentTerm = draft.PaymentTerm
	inv.Language = draft.Language
	inv.Template = draft.Template
	inv.Note = draft.Note
	inv.Type = draft.Type
	inv.Currency = draft.Currency
	inv.Taxes = draft.Taxes
	inv.Discounts = draft.Discounts
	inv.Items = normalizeItems(draft.Items)
	inv.DeliveryDate = draft.DeliveryDate
	inv.MeansOfTransport = draft.MeansOfTransport
	inv.ClientLegalRep = draft.ClientLegalRep
	inv.CompanyLegalRep = draft.CompanyLegalRep
	inv.ReverseTaxes = draft.ReverseTaxes
}

// normalizeItems renumbers the user-facing row indexes from 1
func normalizeItems(items InvoiceItems) InvoiceItems {
	normalized := make(InvoiceItems, len(items))
	copy(normalized, items)
	for i := range normalized {
		normalized[i].RowIndex = i + 1
	}
	return normalized
}

// Update replaces the invoice's fields with the draft.
// Only Draft invoices can be modified this way; anything already issued
// accepts status transitions and repetitive-data edits only.
func (inv *Invoice) Update(draft Draft) error {
	if inv.Status.IsIssued() {
		return shared.NewDomainError("INVALID_STATE", "Invoice cannot be modified once it has been issued")
	}
	if err := validateDraft(draft); err != nil {
		return err
	}

	inv.applyDraft(draft)
	inv.UpdatedAt = time.Now()
	inv.IncrementVersion()
	return nil
}

// Activate issues the invoice: assigns the company-scoped sequence number
// and moves it to Active
func (inv *Invoice) Activate(number int) error {
	if number < 1 {
		return shared.NewValidationError("Invoice number must be positive")
	}
	if inv.Status != StatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Only draft invoices can be activated")
	}

	inv.Number = number
	inv.Status = StatusActive
	inv.UpdatedAt = time.Now()
	inv.IncrementVersion()
	return nil
}

// WriteStatus sets the status directly, without side effects.
// Reversal statuses go through the reversal engine instead.
func (inv *Invoice) WriteStatus(status InvoiceStatus) error {
	if !status.IsValid() {
		return shared.NewValidationError("Unknown invoice status")
	}

	inv.Status = status
	inv.UpdatedAt = time.Now()
	inv.IncrementVersion()
	return nil
}

// SetRepetitiveData replaces the recurring-billing descriptor
func (inv *Invoice) SetRepetitiveData(data RepetitiveData) {
	inv.Repetitive = &data
	inv.UpdatedAt = time.Now()
	inv.IncrementVersion()
}

// LinkReversal records the bidirectional storno relationship on this side
func (inv *Invoice) LinkReversal(relatedID uuid.UUID, mention string) {
	inv.RelatedInvoiceID = &relatedID
	inv.RelatedMention = mention
}

// MarkRemoved soft-deletes the invoice and bumps the lock version so the
// removal goes through the same guarded write as any other mutation
func (inv *Invoice) MarkRemoved() {
	inv.TenantAggregateRoot.MarkRemoved()
	inv.IncrementVersion()
}

// SubTotal returns the sum of the item totals
func (inv *Invoice) SubTotal() decimal.Decimal {
	return Subtotal(inv.Items)
}

// Total returns the grand total with invoice-level taxes and discounts applied
func (inv *Invoice) Total() decimal.Decimal {
	return GrandTotal(inv.Items, inv.Taxes, inv.Discounts)
}

// DueDate returns the issue date advanced by the payment term
func (inv *Invoice) DueDate() time.Time {
	return DueDate(inv.IssueDate, inv.PaymentTerm)
}

// IsDraft returns true while the invoice has not been issued
func (inv *Invoice) IsDraft() bool {
	return inv.Status == StatusDraft
}

// IsActive returns true for issued, open invoices
func (inv *Invoice) IsActive() bool {
	return inv.Status == StatusActive
}

// ItemByID returns the item with the given reference id
func (inv *Invoice) ItemByID(itemID string) (InvoiceItem, bool) {
	for _, item := range inv.Items {
		if item.ItemID == itemID {
			return item, true
		}
	}
	return InvoiceItem{}, false
}
