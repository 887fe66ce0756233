package invoicing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/invoicing/backend/internal/domain/invoicing"
	"github.com/invoicing/backend/internal/domain/shared"
	"github.com/invoicing/backend/internal/domain/shared/valueobject"
)

// AuditModule is the module tag invoice audit entries are recorded under
const AuditModule = "invoicing"

// InvoiceService provides application-level invoice operations.
// It is the only component talking to the storage collaborators.
type InvoiceService struct {
	invoices     invoicing.InvoiceRepository
	companies    invoicing.CompanyRepository
	audit        shared.AuditRecorder
	logger       *zap.Logger
	now          func() time.Time
	baseCurrency string
}

// InvoiceServiceOption is a functional option for configuring InvoiceService
type InvoiceServiceOption func(*InvoiceService)

// WithClock overrides the time source, used by tests
func WithClock(now func() time.Time) InvoiceServiceOption {
	return func(s *InvoiceService) {
		s.now = now
	}
}

// WithBaseCurrency sets the currency used when a request carries none
func WithBaseCurrency(code string) InvoiceServiceOption {
	return func(s *InvoiceService) {
		if code != "" {
			s.baseCurrency = code
		}
	}
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(
	invoices invoicing.InvoiceRepository,
	companies invoicing.CompanyRepository,
	audit shared.AuditRecorder,
	logger *zap.Logger,
	opts ...InvoiceServiceOption,
) *InvoiceService {
	s := &InvoiceService{
		invoices:     invoices,
		companies:    companies,
		audit:        audit,
		logger:       logger,
		now:          time.Now,
		baseCurrency: valueobject.CurrencyRON,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ===================== Requests =====================

// InvoiceItemRequest is one billable line in a create/update request
type InvoiceItemRequest struct {
	ItemID       string          `json:"item_id" binding:"required"`
	Description  string          `json:"description"`
	Quantity     int64           `json:"quantity"`
	Price        decimal.Decimal `json:"price"`
	VATRate      decimal.Decimal `json:"vat_rate"`
	OtherTaxRate decimal.Decimal `json:"other_tax_rate"`
	DiscountRate decimal.Decimal `json:"discount_rate"`
}

// ExtendedInfoRequest is an invoice-level tax or discount entry
type ExtendedInfoRequest struct {
	Name         string          `json:"name" binding:"required"`
	Value        decimal.Decimal `json:"value"`
	IsPercentage bool            `json:"is_percentage"`
}

// CurrencyRequest carries the currency descriptor of an invoice.
// An empty base currency falls back to the service-wide default.
type CurrencyRequest struct {
	Selected     string          `json:"selected" binding:"omitempty,currencycode"`
	BaseCurrency string          `json:"base_currency" binding:"omitempty,currencycode"`
	ExchangeRate decimal.Decimal `json:"exchange_rate"`
}

// SaveInvoiceRequest carries the full field set for creating or replacing an invoice
type SaveInvoiceRequest struct {
	Name              string                `json:"name" binding:"required"`
	CompanyID         uuid.UUID             `json:"company_id" binding:"required"`
	ClientID          uuid.UUID             `json:"client_id" binding:"required"`
	ClientBankAccount string                `json:"client_bank_account"`
	Description       string                `json:"description"`
	Serie             string                `json:"serie"`
	IssueDate         time.Time             `json:"issue_date" binding:"required"`
	PaymentTerm       string                `json:"payment_term"`
	Language          string                `json:"language"`
	Template          string                `json:"template"`
	Note              string                `json:"note"`
	Type              string                `json:"type"`
	Currency          CurrencyRequest       `json:"currency"`
	Taxes             []ExtendedInfoRequest `json:"taxes"`
	Discounts         []ExtendedInfoRequest `json:"discounts"`
	Items             []InvoiceItemRequest  `json:"items" binding:"required,min=1,dive"`
	DeliveryDate      *time.Time            `json:"delivery_date"`
	MeansOfTransport  string                `json:"means_of_transport"`
	ClientLegalRep    string                `json:"client_legal_representative"`
	CompanyLegalRep   string                `json:"company_legal_representative"`
	ReverseTaxes      bool                  `json:"reverse_taxes"`
}

// RepetitiveDataRequest carries the recurring-billing descriptor
type RepetitiveDataRequest struct {
	IsActive bool      `json:"is_active"`
	Days     int       `json:"days" binding:"min=0"`
	StartOn  time.Time `json:"start_on"`
	EndOn    time.Time `json:"end_on"`
}

// InvoiceListFilter defines filtering options for invoice list queries
type InvoiceListFilter struct {
	CompanyID *uuid.UUID  `form:"company_id"`
	ClientIDs []uuid.UUID `form:"-"`
	CreatedBy *uuid.UUID  `form:"-"`
	FromDate  *time.Time  `form:"from_date" time_format:"2006-01-02"`
	ToDate    *time.Time  `form:"to_date" time_format:"2006-01-02"`
	Page      int         `form:"page"`
	PageSize  int         `form:"page_size"`
}

// ===================== Responses =====================

// InvoiceItemResponse represents a line item with its derived amounts
type InvoiceItemResponse struct {
	RowIndex     int             `json:"row_index"`
	ItemID       string          `json:"item_id"`
	Description  string          `json:"description"`
	Quantity     int64           `json:"quantity"`
	Price        decimal.Decimal `json:"price"`
	VATRate      decimal.Decimal `json:"vat_rate"`
	OtherTaxRate decimal.Decimal `json:"other_tax_rate"`
	DiscountRate decimal.Decimal `json:"discount_rate"`
	Amount       decimal.Decimal `json:"amount"`
	Total        decimal.Decimal `json:"total"`
}

// ExtendedInfoResponse represents an invoice-level tax or discount entry
type ExtendedInfoResponse struct {
	Name         string          `json:"name"`
	Value        decimal.Decimal `json:"value"`
	IsPercentage bool            `json:"is_percentage"`
}

// CurrencyResponse represents the currency descriptor with the effective code resolved
type CurrencyResponse struct {
	Selected     string          `json:"selected,omitempty"`
	BaseCurrency string          `json:"base_currency"`
	Effective    string          `json:"effective"`
	ExchangeRate decimal.Decimal `json:"exchange_rate"`
}

// RepetitiveDataResponse represents the recurring-billing descriptor
type RepetitiveDataResponse struct {
	IsActive bool      `json:"is_active"`
	Days     int       `json:"days"`
	StartOn  time.Time `json:"start_on"`
	EndOn    time.Time `json:"end_on"`
}

// InvoiceResponse represents an invoice in API responses.
// SubTotal, Total and DueDate are computed from the current state.
type InvoiceResponse struct {
	ID                uuid.UUID               `json:"id"`
	TenantID          uuid.UUID               `json:"tenant_id"`
	Name              string                  `json:"name"`
	CompanyID         uuid.UUID               `json:"company_id"`
	ClientID          uuid.UUID               `json:"client_id"`
	ClientBankAccount string                  `json:"client_bank_account,omitempty"`
	Description       string                  `json:"description,omitempty"`
	Serie             string                  `json:"serie,omitempty"`
	Number            int                     `json:"number"`
	IssueDate         time.Time               `json:"issue_date"`
	DueDate           time.Time               `json:"due_date"`
	PaymentTerm       string                  `json:"payment_term,omitempty"`
	Language          string                  `json:"language,omitempty"`
	Template          string                  `json:"template,omitempty"`
	Note              string                  `json:"note,omitempty"`
	Type              string                  `json:"type,omitempty"`
	Status            int                     `json:"status"`
	StatusText        string                  `json:"status_text"`
	Currency          CurrencyResponse        `json:"currency"`
	Taxes             []ExtendedInfoResponse  `json:"taxes"`
	Discounts         []ExtendedInfoResponse  `json:"discounts"`
	Items             []InvoiceItemResponse   `json:"items"`
	SubTotal          decimal.Decimal         `json:"sub_total"`
	Total             decimal.Decimal         `json:"total"`
	RelatedInvoiceID  *uuid.UUID              `json:"related_invoice_id,omitempty"`
	RelatedMention    string                  `json:"related_mention,omitempty"`
	Repetitive        *RepetitiveDataResponse `json:"repetitive_data,omitempty"`
	CreatedBy         *uuid.UUID              `json:"created_by,omitempty"`
	CreatedAt         time.Time               `json:"created_at"`
	UpdatedAt         time.Time               `json:"updated_at"`
	Version           int                     `json:"version"`
}

// StatusResponse is one entry of the status catalog
type StatusResponse struct {
	Value int    `json:"value"`
	Text  string `json:"text"`
}

// ===================== Operations =====================

// CreateInvoice creates a Draft invoice within the caller's company scope
func (s *InvoiceService) CreateInvoice(ctx context.Context, tenantID, actorID, companyScope uuid.UUID, req SaveInvoiceRequest) (*InvoiceResponse, error) {
	if req.CompanyID != companyScope {
		return nil, shared.NewValidationError("Company of invoice differs from selected company!")
	}
	company, err := s.companies.FindByID(ctx, tenantID, req.CompanyID)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, shared.NewValidationError("Issuing company does not exist")
	}

	invoice, err := invoicing.NewInvoiceBy(tenantID, actorID, s.toDraft(req))
	if err != nil {
		return nil, err
	}

	if err := s.invoices.Insert(ctx, invoice); err != nil {
		return nil, err
	}

	s.recordAudit(ctx, invoice, &actorID, "create", fmt.Sprintf("Invoice '%s' created", invoice.Name))
	return toInvoiceResponse(invoice), nil
}

// UpdateInvoice replaces the fields of a Draft invoice. Like creation, the
// invoice must stay within the caller's company scope.
func (s *InvoiceService) UpdateInvoice(ctx context.Context, tenantID, actorID, companyScope, id uuid.UUID, req SaveInvoiceRequest) (*InvoiceResponse, error) {
	if req.CompanyID != companyScope {
		return nil, shared.NewValidationError("Company of invoice differs from selected company!")
	}

	invoice, err := s.findInvoice(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if err := invoice.Update(s.toDraft(req)); err != nil {
		return nil, err
	}
	if err := s.invoices.Replace(ctx, invoice); err != nil {
		return nil, err
	}

	s.recordAudit(ctx, invoice, &actorID, "update", fmt.Sprintf("Invoice '%s' updated", invoice.Name))
	return toInvoiceResponse(invoice), nil
}

// ActivateInvoice issues a Draft invoice, assigning the next number in the
// issuing company's scope. Activations for the same company are serialized
// by the repository lock so two invoices cannot race to one number.
func (s *InvoiceService) ActivateInvoice(ctx context.Context, tenantID, actorID, id uuid.UUID) (*InvoiceResponse, error) {
	invoice, err := s.findInvoice(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	err = s.invoices.WithCompanyLock(ctx, tenantID, invoice.CompanyID, func(tx invoicing.InvoiceRepository) error {
		invoice, err = s.findInvoiceIn(ctx, tx, tenantID, id)
		if err != nil {
			return err
		}
		number, err := s.nextCompanyNumber(ctx, tx, tenantID, invoice.CompanyID)
		if err != nil {
			return err
		}
		if err := invoice.Activate(number); err != nil {
			return err
		}
		return tx.Replace(ctx, invoice)
	})
	if err != nil {
		return nil, err
	}

	s.recordAudit(ctx, invoice, &actorID, "activate", fmt.Sprintf("Invoice '%s' activated with number %d", invoice.Name, invoice.Number))
	return toInvoiceResponse(invoice), nil
}

// SetStatus applies a status-change command. Requesting the current status
// is a no-op success. Storno targets delegate to the reversal engine; any
// other target is a raw status write.
func (s *InvoiceService) SetStatus(ctx context.Context, tenantID, actorID, id uuid.UUID, change invoicing.StatusChange) (*InvoiceResponse, error) {
	invoice, err := s.findInvoice(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if invoice.Status == change.Status {
		return toInvoiceResponse(invoice), nil
	}

	if change.RequestsReversal() {
		return s.reverseInvoice(ctx, tenantID, actorID, invoice, change)
	}

	if err := invoice.WriteStatus(change.Status); err != nil {
		return nil, err
	}
	if err := s.invoices.Replace(ctx, invoice); err != nil {
		return nil, err
	}

	s.recordAudit(ctx, invoice, &actorID, "set_status", fmt.Sprintf("Invoice '%s' moved to %s", invoice.Name, invoice.Status))
	return toInvoiceResponse(invoice), nil
}

// reverseInvoice builds the storno counterpart and commits the pair as one
// unit; a failure anywhere leaves both records untouched.
func (s *InvoiceService) reverseInvoice(ctx context.Context, tenantID, actorID uuid.UUID, source *invoicing.Invoice, change invoicing.StatusChange) (*InvoiceResponse, error) {
	var pair *invoicing.ReversalPair

	err := s.invoices.WithCompanyLock(ctx, tenantID, source.CompanyID, func(tx invoicing.InvoiceRepository) error {
		fresh, err := s.findInvoiceIn(ctx, tx, tenantID, source.ID)
		if err != nil {
			return err
		}
		number, err := s.nextCompanyNumber(ctx, tx, tenantID, fresh.CompanyID)
		if err != nil {
			return err
		}
		pair, err = invoicing.BuildReversal(fresh, change, number, s.now())
		if err != nil {
			return err
		}
		return tx.CommitReversalPair(ctx, pair.Storno, pair.Source)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("invoice reversed",
		zap.String("source_id", pair.Source.ID.String()),
		zap.String("storno_id", pair.Storno.ID.String()),
		zap.Int("storno_number", pair.Storno.Number),
		zap.Bool("partial", change.Partial()))
	s.recordAudit(ctx, pair.Storno, &actorID, "reverse",
		fmt.Sprintf("Invoice '%s' storned by invoice #%d", pair.Source.Name, pair.Storno.Number))
	return toInvoiceResponse(pair.Source), nil
}

// SaveRepetitiveData replaces the recurring-billing descriptor of an invoice
func (s *InvoiceService) SaveRepetitiveData(ctx context.Context, tenantID, actorID, id, companyScope uuid.UUID, req RepetitiveDataRequest) (*InvoiceResponse, error) {
	invoice, err := s.findInvoice(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if invoice.CompanyID != companyScope {
		return nil, shared.ErrUnauthorized
	}

	invoice.SetRepetitiveData(invoicing.RepetitiveData{
		IsActive: req.IsActive,
		Days:     req.Days,
		StartOn:  req.StartOn,
		EndOn:    req.EndOn,
	})
	if err := s.invoices.Replace(ctx, invoice); err != nil {
		return nil, err
	}

	return toInvoiceResponse(invoice), nil
}

// DeleteInvoice soft-deletes an invoice. Deleting an absent invoice still
// succeeds, so the operation is idempotent for callers.
func (s *InvoiceService) DeleteInvoice(ctx context.Context, tenantID, actorID, id uuid.UUID) error {
	invoice, err := s.invoices.FindActiveByID(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if invoice == nil {
		return nil
	}

	invoice.MarkRemoved()
	if err := s.invoices.Replace(ctx, invoice); err != nil {
		return err
	}

	s.recordAudit(ctx, invoice, &actorID, "delete", fmt.Sprintf("Invoice '%s' removed", invoice.Name))
	return nil
}

// NextInvoiceNumber previews the next number in a client's scope.
// The authoritative number is assigned at activation in the company scope.
func (s *InvoiceService) NextInvoiceNumber(ctx context.Context, tenantID, clientID uuid.UUID) (int, error) {
	scope, err := s.invoices.ListActive(ctx, tenantID, invoicing.InvoiceFilter{
		ClientIDs: []uuid.UUID{clientID},
	})
	if err != nil {
		return 0, err
	}
	return invoicing.NextNumber(scope), nil
}

// GetInvoice returns invoice details
func (s *InvoiceService) GetInvoice(ctx context.Context, tenantID, id uuid.UUID) (*InvoiceResponse, error) {
	invoice, err := s.findInvoice(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	return toInvoiceResponse(invoice), nil
}

// ListInvoices lists non-removed invoices with filtering, paginated
func (s *InvoiceService) ListInvoices(ctx context.Context, tenantID uuid.UUID, filter InvoiceListFilter) (*shared.Paginated[InvoiceResponse], error) {
	page := shared.DefaultFilter()
	if filter.Page > 0 {
		page.Page = filter.Page
	}
	if filter.PageSize > 0 {
		page.PageSize = filter.PageSize
	}
	// Invoice listings order by issue date, not the generic created_at default.
	page.OrderBy = ""

	domainFilter := invoicing.InvoiceFilter{
		CompanyID: filter.CompanyID,
		ClientIDs: filter.ClientIDs,
		CreatedBy: filter.CreatedBy,
		From:      filter.FromDate,
		To:        filter.ToDate,
		Page:      page,
	}

	invoices, err := s.invoices.ListActive(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, err
	}
	total, err := s.invoices.CountActive(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, err
	}

	responses := make([]InvoiceResponse, len(invoices))
	for i := range invoices {
		responses[i] = *toInvoiceResponse(&invoices[i])
	}
	result := shared.NewPaginated(responses, total, page.Page, page.PageSize)
	return &result, nil
}

// Statuses returns the status catalog
func (s *InvoiceService) Statuses() []StatusResponse {
	all := invoicing.AllStatuses()
	responses := make([]StatusResponse, len(all))
	for i, status := range all {
		responses[i] = StatusResponse{Value: int(status), Text: status.String()}
	}
	return responses
}

// ListLogs returns the most recent invoice audit entries for the tenant
func (s *InvoiceService) ListLogs(ctx context.Context, tenantID uuid.UUID, limit int) ([]shared.AuditEntry, error) {
	if limit < 1 {
		limit = 50
	}
	return s.audit.ListRecent(ctx, tenantID, AuditModule, limit)
}

// ===================== Helpers =====================

func (s *InvoiceService) findInvoice(ctx context.Context, tenantID, id uuid.UUID) (*invoicing.Invoice, error) {
	return s.findInvoiceIn(ctx, s.invoices, tenantID, id)
}

func (s *InvoiceService) findInvoiceIn(ctx context.Context, repo invoicing.InvoiceRepository, tenantID, id uuid.UUID) (*invoicing.Invoice, error) {
	invoice, err := repo.FindActiveByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Invoice not found")
	}
	return invoice, nil
}

func (s *InvoiceService) nextCompanyNumber(ctx context.Context, repo invoicing.InvoiceRepository, tenantID, companyID uuid.UUID) (int, error) {
	scope, err := repo.ListActive(ctx, tenantID, invoicing.InvoiceFilter{CompanyID: &companyID})
	if err != nil {
		return 0, err
	}
	return invoicing.NextNumber(scope), nil
}

func (s *InvoiceService) recordAudit(ctx context.Context, invoice *invoicing.Invoice, actorID *uuid.UUID, action, message string) {
	if s.audit == nil {
		return
	}
	s.audit.Record(ctx, shared.NewAuditEntry(invoice.TenantID, AuditModule, action, invoice.ID, actorID, message))
}

func (s *InvoiceService) toDraft(req SaveInvoiceRequest) invoicing.Draft {
	items := make(invoicing.InvoiceItems, len(req.Items))
	for i, item := range req.Items {
		items[i] = invoicing.InvoiceItem{
			ItemID:       item.ItemID,
			Description:  item.Description,
			Quantity:     item.Quantity,
			Price:        item.Price,
			VATRate:      item.VATRate,
			OtherTaxRate: item.OtherTaxRate,
			DiscountRate: item.DiscountRate,
		}
	}

	base := req.Currency.BaseCurrency
	if base == "" {
		base = s.baseCurrency
	}

	return invoicing.Draft{
		Name:              req.Name,
		CompanyID:         req.CompanyID,
		ClientID:          req.ClientID,
		ClientBankAccount: req.ClientBankAccount,
		Description:       req.Description,
		Serie:             req.Serie,
		IssueDate:         req.IssueDate,
		PaymentTerm:       req.PaymentTerm,
		Language:          req.Language,
		Template:          req.Template,
		Note:              req.Note,
		Type:              req.Type,
		Currency: valueobject.CurrencyDetails{
			Selected:     req.Currency.Selected,
			BaseCurrency: base,
			ExchangeRate: req.Currency.ExchangeRate,
		},
		Taxes:            toExtendedInfos(req.Taxes),
		Discounts:        toExtendedInfos(req.Discounts),
		Items:            items,
		DeliveryDate:     req.DeliveryDate,
		MeansOfTransport: req.MeansOfTransport,
		ClientLegalRep:   req.ClientLegalRep,
		CompanyLegalRep:  req.CompanyLegalRep,
		ReverseTaxes:     req.ReverseTaxes,
	}
}

func toExtendedInfos(entries []ExtendedInfoRequest) invoicing.ExtendedInfos {
	infos := make(invoicing.ExtendedInfos, len(entries))
	for i, entry := range entries {
		infos[i] = invoicing.ExtendedInfo{
			Name:         entry.Name,
			Value:        entry.Value,
			IsPercentage: entry.IsPercentage,
		}
	}
	return infos
}

func toInvoiceResponse(inv *invoicing.Invoice) *InvoiceResponse {
	items := make([]InvoiceItemResponse, len(inv.Items))
	for i, item := range inv.Items {
		items[i] = InvoiceItemResponse{
			RowIndex:     item.RowIndex,
			ItemID:       item.ItemID,
			Description:  item.Description,
			Quantity:     item.Quantity,
			Price:        item.Price,
			VATRate:      item.VATRate,
			OtherTaxRate: item.OtherTaxRate,
			DiscountRate: item.DiscountRate,
			Amount:       item.Amount(),
			Total:        item.Total(),
		}
	}

	var repetitive *RepetitiveDataResponse
	if inv.Repetitive != nil {
		repetitive = &RepetitiveDataResponse{
			IsActive: inv.Repetitive.IsActive,
			Days:     inv.Repetitive.Days,
			StartOn:  inv.Repetitive.StartOn,
			EndOn:    inv.Repetitive.EndOn,
		}
	}

	return &InvoiceResponse{
		ID:                inv.ID,
		TenantID:          inv.TenantID,
		Name:              inv.Name,
		CompanyID:         inv.CompanyID,
		ClientID:          inv.ClientID,
		ClientBankAccount: inv.ClientBankAccount,
		Description:       inv.Description,
		Serie:             inv.Serie,
		Number:            inv.Number,
		IssueDate:         inv.IssueDate,
		DueDate:           inv.DueDate(),
		PaymentTerm:       inv.PaymentTerm,
		Language:          inv.Language,
		Template:          inv.Template,
		Note:              inv.Note,
		Type:              inv.Type,
		Status:            int(inv.Status),
		StatusText:        inv.Status.String(),
		Currency: CurrencyResponse{
			Selected:     inv.Currency.Selected,
			BaseCurrency: inv.Currency.BaseCurrency,
			Effective:    inv.Currency.Effective(),
			ExchangeRate: inv.Currency.Rate(),
		},
		Taxes:            toExtendedInfoResponses(inv.Taxes),
		Discounts:        toExtendedInfoResponses(inv.Discounts),
		Items:            items,
		SubTotal:         inv.SubTotal(),
		Total:            inv.Total(),
		RelatedInvoiceID: inv.RelatedInvoiceID,
		RelatedMention:   inv.RelatedMention,
		Repetitive:       repetitive,
		CreatedBy:        inv.GetCreatedBy(),
		CreatedAt:        inv.CreatedAt,
		UpdatedAt:        inv.UpdatedAt,
		Version:          inv.Version,
	}
}

func toExtendedInfoResponses(infos invoicing.ExtendedInfos) []ExtendedInfoResponse {
	responses := make([]ExtendedInfoResponse, len(infos))
	for i, info := range infos {
		responses[i] = ExtendedInfoResponse{
			Name:         info.Name,
			Value:        info.Value,
			IsPercentage: info.IsPercentage,
		}
	}
	return responses
}
