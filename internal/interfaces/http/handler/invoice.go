package handler

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	invoicingapp "github.com/invoicing/backend/internal/application/invoicing"
	"github.com/invoicing/backend/internal/domain/invoicing"
	"github.com/invoicing/backend/internal/domain/shared"
)

const excelContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// InvoiceHandler handles invoicing API endpoints
type InvoiceHandler struct {
	BaseHandler
	invoiceService *invoicingapp.InvoiceService
	exportService  *invoicingapp.ExportService
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(invoiceService *invoicingapp.InvoiceService, exportService *invoicingapp.ExportService) *InvoiceHandler {
	return &InvoiceHandler{
		invoiceService: invoiceService,
		exportService:  exportService,
	}
}

// StatusChangeRequest asks for a lifecycle transition. For reversal statuses,
// StornoItemIDs selects the items to reverse; empty means the full invoice.
type StatusChangeRequest struct {
	Status        int      `json:"status"`
	StornoItemIDs []string `json:"storno_item_ids"`
}

// RegisterRoutes registers all invoicing routes
func (h *InvoiceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	module := rg.Group("/invoicing")
	{
		invoices := module.Group("/invoices")
		{
			invoices.GET("", h.ListInvoices)
			invoices.GET("/my", h.ListMyInvoices)
			invoices.GET("/for-clients/:clients", h.ListInvoicesForClients)
			invoices.GET("/statuses", h.ListStatuses)
			invoices.GET("/next-number/:clientId", h.NextInvoiceNumber)
			invoices.GET("/:id", h.GetInvoice)
			invoices.POST("", h.CreateInvoice)
			invoices.PUT("/:id", h.UpdateInvoice)
			invoices.DELETE("/:id", h.DeleteInvoice)
			invoices.POST("/:id/activate", h.ActivateInvoice)
			invoices.POST("/:id/status", h.SetStatus)
			invoices.POST("/:id/repetitive", h.SaveRepetitiveData)
			invoices.POST("/export", h.ExportInvoices)
		}

		module.GET("/logs", h.ListLogs)
	}
}

// ListInvoices returns invoices for the tenant, filtered by query parameters
func (h *InvoiceHandler) ListInvoices(c *gin.Context) {
	tenant, err := tenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant scope")
		return
	}

	filter, ok := h.bindListFilter(c)
	if !ok {
		return
	}

	h.listWith(c, tenant, filter)
}

// ListMyInvoices returns invoices created by the calling user
func (h *InvoiceHandler) ListMyInvoices(c *gin.Context) {
	tenant, err := tenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant scope")
		return
	}
	actor := actorID(c)
	if actor == uuid.Nil {
		h.BadRequest(c, "A valid X-User-ID header is required")
		return
	}

	filter, ok := h.bindListFilter(c)
	if !ok {
		return
	}
	filter.CreatedBy = &actor

	h.listWith(c, tenant, filter)
}

// ListInvoicesForClients returns invoices issued to the given clients.
// The path parameter is a comma-separated list of client IDs.
func (h *InvoiceHandler) ListInvoicesForClients(c *gin.Context) {
	tenant, err := tenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant scope")
		return
	}

	clientIDs, err := parseClientIDs(c.Param("clients"))
	if err != nil {
		h.BadRequest(c, "Invalid client ID list")
		return
	}

	filter, ok := h.bindListFilter(c)
	if !ok {
		return
	}
	filter.ClientIDs = clientIDs

	h.listWith(c, tenant, filter)
}

func (h *InvoiceHandler) bindListFilter(c *gin.Context) (invoicingapp.InvoiceListFilter, bool) {
	var filter invoicingapp.InvoiceListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return filter, false
	}
	defaults := shared.DefaultFilter()
	if filter.Page <= 0 {
		filter.Page = defaults.Page
	}
	if filter.PageSize <= 0 {
		filter.PageSize = defaults.PageSize
	}
	return filter, true
}

func (h *InvoiceHandler) listWith(c *gin.Context, tenant uuid.UUID, filter invoicingapp.InvoiceListFilter) {
	result, err := h.invoiceService.ListInvoices(c.Request.Context(), tenant, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, result.Items, result.Page, result.PageSize, int(result.Total))
}

// GetInvoice returns a single invoice by ID
func (h *InvoiceHandler) GetInvoice(c *gin.Context) {
	tenant, err := tenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant scope")
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID format")
		return
	}

	invoice, err := h.invoiceService.GetInvoice(c.Request.Context(), tenant, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoice)
}

// CreateInvoice creates a draft invoice in the caller's company scope
func (h *InvoiceHandler) CreateInvoice(c *gin.Context) {
	tenant, err := tenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant scope")
		return
	}
	company, ok := companyScope(c)
	if !ok {
		h.BadRequest(c, "A valid X-Company-ID header is required")
		return
	}

	var req invoicingapp.SaveInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	invoice, err := h.invoiceService.CreateInvoice(c.Request.Context(), tenant, actorID(c), company, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, invoice)
}

// UpdateInvoice replaces the caller-supplied fields of a draft invoice
// within the caller's company scope
func (h *InvoiceHandler) UpdateInvoice(c *gin.Context) {
	tenant, err := tenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant scope")
		return
	}
	company, ok := companyScope(c)
	if !ok {
		h.BadRequest(c, "A valid X-Company-ID header is required")
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID format")
		return
	}

	var req invoicingapp.SaveInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	invoice, err := h.invoiceService.UpdateInvoice(c.Request.Context(), tenant, actorID(c), company, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoice)
}

// DeleteInvoice soft-deletes an invoice; deleting an already removed or
// unknown invoice succeeds
func (h *InvoiceHandler) DeleteInvoice(c *gin.Context) {
	tenant, err := tenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant scope")
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID format")
		return
	}

	if err := h.invoiceService.DeleteInvoice(c.Request.Context(), tenant, actorID(c), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ActivateInvoice issues a draft invoice, assigning its sequence number
func (h *InvoiceHandler) ActivateInvoice(c *gin.Context) {
	tenant, err := tenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant scope")
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID format")
		return
	}

	invoice, err := h.invoiceService.ActivateInvoice(c.Request.Context(), tenant, actorID(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoice)
}

// SetStatus applies a lifecycle transition; reversal statuses create a
// storno invoice linked to the source
func (h *InvoiceHandler) SetStatus(c *gin.Context) {
	tenant, err := tenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant scope")
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID format")
		return
	}

	var req StatusChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	status := invoicing.InvoiceStatus(req.Status)
	if !status.IsValid() {
		h.BadRequest(c, "Unknown invoice status")
		return
	}

	invoice, err := h.invoiceService.SetStatus(c.Request.Context(), tenant, actorID(c), id, invoicing.StatusChange{
		Status:        status,
		StornoItemIDs: req.StornoItemIDs,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoice)
}

// SaveRepetitiveData stores the recurring-billing descriptor of an invoice
func (h *InvoiceHandler) SaveRepetitiveData(c *gin.Context) {
	tenant, err := tenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant scope")
		return
	}
	company, ok := companyScope(c)
	if !ok {
		h.BadRequest(c, "A valid X-Company-ID header is required")
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID format")
		return
	}

	var req invoicingapp.RepetitiveDataRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	invoice, err := h.invoiceService.SaveRepetitiveData(c.Request.Context(), tenant, actorID(c), id, company, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoice)
}

// NextInvoiceNumber previews the sequence number the next issued invoice
// for the client would receive
func (h *InvoiceHandler) NextInvoiceNumber(c *gin.Context) {
	tenant, err := tenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant scope")
		return
	}
	clientID, err := uuid.Parse(c.Param("clientId"))
	if err != nil {
		h.BadRequest(c, "Invalid client ID format")
		return
	}

	number, err := h.invoiceService.NextInvoiceNumber(c.Request.Context(), tenant, clientID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"next_number": number})
}

// ListStatuses returns the invoice status catalog
func (h *InvoiceHandler) ListStatuses(c *gin.Context) {
	h.Success(c, h.invoiceService.Statuses())
}

// ExportInvoices streams the filtered invoice list as an Excel workbook
func (h *InvoiceHandler) ExportInvoices(c *gin.Context) {
	tenant, err := tenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant scope")
		return
	}

	filter, ok := h.bindListFilter(c)
	if !ok {
		return
	}

	result, err := h.invoiceService.ListInvoices(c.Request.Context(), tenant, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	filename := fmt.Sprintf("invoices_%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Type", excelContentType)
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)

	if err := h.exportService.ExportInvoices(c.Request.Context(), c.Writer, tenant, result.Items); err != nil {
		h.HandleError(c, err)
		return
	}
}

// ListLogs returns the most recent invoicing audit entries
func (h *InvoiceHandler) ListLogs(c *gin.Context) {
	tenant, err := tenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant scope")
		return
	}

	limit := 50
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			h.BadRequest(c, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	entries, err := h.invoiceService.ListLogs(c.Request.Context(), tenant, limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entries)
}

func parseClientIDs(raw string) ([]uuid.UUID, error) {
	parts := strings.Split(raw, ",")
	ids := make([]uuid.UUID, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := uuid.Parse(part)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("no client IDs supplied")
	}
	return ids, nil
}
