package invoicing

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/invoicing/backend/internal/domain/shared"
)

// ReversalPair is the outcome of building a storno: the freshly issued
// reversing invoice and the source with its side of the link applied.
// Nothing is persisted yet; the pair must be committed as one unit.
type ReversalPair struct {
	Storno *Invoice
	Source *Invoice
}

// BuildReversal constructs a storno invoice for an Active source.
//
// Full mode reverses every item; partial mode only the items whose
// reference ids appear in itemIDs. The storno copies the source's issuing
// fields, negates the item quantities, is dated now, and is issued
// immediately with the given company-scope number. Both sides of the pair
// get their reversal link; the source moves to Paid on a full reversal and
// stays Active on a partial one.
//
// The source is only mutated once every validation has passed, so a failed
// build leaves it untouched.
func BuildReversal(source *Invoice, change StatusChange, number int, now time.Time) (*ReversalPair, error) {
	if !change.RequestsReversal() {
		return nil, shared.NewValidationError("Status change does not request a reversal")
	}
	if !source.IsActive() {
		return nil, shared.NewDomainError("INVALID_STATE", "Only active invoices can be storned")
	}

	items := source.Items
	if change.Partial() {
		if len(change.StornoItemIDs) == 0 {
			return nil, shared.NewValidationError("Products not selected!")
		}
		items = filterItems(source.Items, change.StornoItemIDs)
	}

	creator := uuid.Nil
	if source.CreatedBy != nil {
		creator = *source.CreatedBy
	}
	storno, err := NewInvoiceBy(source.TenantID, creator, stornoDraft(source, items, change.Partial(), now))
	if err != nil {
		return nil, err
	}
	if err := storno.Activate(number); err != nil {
		return nil, err
	}
	if err := storno.WriteStatus(change.Status); err != nil {
		return nil, err
	}

	mention := fmt.Sprintf("Storno for invoice #%d", source.Number)
	if change.Partial() {
		mention = fmt.Sprintf("Partial storno for invoice #%d", source.Number)
	}
	storno.LinkReversal(source.ID, mention)

	sourceStatus := StatusPaid
	if change.Partial() {
		sourceStatus = StatusActive
	}
	if err := source.WriteStatus(sourceStatus); err != nil {
		return nil, err
	}
	source.LinkReversal(storno.ID, fmt.Sprintf(
		"Was storned in '%s'. Storno invoice number: #%d",
		now.Format("2006-01-02"), storno.Number))

	return &ReversalPair{Storno: storno, Source: source}, nil
}

func stornoDraft(source *Invoice, items InvoiceItems, partial bool, now time.Time) Draft {
	suffix := " - Storno"
	if partial {
		suffix = " - Partial Storno"
	}

	reversed := make(InvoiceItems, len(items))
	copy(reversed, items)
	for i := range reversed {
		reversed[i].Quantity = -reversed[i].Quantity
	}

	return Draft{
		Name:              source.Name + suffix,
		CompanyID:         source.CompanyID,
		ClientID:          source.ClientID,
		ClientBankAccount: source.ClientBankAccount,
		Description:       source.Description,
		Serie:             source.Serie,
		IssueDate:         now,
		PaymentTerm:       source.PaymentTerm,
		Language:          source.Language,
		Template:          source.Template,
		Note:              source.Note,
		Type:              source.Type,
		Currency:          source.Currency,
		Taxes:             source.Taxes,
		Discounts:         source.Discounts,
		Items:             reversed,
		DeliveryDate:      source.DeliveryDate,
		MeansOfTransport:  source.MeansOfTransport,
		ClientLegalRep:    source.ClientLegalRep,
		CompanyLegalRep:   source.CompanyLegalRep,
		ReverseTaxes:      source.ReverseTaxes,
	}
}

func filterItems(items InvoiceItems, itemIDs []string) InvoiceItems {
	selected := make(map[string]struct{}, len(itemIDs))
	for _, id := range itemIDs {
		selected[id] = struct{}{}
	}

	filtered := make(InvoiceItems, 0, len(itemIDs))
	for _, item := range items {
		if _, ok := selected[item.ItemID]; ok {
			filtered = append(filtered, item)
		}
	}
	return filtered
}
