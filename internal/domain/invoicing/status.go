package invoicing

// InvoiceStatus represents the lifecycle status of an invoice.
// The values are ordered: anything greater than StatusDraft has been issued
// and is no longer freely editable.
type InvoiceStatus int

const (
	StatusDraft         InvoiceStatus = 0
	StatusActive        InvoiceStatus = 1
	StatusPaid          InvoiceStatus = 2
	StatusStorno        InvoiceStatus = 3
	StatusPartialStorno InvoiceStatus = 4
)

// IsValid checks if the status is a valid InvoiceStatus
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case StatusDraft, StatusActive, StatusPaid, StatusStorno, StatusPartialStorno:
		return true
	}
	return false
}

// String returns the readable text of the status
func (s InvoiceStatus) String() string {
	switch s {
	case StatusDraft:
		return "Draft"
	case StatusActive:
		return "Active"
	case StatusPaid:
		return "Paid"
	case StatusStorno:
		return "Storno"
	case StatusPartialStorno:
		return "Partial Storno"
	}
	return "Unknown"
}

// IsIssued returns true once the invoice has left Draft
func (s InvoiceStatus) IsIssued() bool {
	return s > StatusDraft
}

// IsReversal returns true for the statuses a storno invoice carries
func (s InvoiceStatus) IsReversal() bool {
	return s == StatusStorno || s == StatusPartialStorno
}

// AllStatuses returns the status catalog in order
func AllStatuses() []InvoiceStatus {
	return []InvoiceStatus{StatusDraft, StatusActive, StatusPaid, StatusStorno, StatusPartialStorno}
}

// StatusChange is the command for a status transition. The target status
// decides which extra data applies: StatusPartialStorno requires the item
// references to reverse, every other target carries nothing extra.
type StatusChange struct {
	Status        InvoiceStatus
	StornoItemIDs []string
}

// RequestsReversal returns true when the change delegates to the reversal engine
func (c StatusChange) RequestsReversal() bool {
	return c.Status.IsReversal()
}

// Partial returns true for a partial reversal request
func (c StatusChange) Partial() bool {
	return c.Status == StatusPartialStorno
}
