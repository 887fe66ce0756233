package invoicing

// NextNumber returns the next sequence number for a scope of invoices:
// one greater than the highest number among issued (non-draft) invoices,
// or 1 when the scope holds none. Draft invoices carry no meaningful
// number and are skipped.
//
// The function never mutates state. Recording the assigned number, and
// serializing concurrent activations within a company scope, is the
// caller's responsibility.
func NextNumber(scope []Invoice) int {
	highest := 0
	for _, inv := range scope {
		if !inv.Status.IsIssued() {
			continue
		}
		if inv.Number > highest {
			highest = inv.Number
		}
	}
	return highest + 1
}
