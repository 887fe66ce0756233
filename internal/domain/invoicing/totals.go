package invoicing

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var oneHundred = decimal.NewFromInt(100)

// defaultPaymentTermDays applies when the payment term cannot be parsed
const defaultPaymentTermDays = 1

// Subtotal returns the sum of the item totals
func Subtotal(items []InvoiceItem) decimal.Decimal {
	sum := decimal.Zero
	for _, item := range items {
		sum = sum.Add(item.Total())
	}
	return sum
}

// Adjustment is the aggregate of a set of tax or discount entries:
// the percentage entries summed as a fraction of 1, and the absolute
// entries summed as a flat amount.
type Adjustment struct {
	PercentFraction decimal.Decimal
	Absolute        decimal.Decimal
}

// AggregateAdjustment folds extended-info entries into a single adjustment.
// Percentages are additive across entries, so 10% + 5% adjusts by 15%.
func AggregateAdjustment(entries []ExtendedInfo) Adjustment {
	adj := Adjustment{PercentFraction: decimal.Zero, Absolute: decimal.Zero}
	for _, entry := range entries {
		if entry.IsPercentage {
			adj.PercentFraction = adj.PercentFraction.Add(entry.Value.Div(oneHundred))
		} else {
			adj.Absolute = adj.Absolute.Add(entry.Value)
		}
	}
	return adj
}

// GrandTotal computes the invoice total: the subtotal scaled by the
// aggregated tax and discount percentages, then corrected by the absolute
// amounts. Percentages apply before absolutes; the order is not
// interchangeable when both kinds are present.
func GrandTotal(items []InvoiceItem, taxes, discounts []ExtendedInfo) decimal.Decimal {
	tax := AggregateAdjustment(taxes)
	discount := AggregateAdjustment(discounts)

	total := Subtotal(items)
	total = total.Mul(decimal.NewFromInt(1).Add(tax.PercentFraction))
	total = total.Mul(decimal.NewFromInt(1).Sub(discount.PercentFraction))
	return total.Add(tax.Absolute).Sub(discount.Absolute)
}

// DueDate returns the issue date plus the payment term in days. A payment
// term that does not parse as an integer degrades to one day; this never
// fails.
func DueDate(issueDate time.Time, paymentTerm string) time.Time {
	days, err := strconv.Atoi(strings.TrimSpace(paymentTerm))
	if err != nil {
		days = defaultPaymentTermDays
	}
	return issueDate.AddDate(0, 0, days)
}
