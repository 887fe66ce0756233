package invoicing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestInvoiceItemTotal(t *testing.T) {
	tests := []struct {
		name     string
		item     InvoiceItem
		expected string
	}{
		{
			name:     "plain item without taxes",
			item:     InvoiceItem{Quantity: 2, Price: dec("10")},
			expected: "20",
		},
		{
			name:     "vat only",
			item:     InvoiceItem{Quantity: 2, Price: dec("10"), VATRate: dec("19")},
			expected: "23.8",
		},
		{
			name:     "vat then other tax then discount",
			item:     InvoiceItem{Quantity: 3, Price: dec("4"), VATRate: dec("19"), OtherTaxRate: dec("5"), DiscountRate: dec("10")},
			expected: "13.4946",
		},
		{
			name:     "negative quantity negates the total",
			item:     InvoiceItem{Quantity: -2, Price: dec("10"), VATRate: dec("19")},
			expected: "-23.8",
		},
		{
			name:     "zero quantity",
			item:     InvoiceItem{Quantity: 0, Price: dec("99.99"), VATRate: dec("19")},
			expected: "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, dec(tt.expected).Equal(tt.item.Total()),
				"expected %s, got %s", tt.expected, tt.item.Total())
		})
	}
}

func TestInvoiceItemDerivedAmounts(t *testing.T) {
	item := InvoiceItem{Quantity: 4, Price: dec("25"), VATRate: dec("19"), OtherTaxRate: dec("2"), DiscountRate: dec("10")}

	assert.True(t, dec("100").Equal(item.Amount()))
	assert.True(t, dec("19").Equal(item.VATAmount()))
	assert.True(t, dec("2").Equal(item.OtherTaxAmount()))
	assert.True(t, dec("10").Equal(item.DiscountAmount()))
}

func TestSubtotalIsSumOfItemTotals(t *testing.T) {
	items := []InvoiceItem{
		{Quantity: 2, Price: dec("10"), VATRate: dec("10")},
		{Quantity: 1, Price: dec("5")},
		{Quantity: 3, Price: dec("4"), VATRate: dec("19"), OtherTaxRate: dec("5"), DiscountRate: dec("10")},
	}

	expected := decimal.Zero
	for _, item := range items {
		expected = expected.Add(item.Total())
	}

	assert.True(t, expected.Equal(Subtotal(items)))
	assert.True(t, Subtotal(nil).IsZero())
}

func TestAggregateAdjustment(t *testing.T) {
	entries := []ExtendedInfo{
		{Name: "VAT", Value: dec("10"), IsPercentage: true},
		{Name: "Eco tax", Value: dec("5"), IsPercentage: true},
		{Name: "Stamp", Value: dec("2.5")},
		{Name: "Handling", Value: dec("1.5")},
	}

	adj := AggregateAdjustment(entries)
	assert.True(t, dec("0.15").Equal(adj.PercentFraction))
	assert.True(t, dec("4").Equal(adj.Absolute))

	empty := AggregateAdjustment(nil)
	assert.True(t, empty.PercentFraction.IsZero())
	assert.True(t, empty.Absolute.IsZero())
}

func TestGrandTotal(t *testing.T) {
	items := []InvoiceItem{
		{Quantity: 2, Price: dec("10"), VATRate: dec("10")},
		{Quantity: 1, Price: dec("5")},
	}
	// subtotal = 22 + 5 = 27

	tests := []struct {
		name      string
		taxes     []ExtendedInfo
		discounts []ExtendedInfo
		expected  string
	}{
		{
			name:     "no adjustments",
			expected: "27",
		},
		{
			name:      "percentage tax and absolute discount",
			taxes:     []ExtendedInfo{{Value: dec("10"), IsPercentage: true}},
			discounts: []ExtendedInfo{{Value: dec("2")}},
			expected:  "27.7",
		},
		{
			name:      "mixed entries apply percentages before absolutes",
			taxes:     []ExtendedInfo{{Value: dec("10"), IsPercentage: true}, {Value: dec("5")}},
			discounts: []ExtendedInfo{{Value: dec("50"), IsPercentage: true}},
			expected:  "19.85",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GrandTotal(items, tt.taxes, tt.discounts)
			assert.True(t, dec(tt.expected).Equal(got), "expected %s, got %s", tt.expected, got)
		})
	}
}

func TestGrandTotalReversalSymmetry(t *testing.T) {
	items := []InvoiceItem{
		{Quantity: 3, Price: dec("12.5"), VATRate: dec("19")},
		{Quantity: 2, Price: dec("7"), DiscountRate: dec("5")},
	}
	taxes := []ExtendedInfo{{Value: dec("8"), IsPercentage: true}}
	discounts := []ExtendedInfo{{Value: dec("3"), IsPercentage: true}}

	negated := make([]InvoiceItem, len(items))
	copy(negated, items)
	for i := range negated {
		negated[i].Quantity = -negated[i].Quantity
	}

	original := GrandTotal(items, taxes, discounts)
	reversed := GrandTotal(negated, taxes, discounts)
	assert.True(t, original.Neg().Equal(reversed),
		"expected %s, got %s", original.Neg(), reversed)
}

func TestDueDate(t *testing.T) {
	issue := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		paymentTerm string
		expected    time.Time
	}{
		{
			name:        "numeric term adds that many days",
			paymentTerm: "15",
			expected:    time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC),
		},
		{
			name:        "unparsable term degrades to one day",
			paymentTerm: "abc",
			expected:    time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		},
		{
			name:        "empty term degrades to one day",
			paymentTerm: "",
			expected:    time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		},
		{
			name:        "surrounding whitespace is tolerated",
			paymentTerm: " 30 ",
			expected:    time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, DueDate(issue, tt.paymentTerm))
		})
	}
}
