package invoicing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextNumber(t *testing.T) {
	tests := []struct {
		name     string
		scope    []Invoice
		expected int
	}{
		{
			name:     "empty scope starts at 1",
			scope:    nil,
			expected: 1,
		},
		{
			name: "one greater than the highest issued number",
			scope: []Invoice{
				{Number: 3, Status: StatusActive},
				{Number: 5, Status: StatusPaid},
			},
			expected: 6,
		},
		{
			name: "draft numbers are ignored",
			scope: []Invoice{
				{Number: 3, Status: StatusActive},
				{Number: 5, Status: StatusPaid},
				{Number: 99, Status: StatusDraft},
			},
			expected: 6,
		},
		{
			name: "only drafts in scope starts at 1",
			scope: []Invoice{
				{Number: 7, Status: StatusDraft},
			},
			expected: 1,
		},
		{
			name: "storno invoices count as issued",
			scope: []Invoice{
				{Number: 4, Status: StatusStorno},
			},
			expected: 5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NextNumber(tt.scope))
		})
	}
}
