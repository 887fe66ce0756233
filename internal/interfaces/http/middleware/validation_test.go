package middleware

import (
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type currencyPayload struct {
	Selected     string `json:"selected" binding:"omitempty,currencycode"`
	BaseCurrency string `json:"base_currency" binding:"required,currencycode"`
}

func TestSetupValidator_CurrencyCode(t *testing.T) {
	SetupValidator()

	v, ok := binding.Validator.Engine().(*validator.Validate)
	require.True(t, ok)

	tests := []struct {
		name    string
		payload currencyPayload
		wantErr bool
	}{
		{name: "base currency RON", payload: currencyPayload{BaseCurrency: "RON"}},
		{name: "selected EUR over USD base", payload: currencyPayload{Selected: "EUR", BaseCurrency: "USD"}},
		{name: "any ISO-shaped code", payload: currencyPayload{BaseCurrency: "GBP"}},
		{name: "empty selected allowed", payload: currencyPayload{Selected: "", BaseCurrency: "EUR"}},
		{name: "missing base currency", payload: currencyPayload{}, wantErr: true},
		{name: "too short", payload: currencyPayload{BaseCurrency: "EU"}, wantErr: true},
		{name: "too long", payload: currencyPayload{BaseCurrency: "EURO"}, wantErr: true},
		{name: "lowercase rejected", payload: currencyPayload{BaseCurrency: "ron"}, wantErr: true},
		{name: "digits rejected", payload: currencyPayload{BaseCurrency: "R0N"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.payload)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSetupValidator_UsesJSONFieldNames(t *testing.T) {
	SetupValidator()

	v, ok := binding.Validator.Engine().(*validator.Validate)
	require.True(t, ok)

	err := v.Struct(currencyPayload{})
	require.Error(t, err)

	verrs, ok := err.(validator.ValidationErrors)
	require.True(t, ok)
	require.Len(t, verrs, 1)
	assert.Equal(t, "base_currency", verrs[0].Field())
}
