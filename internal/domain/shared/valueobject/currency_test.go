package valueobject

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCurrencyDetails(t *testing.T) {
	c := NewCurrencyDetails(CurrencyRON)

	assert.Equal(t, CurrencyRON, c.BaseCurrency)
	assert.Empty(t, c.Selected)
	assert.True(t, c.ExchangeRate.Equal(decimal.NewFromInt(1)))
}

func TestCurrencyDetails_Effective(t *testing.T) {
	c := NewCurrencyDetails(CurrencyRON)
	assert.Equal(t, CurrencyRON, c.Effective())

	c.Selected = CurrencyEUR
	assert.Equal(t, CurrencyEUR, c.Effective())
}

func TestCurrencyDetails_IsForeign(t *testing.T) {
	c := NewCurrencyDetails(CurrencyRON)
	assert.False(t, c.IsForeign())

	c.Selected = CurrencyRON
	assert.False(t, c.IsForeign())

	c.Selected = CurrencyUSD
	assert.True(t, c.IsForeign())
}

func TestCurrencyDetails_Rate(t *testing.T) {
	var c CurrencyDetails
	assert.True(t, c.Rate().Equal(decimal.NewFromInt(1)))

	c.ExchangeRate = decimal.RequireFromString("4.9752")
	assert.True(t, c.Rate().Equal(decimal.RequireFromString("4.9752")))
}

func TestCurrencyDetails_ScanValueRoundTrip(t *testing.T) {
	src := CurrencyDetails{
		Selected:     CurrencyEUR,
		BaseCurrency: CurrencyRON,
		ExchangeRate: decimal.RequireFromString("4.97"),
	}

	raw, err := src.Value()
	require.NoError(t, err)

	var dst CurrencyDetails
	require.NoError(t, dst.Scan(raw))

	assert.Equal(t, src.Selected, dst.Selected)
	assert.Equal(t, src.BaseCurrency, dst.BaseCurrency)
	assert.True(t, src.ExchangeRate.Equal(dst.ExchangeRate))
}

func TestCurrencyDetails_Scan(t *testing.T) {
	var c CurrencyDetails

	require.NoError(t, c.Scan(`{"base_currency":"USD","exchange_rate":"1"}`))
	assert.Equal(t, CurrencyUSD, c.BaseCurrency)

	require.NoError(t, c.Scan(nil))
	assert.Equal(t, CurrencyDetails{}, c)

	assert.Error(t, c.Scan(42))
}
