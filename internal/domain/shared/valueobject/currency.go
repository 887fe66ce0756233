package valueobject

import (
	"database/sql/driver"
	"encoding/json"
	"errors"

	"github.com/shopspring/decimal"
)

// Common ISO 4217 currency codes used as defaults
const (
	CurrencyRON = "RON"
	CurrencyEUR = "EUR"
	CurrencyUSD = "USD"
)

// CurrencyDetails describes the currency an invoice is denominated in.
// Selected is optional; when empty the base currency applies. Callers must
// go through Effective instead of reading Selected directly.
type CurrencyDetails struct {
	Selected     string          `json:"selected,omitempty"`
	BaseCurrency string          `json:"base_currency"`
	ExchangeRate decimal.Decimal `json:"exchange_rate"`
}

// NewCurrencyDetails creates currency details with the given base currency
// and an exchange rate of 1
func NewCurrencyDetails(baseCurrency string) CurrencyDetails {
	return CurrencyDetails{
		BaseCurrency: baseCurrency,
		ExchangeRate: decimal.NewFromInt(1),
	}
}

// Effective returns the currency in force: the selected one when set,
// otherwise the base currency
func (c CurrencyDetails) Effective() string {
	if c.Selected == "" {
		return c.BaseCurrency
	}
	return c.Selected
}

// IsForeign reports whether a currency other than the base one is selected
func (c CurrencyDetails) IsForeign() bool {
	return c.Selected != "" && c.Selected != c.BaseCurrency
}

// Rate returns the exchange rate, defaulting to 1 when unset
func (c CurrencyDetails) Rate() decimal.Decimal {
	if c.ExchangeRate.IsZero() {
		return decimal.NewFromInt(1)
	}
	return c.ExchangeRate
}

// Value implements driver.Valuer for JSONB storage
func (c CurrencyDetails) Value() (driver.Value, error) {
	return json.Marshal(c)
}

// Scan implements sql.Scanner for JSONB storage
func (c *CurrencyDetails) Scan(value interface{}) error {
	if value == nil {
		*c = CurrencyDetails{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan CurrencyDetails: unsupported type")
	}

	if len(bytes) == 0 {
		*c = CurrencyDetails{}
		return nil
	}

	return json.Unmarshal(bytes, c)
}
