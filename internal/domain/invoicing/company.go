package invoicing

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/invoicing/backend/internal/domain/shared"
)

// BankDetails is one bank account of a company profile
type BankDetails struct {
	BankName     string `json:"bank_name"`
	Account      string `json:"account"`
	Currency     string `json:"currency"`
	SwiftBicCode string `json:"swift_bic_code"`
}

// BankDetailsList implements GORM Scanner/Valuer for JSONB storage
type BankDetailsList []BankDetails

// Value implements driver.Valuer interface for GORM to store as JSONB
func (b BankDetailsList) Value() (driver.Value, error) {
	if b == nil {
		return "[]", nil
	}
	return json.Marshal(b)
}

// Scan implements sql.Scanner interface for GORM to read from JSONB
func (b *BankDetailsList) Scan(value interface{}) error {
	return scanJSONB(value, b, func() { *b = BankDetailsList{} })
}

// VATDetails marks a period in which the company settles VAT at payment
type VATDetails struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// VATDetailsList implements GORM Scanner/Valuer for JSONB storage
type VATDetailsList []VATDetails

// Value implements driver.Valuer interface for GORM to store as JSONB
func (v VATDetailsList) Value() (driver.Value, error) {
	if v == nil {
		return "[]", nil
	}
	return json.Marshal(v)
}

// Scan implements sql.Scanner interface for GORM to read from JSONB
func (v *VATDetailsList) Scan(value interface{}) error {
	return scanJSONB(value, v, func() { *v = VATDetailsList{} })
}

// CompanyData is the issuer or client profile referenced from invoices.
// Invoices reference it by id; they do not own it.
type CompanyData struct {
	shared.TenantAggregateRoot
	Name                string
	Email               string
	PostalAddress       string
	ZipCode             string
	City                string
	Country             string
	Phone               string
	Website             string
	RegistrationCode    string
	TradeRegisterNumber string
	IsIndividual        bool
	VATCode             string
	EUVATCode           string
	UsingVAT            bool
	VATAtPayment        VATDetailsList
	IsUsingVATAtPayment bool
	BankAccounts        BankDetailsList
	LegalRepresentative string
}

// NewCompanyData creates a company profile for the tenant
func NewCompanyData(tenantID uuid.UUID, name string) (*CompanyData, error) {
	if name == "" {
		return nil, shared.NewValidationError("Company name cannot be empty")
	}
	return &CompanyData{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                name,
		BankAccounts:        BankDetailsList{},
		VATAtPayment:        VATDetailsList{},
	}, nil
}

// PrimaryBankAccount returns the first registered bank account, if any
func (c *CompanyData) PrimaryBankAccount() (BankDetails, bool) {
	if len(c.BankAccounts) == 0 {
		return BankDetails{}, false
	}
	return c.BankAccounts[0], true
}
