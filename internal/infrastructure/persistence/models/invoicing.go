package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/invoicing/backend/internal/domain/invoicing"
	"github.com/invoicing/backend/internal/domain/shared/valueobject"
)

// InvoiceModel is the persistence model for the Invoice aggregate.
// Item, tax and discount collections are stored as JSONB; totals and the
// due date are computed in the domain and never stored.
type InvoiceModel struct {
	TenantAggregateModel
	Name              string    `gorm:"not null"`
	CompanyID         uuid.UUID `gorm:"type:uuid;not null;index:idx_invoices_company"`
	ClientID          uuid.UUID `gorm:"type:uuid;not null;index:idx_invoices_client"`
	ClientBankAccount string
	Description       string
	Serie             string
	Number            int       `gorm:"not null"`
	IssueDate         time.Time `gorm:"not null"`
	PaymentTerm       string
	Language          string
	Template          string
	Note              string
	Type              string
	Status            int                         `gorm:"not null;index"`
	Currency          valueobject.CurrencyDetails `gorm:"type:jsonb"`
	Taxes             invoicing.ExtendedInfos     `gorm:"type:jsonb"`
	Discounts         invoicing.ExtendedInfos     `gorm:"type:jsonb"`
	Items             invoicing.InvoiceItems      `gorm:"type:jsonb;not null"`
	RelatedInvoiceID  *uuid.UUID                  `gorm:"type:uuid"`
	RelatedMention    string
	Repetitive        *invoicing.RepetitiveData `gorm:"type:jsonb"`
	DeliveryDate      *time.Time
	MeansOfTransport  string
	ClientLegalRep    string
	CompanyLegalRep   string
	ReverseTaxes      bool `gorm:"not null"`
	Removed           bool `gorm:"not null;index"`
}

// TableName specifies the table name for InvoiceModel
func (InvoiceModel) TableName() string {
	return "invoices"
}

// ToDomain converts the model to a domain Invoice
func (m *InvoiceModel) ToDomain() *invoicing.Invoice {
	inv := &invoicing.Invoice{
		Name:              m.Name,
		CompanyID:         m.CompanyID,
		ClientID:          m.ClientID,
		ClientBankAccount: m.ClientBankAccount,
		Description:       m.Description,
		Serie:             m.Serie,
		Number:            m.Number,
		IssueDate:         m.IssueDate,
		PaymentTerm:       m.PaymentTerm,
		Language:          m.Language,
		Template:          m.Template,
		Note:              m.Note,
		Type:              m.Type,
		Status:            invoicing.InvoiceStatus(m.Status),
		Currency:          m.Currency,
		Taxes:             m.Taxes,
		Discounts:         m.Discounts,
		Items:             m.Items,
		RelatedInvoiceID:  m.RelatedInvoiceID,
		RelatedMention:    m.RelatedMention,
		Repetitive:        m.Repetitive,
		DeliveryDate:      m.DeliveryDate,
		MeansOfTransport:  m.MeansOfTransport,
		ClientLegalRep:    m.ClientLegalRep,
		CompanyLegalRep:   m.CompanyLegalRep,
		ReverseTaxes:      m.ReverseTaxes,
	}
	inv.Removed = m.Removed
	m.PopulateDomain(&inv.TenantAggregateRoot)
	return inv
}

// InvoiceModelFromDomain converts a domain Invoice to the persistence model
func InvoiceModelFromDomain(inv *invoicing.Invoice) *InvoiceModel {
	m := &InvoiceModel{
		Name:              inv.Name,
		CompanyID:         inv.CompanyID,
		ClientID:          inv.ClientID,
		ClientBankAccount: inv.ClientBankAccount,
		Description:       inv.Description,
		Serie:             inv.Serie,
		Number:            inv.Number,
		IssueDate:         inv.IssueDate,
		PaymentTerm:       inv.PaymentTerm,
		Language:          inv.Language,
		Template:          inv.Template,
		Note:              inv.Note,
		Type:              inv.Type,
		Status:            int(inv.Status),
		Currency:          inv.Currency,
		Taxes:             inv.Taxes,
		Discounts:         inv.Discounts,
		Items:             inv.Items,
		RelatedInvoiceID:  inv.RelatedInvoiceID,
		RelatedMention:    inv.RelatedMention,
		Repetitive:        inv.Repetitive,
		DeliveryDate:      inv.DeliveryDate,
		MeansOfTransport:  inv.MeansOfTransport,
		ClientLegalRep:    inv.ClientLegalRep,
		CompanyLegalRep:   inv.CompanyLegalRep,
		ReverseTaxes:      inv.ReverseTaxes,
		Removed:           inv.Removed,
	}
	m.FromDomain(inv.TenantAggregateRoot)
	return m
}

// CompanyDataModel is the persistence model for company/client profiles
type CompanyDataModel struct {
	TenantAggregateModel
	Name                string `gorm:"not null;index"`
	Email               string
	PostalAddress       string
	ZipCode             string
	City                string
	Country             string
	Phone               string
	Website             string
	RegistrationCode    string
	TradeRegisterNumber string
	IsIndividual        bool `gorm:"not null"`
	VATCode             string
	EUVATCode           string
	UsingVAT            bool                      `gorm:"not null"`
	VATAtPayment        invoicing.VATDetailsList  `gorm:"type:jsonb"`
	IsUsingVATAtPayment bool                      `gorm:"not null"`
	BankAccounts        invoicing.BankDetailsList `gorm:"type:jsonb"`
	LegalRepresentative string
}

// TableName specifies the table name for CompanyDataModel
func (CompanyDataModel) TableName() string {
	return "companies"
}

// ToDomain converts the model to a domain CompanyData
func (m *CompanyDataModel) ToDomain() *invoicing.CompanyData {
	company := &invoicing.CompanyData{
		Name:                m.Name,
		Email:               m.Email,
		PostalAddress:       m.PostalAddress,
		ZipCode:             m.ZipCode,
		City:                m.City,
		Country:             m.Country,
		Phone:               m.Phone,
		Website:             m.Website,
		RegistrationCode:    m.RegistrationCode,
		TradeRegisterNumber: m.TradeRegisterNumber,
		IsIndividual:        m.IsIndividual,
		VATCode:             m.VATCode,
		EUVATCode:           m.EUVATCode,
		UsingVAT:            m.UsingVAT,
		VATAtPayment:        m.VATAtPayment,
		IsUsingVATAtPayment: m.IsUsingVATAtPayment,
		BankAccounts:        m.BankAccounts,
		LegalRepresentative: m.LegalRepresentative,
	}
	m.PopulateDomain(&company.TenantAggregateRoot)
	return company
}

// CompanyDataModelFromDomain converts a domain CompanyData to the persistence model
func CompanyDataModelFromDomain(company *invoicing.CompanyData) *CompanyDataModel {
	m := &CompanyDataModel{
		Name:                company.Name,
		Email:               company.Email,
		PostalAddress:       company.PostalAddress,
		ZipCode:             company.ZipCode,
		City:                company.City,
		Country:             company.Country,
		Phone:               company.Phone,
		Website:             company.Website,
		RegistrationCode:    company.RegistrationCode,
		TradeRegisterNumber: company.TradeRegisterNumber,
		IsIndividual:        company.IsIndividual,
		VATCode:             company.VATCode,
		EUVATCode:           company.EUVATCode,
		UsingVAT:            company.UsingVAT,
		VATAtPayment:        company.VATAtPayment,
		IsUsingVATAtPayment: company.IsUsingVATAtPayment,
		BankAccounts:        company.BankAccounts,
		LegalRepresentative: company.LegalRepresentative,
	}
	m.FromDomain(company.TenantAggregateRoot)
	return m
}

// AuditEntryModel is the persistence model for audit trail entries
type AuditEntryModel struct {
	ID       uuid.UUID  `gorm:"type:uuid;primary_key"`
	TenantID uuid.UUID  `gorm:"type:uuid;not null;index:idx_audit_tenant_module"`
	Module   string     `gorm:"not null;index:idx_audit_tenant_module"`
	Action   string     `gorm:"not null"`
	EntityID uuid.UUID  `gorm:"type:uuid;not null;index"`
	ActorID  *uuid.UUID `gorm:"type:uuid"`
	Message  string
	At       time.Time `gorm:"not null;index"`
}

// TableName specifies the table name for AuditEntryModel
func (AuditEntryModel) TableName() string {
	return "audit_entries"
}
