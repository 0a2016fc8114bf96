package models

import (
	"time"

	"github.com/creditmonitor/backend/internal/domain/ledger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ClientModel is the persistence model for ledger.Client
type ClientModel struct {
	BaseModel
	CompanyName   string          `gorm:"size:200;not null;index"`
	ContactPerson string          `gorm:"size:100"`
	Phone         string          `gorm:"size:20"`
	Email         string          `gorm:"size:100"`
	CreditLimit   decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`

	Invoices []InvoiceModel `gorm:"foreignKey:ClientID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name
func (ClientModel) TableName() string {
	return "clients"
}

// ToDomain converts the model to a domain client
func (m *ClientModel) ToDomain() *ledger.Client {
	return &ledger.Client{
		BaseEntity:    m.BaseModel.ToDomain(),
		CompanyName:   m.CompanyName,
		ContactPerson: m.ContactPerson,
		Phone:         m.Phone,
		Email:         m.Email,
		CreditLimit:   m.CreditLimit,
	}
}

// ClientModelFromDomain converts a domain client to its persistence model
func ClientModelFromDomain(c *ledger.Client) *ClientModel {
	m := &ClientModel{
		CompanyName:   c.CompanyName,
		ContactPerson: c.ContactPerson,
		Phone:         c.Phone,
		Email:         c.Email,
		CreditLimit:   c.CreditLimit,
	}
	m.FromDomainBaseEntity(c.BaseEntity)
	return m
}

// InvoiceModel is the persistence model for ledger.Invoice
type InvoiceModel struct {
	BaseModel
	ClientID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	InvoiceNumber string          `gorm:"size:50;not null;uniqueIndex"`
	InvoiceDate   time.Time       `gorm:"type:date;not null;index"`
	DueDate       time.Time       `gorm:"type:date;not null"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(14,2);not null"`

	Payments []PaymentModel `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name
func (InvoiceModel) TableName() string {
	return "invoices"
}

// ToDomain converts the model to a domain invoice
func (m *InvoiceModel) ToDomain() *ledger.Invoice {
	return &ledger.Invoice{
		BaseEntity:    m.BaseModel.ToDomain(),
		ClientID:      m.ClientID,
		InvoiceNumber: m.InvoiceNumber,
		InvoiceDate:   m.InvoiceDate,
		DueDate:       m.DueDate,
		TotalAmount:   m.TotalAmount,
	}
}

// InvoiceModelFromDomain converts a domain invoice to its persistence model
func InvoiceModelFromDomain(i *ledger.Invoice) *InvoiceModel {
	m := &InvoiceModel{
		ClientID:      i.ClientID,
		InvoiceNumber: i.InvoiceNumber,
		InvoiceDate:   i.InvoiceDate,
		DueDate:       i.DueDate,
		TotalAmount:   i.TotalAmount,
	}
	m.FromDomainBaseEntity(i.BaseEntity)
	return m
}

// PaymentModel is the persistence model for ledger.Payment
type PaymentModel struct {
	BaseModel
	InvoiceID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount      decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	PaymentDate time.Time       `gorm:"type:date;not null;index"`
	PaymentMode string          `gorm:"size:50"`
	Remarks     string          `gorm:"size:500"`
}

// TableName specifies the table name
func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain converts the model to a domain payment
func (m *PaymentModel) ToDomain() *ledger.Payment {
	return &ledger.Payment{
		BaseEntity:  m.BaseModel.ToDomain(),
		InvoiceID:   m.InvoiceID,
		Amount:      m.Amount,
		PaymentDate: m.PaymentDate,
		PaymentMode: m.PaymentMode,
		Remarks:     m.Remarks,
	}
}

// PaymentModelFromDomain converts a domain payment to its persistence model
func PaymentModelFromDomain(p *ledger.Payment) *PaymentModel {
	m := &PaymentModel{
		InvoiceID:   p.InvoiceID,
		Amount:      p.Amount,
		PaymentDate: p.PaymentDate,
		PaymentMode: p.PaymentMode,
		Remarks:     p.Remarks,
	}
	m.FromDomainBaseEntity(p.BaseEntity)
	return m
}
