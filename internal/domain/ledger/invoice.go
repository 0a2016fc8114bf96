package ledger

import (
	"strings"
	"time"

	"github.com/creditmonitor/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceStatus is derived from an invoice's payments, never stored.
type InvoiceStatus string

const (
	StatusPaid    InvoiceStatus = "Paid"
	StatusPartial InvoiceStatus = "Partial"
	StatusUnpaid  InvoiceStatus = "Unpaid"
)

// Invoice represents a single invoice issued to a client. The invoice number
// is globally unique. An invoice owns its payments.
type Invoice struct {
	shared.BaseEntity
	ClientID      uuid.UUID
	InvoiceNumber string
	InvoiceDate   time.Time
	DueDate       time.Time
	TotalAmount   decimal.Decimal
}

// NewInvoice creates a new invoice for a client
func NewInvoice(clientID uuid.UUID, number string, invoiceDate, dueDate time.Time, total decimal.Decimal) (*Invoice, error) {
	number = strings.TrimSpace(number)
	if clientID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CLIENT", "Invoice must belong to a client")
	}
	if number == "" {
		return nil, shared.NewDomainError("INVALID_INVOICE_NUMBER", "Invoice number is required")
	}
	if len(number) > 50 {
		return nil, shared.NewDomainError("INVALID_INVOICE_NUMBER", "Invoice number cannot exceed 50 characters")
	}
	if invoiceDate.IsZero() || dueDate.IsZero() {
		return nil, shared.NewDomainError("INVALID_INVOICE_DATE", "Invoice date and due date are required")
	}
	if !total.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Invoice amount must be positive")
	}
	return &Invoice{
		BaseEntity:    shared.NewBaseEntity(),
		ClientID:      clientID,
		InvoiceNumber: number,
		InvoiceDate:   TruncateToDate(invoiceDate),
		DueDate:       TruncateToDate(dueDate),
		TotalAmount:   total,
	}, nil
}

// TruncateToDate drops the time-of-day component. All stored dates and every
// "today" comparison go through it so date equality is exact.
func TruncateToDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
