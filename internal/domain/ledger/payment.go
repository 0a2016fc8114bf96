package ledger

import (
	"strings"
	"time"

	"github.com/creditmonitor/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrPaymentExceedsOutstanding is returned when a payment would push the
// invoice's cumulative payments above its total amount.
var ErrPaymentExceedsOutstanding = shared.NewDomainError(
	"PAYMENT_EXCEEDS_OUTSTANDING", "Payment amount exceeds the invoice's outstanding balance")

// Payment represents a payment received against an invoice
type Payment struct {
	shared.BaseEntity
	InvoiceID   uuid.UUID
	Amount      decimal.Decimal
	PaymentDate time.Time
	PaymentMode string
	Remarks     string
}

// NewPayment creates a new payment for an invoice
func NewPayment(invoiceID uuid.UUID, amount decimal.Decimal, date time.Time, mode, remarks string) (*Payment, error) {
	if invoiceID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INVOICE", "Payment must belong to an invoice")
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if date.IsZero() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_DATE", "Payment date is required")
	}
	return &Payment{
		BaseEntity:  shared.NewBaseEntity(),
		InvoiceID:   invoiceID,
		Amount:      amount,
		PaymentDate: TruncateToDate(date),
		PaymentMode: strings.TrimSpace(mode),
		Remarks:     strings.TrimSpace(remarks),
	}, nil
}

// CheckPaymentFits verifies that a new payment of the given amount does not
// exceed the invoice's outstanding balance. Callers must hold the invoice row
// lock while the already-paid sum is computed.
func CheckPaymentFits(total, alreadyPaid, amount decimal.Decimal) error {
	outstanding := total.Sub(alreadyPaid)
	if amount.GreaterThan(outstanding) {
		return ErrPaymentExceedsOutstanding
	}
	return nil
}
