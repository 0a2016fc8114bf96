package ledger

import (
	"time"

	"github.com/creditmonitor/backend/internal/domain/ledger"
	"github.com/creditmonitor/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DateLayout is the wire format for all date-only fields
const DateLayout = "2006-01-02"

// ParseDate parses a wire-format date string
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, shared.NewDomainError("INVALID_DATE", "Date must be in YYYY-MM-DD format")
	}
	return t, nil
}

// ParseOptionalDate parses a wire-format date string, treating "" as absent
func ParseOptionalDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := ParseDate(s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// =============================================================================
// Client DTOs
// =============================================================================

// CreateClientRequest represents a request to create a new client
type CreateClientRequest struct {
	CompanyName   string           `json:"company_name" binding:"required,min=1,max=200"`
	ContactPerson string           `json:"contact_person" binding:"max=100"`
	Phone         string           `json:"phone" binding:"max=20"`
	Email         string           `json:"email" binding:"omitempty,email,max=100"`
	CreditLimit   *decimal.Decimal `json:"credit_limit"`
}

// UpdateClientRequest represents a request to update a client
type UpdateClientRequest struct {
	CompanyName   *string          `json:"company_name" binding:"omitempty,min=1,max=200"`
	ContactPerson *string          `json:"contact_person" binding:"omitempty,max=100"`
	Phone         *string          `json:"phone" binding:"omitempty,max=20"`
	Email         *string          `json:"email" binding:"omitempty,email,max=100"`
	CreditLimit   *decimal.Decimal `json:"credit_limit"`
}

// ClientResponse represents a client in API responses, including the
// aggregated balance summary
type ClientResponse struct {
	ID               uuid.UUID       `json:"id"`
	CompanyName      string          `json:"company_name"`
	ContactPerson    string          `json:"contact_person"`
	Phone            string          `json:"phone"`
	Email            string          `json:"email"`
	CreditLimit      decimal.Decimal `json:"credit_limit"`
	TotalOutstanding decimal.Decimal `json:"total_outstanding"`
	TotalOverdue     decimal.Decimal `json:"total_overdue"`
	OverdueCount     int             `json:"overdue_count"`
	InvoiceCount     int             `json:"invoice_count"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// ToClientResponse converts a domain client and its totals to a response DTO
func ToClientResponse(c *ledger.Client, totals *ledger.ClientTotals) ClientResponse {
	resp := ClientResponse{
		ID:               c.ID,
		CompanyName:      c.CompanyName,
		ContactPerson:    c.ContactPerson,
		Phone:            c.Phone,
		Email:            c.Email,
		CreditLimit:      c.CreditLimit,
		TotalOutstanding: decimal.Zero,
		TotalOverdue:     decimal.Zero,
		CreatedAt:        c.CreatedAt,
		UpdatedAt:        c.UpdatedAt,
	}
	if totals != nil {
		resp.TotalOutstanding = totals.TotalOutstanding
		resp.TotalOverdue = totals.TotalOverdue
		resp.OverdueCount = totals.OverdueCount
		resp.InvoiceCount = totals.InvoiceCount
	}
	return resp
}

// =============================================================================
// Invoice DTOs
// =============================================================================

// CreateInvoiceRequest represents a request to create a new invoice
type CreateInvoiceRequest struct {
	ClientID      uuid.UUID       `json:"client_id" binding:"required"`
	InvoiceNumber string          `json:"invoice_number" binding:"required,min=1,max=50"`
	InvoiceDate   string          `json:"invoice_date" binding:"required"`
	DueDate       string          `json:"due_date" binding:"required"`
	TotalAmount   decimal.Decimal `json:"total_amount" binding:"required"`
}

// InvoiceListFilter narrows invoice listings
type InvoiceListFilter struct {
	ClientID *uuid.UUID
	Status   string // Paid, Partial, Unpaid or empty for all
}

// InvoiceResponse represents an invoice with its derived balance
type InvoiceResponse struct {
	ID            uuid.UUID       `json:"id"`
	ClientID      uuid.UUID       `json:"client_id"`
	ClientName    string          `json:"client_name"`
	InvoiceNumber string          `json:"invoice_number"`
	InvoiceDate   string          `json:"invoice_date"`
	DueDate       string          `json:"due_date"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	PaidAmount    decimal.Decimal `json:"paid_amount"`
	Outstanding   decimal.Decimal `json:"outstanding"`
	Status        string          `json:"status"`
	IsOverdue     bool            `json:"is_overdue"`
}

// ToInvoiceResponse converts an enriched invoice balance to a response DTO
func ToInvoiceResponse(b ledger.InvoiceBalance) InvoiceResponse {
	return InvoiceResponse{
		ID:            b.InvoiceID,
		ClientID:      b.ClientID,
		ClientName:    b.ClientName,
		InvoiceNumber: b.InvoiceNumber,
		InvoiceDate:   b.InvoiceDate.Format(DateLayout),
		DueDate:       b.DueDate.Format(DateLayout),
		TotalAmount:   b.TotalAmount,
		PaidAmount:    b.PaidAmount,
		Outstanding:   b.Outstanding,
		Status:        string(b.Status),
		IsOverdue:     b.IsOverdue,
	}
}

// =============================================================================
// Payment DTOs
// =============================================================================

// CreatePaymentRequest represents a request to record a payment
type CreatePaymentRequest struct {
	InvoiceID   uuid.UUID       `json:"invoice_id" binding:"required"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	PaymentDate string          `json:"payment_date" binding:"required"`
	PaymentMode string          `json:"payment_mode" binding:"max=50"`
	Remarks     string          `json:"remarks" binding:"max=500"`
}

// PaymentListFilter narrows payment listings
type PaymentListFilter struct {
	InvoiceID *uuid.UUID
	ClientID  *uuid.UUID
	StartDate *time.Time
	EndDate   *time.Time
}

// PaymentResponse represents a payment joined with its invoice and client
type PaymentResponse struct {
	ID            uuid.UUID       `json:"id"`
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	InvoiceNumber string          `json:"invoice_number"`
	ClientName    string          `json:"client_name"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentDate   string          `json:"payment_date"`
	PaymentMode   string          `json:"payment_mode"`
	Remarks       string          `json:"remarks"`
	CreatedAt     time.Time       `json:"created_at"`
}

// ToPaymentResponse converts a joined payment row to a response DTO
func ToPaymentResponse(row ledger.PaymentRow) PaymentResponse {
	return PaymentResponse{
		ID:            row.ID,
		InvoiceID:     row.InvoiceID,
		InvoiceNumber: row.InvoiceNumber,
		ClientName:    row.ClientName,
		Amount:        row.Amount,
		PaymentDate:   row.PaymentDate.Format(DateLayout),
		PaymentMode:   row.PaymentMode,
		Remarks:       row.Remarks,
		CreatedAt:     row.CreatedAt,
	}
}
