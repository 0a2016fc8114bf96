package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BalanceFilter narrows the invoice rows fed into the balance aggregator
type BalanceFilter struct {
	ClientID  *uuid.UUID
	StartDate *time.Time // invoice_date >= StartDate
	EndDate   *time.Time // invoice_date <= EndDate
}

// InvoiceFilter narrows invoice listings
type InvoiceFilter struct {
	ClientID *uuid.UUID
}

// PaymentFilter narrows payment listings
type PaymentFilter struct {
	InvoiceID *uuid.UUID
	ClientID  *uuid.UUID
	StartDate *time.Time // payment_date >= StartDate
	EndDate   *time.Time // payment_date <= EndDate
}

// PaymentRow is a payment joined with its invoice number and client name
type PaymentRow struct {
	Payment
	InvoiceNumber string
	ClientName    string
}

// ClientRepository defines the interface for client persistence
type ClientRepository interface {
	// FindByID finds a client by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Client, error)

	// FindByName finds a client by exact company name, case-insensitively
	FindByName(ctx context.Context, companyName string) (*Client, error)

	// FindByIDs finds multiple clients by their IDs
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Client, error)

	// Search lists clients whose company name contains the search term
	// (case-insensitive), ordered by company name. An empty term lists all.
	Search(ctx context.Context, term string) ([]Client, error)

	// Save creates or updates a client
	Save(ctx context.Context, client *Client) error

	// Delete removes a client; its invoices and their payments cascade
	Delete(ctx context.Context, id uuid.UUID) error

	// Count counts all clients
	Count(ctx context.Context) (int64, error)
}

// InvoiceRepository defines the interface for invoice persistence
type InvoiceRepository interface {
	// FindByID finds an invoice by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Invoice, error)

	// FindByIDForUpdate finds an invoice and locks its row for the duration
	// of the surrounding transaction. Used to serialize payment creation.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Invoice, error)

	// ExistsByNumber checks whether an invoice number is already used
	ExistsByNumber(ctx context.Context, number string) (bool, error)

	// List lists invoices matching the filter, newest invoice date first
	List(ctx context.Context, filter InvoiceFilter) ([]Invoice, error)

	// BalanceRows returns one row per matching invoice with its payment sum,
	// joined with the client name, computed in a single grouped query.
	BalanceRows(ctx context.Context, filter BalanceFilter) ([]BalanceRow, error)

	// Save creates or updates an invoice
	Save(ctx context.Context, invoice *Invoice) error

	// Delete removes an invoice; its payments cascade
	Delete(ctx context.Context, id uuid.UUID) error

	// Count counts all invoices
	Count(ctx context.Context) (int64, error)
}

// PaymentRepository defines the interface for payment persistence
type PaymentRepository interface {
	// FindByID finds a payment by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Payment, error)

	// ListRows lists payments matching the filter joined with invoice number
	// and client name, newest payment date first
	ListRows(ctx context.Context, filter PaymentFilter) ([]PaymentRow, error)

	// SumForInvoice sums the payments recorded against an invoice
	SumForInvoice(ctx context.Context, invoiceID uuid.UUID) (decimal.Decimal, error)

	// SumOnDate sums the payments with the given payment date
	SumOnDate(ctx context.Context, date time.Time) (decimal.Decimal, error)

	// Save creates or updates a payment
	Save(ctx context.Context, payment *Payment) error

	// Delete removes a payment
	Delete(ctx context.Context, id uuid.UUID) error
}

// UnitOfWork exposes the ledger repositories bound to one transaction
type UnitOfWork interface {
	Clients() ClientRepository
	Invoices() InvoiceRepository
	Payments() PaymentRepository
}

// TransactionManager runs a function within a single ledger transaction.
// The transaction commits when fn returns nil and rolls back otherwise.
type TransactionManager interface {
	Do(ctx context.Context, fn func(uow UnitOfWork) error) error
}
