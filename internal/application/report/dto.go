package report

import (
	"time"

	"github.com/creditmonitor/backend/internal/domain/ledger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Filter narrows report views. Dates bound the invoice date for invoice
// reports and the payment date for the payments report.
type Filter struct {
	ClientID  *uuid.UUID
	StartDate *time.Time
	EndDate   *time.Time
}

// TopClientEntry is one ranked client on the dashboard
type TopClientEntry struct {
	ClientID         uuid.UUID       `json:"client_id"`
	CompanyName      string          `json:"company_name"`
	TotalOutstanding decimal.Decimal `json:"total_outstanding"`
	TotalOverdue     decimal.Decimal `json:"total_overdue"`
	OverdueCount     int             `json:"overdue_count"`
	InvoiceCount     int             `json:"invoice_count"`
}

// DashboardResponse is the systemwide summary
type DashboardResponse struct {
	TotalOutstanding decimal.Decimal  `json:"total_outstanding"`
	TotalOverdue     decimal.Decimal  `json:"total_overdue"`
	TotalClients     int64            `json:"total_clients"`
	TotalInvoices    int64            `json:"total_invoices"`
	PaymentsToday    decimal.Decimal  `json:"payments_today"`
	TopClients       []TopClientEntry `json:"top_clients"`
}

func toFilter(f Filter) ledger.BalanceFilter {
	return ledger.BalanceFilter{
		ClientID:  f.ClientID,
		StartDate: f.StartDate,
		EndDate:   f.EndDate,
	}
}
