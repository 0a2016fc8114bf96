package ledger

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BalanceRow is one invoice joined with its payment sum, as produced by a
// single grouped query. All derived amounts are computed locally from these
// rows so aggregate views cost one query regardless of entity count.
type BalanceRow struct {
	InvoiceID     uuid.UUID
	ClientID      uuid.UUID
	ClientName    string
	InvoiceNumber string
	InvoiceDate   time.Time
	DueDate       time.Time
	TotalAmount   decimal.Decimal
	PaidAmount    decimal.Decimal
}

// InvoiceBalance is a BalanceRow enriched with derived amounts
type InvoiceBalance struct {
	BalanceRow
	Outstanding decimal.Decimal
	Status      InvoiceStatus
	IsOverdue   bool
}

// ClientTotals is the per-client rollup of invoice balances
type ClientTotals struct {
	ClientID         uuid.UUID
	TotalOutstanding decimal.Decimal
	TotalOverdue     decimal.Decimal
	OverdueCount     int
	InvoiceCount     int
}

// DashboardTotals is the systemwide rollup
type DashboardTotals struct {
	TotalOutstanding decimal.Decimal
	TotalOverdue     decimal.Decimal
	TopClients       []ClientTotals
}

// Enrich derives paid/outstanding/status/overdue for one row
func Enrich(row BalanceRow, today time.Time) InvoiceBalance {
	today = TruncateToDate(today)
	outstanding := row.TotalAmount.Sub(row.PaidAmount)

	var status InvoiceStatus
	switch {
	case outstanding.LessThanOrEqual(decimal.Zero):
		status = StatusPaid
	case row.PaidAmount.IsPositive():
		status = StatusPartial
	default:
		status = StatusUnpaid
	}

	return InvoiceBalance{
		BalanceRow:  row,
		Outstanding: outstanding,
		Status:      status,
		IsOverdue:   row.DueDate.Before(today) && outstanding.IsPositive(),
	}
}

// EnrichAll derives balances for every row, preserving order
func EnrichAll(rows []BalanceRow, today time.Time) []InvoiceBalance {
	balances := make([]InvoiceBalance, len(rows))
	for i, row := range rows {
		balances[i] = Enrich(row, today)
	}
	return balances
}

// SummarizeByClient folds balance rows into per-client totals. A negative
// outstanding (overpayment) contributes zero to outstanding and overdue
// totals; payment creation already prevents overpayment, so the clamp only
// matters for data written outside the normal flow.
func SummarizeByClient(rows []BalanceRow, today time.Time) map[uuid.UUID]*ClientTotals {
	totals := make(map[uuid.UUID]*ClientTotals)
	for _, b := range EnrichAll(rows, today) {
		t, ok := totals[b.ClientID]
		if !ok {
			t = &ClientTotals{
				ClientID:         b.ClientID,
				TotalOutstanding: decimal.Zero,
				TotalOverdue:     decimal.Zero,
			}
			totals[b.ClientID] = t
		}
		t.InvoiceCount++
		if b.Outstanding.IsPositive() {
			t.TotalOutstanding = t.TotalOutstanding.Add(b.Outstanding)
			if b.IsOverdue {
				t.TotalOverdue = t.TotalOverdue.Add(b.Outstanding)
				t.OverdueCount++
			}
		}
	}
	return totals
}

// BuildDashboard computes the systemwide totals and the top-N clients ranked
// by total outstanding descending. Ties break on client ID ascending so the
// ordering is deterministic regardless of storage iteration order.
func BuildDashboard(rows []BalanceRow, today time.Time, topN int) DashboardTotals {
	totals := SummarizeByClient(rows, today)

	dashboard := DashboardTotals{
		TotalOutstanding: decimal.Zero,
		TotalOverdue:     decimal.Zero,
	}

	ranked := make([]ClientTotals, 0, len(totals))
	for _, t := range totals {
		dashboard.TotalOutstanding = dashboard.TotalOutstanding.Add(t.TotalOutstanding)
		dashboard.TotalOverdue = dashboard.TotalOverdue.Add(t.TotalOverdue)
		ranked = append(ranked, *t)
	}

	sort.Slice(ranked, func(i, j int) bool {
		cmp := ranked[i].TotalOutstanding.Cmp(ranked[j].TotalOutstanding)
		if cmp != 0 {
			return cmp > 0
		}
		return ranked[i].ClientID.String() < ranked[j].ClientID.String()
	})

	if topN > 0 && len(ranked) > topN {
		ranked = ranked[:topN]
	}
	dashboard.TopClients = ranked

	return dashboard
}
