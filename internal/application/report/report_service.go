package report

import (
	"context"
	"fmt"
	"time"

	appledger "github.com/creditmonitor/backend/internal/application/ledger"
	"github.com/creditmonitor/backend/internal/domain/ledger"
	"github.com/creditmonitor/backend/internal/domain/shared"
	"github.com/creditmonitor/backend/internal/infrastructure/spreadsheet"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Report types accepted by Export
const (
	TypeOutstanding = "outstanding"
	TypeOverdue     = "overdue"
	TypePayments    = "payments"
	TypeInvoices    = "invoices"
)

const dashboardTopN = 5

// ExportSheetName is the sheet every exported workbook carries
const ExportSheetName = "Report"

// Service produces the aggregate report views and their xlsx exports
type Service struct {
	clientRepo  ledger.ClientRepository
	invoiceRepo ledger.InvoiceRepository
	paymentRepo ledger.PaymentRepository
	logger      *zap.Logger
	now         func() time.Time
}

// NewService creates a new report Service
func NewService(
	clientRepo ledger.ClientRepository,
	invoiceRepo ledger.InvoiceRepository,
	paymentRepo ledger.PaymentRepository,
	logger *zap.Logger,
) *Service {
	return &Service{
		clientRepo:  clientRepo,
		invoiceRepo: invoiceRepo,
		paymentRepo: paymentRepo,
		logger:      logger.Named("reports"),
		now:         time.Now,
	}
}

// Outstanding lists invoices that still carry an outstanding amount
func (s *Service) Outstanding(ctx context.Context, filter Filter) ([]appledger.InvoiceResponse, error) {
	return s.invoiceView(ctx, filter, func(b ledger.InvoiceBalance) bool {
		return b.Outstanding.IsPositive()
	})
}

// Overdue lists invoices past their due date with an outstanding amount
func (s *Service) Overdue(ctx context.Context, filter Filter) ([]appledger.InvoiceResponse, error) {
	return s.invoiceView(ctx, filter, func(b ledger.InvoiceBalance) bool {
		return b.IsOverdue
	})
}

func (s *Service) invoiceView(
	ctx context.Context,
	filter Filter,
	keep func(ledger.InvoiceBalance) bool,
) ([]appledger.InvoiceResponse, error) {
	rows, err := s.invoiceRepo.BalanceRows(ctx, toFilter(filter))
	if err != nil {
		return nil, err
	}

	responses := make([]appledger.InvoiceResponse, 0, len(rows))
	for _, b := range ledger.EnrichAll(rows, s.now()) {
		if keep(b) {
			responses = append(responses, appledger.ToInvoiceResponse(b))
		}
	}
	return responses, nil
}

// Payments lists payments joined with invoice and client details
func (s *Service) Payments(ctx context.Context, filter Filter) ([]appledger.PaymentResponse, error) {
	rows, err := s.paymentRepo.ListRows(ctx, ledger.PaymentFilter{
		ClientID:  filter.ClientID,
		StartDate: filter.StartDate,
		EndDate:   filter.EndDate,
	})
	if err != nil {
		return nil, err
	}

	responses := make([]appledger.PaymentResponse, 0, len(rows))
	for _, row := range rows {
		responses = append(responses, appledger.ToPaymentResponse(row))
	}
	return responses, nil
}

// Dashboard computes the systemwide summary: totals, counts, today's
// payment volume and the top clients by outstanding amount. Balance-derived
// figures come from one grouped query folded locally.
func (s *Service) Dashboard(ctx context.Context) (*DashboardResponse, error) {
	rows, err := s.invoiceRepo.BalanceRows(ctx, ledger.BalanceFilter{})
	if err != nil {
		return nil, err
	}

	// Stored payment dates are truncated to midnight, so "today" must be too
	// or the exact-date sum matches nothing.
	today := ledger.TruncateToDate(s.now())
	totals := ledger.BuildDashboard(rows, today, dashboardTopN)

	totalClients, err := s.clientRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	totalInvoices, err := s.invoiceRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	paymentsToday, err := s.paymentRepo.SumOnDate(ctx, today)
	if err != nil {
		return nil, err
	}

	topClients, err := s.resolveTopClients(ctx, totals.TopClients)
	if err != nil {
		return nil, err
	}

	return &DashboardResponse{
		TotalOutstanding: totals.TotalOutstanding,
		TotalOverdue:     totals.TotalOverdue,
		TotalClients:     totalClients,
		TotalInvoices:    totalInvoices,
		PaymentsToday:    paymentsToday,
		TopClients:       topClients,
	}, nil
}

// resolveTopClients attaches company names to the ranked totals with one
// batched lookup
func (s *Service) resolveTopClients(ctx context.Context, ranked []ledger.ClientTotals) ([]TopClientEntry, error) {
	ids := make([]uuid.UUID, len(ranked))
	for i, t := range ranked {
		ids[i] = t.ClientID
	}

	clients, err := s.clientRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	names := make(map[uuid.UUID]string, len(clients))
	for _, c := range clients {
		names[c.ID] = c.CompanyName
	}

	entries := make([]TopClientEntry, len(ranked))
	for i, t := range ranked {
		entries[i] = TopClientEntry{
			ClientID:         t.ClientID,
			CompanyName:      names[t.ClientID],
			TotalOutstanding: t.TotalOutstanding,
			TotalOverdue:     t.TotalOverdue,
			OverdueCount:     t.OverdueCount,
			InvoiceCount:     t.InvoiceCount,
		}
	}
	return entries, nil
}

// Export renders a report as an xlsx workbook, returning the file name and
// its bytes. Monetary values are converted to float64 only at this boundary;
// everything upstream stays decimal.
func (s *Service) Export(ctx context.Context, reportType string, filter Filter) (string, []byte, error) {
	var headers []string
	var rows [][]interface{}

	switch reportType {
	case TypeOutstanding, TypeOverdue, TypeInvoices:
		view, err := s.invoiceViewFor(ctx, reportType, filter)
		if err != nil {
			return "", nil, err
		}
		headers = []string{"Client Name", "Invoice Number", "Invoice Date", "Due Date",
			"Total Amount", "Paid Amount", "Outstanding", "Status"}
		for _, inv := range view {
			rows = append(rows, []interface{}{
				inv.ClientName,
				inv.InvoiceNumber,
				inv.InvoiceDate,
				inv.DueDate,
				inv.TotalAmount.InexactFloat64(),
				inv.PaidAmount.InexactFloat64(),
				inv.Outstanding.InexactFloat64(),
				inv.Status,
			})
		}

	case TypePayments:
		view, err := s.Payments(ctx, filter)
		if err != nil {
			return "", nil, err
		}
		headers = []string{"Client Name", "Invoice Number", "Payment Date",
			"Amount", "Payment Mode", "Remarks"}
		for _, p := range view {
			rows = append(rows, []interface{}{
				p.ClientName,
				p.InvoiceNumber,
				p.PaymentDate,
				p.Amount.InexactFloat64(),
				p.PaymentMode,
				p.Remarks,
			})
		}

	default:
		return "", nil, shared.NewDomainError("INVALID_REPORT_TYPE",
			fmt.Sprintf("Unknown report type %q", reportType))
	}

	data, err := spreadsheet.WriteWorkbook(ExportSheetName, headers, rows)
	if err != nil {
		return "", nil, err
	}

	filename := fmt.Sprintf("%s_report.xlsx", reportType)
	s.logger.Info("Report exported",
		zap.String("type", reportType),
		zap.Int("rows", len(rows)))
	return filename, data, nil
}

func (s *Service) invoiceViewFor(ctx context.Context, reportType string, filter Filter) ([]appledger.InvoiceResponse, error) {
	switch reportType {
	case TypeOverdue:
		return s.Overdue(ctx, filter)
	case TypeInvoices:
		return s.invoiceView(ctx, filter, func(ledger.InvoiceBalance) bool { return true })
	default:
		return s.Outstanding(ctx, filter)
	}
}
