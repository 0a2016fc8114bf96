package ledger

import (
	"context"
	"time"

	"github.com/creditmonitor/backend/internal/domain/ledger"
	"github.com/creditmonitor/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// InvoiceService handles invoice-related business operations
type InvoiceService struct {
	clientRepo  ledger.ClientRepository
	invoiceRepo ledger.InvoiceRepository
	paymentRepo ledger.PaymentRepository
	logger      *zap.Logger
	now         func() time.Time
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(
	clientRepo ledger.ClientRepository,
	invoiceRepo ledger.InvoiceRepository,
	paymentRepo ledger.PaymentRepository,
	logger *zap.Logger,
) *InvoiceService {
	return &InvoiceService{
		clientRepo:  clientRepo,
		invoiceRepo: invoiceRepo,
		paymentRepo: paymentRepo,
		logger:      logger.Named("invoices"),
		now:         time.Now,
	}
}

// Create creates a new invoice for an existing client
func (s *InvoiceService) Create(ctx context.Context, req CreateInvoiceRequest) (*InvoiceResponse, error) {
	client, err := s.clientRepo.FindByID(ctx, req.ClientID)
	if err != nil {
		return nil, err
	}

	exists, err := s.invoiceRepo.ExistsByNumber(ctx, req.InvoiceNumber)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "An invoice with this number already exists")
	}

	invoiceDate, err := ParseDate(req.InvoiceDate)
	if err != nil {
		return nil, err
	}
	dueDate, err := ParseDate(req.DueDate)
	if err != nil {
		return nil, err
	}

	invoice, err := ledger.NewInvoice(client.ID, req.InvoiceNumber, invoiceDate, dueDate, req.TotalAmount)
	if err != nil {
		return nil, err
	}

	if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
		return nil, err
	}

	s.logger.Info("Invoice created",
		zap.String("invoice_number", invoice.InvoiceNumber),
		zap.String("client", client.CompanyName))

	balance := ledger.Enrich(ledger.BalanceRow{
		InvoiceID:     invoice.ID,
		ClientID:      client.ID,
		ClientName:    client.CompanyName,
		InvoiceNumber: invoice.InvoiceNumber,
		InvoiceDate:   invoice.InvoiceDate,
		DueDate:       invoice.DueDate,
		TotalAmount:   invoice.TotalAmount,
	}, s.now())

	response := ToInvoiceResponse(balance)
	return &response, nil
}

// GetByID retrieves an invoice with its derived balance
func (s *InvoiceService) GetByID(ctx context.Context, id uuid.UUID) (*InvoiceResponse, error) {
	invoice, err := s.invoiceRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	client, err := s.clientRepo.FindByID(ctx, invoice.ClientID)
	if err != nil {
		return nil, err
	}
	paid, err := s.paymentRepo.SumForInvoice(ctx, invoice.ID)
	if err != nil {
		return nil, err
	}

	balance := ledger.Enrich(ledger.BalanceRow{
		InvoiceID:     invoice.ID,
		ClientID:      client.ID,
		ClientName:    client.CompanyName,
		InvoiceNumber: invoice.InvoiceNumber,
		InvoiceDate:   invoice.InvoiceDate,
		DueDate:       invoice.DueDate,
		TotalAmount:   invoice.TotalAmount,
		PaidAmount:    paid,
	}, s.now())

	response := ToInvoiceResponse(balance)
	return &response, nil
}

// List lists invoices with derived balances, optionally narrowed by client
// and derived status
func (s *InvoiceService) List(ctx context.Context, filter InvoiceListFilter) ([]InvoiceResponse, error) {
	rows, err := s.invoiceRepo.BalanceRows(ctx, ledger.BalanceFilter{ClientID: filter.ClientID})
	if err != nil {
		return nil, err
	}

	balances := ledger.EnrichAll(rows, s.now())
	responses := make([]InvoiceResponse, 0, len(balances))
	for _, b := range balances {
		if filter.Status != "" && string(b.Status) != filter.Status {
			continue
		}
		responses = append(responses, ToInvoiceResponse(b))
	}
	return responses, nil
}

// Delete removes an invoice; its payments cascade
func (s *InvoiceService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.invoiceRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Invoice deleted", zap.String("invoice_id", id.String()))
	return nil
}
