package ledger

import (
	"context"

	"github.com/creditmonitor/backend/internal/domain/ledger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PaymentService handles payment-related business operations
type PaymentService struct {
	paymentRepo ledger.PaymentRepository
	tm          ledger.TransactionManager
	logger      *zap.Logger
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(paymentRepo ledger.PaymentRepository, tm ledger.TransactionManager, logger *zap.Logger) *PaymentService {
	return &PaymentService{
		paymentRepo: paymentRepo,
		tm:          tm,
		logger:      logger.Named("payments"),
	}
}

// Create records a payment against an invoice. The invoice row is locked for
// the duration of the transaction so concurrent payments against the same
// invoice serialize, and the paid-sum check cannot race past the total.
func (s *PaymentService) Create(ctx context.Context, req CreatePaymentRequest) (*PaymentResponse, error) {
	paymentDate, err := ParseDate(req.PaymentDate)
	if err != nil {
		return nil, err
	}

	var payment *ledger.Payment
	err = s.tm.Do(ctx, func(uow ledger.UnitOfWork) error {
		invoice, err := uow.Invoices().FindByIDForUpdate(ctx, req.InvoiceID)
		if err != nil {
			return err
		}

		alreadyPaid, err := uow.Payments().SumForInvoice(ctx, invoice.ID)
		if err != nil {
			return err
		}

		if err := ledger.CheckPaymentFits(invoice.TotalAmount, alreadyPaid, req.Amount); err != nil {
			return err
		}

		payment, err = ledger.NewPayment(invoice.ID, req.Amount, paymentDate, req.PaymentMode, req.Remarks)
		if err != nil {
			return err
		}

		return uow.Payments().Save(ctx, payment)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Payment recorded",
		zap.String("invoice_id", payment.InvoiceID.String()),
		zap.String("amount", payment.Amount.String()))

	rows, err := s.paymentRepo.ListRows(ctx, ledger.PaymentFilter{InvoiceID: &payment.InvoiceID})
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		if row.ID == payment.ID {
			response := ToPaymentResponse(row)
			return &response, nil
		}
	}

	// Joined row lookup is cosmetic; fall back to the bare payment
	response := ToPaymentResponse(ledger.PaymentRow{Payment: *payment})
	return &response, nil
}

// List lists payments joined with invoice number and client name
func (s *PaymentService) List(ctx context.Context, filter PaymentListFilter) ([]PaymentResponse, error) {
	rows, err := s.paymentRepo.ListRows(ctx, ledger.PaymentFilter{
		InvoiceID: filter.InvoiceID,
		ClientID:  filter.ClientID,
		StartDate: filter.StartDate,
		EndDate:   filter.EndDate,
	})
	if err != nil {
		return nil, err
	}

	responses := make([]PaymentResponse, len(rows))
	for i, row := range rows {
		responses[i] = ToPaymentResponse(row)
	}
	return responses, nil
}

// Delete removes a payment
func (s *PaymentService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.paymentRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Payment deleted", zap.String("payment_id", id.String()))
	return nil
}
