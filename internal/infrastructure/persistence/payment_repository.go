package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/creditmonitor/backend/internal/domain/ledger"
	"github.com/creditmonitor/backend/internal/domain/shared"
	"github.com/creditmonitor/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormPaymentRepository implements ledger.PaymentRepository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// FindByID finds a payment by its ID
func (r *GormPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Payment, error) {
	var model models.PaymentModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// paymentRowModel receives one row of the joined payment listing
type paymentRowModel struct {
	ID            uuid.UUID
	CreatedAt     time.Time
	UpdatedAt     time.Time
	InvoiceID     uuid.UUID
	Amount        decimal.Decimal
	PaymentDate   time.Time
	PaymentMode   string
	Remarks       string
	InvoiceNumber string
	ClientName    string
}

// ListRows lists payments matching the filter joined with invoice number
// and client name, newest payment date first
func (r *GormPaymentRepository) ListRows(ctx context.Context, filter ledger.PaymentFilter) ([]ledger.PaymentRow, error) {
	query := r.db.WithContext(ctx).
		Table("payments AS p").
		Select(`p.id,
			p.created_at,
			p.updated_at,
			p.invoice_id,
			p.amount,
			p.payment_date,
			p.payment_mode,
			p.remarks,
			i.invoice_number,
			c.company_name AS client_name`).
		Joins("JOIN invoices i ON i.id = p.invoice_id").
		Joins("JOIN clients c ON c.id = i.client_id").
		Order("p.payment_date DESC, p.created_at DESC")

	if filter.InvoiceID != nil {
		query = query.Where("p.invoice_id = ?", *filter.InvoiceID)
	}
	if filter.ClientID != nil {
		query = query.Where("i.client_id = ?", *filter.ClientID)
	}
	if filter.StartDate != nil {
		query = query.Where("p.payment_date >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		query = query.Where("p.payment_date <= ?", *filter.EndDate)
	}

	var rowModels []paymentRowModel
	if err := query.Scan(&rowModels).Error; err != nil {
		return nil, err
	}

	rows := make([]ledger.PaymentRow, len(rowModels))
	for i, m := range rowModels {
		rows[i] = ledger.PaymentRow{
			Payment: ledger.Payment{
				BaseEntity: shared.BaseEntity{
					ID:        m.ID,
					CreatedAt: m.CreatedAt,
					UpdatedAt: m.UpdatedAt,
				},
				InvoiceID:   m.InvoiceID,
				Amount:      m.Amount,
				PaymentDate: m.PaymentDate,
				PaymentMode: m.PaymentMode,
				Remarks:     m.Remarks,
			},
			InvoiceNumber: m.InvoiceNumber,
			ClientName:    m.ClientName,
		}
	}
	return rows, nil
}

// SumForInvoice sums the payments recorded against an invoice
func (r *GormPaymentRepository) SumForInvoice(ctx context.Context, invoiceID uuid.UUID) (decimal.Decimal, error) {
	return r.sum(r.db.WithContext(ctx).
		Model(&models.PaymentModel{}).
		Where("invoice_id = ?", invoiceID))
}

// SumOnDate sums the payments with the given payment date
func (r *GormPaymentRepository) SumOnDate(ctx context.Context, date time.Time) (decimal.Decimal, error) {
	return r.sum(r.db.WithContext(ctx).
		Model(&models.PaymentModel{}).
		Where("payment_date = ?", date))
}

func (r *GormPaymentRepository) sum(query *gorm.DB) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := query.Select("COALESCE(SUM(amount), 0)").Scan(&total).Error
	if err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

// Save creates or updates a payment
func (r *GormPaymentRepository) Save(ctx context.Context, payment *ledger.Payment) error {
	model := models.PaymentModelFromDomain(payment)
	return r.db.WithContext(ctx).Save(model).Error
}

// Delete removes a payment
func (r *GormPaymentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.PaymentModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}
