package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/creditmonitor/backend/internal/domain/ledger"
	"github.com/creditmonitor/backend/internal/domain/shared"
	"github.com/creditmonitor/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormInvoiceRepository implements ledger.InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// FindByID finds an invoice by its ID
func (r *GormInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Invoice, error) {
	var model models.InvoiceModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate finds an invoice and locks its row for the duration of
// the surrounding transaction. Used to serialize payment creation against
// the same invoice.
func (r *GormInvoiceRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*ledger.Invoice, error) {
	query := r.db.WithContext(ctx)
	// SQLite has no row locks; its single-writer model serializes writes anyway
	if r.db.Dialector.Name() != "sqlite" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var model models.InvoiceModel
	if err := query.First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// ExistsByNumber checks whether an invoice number is already used
func (r *GormInvoiceRepository) ExistsByNumber(ctx context.Context, number string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.InvoiceModel{}).
		Where("invoice_number = ?", strings.TrimSpace(number)).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// List lists invoices matching the filter, newest invoice date first
func (r *GormInvoiceRepository) List(ctx context.Context, filter ledger.InvoiceFilter) ([]ledger.Invoice, error) {
	query := r.db.WithContext(ctx).Model(&models.InvoiceModel{})
	if filter.ClientID != nil {
		query = query.Where("client_id = ?", *filter.ClientID)
	}

	var invoiceModels []models.InvoiceModel
	if err := query.Order("invoice_date DESC, invoice_number ASC").Find(&invoiceModels).Error; err != nil {
		return nil, err
	}

	invoices := make([]ledger.Invoice, len(invoiceModels))
	for i, model := range invoiceModels {
		invoices[i] = *model.ToDomain()
	}
	return invoices, nil
}

// balanceRowModel receives one row of the grouped balance query
type balanceRowModel struct {
	InvoiceID     uuid.UUID
	ClientID      uuid.UUID
	ClientName    string
	InvoiceNumber string
	InvoiceDate   time.Time
	DueDate       time.Time
	TotalAmount   decimal.Decimal
	PaidAmount    decimal.Decimal
}

// BalanceRows returns one row per matching invoice with its payment sum,
// joined with the client name, computed in a single grouped query.
func (r *GormInvoiceRepository) BalanceRows(ctx context.Context, filter ledger.BalanceFilter) ([]ledger.BalanceRow, error) {
	query := r.db.WithContext(ctx).
		Table("invoices AS i").
		Select(`i.id AS invoice_id,
			i.client_id,
			c.company_name AS client_name,
			i.invoice_number,
			i.invoice_date,
			i.due_date,
			i.total_amount,
			COALESCE(SUM(p.amount), 0) AS paid_amount`).
		Joins("JOIN clients c ON c.id = i.client_id").
		Joins("LEFT JOIN payments p ON p.invoice_id = i.id").
		Group("i.id, i.client_id, c.company_name, i.invoice_number, i.invoice_date, i.due_date, i.total_amount").
		Order("i.invoice_date DESC, i.invoice_number ASC")

	if filter.ClientID != nil {
		query = query.Where("i.client_id = ?", *filter.ClientID)
	}
	if filter.StartDate != nil {
		query = query.Where("i.invoice_date >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		query = query.Where("i.invoice_date <= ?", *filter.EndDate)
	}

	var rowModels []balanceRowModel
	if err := query.Scan(&rowModels).Error; err != nil {
		return nil, err
	}

	rows := make([]ledger.BalanceRow, len(rowModels))
	for i, m := range rowModels {
		rows[i] = ledger.BalanceRow{
			InvoiceID:     m.InvoiceID,
			ClientID:      m.ClientID,
			ClientName:    m.ClientName,
			InvoiceNumber: m.InvoiceNumber,
			InvoiceDate:   m.InvoiceDate,
			DueDate:       m.DueDate,
			TotalAmount:   m.TotalAmount,
			PaidAmount:    m.PaidAmount,
		}
	}
	return rows, nil
}

// Save creates or updates an invoice
func (r *GormInvoiceRepository) Save(ctx context.Context, invoice *ledger.Invoice) error {
	model := models.InvoiceModelFromDomain(invoice)
	return r.db.WithContext(ctx).Save(model).Error
}

// Delete removes an invoice; its payments cascade
func (r *GormInvoiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.InvoiceModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count counts all invoices
func (r *GormInvoiceRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.InvoiceModel{}).Count(&count).Error
	return count, err
}
