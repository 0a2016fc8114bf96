package persistence

import (
	"context"

	"github.com/creditmonitor/backend/internal/domain/ledger"
	"gorm.io/gorm"
)

// gormUnitOfWork exposes the ledger repositories bound to one transaction
type gormUnitOfWork struct {
	clients  *GormClientRepository
	invoices *GormInvoiceRepository
	payments *GormPaymentRepository
}

func newGormUnitOfWork(tx *gorm.DB) *gormUnitOfWork {
	return &gormUnitOfWork{
		clients:  NewGormClientRepository(tx),
		invoices: NewGormInvoiceRepository(tx),
		payments: NewGormPaymentRepository(tx),
	}
}

func (u *gormUnitOfWork) Clients() ledger.ClientRepository {
	return u.clients
}

func (u *gormUnitOfWork) Invoices() ledger.InvoiceRepository {
	return u.invoices
}

func (u *gormUnitOfWork) Payments() ledger.PaymentRepository {
	return u.payments
}

// GormTransactionManager implements ledger.TransactionManager using GORM
// transactions. The transaction commits when fn returns nil and rolls back
// otherwise.
type GormTransactionManager struct {
	db *gorm.DB
}

// NewGormTransactionManager creates a new GormTransactionManager
func NewGormTransactionManager(db *gorm.DB) *GormTransactionManager {
	return &GormTransactionManager{db: db}
}

// Do runs fn within a single database transaction
func (m *GormTransactionManager) Do(ctx context.Context, fn func(uow ledger.UnitOfWork) error) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(newGormUnitOfWork(tx))
	})
}
