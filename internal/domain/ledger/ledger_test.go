package ledger

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	client, err := NewClient("  Acme Logistics  ")
	require.NoError(t, err)
	assert.Equal(t, "Acme Logistics", client.CompanyName)
	assert.True(t, client.CreditLimit.IsZero())

	_, err = NewClient("   ")
	assert.Error(t, err)
}

func TestClientSetCreditLimit(t *testing.T) {
	client, err := NewClient("Acme")
	require.NoError(t, err)

	require.NoError(t, client.SetCreditLimit(decimal.NewFromInt(50000)))
	assert.True(t, client.CreditLimit.Equal(decimal.NewFromInt(50000)))

	assert.Error(t, client.SetCreditLimit(decimal.NewFromInt(-1)))
}

func TestNewInvoice(t *testing.T) {
	clientID := uuid.New()
	issued := time.Date(2026, 1, 10, 15, 30, 0, 0, time.UTC)
	due := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)

	inv, err := NewInvoice(clientID, " INV-001 ", issued, due, decimal.NewFromInt(1000))
	require.NoError(t, err)
	assert.Equal(t, "INV-001", inv.InvoiceNumber)
	assert.Equal(t, time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC), inv.InvoiceDate,
		"time of day should be dropped")

	_, err = NewInvoice(uuid.Nil, "INV-002", issued, due, decimal.NewFromInt(1000))
	assert.Error(t, err)
	_, err = NewInvoice(clientID, "", issued, due, decimal.NewFromInt(1000))
	assert.Error(t, err)
	_, err = NewInvoice(clientID, "INV-002", issued, due, decimal.Zero)
	assert.Error(t, err)
	_, err = NewInvoice(clientID, "INV-002", issued, due, decimal.NewFromInt(-5))
	assert.Error(t, err)
}

func TestNewPayment(t *testing.T) {
	invoiceID := uuid.New()
	date := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	p, err := NewPayment(invoiceID, decimal.NewFromInt(400), date, " UPI ", "")
	require.NoError(t, err)
	assert.Equal(t, "UPI", p.PaymentMode)

	_, err = NewPayment(uuid.Nil, decimal.NewFromInt(400), date, "", "")
	assert.Error(t, err)
	_, err = NewPayment(invoiceID, decimal.Zero, date, "", "")
	assert.Error(t, err)
	_, err = NewPayment(invoiceID, decimal.NewFromInt(400), time.Time{}, "", "")
	assert.Error(t, err)
}
