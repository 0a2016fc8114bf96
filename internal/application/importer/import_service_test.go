package importer

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/creditmonitor/backend/internal/domain/ledger"
	"github.com/creditmonitor/backend/internal/domain/shared"
	"github.com/creditmonitor/backend/internal/infrastructure/persistence"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type importEnv struct {
	db       *gorm.DB
	service  *Service
	clients  *persistence.GormClientRepository
	invoices *persistence.GormInvoiceRepository
}

func setupImportEnv(t *testing.T) *importEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.Exec("PRAGMA foreign_keys = ON").Error)
	require.NoError(t, persistence.AutoMigrate(db))

	tm := persistence.NewGormTransactionManager(db)
	return &importEnv{
		db:       db,
		service:  NewService(tm, zap.NewNop()),
		clients:  persistence.NewGormClientRepository(db),
		invoices: persistence.NewGormInvoiceRepository(db),
	}
}

func (e *importEnv) seedClient(t *testing.T, name string) *ledger.Client {
	t.Helper()
	client, err := ledger.NewClient(name)
	require.NoError(t, err)
	require.NoError(t, e.clients.Save(context.Background(), client))
	return client
}

func (e *importEnv) seedInvoice(t *testing.T, client *ledger.Client, number string) {
	t.Helper()
	inv, err := ledger.NewInvoice(client.ID, number,
		time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC),
		decimal.NewFromInt(100))
	require.NoError(t, err)
	require.NoError(t, e.invoices.Save(context.Background(), inv))
}

func csvUpload(rows ...string) []byte {
	return []byte(strings.Join(rows, "\n"))
}

func TestImport_MixedRows(t *testing.T) {
	env := setupImportEnv(t)
	ctx := context.Background()
	acme := env.seedClient(t, "Acme Traders")
	env.seedClient(t, "Globex Supplies")
	env.seedInvoice(t, acme, "INV-100")

	data := csvUpload(
		"Client Name,Invoice Number,Invoice Date,Due Date,Invoice Amount",
		"Acme Traders,INV-101,2026-01-05,2026-02-05,\"1,500.00\"",
		"Globex Supplies,INV-102,05/01/2026,05/02/2026,2000",
		"Acme Traders,INV-103,2026-01-07,2026-02-07,750.50",
		"Acme Traders,INV-100,2026-01-10,2026-02-10,100",
		"Globex Supplies,INV-104,not-a-date,2026-02-09,300",
	)

	result, err := env.service.Import(ctx, "upload.csv", data, Options{})
	require.NoError(t, err)

	assert.Equal(t, 5, result.TotalRows)
	assert.Equal(t, 3, result.Imported)
	assert.Equal(t, 1, result.Duplicates)
	assert.Equal(t, 0, result.NewClientsCreated)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "Row 6:")
	assert.Contains(t, result.Errors[0], "invalid invoice date")

	// count law: every row is accounted for exactly once
	assert.Equal(t, result.TotalRows, result.Imported+result.Duplicates+len(result.Errors))

	exists, err := env.invoices.ExistsByNumber(ctx, "INV-102")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestImport_HeaderSynonyms(t *testing.T) {
	env := setupImportEnv(t)
	env.seedClient(t, "Acme Traders")

	data := csvUpload(
		"Client,Invoice No,Date,DueDate,Total",
		"Acme Traders,INV-201,2026/01/05,2026/02/05,400",
	)

	result, err := env.service.Import(context.Background(), "upload.csv", data, Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)
	assert.Empty(t, result.Errors)
}

func TestImport_MissingColumn(t *testing.T) {
	env := setupImportEnv(t)

	data := csvUpload(
		"Client Name,Invoice Number,Invoice Date,Invoice Amount",
		"Acme Traders,INV-301,2026-01-05,400",
	)

	_, err := env.service.Import(context.Background(), "upload.csv", data, Options{})
	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "MISSING_COLUMN", domainErr.Code)
	assert.Contains(t, domainErr.Message, "due date")

	// every missing column is named in the one error
	data = csvUpload(
		"Client Name,Invoice Date",
		"Acme Traders,2026-01-05",
	)
	_, err = env.service.Import(context.Background(), "upload.csv", data, Options{})
	require.ErrorAs(t, err, &domainErr)
	assert.Contains(t, domainErr.Message, "invoice number")
	assert.Contains(t, domainErr.Message, "due date")
	assert.Contains(t, domainErr.Message, "invoice amount")
}

func TestImport_UnknownClient(t *testing.T) {
	env := setupImportEnv(t)
	ctx := context.Background()

	data := csvUpload(
		"Client Name,Invoice Number,Invoice Date,Due Date,Invoice Amount",
		"Initech Papers,INV-401,2026-01-05,2026-02-05,400",
	)

	result, err := env.service.Import(ctx, "upload.csv", data, Options{})
	require.NoError(t, err)
	assert.Equal(t, 0, result.Imported)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], `client "Initech Papers" does not exist`)

	result, err = env.service.Import(ctx, "upload.csv", data, Options{AutoCreateClients: true})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)
	assert.Equal(t, 1, result.NewClientsCreated)
	assert.Empty(t, result.Errors)

	client, err := env.clients.FindByName(ctx, "initech papers")
	require.NoError(t, err)
	assert.Equal(t, "Initech Papers", client.CompanyName)
}

func TestImport_AutoCreateClientOnce(t *testing.T) {
	env := setupImportEnv(t)

	data := csvUpload(
		"Client Name,Invoice Number,Invoice Date,Due Date,Invoice Amount",
		"Initech Papers,INV-501,2026-01-05,2026-02-05,400",
		"INITECH PAPERS,INV-502,2026-01-06,2026-02-06,600",
	)

	result, err := env.service.Import(context.Background(), "upload.csv", data, Options{AutoCreateClients: true})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Imported)
	assert.Equal(t, 1, result.NewClientsCreated, "case variants of one name create one client")
}

func TestImport_InFileDuplicates(t *testing.T) {
	env := setupImportEnv(t)
	env.seedClient(t, "Acme Traders")

	data := csvUpload(
		"Client Name,Invoice Number,Invoice Date,Due Date,Invoice Amount",
		"Acme Traders,INV-601,2026-01-05,2026-02-05,400",
		"Acme Traders,INV-601,2026-01-05,2026-02-05,400",
		"Acme Traders,inv-601,2026-01-05,2026-02-05,400",
	)

	result, err := env.service.Import(context.Background(), "upload.csv", data, Options{})
	require.NoError(t, err)
	// Invoice numbers compare exactly, so inv-601 is a distinct invoice
	assert.Equal(t, 2, result.Imported)
	assert.Equal(t, 1, result.Duplicates)
	assert.Empty(t, result.Errors)
}

func TestImport_StoredDuplicateMatchesExactly(t *testing.T) {
	env := setupImportEnv(t)
	client := env.seedClient(t, "Acme Traders")
	env.seedInvoice(t, client, "INV-100")

	data := csvUpload(
		"Client Name,Invoice Number,Invoice Date,Due Date,Invoice Amount",
		"Acme Traders,INV-100,2026-01-05,2026-02-05,400",
		"Acme Traders,inv-100,2026-01-05,2026-02-05,400",
	)

	result, err := env.service.Import(context.Background(), "upload.csv", data, Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported, "differently-cased number is a new invoice")
	assert.Equal(t, 1, result.Duplicates)
	assert.Empty(t, result.Errors)
}

func TestImport_MissingValuesAndNan(t *testing.T) {
	env := setupImportEnv(t)
	env.seedClient(t, "Acme Traders")

	data := csvUpload(
		"Client Name,Invoice Number,Invoice Date,Due Date,Invoice Amount",
		",INV-701,2026-01-05,2026-02-05,400",
		"Acme Traders,nan,2026-01-05,2026-02-05,400",
		"Acme Traders,INV-702,NaN,2026-02-05,400",
		"Acme Traders,INV-703,2026-01-05,2026-02-05,-50",
	)

	result, err := env.service.Import(context.Background(), "upload.csv", data, Options{})
	require.NoError(t, err)
	assert.Equal(t, 0, result.Imported)
	require.Len(t, result.Errors, 4)
	assert.Contains(t, result.Errors[0], "Row 2: client name is missing")
	assert.Contains(t, result.Errors[1], "Row 3: invoice number is missing")
	assert.Contains(t, result.Errors[2], "Row 4: invoice date is missing")
	assert.Contains(t, result.Errors[3], "Row 5: invalid invoice amount")
}

func TestImport_EmptyFile(t *testing.T) {
	env := setupImportEnv(t)

	_, err := env.service.Import(context.Background(), "upload.csv", []byte(""), Options{})
	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_FILE", domainErr.Code)
}

func TestParseDate_Formats(t *testing.T) {
	cases := map[string]time.Time{
		"2026-01-05": time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
		"05/01/2026": time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
		"2026/01/05": time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
		// excel serial for 2026-01-05
		"46027": time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
	}
	for raw, want := range cases {
		got, err := parseDate(raw)
		require.NoError(t, err, raw)
		assert.True(t, got.Equal(want), fmt.Sprintf("%s parsed as %s", raw, got))
	}

	_, err := parseDate("fifth of january")
	assert.Error(t, err)
}
