package importer

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/creditmonitor/backend/internal/domain/ledger"
	"github.com/creditmonitor/backend/internal/domain/shared"
	"github.com/creditmonitor/backend/internal/infrastructure/spreadsheet"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Canonical spreadsheet columns
const (
	colClientName    = "client name"
	colInvoiceNumber = "invoice number"
	colInvoiceDate   = "invoice date"
	colDueDate       = "due date"
	colAmount        = "invoice amount"
)

// headerSynonyms maps normalized header spellings to canonical columns.
// Spreadsheets in the field come with many header variants; this mapping
// accepts the ones seen in practice.
var headerSynonyms = map[string]string{
	"client name":    colClientName,
	"client":         colClientName,
	"company name":   colClientName,
	"clientname":     colClientName,
	"invoice number": colInvoiceNumber,
	"invoice no":     colInvoiceNumber,
	"invoiceno":      colInvoiceNumber,
	"invoice #":      colInvoiceNumber,
	"invoice":        colInvoiceNumber,
	"invoice date":   colInvoiceDate,
	"date":           colInvoiceDate,
	"invoicedate":    colInvoiceDate,
	"due date":       colDueDate,
	"duedate":        colDueDate,
	"invoice amount": colAmount,
	"amount":         colAmount,
	"total":          colAmount,
	"total amount":   colAmount,
	"invoiceamount":  colAmount,
}

// dateLayouts are tried in order; day-first wins for ambiguous slash dates
var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"01/02/2006",
	"2006/01/02",
	"02-01-2006",
}

// Result summarizes one import run. total_rows always equals
// imported + duplicates + len(errors): a row with several problems
// contributes a single combined error entry.
type Result struct {
	TotalRows         int      `json:"total_rows"`
	Imported          int      `json:"imported"`
	Duplicates        int      `json:"duplicates"`
	NewClientsCreated int      `json:"new_clients_created"`
	Errors            []string `json:"errors"`
}

// Options controls import behavior
type Options struct {
	// AutoCreateClients creates clients named in the sheet that do not
	// exist yet, carrying only the company name
	AutoCreateClients bool
}

// Service reconciles spreadsheet uploads into the ledger
type Service struct {
	tm     ledger.TransactionManager
	logger *zap.Logger
}

// NewService creates a new import Service
func NewService(tm ledger.TransactionManager, logger *zap.Logger) *Service {
	return &Service{
		tm:     tm,
		logger: logger.Named("import"),
	}
}

// Import parses the upload and reconciles every data row into the ledger.
// The whole upload runs in one transaction: row-level problems are
// accumulated in the result, only storage failures abort the run.
func (s *Service) Import(ctx context.Context, filename string, data []byte, opts Options) (*Result, error) {
	table, err := spreadsheet.Parse(filename, data)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_FILE", err.Error())
	}

	columns, err := mapHeaders(table.Headers)
	if err != nil {
		return nil, err
	}

	result := &Result{Errors: []string{}}
	result.TotalRows = len(table.Rows)

	err = s.tm.Do(ctx, func(uow ledger.UnitOfWork) error {
		// in-file invoice numbers already handled this run
		seenNumbers := make(map[string]bool)
		// company name (lowercased) -> client, avoids re-querying per row
		clientCache := make(map[string]*ledger.Client)

		for i, row := range table.Rows {
			rowNum := i + 2 // 1-indexed data rows, header is row 1

			parsed, problems := parseRow(row, columns)
			if len(problems) > 0 {
				result.Errors = append(result.Errors,
					fmt.Sprintf("Row %d: %s", rowNum, strings.Join(problems, "; ")))
				continue
			}

			// Exact match, like the unique index on invoice_number
			if seenNumbers[parsed.invoiceNumber] {
				result.Duplicates++
				continue
			}
			exists, err := uow.Invoices().ExistsByNumber(ctx, parsed.invoiceNumber)
			if err != nil {
				return err
			}
			if exists {
				seenNumbers[parsed.invoiceNumber] = true
				result.Duplicates++
				continue
			}

			client, created, err := s.resolveClient(ctx, uow, clientCache, parsed.clientName, opts)
			if err != nil {
				return err
			}
			if client == nil {
				result.Errors = append(result.Errors,
					fmt.Sprintf("Row %d: client %q does not exist", rowNum, parsed.clientName))
				continue
			}
			if created {
				result.NewClientsCreated++
			}

			invoice, err := ledger.NewInvoice(client.ID, parsed.invoiceNumber, parsed.invoiceDate, parsed.dueDate, parsed.amount)
			if err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", rowNum, err))
				continue
			}
			if err := uow.Invoices().Save(ctx, invoice); err != nil {
				return err
			}

			seenNumbers[parsed.invoiceNumber] = true
			result.Imported++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Import finished",
		zap.String("file", filename),
		zap.Int("total_rows", result.TotalRows),
		zap.Int("imported", result.Imported),
		zap.Int("duplicates", result.Duplicates),
		zap.Int("new_clients", result.NewClientsCreated),
		zap.Int("errors", len(result.Errors)))

	return result, nil
}

// resolveClient finds the named client, creating it when allowed. A nil
// client with nil error means the client is missing and creation is off.
func (s *Service) resolveClient(
	ctx context.Context,
	uow ledger.UnitOfWork,
	cache map[string]*ledger.Client,
	name string,
	opts Options,
) (*ledger.Client, bool, error) {
	key := strings.ToLower(name)
	if client, ok := cache[key]; ok {
		return client, false, nil
	}

	client, err := uow.Clients().FindByName(ctx, name)
	if err == nil {
		cache[key] = client
		return client, false, nil
	}
	if err != shared.ErrNotFound {
		return nil, false, err
	}

	if !opts.AutoCreateClients {
		return nil, false, nil
	}

	client, err = ledger.NewClient(name)
	if err != nil {
		return nil, false, err
	}
	if err := uow.Clients().Save(ctx, client); err != nil {
		return nil, false, err
	}
	cache[key] = client
	return client, true, nil
}

// mapHeaders resolves the canonical column index for every required column
func mapHeaders(headers []string) (map[string]int, error) {
	columns := make(map[string]int)
	for i, header := range headers {
		canonical, ok := headerSynonyms[strings.ToLower(strings.TrimSpace(header))]
		if !ok {
			continue
		}
		if _, taken := columns[canonical]; !taken {
			columns[canonical] = i
		}
	}

	var missing []string
	for _, required := range []string{colClientName, colInvoiceNumber, colInvoiceDate, colDueDate, colAmount} {
		if _, ok := columns[required]; !ok {
			missing = append(missing, required)
		}
	}
	if len(missing) > 0 {
		return nil, shared.NewDomainError("MISSING_COLUMN",
			fmt.Sprintf("Required columns not found in header row: %s", strings.Join(missing, ", ")))
	}
	return columns, nil
}

type parsedRow struct {
	clientName    string
	invoiceNumber string
	invoiceDate   time.Time
	dueDate       time.Time
	amount        decimal.Decimal
}

// parseRow validates one data row, returning every problem found
func parseRow(row []string, columns map[string]int) (parsedRow, []string) {
	var parsed parsedRow
	var problems []string

	parsed.clientName = cell(row, columns[colClientName])
	if isMissing(parsed.clientName) {
		problems = append(problems, "client name is missing")
	}

	parsed.invoiceNumber = cell(row, columns[colInvoiceNumber])
	if isMissing(parsed.invoiceNumber) {
		problems = append(problems, "invoice number is missing")
	}

	if raw := cell(row, columns[colInvoiceDate]); isMissing(raw) {
		problems = append(problems, "invoice date is missing")
	} else if t, err := parseDate(raw); err != nil {
		problems = append(problems, fmt.Sprintf("invalid invoice date %q", raw))
	} else {
		parsed.invoiceDate = t
	}

	if raw := cell(row, columns[colDueDate]); isMissing(raw) {
		problems = append(problems, "due date is missing")
	} else if t, err := parseDate(raw); err != nil {
		problems = append(problems, fmt.Sprintf("invalid due date %q", raw))
	} else {
		parsed.dueDate = t
	}

	if raw := cell(row, columns[colAmount]); isMissing(raw) {
		problems = append(problems, "invoice amount is missing")
	} else if amount, err := parseAmount(raw); err != nil {
		problems = append(problems, fmt.Sprintf("invalid invoice amount %q", raw))
	} else {
		parsed.amount = amount
	}

	return parsed, problems
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// isMissing treats empty cells and the literal "nan" (a spreadsheet export
// artifact) as absent values
func isMissing(v string) bool {
	return v == "" || strings.EqualFold(v, "nan")
}

// excelEpoch is day zero of the 1900 date system
var excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

func parseDate(raw string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}

	// XLSX cells sometimes surface as raw serial numbers
	if serial, err := strconv.ParseFloat(raw, 64); err == nil && serial > 59 {
		return excelEpoch.AddDate(0, 0, int(serial)), nil
	}

	return time.Time{}, fmt.Errorf("unrecognized date %q", raw)
}

func parseAmount(raw string) (decimal.Decimal, error) {
	cleaned := strings.ReplaceAll(raw, ",", "")
	cleaned = strings.TrimSpace(strings.TrimPrefix(cleaned, "₹"))

	amount, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, err
	}
	if !amount.IsPositive() {
		return decimal.Zero, fmt.Errorf("amount must be positive")
	}
	return amount, nil
}
