package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	appidentity "github.com/creditmonitor/backend/internal/application/identity"
	"github.com/creditmonitor/backend/internal/application/importer"
	appledger "github.com/creditmonitor/backend/internal/application/ledger"
	"github.com/creditmonitor/backend/internal/application/report"
	"github.com/creditmonitor/backend/internal/domain/identity"
	"github.com/creditmonitor/backend/internal/infrastructure/auth"
	"github.com/creditmonitor/backend/internal/infrastructure/config"
	"github.com/creditmonitor/backend/internal/infrastructure/persistence"
	"github.com/creditmonitor/backend/internal/interfaces/http/middleware"
	"github.com/creditmonitor/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type apiEnv struct {
	router     http.Handler
	adminToken string
	staffToken string
}

func setupAPI(t *testing.T) *apiEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.Exec("PRAGMA foreign_keys = ON").Error)
	require.NoError(t, persistence.AutoMigrate(db))

	log := zap.NewNop()
	userRepo := persistence.NewGormUserRepository(db)
	clientRepo := persistence.NewGormClientRepository(db)
	invoiceRepo := persistence.NewGormInvoiceRepository(db)
	paymentRepo := persistence.NewGormPaymentRepository(db)
	tm := persistence.NewGormTransactionManager(db)

	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                "api-test-secret-key-with-enough-length",
		AccessTokenExpiration: time.Hour,
		Issuer:                "credit-ledger",
	})

	authService := appidentity.NewAuthService(userRepo, jwtService, log)
	clientService := appledger.NewClientService(clientRepo, invoiceRepo, log)
	invoiceService := appledger.NewInvoiceService(clientRepo, invoiceRepo, paymentRepo, log)
	paymentService := appledger.NewPaymentService(paymentRepo, tm, log)
	importService := importer.NewService(tm, log)
	reportService := report.NewService(clientRepo, invoiceRepo, paymentRepo, log)

	requireAuth := middleware.RequireAuth(jwtService, userRepo)
	requireAdmin := middleware.RequireAdmin()
	loginLimiter := middleware.RateLimit(middleware.NewRateLimiter(100, time.Minute))
	uploadLimit := middleware.BodyLimit(5 << 20)

	engine := gin.New()
	router.NewRouter(engine).
		Register(NewAuthHandler(authService, requireAuth, requireAdmin, loginLimiter)).
		Register(NewClientHandler(clientService, requireAuth, requireAdmin)).
		Register(NewInvoiceHandler(invoiceService, importService, 5<<20, requireAuth, requireAdmin, uploadLimit)).
		Register(NewPaymentHandler(paymentService, requireAuth, requireAdmin)).
		Register(NewReportHandler(reportService, requireAuth)).
		Register(NewSystemHandler(nil, "credit-ledger")).
		Setup()

	ctx := context.Background()
	seedUser := func(username string, role identity.Role) string {
		user, err := identity.NewUser(username, "correct-horse-9", username, role)
		require.NoError(t, err)
		require.NoError(t, userRepo.Save(ctx, user))
		token, err := jwtService.GenerateToken(auth.GenerateTokenInput{
			UserID:   user.ID,
			Username: user.Username,
			Role:     string(user.Role),
		})
		require.NoError(t, err)
		return token.AccessToken
	}

	return &apiEnv{
		router:     engine,
		adminToken: seedUser("admin1", identity.RoleAdmin),
		staffToken: seedUser("staff1", identity.RoleStaff),
	}
}

func (e *apiEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func dataField(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var envelope struct {
		Success bool                   `json:"success"`
		Data    map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.True(t, envelope.Success, w.Body.String())
	return envelope.Data
}

func TestAPI_LoginFlow(t *testing.T) {
	env := setupAPI(t)

	w := env.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": "staff1", "password": "correct-horse-9",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data := dataField(t, w)
	assert.NotEmpty(t, data["access_token"])
	assert.Equal(t, "Bearer", data["token_type"])

	w = env.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": "staff1", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_CREDENTIALS")
}

func TestAPI_RegisterIsAdminOnly(t *testing.T) {
	env := setupAPI(t)
	body := map[string]string{
		"username": "newstaff", "password": "longenough-pass1",
		"full_name": "New Staff", "role": "staff",
	}

	w := env.do(t, http.MethodPost, "/api/v1/auth/register", env.staffToken, body)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(t, http.MethodPost, "/api/v1/auth/register", env.adminToken, body)
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func TestAPI_ClientLifecycle(t *testing.T) {
	env := setupAPI(t)

	w := env.do(t, http.MethodPost, "/api/v1/clients", env.staffToken, map[string]string{
		"company_name": "Acme Traders",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	clientID := dataField(t, w)["id"].(string)

	// duplicate name conflicts
	w = env.do(t, http.MethodPost, "/api/v1/clients", env.staffToken, map[string]string{
		"company_name": "acme traders",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = env.do(t, http.MethodGet, "/api/v1/clients?search=acme", env.staffToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// deletion is admin only
	w = env.do(t, http.MethodDelete, "/api/v1/clients/"+clientID, env.staffToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = env.do(t, http.MethodDelete, "/api/v1/clients/"+clientID, env.adminToken, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = env.do(t, http.MethodGet, "/api/v1/clients/"+clientID, env.staffToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAPI_InvoiceAndPayment(t *testing.T) {
	env := setupAPI(t)

	w := env.do(t, http.MethodPost, "/api/v1/clients", env.staffToken, map[string]string{
		"company_name": "Acme Traders",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	clientID := dataField(t, w)["id"].(string)

	w = env.do(t, http.MethodPost, "/api/v1/invoices", env.staffToken, map[string]interface{}{
		"client_id":      clientID,
		"invoice_number": "INV-001",
		"invoice_date":   "2026-01-05",
		"due_date":       "2026-02-05",
		"total_amount":   "1000",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	invoiceID := dataField(t, w)["id"].(string)

	w = env.do(t, http.MethodPost, "/api/v1/payments", env.staffToken, map[string]interface{}{
		"invoice_id":   invoiceID,
		"amount":       "400",
		"payment_date": "2026-01-20",
		"payment_mode": "NEFT",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// overpayment is rejected
	w = env.do(t, http.MethodPost, "/api/v1/payments", env.staffToken, map[string]interface{}{
		"invoice_id":   invoiceID,
		"amount":       "700",
		"payment_date": "2026-01-21",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "PAYMENT_EXCEEDS_OUTSTANDING")

	w = env.do(t, http.MethodGet, "/api/v1/invoices/"+invoiceID, env.staffToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	invoice := dataField(t, w)
	assert.Equal(t, "Partial", invoice["status"])
	assert.Equal(t, "600", invoice["outstanding"])
}

func TestAPI_Import(t *testing.T) {
	env := setupAPI(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "upload.csv")
	require.NoError(t, err)
	fmt.Fprintln(part, "Client Name,Invoice Number,Invoice Date,Due Date,Invoice Amount")
	fmt.Fprintln(part, "Acme Traders,INV-801,2026-01-05,2026-02-05,1500")
	fmt.Fprintln(part, "Acme Traders,INV-802,bad-date,2026-02-06,500")
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/invoices/import?auto_create_clients=true", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+env.staffToken)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	result := dataField(t, w)
	assert.Equal(t, float64(2), result["total_rows"])
	assert.Equal(t, float64(1), result["imported"])
	assert.Equal(t, float64(1), result["new_clients_created"])
	errs := result["errors"].([]interface{})
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "Row 3:")
}

func TestAPI_ReportExport(t *testing.T) {
	env := setupAPI(t)

	w := env.do(t, http.MethodGet, "/api/v1/reports/export?report_type=outstanding", env.staffToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename="outstanding_report.xlsx"`, w.Header().Get("Content-Disposition"))
	assert.NotEmpty(t, w.Body.Bytes())

	w = env.do(t, http.MethodGet, "/api/v1/reports/export?report_type=weekly", env.staffToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAPI_Dashboard(t *testing.T) {
	env := setupAPI(t)

	w := env.do(t, http.MethodGet, "/api/v1/dashboard", env.staffToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	dash := dataField(t, w)
	assert.Contains(t, dash, "total_outstanding")
	assert.Contains(t, dash, "payments_today")
	assert.Contains(t, dash, "top_clients")

	// unauthenticated access is rejected
	w = env.do(t, http.MethodGet, "/api/v1/dashboard", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAPI_Health(t *testing.T) {
	env := setupAPI(t)

	// health stays open but reports the missing database
	w := env.do(t, http.MethodGet, "/api/v1/health", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "unreachable")
}
