//go:build integration

package e2e

// End-to-end tests using real Postgres + Redis via testcontainers.
// Run with: go test -tags integration ./tests/e2e/... -v
//
// Covered flows:
//   - directory sync → create quote → add item (auto dependency) → send
//   - approval round-trip for a quote over the threshold
//   - role enforcement: a vendedor cannot approve

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
	"golang.org/x/crypto/bcrypt"

	"cabinetcpq/internal/config"
	"cabinetcpq/internal/infra"
	"cabinetcpq/internal/model"
	"cabinetcpq/internal/router"
)

// ── Helpers ──────────────────────────────────────────────────────────────────

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func do(t *testing.T, srv *httptest.Server, method, path string, body *bytes.Buffer, token string) *http.Response {
	t.Helper()
	var req *http.Request
	var err error
	if body != nil {
		req, err = http.NewRequest(method, srv.URL+path, body)
	} else {
		req, err = http.NewRequest(method, srv.URL+path, nil)
	}
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}

func mustDec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// ── Test Suite Setup ─────────────────────────────────────────────────────────

type testEnv struct {
	server          *httptest.Server
	adminToken      string
	vendorToken     string
	supervisorToken string
	engine          *gin.Engine
	cabinetID       string
	hingeID         string
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	pgC, err := tcPostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcPostgres.WithDatabase("cabinetcpq_test"),
		tcPostgres.WithUsername("cabinetcpq"),
		tcPostgres.WithPassword("cabinetcpq"),
		tcPostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	pgURL, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	rdC, err := tcRedis.RunContainer(ctx,
		testcontainers.WithImage("redis:7-alpine"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdC.Terminate(ctx) })

	rdURL, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)

	// Fake customer directory
	email := "buyer@acme.example"
	dirSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/customers/ACME-001" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(infra.DirectoryRecord{
			DirectoryID:      "ACME-001",
			Name:             "Acme Kitchens",
			Email:            &email,
			ContractDiscount: mustDec("10"),
			CustomerDiscount: mustDec("5"),
		})
	}))
	t.Cleanup(dirSrv.Close)

	cfg := &config.Config{
		Port:                   8000,
		Env:                    "test",
		JWTSecret:              "test-secret-key",
		JWTExpirationHours:     8,
		JWTRefreshHours:        24,
		DatabaseURL:            pgURL,
		RedisURL:               rdURL,
		DirectoryURL:           dirSrv.URL,
		CatalogCacheTTLSeconds: 60,
		WorkerPoolSize:         1,
		PDFStoragePath:         t.TempDir(),
		ApprovalThreshold:      "10000",
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	require.NoError(t, err)
	rdb, err := infra.NewRedis(cfg.RedisURL)
	require.NoError(t, err)
	require.NoError(t, infra.RunMigrations(db))

	// Seed users for each role
	hash, err := bcrypt.GenerateFromPassword([]byte("cabinetcpq2026"), 12)
	require.NoError(t, err)
	for _, u := range []model.User{
		{Username: "admin.e2e", Name: "Admin E2E", PasswordHash: string(hash), Role: "administrador", Active: true},
		{Username: "vendor.e2e", Name: "Vendor E2E", PasswordHash: string(hash), Role: "vendedor", Active: true},
		{Username: "super.e2e", Name: "Supervisor E2E", PasswordHash: string(hash), Role: "supervisor", Active: true},
	} {
		require.NoError(t, db.Create(&u).Error)
	}

	breaker := infra.NewCircuitBreaker(infra.BreakerConfig{})
	r, _ := router.New(cfg, db, rdb, breaker)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	env := &testEnv{server: srv, engine: r}
	env.adminToken = login(t, srv, "admin.e2e")
	env.vendorToken = login(t, srv, "vendor.e2e")
	env.supervisorToken = login(t, srv, "super.e2e")

	// Seed a minimal catalog through the API (exercises the admin surface)
	env.cabinetID = createProduct(t, env, map[string]any{
		"code": "BC-600", "name": "Base cabinet 600mm", "category": "cabinet",
		"base_price": "200",
		"dimensions": map[string]any{"width": "600", "height": "720", "depth": "560"},
	})
	env.hingeID = createProduct(t, env, map[string]any{
		"code": "HG-STD", "name": "Hinge set", "category": "hardware", "base_price": "12.50",
	})
	depResp := do(t, env.server, "POST", "/v1/catalog/dependencies",
		jsonBody(t, map[string]any{
			"product_id":          env.cabinetID,
			"required_product_id": env.hingeID,
			"is_automatic":        true,
			"quantity_formula":    "qty * 2",
		}), env.adminToken)
	require.Equal(t, http.StatusCreated, depResp.StatusCode)
	depResp.Body.Close()

	// Pull the customer in from the directory
	syncResp := do(t, env.server, "POST", "/v1/customers/sync/ACME-001", nil, env.vendorToken)
	require.Equal(t, http.StatusOK, syncResp.StatusCode)
	syncResp.Body.Close()

	return env
}

func login(t *testing.T, srv *httptest.Server, username string) string {
	t.Helper()
	resp := do(t, srv, "POST", "/v1/auth/login",
		jsonBody(t, map[string]string{"username": username, "password": "cabinetcpq2026"}), "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body struct {
		AccessToken string `json:"access_token"`
	}
	decodeJSON(t, resp, &body)
	require.NotEmpty(t, body.AccessToken)
	return body.AccessToken
}

func createProduct(t *testing.T, env *testEnv, body map[string]any) string {
	t.Helper()
	resp := do(t, env.server, "POST", "/v1/catalog/products", jsonBody(t, body), env.adminToken)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created struct {
		ID string `json:"id"`
	}
	decodeJSON(t, resp, &created)
	return created.ID
}

type quoteBody struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Items  []struct {
		ID          string `json:"id"`
		ProductName string `json:"product_name"`
		Quantity    int    `json:"quantity"`
	} `json:"items"`
	FinalTotal       string `json:"final_total"`
	RequiresApproval bool   `json:"requires_approval"`
}

// ── Tests ────────────────────────────────────────────────────────────────────

// Directory sync → quote → item with automatic dependency → send.
func TestE2E_QuoteLifecycle(t *testing.T) {
	env := setupTestEnv(t)

	createResp := do(t, env.server, "POST", "/v1/quotes",
		jsonBody(t, map[string]any{"customer_id": "ACME-001"}), env.vendorToken)
	require.Equal(t, http.StatusCreated, createResp.StatusCode)
	var quote quoteBody
	decodeJSON(t, createResp, &quote)
	assert.Equal(t, "draft", quote.Status)

	itemResp := do(t, env.server, "POST", "/v1/quotes/"+quote.ID+"/items",
		jsonBody(t, map[string]any{"product_id": env.cabinetID, "quantity": 2}), env.vendorToken)
	require.Equal(t, http.StatusOK, itemResp.StatusCode)
	decodeJSON(t, itemResp, &quote)

	// Cabinet plus the automatically added hinge set (qty*2 = 4)
	require.Len(t, quote.Items, 2)
	assert.Equal(t, "Hinge set", quote.Items[1].ProductName)
	assert.Equal(t, 4, quote.Items[1].Quantity)
	assert.False(t, quote.RequiresApproval)

	sendResp := do(t, env.server, "POST", "/v1/quotes/"+quote.ID+"/send",
		jsonBody(t, map[string]any{}), env.vendorToken)
	require.Equal(t, http.StatusOK, sendResp.StatusCode)
	decodeJSON(t, sendResp, &quote)
	assert.Equal(t, "sent", quote.Status)

	listResp := do(t, env.server, "GET", "/v1/quotes", nil, env.vendorToken)
	require.Equal(t, http.StatusOK, listResp.StatusCode)
	var list struct {
		Data []struct {
			ID        string `json:"id"`
			Status    string `json:"status"`
			ItemCount int    `json:"item_count"`
		} `json:"data"`
	}
	decodeJSON(t, listResp, &list)
	require.Len(t, list.Data, 1)
	assert.Equal(t, quote.ID, list.Data[0].ID)
	assert.Equal(t, "sent", list.Data[0].Status)
	assert.Equal(t, 2, list.Data[0].ItemCount)
}

// A quote over the threshold needs supervisor approval before sending.
func TestE2E_ApprovalRoundTrip(t *testing.T) {
	env := setupTestEnv(t)

	createResp := do(t, env.server, "POST", "/v1/quotes",
		jsonBody(t, map[string]any{"customer_id": "ACME-001"}), env.vendorToken)
	require.Equal(t, http.StatusCreated, createResp.StatusCode)
	var quote quoteBody
	decodeJSON(t, createResp, &quote)

	itemResp := do(t, env.server, "POST", "/v1/quotes/"+quote.ID+"/items",
		jsonBody(t, map[string]any{"product_id": env.cabinetID, "quantity": 60}), env.vendorToken)
	require.Equal(t, http.StatusOK, itemResp.StatusCode)
	decodeJSON(t, itemResp, &quote)
	require.True(t, quote.RequiresApproval)

	// Sending before approval is refused
	earlySend := do(t, env.server, "POST", "/v1/quotes/"+quote.ID+"/send",
		jsonBody(t, map[string]any{}), env.vendorToken)
	assert.Equal(t, http.StatusBadRequest, earlySend.StatusCode)
	earlySend.Body.Close()

	submitResp := do(t, env.server, "POST", "/v1/quotes/"+quote.ID+"/submit",
		jsonBody(t, map[string]any{}), env.vendorToken)
	require.Equal(t, http.StatusOK, submitResp.StatusCode)
	decodeJSON(t, submitResp, &quote)
	assert.Equal(t, "pending_approval", quote.Status)

	approveResp := do(t, env.server, "POST", "/v1/quotes/"+quote.ID+"/approve",
		jsonBody(t, map[string]any{"note": "checked terms"}), env.supervisorToken)
	require.Equal(t, http.StatusOK, approveResp.StatusCode)
	decodeJSON(t, approveResp, &quote)
	assert.Equal(t, "approved", quote.Status)

	sendResp := do(t, env.server, "POST", "/v1/quotes/"+quote.ID+"/send",
		jsonBody(t, map[string]any{}), env.vendorToken)
	require.Equal(t, http.StatusOK, sendResp.StatusCode)
	decodeJSON(t, sendResp, &quote)
	assert.Equal(t, "sent", quote.Status)
}

// A vendedor cannot approve.
func TestE2E_ApproveRequiresSupervisorRole(t *testing.T) {
	env := setupTestEnv(t)

	createResp := do(t, env.server, "POST", "/v1/quotes",
		jsonBody(t, map[string]any{"customer_id": "ACME-001"}), env.vendorToken)
	require.Equal(t, http.StatusCreated, createResp.StatusCode)
	var quote quoteBody
	decodeJSON(t, createResp, &quote)

	resp := do(t, env.server, "POST", "/v1/quotes/"+quote.ID+"/approve",
		jsonBody(t, map[string]any{}), env.vendorToken)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()
}
