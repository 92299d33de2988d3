package v1_test

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopledger/internal/app"
	"shopledger/internal/app/apptest"
	"shopledger/internal/infrastructure/filestore"
	v1 "shopledger/internal/infrastructure/http/v1"
	"shopledger/internal/infrastructure/http/v1/handlers"
	"shopledger/pkg/logger"
)

type apiClient struct {
	t       *testing.T
	handler http.Handler
	token   string
}

func newClient(t *testing.T, checks map[string]handlers.Pinger) *apiClient {
	t.Helper()
	media, err := filestore.NewLocal(t.TempDir(), "/media")
	require.NoError(t, err)
	env := apptest.New(t, func(o *app.Options) { o.Media = media })
	h := v1.NewHandler(v1.RouterConfig{
		Services: env.Services,
		Logger:   logger.Nop(),
		Checks:   checks,
	})
	return &apiClient{t: t, handler: h}
}

func (c *apiClient) do(method, path string, body any) *httptest.ResponseRecorder {
	c.t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(c.t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	rec := httptest.NewRecorder()
	c.handler.ServeHTTP(rec, req)
	return rec
}

func (c *apiClient) json(method, path string, body any, wantStatus int) map[string]any {
	c.t.Helper()
	rec := c.do(method, path, body)
	require.Equal(c.t, wantStatus, rec.Code, rec.Body.String())
	if rec.Body.Len() == 0 {
		return nil
	}
	var out map[string]any
	require.NoError(c.t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func (c *apiClient) login() {
	c.t.Helper()
	c.json(http.MethodPost, "/api/v1/auth/register", map[string]any{
		"username": "owner",
		"email":    "owner@example.com",
		"password": "correct-horse",
	}, http.StatusCreated)

	out := c.json(http.MethodPost, "/api/v1/auth/login", map[string]any{
		"login":    "owner",
		"password": "correct-horse",
	}, http.StatusOK)
	token := out["token"].(map[string]any)
	c.token = token["accessToken"].(string)
	require.NotEmpty(c.t, c.token)
}

func TestRouter_RequiresBearerToken(t *testing.T) {
	c := newClient(t, nil)

	out := c.json(http.MethodGet, "/api/v1/products", nil, http.StatusUnauthorized)
	assert.Equal(t, "UNAUTHORIZED", out["code"])

	c.token = "not-a-jwt"
	out = c.json(http.MethodGet, "/api/v1/products", nil, http.StatusUnauthorized)
	assert.Equal(t, "UNAUTHORIZED", out["code"])
}

func TestRouter_TraceHeaders(t *testing.T) {
	c := newClient(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	req.Header.Set("X-Request-ID", "req-1")
	rec := httptest.NewRecorder()
	c.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "req-1", rec.Header().Get("X-Request-ID"))
	assert.NotEmpty(t, rec.Header().Get("X-Trace-ID"))
}

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return errors.New("connection refused") }

func TestRouter_Readiness(t *testing.T) {
	c := newClient(t, map[string]handlers.Pinger{"database": failingPinger{}, "cache": nil})

	out := c.json(http.MethodGet, "/health/ready", nil, http.StatusServiceUnavailable)
	assert.Equal(t, "error", out["status"])
	checks := out["checks"].(map[string]any)
	assert.Contains(t, checks["database"], "connection refused")
	assert.NotContains(t, checks, "cache")
}

func TestRouter_CreditSaleFlow(t *testing.T) {
	c := newClient(t, nil)
	c.login()

	product := c.json(http.MethodPost, "/api/v1/products", map[string]any{
		"name":          "Green tea",
		"sku":           "TEA1",
		"unit":          "pc",
		"purchasePrice": "100",
		"salePrice":     "150",
		"quantity":      "10",
	}, http.StatusCreated)
	assert.Equal(t, "active", product["status"])
	assert.Equal(t, "50", product["profit"])

	buyer := c.json(http.MethodPost, "/api/v1/customers", map[string]any{
		"firstName": "Aziz",
		"lastName":  "Karimov",
		"phone":     "+998 90 123-45-67",
	}, http.StatusCreated)

	sale := c.json(http.MethodPost, "/api/v1/sales", map[string]any{
		"productId":     product["id"],
		"customerId":    buyer["id"],
		"quantity":      "7",
		"paymentMethod": "credit",
	}, http.StatusCreated)
	assert.Equal(t, "1050", sale["total"])
	assert.Equal(t, "1050", sale["remainingAmount"])
	assert.Equal(t, false, sale["isPaid"])

	stored := c.json(http.MethodGet, "/api/v1/products/"+product["id"].(string), nil, http.StatusOK)
	assert.Equal(t, "3", stored["quantity"])
	assert.Equal(t, "low_stock", stored["status"])

	debts := c.json(http.MethodGet, "/api/v1/debts?customerId="+buyer["id"].(string), nil, http.StatusOK)
	items := debts["items"].([]any)
	require.Len(t, items, 1)
	debt := items[0].(map[string]any)
	assert.Equal(t, "pending", debt["status"])

	paid := c.json(http.MethodPost, "/api/v1/debts/"+debt["id"].(string)+"/payments", map[string]any{
		"amount": "50",
	}, http.StatusOK)
	assert.Equal(t, "partially_paid", paid["status"])
	assert.Equal(t, "1000", paid["remainingAmount"])

	over := c.json(http.MethodPost, "/api/v1/debts/"+debt["id"].(string)+"/payments", map[string]any{
		"amount": "5000",
	}, http.StatusUnprocessableEntity)
	assert.Equal(t, "OVERPAYMENT", over["code"])

	stats := c.json(http.MethodGet, "/api/v1/dashboard/2024-01-15", nil, http.StatusOK)
	assert.Equal(t, "1050", stats["totalSales"])
	assert.EqualValues(t, 1, stats["salesCount"])

	report := c.json(http.MethodGet, "/api/v1/reports/sales?period=day&date=2024-01-15", nil, http.StatusOK)
	rows := report["rows"].([]any)
	require.Len(t, rows, 1)
	assert.Equal(t, "350", rows[0].(map[string]any)["profit"])
}

func TestRouter_OutOfStockAndValidation(t *testing.T) {
	c := newClient(t, nil)
	c.login()

	product := c.json(http.MethodPost, "/api/v1/products", map[string]any{
		"name":          "Rice",
		"sku":           "RICE",
		"unit":          "kg",
		"purchasePrice": "1",
		"salePrice":     "2",
		"quantity":      "2",
	}, http.StatusCreated)

	out := c.json(http.MethodPost, "/api/v1/sales", map[string]any{
		"productId":     product["id"],
		"quantity":      "3",
		"paymentMethod": "cash",
	}, http.StatusUnprocessableEntity)
	assert.Equal(t, "OUT_OF_STOCK", out["code"])

	out = c.json(http.MethodGet, "/api/v1/products/not-a-uuid", nil, http.StatusBadRequest)
	assert.Equal(t, "VALIDATION_ERROR", out["code"])

	out = c.json(http.MethodGet, "/api/v1/sales?from=yesterday", nil, http.StatusBadRequest)
	assert.Equal(t, "VALIDATION_ERROR", out["code"])

	dup := c.json(http.MethodPost, "/api/v1/products", map[string]any{
		"name":          "Rice 2",
		"sku":           "RICE",
		"unit":          "kg",
		"purchasePrice": "1",
		"salePrice":     "2",
	}, http.StatusConflict)
	assert.Equal(t, "DUPLICATE_ENTRY", dup["code"])
}

func TestRouter_CategoryTree(t *testing.T) {
	c := newClient(t, nil)
	c.login()

	root := c.json(http.MethodPost, "/api/v1/categories", map[string]any{"name": "Drinks"}, http.StatusCreated)
	child := c.json(http.MethodPost, "/api/v1/categories", map[string]any{
		"name":     "Tea",
		"parentId": root["id"],
	}, http.StatusCreated)

	path := c.json(http.MethodGet, "/api/v1/categories/"+child["id"].(string)+"/path", nil, http.StatusOK)
	items := path["items"].([]any)
	require.Len(t, items, 2)
	assert.Equal(t, "Drinks", items[0].(map[string]any)["name"])

	details := c.json(http.MethodGet, "/api/v1/categories/"+root["id"].(string), nil, http.StatusOK)
	assert.Equal(t, true, details["hasSubcategories"])

	c.json(http.MethodPut, "/api/v1/categories/"+root["id"].(string), map[string]any{
		"name":     "Drinks",
		"parentId": child["id"],
	}, http.StatusBadRequest)

	history := c.json(http.MethodGet, "/api/v1/categories/"+root["id"].(string)+"/history", nil, http.StatusOK)
	assert.NotEmpty(t, history["items"])
}

func TestRouter_ProductImageUpload(t *testing.T) {
	c := newClient(t, nil)
	c.login()

	product := c.json(http.MethodPost, "/api/v1/products", map[string]any{
		"name":          "Soap",
		"unit":          "pc",
		"purchasePrice": "1",
		"salePrice":     "2",
	}, http.StatusCreated)
	productID := product["id"].(string)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "../../soap.png")
	require.NoError(t, err)
	_, err = fw.Write([]byte("png"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/products/"+productID+"/image", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+c.token)
	rec := httptest.NewRecorder()
	c.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, "/media/products/"+productID+"/soap.png", out["imageUrl"])
}

func TestRouter_GzipResponses(t *testing.T) {
	c := newClient(t, nil)
	c.login()

	for i := 0; i < 30; i++ {
		c.json(http.MethodPost, "/api/v1/customers", map[string]any{
			"firstName": "Customer",
			"lastName":  fmt.Sprintf("Number %d", i),
			"phone":     fmt.Sprintf("+998 90 000-00-%02d", i),
		}, http.StatusCreated)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/customers?limit=100", nil)
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	c.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))

	zr, err := gzip.NewReader(rec.Body)
	require.NoError(t, err)
	raw, err := io.ReadAll(zr)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.EqualValues(t, 30, out["totalCount"])
}
