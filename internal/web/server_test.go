package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"vantry/internal/database"
	"vantry/internal/events"
	"vantry/internal/models"
	"vantry/internal/repository"
	"vantry/internal/service"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	server *Server
	db     *database.DB
}

func setupServer(t *testing.T) *testEnv {
	t.Helper()
	logger := zerolog.Nop()

	db, err := database.NewDB(filepath.Join(t.TempDir(), "test.db"), &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	bus := events.NewBus(&logger)
	catalog := models.DefaultCatalog()
	drafts := service.NewDraftService(repository.NewMemoryDraftRepository(time.Hour), &logger)
	stock := service.NewStockService(db, bus, catalog, &logger)
	orders := service.NewOrderService(db, drafts, nil, bus, &logger)

	srv, err := New(stock, orders, drafts, catalog, &logger)
	require.NoError(t, err)
	return &testEnv{server: srv, db: db}
}

func (e *testEnv) seed(t *testing.T, name, category string, quantity, threshold int64) *models.Item {
	t.Helper()
	item := &models.Item{Name: name, Category: category, Quantity: quantity, Threshold: threshold}
	require.NoError(t, e.db.CreateItem(context.Background(), item))
	return item
}

func TestDashboardPage(t *testing.T) {
	env := setupServer(t)
	env.seed(t, "Burger Buns", "Buns & Chips", 0, 10)
	env.seed(t, "Cola", "Drinks", 40, 24)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	env.server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Burger Buns")
	assert.Contains(t, body, "Needs to buy")
	assert.Contains(t, body, "Buns &amp; Chips")
}

func TestDashboardUnknownPath(t *testing.T) {
	env := setupServer(t)

	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	rec := httptest.NewRecorder()
	env.server.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateFlow(t *testing.T) {
	env := setupServer(t)
	item := env.seed(t, "Cola", "Drinks", 10, 24)

	form := url.Values{}
	form.Add("id", "1")
	form.Set("quantity_1", "30")
	form.Set("threshold_1", "24")

	req := httptest.NewRequest(http.MethodPost, "/update", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	env.server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Applied 1 update(s)")

	got, err := env.db.GetItem(context.Background(), item.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(30), got.Quantity)
}

func TestUpdateReportsBadRows(t *testing.T) {
	env := setupServer(t)
	env.seed(t, "Cola", "Drinks", 10, 24)
	env.seed(t, "Fries", "Buns & Chips", 4, 10)

	form := url.Values{}
	form.Add("id", "1")
	form.Set("quantity_1", "7")
	form.Set("threshold_1", "10")
	form.Add("id", "2")
	form.Set("quantity_2", "lots")
	form.Set("threshold_2", "24")

	req := httptest.NewRequest(http.MethodPost, "/update", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	env.server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Applied 1 update(s)")
	assert.Contains(t, body, "quantity must be a whole number")
}

func TestAddItemFlow(t *testing.T) {
	env := setupServer(t)

	form := url.Values{}
	form.Set("name", "Orange Juice")
	form.Set("category", "Drinks")
	form.Set("quantity", "6")

	req := httptest.NewRequest(http.MethodPost, "/add", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	env.server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Contains(t, rec.Header().Get("Location"), "added=Orange")

	item, err := env.db.GetItemByName(context.Background(), "Orange Juice")
	require.NoError(t, err)
	assert.Equal(t, int64(24), item.Threshold)
}

func TestAddItemValidationError(t *testing.T) {
	env := setupServer(t)

	form := url.Values{}
	form.Set("name", "")
	form.Set("category", "Drinks")

	req := httptest.NewRequest(http.MethodPost, "/add", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	env.server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "name: is required")
}

func TestOrderWorksheetShowsOnlyLowItems(t *testing.T) {
	env := setupServer(t)
	env.seed(t, "Buns", "Buns & Chips", 5, 10)
	env.seed(t, "Cups", "Packaging & Delivery", 20, 5)

	req := httptest.NewRequest(http.MethodGet, "/order", nil)
	rec := httptest.NewRecorder()
	env.server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Buns")
	assert.NotContains(t, body, "Cups")
}

func TestComposeFlow(t *testing.T) {
	env := setupServer(t)
	item := env.seed(t, "Buns", "Buns & Chips", 5, 10)

	form := url.Values{}
	form.Set("qty_1", "25")
	form.Set("note_1", "weekend rush")

	req := httptest.NewRequest(http.MethodPost, "/order/compose", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	env.server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusSeeOther, rec.Code)
	location := rec.Header().Get("Location")
	assert.Contains(t, location, "/order/view?id=")

	// Follow the redirect and check the rendered message.
	req = httptest.NewRequest(http.MethodGet, location, nil)
	rec = httptest.NewRecorder()
	env.server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Buns x 25 (weekend rush)")
	assert.Contains(t, body, "wa.me")

	orders, err := env.db.ListRecentOrders(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, item.ID, orders[0].Lines[0].ItemID)
}

func TestComposeNothingToOrderRedirects(t *testing.T) {
	env := setupServer(t)
	env.seed(t, "Cola", "Drinks", 40, 24)

	req := httptest.NewRequest(http.MethodPost, "/order/compose", nil)
	rec := httptest.NewRecorder()
	env.server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/order?empty=1", rec.Header().Get("Location"))
}

func TestExportDownload(t *testing.T) {
	env := setupServer(t)
	env.seed(t, "Cola", "Drinks", 10, 24)

	req := httptest.NewRequest(http.MethodGet, "/export", nil)
	rec := httptest.NewRecorder()
	env.server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "spreadsheetml")
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "inventory_")
	assert.NotEmpty(t, rec.Body.Bytes())
}

func TestHealthz(t *testing.T) {
	env := setupServer(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	env.server.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}
