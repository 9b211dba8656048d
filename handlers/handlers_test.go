package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/baxtbl4b/app-goroshina/config"
	"github.com/baxtbl4b/app-goroshina/db"
	"github.com/baxtbl4b/app-goroshina/delivery"
	"github.com/baxtbl4b/app-goroshina/fitment"
	"github.com/baxtbl4b/app-goroshina/stock"
	"github.com/baxtbl4b/app-goroshina/supplier"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	mu      sync.Mutex
	calls   int
	records []fitment.Record
	err     error
}

func (f *fakeSource) Fitment(ctx context.Context, brand, model, year string) ([]fitment.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if brand != "toyota" {
		return []fitment.Record{}, nil
	}
	return f.records, nil
}

func (f *fakeSource) Models(ctx context.Context, brand string) ([]supplier.Model, error) {
	return []supplier.Model{{Slug: "camry", Name: "Camry"}}, nil
}

func (f *fakeSource) Search(ctx context.Context, query string) ([]supplier.Model, error) {
	if len(strings.TrimSpace(query)) < 2 {
		return []supplier.Model{}, nil
	}
	return []supplier.Model{{Slug: "camry", Name: "Camry", BrandSlug: "toyota"}}, nil
}

func camryRecords() []fitment.Record {
	return []fitment.Record{{
		BoltPattern: "5x114.3",
		CenterBore:  "60.1",
		OEMTires:    []fitment.Size{{Width: "215", Height: "55", Diam: "17"}},
		OEMRims:     []fitment.Rim{{Diam: "17", Width: "7", ET: "45"}},
	}}
}

func newTestApp(t *testing.T, src *fakeSource) *fiber.App {
	t.Helper()
	require.NoError(t, Init(src, stock.New(stock.DefaultRules(), delivery.DefaultTable())))

	app := fiber.New(fiber.Config{ErrorHandler: CustomErrorHandler})
	app.Use(GarageMiddleware)

	api := app.Group("/api")
	api.Get("/fitment", HandleFitment)
	api.Get("/models", HandleModels)
	api.Get("/search", HandleSearch)
	api.Get("/products/:id/stock", HandleProductStock)
	api.Get("/products/:id/stock/cap", HandleStockCap)
	api.Get("/garage", HandleGarageList)
	api.Post("/garage", HandleGarageAdd)
	api.Delete("/garage/:id", HandleGarageDelete)
	api.Get("/admin/cache", HandleCacheStats)
	app.Get("/health", HandleHealth)
	return app
}

func mockDB(t *testing.T) sqlmock.Sqlmock {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	db.SetForTesting(sqlDB)
	return mock
}

func doJSON(t *testing.T, app *fiber.App, req *http.Request, out any) int {
	t.Helper()
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if out != nil {
		require.NoError(t, json.Unmarshal(body, out), string(body))
	}
	return resp.StatusCode
}

func TestHandleFitment(t *testing.T) {
	src := &fakeSource{records: camryRecords()}
	app := newTestApp(t, src)

	var res fitment.Result
	status := doJSON(t, app, httptest.NewRequest(http.MethodGet, "/api/fitment?brand=Toyota&model=Camry&year=2020", nil), &res)

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "5x114.3", res.BoltPattern)
	assert.Equal(t, []fitment.TireSize{{Width: "215", Height: "55", Diameter: "17"}}, res.UniformSizes)
	assert.False(t, res.IsWheelDataIncomplete)

	results.Wait()
	doJSON(t, app, httptest.NewRequest(http.MethodGet, "/api/fitment?brand=toyota&model=camry&year=2020", nil), &res)
	assert.Equal(t, 1, src.calls)
}

func TestHandleFitment_PartialSelection(t *testing.T) {
	src := &fakeSource{records: camryRecords()}
	app := newTestApp(t, src)

	for _, target := range []string{
		"/api/fitment",
		"/api/fitment?brand=toyota",
		"/api/fitment?brand=toyota&model=camry",
		"/api/fitment?model=camry&year=2020",
	} {
		var body map[string]any
		status := doJSON(t, app, httptest.NewRequest(http.MethodGet, target, nil), &body)
		assert.Equal(t, http.StatusBadRequest, status, target)
		assert.Equal(t, "Brand, model and year are required", body["error"])
	}
	assert.Equal(t, 0, src.calls)
}

func TestHandleFitment_NoData(t *testing.T) {
	app := newTestApp(t, &fakeSource{})

	var res fitment.Result
	status := doJSON(t, app, httptest.NewRequest(http.MethodGet, "/api/fitment?brand=lada&model=niva&year=1990", nil), &res)

	assert.Equal(t, http.StatusOK, status)
	assert.NotNil(t, res.UniformSizes)
	assert.Empty(t, res.UniformSizes)
}

func TestHandleFitment_VendorError(t *testing.T) {
	app := newTestApp(t, &fakeSource{err: errors.New("timeout")})

	status := doJSON(t, app, httptest.NewRequest(http.MethodGet, "/api/fitment?brand=toyota&model=camry&year=2021", nil), nil)

	assert.Equal(t, http.StatusBadGateway, status)
}

func TestHandleModelsAndSearch(t *testing.T) {
	app := newTestApp(t, &fakeSource{})

	var models []supplier.Model
	assert.Equal(t, http.StatusOK, doJSON(t, app, httptest.NewRequest(http.MethodGet, "/api/models?brand=toyota", nil), &models))
	assert.Len(t, models, 1)

	assert.Equal(t, http.StatusBadRequest, doJSON(t, app, httptest.NewRequest(http.MethodGet, "/api/models", nil), nil))

	assert.Equal(t, http.StatusOK, doJSON(t, app, httptest.NewRequest(http.MethodGet, "/api/search?q=c", nil), &models))
	assert.Empty(t, models)
}

func productRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "name", "provider", "stock", "storehouse", "provider_stock", "updated_at"}).
		AddRow("tire-1", "Winter 205/55 R16", "localVendor", 15,
			`{"Highway Warehouse A":5,"Other City":10}`, `{}`, time.Now())
}

func TestHandleProductStock(t *testing.T) {
	app := newTestApp(t, &fakeSource{})
	mock := mockDB(t)
	mock.ExpectQuery("FROM Product WHERE id").WithArgs("tire-1").WillReturnRows(productRows())

	var body struct {
		ProductID string           `json:"productId"`
		Locations []stock.Location `json:"locations"`
		Total     int              `json:"total"`
	}
	status := doJSON(t, app, httptest.NewRequest(http.MethodGet, "/api/products/tire-1/stock", nil), &body)

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, 15, body.Total)
	require.Len(t, body.Locations, 2)
	assert.Equal(t, "Highway Warehouse A", body.Locations[0].Location)
	assert.Equal(t, "On order", body.Locations[1].Location)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandleProductStock_NotFound(t *testing.T) {
	app := newTestApp(t, &fakeSource{})
	mock := mockDB(t)
	mock.ExpectQuery("FROM Product WHERE id").WithArgs("nope").WillReturnRows(sqlmock.NewRows([]string{"id"}))

	status := doJSON(t, app, httptest.NewRequest(http.MethodGet, "/api/products/nope/stock", nil), nil)

	assert.Equal(t, http.StatusNotFound, status)
}

func TestHandleStockCap(t *testing.T) {
	app := newTestApp(t, &fakeSource{})
	mock := mockDB(t)
	mock.ExpectQuery("FROM Product WHERE id").WithArgs("tire-1").WillReturnRows(productRows())

	var body map[string]any
	status := doJSON(t, app, httptest.NewRequest(http.MethodGet, "/api/products/tire-1/stock/cap?location=Highway+Warehouse+A&qty=8", nil), &body)

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(5), body["allowed"])
}

func TestHandleGarageAdd(t *testing.T) {
	app := newTestApp(t, &fakeSource{records: camryRecords()})
	mock := mockDB(t)
	mock.ExpectExec("INSERT INTO GarageVehicle").WillReturnResult(sqlmock.NewResult(1, 1))

	payload := `{"brand":"Toyota","model":"Camry","year":"2020","season":"winter",
		"size":{"width":"215","height":"55","diameter":"17"}}`
	req := httptest.NewRequest(http.MethodPost, "/api/garage", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	var body map[string]any
	status := doJSON(t, app, req, &body)

	assert.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "toyota", body["brand"])
	wheel := body["wheel"].(map[string]any)
	assert.Equal(t, "5x114.3", wheel["pcd"])
	assert.Equal(t, "60.1", wheel["dia"])
	assert.Equal(t, "7", wheel["width"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandleGarageAdd_SizeNotOffered(t *testing.T) {
	app := newTestApp(t, &fakeSource{records: camryRecords()})
	mockDB(t)

	payload := `{"brand":"toyota","model":"camry","year":"2020","season":"summer",
		"size":{"width":"315","height":"30","diameter":"21"}}`
	req := httptest.NewRequest(http.MethodPost, "/api/garage", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	assert.Equal(t, http.StatusBadRequest, doJSON(t, app, req, nil))
}

func TestHandleGarageDelete_NotFound(t *testing.T) {
	app := newTestApp(t, &fakeSource{})
	mock := mockDB(t)
	mock.ExpectExec("DELETE FROM GarageVehicle").WillReturnResult(sqlmock.NewResult(0, 0))

	status := doJSON(t, app, httptest.NewRequest(http.MethodDelete, "/api/garage/v1", nil), nil)

	assert.Equal(t, http.StatusNotFound, status)
}

func TestGarageMiddleware_IssuesCookie(t *testing.T) {
	app := newTestApp(t, &fakeSource{})
	mock := mockDB(t)
	mock.ExpectQuery("FROM GarageVehicle").WillReturnRows(
		sqlmock.NewRows([]string{"id", "brand", "model", "year", "tires", "wheel", "created_at"}))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/garage", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Set-Cookie"), "garage_id=")
}

func TestHandleHealth(t *testing.T) {
	app := newTestApp(t, &fakeSource{})
	mockDB(t)

	var body map[string]string
	status := doJSON(t, app, httptest.NewRequest(http.MethodGet, "/health", nil), &body)

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "up", body["database"])
}

func TestHandleCacheStats(t *testing.T) {
	app := newTestApp(t, &fakeSource{})

	var stats []map[string]any
	status := doJSON(t, app, httptest.NewRequest(http.MethodGet, "/api/admin/cache", nil), &stats)

	assert.Equal(t, http.StatusOK, status)
	require.Len(t, stats, 1)
	assert.Equal(t, "Fitment Result Cache", stats[0]["cache_type"])
}

func TestAdminRequired(t *testing.T) {
	newTestApp(t, &fakeSource{})
	app := fiber.New(fiber.Config{ErrorHandler: CustomErrorHandler})
	app.Post("/clear", AdminRequired, HandleClearCache)

	config.AdminToken = ""
	req := httptest.NewRequest(http.MethodPost, "/clear", nil)
	assert.Equal(t, http.StatusForbidden, doJSON(t, app, req, nil))

	config.AdminToken = "s3cret"
	t.Cleanup(func() { config.AdminToken = "" })

	req = httptest.NewRequest(http.MethodPost, "/clear", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	assert.Equal(t, http.StatusForbidden, doJSON(t, app, req, nil))

	req = httptest.NewRequest(http.MethodPost, "/clear", nil)
	req.Header.Set("Authorization", "Bearer s3cret")
	var stats []map[string]any
	assert.Equal(t, http.StatusOK, doJSON(t, app, req, &stats))
	assert.Len(t, stats, 1)
}
