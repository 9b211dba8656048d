package catalog

import (
	"bytes"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/baxtbl4b/app-goroshina/db"
	"github.com/baxtbl4b/app-goroshina/stock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestGet(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()
	db.SetForTesting(sqlDB)

	updated := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "name", "provider", "stock", "storehouse", "provider_stock", "updated_at"}).
		AddRow("tire-1", "Winter 205/55 R16", "localvendor", 15,
			`{"Highway Warehouse A":5,"Other City":10}`, `{}`, updated)
	mock.ExpectQuery("FROM Product WHERE id").
		WithArgs("tire-1").
		WillReturnRows(rows)

	p, err := Get("tire-1")

	require.NoError(t, err)
	assert.Equal(t, "Winter 205/55 R16", p.Name)
	assert.Equal(t, 15, p.Stock)
	assert.Equal(t, map[string]int{"Highway Warehouse A": 5, "Other City": 10}, p.Storehouse)
	assert.Empty(t, p.ProviderStock)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGet_NotFound(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()
	db.SetForTesting(sqlDB)

	mock.ExpectQuery("FROM Product WHERE id").
		WithArgs("nope").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err = Get("nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpsert(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()
	db.SetForTesting(sqlDB)

	mock.ExpectBegin()
	prep := mock.ExpectPrepare("INSERT INTO Product")
	prep.ExpectExec().
		WithArgs("tire-1", "Summer", "acme", 4, `{"Springfield":4}`, `{"remotevendor":2}`, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	prep.ExpectExec().
		WithArgs("tire-2", "", "", 0, `{}`, `{}`, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	err = Upsert(
		Product{ID: "tire-1", Name: "Summer", Product: stock.Product{
			Provider:      "acme",
			Stock:         4,
			Storehouse:    map[string]int{"Springfield": 4},
			ProviderStock: map[string]int{"remotevendor": 2},
		}},
		Product{ID: "tire-2"},
	)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func workbook(t *testing.T, rows [][]any) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cellName, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cellName, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestImportXLSX(t *testing.T) {
	buf := workbook(t, [][]any{
		{"id", "name", "Highway Warehouse A", "Other City", "provider:RemoteVendor"},
		{"tire-1", "Winter 205/55 R16", 5, 10, 4},
		{"tire-2", "Summer 225/45 R17", "> 20", "", ""},
		{"", "blank id is skipped"},
		{"tire-3", "Broken", "lots", 1},
	})

	res, err := ImportXLSX(buf, "localvendor")
	require.NoError(t, err)

	assert.Equal(t, 2, res.ValidRows)
	assert.Equal(t, 1, res.InvalidRows)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "row 5")

	require.Len(t, res.Products, 2)
	first := res.Products[0]
	assert.Equal(t, "tire-1", first.ID)
	assert.Equal(t, "localvendor", first.Provider)
	assert.Equal(t, 15, first.Stock)
	assert.Equal(t, map[string]int{"Highway Warehouse A": 5, "Other City": 10}, first.Storehouse)
	assert.Equal(t, map[string]int{"remotevendor": 4}, first.ProviderStock)

	second := res.Products[1]
	assert.Equal(t, 20, second.Stock)
	assert.Nil(t, second.ProviderStock)
}

func TestImportXLSX_BadHeader(t *testing.T) {
	buf := workbook(t, [][]any{{"id", "name"}})

	_, err := ImportXLSX(buf, "acme")
	assert.Error(t, err)
}
