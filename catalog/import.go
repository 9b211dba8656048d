package catalog

import (
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ProviderColumnPrefix marks a header column holding a provider's own
// quantity rather than a warehouse
const ProviderColumnPrefix = "provider:"

// ImportResult is the outcome of reading a stock sheet
type ImportResult struct {
	Products    []Product `json:"products"`
	ValidRows   int       `json:"validRows"`
	InvalidRows int       `json:"invalidRows"`
	Errors      []string  `json:"errors,omitempty"`
}

// ImportXLSX reads the first sheet of a stock workbook. The header row is
// "id", "name", then one column per warehouse; a column named
// "provider:<name>" holds that provider's own quantity.
func ImportXLSX(r io.Reader, provider string) (*ImportResult, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	if len(rows) < 1 || len(rows[0]) < 3 {
		return nil, fmt.Errorf("header must have id, name and at least one warehouse column")
	}

	header := rows[0]
	result := &ImportResult{Products: []Product{}}

	for i := 1; i < len(rows); i++ {
		row := rows[i]
		if len(row) == 0 || strings.TrimSpace(row[0]) == "" {
			continue
		}

		p, err := parseRow(header, row, provider)
		if err != nil {
			result.InvalidRows++
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", i+1, err))
			continue
		}
		result.ValidRows++
		result.Products = append(result.Products, p)
	}

	log.Printf("[catalog] Imported %d products (%d invalid rows) for provider %q",
		result.ValidRows, result.InvalidRows, provider)
	return result, nil
}

func parseRow(header, row []string, provider string) (Product, error) {
	p := Product{
		ID:   strings.TrimSpace(row[0]),
		Name: cell(row, 1),
	}
	p.Provider = provider
	p.Storehouse = make(map[string]int)

	for col := 2; col < len(header); col++ {
		name := strings.TrimSpace(header[col])
		raw := cell(row, col)
		if name == "" || raw == "" {
			continue
		}

		qty, err := parseQuantity(raw)
		if err != nil {
			return Product{}, fmt.Errorf("column %q: %w", name, err)
		}

		if vendor, ok := strings.CutPrefix(strings.ToLower(name), ProviderColumnPrefix); ok {
			if p.ProviderStock == nil {
				p.ProviderStock = make(map[string]int)
			}
			p.ProviderStock[strings.TrimSpace(vendor)] = qty
			continue
		}

		p.Storehouse[name] += qty
		p.Stock += qty
	}

	return p, nil
}

func cell(row []string, i int) string {
	if i < len(row) {
		return strings.TrimSpace(row[i])
	}
	return ""
}

// parseQuantity accepts plain counts and the "> 20" / "20+" forms some
// suppliers use for large stock
func parseQuantity(s string) (int, error) {
	s = strings.TrimSpace(strings.Trim(s, "<>+ "))
	s = strings.ReplaceAll(s, " ", "")
	qty, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid quantity %q", s)
	}
	if qty < 0 {
		return 0, nil
	}
	return qty, nil
}
