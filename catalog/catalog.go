package catalog

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/baxtbl4b/app-goroshina/db"
	"github.com/baxtbl4b/app-goroshina/stock"
)

var ErrNotFound = errors.New("product not found")

// Product is a catalog record with its embedded stock data
type Product struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	stock.Product
	UpdatedAt time.Time `json:"updatedAt"`
}

// Get loads a product by ID
func Get(id string) (Product, error) {
	var p Product
	var storehouse, providerStock string
	err := db.QueryRow(`SELECT id, name, provider, stock, storehouse, provider_stock, updated_at
		FROM Product WHERE id = ?`, id).
		Scan(&p.ID, &p.Name, &p.Provider, &p.Stock, &storehouse, &providerStock, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Product{}, ErrNotFound
	}
	if err != nil {
		return Product{}, fmt.Errorf("get product %s: %w", id, err)
	}

	if err := json.Unmarshal([]byte(storehouse), &p.Storehouse); err != nil {
		return Product{}, fmt.Errorf("decode storehouse of %s: %w", id, err)
	}
	if err := json.Unmarshal([]byte(providerStock), &p.ProviderStock); err != nil {
		return Product{}, fmt.Errorf("decode provider stock of %s: %w", id, err)
	}
	return p, nil
}

// Upsert stores products in one transaction
func Upsert(products ...Product) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin upsert: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.Prepare(`INSERT INTO Product (id, name, provider, stock, storehouse, provider_stock, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			provider = excluded.provider,
			stock = excluded.stock,
			storehouse = excluded.storehouse,
			provider_stock = excluded.provider_stock,
			updated_at = excluded.updated_at`)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, p := range products {
		storehouse, err := encodeQuantities(p.Storehouse)
		if err != nil {
			return fmt.Errorf("encode storehouse of %s: %w", p.ID, err)
		}
		providerStock, err := encodeQuantities(p.ProviderStock)
		if err != nil {
			return fmt.Errorf("encode provider stock of %s: %w", p.ID, err)
		}
		if _, err := stmt.Exec(p.ID, p.Name, p.Provider, p.Stock, storehouse, providerStock, now); err != nil {
			return fmt.Errorf("upsert product %s: %w", p.ID, err)
		}
	}

	return tx.Commit()
}

func encodeQuantities(m map[string]int) (string, error) {
	if m == nil {
		return "{}", nil
	}
	data, err := json.Marshal(m)
	return string(data), err
}
