package garage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/baxtbl4b/app-goroshina/db"
	"github.com/google/uuid"
)

// Save inserts or replaces a vehicle in owner's garage. A missing ID is
// generated.
func Save(owner string, v Vehicle) (Vehicle, error) {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now().UTC()
	}
	if v.Tires == nil {
		v.Tires = make(map[Season]Tires)
	}

	tires, err := json.Marshal(v.Tires)
	if err != nil {
		return Vehicle{}, fmt.Errorf("encode tires: %w", err)
	}
	wheel, err := json.Marshal(v.Wheel)
	if err != nil {
		return Vehicle{}, fmt.Errorf("encode wheel: %w", err)
	}

	_, err = db.Exec(`INSERT INTO GarageVehicle (id, owner, brand, model, year, tires, wheel, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			brand = excluded.brand,
			model = excluded.model,
			year = excluded.year,
			tires = excluded.tires,
			wheel = excluded.wheel
		WHERE GarageVehicle.owner = excluded.owner`,
		v.ID, owner, v.Brand, v.Model, v.Year, string(tires), string(wheel), v.CreatedAt)
	if err != nil {
		return Vehicle{}, fmt.Errorf("save vehicle %s: %w", v.ID, err)
	}

	log.Printf("[garage] Saved %s %s %s (%s)", v.Brand, v.Model, v.Year, v.ID)
	return v, nil
}

// List returns owner's vehicles, oldest first
func List(owner string) ([]Vehicle, error) {
	rows, err := db.Query(`SELECT id, brand, model, year, tires, wheel, created_at
		FROM GarageVehicle WHERE owner = ? ORDER BY created_at, id`, owner)
	if err != nil {
		return nil, fmt.Errorf("list garage: %w", err)
	}
	defer rows.Close()

	vehicles := []Vehicle{}
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, err
		}
		vehicles = append(vehicles, v)
	}
	return vehicles, rows.Err()
}

// Get returns one of owner's vehicles
func Get(owner, id string) (Vehicle, error) {
	row := db.QueryRow(`SELECT id, brand, model, year, tires, wheel, created_at
		FROM GarageVehicle WHERE owner = ? AND id = ?`, owner, id)
	v, err := scanVehicle(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Vehicle{}, ErrNotFound
	}
	return v, err
}

// Delete removes one of owner's vehicles
func Delete(owner, id string) error {
	res, err := db.Exec(`DELETE FROM GarageVehicle WHERE owner = ? AND id = ?`, owner, id)
	if err != nil {
		return fmt.Errorf("delete vehicle %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete vehicle %s: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanVehicle(s scanner) (Vehicle, error) {
	var v Vehicle
	var tires, wheel string
	if err := s.Scan(&v.ID, &v.Brand, &v.Model, &v.Year, &tires, &wheel, &v.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Vehicle{}, err
		}
		return Vehicle{}, fmt.Errorf("scan vehicle: %w", err)
	}
	if err := json.Unmarshal([]byte(tires), &v.Tires); err != nil {
		return Vehicle{}, fmt.Errorf("decode tires of %s: %w", v.ID, err)
	}
	if err := json.Unmarshal([]byte(wheel), &v.Wheel); err != nil {
		return Vehicle{}, fmt.Errorf("decode wheel of %s: %w", v.ID, err)
	}
	return v, nil
}
