package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"location-capture-service/internal/domain"
	"location-capture-service/internal/ports"
	"os"
)

// The column set and types are fixed for compatibility with existing
// database files written by earlier versions of the app.
const createLocationsQuery = `
	CREATE TABLE IF NOT EXISTS locations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		latitude REAL,
		longitude REAL
	);
	`

// Initialize the SQLite database schema. Existing rows are never touched.
func InitSchema(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	statements := []string{
		createLocationsQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

type LocationSeed struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// Append locations from a JSON file of {"latitude", "longitude"} objects.
// Every item is validated before anything is written; ids are assigned by
// the store in file order.
func SeedFromJSON(ctx context.Context, store ports.LocationStore, jsonPath string) ([]int64, error) {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, fmt.Errorf("seed locations: read %q: %w", jsonPath, err)
	}

	var data []LocationSeed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return nil, fmt.Errorf("seed locations: parse json: %w", err)
	}

	rows := make([]domain.Coordinates, 0, len(data))
	for i, item := range data {
		if item.Latitude == nil || item.Longitude == nil {
			return nil, fmt.Errorf("seed locations: item at index %d: latitude and longitude are required: %w", i+1, domain.ErrInvalidCoordinate)
		}

		c := domain.Coordinates{Lat: *item.Latitude, Lon: *item.Longitude}
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("seed locations: item at index %d: %w", i+1, err)
		}
		rows = append(rows, c)
	}

	ids := make([]int64, 0, len(rows))
	for i, c := range rows {
		id, err := store.Insert(ctx, c.Lat, c.Lon)
		if err != nil {
			return ids, fmt.Errorf("seed locations: insert item %d: %w", i+1, err)
		}
		ids = append(ids, id)
	}

	return ids, nil
}
