package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"location-capture-service/internal/domain"
	"location-capture-service/internal/platform/db"
	"location-capture-service/internal/platform/obs"

	"github.com/rs/zerolog"
)

// SQLite-backed implementation of the LocationStore port.
// The repository owns its connection; Close releases it.
type SqliteLocationRepository struct {
	DB  *sql.DB
	log zerolog.Logger
}

func NewSqliteLocationRepository(db *sql.DB, logger zerolog.Logger) *SqliteLocationRepository {
	return &SqliteLocationRepository{DB: db, log: logger}
}

// Open the database file at dbPath and return a repository owning it.
// The schema is not created here; call EnsureSchema.
func OpenSqliteLocationRepository(ctx context.Context, dbPath string, logger zerolog.Logger) (*SqliteLocationRepository, error) {
	conn, err := db.OpenSQLite(ctx, dbPath)
	if err != nil {
		return nil, storageErr("open location repository", err)
	}
	return NewSqliteLocationRepository(conn, logger), nil
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, domain.ErrStorageUnavailable, err)
}

// Create the locations table if it is missing.
func (s *SqliteLocationRepository) EnsureSchema(ctx context.Context) (err error) {
	defer obs.Time(ctx, s.log, "locations.EnsureSchema")(&err)

	if err := InitSchema(ctx, s.DB); err != nil {
		return storageErr("ensure schema", err)
	}
	return nil
}

// Insert a validated position and return the id SQLite assigned to it.
func (s *SqliteLocationRepository) Insert(ctx context.Context, latitude, longitude float64) (_ int64, err error) {
	defer obs.Time(ctx, s.log, "locations.Insert")(&err)

	if err := (domain.Coordinates{Lat: latitude, Lon: longitude}).Validate(); err != nil {
		return 0, fmt.Errorf("insert location: %w", err)
	}

	if s.DB == nil {
		return 0, storageErr("insert location", errors.New("DB is nil"))
	}

	query := `
	INSERT INTO locations (
		latitude,
		longitude
	)
	VALUES (?, ?);
	`
	res, err := s.DB.ExecContext(ctx, query, latitude, longitude)
	if err != nil {
		return 0, storageErr("insert location: exec", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, storageErr("insert location: last insert id", err)
	}

	return id, nil
}

// Return all stored locations in insertion order.
func (s *SqliteLocationRepository) ListAll(ctx context.Context) (_ []domain.LocationRecord, err error) {
	defer obs.Time(ctx, s.log, "locations.ListAll")(&err)

	if s.DB == nil {
		return nil, storageErr("list locations", errors.New("DB is nil"))
	}

	query := `
	SELECT
		id,
		latitude,
		longitude
	FROM locations
	ORDER BY id;
	`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, storageErr("list locations: query locations table", err)
	}
	defer rows.Close()

	records := make([]domain.LocationRecord, 0, 64)
	for rows.Next() {
		var id int64
		var lat, lon sql.NullFloat64
		if err := rows.Scan(&id, &lat, &lon); err != nil {
			return nil, storageErr("list locations: scan row", err)
		}
		if !lat.Valid || !lon.Valid {
			return nil, storageErr("list locations", fmt.Errorf("row id=%d has NULL coordinates", id))
		}
		records = append(records, domain.LocationRecord{ID: id, Latitude: lat.Float64, Longitude: lon.Float64})
	}

	if err := rows.Err(); err != nil {
		return nil, storageErr("list locations: row iteration", err)
	}

	return records, nil
}

func (s *SqliteLocationRepository) Close() error {
	if s.DB == nil {
		return nil
	}
	if err := s.DB.Close(); err != nil {
		return storageErr("close location repository", err)
	}
	return nil
}
