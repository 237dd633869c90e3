package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"airquality-server/internal/modules/airquality/types"
)

//go:embed sql/get-stations.sql
var getStationsSQL string

//go:embed sql/get-readings.sql
var getReadingsSQL string

//go:embed sql/get-readings-count.sql
var getReadingsCountSQL string

//go:embed sql/insert-station.sql
var insertStationSQL string

//go:embed sql/get-station-id-by-name.sql
var getStationIDByNameSQL string

//go:embed sql/insert-reading.sql
var insertReadingSQL string

//go:embed sql/delete-readings.sql
var deleteReadingsSQL string

// ReadingRepository is the read side used by the dashboard. Implementations
// return readings ordered by station, then time.
type ReadingRepository interface {
	GetReadings(ctx context.Context) ([]types.Reading, error)
	GetStations(ctx context.Context) ([]types.Station, error)
	Ping(ctx context.Context) error
}

// Repository is the SQLite-backed store filled by the import tool.
type Repository interface {
	ReadingRepository
	GetReadingsCount(ctx context.Context) (int, error)
	ReplaceReadings(ctx context.Context, readings []types.Reading) (int, error)
}

type repositoryImpl struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *repositoryImpl) GetStations(ctx context.Context) ([]types.Station, error) {
	rows, err := r.db.QueryContext(ctx, getStationsSQL)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("close stations rows", "error", err)
		}
	}()
	var out []types.Station
	for rows.Next() {
		var s types.Station
		if err := rows.Scan(&s.ID, &s.Name, &s.Area); err != nil {
			return nil, err
		}
		if s.Area == "" {
			s.Area = StationArea(s.Name)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *repositoryImpl) GetReadings(ctx context.Context) ([]types.Reading, error) {
	rows, err := r.db.QueryContext(ctx, getReadingsSQL)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("close readings rows", "error", err)
		}
	}()
	return scanReadings(rows)
}

func (r *repositoryImpl) GetReadingsCount(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, getReadingsCountSQL).Scan(&n)
	return n, err
}

func scanReadings(rows *sql.Rows) ([]types.Reading, error) {
	var out []types.Reading
	for rows.Next() {
		var (
			station        string
			ts             string
			pm25, pm10, o3 sql.NullFloat64
		)
		if err := rows.Scan(&station, &ts, &pm25, &pm10, &o3); err != nil {
			return nil, err
		}
		t, err := time.Parse(time.RFC3339, ts)
		if err != nil {
			return nil, fmt.Errorf("parse timestamp %q: %w", ts, err)
		}
		out = append(out, types.NewReading(station, t, types.Concentrations{
			PM25: nullable(pm25),
			PM10: nullable(pm10),
			O3:   nullable(o3),
		}))
	}
	return out, rows.Err()
}

// ReplaceReadings deletes every stored reading and inserts readings in a
// single transaction. Stations are created on first sight.
func (r *repositoryImpl) ReplaceReadings(ctx context.Context, readings []types.Reading) (n int, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err == nil {
			return
		}
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			slog.Error("rollback import", "error", rbErr)
		}
	}()

	if _, err := tx.ExecContext(ctx, deleteReadingsSQL); err != nil {
		return 0, fmt.Errorf("delete readings: %w", err)
	}

	insert, err := tx.PrepareContext(ctx, insertReadingSQL)
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer func() {
		if err := insert.Close(); err != nil {
			slog.Error("close insert statement", "error", err)
		}
	}()

	stationIDs := make(map[string]int64)
	for _, rd := range readings {
		id, ok := stationIDs[rd.Station]
		if !ok {
			id, err = ensureStation(ctx, tx, rd.Station)
			if err != nil {
				return 0, err
			}
			stationIDs[rd.Station] = id
		}
		ts := rd.Time.UTC().Format(time.RFC3339)
		if _, err := insert.ExecContext(ctx, id, ts, rd.PM25, rd.PM10, rd.O3); err != nil {
			return 0, fmt.Errorf("insert reading %s %s: %w", rd.Station, ts, err)
		}
		n++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return n, nil
}

func ensureStation(ctx context.Context, tx *sql.Tx, name string) (int64, error) {
	if _, err := tx.ExecContext(ctx, insertStationSQL, name); err != nil {
		return 0, fmt.Errorf("insert station %q: %w", name, err)
	}
	var id int64
	if err := tx.QueryRowContext(ctx, getStationIDByNameSQL, name).Scan(&id); err != nil {
		return 0, fmt.Errorf("lookup station %q: %w", name, err)
	}
	return id, nil
}

func nullable(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
