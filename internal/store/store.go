// Package store records barometer samples in SQLite.
package store

import (
	"database/sql"
	"fmt"
	"math"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/relabs-tech/barometer/internal/env"
)

// Recorder appends samples to a readings table.
type Recorder struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path. ":memory:" gives a
// private in-memory database.
func Open(path string) (*Recorder, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	// ":memory:" databases are per connection.
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS readings (
			time_ms INTEGER NOT NULL,
			source TEXT NOT NULL,
			temp_c REAL,
			pressure_pa REAL,
			altitude_m REAL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("store: create table: %w", err)
	}
	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS readings_time ON readings (time_ms)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("store: create index: %w", err)
	}

	return &Recorder{db: db}, nil
}

// Close closes the database.
func (r *Recorder) Close() error {
	return r.db.Close()
}

// nullable maps NaN and Inf to SQL NULL.
func nullable(f float64) sql.NullFloat64 {
	return sql.NullFloat64{Float64: f, Valid: !math.IsNaN(f) && !math.IsInf(f, 0)}
}

// Record appends one sample. Non-finite values are stored as NULL.
func (r *Recorder) Record(s env.Sample) error {
	_, err := r.db.Exec(`
		INSERT INTO readings (time_ms, source, temp_c, pressure_pa, altitude_m)
		VALUES (?, ?, ?, ?, ?)
	`, s.Time.UnixMilli(), s.Source, nullable(s.Temperature), nullable(s.Pressure), nullable(s.Altitude))
	if err != nil {
		return fmt.Errorf("store: insert: %w", err)
	}
	return nil
}

// History returns the samples recorded in [from, to], oldest first. NULL
// columns read back as zero so the result always marshals to JSON.
func (r *Recorder) History(from, to time.Time) ([]env.Sample, error) {
	rows, err := r.db.Query(`
		SELECT time_ms, source, temp_c, pressure_pa, altitude_m
		FROM readings
		WHERE time_ms BETWEEN ? AND ?
		ORDER BY time_ms ASC
	`, from.UnixMilli(), to.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("store: query: %w", err)
	}
	defer rows.Close()

	var out []env.Sample
	for rows.Next() {
		var (
			s                env.Sample
			ms               int64
			temp, press, alt sql.NullFloat64
		)
		if err := rows.Scan(&ms, &s.Source, &temp, &press, &alt); err != nil {
			return nil, fmt.Errorf("store: scan: %w", err)
		}
		s.Time = time.UnixMilli(ms).UTC()
		s.Temperature = temp.Float64
		s.Pressure = press.Float64
		s.Altitude = alt.Float64
		s.PressureHPa = s.Pressure / 100.0
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: rows: %w", err)
	}
	return out, nil
}
