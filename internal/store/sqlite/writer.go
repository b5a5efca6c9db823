// Package sqlite stores a precomputed ephemeris table in SQLite and serves it
// back as an ephemeris.Source.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"math"
	"time"

	"jyotish-systemv1/internal/ephemeris"
	"jyotish-systemv1/internal/errs"
	"jyotish-systemv1/internal/model"

	_ "github.com/mattn/go-sqlite3"
)

const defaultBatchSize = 500

// tableBodies are the bodies a Source must provide.
var tableBodies = []model.Graha{
	model.Sun, model.Moon, model.Mars, model.Mercury, model.Jupiter,
	model.Venus, model.Saturn, model.Rahu,
}

// WriterConfig configures the SQLite writer.
type WriterConfig struct {
	DBPath string // path to SQLite database file, e.g. "data/ephemeris.db"
}

// Range is a sampled Julian Day span. Rows are written at StartJD + i*StepDays
// for every i with StartJD + i*StepDays <= EndJD.
type Range struct {
	StartJD  float64
	EndJD    float64
	StepDays float64
}

func (r Range) count() int {
	return int(math.Floor((r.EndJD-r.StartJD)/r.StepDays+1e-9)) + 1
}

func (r Range) validate() error {
	if r.StepDays <= 0 || math.IsNaN(r.StepDays) {
		return errs.Invalid(fmt.Sprint(r.StepDays), "ephemeris table step must be positive")
	}
	if r.EndJD < r.StartJD {
		return errs.Invalid(fmt.Sprintf("%.1f..%.1f", r.StartJD, r.EndJD), "ephemeris table range ends before it starts")
	}
	return nil
}

// Writer is a single-connection SQLite writer with transaction batching.
type Writer struct {
	db *sql.DB
}

// DB returns the underlying sql.DB for health checks.
func (w *Writer) DB() *sql.DB { return w.db }

// New opens the database with WAL mode and creates the schema.
func New(cfg WriterConfig) (*Writer, error) {
	db, err := open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite open: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite schema: %w", err)
	}

	log.Printf("[sqlite] opened database at %s", cfg.DBPath)
	return &Writer{db: db}, nil
}

func open(path string) (*sql.DB, error) {
	return sql.Open("sqlite3", path+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000")
}

func createSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS ephemeris (
			body INTEGER NOT NULL,
			idx  INTEGER NOT NULL,
			jd   REAL    NOT NULL,
			lon  REAL    NOT NULL,
			lat  REAL    NOT NULL,
			PRIMARY KEY (body, idx)
		);

		CREATE TABLE IF NOT EXISTS ephemeris_meta (
			id         INTEGER PRIMARY KEY CHECK (id = 1),
			start_jd   REAL    NOT NULL,
			step_days  REAL    NOT NULL,
			rows       INTEGER NOT NULL,
			source     TEXT    NOT NULL,
			created_at INTEGER NOT NULL
		);
	`)
	return err
}

type row struct {
	body model.Graha
	idx  int
	jd   float64
	lon  float64
	lat  float64
}

// Generate samples src over r for every table body and replaces the table
// contents. The context is checked between batches.
func (w *Writer) Generate(ctx context.Context, src ephemeris.Source, r Range) (int, error) {
	if err := r.validate(); err != nil {
		return 0, err
	}
	if err := errs.Cancelled(ctx); err != nil {
		return 0, err
	}
	n := r.count()
	if _, err := w.db.ExecContext(ctx, `DELETE FROM ephemeris; DELETE FROM ephemeris_meta;`); err != nil {
		return 0, fmt.Errorf("sqlite clear ephemeris: %w", err)
	}

	start := time.Now()
	batch := make([]row, 0, defaultBatchSize)
	written := 0
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := w.insertBatch(ctx, batch); err != nil {
			return err
		}
		written += len(batch)
		batch = batch[:0]
		return nil
	}

	for i := 0; i < n; i++ {
		if err := errs.Cancelled(ctx); err != nil {
			return written, err
		}
		jd := r.StartJD + float64(i)*r.StepDays
		for _, b := range tableBodies {
			lon, lat, err := src.Tropical(jd, b)
			if err != nil {
				return written, errs.Wrap(errs.KindEphemeris, err, "sample %s at JD %.5f", b, jd)
			}
			batch = append(batch, row{body: b, idx: i, jd: jd, lon: lon, lat: lat})
		}
		if len(batch) >= defaultBatchSize {
			if err := flush(); err != nil {
				return written, err
			}
		}
	}
	if err := flush(); err != nil {
		return written, err
	}

	if _, err := w.db.ExecContext(ctx, `
		INSERT INTO ephemeris_meta (id, start_jd, step_days, rows, source, created_at)
		VALUES (1, ?, ?, ?, ?, ?)
	`, r.StartJD, r.StepDays, n, fmt.Sprintf("%T", src), time.Now().Unix()); err != nil {
		return written, fmt.Errorf("sqlite write meta: %w", err)
	}

	log.Printf("[sqlite] wrote %d ephemeris rows (%d samples) in %v", written, n, time.Since(start))
	return written, nil
}

// insertBatch inserts a batch of rows in a single transaction.
func (w *Writer) insertBatch(ctx context.Context, rows []row) error {
	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite begin: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO ephemeris (body, idx, jd, lon, lat)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("sqlite prepare: %w", err)
	}
	defer stmt.Close()

	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx, int(r.body), r.idx, r.jd, r.lon, r.lat); err != nil {
			tx.Rollback()
			return fmt.Errorf("sqlite insert %s #%d: %w", r.body, r.idx, err)
		}
	}
	return tx.Commit()
}

// Close closes the database.
func (w *Writer) Close() error {
	return w.db.Close()
}
