package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"math"
	"sync"

	"jyotish-systemv1/internal/ephemeris"
	"jyotish-systemv1/internal/model"

	_ "github.com/mattn/go-sqlite3"
)

// ErrOutOfRange is returned for instants the table does not cover.
var ErrOutOfRange = errors.New("sqlite: julian day outside ephemeris table")

// TableSource serves tropical positions from an ephemeris table, linearly
// interpolating between samples. Database failures are reported as
// ephemeris.ErrTransient so the ephemeris handle reopens the file once.
type TableSource struct {
	path string

	mu    sync.RWMutex
	db    *sql.DB
	start float64
	step  float64
	rows  int
}

var (
	_ ephemeris.Source   = (*TableSource)(nil)
	_ ephemeris.Reopener = (*TableSource)(nil)
)

// NewTableSource opens a table written by Writer.Generate.
func NewTableSource(path string) (*TableSource, error) {
	s := &TableSource{path: path}
	if err := s.Reopen(); err != nil {
		return nil, err
	}
	log.Printf("[sqlite-reader] opened ephemeris table %s (%d samples, step %.3fd)", path, s.rows, s.step)
	return s, nil
}

// Reopen closes the current connection, if any, and opens the file again.
func (s *TableSource) Reopen() error {
	db, err := open(s.path)
	if err != nil {
		return fmt.Errorf("sqlite open reader: %w", err)
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)

	var start, step float64
	var rows int
	err = db.QueryRow(`SELECT start_jd, step_days, rows FROM ephemeris_meta WHERE id = 1`).Scan(&start, &step, &rows)
	if err != nil {
		db.Close()
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("sqlite: %s holds no ephemeris table", s.path)
		}
		return fmt.Errorf("sqlite read meta: %w", err)
	}

	s.mu.Lock()
	old := s.db
	s.db, s.start, s.step, s.rows = db, start, step, rows
	s.mu.Unlock()
	if old != nil {
		old.Close()
	}
	return nil
}

// Span returns the first and last Julian Day covered.
func (s *TableSource) Span() (float64, float64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.start, s.start + float64(s.rows-1)*s.step
}

// Tropical implements ephemeris.Source.
func (s *TableSource) Tropical(jd float64, body model.Graha) (float64, float64, error) {
	s.mu.RLock()
	db, start, step, rows := s.db, s.start, s.step, s.rows
	s.mu.RUnlock()
	if db == nil {
		return 0, 0, fmt.Errorf("%w: table closed", ephemeris.ErrTransient)
	}

	x := (jd - start) / step
	if x < 0 || x > float64(rows-1) || math.IsNaN(x) {
		return 0, 0, fmt.Errorf("%w: %.5f", ErrOutOfRange, jd)
	}
	i := int(math.Floor(x))
	if i == rows-1 {
		i--
	}
	if i < 0 {
		i = 0
	}
	frac := x - float64(i)

	q, err := db.Query(`
		SELECT idx, lon, lat FROM ephemeris
		WHERE body = ? AND idx IN (?, ?)
		ORDER BY idx ASC
	`, int(body), i, i+1)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %v", ephemeris.ErrTransient, err)
	}
	defer q.Close()

	var lon, lat [2]float64
	n := 0
	for q.Next() {
		var idx int
		if n == 2 {
			break
		}
		if err := q.Scan(&idx, &lon[n], &lat[n]); err != nil {
			return 0, 0, fmt.Errorf("%w: %v", ephemeris.ErrTransient, err)
		}
		n++
	}
	if err := q.Err(); err != nil {
		return 0, 0, fmt.Errorf("%w: %v", ephemeris.ErrTransient, err)
	}
	if rows == 1 && n == 1 {
		return lon[0], lat[0], nil
	}
	if n != 2 {
		return 0, 0, fmt.Errorf("sqlite: missing %s samples around index %d", body, i)
	}

	d := math.Mod(lon[1]-lon[0]+540, 360) - 180
	return model.NormDeg(lon[0] + d*frac), lat[0] + (lat[1]-lat[0])*frac, nil
}

// Close closes the reader.
func (s *TableSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// PingContext checks the current connection.
func (s *TableSource) PingContext(ctx context.Context) error {
	s.mu.RLock()
	db := s.db
	s.mu.RUnlock()
	if db == nil {
		return fmt.Errorf("sqlite: table closed")
	}
	return db.PingContext(ctx)
}
