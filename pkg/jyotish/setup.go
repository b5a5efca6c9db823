package jyotish

import (
	"fmt"
	"io"
	"log/slog"

	"jyotish-systemv1/config"
	"jyotish-systemv1/internal/dasha"
	"jyotish-systemv1/internal/ephemeris"
	"jyotish-systemv1/internal/metrics"
	sqlitestore "jyotish-systemv1/internal/store/sqlite"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// OpenSource returns the position source named by cfg. The closer releases
// the table file for the sqlite source and is a no-op otherwise.
func OpenSource(cfg config.EphemerisConfig) (ephemeris.Source, io.Closer, error) {
	switch cfg.Source {
	case "", "analytic":
		return ephemeris.NewAnalytic(), nopCloser{}, nil
	case "sqlite":
		ts, err := sqlitestore.NewTableSource(cfg.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("open ephemeris table: %w", err)
		}
		return ts, ts, nil
	default:
		return nil, nil, fmt.Errorf("unknown ephemeris source %q", cfg.Source)
	}
}

// NewFromConfig opens the configured source and builds an Engine with the
// configured dasha and transit defaults. Close the returned closer when done.
func NewFromConfig(cfg *config.Config, log *slog.Logger, m *metrics.Metrics) (*Engine, io.Closer, error) {
	src, closer, err := OpenSource(cfg.Ephemeris)
	if err != nil {
		return nil, nil, err
	}
	eng := New(Config{
		Source:        src,
		Logger:        log,
		Metrics:       m,
		MaxYears:      cfg.Dasha.MaxYears,
		Depth:         cfg.Dasha.Depth,
		SkipThreshold: dasha.Threshold(cfg.Dasha.JaiminiSkipThreshold),
		OrbScale:      cfg.Transit.OrbScale,
	})
	return eng, closer, nil
}
