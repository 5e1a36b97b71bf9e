package gateway

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/taskx/internal/shared"
)

// Open builds the gateway selected by cfg.Storage.Backend, decorated with [Latency] when
// the [gateway] section asks for delays, throttling or failures.
//
// The returned close function releases the backend and is never nil.
func Open(cfg *shared.Config, logger *log.Logger) (Gateway, func() error, error) {
	var (
		backend Gateway
		closer  = func() error { return nil }
	)

	switch cfg.Storage.Backend {
	case shared.BackendMemory:
		backend = NewMemory()
	case shared.BackendSQLite:
		db, err := shared.NewDatabase(cfg.Database.Path)
		if err != nil {
			return nil, closer, err
		}
		shared.ConfigureDatabase(db, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns)

		if err := shared.RunMigrations(db); err != nil {
			db.Close()
			return nil, closer, fmt.Errorf("failed to migrate database: %w", err)
		}
		backend, closer = NewSQLite(db), db.Close
	case shared.BackendBolt:
		b, err := OpenBolt(cfg.Storage.BoltPath)
		if err != nil {
			return nil, closer, err
		}
		backend, closer = b, b.Close
	default:
		return nil, closer, fmt.Errorf("%w: unknown storage backend %q", shared.ErrInvalidConfig, cfg.Storage.Backend)
	}

	if logger != nil {
		logger.Debug("opened gateway", "backend", cfg.Storage.Backend)
	}

	opts := LatencyOptsFromConfig(cfg, logger)
	if !opts.enabled() {
		return backend, closer, nil
	}
	return NewLatency(backend, opts), closer, nil
}
