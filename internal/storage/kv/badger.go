package kv

import (
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/trananhvu/shoe-catalog/internal/config"
)

// NewBadgerDB opens the badger database with the given configuration.
// An empty directory or the in-memory flag selects in-memory mode, which
// is what the tests use.
func NewBadgerDB(cfg config.Badger) (*badger.DB, error) {
	opts := badger.DefaultOptions(cfg.Dir)

	if cfg.Dir == "" || cfg.InMemory {
		opts = opts.WithInMemory(true).WithDir("").WithValueDir("")
	}

	// Badger's own logging is noisy at startup; the service logs enough.
	opts = opts.WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger db: %w", err)
	}

	return db, nil
}
