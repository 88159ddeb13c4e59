package persist

import (
	"context"
	"fmt"

	"github.com/honeyhive/server/internal/config"
	"go.uber.org/zap"
)

// Backend is an opened save backend. Ledger is nil unless the postgres backend
// runs with the ledger enabled.
type Backend struct {
	Store   Store
	Ledger  LedgerWriter
	Name    string
	Version int64 // schema version, postgres only

	db     *DB
	ledger *LedgerRepo
}

// Close releases the database pool, if any.
func (b *Backend) Close() {
	if b.db != nil {
		b.db.Close()
	}
}

// SpendReport returns the pollen and nectar spent per kind in the slot and
// marks the reported entries processed. It returns nil without a ledger.
func (b *Backend) SpendReport(ctx context.Context) (map[string]float64, error) {
	if b.ledger == nil {
		return nil, nil
	}
	totals, err := b.ledger.Totals(ctx)
	if err != nil {
		return nil, err
	}
	if err := b.ledger.MarkProcessed(ctx); err != nil {
		return nil, fmt.Errorf("mark ledger processed: %w", err)
	}
	return totals, nil
}

// Open selects the save backend named by cfg.Storage.Backend.
func Open(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Backend, error) {
	switch cfg.Storage.Backend {
	case "file":
		return &Backend{
			Store: NewFileStore(cfg.Storage.Path, cfg.Storage.SaveKey),
			Name:  "file " + cfg.Storage.Path,
		}, nil
	case "postgres":
		db, err := NewDB(ctx, cfg.Database, log)
		if err != nil {
			return nil, fmt.Errorf("database: %w", err)
		}
		version, err := RunMigrations(ctx, db.Pool)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("migrations: %w", err)
		}
		b := &Backend{
			Store:   NewSaveRepo(db, cfg.Storage.Slot),
			Name:    "postgres slot " + cfg.Storage.Slot,
			Version: version,
			db:      db,
		}
		if cfg.Database.Ledger {
			b.ledger = NewLedgerRepo(db, cfg.Storage.Slot)
			b.Ledger = b.ledger
		}
		return b, nil
	}
	return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
}
