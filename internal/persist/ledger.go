package persist

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// LedgerEntry records one purchase.
type LedgerEntry struct {
	SessionID uuid.UUID
	Kind      string
	Resource  string
	Cost      float64
	Owned     int
	UserLevel int
}

// LedgerWriter appends purchase records.
type LedgerWriter interface {
	Write(ctx context.Context, entries []LedgerEntry) error
}

// LedgerRepo is the hive_ledger table.
type LedgerRepo struct {
	db   *DB
	slot string
}

func NewLedgerRepo(db *DB, slot string) *LedgerRepo {
	return &LedgerRepo{db: db, slot: slot}
}

// Write atomically appends a batch of entries in a single transaction.
func (r *LedgerRepo) Write(ctx context.Context, entries []LedgerEntry) error {
	if len(entries) == 0 {
		return nil
	}
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("ledger begin: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, e := range entries {
		if _, err := tx.Exec(ctx,
			`INSERT INTO hive_ledger (session_id, slot, kind, resource, cost, owned, user_level)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			e.SessionID.String(), r.slot, e.Kind, e.Resource, e.Cost, e.Owned, e.UserLevel,
		); err != nil {
			return fmt.Errorf("ledger insert: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// MarkProcessed flags every pending entry as consumed by reporting.
func (r *LedgerRepo) MarkProcessed(ctx context.Context) error {
	_, err := r.db.Pool.Exec(ctx,
		`UPDATE hive_ledger SET processed = TRUE WHERE processed = FALSE AND slot = $1`, r.slot,
	)
	return err
}

// Totals sums the cost spent per kind in the slot.
func (r *LedgerRepo) Totals(ctx context.Context) (map[string]float64, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT kind, SUM(cost) FROM hive_ledger WHERE slot = $1 GROUP BY kind`, r.slot,
	)
	if err != nil {
		return nil, fmt.Errorf("ledger totals: %w", err)
	}
	defer rows.Close()

	out := make(map[string]float64)
	for rows.Next() {
		var kind string
		var total float64
		if err := rows.Scan(&kind, &total); err != nil {
			return nil, fmt.Errorf("ledger totals: %w", err)
		}
		out[kind] = total
	}
	return out, rows.Err()
}
