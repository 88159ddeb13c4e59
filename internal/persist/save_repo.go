package persist

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// SaveRepo stores one snapshot per slot in hive_saves.
type SaveRepo struct {
	db   *DB
	slot string
}

func NewSaveRepo(db *DB, slot string) *SaveRepo {
	return &SaveRepo{db: db, slot: slot}
}

func (r *SaveRepo) Save(ctx context.Context, s Snapshot) error {
	achievements := s.Achievements
	if achievements == nil {
		achievements = []string{}
	}
	_, err := r.db.Pool.Exec(ctx,
		`INSERT INTO hive_saves (slot, pollen, nectar, pollen_lifetime, level_start_pollen,
		                         prod_level, hive_level, user_level,
		                         bees, wasps, ducks, rabbits, achievements, saved_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW())
		 ON CONFLICT (slot) DO UPDATE SET
		     pollen = EXCLUDED.pollen,
		     nectar = EXCLUDED.nectar,
		     pollen_lifetime = EXCLUDED.pollen_lifetime,
		     level_start_pollen = EXCLUDED.level_start_pollen,
		     prod_level = EXCLUDED.prod_level,
		     hive_level = EXCLUDED.hive_level,
		     user_level = EXCLUDED.user_level,
		     bees = EXCLUDED.bees,
		     wasps = EXCLUDED.wasps,
		     ducks = EXCLUDED.ducks,
		     rabbits = EXCLUDED.rabbits,
		     achievements = EXCLUDED.achievements,
		     saved_at = NOW()`,
		r.slot, s.Pollen, s.Nectar, s.PollenLifetime, s.LevelStartPollen,
		s.ProdLevel, s.HiveLevel, s.UserLevel,
		s.Bees, s.Wasps, s.Ducks, s.Rabbits, achievements,
	)
	if err != nil {
		return fmt.Errorf("save slot %s: %w", r.slot, err)
	}
	return nil
}

func (r *SaveRepo) Load(ctx context.Context) (*Snapshot, error) {
	s := NewSnapshot()
	err := r.db.Pool.QueryRow(ctx,
		`SELECT pollen, nectar, pollen_lifetime, level_start_pollen,
		        prod_level, hive_level, user_level,
		        bees, wasps, ducks, rabbits, achievements
		 FROM hive_saves WHERE slot = $1`, r.slot,
	).Scan(
		&s.Pollen, &s.Nectar, &s.PollenLifetime, &s.LevelStartPollen,
		&s.ProdLevel, &s.HiveLevel, &s.UserLevel,
		&s.Bees, &s.Wasps, &s.Ducks, &s.Rabbits, &s.Achievements,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load slot %s: %w", r.slot, err)
	}
	if len(s.Achievements) == 0 {
		s.Achievements = nil
	}
	s.Normalize()
	return &s, nil
}

// Delete removes the slot. Used when a new game replaces a save.
func (r *SaveRepo) Delete(ctx context.Context) error {
	if _, err := r.db.Pool.Exec(ctx, `DELETE FROM hive_saves WHERE slot = $1`, r.slot); err != nil {
		return fmt.Errorf("delete slot %s: %w", r.slot, err)
	}
	return nil
}
