package persist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sync"
)

// ErrCorruptSave is returned when a save fails its integrity check or cannot
// be decoded.
var ErrCorruptSave = errors.New("corrupt save")

// Snapshot is the flat persisted game state. Field names are part of the save
// format.
type Snapshot struct {
	Pollen           float64  `json:"pollen"`
	Nectar           float64  `json:"nectar"`
	PollenLifetime   float64  `json:"pollenLifetime"`
	LevelStartPollen float64  `json:"levelStartPollen"`
	ProdLevel        int      `json:"prodLevel"`
	HiveLevel        int      `json:"hiveLevel"`
	UserLevel        int      `json:"userLevel"`
	Bees             int      `json:"bees"`
	Wasps            int      `json:"wasps"`
	Ducks            int      `json:"ducks"`
	Rabbits          int      `json:"rabbits"`
	Achievements     []string `json:"achievements,omitempty"`
}

// NewSnapshot returns the state of a fresh game.
func NewSnapshot() Snapshot {
	return Snapshot{UserLevel: 1}
}

// DecodeSnapshot parses JSON over the fresh-game defaults, so missing fields
// keep their default, and normalizes the result.
func DecodeSnapshot(raw []byte) (*Snapshot, error) {
	s := NewSnapshot()
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSave, err)
	}
	s.Normalize()
	return &s, nil
}

// Normalize clamps out-of-range values a hand-edited or older save may hold.
func (s *Snapshot) Normalize() {
	for _, f := range []*float64{&s.Pollen, &s.Nectar, &s.PollenLifetime, &s.LevelStartPollen} {
		if *f < 0 || math.IsNaN(*f) || math.IsInf(*f, 0) {
			*f = 0
		}
	}
	for _, n := range []*int{&s.ProdLevel, &s.HiveLevel, &s.Bees, &s.Wasps, &s.Ducks, &s.Rabbits} {
		if *n < 0 {
			*n = 0
		}
	}
	if s.UserLevel < 1 {
		s.UserLevel = 1
	}
	if s.LevelStartPollen > s.PollenLifetime {
		s.LevelStartPollen = s.PollenLifetime
	}
}

// Clone returns a deep copy.
func (s Snapshot) Clone() Snapshot {
	if s.Achievements != nil {
		s.Achievements = append([]string(nil), s.Achievements...)
	}
	return s
}

// Store persists a single game save.
type Store interface {
	Save(ctx context.Context, s Snapshot) error
	// Load returns nil, nil when no save exists.
	Load(ctx context.Context) (*Snapshot, error)
}

// MemStore keeps the save in memory. Used by tools and tests.
type MemStore struct {
	mu    sync.Mutex
	snap  *Snapshot
	saves int
	Err   error // returned by Save when set
}

func (m *MemStore) Save(_ context.Context, s Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	c := s.Clone()
	m.snap = &c
	m.saves++
	return nil
}

func (m *MemStore) Load(context.Context) (*Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.snap == nil {
		return nil, nil
	}
	c := m.snap.Clone()
	return &c, nil
}

// Saves is the number of successful Save calls.
func (m *MemStore) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}
