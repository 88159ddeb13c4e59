package system

import (
	"time"

	coresys "github.com/honeyhive/server/internal/core/system"
	"github.com/honeyhive/server/internal/persist"
)

// SaveSource builds snapshots on the game loop.
type SaveSource interface {
	Snapshot() persist.Snapshot
	// TakeLedger returns and clears the purchases recorded since the last call.
	TakeLedger() []persist.LedgerEntry
}

// SaveSink accepts snapshots for writing. persist.Saver writes them on its own
// goroutine.
type SaveSink interface {
	Submit(snap persist.Snapshot, entries []persist.LedgerEntry)
}

// PersistenceSystem autosaves once per interval of simulated time.
// Phase 5 (Persist).
type PersistenceSystem struct {
	source   SaveSource
	sink     SaveSink
	interval time.Duration
	acc      time.Duration
	saves    int
}

func NewPersistenceSystem(source SaveSource, sink SaveSink, interval time.Duration) *PersistenceSystem {
	return &PersistenceSystem{source: source, sink: sink, interval: interval}
}

func (s *PersistenceSystem) Phase() coresys.Phase { return coresys.PhasePersist }

func (s *PersistenceSystem) Update(dt time.Duration) {
	if s.interval <= 0 || dt <= 0 {
		return
	}
	s.acc += dt
	if s.acc < s.interval {
		return
	}
	s.acc %= s.interval
	s.SaveNow()
}

// SaveNow submits a snapshot immediately and restarts the interval.
func (s *PersistenceSystem) SaveNow() {
	s.sink.Submit(s.source.Snapshot(), s.source.TakeLedger())
	s.saves++
}

// ResetInterval restarts the autosave countdown, e.g. after a new game.
func (s *PersistenceSystem) ResetInterval() { s.acc = 0 }

// Saves is the number of snapshots submitted.
func (s *PersistenceSystem) Saves() int { return s.saves }
