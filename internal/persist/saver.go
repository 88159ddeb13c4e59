package persist

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Saver writes snapshots off the game loop. The loop hands it copies; only the
// newest pending snapshot is written, while ledger entries always accumulate.
// Failures are logged and never reach the loop.
type Saver struct {
	store   Store
	ledger  LedgerWriter
	log     *zap.Logger
	timeout time.Duration

	mu      sync.Mutex
	pending *Snapshot
	entries []LedgerEntry
	seq     uint64
	wake    chan struct{}

	writeMu sync.Mutex // serializes writes between Run and Flush
	written uint64     // seq of the newest snapshot on disk; guarded by writeMu

	saves    atomic.Int64
	failures atomic.Int64
}

// NewSaver creates a saver. ledger may be nil.
func NewSaver(store Store, ledger LedgerWriter, log *zap.Logger) *Saver {
	return &Saver{
		store:   store,
		ledger:  ledger,
		log:     log,
		timeout: 5 * time.Second,
		wake:    make(chan struct{}, 1),
	}
}

// Submit queues a snapshot and any new ledger entries without blocking.
func (s *Saver) Submit(snap Snapshot, entries []LedgerEntry) {
	c := snap.Clone()
	s.mu.Lock()
	s.seq++
	s.pending = &c
	s.entries = append(s.entries, entries...)
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Run writes queued snapshots until ctx is cancelled.
func (s *Saver) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-s.wake:
			s.writePending(context.Background())
		}
	}
}

// Flush synchronously writes snap, entries and any queued ledger entries.
// Used on shutdown after the loop has stopped.
func (s *Saver) Flush(ctx context.Context, snap Snapshot, entries []LedgerEntry) error {
	s.Submit(snap, entries)
	return s.writePending(ctx)
}

func (s *Saver) take() (*Snapshot, uint64, []LedgerEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap, seq, entries := s.pending, s.seq, s.entries
	s.pending = nil
	s.entries = nil
	return snap, seq, entries
}

// requeue puts unwritten ledger entries back ahead of any submitted since.
func (s *Saver) requeue(entries []LedgerEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(append(make([]LedgerEntry, 0, len(entries)+len(s.entries)), entries...), s.entries...)
}

func (s *Saver) writePending(parent context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	snap, seq, entries := s.take()
	ctx, cancel := context.WithTimeout(parent, s.timeout)
	defer cancel()

	var firstErr error
	if s.ledger != nil && len(entries) > 0 {
		if err := s.ledger.Write(ctx, entries); err != nil {
			s.failures.Add(1)
			s.log.Error("purchase ledger write failed", zap.Int("entries", len(entries)), zap.Error(err))
			s.requeue(entries)
			firstErr = err
		}
	}
	if snap == nil || seq <= s.written {
		return firstErr
	}
	if err := s.store.Save(ctx, *snap); err != nil {
		s.failures.Add(1)
		s.log.Error("autosave failed", zap.Error(err))
		if firstErr == nil {
			firstErr = err
		}
		return firstErr
	}
	s.written = seq
	s.saves.Add(1)
	s.log.Debug("game saved",
		zap.Int("user_level", snap.UserLevel),
		zap.Float64("pollen_lifetime", snap.PollenLifetime),
	)
	return firstErr
}

// Saves is the number of snapshots written.
func (s *Saver) Saves() int64 { return s.saves.Load() }

// Failures is the number of failed store or ledger writes.
func (s *Saver) Failures() int64 { return s.failures.Load() }
