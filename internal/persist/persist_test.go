package persist

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/honeyhive/server/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func sampleSnapshot() Snapshot {
	return Snapshot{
		Pollen:           123.5,
		Nectar:           42,
		PollenLifetime:   9000,
		LevelStartPollen: 3000,
		ProdLevel:        2,
		HiveLevel:        1,
		UserLevel:        3,
		Bees:             12,
		Wasps:            2,
		Ducks:            1,
		Achievements:     []string{"first_bee", "first_wasp"},
	}
}

func TestDecodeSnapshot_Defaults(t *testing.T) {
	s, err := DecodeSnapshot([]byte(`{"pollen": 5}`))
	require.NoError(t, err)
	assert.Equal(t, 5.0, s.Pollen)
	assert.Equal(t, 1, s.UserLevel)
	assert.Zero(t, s.Bees)
	assert.Nil(t, s.Achievements)

	_, err = DecodeSnapshot([]byte(`{"pollen": "lots"}`))
	assert.True(t, errors.Is(err, ErrCorruptSave))
}

func TestSnapshot_Normalize(t *testing.T) {
	s := Snapshot{Pollen: -1, Nectar: 3, PollenLifetime: 10, LevelStartPollen: 50, Bees: -4, UserLevel: 0}
	s.Normalize()
	assert.Equal(t, Snapshot{Nectar: 3, PollenLifetime: 10, LevelStartPollen: 10, UserLevel: 1}, s)
}

func TestFileStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	fs := NewFileStore(filepath.Join(t.TempDir(), "nested", "hive.json"), "k")

	got, err := fs.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, got, "missing save is not an error")

	want := sampleSnapshot()
	require.NoError(t, fs.Save(ctx, want))
	got, err = fs.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, want, *got)

	want.Pollen = 1
	require.NoError(t, fs.Save(ctx, want))
	got, err = fs.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1.0, got.Pollen)
}

func TestFileStore_RejectsTampering(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "hive.json")
	fs := NewFileStore(path, "secret")
	require.NoError(t, fs.Save(ctx, sampleSnapshot()))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	edited := strings.Replace(string(raw), `"pollen":123.5`, `"pollen":999999`, 1)
	require.NotEqual(t, string(raw), edited)
	require.NoError(t, os.WriteFile(path, []byte(edited), 0o644))

	_, err = fs.Load(ctx)
	assert.True(t, errors.Is(err, ErrCorruptSave))
}

func TestFileStore_RejectsOtherKeyAndGarbage(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "hive.json")
	require.NoError(t, NewFileStore(path, "one").Save(ctx, sampleSnapshot()))

	_, err := NewFileStore(path, "two").Load(ctx)
	assert.True(t, errors.Is(err, ErrCorruptSave))

	require.NoError(t, os.WriteFile(path, []byte(`{"version":1,"data":`), 0o644))
	_, err = NewFileStore(path, "one").Load(ctx)
	assert.True(t, errors.Is(err, ErrCorruptSave))

	require.NoError(t, os.WriteFile(path, []byte(`{"version":9,"data":{},"checksum":""}`), 0o644))
	_, err = NewFileStore(path, "one").Load(ctx)
	assert.True(t, errors.Is(err, ErrCorruptSave))
}

func TestFileStore_LongKey(t *testing.T) {
	ctx := context.Background()
	fs := NewFileStore(filepath.Join(t.TempDir(), "hive.json"), strings.Repeat("k", 200))
	require.NoError(t, fs.Save(ctx, sampleSnapshot()))
	_, err := fs.Load(ctx)
	assert.NoError(t, err)
}

type memLedger struct {
	mu      sync.Mutex
	entries []LedgerEntry
	err     error
}

func (l *memLedger) Write(_ context.Context, entries []LedgerEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return l.err
	}
	l.entries = append(l.entries, entries...)
	return nil
}

func TestSaver_FlushWritesLatestAndLedger(t *testing.T) {
	store := &MemStore{}
	ledger := &memLedger{}
	s := NewSaver(store, ledger, zap.NewNop())
	session := uuid.New()

	first := sampleSnapshot()
	s.Submit(first, []LedgerEntry{{SessionID: session, Kind: "bee"}})
	final := sampleSnapshot()
	final.Pollen = 7
	require.NoError(t, s.Flush(context.Background(), final, nil))

	got, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7.0, got.Pollen)
	assert.Equal(t, 1, store.Saves(), "superseded snapshot is never written")
	assert.Len(t, ledger.entries, 1)
	assert.Equal(t, int64(1), s.Saves())

	require.NoError(t, s.Flush(context.Background(), final, []LedgerEntry{{SessionID: session, Kind: "wasp"}}))
	assert.Equal(t, 2, store.Saves())
	assert.Len(t, ledger.entries, 2)
}

func TestSaver_RunWritesInBackground(t *testing.T) {
	store := &MemStore{}
	s := NewSaver(store, nil, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)

	snap := sampleSnapshot()
	s.Submit(snap, nil)
	snap.Achievements[0] = "mutated after submit"

	require.Eventually(t, func() bool { return store.Saves() == 1 }, time.Second, 5*time.Millisecond)
	got, _ := store.Load(context.Background())
	assert.Equal(t, "first_bee", got.Achievements[0])
}

func TestSaver_SwallowsFailures(t *testing.T) {
	store := &MemStore{Err: errors.New("disk on fire")}
	ledger := &memLedger{err: errors.New("db down")}
	s := NewSaver(store, ledger, zap.NewNop())

	s.Submit(sampleSnapshot(), []LedgerEntry{{Kind: "bee"}})
	err := s.Flush(context.Background(), sampleSnapshot(), nil)

	assert.Error(t, err)
	assert.Equal(t, int64(2), s.Failures())
	assert.Zero(t, s.Saves())
}

func TestSaver_RetriesLedgerAfterFailure(t *testing.T) {
	store := &MemStore{}
	ledger := &memLedger{err: errors.New("db down")}
	s := NewSaver(store, ledger, zap.NewNop())
	ctx := context.Background()

	s.Submit(sampleSnapshot(), []LedgerEntry{{Kind: "bee"}, {Kind: "wasp"}})
	assert.Error(t, s.Flush(ctx, sampleSnapshot(), nil))
	assert.Empty(t, ledger.entries)
	assert.Equal(t, 1, store.Saves(), "the snapshot is still written")

	ledger.mu.Lock()
	ledger.err = nil
	ledger.mu.Unlock()
	require.NoError(t, s.Flush(ctx, sampleSnapshot(), []LedgerEntry{{Kind: "duck"}}))

	var kinds []string
	for _, e := range ledger.entries {
		kinds = append(kinds, e.Kind)
	}
	assert.Equal(t, []string{"bee", "wasp", "duck"}, kinds)
	assert.Equal(t, int64(1), s.Failures())
}

func TestOpen_FileBackendHasNoSpendReport(t *testing.T) {
	cfg := &config.Config{Storage: config.StorageConfig{
		Backend: "file",
		Path:    filepath.Join(t.TempDir(), "hive.sav"),
		SaveKey: "k",
	}}
	b, err := Open(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	defer b.Close()

	assert.Nil(t, b.Ledger)
	spent, err := b.SpendReport(context.Background())
	require.NoError(t, err)
	assert.Nil(t, spent)
}

func TestOpen_UnknownBackend(t *testing.T) {
	_, err := Open(context.Background(), &config.Config{Storage: config.StorageConfig{Backend: "floppy"}}, zap.NewNop())
	assert.Error(t, err)
}
