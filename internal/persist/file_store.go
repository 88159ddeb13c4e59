package persist

import (
	"context"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/crypto/blake2b"
)

const saveFormatVersion = 1

// saveFile is the on-disk envelope. Checksum is a keyed BLAKE2b-256 of Data.
type saveFile struct {
	Version  int             `json:"version"`
	Data     json.RawMessage `json:"data"`
	Checksum string          `json:"checksum"`
}

// FileStore keeps the save as a JSON file next to a keyed checksum, so edited
// or truncated saves are rejected instead of loaded.
type FileStore struct {
	path string
	key  []byte
}

// NewFileStore creates a store at path. key may be empty, in which case the
// checksum only guards against corruption.
func NewFileStore(path, key string) *FileStore {
	k := []byte(key)
	if len(k) > blake2b.Size {
		sum := blake2b.Sum256(k)
		k = sum[:]
	}
	return &FileStore{path: path, key: k}
}

// Path returns the save file location.
func (f *FileStore) Path() string { return f.path }

func (f *FileStore) checksum(data []byte) (string, error) {
	h, err := blake2b.New256(f.key)
	if err != nil {
		return "", fmt.Errorf("init checksum: %w", err)
	}
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Save writes the snapshot through a temp file and rename.
func (f *FileStore) Save(_ context.Context, s Snapshot) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode save: %w", err)
	}
	sum, err := f.checksum(data)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(saveFile{Version: saveFormatVersion, Data: data, Checksum: sum})
	if err != nil {
		return fmt.Errorf("encode save: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("create save dir: %w", err)
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("write save %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("replace save %s: %w", f.path, err)
	}
	return nil
}

// Load reads and verifies the save. A missing file is not an error.
func (f *FileStore) Load(_ context.Context) (*Snapshot, error) {
	raw, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read save %s: %w", f.path, err)
	}
	var env saveFile
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptSave, f.path, err)
	}
	if env.Version != saveFormatVersion {
		return nil, fmt.Errorf("%w: %s: unsupported version %d", ErrCorruptSave, f.path, env.Version)
	}
	want, err := f.checksum(env.Data)
	if err != nil {
		return nil, err
	}
	if subtle.ConstantTimeCompare([]byte(want), []byte(env.Checksum)) != 1 {
		return nil, fmt.Errorf("%w: %s: checksum mismatch", ErrCorruptSave, f.path)
	}
	return DecodeSnapshot(env.Data)
}
