package cache

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ulikunitz/xz"
	"github.com/zeebo/blake3"
)

// File is a Store keeping one xz-compressed file per key under a directory.
// Files are named by the BLAKE3 hash of the key and sharded by its first byte.
//
// Layout of a file: 8-byte big-endian expiry (unix nanoseconds, 0 = never)
// followed by the xz stream of the value.
type File struct {
	dir string
	now func() time.Time

	mu        sync.Mutex
	lastSweep time.Time
}

// fileSweepInterval is the minimum time between two sweeps of the directory.
const fileSweepInterval = 10 * time.Minute

// NewFile creates a file store rooted at dir.
func NewFile(dir string) (*File, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}
	f := &File{dir: dir, now: time.Now}
	f.lastSweep = f.now()
	return f, nil
}

// Get implements Store.
func (f *File) Get(_ context.Context, key string) ([]byte, error) {
	path := f.path(key)
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("read cache file: %w", err)
	}
	if len(data) < 8 {
		os.Remove(path)
		return nil, ErrMiss
	}

	if exp := int64(binary.BigEndian.Uint64(data[:8])); exp != 0 && !f.now().Before(time.Unix(0, exp)) {
		os.Remove(path)
		return nil, ErrMiss
	}

	r, err := xz.NewReader(bytes.NewReader(data[8:]))
	if err != nil {
		return nil, fmt.Errorf("open xz stream: %w", err)
	}
	value, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("decompress cache file: %w", err)
	}
	return value, nil
}

// Set implements Store.
func (f *File) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	var header [8]byte
	if ttl > 0 {
		binary.BigEndian.PutUint64(header[:], uint64(f.now().Add(ttl).UnixNano()))
	}

	w, err := newAtomicWriter(f.path(key))
	if err != nil {
		return err
	}
	if _, err := w.Write(header[:]); err != nil {
		w.Abort()
		return fmt.Errorf("write header: %w", err)
	}

	zw, err := xz.NewWriter(w)
	if err != nil {
		w.Abort()
		return fmt.Errorf("create xz writer: %w", err)
	}
	if _, err := zw.Write(value); err != nil {
		w.Abort()
		return fmt.Errorf("compress value: %w", err)
	}
	if err := zw.Close(); err != nil {
		w.Abort()
		return fmt.Errorf("finish xz stream: %w", err)
	}
	if err := w.Commit(); err != nil {
		return err
	}
	f.maybeSweep()
	return nil
}

// maybeSweep removes expired entries when the last sweep is old enough.
func (f *File) maybeSweep() {
	f.mu.Lock()
	now := f.now()
	due := now.Sub(f.lastSweep) >= fileSweepInterval
	if due {
		f.lastSweep = now
	}
	f.mu.Unlock()

	if due {
		f.sweep(now)
	}
}

// sweep deletes every entry that expired before now and returns how many
// were removed. Unreadable entries are removed as well.
func (f *File) sweep(now time.Time) int {
	removed := 0
	filepath.WalkDir(f.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || filepath.Ext(path) != ".xz" {
			return nil
		}
		if fileExpired(path, now) {
			if os.Remove(path) == nil {
				removed++
			}
		}
		return nil
	})
	return removed
}

func fileExpired(path string, now time.Time) bool {
	fh, err := os.Open(path)
	if err != nil {
		return false
	}
	defer fh.Close()

	var header [8]byte
	if _, err := io.ReadFull(fh, header[:]); err != nil {
		return true
	}
	exp := int64(binary.BigEndian.Uint64(header[:]))
	return exp != 0 && !now.Before(time.Unix(0, exp))
}

// Close implements Store.
func (f *File) Close() error { return nil }

func (f *File) path(key string) string {
	sum := blake3.Sum256([]byte(key))
	name := hex.EncodeToString(sum[:])
	return filepath.Join(f.dir, name[:2], name+".xz")
}

// atomicWriter writes to a temp file and renames it over the target on
// Commit, so readers never see a partially written entry.
type atomicWriter struct {
	path    string
	tmpPath string
	file    *os.File
}

func newAtomicWriter(path string) (*atomicWriter, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".ytshorts-*.tmp")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	return &atomicWriter{path: path, tmpPath: tmp.Name(), file: tmp}, nil
}

func (w *atomicWriter) Write(p []byte) (int, error) {
	return w.file.Write(p)
}

// Commit syncs the temp file and renames it over the target.
func (w *atomicWriter) Commit() error {
	if err := w.file.Sync(); err != nil {
		w.Abort()
		return fmt.Errorf("sync: %w", err)
	}
	if err := w.file.Close(); err != nil {
		os.Remove(w.tmpPath)
		return fmt.Errorf("close: %w", err)
	}
	if err := os.Rename(w.tmpPath, w.path); err != nil {
		os.Remove(w.tmpPath)
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}

func (w *atomicWriter) Abort() error {
	w.file.Close()
	return os.Remove(w.tmpPath)
}
