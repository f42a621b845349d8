package db

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/tchajed/snapdb/db/memdb"
	"github.com/tchajed/snapdb/fs"
	"github.com/tchajed/snapdb/logging"
)

var (
	// ErrClosed is returned by Save and Close after the database is closed.
	ErrClosed = errors.New("db: database is closed")
	// ErrCorrupt is returned by Open when the snapshot file is truncated or
	// malformed.
	ErrCorrupt = errors.New("db: corrupt snapshot")
)

var logger = logging.For("db")

const saveBufferSize = 64 * 1024

// Database is an in-memory Memdb backed by a snapshot file.
//
// The whole file is read by Open and rewritten by every Save; Close saves
// before releasing the file. All of the Memdb API is available directly on a
// Database. Only one Database may use a given file at a time, and a Database
// is not safe for concurrent use.
type Database struct {
	*memdb.Memdb
	h *fs.Handle
}

// Open loads the database stored in fname, creating an empty one if the file
// does not exist.
func Open(filesys fs.Filesys, fname string) (*Database, error) {
	h := filesys.Handle(fname)
	if err := h.Open(); err != nil {
		logger.Error("open failed", "file", fname, "err", err)
		return nil, err
	}
	m, n, err := load(h)
	if err != nil {
		_ = h.Close()
		logger.Error("load failed", "file", fname, "err", err)
		return nil, fmt.Errorf("load %s: %w", fname, err)
	}
	c := m.Counts()
	logger.Debug("opened database", "file", fname, "bytes", n,
		"hashes", c.Hashes, "sets", c.Sets, "strings", c.Strings, "integers", c.Integers)
	return &Database{m, h}, nil
}

// OpenPath is Open for a path on the OS file system. The parent directory is
// created if needed.
func OpenPath(path string) (*Database, error) {
	filesys, err := fs.DirFs(filepath.Dir(path))
	if err != nil {
		return nil, err
	}
	return Open(filesys, filepath.Base(path))
}

func load(h *fs.Handle) (*memdb.Memdb, int, error) {
	size, err := h.Size()
	if err != nil {
		return nil, 0, err
	}
	buf := bytes.NewBuffer(make([]byte, 0, size))
	if _, err := buf.ReadFrom(h); err != nil {
		return nil, 0, fmt.Errorf("read: %w", err)
	}
	m := memdb.New()
	if err := decodeSnapshot(buf.Bytes(), m); err != nil {
		return nil, 0, err
	}
	return m, buf.Len(), nil
}

// IsOpen reports whether the database still holds its file.
func (db *Database) IsOpen() bool {
	return db.h.IsOpen()
}

// Save replaces the file's contents with a snapshot of the database.
//
// The file is truncated first, so a failed Save leaves it empty or partially
// written.
func (db *Database) Save() error {
	if !db.h.IsOpen() {
		return ErrClosed
	}
	if err := db.h.Clear(); err != nil {
		logger.Error("save failed", "file", db.h.Name(), "err", err)
		return err
	}
	w := bufio.NewWriterSize(db.h, saveBufferSize)
	n, err := encodeSnapshot(w, db.Memdb)
	if err == nil {
		err = w.Flush()
	}
	if err == nil {
		err = db.h.Sync()
	}
	if err != nil {
		logger.Error("save failed", "file", db.h.Name(), "err", err)
		return fmt.Errorf("save %s: %w", db.h.Name(), err)
	}
	c := db.Counts()
	logger.Debug("saved snapshot", "file", db.h.Name(), "bytes", n,
		"hashes", c.Hashes, "sets", c.Sets, "strings", c.Strings, "integers", c.Integers)
	return nil
}

// Close saves the database and releases its file. The in-memory data stays
// readable, but the database can no longer be saved.
func (db *Database) Close() error {
	if !db.h.IsOpen() {
		return ErrClosed
	}
	err := db.Save()
	if cerr := db.h.Close(); err == nil {
		err = cerr
	}
	logger.Debug("closed database", "file", db.h.Name())
	return err
}
