package leveldb

import (
	"fmt"

	"github.com/jmhodges/levigo"
)

// Database is a wrapper around a LevelDB database exposing the string
// collection API, so benchmarks can compare it against a snapshot database.
type Database struct {
	db *levigo.DB
	ro *levigo.ReadOptions
	wo *levigo.WriteOptions
}

func levelDbOpts() *levigo.Options {
	opts := levigo.NewOptions()
	opts.SetCreateIfMissing(true)
	opts.SetCompression(levigo.NoCompression)

	// performance-related configuration
	cache := levigo.NewLRUCache(0)
	opts.SetCache(cache)
	// 4MB is the default
	opts.SetWriteBufferSize(4 * 1024 * 1024)

	return opts
}

// New creates a LevelDB instance at path.
//
// Creates the path if it does not exist.
func New(path string) (*Database, error) {
	db, err := levigo.Open(path, levelDbOpts())
	if err != nil {
		return nil, fmt.Errorf("open leveldb %s: %w", path, err)
	}
	return &Database{db, levigo.NewReadOptions(), levigo.NewWriteOptions()}, nil
}

// GetString retrieves a key from the database, returning "" if it is missing
// or the read fails.
func (d Database) GetString(k string) string {
	data, err := d.db.Get(d.ro, []byte(k))
	if err != nil {
		return ""
	}
	return string(data)
}

// SetString inserts a key into the database.
func (d Database) SetString(k, v string) {
	// NOTE: the string API has no error return; LevelDB write errors are
	// fatal for a benchmark anyway
	err := d.db.Put(d.wo, []byte(k), []byte(v))
	if err != nil {
		panic(err)
	}
}

// UnsetString deletes a key from the database.
func (d Database) UnsetString(k string) {
	err := d.db.Delete(d.wo, []byte(k))
	if err != nil {
		panic(err)
	}
}

// Save compacts the whole key range, the closest LevelDB analogue of writing
// a snapshot.
func (d Database) Save() error {
	d.db.CompactRange(levigo.Range{})
	return nil
}

// Close shuts down the database.
func (d Database) Close() error {
	d.ro.Close()
	d.wo.Close()
	d.db.Close()
	return nil
}
