package fs

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// Stats counts the I/O issued through a Filesys, summed over all of its
// handles.
type Stats struct {
	ReadOps    int
	ReadBytes  int
	WriteOps   int
	WriteBytes int
}

func (s *Stats) readOp(bytes int) {
	s.ReadOps++
	s.ReadBytes += bytes
}

func (s *Stats) writeOp(bytes int) {
	s.WriteOps++
	s.WriteBytes += bytes
}

// Filesys is a database-specific API for accessing the file system.
//
// An instance only exposes a single directory (there are no directory names
// in these methods).
type Filesys struct {
	fs afero.Afero
	*Stats
}

func abs(fname string) string {
	return fmt.Sprintf("/%s", fname)
}

// Handle returns a closed handle for fname; call Open before using it.
func (fs Filesys) Handle(fname string) *Handle {
	return &Handle{fs: fs.fs.Fs, name: fname, Stats: fs.Stats}
}

// List returns the absolute names of all files in the directory.
func (fs Filesys) List() ([]string, error) {
	return afero.Glob(fs.fs, abs("*"))
}

// Exists reports whether fname is present.
func (fs Filesys) Exists(fname string) (bool, error) {
	return fs.fs.Exists(abs(fname))
}

// GetStats returns a copy of the I/O counters.
func (fs Filesys) GetStats() Stats {
	return *fs.Stats
}

// FromAfero creates a Filesys from any Afero file system.
//
// This implementation uses absolute filenames for the database files; use an
// afero.BasePathFs to make sure all database files are created within a
// particular directory.
func FromAfero(fs afero.Fs) Filesys {
	return Filesys{fs: afero.Afero{Fs: fs}, Stats: new(Stats)}
}

// MemFs creates an in-memory Filesys
func MemFs() Filesys {
	return FromAfero(afero.NewMemMapFs())
}

// DirFs creates a Filesys backed by the OS, using basedir.
//
// Creates basedir if it does not exist.
func DirFs(basedir string) (Filesys, error) {
	basedir, err := filepath.Abs(basedir)
	if err != nil {
		return Filesys{}, err
	}
	fs := afero.NewOsFs()
	ok, err := afero.DirExists(fs, basedir)
	if err != nil {
		return Filesys{}, err
	}
	if !ok {
		err = fs.MkdirAll(basedir, os.FileMode(0755))
		if err != nil {
			return Filesys{}, fmt.Errorf("create %s: %w", basedir, err)
		}
	}
	return FromAfero(afero.NewBasePathFs(fs, basedir)), nil
}
