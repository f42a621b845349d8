package fs

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/afero"
)

// ErrClosed is returned by I/O on a handle that is not open.
var ErrClosed = errors.New("fs: handle is closed")

const fileMode os.FileMode = 0660

// Handle is a named file that can be opened, read and written sequentially,
// cleared and deleted. The file is created when the handle is opened.
//
// A Handle is not safe for concurrent use.
type Handle struct {
	fs   afero.Fs
	name string
	f    afero.File
	*Stats
}

var _ io.ReadWriter = &Handle{}

// Name returns the file name the handle was created with.
func (h *Handle) Name() string {
	return h.name
}

// IsOpen reports whether the handle currently holds an open file.
func (h *Handle) IsOpen() bool {
	return h.f != nil
}

// Open opens the file for reading and writing, creating it if it does not
// exist. Opening an open handle is a no-op.
func (h *Handle) Open() error {
	if h.f != nil {
		return nil
	}
	f, err := h.fs.OpenFile(abs(h.name), os.O_RDWR|os.O_CREATE, fileMode)
	if err != nil {
		return fmt.Errorf("open %s: %w", h.name, err)
	}
	h.f = f
	return nil
}

// Close releases the file. Closing a closed handle is a no-op.
func (h *Handle) Close() error {
	if h.f == nil {
		return nil
	}
	err := h.f.Close()
	h.f = nil
	if err != nil {
		return fmt.Errorf("close %s: %w", h.name, err)
	}
	return nil
}

// Erase closes the handle and deletes the file. A missing file is not an
// error.
func (h *Handle) Erase() error {
	if err := h.Close(); err != nil {
		return err
	}
	err := h.fs.Remove(abs(h.name))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("erase %s: %w", h.name, err)
	}
	return nil
}

// Clear recreates the file empty and leaves the handle open at offset 0.
func (h *Handle) Clear() error {
	if err := h.Erase(); err != nil {
		return err
	}
	return h.Open()
}

// Size returns the current size of the file.
func (h *Handle) Size() (int64, error) {
	if h.f == nil {
		return 0, ErrClosed
	}
	st, err := h.f.Stat()
	if err != nil {
		return 0, fmt.Errorf("stat %s: %w", h.name, err)
	}
	return st.Size(), nil
}

// Read reads from the current position. It returns io.EOF at the end of the
// file, like os.File.
func (h *Handle) Read(p []byte) (int, error) {
	if h.f == nil {
		return 0, ErrClosed
	}
	n, err := h.f.Read(p)
	h.readOp(n)
	return n, err
}

// Write writes at the current position.
func (h *Handle) Write(p []byte) (int, error) {
	if h.f == nil {
		return 0, ErrClosed
	}
	n, err := h.f.Write(p)
	h.writeOp(n)
	return n, err
}

// Sync commits the file's contents to stable storage.
func (h *Handle) Sync() error {
	if h.f == nil {
		return ErrClosed
	}
	return h.f.Sync()
}
