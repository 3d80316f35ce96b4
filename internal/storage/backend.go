package storage

import (
	"fmt"
	"os"
	"path/filepath"
)

// DefaultCapacity is the default size of the backing medium in bytes,
// matching the EEPROM-emulation region the firmware reserves.
const DefaultCapacity = 512

// Backend abstracts the physical byte medium the record is persisted to.
// Implementations must make Store durable before returning; the Store layer
// relies on that for its atomicity guarantee. Firmware ports implement this
// over the flash driver.
type Backend interface {
	// Load reads the raw record bytes. A fresh, never-written medium returns
	// an empty (or short) slice and no error; errors are reserved for an
	// unavailable medium.
	Load() ([]byte, error)

	// Store durably persists the raw record bytes, fully superseding any
	// previous contents.
	Store(data []byte) error

	// Capacity returns the usable size of the medium in bytes.
	Capacity() int
}

// FileBackend persists the record to a file on the host filesystem. Writes
// are atomic: data is written to a temporary file and renamed into place, so
// a crash mid-write leaves the previous record intact.
type FileBackend struct {
	path     string
	capacity int
}

// NewFileBackend creates a file-backed medium at path. A capacity of 0
// selects DefaultCapacity.
func NewFileBackend(path string, capacity int) *FileBackend {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &FileBackend{path: path, capacity: capacity}
}

// Load reads the record file. A missing file is a fresh medium, not an error.
func (b *FileBackend) Load() ([]byte, error) {
	data, err := os.ReadFile(b.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read storage file: %w", err)
	}
	return data, nil
}

// Store writes the record file atomically (temp file + rename).
func (b *FileBackend) Store(data []byte) error {
	if len(data) > b.capacity {
		return fmt.Errorf("record size %d exceeds backend capacity %d", len(data), b.capacity)
	}

	dir := filepath.Dir(b.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create storage directory: %w", err)
	}

	tmpPath := b.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write temporary storage file: %w", err)
	}

	// Atomic rename (this is atomic on all platforms)
	if err := os.Rename(tmpPath, b.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to commit storage file: %w", err)
	}

	return nil
}

// Capacity returns the configured medium size.
func (b *FileBackend) Capacity() int {
	return b.capacity
}

// Path returns the backing file path.
func (b *FileBackend) Path() string {
	return b.path
}

// MemBackend keeps the record in memory. Used by tests and the simulator.
type MemBackend struct {
	data     []byte
	capacity int
}

// NewMemBackend creates an in-memory medium. A capacity of 0 selects
// DefaultCapacity.
func NewMemBackend(capacity int) *MemBackend {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &MemBackend{capacity: capacity}
}

// Load returns the current contents (nil on a fresh medium).
func (b *MemBackend) Load() ([]byte, error) {
	if b.data == nil {
		return nil, nil
	}
	out := make([]byte, len(b.data))
	copy(out, b.data)
	return out, nil
}

// Store replaces the contents.
func (b *MemBackend) Store(data []byte) error {
	if len(data) > b.capacity {
		return fmt.Errorf("record size %d exceeds backend capacity %d", len(data), b.capacity)
	}
	b.data = make([]byte, len(data))
	copy(b.data, data)
	return nil
}

// Capacity returns the configured medium size.
func (b *MemBackend) Capacity() int {
	return b.capacity
}

// Bytes exposes the stored bytes directly. Tests use this to simulate
// corruption by flipping bytes in place.
func (b *MemBackend) Bytes() []byte {
	return b.data
}
