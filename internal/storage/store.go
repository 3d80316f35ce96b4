package storage

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/muurk/picoprov/internal/logging"
)

// Store is the integrity-checked persistence layer for the configuration
// record. It holds the single validated in-memory copy of the record and is
// the only writer of the backing medium. Every write rewrites the entire
// record with a recomputed checksum, so partial updates are impossible by
// construction.
//
// Store is not safe for concurrent use; the agent drives it from one
// cooperative control loop.
type Store struct {
	backend Backend
	data    Record
	opened  bool
}

// NewStore creates a store over the given backing medium. The store is
// unusable until Open succeeds.
func NewStore(backend Backend) *Store {
	return &Store{backend: backend}
}

// Open reads and validates the record from the backing medium. If validation
// fails (fresh medium, corruption, version mismatch), a default record is
// initialized and written back before Open returns. Open fails only when the
// medium itself is unavailable.
func (s *Store) Open() error {
	if s.opened {
		return nil
	}

	if s.backend.Capacity() < RecordSize {
		return NewUnavailableError(
			fmt.Sprintf("backend capacity %d is smaller than record size %d", s.backend.Capacity(), RecordSize), nil)
	}

	raw, err := s.backend.Load()
	if err != nil {
		return NewUnavailableError("failed to load record from backing medium", err)
	}

	rec, parseErr := UnmarshalRecord(raw)
	if parseErr != nil || !Validate(rec) {
		logging.Warn("No valid storage record found, initializing defaults",
			zap.Int("raw_length", len(raw)),
		)
		s.data = DefaultRecord()
		if err := s.persist(); err != nil {
			return err
		}
	} else {
		s.data = rec
	}

	s.opened = true
	logging.Info("Storage opened",
		zap.Uint32("checksum", s.data.Checksum),
		zap.Bool("has_credentials", s.data.WiFi.Valid),
	)
	return nil
}

// Opened reports whether Open has succeeded.
func (s *Store) Opened() bool {
	return s.opened
}

// Read returns a copy of the current validated record. The record is always
// the validated in-memory copy; an invalid record is never exposed.
func (s *Store) Read() Record {
	return s.data
}

// Write recomputes the checksum over every field except the checksum itself,
// stores the full record, and commits it durably. Safe to call repeatedly;
// each call fully supersedes the previous persisted state.
func (s *Store) Write(rec Record) error {
	if !s.opened {
		return NewNotOpenError("write")
	}
	s.data = rec
	return s.persist()
}

// persist recomputes the checksum and commits the in-memory record.
func (s *Store) persist() error {
	s.data.Magic = StorageMagic
	s.data.Version = StorageVersion
	s.data.Checksum = ChecksumOf(s.data)

	raw := s.data.Marshal()
	logging.LogRawBytes("Persisting storage record", raw)

	if err := s.backend.Store(raw); err != nil {
		return NewUnavailableError("failed to commit record to backing medium", err)
	}
	return nil
}

// Format resets the record to factory defaults and persists it.
func (s *Store) Format() error {
	if !s.opened {
		return NewNotOpenError("format")
	}
	s.data = DefaultRecord()
	if err := s.persist(); err != nil {
		return err
	}
	logging.Info("Storage formatted")
	return nil
}

// IntegrityCheck re-validates the in-memory record. Diagnostic entry point;
// returns false when the store is not open.
func (s *Store) IntegrityCheck() bool {
	return s.opened && Validate(s.data)
}

// RepairIfNeeded reinitializes the record to defaults if it no longer
// validates. Returns true if a repair was performed.
func (s *Store) RepairIfNeeded() (bool, error) {
	if !s.opened {
		return false, NewNotOpenError("repair")
	}
	if Validate(s.data) {
		return false, nil
	}
	logging.Warn("Storage corrupted, reinitializing defaults")
	s.data = DefaultRecord()
	if err := s.persist(); err != nil {
		return false, err
	}
	return true, nil
}

// Checksum returns the checksum of the current record.
func (s *Store) Checksum() uint32 {
	return s.data.Checksum
}

// UsedSpace returns the serialized record size in bytes.
func (s *Store) UsedSpace() int {
	return RecordSize
}

// TotalSpace returns the capacity of the backing medium in bytes.
func (s *Store) TotalSpace() int {
	return s.backend.Capacity()
}

// Diagnostics returns a human-readable dump of storage state. Informational
// only; no programmatic contract.
func (s *Store) Diagnostics() string {
	var sb strings.Builder
	sb.WriteString("=== Storage Diagnostics ===\n")
	fmt.Fprintf(&sb, "Opened: %v\n", s.opened)
	fmt.Fprintf(&sb, "Capacity: %d bytes\n", s.backend.Capacity())
	fmt.Fprintf(&sb, "Used: %d bytes\n", RecordSize)
	fmt.Fprintf(&sb, "Valid: %v\n", s.IntegrityCheck())
	fmt.Fprintf(&sb, "Magic: 0x%08X\n", s.data.Magic)
	fmt.Fprintf(&sb, "Version: %d\n", s.data.Version)
	fmt.Fprintf(&sb, "Checksum: 0x%08X\n", s.data.Checksum)
	if s.data.WiFi.Valid {
		fmt.Fprintf(&sb, "WiFi SSID: %s\n", s.data.WiFi.SSID)
		sb.WriteString("WiFi Password: [Set]\n")
	} else {
		sb.WriteString("WiFi: Not configured\n")
	}
	fmt.Fprintf(&sb, "Hostname: %s\n", s.data.Device.Hostname)
	return sb.String()
}
