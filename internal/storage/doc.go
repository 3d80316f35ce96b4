// Package storage implements the persistent configuration store for the
// picoprov agent.
//
// The store keeps a single fixed-layout binary record containing WiFi
// credentials, static-IP network settings, and device settings, protected by
// a magic number, a version byte, and a CRC32 checksum. The record survives
// power loss and flash wear: a corrupted or partially-written record is
// detected on open and silently replaced with a freshly initialized default
// record, so callers never observe invalid data.
//
// # Layers
//
// The package has two layers:
//   - Store: byte-exact persistence of the Record with validation and
//     corruption recovery. The Store is the single writer of the backing
//     medium; every write rewrites the entire record with a recomputed
//     checksum.
//   - Vault: typed accessors (WiFi credentials, network config, device
//     config) layered over the Store. The Vault enforces field-length and
//     charset validation before anything is written.
//
// # Backing media
//
// The physical medium is abstracted behind the Backend interface. FileBackend
// persists the record to a file with an atomic temp-file-and-rename write;
// MemBackend keeps it in memory for tests and simulation. Firmware ports
// supply their own Backend over the flash driver.
//
// # Wire layout
//
// The record layout is fixed and hand-serialized (little-endian, no struct
// padding): magic u32, version u8, checksum u32, ssid [32]byte, password
// [64]byte, valid u8, static-IP block, hostname [32]byte, device settings,
// and a 64-byte reserved tail. Any reader of the raw bytes must replicate
// this exact ordering to remain compatible across firmware updates.
package storage
