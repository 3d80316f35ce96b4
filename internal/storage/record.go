package storage

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
)

// Storage record framing constants. StorageMagic spells "PICE" in hex and
// marks the start of a picoprov record; StorageVersion gates layout changes.
const (
	StorageMagic   uint32 = 0x50494345
	StorageVersion uint8  = 1
)

// Field size limits, matching the on-flash layout. Hostname is limited to 31
// characters so it always fits its 32-byte field with room for a terminator
// when handed to C-side network stacks.
const (
	MaxSSIDLength     = 32
	MaxPasswordLength = 64
	MaxHostnameLength = 31
)

// Field sizes and offsets of the serialized record.
const (
	ssidFieldSize     = 32
	passwordFieldSize = 64
	hostnameFieldSize = 32
	reservedSize      = 64

	checksumOffset = 5 // after magic (4) + version (1)

	// RecordSize is the exact serialized size of a Record in bytes.
	RecordSize = 4 + 1 + 4 + // magic, version, checksum
		ssidFieldSize + passwordFieldSize + 1 + // wifi
		1 + 5*4 + // network
		hostnameFieldSize + 1 + 1 + 2 + // device
		reservedSize
)

// WiFiCredentials holds the stored network credentials. Valid=false means
// "no credentials configured"; SSID and Password content is then meaningless
// and must not be used to attempt a connection.
type WiFiCredentials struct {
	SSID     string
	Password string
	Valid    bool
}

// Clear resets the credentials to the unconfigured state.
func (c *WiFiCredentials) Clear() {
	c.SSID = ""
	c.Password = ""
	c.Valid = false
}

// NetworkConfig holds the optional static-IP override. Addresses are stored
// as u32-encoded IPv4 values; an all-zero value is treated as "unset".
type NetworkConfig struct {
	UseStaticIP  bool
	StaticIP     uint32
	Gateway      uint32
	Subnet       uint32
	PrimaryDNS   uint32
	SecondaryDNS uint32
}

// DeviceConfig holds device-level settings that drive the connection
// lifecycle policy.
type DeviceConfig struct {
	Hostname             string
	AutoReconnect        bool
	MaxReconnectAttempts uint8
	ConnectTimeout       uint16 // seconds
}

// DefaultDeviceConfig returns the factory device settings.
func DefaultDeviceConfig() DeviceConfig {
	return DeviceConfig{
		Hostname:             "pico2w",
		AutoReconnect:        true,
		MaxReconnectAttempts: 3,
		ConnectTimeout:       30,
	}
}

// Record is the complete persisted configuration record.
type Record struct {
	Magic    uint32
	Version  uint8
	Checksum uint32

	WiFi    WiFiCredentials
	Network NetworkConfig
	Device  DeviceConfig

	Reserved [reservedSize]byte
}

// DefaultRecord returns a freshly initialized record: correct magic and
// version, zero checksum, no credentials, no static IP, factory device
// settings.
func DefaultRecord() Record {
	return Record{
		Magic:   StorageMagic,
		Version: StorageVersion,
		Device:  DefaultDeviceConfig(),
	}
}

// Marshal serializes the record into its fixed RecordSize-byte layout.
// Strings longer than their field are truncated; shorter strings are
// zero-padded.
func (r *Record) Marshal() []byte {
	buf := make([]byte, RecordSize)
	off := 0

	binary.LittleEndian.PutUint32(buf[off:], r.Magic)
	off += 4
	buf[off] = r.Version
	off++
	binary.LittleEndian.PutUint32(buf[off:], r.Checksum)
	off += 4

	off = putString(buf, off, r.WiFi.SSID, ssidFieldSize)
	off = putString(buf, off, r.WiFi.Password, passwordFieldSize)
	off = putBool(buf, off, r.WiFi.Valid)

	off = putBool(buf, off, r.Network.UseStaticIP)
	for _, v := range []uint32{
		r.Network.StaticIP, r.Network.Gateway, r.Network.Subnet,
		r.Network.PrimaryDNS, r.Network.SecondaryDNS,
	} {
		binary.LittleEndian.PutUint32(buf[off:], v)
		off += 4
	}

	off = putString(buf, off, r.Device.Hostname, hostnameFieldSize)
	off = putBool(buf, off, r.Device.AutoReconnect)
	buf[off] = r.Device.MaxReconnectAttempts
	off++
	binary.LittleEndian.PutUint16(buf[off:], r.Device.ConnectTimeout)
	off += 2

	copy(buf[off:], r.Reserved[:])

	return buf
}

// UnmarshalRecord deserializes a record from raw bytes. It fails only on a
// short buffer; content validation is a separate concern (see Validate).
func UnmarshalRecord(data []byte) (Record, error) {
	if len(data) < RecordSize {
		return Record{}, fmt.Errorf("record too short: %d bytes, need %d", len(data), RecordSize)
	}

	var r Record
	off := 0

	r.Magic = binary.LittleEndian.Uint32(data[off:])
	off += 4
	r.Version = data[off]
	off++
	r.Checksum = binary.LittleEndian.Uint32(data[off:])
	off += 4

	r.WiFi.SSID, off = getString(data, off, ssidFieldSize)
	r.WiFi.Password, off = getString(data, off, passwordFieldSize)
	r.WiFi.Valid, off = getBool(data, off)

	r.Network.UseStaticIP, off = getBool(data, off)
	for _, p := range []*uint32{
		&r.Network.StaticIP, &r.Network.Gateway, &r.Network.Subnet,
		&r.Network.PrimaryDNS, &r.Network.SecondaryDNS,
	} {
		*p = binary.LittleEndian.Uint32(data[off:])
		off += 4
	}

	r.Device.Hostname, off = getString(data, off, hostnameFieldSize)
	r.Device.AutoReconnect, off = getBool(data, off)
	r.Device.MaxReconnectAttempts = data[off]
	off++
	r.Device.ConnectTimeout = binary.LittleEndian.Uint16(data[off:])
	off += 2

	copy(r.Reserved[:], data[off:off+reservedSize])

	return r, nil
}

// ChecksumOf computes the record checksum: CRC32 (IEEE) over the serialized
// record with the checksum field itself zeroed. Deterministic over the fixed
// byte layout, so re-reading bytes written earlier reproduces the same value.
func ChecksumOf(r Record) uint32 {
	buf := r.Marshal()
	for i := checksumOffset; i < checksumOffset+4; i++ {
		buf[i] = 0
	}
	return crc32.ChecksumIEEE(buf)
}

// Validate reports whether a record is intact and trustworthy: magic match,
// version match, checksum match, and (when credentials are marked valid) a
// well-formed SSID. Pure function; used internally on open and exposed for
// diagnostics.
func Validate(r Record) bool {
	if r.Magic != StorageMagic {
		return false
	}
	if r.Version != StorageVersion {
		return false
	}
	if r.Checksum != ChecksumOf(r) {
		return false
	}
	if r.WiFi.Valid {
		if err := ValidateSSID(r.WiFi.SSID); err != nil {
			return false
		}
	}
	return true
}

// putString writes s into a fixed-size zero-padded field, truncating at size.
func putString(buf []byte, off int, s string, size int) int {
	b := []byte(s)
	if len(b) > size {
		b = b[:size]
	}
	copy(buf[off:off+size], b)
	return off + size
}

// getString reads a fixed-size field, stopping at the first NUL byte.
func getString(data []byte, off int, size int) (string, int) {
	field := data[off : off+size]
	end := len(field)
	for i, b := range field {
		if b == 0 {
			end = i
			break
		}
	}
	return string(field[:end]), off + size
}

func putBool(buf []byte, off int, v bool) int {
	if v {
		buf[off] = 1
	}
	return off + 1
}

func getBool(data []byte, off int) (bool, int) {
	return data[off] != 0, off + 1
}
