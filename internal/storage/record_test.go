package storage

import (
	"strings"
	"testing"
)

// TestRecordMarshalRoundTrip verifies the fixed layout survives a
// marshal/unmarshal cycle for representative records.
func TestRecordMarshalRoundTrip(t *testing.T) {
	rec := DefaultRecord()
	rec.WiFi = WiFiCredentials{SSID: "HomeNetwork", Password: "hunter22", Valid: true}
	rec.Network = NetworkConfig{
		UseStaticIP:  true,
		StaticIP:     0xC0A80164, // 192.168.1.100
		Gateway:      0xC0A80101,
		Subnet:       0xFFFFFF00,
		PrimaryDNS:   0x08080808,
		SecondaryDNS: 0x08080404,
	}
	rec.Device = DeviceConfig{
		Hostname:             "bench-device",
		AutoReconnect:        false,
		MaxReconnectAttempts: 7,
		ConnectTimeout:       45,
	}
	rec.Checksum = ChecksumOf(rec)

	raw := rec.Marshal()
	if len(raw) != RecordSize {
		t.Fatalf("Marshal() produced %d bytes, want %d", len(raw), RecordSize)
	}

	back, err := UnmarshalRecord(raw)
	if err != nil {
		t.Fatalf("UnmarshalRecord() error = %v", err)
	}
	if back != rec {
		t.Errorf("round trip mismatch:\n got: %+v\nwant: %+v", back, rec)
	}
}

// TestUnmarshalRecordShortBuffer verifies short input is rejected.
func TestUnmarshalRecordShortBuffer(t *testing.T) {
	tests := []struct {
		name string
		size int
	}{
		{"empty", 0},
		{"one byte", 1},
		{"one byte short", RecordSize - 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := UnmarshalRecord(make([]byte, tt.size)); err == nil {
				t.Errorf("UnmarshalRecord(%d bytes) expected error, got nil", tt.size)
			}
		})
	}
}

// TestMarshalTruncatesOverlongFields verifies fields are clamped to their
// on-flash sizes rather than corrupting neighbouring fields.
func TestMarshalTruncatesOverlongFields(t *testing.T) {
	rec := DefaultRecord()
	rec.WiFi.SSID = strings.Repeat("s", 40)
	rec.WiFi.Password = strings.Repeat("p", 80)
	rec.WiFi.Valid = true
	rec.Device.Hostname = strings.Repeat("h", 50)

	back, err := UnmarshalRecord(rec.Marshal())
	if err != nil {
		t.Fatalf("UnmarshalRecord() error = %v", err)
	}

	if len(back.WiFi.SSID) != ssidFieldSize {
		t.Errorf("SSID length = %d, want %d", len(back.WiFi.SSID), ssidFieldSize)
	}
	if len(back.WiFi.Password) != passwordFieldSize {
		t.Errorf("password length = %d, want %d", len(back.WiFi.Password), passwordFieldSize)
	}
	if len(back.Device.Hostname) != hostnameFieldSize {
		t.Errorf("hostname length = %d, want %d", len(back.Device.Hostname), hostnameFieldSize)
	}
	if back.WiFi.Valid != true {
		t.Errorf("valid flag corrupted by overlong neighbouring field")
	}
}

// TestChecksumDeterminism verifies the checksum is stable across recomputes
// and independent of the stored checksum value.
func TestChecksumDeterminism(t *testing.T) {
	rec := DefaultRecord()
	rec.WiFi = WiFiCredentials{SSID: "Net", Password: "pw", Valid: true}

	first := ChecksumOf(rec)
	rec.Checksum = first
	second := ChecksumOf(rec)

	if first != second {
		t.Errorf("checksum changed after storing it: %08X != %08X", first, second)
	}

	rec.WiFi.Password = "pw2"
	if ChecksumOf(rec) == first {
		t.Errorf("checksum did not change when record content changed")
	}
}

// TestValidate exercises the pure validation predicate.
func TestValidate(t *testing.T) {
	valid := func() Record {
		rec := DefaultRecord()
		rec.WiFi = WiFiCredentials{SSID: "Net", Password: "pw", Valid: true}
		rec.Checksum = ChecksumOf(rec)
		return rec
	}

	tests := []struct {
		name   string
		mutate func(*Record)
		want   bool
	}{
		{"valid record", func(r *Record) {}, true},
		{"wrong magic", func(r *Record) { r.Magic = 0xDEADBEEF }, false},
		{"wrong version", func(r *Record) { r.Version = 2 }, false},
		{"stale checksum", func(r *Record) { r.WiFi.Password = "other" }, false},
		{"valid flag with empty ssid", func(r *Record) {
			r.WiFi.SSID = ""
			r.Checksum = ChecksumOf(*r)
		}, false},
		{"valid flag with control chars in ssid", func(r *Record) {
			r.WiFi.SSID = "bad\x01ssid"
			r.Checksum = ChecksumOf(*r)
		}, false},
		{"invalid ssid but flag cleared", func(r *Record) {
			r.WiFi.SSID = ""
			r.WiFi.Valid = false
			r.Checksum = ChecksumOf(*r)
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := valid()
			tt.mutate(&rec)
			if got := Validate(rec); got != tt.want {
				t.Errorf("Validate() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestValidateDetectsAnySingleByteCorruption flips every byte of a persisted
// record (outside the checksum field) and verifies validation fails.
func TestValidateDetectsAnySingleByteCorruption(t *testing.T) {
	rec := DefaultRecord()
	rec.WiFi = WiFiCredentials{SSID: "CorruptMe", Password: "secret", Valid: true}
	rec.Checksum = ChecksumOf(rec)
	raw := rec.Marshal()

	for i := 0; i < RecordSize; i++ {
		if i >= checksumOffset && i < checksumOffset+4 {
			continue
		}
		corrupted := make([]byte, RecordSize)
		copy(corrupted, raw)
		corrupted[i] ^= 0xFF

		back, err := UnmarshalRecord(corrupted)
		if err != nil {
			t.Fatalf("byte %d: UnmarshalRecord() error = %v", i, err)
		}
		if Validate(back) {
			t.Errorf("byte %d: corruption not detected", i)
		}
	}
}
