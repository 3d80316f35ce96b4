package storage

import (
	"strings"
	"testing"
)

func openedVault(t *testing.T) *Vault {
	t.Helper()
	vault := NewVault(NewStore(NewMemBackend(0)))
	if err := vault.Open(); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	return vault
}

// TestSaveWiFiCredentials covers validation at the API boundary.
func TestSaveWiFiCredentials(t *testing.T) {
	tests := []struct {
		name     string
		ssid     string
		password string
		wantErr  bool
	}{
		{"valid credentials", "HomeNetwork", "secretpw", false},
		{"open network", "OpenNet", "", false},
		{"max length ssid", strings.Repeat("a", 32), "pw", false},
		{"empty ssid", "", "pw", true},
		{"over-length ssid", strings.Repeat("a", 33), "pw", true},
		{"non-printable ssid", "bad\x07net", "pw", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vault := openedVault(t)
			err := vault.SaveWiFiCredentials(tt.ssid, tt.password)
			if (err != nil) != tt.wantErr {
				t.Fatalf("SaveWiFiCredentials() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !IsValidationError(err) {
					t.Errorf("expected validation error, got %T", err)
				}
				if vault.HasWiFiCredentials() {
					t.Errorf("rejected save still stored credentials")
				}
				return
			}
			creds, found := vault.LoadWiFiCredentials()
			if !found {
				t.Fatalf("credentials not found after save")
			}
			if creds.SSID != tt.ssid || creds.Password != tt.password {
				t.Errorf("stored %q/%q, want %q/%q", creds.SSID, creds.Password, tt.ssid, tt.password)
			}
		})
	}
}

// TestSaveWiFiCredentialsRejectionPreservesPrevious verifies a failed save
// leaves previously stored credentials unchanged.
func TestSaveWiFiCredentialsRejectionPreservesPrevious(t *testing.T) {
	vault := openedVault(t)
	if err := vault.SaveWiFiCredentials("KeepMe", "oldpw"); err != nil {
		t.Fatalf("initial save error = %v", err)
	}

	if err := vault.SaveWiFiCredentials("", "x"); err == nil {
		t.Fatalf("empty ssid save succeeded, want error")
	}

	creds, found := vault.LoadWiFiCredentials()
	if !found || creds.SSID != "KeepMe" || creds.Password != "oldpw" {
		t.Errorf("previous credentials disturbed: %+v (found=%v)", creds, found)
	}
}

// TestSaveWiFiCredentialsTruncatesPassword verifies silent truncation at the
// 64-byte field limit.
func TestSaveWiFiCredentialsTruncatesPassword(t *testing.T) {
	vault := openedVault(t)
	long := strings.Repeat("p", 100)

	if err := vault.SaveWiFiCredentials("Net", long); err != nil {
		t.Fatalf("SaveWiFiCredentials() error = %v", err)
	}

	creds, _ := vault.LoadWiFiCredentials()
	if creds.Password != long[:MaxPasswordLength] {
		t.Errorf("password length = %d, want %d", len(creds.Password), MaxPasswordLength)
	}
}

// TestClearWiFiCredentials verifies clearing invalidates stored credentials.
func TestClearWiFiCredentials(t *testing.T) {
	vault := openedVault(t)
	if err := vault.SaveWiFiCredentials("Net", "pw"); err != nil {
		t.Fatalf("save error = %v", err)
	}

	if err := vault.ClearWiFiCredentials(); err != nil {
		t.Fatalf("ClearWiFiCredentials() error = %v", err)
	}
	if vault.HasWiFiCredentials() {
		t.Errorf("credentials still present after clear")
	}
	if _, found := vault.LoadWiFiCredentials(); found {
		t.Errorf("LoadWiFiCredentials() found = true after clear")
	}
}

// TestNetworkConfigRoundTrip verifies static-IP settings persist.
func TestNetworkConfigRoundTrip(t *testing.T) {
	vault := openedVault(t)
	cfg := NetworkConfig{
		UseStaticIP: true,
		StaticIP:    0x0A000005,
		Gateway:     0x0A000001,
		Subnet:      0xFFFFFF00,
		PrimaryDNS:  0x01010101,
	}

	if err := vault.SaveNetworkConfig(cfg); err != nil {
		t.Fatalf("SaveNetworkConfig() error = %v", err)
	}
	got, ok := vault.LoadNetworkConfig()
	if !ok || got != cfg {
		t.Errorf("LoadNetworkConfig() = %+v (ok=%v), want %+v", got, ok, cfg)
	}

	if err := vault.ClearNetworkConfig(); err != nil {
		t.Fatalf("ClearNetworkConfig() error = %v", err)
	}
	got, _ = vault.LoadNetworkConfig()
	if got != (NetworkConfig{}) {
		t.Errorf("network config after clear = %+v, want zero", got)
	}
}

// TestDeviceConfigValidation verifies hostname validation on save.
func TestDeviceConfigValidation(t *testing.T) {
	tests := []struct {
		name     string
		hostname string
		wantErr  bool
	}{
		{"valid hostname", "sensor-07", false},
		{"max length hostname", strings.Repeat("h", 31), false},
		{"empty hostname", "", true},
		{"over-length hostname", strings.Repeat("h", 32), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vault := openedVault(t)
			cfg := DefaultDeviceConfig()
			cfg.Hostname = tt.hostname
			err := vault.SaveDeviceConfig(cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("SaveDeviceConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// TestVaultMutatorsBeforeOpen verifies every mutating call no-ops with an
// error when the store was never opened.
func TestVaultMutatorsBeforeOpen(t *testing.T) {
	vault := NewVault(NewStore(NewMemBackend(0)))

	tests := []struct {
		name string
		call func() error
	}{
		{"SaveWiFiCredentials", func() error { return vault.SaveWiFiCredentials("Net", "pw") }},
		{"ClearWiFiCredentials", vault.ClearWiFiCredentials},
		{"SaveNetworkConfig", func() error { return vault.SaveNetworkConfig(NetworkConfig{}) }},
		{"SaveDeviceConfig", func() error { return vault.SaveDeviceConfig(DefaultDeviceConfig()) }},
		{"SaveAll", func() error {
			return vault.SaveAll(WiFiCredentials{}, NetworkConfig{}, DefaultDeviceConfig())
		}},
		{"ClearAll", vault.ClearAll},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.call(); !IsNotOpen(err) {
				t.Errorf("%s before Open error = %v, want NotOpen", tt.name, err)
			}
		})
	}

	if vault.HasWiFiCredentials() {
		t.Errorf("HasWiFiCredentials() = true on unopened vault")
	}
	if _, _, _, ok := vault.LoadAll(); ok {
		t.Errorf("LoadAll() ok = true on unopened vault")
	}
}

// TestSaveAllLoadAllClearAll verifies whole-record operations.
func TestSaveAllLoadAllClearAll(t *testing.T) {
	vault := openedVault(t)

	wifi := WiFiCredentials{SSID: "Net", Password: "pw", Valid: true}
	network := NetworkConfig{UseStaticIP: true, StaticIP: 1, Gateway: 2, Subnet: 3}
	device := DeviceConfig{Hostname: "host", AutoReconnect: false, MaxReconnectAttempts: 5, ConnectTimeout: 10}

	if err := vault.SaveAll(wifi, network, device); err != nil {
		t.Fatalf("SaveAll() error = %v", err)
	}

	gotWifi, gotNetwork, gotDevice, ok := vault.LoadAll()
	if !ok {
		t.Fatalf("LoadAll() ok = false")
	}
	if gotWifi != wifi || gotNetwork != network || gotDevice != device {
		t.Errorf("LoadAll() mismatch:\n got %+v %+v %+v\nwant %+v %+v %+v",
			gotWifi, gotNetwork, gotDevice, wifi, network, device)
	}

	if err := vault.ClearAll(); err != nil {
		t.Fatalf("ClearAll() error = %v", err)
	}
	if vault.HasWiFiCredentials() {
		t.Errorf("credentials survived ClearAll")
	}
	_, _, gotDevice, _ = vault.LoadAll()
	if gotDevice != DefaultDeviceConfig() {
		t.Errorf("device config after ClearAll = %+v, want defaults", gotDevice)
	}
}
