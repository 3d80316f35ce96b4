package storage

import (
	"go.uber.org/zap"

	"github.com/muurk/picoprov/internal/logging"
)

// Vault provides typed accessors over the Store. Every mutation validates
// its input, rewrites the corresponding sub-structure, and persists the
// whole record through a single Write; there is no partial-field
// persistence. All mutating calls fail if the store was never successfully
// opened.
type Vault struct {
	store *Store
}

// NewVault creates a vault over the given store.
func NewVault(store *Store) *Vault {
	return &Vault{store: store}
}

// Open opens the underlying store. See Store.Open.
func (v *Vault) Open() error {
	return v.store.Open()
}

// Store exposes the underlying store for diagnostics and maintenance.
func (v *Vault) Store() *Store {
	return v.store
}

// SaveWiFiCredentials validates and persists network credentials. The SSID
// must be non-empty printable ASCII of at most 32 bytes; the password is
// silently truncated at 64 bytes. On success the stored credentials are
// marked valid.
func (v *Vault) SaveWiFiCredentials(ssid, password string) error {
	if !v.store.Opened() {
		return NewNotOpenError("save credentials")
	}
	if err := ValidateSSID(ssid); err != nil {
		return err
	}
	if len(password) > MaxPasswordLength {
		logging.Debug("Truncating over-length WiFi password",
			zap.Int("length", len(password)),
		)
		password = password[:MaxPasswordLength]
	}

	rec := v.store.Read()
	rec.WiFi = WiFiCredentials{SSID: ssid, Password: password, Valid: true}
	if err := v.store.Write(rec); err != nil {
		return err
	}

	logging.Info("WiFi credentials saved", zap.String("ssid", ssid))
	return nil
}

// LoadWiFiCredentials returns the stored credentials. found is true only
// when the stored record has credentials marked valid.
func (v *Vault) LoadWiFiCredentials() (WiFiCredentials, bool) {
	if !v.store.Opened() {
		return WiFiCredentials{}, false
	}
	creds := v.store.Read().WiFi
	return creds, creds.Valid
}

// HasWiFiCredentials reports whether valid credentials are stored.
func (v *Vault) HasWiFiCredentials() bool {
	_, found := v.LoadWiFiCredentials()
	return found
}

// ClearWiFiCredentials removes the stored credentials.
func (v *Vault) ClearWiFiCredentials() error {
	if !v.store.Opened() {
		return NewNotOpenError("clear credentials")
	}
	rec := v.store.Read()
	rec.WiFi.Clear()
	return v.store.Write(rec)
}

// SaveNetworkConfig persists the static-IP override settings.
func (v *Vault) SaveNetworkConfig(cfg NetworkConfig) error {
	if !v.store.Opened() {
		return NewNotOpenError("save network config")
	}
	rec := v.store.Read()
	rec.Network = cfg
	return v.store.Write(rec)
}

// LoadNetworkConfig returns the stored static-IP settings. ok is false only
// when the store was never opened.
func (v *Vault) LoadNetworkConfig() (NetworkConfig, bool) {
	if !v.store.Opened() {
		return NetworkConfig{}, false
	}
	return v.store.Read().Network, true
}

// ClearNetworkConfig resets the static-IP settings to their zero values.
func (v *Vault) ClearNetworkConfig() error {
	return v.SaveNetworkConfig(NetworkConfig{})
}

// SaveDeviceConfig validates and persists device-level settings.
func (v *Vault) SaveDeviceConfig(cfg DeviceConfig) error {
	if !v.store.Opened() {
		return NewNotOpenError("save device config")
	}
	if err := ValidateHostname(cfg.Hostname); err != nil {
		return err
	}
	rec := v.store.Read()
	rec.Device = cfg
	return v.store.Write(rec)
}

// LoadDeviceConfig returns the stored device settings. ok is false only when
// the store was never opened.
func (v *Vault) LoadDeviceConfig() (DeviceConfig, bool) {
	if !v.store.Opened() {
		return DeviceConfig{}, false
	}
	return v.store.Read().Device, true
}

// ClearDeviceConfig resets device settings to factory defaults.
func (v *Vault) ClearDeviceConfig() error {
	return v.SaveDeviceConfig(DefaultDeviceConfig())
}

// SaveAll persists all three sub-structures in one record write.
func (v *Vault) SaveAll(wifi WiFiCredentials, network NetworkConfig, device DeviceConfig) error {
	if !v.store.Opened() {
		return NewNotOpenError("save all")
	}
	if wifi.Valid {
		if err := ValidateSSID(wifi.SSID); err != nil {
			return err
		}
	}
	if err := ValidateHostname(device.Hostname); err != nil {
		return err
	}
	rec := v.store.Read()
	rec.WiFi = wifi
	rec.Network = network
	rec.Device = device
	return v.store.Write(rec)
}

// LoadAll returns all three sub-structures. ok is false only when the store
// was never opened.
func (v *Vault) LoadAll() (WiFiCredentials, NetworkConfig, DeviceConfig, bool) {
	if !v.store.Opened() {
		return WiFiCredentials{}, NetworkConfig{}, DeviceConfig{}, false
	}
	rec := v.store.Read()
	return rec.WiFi, rec.Network, rec.Device, true
}

// ClearAll resets the entire record to factory defaults. This is the
// factory-reset entry point used by the connection manager.
func (v *Vault) ClearAll() error {
	if !v.store.Opened() {
		return NewNotOpenError("clear all")
	}
	return v.store.Format()
}
