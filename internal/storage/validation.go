package storage

import "fmt"

// ValidateSSID validates a WiFi SSID.
// SSIDs must be non-empty, at most 32 bytes, and printable ASCII.
func ValidateSSID(ssid string) error {
	if ssid == "" {
		return NewValidationError("WiFi SSID cannot be empty")
	}
	if len(ssid) > MaxSSIDLength {
		return NewValidationError(fmt.Sprintf("WiFi SSID too long (max %d bytes): %d bytes", MaxSSIDLength, len(ssid)))
	}
	for i := 0; i < len(ssid); i++ {
		if ssid[i] < 32 || ssid[i] > 126 {
			return NewValidationError(fmt.Sprintf("WiFi SSID contains non-printable byte 0x%02X at position %d", ssid[i], i))
		}
	}
	return nil
}

// ValidatePassword validates a WiFi password.
// Empty passwords are valid (open networks); the only hard limit is the
// 64-byte field size. Note that SaveWiFiCredentials truncates rather than
// rejects, so this is mainly for callers that want to warn before saving.
func ValidatePassword(password string) error {
	if len(password) > MaxPasswordLength {
		return NewValidationError(fmt.Sprintf("WiFi password too long (max %d bytes): %d bytes", MaxPasswordLength, len(password)))
	}
	return nil
}

// ValidateHostname validates a device hostname.
// Hostnames must be non-empty and at most 31 characters.
func ValidateHostname(hostname string) error {
	if hostname == "" {
		return NewValidationError("hostname cannot be empty")
	}
	if len(hostname) > MaxHostnameLength {
		return NewValidationError(fmt.Sprintf("hostname too long (max %d chars): %d chars", MaxHostnameLength, len(hostname)))
	}
	return nil
}
