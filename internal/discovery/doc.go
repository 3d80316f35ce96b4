// Package discovery provides mDNS/DNS-SD discovery of PicoProv devices.
//
// Devices in setup mode advertise a "_picoprov-setup._tcp" service; connected
// devices advertise "_picoprov._tcp". The scanner browses for either type and
// returns the devices it hears from, with their portal address and TXT-record
// metadata. Discovery is best-effort: a quiet network and an absent device
// look the same, so callers should offer a manual address escape hatch.
package discovery
