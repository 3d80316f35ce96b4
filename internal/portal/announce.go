package portal

import (
	"fmt"

	"github.com/grandcat/zeroconf"

	"github.com/muurk/picoprov/internal/discovery"
)

// Announcer advertises a service over mDNS until shut down. It is the
// device-side counterpart of the discovery scanner.
type Announcer struct {
	server *zeroconf.Server
}

// Announce registers an mDNS service. txt records are in "key=value" format.
func Announce(instance, serviceType string, port int, txt []string) (*Announcer, error) {
	server, err := zeroconf.Register(instance, serviceType, discovery.ServiceDomain, port, txt, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to register mDNS service: %w", err)
	}
	return &Announcer{server: server}, nil
}

// Shutdown withdraws the advertisement. Safe to call on a nil Announcer.
func (a *Announcer) Shutdown() {
	if a == nil || a.server == nil {
		return
	}
	a.server.Shutdown()
	a.server = nil
}
