// Package agent assembles the provisioning agent: it wires the persistent
// credential store, the connection manager, the configuration portal, and a
// radio into a single runnable unit driven by one control loop.
//
// The connection manager is single-threaded by design. The agent owns the
// serialization: the tick loop and the portal's HTTP handlers both go through
// the agent's mutex, so the manager only ever sees one caller at a time.
//
// While connected, the agent announces the device over mDNS as a
// "_picoprov._tcp" service; the setup-time "_picoprov-setup._tcp" service is
// the portal's own concern.
package agent
