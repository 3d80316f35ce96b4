// Package portal implements the configuration portal the device serves while
// in config mode.
//
// The portal is a small HTTP server with a setup page, a JSON API, and a
// WebSocket status feed:
//
//	GET  /         Setup page (HTML form)
//	POST /connect  Submit WiFi credentials
//	POST /reset    Factory reset
//	GET  /info     Device info (JSON)
//	GET  /ws       Live status events (WebSocket)
//
// While active the portal announces itself over mDNS as a
// "_picoprov-setup._tcp" service so setup tools can find the device without
// knowing its address.
//
// The portal never runs orchestration logic itself: every submission is
// forwarded to the Orchestrator, which owns all state transitions. Handlers
// run on the HTTP server's goroutines; the Orchestrator implementation is
// responsible for serializing calls into the control loop.
package portal
