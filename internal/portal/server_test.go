package portal

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/muurk/picoprov/internal/conn"
	"github.com/muurk/picoprov/internal/storage"
)

// fakeOrchestrator records submissions and returns a scripted error.
type fakeOrchestrator struct {
	submitErr   error
	submissions []string
	resets      int
	status      conn.Status
}

func (o *fakeOrchestrator) SubmitCredentials(ssid, password string) error {
	if err := storage.ValidateSSID(ssid); err != nil {
		return err
	}
	o.submissions = append(o.submissions, ssid)
	return o.submitErr
}

func (o *fakeOrchestrator) RequestReset()          { o.resets++ }
func (o *fakeOrchestrator) Status() conn.Status    { return o.status }
func (o *fakeOrchestrator) ReconnectAttempts() int { return 2 }
func (o *fakeOrchestrator) Uptime() time.Duration  { return 90 * time.Second }

func startPortal(t *testing.T, orch Orchestrator) *Server {
	t.Helper()
	s := NewServer(Config{
		ListenAddr: "127.0.0.1:0",
		Hostname:   "pico2w",
		Announce:   false,
	}, orch)
	if err := s.Activate("Test-Setup", ""); err != nil {
		t.Fatalf("Activate() error = %v", err)
	}
	t.Cleanup(s.Deactivate)
	return s
}

func portalURL(s *Server, path string) string {
	return fmt.Sprintf("http://127.0.0.1:%d%s", s.Port(), path)
}

func postConnect(t *testing.T, s *Server, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(portalURL(s, "/connect"), "application/json", bytes.NewBufferString(body))
	if err != nil {
		t.Fatalf("POST /connect error = %v", err)
	}
	return resp
}

func TestActivateIdempotent(t *testing.T) {
	orch := &fakeOrchestrator{}
	s := startPortal(t, orch)

	port := s.Port()
	if err := s.Activate("Test-Setup", ""); err != nil {
		t.Fatalf("second Activate() error = %v", err)
	}
	if s.Port() != port {
		t.Errorf("second Activate changed the bound port: %d -> %d", port, s.Port())
	}
}

func TestDeactivateSafeWhenInactive(t *testing.T) {
	s := NewServer(Config{ListenAddr: "127.0.0.1:0"}, &fakeOrchestrator{})
	s.Deactivate() // must not panic
	if s.Port() != 0 {
		t.Errorf("Port() = %d on inactive portal, want 0", s.Port())
	}
}

func TestIndexServesSetupPage(t *testing.T) {
	s := startPortal(t, &fakeOrchestrator{})

	resp, err := http.Get(portalURL(s, "/"))
	if err != nil {
		t.Fatalf("GET / error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q, want text/html", ct)
	}
}

func TestConnectSuccess(t *testing.T) {
	orch := &fakeOrchestrator{}
	s := startPortal(t, orch)

	resp := postConnect(t, s, `{"ssid":"HomeNet","password":"pw"}`)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	if len(orch.submissions) != 1 || orch.submissions[0] != "HomeNet" {
		t.Errorf("submissions = %v, want [HomeNet]", orch.submissions)
	}
}

func TestConnectErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		submitErr  error
		wantStatus int
	}{
		{"malformed json", `{"ssid":`, nil, http.StatusBadRequest},
		{"invalid ssid", `{"ssid":"","password":"pw"}`, nil, http.StatusBadRequest},
		{"join failure", `{"ssid":"HomeNet","password":"bad"}`, &conn.JoinError{SSID: "HomeNet"}, http.StatusUnprocessableEntity},
		{"radio fault", `{"ssid":"HomeNet","password":"pw"}`, &conn.RadioFaultError{Reason: "wedged"}, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orch := &fakeOrchestrator{submitErr: tt.submitErr}
			s := startPortal(t, orch)

			resp := postConnect(t, s, tt.body)
			defer resp.Body.Close()

			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
			var body errorResponse
			if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
				t.Fatalf("decode error body: %v", err)
			}
			if body.Error == "" {
				t.Errorf("error response has no message")
			}
		})
	}
}

func TestConnectRejectsGet(t *testing.T) {
	s := startPortal(t, &fakeOrchestrator{})

	resp, err := http.Get(portalURL(s, "/connect"))
	if err != nil {
		t.Fatalf("GET /connect error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", resp.StatusCode)
	}
}

func TestReset(t *testing.T) {
	orch := &fakeOrchestrator{}
	s := startPortal(t, orch)

	resp, err := http.Post(portalURL(s, "/reset"), "application/json", nil)
	if err != nil {
		t.Fatalf("POST /reset error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		t.Errorf("status = %d, want 202", resp.StatusCode)
	}
	if orch.resets != 1 {
		t.Errorf("resets = %d, want 1", orch.resets)
	}
}

func TestInfo(t *testing.T) {
	orch := &fakeOrchestrator{status: conn.StatusConfigMode}
	s := startPortal(t, orch)

	resp, err := http.Get(portalURL(s, "/info"))
	if err != nil {
		t.Fatalf("GET /info error = %v", err)
	}
	defer resp.Body.Close()

	var info infoResponse
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		t.Fatalf("decode info: %v", err)
	}

	if info.Name != "Test-Setup" {
		t.Errorf("Name = %q, want Test-Setup", info.Name)
	}
	if info.Hostname != "pico2w" {
		t.Errorf("Hostname = %q, want pico2w", info.Hostname)
	}
	if info.Status != "Config Mode" {
		t.Errorf("Status = %q, want Config Mode", info.Status)
	}
	if info.UptimeSeconds != 90 {
		t.Errorf("UptimeSeconds = %d, want 90", info.UptimeSeconds)
	}
	if info.ReconnectAttempts != 2 {
		t.Errorf("ReconnectAttempts = %d, want 2", info.ReconnectAttempts)
	}
}

func TestWebSocketStatusFeed(t *testing.T) {
	orch := &fakeOrchestrator{}
	s := startPortal(t, orch)

	url := fmt.Sprintf("ws://127.0.0.1:%d/ws", s.Port())
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer ws.Close()

	// Give the server a moment to register the client.
	deadline := time.Now().Add(2 * time.Second)
	for s.ClientCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if s.ClientCount() != 1 {
		t.Fatalf("ClientCount() = %d, want 1", s.ClientCount())
	}

	s.OnStatusChange(conn.StatusConfigMode, conn.StatusConnecting)

	_ = ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	var event StatusEvent
	if err := ws.ReadJSON(&event); err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}

	if event.Type != "status" {
		t.Errorf("Type = %q, want status", event.Type)
	}
	if event.From != "Config Mode" || event.To != "Connecting" {
		t.Errorf("event = %+v, want Config Mode -> Connecting", event)
	}
}

func TestDeactivateDisconnectsClients(t *testing.T) {
	orch := &fakeOrchestrator{}
	s := startPortal(t, orch)

	url := fmt.Sprintf("ws://127.0.0.1:%d/ws", s.Port())
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer ws.Close()

	deadline := time.Now().Add(2 * time.Second)
	for s.ClientCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}

	s.Deactivate()

	if s.ClientCount() != 0 {
		t.Errorf("ClientCount() = %d after Deactivate, want 0", s.ClientCount())
	}

	_ = ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := ws.ReadMessage(); err == nil {
		t.Errorf("client connection survived Deactivate")
	}
}
