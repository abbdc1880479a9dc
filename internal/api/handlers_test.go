package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"nftmarket/walletbridge/internal/config"
	"nftmarket/walletbridge/internal/database"
	"nftmarket/walletbridge/internal/models"
	"nftmarket/walletbridge/internal/networks"
	"nftmarket/walletbridge/internal/reconciler"
	"nftmarket/walletbridge/internal/session"
)

// newTestServer wires the stack with no provider attached: connects
// fail with the no-provider message and network queries return 503
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	logger := zap.NewNop()
	registry := networks.Default()

	policy := config.ConnectConfig{
		MaxRetries:          0,
		RetryBaseDelay:      time.Millisecond,
		ProgressInterval:    time.Millisecond,
		ProgressResetDelay:  time.Millisecond,
		AccountPollInterval: time.Second,
		ChainPollInterval:   time.Second,
	}
	orchestrator := session.NewOrchestrator(nil, nil, database.NewMemoryStore(), nil, policy, logger)
	rec := reconciler.NewReconciler(nil, registry, time.Second, nil, logger)

	handler := NewHandler(orchestrator, rec, registry, logger)
	srv := httptest.NewServer(SetupRouter(handler, logger))
	t.Cleanup(srv.Close)
	return srv
}

func decodeBody(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
}

func TestHandleHealth(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("health request failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if got := resp.Header.Get("X-Request-Id"); got == "" {
		t.Error("response missing X-Request-Id header")
	}

	var body HealthResponse
	decodeBody(t, resp, &body)
	if body.Status != "ok" {
		t.Errorf("health status = %q, want ok", body.Status)
	}
}

func TestHandleGetSession(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/v1/session")
	if err != nil {
		t.Fatalf("session request failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var body SessionResponse
	decodeBody(t, resp, &body)
	if body.Session.Phase != models.PhaseIdle {
		t.Errorf("phase = %s, want %s", body.Session.Phase, models.PhaseIdle)
	}
	if body.Session.Account != "" {
		t.Errorf("account = %q, want empty", body.Session.Account)
	}
}

func TestHandleConnectWithoutProvider(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Post(srv.URL+"/api/v1/session/connect", "application/json", nil)
	if err != nil {
		t.Fatalf("connect request failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var body ConnectResponse
	decodeBody(t, resp, &body)
	if body.Connected {
		t.Error("connected = true without a provider")
	}
	if body.Session.Phase != models.PhaseFailed {
		t.Errorf("phase = %s, want %s", body.Session.Phase, models.PhaseFailed)
	}
}

func TestHandleDisconnect(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Post(srv.URL+"/api/v1/session/disconnect", "application/json", nil)
	if err != nil {
		t.Fatalf("disconnect request failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var body SessionResponse
	decodeBody(t, resp, &body)
	if body.Session.Phase != models.PhaseIdle {
		t.Errorf("phase = %s, want %s", body.Session.Phase, models.PhaseIdle)
	}
}

func TestHandleListNetworks(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name      string
		query     string
		wantCount int
	}{
		{name: "default is all", query: "", wantCount: 6},
		{name: "all", query: "?scope=all", wantCount: 6},
		{name: "mainnet", query: "?scope=mainnet", wantCount: 3},
		{name: "testnet", query: "?scope=testnet", wantCount: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Get(srv.URL + "/api/v1/networks" + tt.query)
			if err != nil {
				t.Fatalf("networks request failed: %v", err)
			}
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("status = %d, want 200", resp.StatusCode)
			}

			var body NetworkListResponse
			decodeBody(t, resp, &body)
			if len(body.Networks) != tt.wantCount {
				t.Errorf("returned %d networks, want %d", len(body.Networks), tt.wantCount)
			}
		})
	}
}

func TestHandleListNetworksBadScope(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/v1/networks?scope=devnet")
	if err != nil {
		t.Fatalf("networks request failed: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestHandleGetNetworkStatusNoProvider(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/v1/network")
	if err != nil {
		t.Fatalf("network request failed: %v", err)
	}
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", resp.StatusCode)
	}

	var body ErrorResponse
	decodeBody(t, resp, &body)
	if body.Error != "No wallet provider detected" {
		t.Errorf("error = %q, want no-provider message", body.Error)
	}
}

func TestHandleSwitchNetwork(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{name: "malformed body", body: "{", wantStatus: http.StatusBadRequest},
		{name: "missing chain id", body: "{}", wantStatus: http.StatusBadRequest},
		{name: "unsupported chain", body: `{"chain_id": 999999}`, wantStatus: http.StatusBadRequest},
		{name: "supported chain without provider", body: `{"chain_id": 137}`, wantStatus: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Post(srv.URL+"/api/v1/network/switch", "application/json",
				strings.NewReader(tt.body))
			if err != nil {
				t.Fatalf("switch request failed: %v", err)
			}
			resp.Body.Close()
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
		})
	}
}

func TestCORSHeaders(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/v1/session")
	if err != nil {
		t.Fatalf("session request failed: %v", err)
	}
	resp.Body.Close()

	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("allow-origin = %q, want *", got)
	}
}
