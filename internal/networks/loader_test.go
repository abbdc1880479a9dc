package networks

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTempNetworksFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "networks.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write networks file: %v", err)
	}
	return path
}

func TestLoadExtra(t *testing.T) {
	path := writeTempNetworksFile(t, `
networks:
  - chain_id: 42161
    name: Arbitrum One
    rpc_url: https://arb1.arbitrum.io/rpc
    currency: ETH
    explorer_url: https://arbiscan.io
    icon: "🔷"
`)

	extra, err := LoadExtra(path)
	if err != nil {
		t.Fatalf("LoadExtra returned error: %v", err)
	}
	if len(extra) != 1 {
		t.Fatalf("expected 1 network, got %d", len(extra))
	}
	if extra[0].ChainID != 42161 || extra[0].Name != "Arbitrum One" {
		t.Errorf("unexpected network: %+v", extra[0])
	}

	r, err := NewRegistry(extra...)
	if err != nil {
		t.Fatalf("NewRegistry with extras returned error: %v", err)
	}
	if _, ok := r.ByChainID(42161); !ok {
		t.Error("extra network missing from registry")
	}
	if got := len(r.All()); got != 7 {
		t.Errorf("registry has %d networks, want 7", got)
	}
}

func TestLoadExtraValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name: "missing chain id",
			content: `
networks:
  - name: Broken
    rpc_url: https://example.com
`,
		},
		{
			name: "missing rpc url",
			content: `
networks:
  - chain_id: 10
    name: Optimism
`,
		},
		{
			name:    "malformed yaml",
			content: "networks: [",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTempNetworksFile(t, tt.content)
			if _, err := LoadExtra(path); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestLoadExtraMissingFile(t *testing.T) {
	if _, err := LoadExtra(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing file, got nil")
	}
}
