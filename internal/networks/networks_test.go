package networks

import "testing"

func TestRegistryLookup(t *testing.T) {
	r := Default()

	tests := []struct {
		name      string
		chainID   uint64
		wantFound bool
		wantName  string
		wantTest  bool
	}{
		{name: "polygon mainnet", chainID: 137, wantFound: true, wantName: "Polygon"},
		{name: "linea mainnet", chainID: 59144, wantFound: true, wantName: "Linea"},
		{name: "bsc mainnet", chainID: 56, wantFound: true, wantName: "BSC"},
		{name: "mumbai testnet", chainID: 80001, wantFound: true, wantName: "Mumbai", wantTest: true},
		{name: "linea testnet", chainID: 59140, wantFound: true, wantName: "Linea Testnet", wantTest: true},
		{name: "bsc testnet", chainID: 97, wantFound: true, wantName: "BSC Testnet", wantTest: true},
		{name: "ethereum mainnet is not supported", chainID: 1, wantFound: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, ok := r.ByChainID(tt.chainID)
			if ok != tt.wantFound {
				t.Fatalf("ByChainID(%d) found = %v, want %v", tt.chainID, ok, tt.wantFound)
			}
			if !ok {
				return
			}
			if n.Name != tt.wantName {
				t.Errorf("name = %q, want %q", n.Name, tt.wantName)
			}
			if n.Testnet != tt.wantTest {
				t.Errorf("testnet = %v, want %v", n.Testnet, tt.wantTest)
			}
		})
	}
}

func TestRegistryViews(t *testing.T) {
	r := Default()

	if got := len(r.All()); got != 6 {
		t.Errorf("All() returned %d networks, want 6", got)
	}
	if got := len(r.Mainnets()); got != 3 {
		t.Errorf("Mainnets() returned %d networks, want 3", got)
	}
	if got := len(r.Testnets()); got != 3 {
		t.Errorf("Testnets() returned %d networks, want 3", got)
	}

	for _, n := range r.Mainnets() {
		if n.Testnet {
			t.Errorf("mainnet view contains testnet %s", n.Name)
		}
	}
	for _, n := range r.Testnets() {
		if !n.Testnet {
			t.Errorf("testnet view contains mainnet %s", n.Name)
		}
	}
}

func TestRegistryRejectsDuplicateChainID(t *testing.T) {
	_, err := NewRegistry(Network{ChainID: 137, Name: "Polygon Again", RPCURL: "https://example.com"})
	if err == nil {
		t.Fatal("expected duplicate chain id error, got nil")
	}
}

func TestHexChainID(t *testing.T) {
	tests := []struct {
		chainID uint64
		want    string
	}{
		{137, "0x89"},
		{59144, "0xe708"},
		{56, "0x38"},
		{97, "0x61"},
	}

	for _, tt := range tests {
		n := Network{ChainID: tt.chainID}
		if got := n.HexChainID(); got != tt.want {
			t.Errorf("HexChainID(%d) = %q, want %q", tt.chainID, got, tt.want)
		}
	}
}

func TestParseChainID(t *testing.T) {
	tests := []struct {
		name    string
		hex     string
		want    uint64
		wantErr bool
	}{
		{name: "polygon", hex: "0x89", want: 137},
		{name: "linea", hex: "0xe708", want: 59144},
		{name: "missing prefix", hex: "89", wantErr: true},
		{name: "garbage", hex: "0xzz", wantErr: true},
		{name: "empty", hex: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseChainID(tt.hex)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseChainID(%q) expected error, got %d", tt.hex, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseChainID(%q) returned error: %v", tt.hex, err)
			}
			if got != tt.want {
				t.Errorf("ParseChainID(%q) = %d, want %d", tt.hex, got, tt.want)
			}
		})
	}
}
