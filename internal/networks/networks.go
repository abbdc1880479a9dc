// Package networks holds the table of chains the marketplace supports
// and the lookups the rest of the service derives from it.
package networks

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Network describes one supported chain
type Network struct {
	ChainID     uint64 `yaml:"chain_id" json:"chain_id"`
	Name        string `yaml:"name" json:"name"`
	RPCURL      string `yaml:"rpc_url" json:"rpc_url"`
	Currency    string `yaml:"currency" json:"currency"`
	ExplorerURL string `yaml:"explorer_url" json:"explorer_url"`
	Icon        string `yaml:"icon" json:"icon"`
	Testnet     bool   `yaml:"testnet" json:"testnet"`
}

// HexChainID returns the chain id in the 0x-prefixed hex form the
// wallet provider expects
func (n Network) HexChainID() string {
	return hexutil.EncodeUint64(n.ChainID)
}

// builtin is the canonical network table: three mainnets and their
// matching testnets
var builtin = []Network{
	{ChainID: 137, Name: "Polygon", RPCURL: "https://polygon-rpc.com", Currency: "MATIC", ExplorerURL: "https://polygonscan.com", Icon: "🟣"},
	{ChainID: 59144, Name: "Linea", RPCURL: "https://rpc.linea.build", Currency: "ETH", ExplorerURL: "https://lineascan.build", Icon: "🔵"},
	{ChainID: 56, Name: "BSC", RPCURL: "https://bsc-dataseed.binance.org", Currency: "BNB", ExplorerURL: "https://bscscan.com", Icon: "🟡"},
	{ChainID: 80001, Name: "Mumbai", RPCURL: "https://rpc-mumbai.maticvigil.com", Currency: "MATIC", ExplorerURL: "https://mumbai.polygonscan.com", Icon: "🟣", Testnet: true},
	{ChainID: 59140, Name: "Linea Testnet", RPCURL: "https://rpc.goerli.linea.build", Currency: "ETH", ExplorerURL: "https://goerli.lineascan.build", Icon: "🔵", Testnet: true},
	{ChainID: 97, Name: "BSC Testnet", RPCURL: "https://data-seed-prebsc-1-s1.binance.org:8545", Currency: "tBNB", ExplorerURL: "https://testnet.bscscan.com", Icon: "🟡", Testnet: true},
}

// Registry is an immutable set of supported networks indexed by chain id
type Registry struct {
	list  []Network
	index map[uint64]Network
}

// NewRegistry builds a registry from the built-in table plus any extra
// networks. Chain ids must be unique across the whole set.
func NewRegistry(extra ...Network) (*Registry, error) {
	r := &Registry{
		list:  make([]Network, 0, len(builtin)+len(extra)),
		index: make(map[uint64]Network, len(builtin)+len(extra)),
	}
	for _, n := range append(append([]Network{}, builtin...), extra...) {
		if _, dup := r.index[n.ChainID]; dup {
			return nil, fmt.Errorf("duplicate chain id %d (%s)", n.ChainID, n.Name)
		}
		r.index[n.ChainID] = n
		r.list = append(r.list, n)
	}
	return r, nil
}

// Default returns a registry holding only the built-in networks
func Default() *Registry {
	r, err := NewRegistry()
	if err != nil {
		// builtin table is static and duplicate-free
		panic(err)
	}
	return r
}

// ByChainID looks up a network by numeric chain id
func (r *Registry) ByChainID(id uint64) (Network, bool) {
	n, ok := r.index[id]
	return n, ok
}

// All returns every supported network
func (r *Registry) All() []Network {
	out := make([]Network, len(r.list))
	copy(out, r.list)
	return out
}

// Mainnets returns the non-testnet networks
func (r *Registry) Mainnets() []Network {
	return r.filter(false)
}

// Testnets returns the testnet networks
func (r *Registry) Testnets() []Network {
	return r.filter(true)
}

func (r *Registry) filter(testnet bool) []Network {
	out := make([]Network, 0, len(r.list))
	for _, n := range r.list {
		if n.Testnet == testnet {
			out = append(out, n)
		}
	}
	return out
}

// ParseChainID decodes the 0x-prefixed hex chain id used on the
// provider wire into its numeric form
func ParseChainID(hex string) (uint64, error) {
	id, err := hexutil.DecodeUint64(hex)
	if err != nil {
		return 0, fmt.Errorf("invalid chain id %q: %w", hex, err)
	}
	return id, nil
}
