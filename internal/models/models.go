package models

// WalletFlavor identifies which wallet implementation answered a
// connection request
type WalletFlavor string

const (
	FlavorMetaMask        WalletFlavor = "metamask"
	FlavorTokenPocket     WalletFlavor = "token_pocket"
	FlavorBitgetWallet    WalletFlavor = "bitget_wallet"
	FlavorParticleNetwork WalletFlavor = "particle_network"
	FlavorWalletConnect   WalletFlavor = "wallet_connect"
	FlavorUnknown         WalletFlavor = "unknown"
)

// ParseFlavor converts a stored flavor string into a WalletFlavor,
// falling back to FlavorUnknown for anything unrecognized
func ParseFlavor(s string) WalletFlavor {
	switch WalletFlavor(s) {
	case FlavorMetaMask, FlavorTokenPocket, FlavorBitgetWallet,
		FlavorParticleNetwork, FlavorWalletConnect:
		return WalletFlavor(s)
	}
	return FlavorUnknown
}

// ConnectionPhase represents the state of the wallet session
type ConnectionPhase string

const (
	PhaseIdle           ConnectionPhase = "IDLE"
	PhaseConnecting     ConnectionPhase = "CONNECTING"
	PhaseAutoConnecting ConnectionPhase = "AUTO_CONNECTING"
	PhaseConnected      ConnectionPhase = "CONNECTED"
	PhaseFailed         ConnectionPhase = "FAILED"
)

// SessionState is a point-in-time snapshot of the wallet session
type SessionState struct {
	Account    string          `json:"account"`
	Flavor     WalletFlavor    `json:"flavor"`
	Phase      ConnectionPhase `json:"phase"`
	Progress   int             `json:"progress"` // 0-100, presentation only
	RetryCount int             `json:"retry_count"`
	LastWallet string          `json:"last_wallet,omitempty"`
}

// Connected reports whether the session holds an active account.
// Phase == PhaseConnected holds exactly when Account is non-empty.
func (s SessionState) Connected() bool {
	return s.Phase == PhaseConnected
}

// ConnectionRecord is the durable record of the last successful
// connection. Both fields are written and cleared together; a reader
// never observes one without the other.
type ConnectionRecord struct {
	LastWallet  string `db:"last_wallet"`
	AutoConnect bool   `db:"auto_connect"`
}

// NetworkStatus is the derived view of the provider's active chain
// against the supported-network registry
type NetworkStatus struct {
	ChainID   uint64 `json:"chain_id"`
	Supported bool   `json:"supported"`
	// Name, Icon and Testnet come from the matched registry entry and
	// are empty when the chain is unsupported
	Name    string `json:"name,omitempty"`
	Icon    string `json:"icon,omitempty"`
	Testnet bool   `json:"testnet,omitempty"`
}
