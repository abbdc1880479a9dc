package provider

import (
	"errors"
	"fmt"
	"testing"

	"nftmarket/walletbridge/internal/models"
)

func TestFlavorFromClientVersion(t *testing.T) {
	tests := []struct {
		name    string
		version string
		want    models.WalletFlavor
	}{
		{name: "metamask", version: "MetaMask/v11.16.0", want: models.FlavorMetaMask},
		{name: "metamask wins over other markers", version: "MetaMask TokenPocket", want: models.FlavorMetaMask},
		{name: "token pocket", version: "TokenPocket Android v1.9", want: models.FlavorTokenPocket},
		{name: "bitkeep", version: "BitKeep/7.2.1", want: models.FlavorBitgetWallet},
		{name: "bitget", version: "Bitget Wallet v8", want: models.FlavorBitgetWallet},
		{name: "particle", version: "Particle Network SDK", want: models.FlavorParticleNetwork},
		{name: "anything else defaults to wallet connect", version: "Geth/v1.13.8", want: models.FlavorWalletConnect},
		{name: "empty defaults to wallet connect", version: "", want: models.FlavorWalletConnect},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := flavorFromClientVersion(tt.version); got != tt.want {
				t.Errorf("flavorFromClientVersion(%q) = %q, want %q", tt.version, got, tt.want)
			}
		})
	}
}

// codedError mimics a provider JSON-RPC error carrying a code
type codedError struct {
	code int
	msg  string
}

func (e *codedError) Error() string  { return e.msg }
func (e *codedError) ErrorCode() int { return e.code }

func TestErrorCode(t *testing.T) {
	rejected := &codedError{code: CodeUserRejected, msg: "user rejected the request"}
	unknown := &codedError{code: CodeUnknownChain, msg: "unrecognized chain"}

	if got := ErrorCode(rejected); got != CodeUserRejected {
		t.Errorf("ErrorCode = %d, want %d", got, CodeUserRejected)
	}
	if got := ErrorCode(errors.New("plain")); got != 0 {
		t.Errorf("ErrorCode for plain error = %d, want 0", got)
	}

	// Codes survive RequestError wrapping
	wrapped := &RequestError{Method: "wallet_switchEthereumChain", Err: unknown}
	if !IsUnknownChain(wrapped) {
		t.Error("IsUnknownChain did not see the code through RequestError")
	}
	if IsUserRejected(wrapped) {
		t.Error("IsUserRejected matched an unknown-chain error")
	}
	deeper := fmt.Errorf("switch failed: %w", wrapped)
	if !IsUnknownChain(deeper) {
		t.Error("IsUnknownChain did not see the code through fmt wrapping")
	}
}
