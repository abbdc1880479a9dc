// Package provider is the narrow boundary to the user's wallet
// provider. Requests go over JSON-RPC to the wallet bridge endpoint;
// everything above this package speaks in terms of chain ids, accounts
// and flavors, never raw RPC.
package provider

import (
	"context"
	"errors"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/rpc"
	"go.uber.org/zap"

	"nftmarket/walletbridge/internal/models"
)

// NativeCurrency is the currency descriptor in the wallet's
// chain-registration schema
type NativeCurrency struct {
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals int    `json:"decimals"`
}

// AddChainParams is the payload for wallet_addEthereumChain
type AddChainParams struct {
	ChainID           string         `json:"chainId"` // 0x-prefixed hex
	ChainName         string         `json:"chainName"`
	NativeCurrency    NativeCurrency `json:"nativeCurrency"`
	RPCURLs           []string       `json:"rpcUrls"`
	BlockExplorerURLs []string       `json:"blockExplorerUrls"`
}

// switchChainParams is the payload for wallet_switchEthereumChain
type switchChainParams struct {
	ChainID string `json:"chainId"`
}

// Gateway issues wallet requests over a JSON-RPC connection
type Gateway struct {
	rpc    *rpc.Client
	logger *zap.Logger
}

// Dial connects to the wallet provider bridge at the given endpoint.
// Websocket endpoints additionally support chain-change notifications;
// HTTP endpoints fall back to polling in the reconciler.
func Dial(ctx context.Context, endpoint string, logger *zap.Logger) (*Gateway, error) {
	client, err := rpc.DialContext(ctx, endpoint)
	if err != nil {
		return nil, &RequestError{Method: "dial", Err: err}
	}

	logger.Info("Wallet provider gateway connected",
		zap.String("endpoint", endpoint))

	return &Gateway{
		rpc:    client,
		logger: logger.Named("provider"),
	}, nil
}

// Close closes the underlying RPC connection
func (g *Gateway) Close() {
	g.rpc.Close()
}

// ChainID returns the provider's active chain id in its wire form,
// a 0x-prefixed hex string
func (g *Gateway) ChainID(ctx context.Context) (string, error) {
	var chainID string
	if err := g.rpc.CallContext(ctx, &chainID, "eth_chainId"); err != nil {
		return "", &RequestError{Method: "eth_chainId", Err: err}
	}
	return chainID, nil
}

// Accounts returns the accounts the wallet currently exposes without
// prompting the user
func (g *Gateway) Accounts(ctx context.Context) ([]string, error) {
	var accounts []string
	if err := g.rpc.CallContext(ctx, &accounts, "eth_accounts"); err != nil {
		return nil, &RequestError{Method: "eth_accounts", Err: err}
	}
	return accounts, nil
}

// RequestAccounts performs the account-granting handshake, prompting
// the user if the wallet requires it
func (g *Gateway) RequestAccounts(ctx context.Context) ([]string, error) {
	var accounts []string
	if err := g.rpc.CallContext(ctx, &accounts, "eth_requestAccounts"); err != nil {
		return nil, &RequestError{Method: "eth_requestAccounts", Err: err}
	}
	return accounts, nil
}

// SwitchChain asks the wallet to activate the given chain. The error
// code CodeUnknownChain means the chain must be registered with
// AddChain first.
func (g *Gateway) SwitchChain(ctx context.Context, chainIDHex string) error {
	var result any
	err := g.rpc.CallContext(ctx, &result, "wallet_switchEthereumChain",
		switchChainParams{ChainID: chainIDHex})
	if err != nil {
		return &RequestError{Method: "wallet_switchEthereumChain", Err: err}
	}
	return nil
}

// AddChain registers a chain with the wallet
func (g *Gateway) AddChain(ctx context.Context, params AddChainParams) error {
	var result any
	err := g.rpc.CallContext(ctx, &result, "wallet_addEthereumChain", params)
	if err != nil {
		return &RequestError{Method: "wallet_addEthereumChain", Err: err}
	}

	g.logger.Info("Chain registered with wallet",
		zap.String("chain_id", params.ChainID),
		zap.String("chain_name", params.ChainName))
	return nil
}

// ClientVersion returns the provider's client version string
func (g *Gateway) ClientVersion(ctx context.Context) (string, error) {
	var version string
	if err := g.rpc.CallContext(ctx, &version, "web3_clientVersion"); err != nil {
		return "", &RequestError{Method: "web3_clientVersion", Err: err}
	}
	return version, nil
}

// DetectFlavor identifies which wallet implementation is answering.
// The injected-provider flags are not visible over RPC, so detection
// reads the client version string with the same priority order:
// MetaMask, then TokenPocket, then BitKeep/Bitget, defaulting to
// wallet_connect when nothing matches.
func (g *Gateway) DetectFlavor(ctx context.Context) (models.WalletFlavor, error) {
	version, err := g.ClientVersion(ctx)
	if err != nil {
		return models.FlavorUnknown, err
	}
	return flavorFromClientVersion(version), nil
}

func flavorFromClientVersion(version string) models.WalletFlavor {
	v := strings.ToLower(version)
	switch {
	case strings.Contains(v, "metamask"):
		return models.FlavorMetaMask
	case strings.Contains(v, "tokenpocket"):
		return models.FlavorTokenPocket
	case strings.Contains(v, "bitkeep"), strings.Contains(v, "bitget"):
		return models.FlavorBitgetWallet
	case strings.Contains(v, "particle"):
		return models.FlavorParticleNetwork
	default:
		return models.FlavorWalletConnect
	}
}

// SubscribeChainChanged subscribes to chain-change notifications,
// delivering new chain ids (hex form) on ch. The returned handle must
// be unsubscribed on teardown. Transports without notification support
// return rpc.ErrNotificationsUnsupported.
func (g *Gateway) SubscribeChainChanged(ctx context.Context, ch chan<- string) (ethereum.Subscription, error) {
	sub, err := g.rpc.Subscribe(ctx, "wallet", ch, "chainChanged")
	if err != nil {
		return nil, err
	}
	return sub, nil
}

// Connect performs the account-granting handshake and returns the
// primary account. It is the low-level primitive the orchestrator's
// connect and auto-connect paths run on.
func (g *Gateway) Connect(ctx context.Context) (string, error) {
	accounts, err := g.RequestAccounts(ctx)
	if err != nil {
		return "", err
	}
	if len(accounts) == 0 {
		return "", &RequestError{Method: "eth_requestAccounts", Err: errors.New("wallet returned no accounts")}
	}
	return accounts[0], nil
}

// CurrentAccount returns the active account, or empty when the wallet
// exposes none
func (g *Gateway) CurrentAccount(ctx context.Context) (string, error) {
	accounts, err := g.Accounts(ctx)
	if err != nil {
		return "", err
	}
	if len(accounts) == 0 {
		return "", nil
	}
	return accounts[0], nil
}
