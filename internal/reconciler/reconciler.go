// Package reconciler derives the wallet's network-support status from
// the registry and drives the chain-switch protocol.
package reconciler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/rpc"
	"go.uber.org/zap"

	"nftmarket/walletbridge/internal/models"
	"nftmarket/walletbridge/internal/networks"
	"nftmarket/walletbridge/internal/provider"
)

// Provider is the slice of the gateway the reconciler needs
type Provider interface {
	ChainID(ctx context.Context) (string, error)
	SwitchChain(ctx context.Context, chainIDHex string) error
	AddChain(ctx context.Context, params provider.AddChainParams) error
	SubscribeChainChanged(ctx context.Context, ch chan<- string) (ethereum.Subscription, error)
}

// UnsupportedNetworkError is returned when a switch targets a chain id
// outside the registry
type UnsupportedNetworkError struct {
	ChainID uint64
}

func (e *UnsupportedNetworkError) Error() string {
	return fmt.Sprintf("unsupported network: chain id %d", e.ChainID)
}

// Reconciler recomputes NetworkStatus from the provider's active chain
// and exposes the switch operation
type Reconciler struct {
	provider Provider // nil when no provider is configured
	registry *networks.Registry
	logger   *zap.Logger

	pollInterval time.Duration

	// onStatus, when set, receives every recomputed status from the
	// watch loop
	onStatus func(models.NetworkStatus)
}

// NewReconciler creates a reconciler over the given provider and
// registry. onStatus may be nil.
func NewReconciler(
	p Provider,
	registry *networks.Registry,
	pollInterval time.Duration,
	onStatus func(models.NetworkStatus),
	logger *zap.Logger,
) *Reconciler {
	return &Reconciler{
		provider:     p,
		registry:     registry,
		logger:       logger.Named("reconciler"),
		pollInterval: pollInterval,
		onStatus:     onStatus,
	}
}

// Status queries the provider's active chain and matches it against
// the registry. Recomputing from the same chain id always yields the
// same status.
func (r *Reconciler) Status(ctx context.Context) (models.NetworkStatus, error) {
	if r.provider == nil {
		return models.NetworkStatus{}, provider.ErrNoProvider
	}

	chainIDHex, err := r.provider.ChainID(ctx)
	if err != nil {
		return models.NetworkStatus{}, err
	}

	chainID, err := networks.ParseChainID(chainIDHex)
	if err != nil {
		return models.NetworkStatus{}, err
	}

	return r.statusFor(chainID), nil
}

func (r *Reconciler) statusFor(chainID uint64) models.NetworkStatus {
	status := models.NetworkStatus{ChainID: chainID}
	if n, ok := r.registry.ByChainID(chainID); ok {
		status.Supported = true
		status.Name = n.Name
		status.Icon = n.Icon
		status.Testnet = n.Testnet
	}
	return status
}

// Switch asks the wallet to activate the network with the given chain
// id. If the wallet does not know the chain (error code 4902), it is
// registered with the full descriptor and the switch is considered
// done. Any other provider error is propagated unchanged.
func (r *Reconciler) Switch(ctx context.Context, chainID uint64) error {
	network, ok := r.registry.ByChainID(chainID)
	if !ok {
		return &UnsupportedNetworkError{ChainID: chainID}
	}
	if r.provider == nil {
		return provider.ErrNoProvider
	}

	err := r.provider.SwitchChain(ctx, network.HexChainID())
	if err == nil {
		r.logger.Info("Switched network",
			zap.Uint64("chain_id", chainID),
			zap.String("name", network.Name))
		return nil
	}

	if !provider.IsUnknownChain(err) {
		return err
	}

	// Wallet has never seen this chain; register it with the full
	// descriptor.
	params := provider.AddChainParams{
		ChainID:   network.HexChainID(),
		ChainName: network.Name,
		NativeCurrency: provider.NativeCurrency{
			Name:     network.Currency,
			Symbol:   network.Currency,
			Decimals: 18,
		},
		RPCURLs:           []string{network.RPCURL},
		BlockExplorerURLs: []string{network.ExplorerURL},
	}
	if err := r.provider.AddChain(ctx, params); err != nil {
		return err
	}

	r.logger.Info("Added and switched network",
		zap.Uint64("chain_id", chainID),
		zap.String("name", network.Name))
	return nil
}

// Watch recomputes NetworkStatus on every chain change until ctx is
// cancelled. It prefers provider notifications and falls back to
// polling on transports without subscription support. The subscription
// handle is explicitly released on teardown.
func (r *Reconciler) Watch(ctx context.Context) {
	if r.provider == nil {
		return
	}

	ch := make(chan string, 8)
	sub, err := r.provider.SubscribeChainChanged(ctx, ch)
	if err != nil {
		if errors.Is(err, rpc.ErrNotificationsUnsupported) {
			r.logger.Info("Chain notifications unsupported, polling instead",
				zap.Duration("interval", r.pollInterval))
			r.watchByPolling(ctx)
			return
		}
		r.logger.Warn("Chain-change subscription failed, polling instead", zap.Error(err))
		r.watchByPolling(ctx)
		return
	}
	defer sub.Unsubscribe()

	r.logger.Info("Watching chain changes")

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("Chain watcher stopping")
			return
		case err := <-sub.Err():
			r.logger.Warn("Chain-change subscription dropped", zap.Error(err))
			r.watchByPolling(ctx)
			return
		case chainIDHex := <-ch:
			r.handleChainChanged(chainIDHex)
		}
	}
}

func (r *Reconciler) handleChainChanged(chainIDHex string) {
	chainID, err := networks.ParseChainID(chainIDHex)
	if err != nil {
		r.logger.Warn("Ignoring malformed chain-change notification",
			zap.String("chain_id", chainIDHex),
			zap.Error(err))
		return
	}

	status := r.statusFor(chainID)
	r.logger.Info("Chain changed",
		zap.Uint64("chain_id", chainID),
		zap.Bool("supported", status.Supported))

	if r.onStatus != nil {
		r.onStatus(status)
	}
}

// watchByPolling re-reads the chain id on a fixed interval and emits a
// status only when it changes
func (r *Reconciler) watchByPolling(ctx context.Context) {
	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()

	var lastChainID uint64
	var seen bool

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("Chain poller stopping")
			return
		case <-ticker.C:
			status, err := r.Status(ctx)
			if err != nil {
				r.logger.Debug("Chain poll failed", zap.Error(err))
				continue
			}
			if seen && status.ChainID == lastChainID {
				continue
			}
			lastChainID = status.ChainID
			seen = true

			r.logger.Info("Chain changed",
				zap.Uint64("chain_id", status.ChainID),
				zap.Bool("supported", status.Supported))
			if r.onStatus != nil {
				r.onStatus(status)
			}
		}
	}
}
