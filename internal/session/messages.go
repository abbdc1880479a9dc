package session

import (
	"errors"

	"nftmarket/walletbridge/internal/models"
	"nftmarket/walletbridge/internal/provider"
)

// failureMessage translates a connection error into the user-facing
// toast text. Extension wallets get an install/unlock hint; the
// aggregator flavors get a generic retry message.
func failureMessage(flavor models.WalletFlavor, err error) string {
	if errors.Is(err, provider.ErrNoProvider) {
		return "No crypto wallet found. Please install a wallet extension."
	}
	if provider.IsUserRejected(err) {
		return "Connection request was rejected. Please approve it in your wallet."
	}

	switch flavor {
	case models.FlavorMetaMask:
		return "Please install MetaMask extension or check if it's unlocked"
	case models.FlavorTokenPocket:
		return "Please install TokenPocket or check if it's unlocked"
	case models.FlavorBitgetWallet:
		return "Please install Bitget Wallet or check if it's unlocked"
	case models.FlavorParticleNetwork:
		return "Particle Network connection failed. Please try again."
	case models.FlavorWalletConnect:
		return "WalletConnect connection failed. Please try again."
	default:
		return "Connection failed. Please try again."
	}
}
