package api

import (
	"nftmarket/walletbridge/internal/models"
	"nftmarket/walletbridge/internal/networks"
)

// ==================== Session ====================

// SessionResponse represents the wallet session snapshot
type SessionResponse struct {
	Session models.SessionState `json:"session"`
}

// ConnectResponse represents the outcome of one connection attempt.
// Connected covers this attempt only; a failed attempt may still be
// retried in the background, so clients should poll the session phase.
type ConnectResponse struct {
	Connected bool                `json:"connected"`
	Session   models.SessionState `json:"session"`
}

// ==================== Networks ====================

// NetworkStatusResponse represents the provider's current network
// against the supported list
type NetworkStatusResponse struct {
	Status models.NetworkStatus `json:"status"`
}

// NetworkListResponse represents a view of the supported networks
type NetworkListResponse struct {
	Networks []networks.Network `json:"networks"`
}

// SwitchNetworkRequest represents a request to switch the wallet's
// active network
type SwitchNetworkRequest struct {
	ChainID uint64 `json:"chain_id"`
}

// SwitchNetworkResponse represents the outcome of a network switch
type SwitchNetworkResponse struct {
	Switched bool   `json:"switched"`
	ChainID  uint64 `json:"chain_id"`
}

// ==================== Error Response ====================

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// ==================== Health Check ====================

// HealthResponse represents health check response
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}
