package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"nftmarket/walletbridge/internal/networks"
	"nftmarket/walletbridge/internal/provider"
	"nftmarket/walletbridge/internal/reconciler"
	"nftmarket/walletbridge/internal/session"
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	orchestrator *session.Orchestrator
	reconciler   *reconciler.Reconciler
	registry     *networks.Registry
	logger       *zap.Logger
}

// NewHandler creates a new API handler
func NewHandler(
	orchestrator *session.Orchestrator,
	rec *reconciler.Reconciler,
	registry *networks.Registry,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		orchestrator: orchestrator,
		reconciler:   rec,
		registry:     registry,
		logger:       logger,
	}
}

// ==================== Health Check ====================

// HandleHealth returns service health status
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status:  "ok",
		Version: "1.0.0",
	}
	respondJSON(w, http.StatusOK, response)
}

// ==================== Session ====================

// HandleGetSession handles GET /api/v1/session
func (h *Handler) HandleGetSession(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, SessionResponse{Session: h.orchestrator.State()})
}

// HandleConnect handles POST /api/v1/session/connect
// Runs one manual connection attempt; failed attempts may continue
// retrying in the background.
func (h *Handler) HandleConnect(w http.ResponseWriter, r *http.Request) {
	connected := h.orchestrator.Connect(r.Context())

	h.logger.Info("Connect attempt finished",
		zap.Bool("connected", connected))

	respondJSON(w, http.StatusOK, ConnectResponse{
		Connected: connected,
		Session:   h.orchestrator.State(),
	})
}

// HandleDisconnect handles POST /api/v1/session/disconnect
func (h *Handler) HandleDisconnect(w http.ResponseWriter, r *http.Request) {
	h.orchestrator.Disconnect(r.Context())
	respondJSON(w, http.StatusOK, SessionResponse{Session: h.orchestrator.State()})
}

// ==================== Networks ====================

// HandleGetNetworkStatus handles GET /api/v1/network
func (h *Handler) HandleGetNetworkStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.reconciler.Status(r.Context())
	if err != nil {
		if errors.Is(err, provider.ErrNoProvider) {
			respondError(w, http.StatusServiceUnavailable, "No wallet provider detected", err)
			return
		}
		h.logger.Error("Failed to get network status", zap.Error(err))
		respondError(w, http.StatusBadGateway, "Failed to query wallet provider", err)
		return
	}

	respondJSON(w, http.StatusOK, NetworkStatusResponse{Status: status})
}

// HandleListNetworks handles GET /api/v1/networks
// The optional scope query parameter selects the mainnet or testnet
// view; the default is the full list.
func (h *Handler) HandleListNetworks(w http.ResponseWriter, r *http.Request) {
	var list []networks.Network
	switch scope := r.URL.Query().Get("scope"); scope {
	case "", "all":
		list = h.registry.All()
	case "mainnet":
		list = h.registry.Mainnets()
	case "testnet":
		list = h.registry.Testnets()
	default:
		respondError(w, http.StatusBadRequest, "scope must be all, mainnet or testnet", nil)
		return
	}

	respondJSON(w, http.StatusOK, NetworkListResponse{Networks: list})
}

// HandleSwitchNetwork handles POST /api/v1/network/switch
func (h *Handler) HandleSwitchNetwork(w http.ResponseWriter, r *http.Request) {
	var req SwitchNetworkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ChainID == 0 {
		respondError(w, http.StatusBadRequest, "chain_id is required", nil)
		return
	}

	err := h.reconciler.Switch(r.Context(), req.ChainID)
	if err != nil {
		var unsupported *reconciler.UnsupportedNetworkError
		switch {
		case errors.As(err, &unsupported):
			respondError(w, http.StatusBadRequest, "Network not supported", err)
		case errors.Is(err, provider.ErrNoProvider):
			respondError(w, http.StatusServiceUnavailable, "No wallet provider detected", err)
		default:
			h.logger.Error("Network switch failed",
				zap.Uint64("chain_id", req.ChainID),
				zap.Error(err))
			respondError(w, http.StatusBadGateway, "Network switch failed", err)
		}
		return
	}

	respondJSON(w, http.StatusOK, SwitchNetworkResponse{Switched: true, ChainID: req.ChainID})
}

// ==================== Helpers ====================

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		// Headers are already out; nothing left to do but log
		zap.L().Error("Failed to encode response", zap.Error(err))
	}
}

// respondError writes a JSON error response
func respondError(w http.ResponseWriter, status int, message string, err error) {
	response := ErrorResponse{Error: message}
	if err != nil {
		response.Message = err.Error()
	}
	respondJSON(w, status, response)
}
