package websocket

import (
	"net/http"

	"github.com/dwagner/softphone/internal/auth"
	"github.com/dwagner/softphone/internal/config"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins for now
		// TODO: Implement proper origin checking based on config
		return true
	},
}

// SnapshotFunc produces the current state frame sent to a client right
// after it connects, so the UI does not wait for the next tick.
type SnapshotFunc func() ([]byte, error)

// Handler handles WebSocket upgrade requests
type Handler struct {
	hub      *Hub
	config   *config.Config
	snapshot SnapshotFunc
	logger   zerolog.Logger
}

// NewHandler creates a new WebSocket handler
func NewHandler(hub *Hub, cfg *config.Config, snapshot SnapshotFunc, logger zerolog.Logger) *Handler {
	return &Handler{
		hub:      hub,
		config:   cfg,
		snapshot: snapshot,
		logger:   logger,
	}
}

// ServeHTTP handles WebSocket upgrade requests
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Upgrade HTTP connection to WebSocket
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to upgrade connection")
		return
	}

	claims := auth.ClaimsFromContext(r.Context())

	// Create new client
	client := NewClient(h.hub, conn, h.config, h.logger, claims)

	// Register client with hub
	h.hub.register <- client

	// Start client pumps
	client.Start()

	// Seed the new client with the current state
	if h.snapshot != nil {
		data, err := h.snapshot()
		if err != nil {
			h.logger.Error().Err(err).Msg("failed to build initial snapshot")
			return
		}
		select {
		case client.send <- data:
		default:
		}
	}
}
