// Package ticker pushes the live state to connected clients: a full
// snapshot frame once a second, and notice frames as they are
// published.
package ticker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/dwagner/softphone/internal/metrics"
	"github.com/dwagner/softphone/internal/notify"
	"github.com/dwagner/softphone/internal/store"
	"github.com/dwagner/softphone/internal/websocket"
	"github.com/rs/zerolog"
)

// Ticker periodically broadcasts state snapshots to the hub and
// forwards notices from the broker
type Ticker struct {
	store    *store.Store
	broker   *notify.Broker
	hub      *websocket.Hub
	metrics  *metrics.Metrics
	interval time.Duration
	logger   zerolog.Logger
}

// NewTicker creates a new Ticker. A nil metrics disables instrumentation.
func NewTicker(s *store.Store, broker *notify.Broker, hub *websocket.Hub, m *metrics.Metrics, interval time.Duration, logger zerolog.Logger) *Ticker {
	return &Ticker{
		store:    s,
		broker:   broker,
		hub:      hub,
		metrics:  m,
		interval: interval,
		logger:   logger,
	}
}

// Start begins broadcasting snapshots and notices
func (t *Ticker) Start(ctx context.Context) {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	notices, cancel := t.broker.Subscribe()
	defer cancel()

	t.logger.Info().Dur("interval", t.interval).Msg("ticker started")

	for {
		select {
		case <-ctx.Done():
			t.logger.Info().Msg("ticker stopped")
			return

		case <-ticker.C:
			t.broadcastSnapshot()

		case notice := <-notices:
			data, err := json.Marshal(notice)
			if err != nil {
				t.logger.Error().Err(err).Msg("failed to marshal notice")
				continue
			}
			t.hub.Broadcast(data)
			t.logger.Debug().
				Str("title", notice.Title).
				Str("severity", string(notice.Severity)).
				Msg("broadcasted notice")
		}
	}
}

// broadcastSnapshot marshals the current state and sends it to all clients
func (t *Ticker) broadcastSnapshot() {
	if t.metrics != nil {
		t.metrics.SetWSConnections(t.hub.ClientCount())
	}

	snapshot := t.store.Snapshot()
	data, err := json.Marshal(snapshot)
	if err != nil {
		t.logger.Error().Err(err).Msg("failed to marshal snapshot")
		return
	}

	t.hub.Broadcast(data)
	t.logger.Debug().
		Int("clients", t.hub.ClientCount()).
		Msg("broadcasted snapshot")
}
