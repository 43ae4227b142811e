// Package simulate provides the demo feeds: inbound call arrival and
// the transcription/sentiment generator. Both drive the store through
// its commands only, so every delivery is re-validated against the
// current state.
package simulate

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/dwagner/softphone/internal/clock"
	"github.com/dwagner/softphone/internal/metrics"
	"github.com/dwagner/softphone/internal/store"
	"github.com/dwagner/softphone/internal/types"
	"github.com/rs/zerolog"
)

// InboundFeed delivers a simulated inbound call once the agent has
// been Ready with no call for the configured delay.
type InboundFeed struct {
	store   *store.Store
	clk     clock.Clock
	rng     *rand.Rand
	delay   time.Duration
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

// NewInboundFeed creates an InboundFeed. A nil rng is seeded from the
// clock; a nil metrics disables instrumentation.
func NewInboundFeed(s *store.Store, clk clock.Clock, rng *rand.Rand, delay time.Duration, m *metrics.Metrics, logger zerolog.Logger) *InboundFeed {
	if clk == nil {
		clk = clock.New()
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(clk.Now().UnixNano()))
	}
	return &InboundFeed{
		store:   s,
		clk:     clk,
		rng:     rng,
		delay:   delay,
		metrics: m,
		logger:  logger.With().Str("component", "inbound_feed").Logger(),
	}
}

// Run polls the store once a second and delivers a call when the agent
// has been idle in Ready long enough. Delivery goes through the store
// command, which rejects it if the state changed since the check.
func (f *InboundFeed) Run(ctx context.Context) {
	ticker := f.clk.NewTicker(time.Second)
	defer ticker.Stop()

	f.logger.Info().Dur("delay", f.delay).Msg("inbound call feed started")

	for {
		select {
		case <-ctx.Done():
			f.logger.Info().Msg("inbound call feed stopped")
			return
		case <-ticker.C():
			f.tick()
		}
	}
}

func (f *InboundFeed) tick() {
	snap := f.store.Snapshot()
	if !snap.LoggedIn || snap.Status != types.StatusReady || snap.Call != nil {
		return
	}
	if f.clk.Since(snap.StatusStart) < f.delay {
		return
	}

	call := f.NextCall()
	if err := f.store.DeliverInboundCall(call); err != nil {
		f.logger.Debug().Err(err).Msg("inbound call rejected")
		return
	}
	if f.metrics != nil {
		f.metrics.RecordCallStarted(string(types.DirectionInbound))
	}
	f.logger.Debug().Str("phone", call.PhoneNumber).Str("queue", call.QueueName).Msg("inbound call delivered")
}

// NextCall builds one randomly populated inbound call. Queue, IVR path,
// wait time and notes are fixed at creation and never change.
func (f *InboundFeed) NextCall() types.Call {
	call := types.Call{
		Direction:   types.DirectionInbound,
		State:       types.CallRinging,
		PhoneNumber: randomPhoneNumber(f.rng),
		CallerName:  callerNames[f.rng.Intn(len(callerNames))],
		StartTime:   f.clk.Now(),
		QueueName:   queueNames[f.rng.Intn(len(queueNames))],
		IVR:         menuPath(f.rng),
		WaitTime:    f.rng.Intn(180),
	}
	if f.rng.Float64() > 0.7 {
		call.Notes = "Customer contacted us last week about billing issue #34928"
	}
	return call
}

func menuPath(rng *rand.Rand) string {
	return fmt.Sprintf("Menu-%d", rng.Intn(5)+1)
}
