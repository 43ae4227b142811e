// Package alerts watches the live state for conditions worth nudging
// the agent about: a caller left on hold too long, or After Call Work
// dragging on. Each rule fires a warning notice once per episode.
package alerts

import (
	"context"
	"fmt"
	"time"

	"github.com/dwagner/softphone/internal/clock"
	"github.com/dwagner/softphone/internal/store"
	"github.com/dwagner/softphone/internal/types"
	"github.com/rs/zerolog"
)

// Thresholds before a rule fires.
const (
	holdLongAfter = 2 * time.Minute
	wrapLongAfter = 5 * time.Minute
)

// Publisher receives the warning notices.
type Publisher interface {
	Publish(types.Notice)
}

// Checker evaluates the alert rules against store snapshots.
type Checker struct {
	store   *store.Store
	clk     clock.Clock
	notices Publisher
	logger  zerolog.Logger

	// episode keys already alerted, so each fires once
	holdAlerted string
	wrapAlerted time.Time
}

// NewChecker creates a Checker.
func NewChecker(s *store.Store, clk clock.Clock, notices Publisher, logger zerolog.Logger) *Checker {
	if clk == nil {
		clk = clock.New()
	}
	return &Checker{
		store:   s,
		clk:     clk,
		notices: notices,
		logger:  logger.With().Str("component", "alerts").Logger(),
	}
}

// Run evaluates the rules every 5 seconds until ctx is cancelled.
func (c *Checker) Run(ctx context.Context) {
	ticker := c.clk.NewTicker(5 * time.Second)
	defer ticker.Stop()

	c.logger.Info().Msg("alert checker started")

	for {
		select {
		case <-ctx.Done():
			c.logger.Info().Msg("alert checker stopped")
			return
		case <-ticker.C():
			c.Check()
		}
	}
}

// Check runs all rules once against the current snapshot.
func (c *Checker) Check() {
	snap := c.store.Snapshot()
	c.checkLongHold(snap)
	c.checkLongWrapUp(snap)
}

// checkLongHold warns when the current hold stretch exceeds the
// threshold. Keyed to the call ID so the warning repeats at most once
// per call.
func (c *Checker) checkLongHold(snap types.Snapshot) {
	if snap.Call == nil || snap.Call.State != types.CallHold {
		return
	}
	if c.holdAlerted == snap.Call.ID {
		return
	}
	if time.Duration(snap.HoldDuration)*time.Second < holdLongAfter {
		return
	}

	c.holdAlerted = snap.Call.ID
	c.logger.Warn().Str("call_id", snap.Call.ID).Float64("hold_seconds", snap.HoldDuration).Msg("long hold detected")
	c.notices.Publish(types.Notice{
		Type:        "notice",
		Severity:    types.SeverityWarning,
		Title:       "Caller on hold",
		Description: fmt.Sprintf("On hold for %s", formatDuration(time.Duration(snap.HoldDuration)*time.Second)),
		Timestamp:   c.clk.Now(),
	})
}

// checkLongWrapUp warns when After Call Work runs past the threshold.
// Keyed to the status start so the warning fires once per wrap-up.
func (c *Checker) checkLongWrapUp(snap types.Snapshot) {
	if snap.Status != types.StatusAfterCall {
		return
	}
	if c.wrapAlerted.Equal(snap.StatusStart) {
		return
	}
	if time.Duration(snap.StatusDuration)*time.Second < wrapLongAfter {
		return
	}

	c.wrapAlerted = snap.StatusStart
	c.logger.Warn().Float64("wrap_seconds", snap.StatusDuration).Msg("long wrap-up detected")
	c.notices.Publish(types.Notice{
		Type:        "notice",
		Severity:    types.SeverityWarning,
		Title:       "Wrap-up running long",
		Description: fmt.Sprintf("After Call Work for %s", formatDuration(time.Duration(snap.StatusDuration)*time.Second)),
		Timestamp:   c.clk.Now(),
	})
}

func formatDuration(d time.Duration) string {
	mins := int(d.Minutes())
	secs := int(d.Seconds()) % 60
	if mins >= 60 {
		hours := mins / 60
		mins = mins % 60
		return fmt.Sprintf("%dh%dm", hours, mins)
	}
	return fmt.Sprintf("%dm%ds", mins, secs)
}
