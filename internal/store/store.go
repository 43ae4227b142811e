// Package store holds the single authoritative softphone state: agent
// availability, the active call, live transcription and sentiment. All
// mutation goes through named commands; consumers only ever receive
// immutable snapshots and a stream of notices.
package store

import (
	"context"
	"sync"
	"time"

	"github.com/dwagner/softphone/internal/clock"
	"github.com/dwagner/softphone/internal/format"
	"github.com/dwagner/softphone/internal/types"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Publisher receives notices emitted alongside state changes. Publish
// must not block.
type Publisher interface {
	Publish(types.Notice)
}

// Timings holds the simulated signaling delays.
type Timings struct {
	AutoConnectDelay time.Duration // outbound ringing -> connected
	TransferDelay    time.Duration // transferring -> call removed
	ConferenceDelay  time.Duration // conferencing -> connected
}

// DefaultTimings returns the delays the original softphone uses.
func DefaultTimings() Timings {
	return Timings{
		AutoConnectDelay: 2 * time.Second,
		TransferDelay:    2 * time.Second,
		ConferenceDelay:  3 * time.Second,
	}
}

// Store is the softphone state container. Commands are applied in the
// order issued; every command is atomic under the store mutex, so a
// delayed timer callback always sees the current state and re-validates
// before acting.
type Store struct {
	mu      sync.Mutex
	clk     clock.Clock
	logger  zerolog.Logger
	notices Publisher
	timings Timings

	loggedIn  bool
	agentID   string
	extension string

	status         types.AgentStatus
	notReadyReason *types.NotReadyReason
	statusStart    time.Time

	dialpad string

	call       *types.Call
	sentiment  *types.SentimentData
	transcript []types.TranscriptEntry

	muted               bool
	transcriptCollapsed bool

	// pending is the scheduled transition for the current call, if any
	// (auto-connect, transfer completion, conference completion). It is
	// cancelled whenever the call is removed.
	pending clock.Timer

	running bool
}

// New creates a Store. A nil clock falls back to real time; a nil
// publisher discards notices.
func New(clk clock.Clock, notices Publisher, logger zerolog.Logger, timings Timings) *Store {
	if clk == nil {
		clk = clock.New()
	}
	if notices == nil {
		notices = nopPublisher{}
	}
	return &Store{
		clk:         clk,
		logger:      logger.With().Str("component", "store").Logger(),
		notices:     notices,
		timings:     timings,
		status:      types.StatusOffline,
		statusStart: clk.Now(),
	}
}

// Run drives the one-second call duration tick until ctx is cancelled.
// Starting a second tick loop while one is active is a no-op.
func (s *Store) Run(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.mu.Unlock()

	ticker := s.clk.NewTicker(time.Second)
	defer ticker.Stop()

	s.logger.Info().Msg("duration ticker started")

	for {
		select {
		case <-ctx.Done():
			s.mu.Lock()
			s.running = false
			s.mu.Unlock()
			s.logger.Info().Msg("duration ticker stopped")
			return
		case <-ticker.C():
			s.tickDuration()
		}
	}
}

// tickDuration advances the call duration by one second, but only
// while the call is connected. The counter freezes in every other
// state and resumes from the frozen value.
func (s *Store) tickDuration() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.call != nil && s.call.State == types.CallConnected {
		s.call.Duration++
	}
}

// Login signs the agent in and puts them in Ready status. Any stale
// call state from a previous session is cleared.
func (s *Store) Login(agentID, password, extension string) error {
	if agentID == "" || password == "" || extension == "" {
		return ErrMissingCredentials
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancelPendingLocked()
	s.call = nil
	s.sentiment = nil
	s.transcript = nil

	s.loggedIn = true
	s.agentID = agentID
	s.extension = extension
	s.setStatusLocked(types.StatusReady, nil)

	s.logger.Info().Str("agent_id", agentID).Str("extension", extension).Msg("agent logged in")
	s.publishLocked(types.SeveritySuccess, "Welcome, Agent "+agentID, "")
	return nil
}

// Logout ends any active call first, then resets the store to its
// initial logged-out state.
func (s *Store) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.call != nil {
		s.endCallLocked(true)
	}

	agentID := s.agentID
	s.loggedIn = false
	s.agentID = ""
	s.extension = ""
	s.dialpad = ""
	s.muted = false
	s.transcriptCollapsed = false
	s.setStatusLocked(types.StatusOffline, nil)

	s.logger.Info().Str("agent_id", agentID).Msg("agent logged out")
	s.publishLocked(types.SeverityInfo, "Logged out successfully", "")
}

// SetAgentStatus changes agent availability. Moving to Ready is
// rejected while a call exists. The reason is kept only for Not Ready
// and discarded for every other target status. The status start time
// resets on every transition, including self-transitions.
func (s *Store) SetAgentStatus(status types.AgentStatus, reason *types.NotReadyReason) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch status {
	case types.StatusReady, types.StatusNotReady, types.StatusAfterCall, types.StatusOffline:
	default:
		return ErrInvalidTransition
	}

	if status == types.StatusReady && s.call != nil {
		return ErrCallInProgress
	}

	s.setStatusLocked(status, reason)

	switch status {
	case types.StatusReady:
		s.publishLocked(types.SeveritySuccess, "Status changed", "You are now Ready")
	case types.StatusNotReady:
		label := "No reason provided"
		if reason != nil {
			label = reason.Label
		}
		s.publishLocked(types.SeverityInfo, "Status changed", "Not Ready: "+label)
	case types.StatusAfterCall:
		s.publishLocked(types.SeverityInfo, "Status changed", "After Call Work")
	case types.StatusOffline:
		s.publishLocked(types.SeverityInfo, "Status changed", "You are now Offline")
	}
	return nil
}

// SetDialpad replaces the dialpad buffer.
func (s *Store) SetDialpad(value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dialpad = value
}

// ClearDialpad empties the dialpad buffer.
func (s *Store) ClearDialpad() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dialpad = ""
}

// MakeCall originates an outbound call. The call starts ringing and
// auto-connects after the configured delay, unless its state changed
// in the meantime.
func (s *Store) MakeCall(phoneNumber string) error {
	if phoneNumber == "" {
		return ErrEmptyDestination
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.call != nil {
		s.publishLocked(types.SeverityError, "Cannot place call", "You are already on a call")
		return ErrCallInProgress
	}
	if s.status != types.StatusReady {
		s.publishLocked(types.SeverityError, "Cannot place call", "You must be in Ready status")
		return ErrAgentNotReady
	}

	call := &types.Call{
		ID:          uuid.New().String(),
		Direction:   types.DirectionOutbound,
		State:       types.CallRinging,
		PhoneNumber: phoneNumber,
		StartTime:   s.clk.Now(),
	}
	s.startCallLocked(call)
	s.dialpad = ""

	s.logger.Info().Str("call_id", call.ID).Str("phone", phoneNumber).Msg("outbound call started")

	s.scheduleLocked(s.timings.AutoConnectDelay, call.ID, types.CallRinging, func(c *types.Call) {
		c.State = types.CallConnected
		s.publishLocked(types.SeveritySuccess, "Call connected", format.PhoneNumber(c.PhoneNumber))
	})
	return nil
}

// DeliverInboundCall presents a simulated inbound call to the agent.
// Delivery requires Ready status and no existing call.
func (s *Store) DeliverInboundCall(call types.Call) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.call != nil {
		return ErrCallInProgress
	}
	if s.status != types.StatusReady {
		return ErrAgentNotReady
	}

	if call.ID == "" {
		call.ID = uuid.New().String()
	}
	call.Direction = types.DirectionInbound
	call.State = types.CallRinging
	call.Duration = 0
	if call.StartTime.IsZero() {
		call.StartTime = s.clk.Now()
	}
	s.startCallLocked(&call)

	s.logger.Info().
		Str("call_id", call.ID).
		Str("phone", call.PhoneNumber).
		Str("queue", call.QueueName).
		Msg("inbound call delivered")
	s.publishLocked(types.SeverityInfo, "Incoming call", call.CallerName+" - "+format.PhoneNumber(call.PhoneNumber))
	return nil
}

// AnswerCall connects a ringing inbound call.
func (s *Store) AnswerCall() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.call == nil || s.call.State != types.CallRinging || s.call.Direction != types.DirectionInbound {
		return ErrInvalidTransition
	}

	s.call.State = types.CallConnected
	s.publishLocked(types.SeveritySuccess, "Call connected", format.PhoneNumber(s.call.PhoneNumber))
	return nil
}

// EndCall terminates the active call from any state, cancelling any
// pending scheduled transition. Transcription and sentiment are
// cleared and the agent moves to After Call Work.
func (s *Store) EndCall() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.call == nil {
		return ErrInvalidTransition
	}
	s.endCallLocked(true)
	return nil
}

// HoldCall puts a connected call on hold and stamps the hold start
// time. The stamp is retained after resume for display.
func (s *Store) HoldCall() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.call == nil || s.call.State != types.CallConnected {
		return ErrInvalidTransition
	}

	now := s.clk.Now()
	s.call.State = types.CallHold
	s.call.HoldStartTime = &now
	s.publishLocked(types.SeverityInfo, "Call on hold", format.PhoneNumber(s.call.PhoneNumber))
	return nil
}

// UnholdCall resumes a held call.
func (s *Store) UnholdCall() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.call == nil || s.call.State != types.CallHold {
		return ErrInvalidTransition
	}

	s.call.State = types.CallConnected
	s.publishLocked(types.SeverityInfo, "Call resumed", format.PhoneNumber(s.call.PhoneNumber))
	return nil
}

// TransferCall moves the call to transferring; after the transfer
// delay the call is removed. There is no failure branch, but EndCall
// issued in the interim short-circuits the pending completion.
func (s *Store) TransferCall(destination string) error {
	if destination == "" {
		return ErrEmptyDestination
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.call == nil || (s.call.State != types.CallConnected && s.call.State != types.CallHold) {
		return ErrInvalidTransition
	}

	s.call.State = types.CallTransferring
	s.publishLocked(types.SeverityInfo, "Transferring call", "To: "+destination)

	s.scheduleLocked(s.timings.TransferDelay, s.call.ID, types.CallTransferring, func(c *types.Call) {
		s.endCallLocked(false)
		s.publishLocked(types.SeveritySuccess, "Call transferred", "To: "+destination)
	})
	return nil
}

// ConferenceCall moves the call to conferencing; after the setup delay
// it returns to connected. The participant is not modeled, so the
// single-call invariant holds throughout.
func (s *Store) ConferenceCall(destination string) error {
	if destination == "" {
		return ErrEmptyDestination
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.call == nil || (s.call.State != types.CallConnected && s.call.State != types.CallHold) {
		return ErrInvalidTransition
	}

	s.call.State = types.CallConferencing
	s.publishLocked(types.SeverityInfo, "Setting up conference", "With: "+destination)

	s.scheduleLocked(s.timings.ConferenceDelay, s.call.ID, types.CallConferencing, func(c *types.Call) {
		c.State = types.CallConnected
		s.publishLocked(types.SeveritySuccess, "Conference established", "With: "+destination)
	})
	return nil
}

// ToggleMute flips the microphone mute flag. No call-state
// precondition.
func (s *Store) ToggleMute() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.muted = !s.muted
	if s.muted {
		s.publishLocked(types.SeverityInfo, "Microphone muted", "")
	} else {
		s.publishLocked(types.SeverityInfo, "Microphone unmuted", "")
	}
}

// ToggleTranscriptCollapse flips the transcript panel flag.
func (s *Store) ToggleTranscriptCollapse() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transcriptCollapsed = !s.transcriptCollapsed
}

// AddTranscriptEntry appends one utterance to the live transcript.
// Entries are accepted only while the call is connected, which is what
// keeps a lagging generator tick from leaking into a later call.
// Customer entries also record a sentiment sample and recompute the
// overall sentiment from the trailing window.
func (s *Store) AddTranscriptEntry(speaker types.Speaker, text string, sentiment types.Sentiment, score float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.call == nil || s.call.State != types.CallConnected {
		return ErrInvalidTransition
	}

	now := s.clk.Now()
	entry := types.TranscriptEntry{
		ID:        uuid.New().String(),
		Speaker:   speaker,
		Text:      text,
		Timestamp: now,
	}

	if speaker == types.SpeakerCustomer {
		entry.Sentiment = sentiment
		if s.sentiment != nil {
			s.sentiment.History = append(s.sentiment.History, types.SentimentSample{
				Timestamp: now,
				Sentiment: sentiment,
				Score:     score,
			})
			s.recomputeSentimentLocked()
		}
	} else {
		entry.Sentiment = types.SentimentNeutral
	}

	s.transcript = append(s.transcript, entry)
	return nil
}

// sentimentWindow is the number of trailing samples the overall
// sentiment is computed from.
const sentimentWindow = 5

func (s *Store) recomputeSentimentLocked() {
	history := s.sentiment.History
	start := len(history) - sentimentWindow
	if start < 0 {
		start = 0
	}
	window := history[start:]

	var sum float64
	for _, sample := range window {
		sum += sample.Score
	}
	avg := sum / float64(len(window))

	overall := types.SentimentNeutral
	if avg > 0.2 {
		overall = types.SentimentPositive
	} else if avg < -0.2 {
		overall = types.SentimentNegative
	}

	s.sentiment.Score = avg
	s.sentiment.OverallSentiment = overall
}

// Snapshot returns an immutable copy of the full softphone state with
// the derived status and hold durations filled in.
func (s *Store) Snapshot() types.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := types.Snapshot{
		Type:                "snapshot",
		Timestamp:           s.clk.Now(),
		LoggedIn:            s.loggedIn,
		AgentID:             s.agentID,
		Extension:           s.extension,
		Status:              s.status,
		StatusStart:         s.statusStart,
		StatusDuration:      s.clk.Since(s.statusStart).Seconds(),
		Dialpad:             s.dialpad,
		Muted:               s.muted,
		TranscriptCollapsed: s.transcriptCollapsed,
	}

	if s.notReadyReason != nil {
		reason := *s.notReadyReason
		snap.NotReadyReason = &reason
	}

	if s.call != nil {
		call := *s.call
		if s.call.HoldStartTime != nil {
			hold := *s.call.HoldStartTime
			call.HoldStartTime = &hold
			if call.State == types.CallHold {
				snap.HoldDuration = s.clk.Since(hold).Seconds()
			}
		}
		snap.Call = &call
	}

	if s.sentiment != nil {
		sentiment := types.SentimentData{
			OverallSentiment: s.sentiment.OverallSentiment,
			Score:            s.sentiment.Score,
			History:          make([]types.SentimentSample, len(s.sentiment.History)),
		}
		copy(sentiment.History, s.sentiment.History)
		snap.Sentiment = &sentiment
	}

	snap.Transcript = make([]types.TranscriptEntry, len(s.transcript))
	copy(snap.Transcript, s.transcript)

	return snap
}

// startCallLocked installs a new call and resets the transcription and
// sentiment state that belongs to it.
func (s *Store) startCallLocked(call *types.Call) {
	s.call = call
	s.sentiment = &types.SentimentData{
		OverallSentiment: types.SentimentNeutral,
		Score:            0,
		History:          []types.SentimentSample{},
	}
	s.transcript = nil
}

// endCallLocked removes the call, clears transcription and sentiment,
// cancels any pending transition and moves the agent to After Call
// Work. Transfer completion passes announce=false and publishes its
// own notice instead.
func (s *Store) endCallLocked(announce bool) {
	s.cancelPendingLocked()

	phone := s.call.PhoneNumber
	duration := s.call.Duration
	s.logger.Info().
		Str("call_id", s.call.ID).
		Int("duration", duration).
		Msg("call ended")

	s.call = nil
	s.sentiment = nil
	s.transcript = nil
	s.setStatusLocked(types.StatusAfterCall, nil)

	if announce {
		s.publishLocked(types.SeverityInfo, "Call ended", format.PhoneNumber(phone)+" - "+format.Duration(duration))
	}
}

// scheduleLocked arms the pending transition for the current call. The
// callback re-validates that the same call still exists in the state
// it was scheduled from; a stale timer is a no-op.
func (s *Store) scheduleLocked(d time.Duration, callID string, expect types.CallState, fire func(*types.Call)) {
	s.cancelPendingLocked()
	s.pending = s.clk.AfterFunc(d, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.call == nil || s.call.ID != callID || s.call.State != expect {
			return
		}
		s.pending = nil
		fire(s.call)
	})
}

func (s *Store) cancelPendingLocked() {
	if s.pending != nil {
		s.pending.Stop()
		s.pending = nil
	}
}

func (s *Store) setStatusLocked(status types.AgentStatus, reason *types.NotReadyReason) {
	s.status = status
	if status == types.StatusNotReady {
		s.notReadyReason = reason
	} else {
		s.notReadyReason = nil
	}
	s.statusStart = s.clk.Now()
}

func (s *Store) publishLocked(severity types.NoticeSeverity, title, description string) {
	s.notices.Publish(types.Notice{
		Type:        "notice",
		Severity:    severity,
		Title:       title,
		Description: description,
		Timestamp:   s.clk.Now(),
	})
}

type nopPublisher struct{}

func (nopPublisher) Publish(types.Notice) {}
