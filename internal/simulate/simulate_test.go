package simulate

import (
	"bytes"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/dwagner/softphone/internal/clock"
	"github.com/dwagner/softphone/internal/store"
	"github.com/dwagner/softphone/internal/types"
	"github.com/rs/zerolog"
)

func newTestFeed(delay time.Duration) (*InboundFeed, *store.Store, *clock.Mock) {
	mock := clock.NewMock(time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC))
	logger := zerolog.New(&bytes.Buffer{})
	s := store.New(mock, nil, logger, store.DefaultTimings())
	rng := rand.New(rand.NewSource(42))
	return NewInboundFeed(s, mock, rng, delay, nil, logger), s, mock
}

func TestNextCallFields(t *testing.T) {
	feed, _, _ := newTestFeed(5 * time.Second)

	for i := 0; i < 50; i++ {
		call := feed.NextCall()

		if call.Direction != types.DirectionInbound {
			t.Fatalf("expected inbound direction, got %s", call.Direction)
		}
		if call.State != types.CallRinging {
			t.Fatalf("expected ringing state, got %s", call.State)
		}
		if len(call.PhoneNumber) != 10 {
			t.Errorf("expected 10 digit phone number, got %q", call.PhoneNumber)
		}
		if call.CallerName == "" {
			t.Error("expected caller name")
		}
		if call.QueueName == "" {
			t.Error("expected queue name")
		}
		if !strings.HasPrefix(call.IVR, "Menu-") {
			t.Errorf("expected Menu- IVR path, got %q", call.IVR)
		}
		if call.WaitTime < 0 || call.WaitTime >= 180 {
			t.Errorf("expected wait time in [0,180), got %d", call.WaitTime)
		}
	}
}

func TestNextCallSometimesHasNotes(t *testing.T) {
	feed, _, _ := newTestFeed(5 * time.Second)

	withNotes := 0
	for i := 0; i < 200; i++ {
		if feed.NextCall().Notes != "" {
			withNotes++
		}
	}

	// Notes appear on roughly 30% of calls
	if withNotes == 0 || withNotes == 200 {
		t.Errorf("expected a mix of calls with and without notes, got %d/200 with", withNotes)
	}
}

func TestInboundTickWaitsForDelay(t *testing.T) {
	feed, s, mock := newTestFeed(5 * time.Second)

	if err := s.Login("1001", "secret", "5001"); err != nil {
		t.Fatalf("login failed: %v", err)
	}

	// Not enough idle time yet
	mock.Advance(3 * time.Second)
	feed.tick()
	if snap := s.Snapshot(); snap.Call != nil {
		t.Fatalf("call delivered before the idle delay: %+v", snap.Call)
	}

	mock.Advance(2 * time.Second)
	feed.tick()

	snap := s.Snapshot()
	if snap.Call == nil {
		t.Fatal("expected a call after the idle delay")
	}
	if snap.Call.Direction != types.DirectionInbound || snap.Call.State != types.CallRinging {
		t.Errorf("expected ringing inbound call, got %+v", snap.Call)
	}
}

func TestInboundTickRequiresReadyAndNoCall(t *testing.T) {
	feed, s, mock := newTestFeed(5 * time.Second)

	// Logged out: nothing happens
	mock.Advance(time.Minute)
	feed.tick()
	if snap := s.Snapshot(); snap.Call != nil {
		t.Fatal("delivered a call while logged out")
	}

	if err := s.Login("1001", "secret", "5001"); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if err := s.SetAgentStatus(types.StatusNotReady, nil); err != nil {
		t.Fatalf("set status failed: %v", err)
	}

	mock.Advance(time.Minute)
	feed.tick()
	if snap := s.Snapshot(); snap.Call != nil {
		t.Fatal("delivered a call while not ready")
	}

	// Ready with an existing call: no second delivery
	if err := s.SetAgentStatus(types.StatusReady, nil); err != nil {
		t.Fatalf("set status failed: %v", err)
	}
	mock.Advance(time.Minute)
	feed.tick()
	first := s.Snapshot().Call
	if first == nil {
		t.Fatal("expected first delivery")
	}

	feed.tick()
	second := s.Snapshot().Call
	if second == nil || second.ID != first.ID {
		t.Errorf("expected the original call to survive, got %+v", second)
	}
}

func TestNextUtterance(t *testing.T) {
	mock := clock.NewMock(time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC))
	logger := zerolog.New(&bytes.Buffer{})
	s := store.New(mock, nil, logger, store.DefaultTimings())
	rng := rand.New(rand.NewSource(7))
	tr := NewTranscriber(s, mock, rng, 3*time.Second, 8*time.Second, nil, logger)

	sawAgent := false
	sawCustomer := false

	for i := 0; i < 100; i++ {
		u := tr.NextUtterance()
		switch u.Speaker {
		case types.SpeakerAgent:
			sawAgent = true
			if u.Sentiment != types.SentimentNeutral {
				t.Errorf("agent utterance must be neutral, got %s", u.Sentiment)
			}
			if u.Score != 0 {
				t.Errorf("agent utterance must carry no score, got %v", u.Score)
			}
		case types.SpeakerCustomer:
			sawCustomer = true
			switch u.Sentiment {
			case types.SentimentPositive:
				if u.Score < 0.5 || u.Score > 1.0 {
					t.Errorf("positive score out of band: %v", u.Score)
				}
			case types.SentimentNegative:
				if u.Score > -0.5 || u.Score < -1.0 {
					t.Errorf("negative score out of band: %v", u.Score)
				}
			case types.SentimentNeutral:
				if u.Score < -0.3 || u.Score > 0.3 {
					t.Errorf("neutral score out of band: %v", u.Score)
				}
			}
		default:
			t.Fatalf("unknown speaker %q", u.Speaker)
		}
		if u.Text == "" {
			t.Error("expected non-empty utterance text")
		}
	}

	if !sawAgent || !sawCustomer {
		t.Errorf("expected both speakers over 100 draws, agent=%v customer=%v", sawAgent, sawCustomer)
	}
}

func TestNextIntervalStaysInBounds(t *testing.T) {
	mock := clock.NewMock(time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC))
	logger := zerolog.New(&bytes.Buffer{})
	s := store.New(mock, nil, logger, store.DefaultTimings())
	rng := rand.New(rand.NewSource(11))
	tr := NewTranscriber(s, mock, rng, 3*time.Second, 8*time.Second, nil, logger)

	for i := 0; i < 100; i++ {
		d := tr.nextInterval()
		if d < 3*time.Second || d >= 8*time.Second {
			t.Errorf("interval out of bounds: %v", d)
		}
	}
}

func TestRandomScoreBands(t *testing.T) {
	rng := rand.New(rand.NewSource(3))

	for i := 0; i < 100; i++ {
		if score := randomScore(rng, types.SentimentPositive); score < 0.5 || score > 1.0 {
			t.Errorf("positive score out of band: %v", score)
		}
		if score := randomScore(rng, types.SentimentNegative); score > -0.5 || score < -1.0 {
			t.Errorf("negative score out of band: %v", score)
		}
		if score := randomScore(rng, types.SentimentNeutral); score < -0.3 || score > 0.3 {
			t.Errorf("neutral score out of band: %v", score)
		}
	}
}
