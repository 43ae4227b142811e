package simulate

import (
	"context"
	"math/rand"
	"time"

	"github.com/dwagner/softphone/internal/clock"
	"github.com/dwagner/softphone/internal/metrics"
	"github.com/dwagner/softphone/internal/store"
	"github.com/dwagner/softphone/internal/types"
	"github.com/rs/zerolog"
)

// Utterance is one synthetic transcription tick: a speaker, a phrase
// and, for customer speech, a sentiment classification with a score.
type Utterance struct {
	Speaker   types.Speaker
	Text      string
	Sentiment types.Sentiment
	Score     float64
}

// Transcriber feeds synthetic utterances into the store while a call
// is connected. The interval between ticks is uniform over
// [minInterval, maxInterval).
type Transcriber struct {
	store       *store.Store
	clk         clock.Clock
	rng         *rand.Rand
	minInterval time.Duration
	maxInterval time.Duration
	metrics     *metrics.Metrics
	logger      zerolog.Logger
}

// NewTranscriber creates a Transcriber. A nil rng is seeded from the
// clock; a nil metrics disables instrumentation.
func NewTranscriber(s *store.Store, clk clock.Clock, rng *rand.Rand, minInterval, maxInterval time.Duration, m *metrics.Metrics, logger zerolog.Logger) *Transcriber {
	if clk == nil {
		clk = clock.New()
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(clk.Now().UnixNano()))
	}
	if maxInterval < minInterval {
		maxInterval = minInterval
	}
	return &Transcriber{
		store:       s,
		clk:         clk,
		rng:         rng,
		minInterval: minInterval,
		maxInterval: maxInterval,
		metrics:     m,
		logger:      logger.With().Str("component", "transcriber").Logger(),
	}
}

// Run generates utterances until ctx is cancelled. Every append goes
// through the store command, which rejects entries the instant the
// call is no longer connected, so a lagging tick can never write into
// a later call.
func (t *Transcriber) Run(ctx context.Context) {
	t.logger.Info().
		Dur("min_interval", t.minInterval).
		Dur("max_interval", t.maxInterval).
		Msg("transcriber started")

	for {
		fire := make(chan struct{})
		timer := t.clk.AfterFunc(t.nextInterval(), func() { close(fire) })
		select {
		case <-ctx.Done():
			timer.Stop()
			t.logger.Info().Msg("transcriber stopped")
			return
		case <-fire:
		}

		u := t.NextUtterance()
		if err := t.store.AddTranscriptEntry(u.Speaker, u.Text, u.Sentiment, u.Score); err != nil {
			continue // no connected call right now
		}
		if t.metrics != nil {
			t.metrics.RecordTranscriptEntry(string(u.Speaker))
		}
		t.logger.Debug().Str("speaker", string(u.Speaker)).Str("text", u.Text).Msg("transcript entry added")
	}
}

// nextInterval draws the delay before the next utterance.
func (t *Transcriber) nextInterval() time.Duration {
	spread := t.maxInterval - t.minInterval
	if spread <= 0 {
		return t.minInterval
	}
	return t.minInterval + time.Duration(t.rng.Int63n(int64(spread)))
}

// NextUtterance draws one synthetic utterance. The speaker is chosen
// uniformly; customer speech gets a uniformly random sentiment and a
// score in the band for that sentiment, agent speech is fixed neutral.
func (t *Transcriber) NextUtterance() Utterance {
	if t.rng.Float64() > 0.5 {
		sentiment := sentiments[t.rng.Intn(len(sentiments))]
		return Utterance{
			Speaker:   types.SpeakerCustomer,
			Text:      customerPhrases[t.rng.Intn(len(customerPhrases))],
			Sentiment: sentiment,
			Score:     randomScore(t.rng, sentiment),
		}
	}
	return Utterance{
		Speaker:   types.SpeakerAgent,
		Text:      agentPhrases[t.rng.Intn(len(agentPhrases))],
		Sentiment: types.SentimentNeutral,
	}
}
