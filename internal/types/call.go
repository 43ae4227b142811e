package types

import "time"

// CallDirection represents who originated the call
type CallDirection string

const (
	DirectionInbound  CallDirection = "inbound"
	DirectionOutbound CallDirection = "outbound"
	DirectionInternal CallDirection = "internal"
)

// CallState represents the lifecycle state of the active call
type CallState string

const (
	// CallIdle is reserved and never assigned by any transition; the
	// absence of a call is represented by a nil *Call.
	CallIdle         CallState = "idle"
	CallRinging      CallState = "ringing"
	CallConnected    CallState = "connected"
	CallHold         CallState = "hold"
	CallTransferring CallState = "transferring"
	CallConferencing CallState = "conferencing"
)

// Call represents the agent's single active call. At most one Call
// exists at any time; it is owned exclusively by the store.
type Call struct {
	ID            string        `json:"id"`
	Direction     CallDirection `json:"direction"`
	State         CallState     `json:"state"`
	PhoneNumber   string        `json:"phoneNumber"`
	CallerName    string        `json:"callerName,omitempty"`
	StartTime     time.Time     `json:"startTime"`
	Duration      int           `json:"duration"` // seconds, ticks only while connected
	HoldStartTime *time.Time    `json:"holdStartTime,omitempty"`

	// Inbound-only context, populated at creation and immutable after
	QueueName string `json:"queueName,omitempty"`
	IVR       string `json:"ivr,omitempty"`
	WaitTime  int    `json:"waitTime,omitempty"` // seconds spent in queue before ringing
	Notes     string `json:"notes,omitempty"`
}

// Speaker identifies who produced a transcript entry
type Speaker string

const (
	SpeakerAgent    Speaker = "agent"
	SpeakerCustomer Speaker = "customer"
)

// Sentiment classifies the tone of a customer utterance
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// TranscriptEntry is one utterance in the live transcription feed
type TranscriptEntry struct {
	ID        string    `json:"id"`
	Speaker   Speaker   `json:"speaker"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
	Sentiment Sentiment `json:"sentiment,omitempty"` // customer entries only
}

// SentimentSample is one scored customer utterance
type SentimentSample struct {
	Timestamp time.Time `json:"timestamp"`
	Sentiment Sentiment `json:"sentiment"`
	Score     float64   `json:"score"` // -1 to 1
}

// SentimentData aggregates sentiment for the active call. Overall
// sentiment is the mean score of the trailing window of samples, not
// the full history.
type SentimentData struct {
	OverallSentiment Sentiment         `json:"overallSentiment"`
	Score            float64           `json:"score"` // -1 to 1
	History          []SentimentSample `json:"history"`
}
