package types

import "time"

// AgentStatus represents the current availability of the agent
type AgentStatus string

const (
	StatusReady     AgentStatus = "ready"
	StatusNotReady  AgentStatus = "not-ready"
	StatusAfterCall AgentStatus = "after-call"
	StatusOffline   AgentStatus = "offline"
)

// NotReadyReason is a reason the agent selected when going Not Ready
type NotReadyReason struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// DefaultNotReadyReasons is the static catalog offered to the agent
var DefaultNotReadyReasons = []NotReadyReason{
	{ID: "break", Label: "Break"},
	{ID: "lunch", Label: "Lunch"},
	{ID: "meeting", Label: "Meeting"},
	{ID: "training", Label: "Training"},
	{ID: "system-issue", Label: "System Issue"},
	{ID: "personal", Label: "Personal Time"},
	{ID: "admin", Label: "Administrative Work"},
	{ID: "coaching", Label: "Coaching Session"},
}

// ReasonByID looks up a not-ready reason in the catalog
func ReasonByID(id string) (NotReadyReason, bool) {
	for _, r := range DefaultNotReadyReasons {
		if r.ID == id {
			return r, true
		}
	}
	return NotReadyReason{}, false
}

// NoticeSeverity represents the severity of a transient notice
type NoticeSeverity string

const (
	SeverityInfo    NoticeSeverity = "info"
	SeveritySuccess NoticeSeverity = "success"
	SeverityWarning NoticeSeverity = "warning"
	SeverityError   NoticeSeverity = "error"
)

// Notice is a human-readable transient event emitted alongside state
// changes. The frontend renders these as toasts; they are not part of
// the persisted state.
type Notice struct {
	Type        string         `json:"type"` // always "notice"
	Severity    NoticeSeverity `json:"severity"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Timestamp   time.Time      `json:"timestamp"`
}

// Snapshot is the single payload sent to the frontend every tick.
// It is an immutable copy of the full softphone state; consumers must
// never be handed live pointers into the store.
type Snapshot struct {
	Type                string           `json:"type"` // always "snapshot"
	Timestamp           time.Time        `json:"timestamp"`
	LoggedIn            bool             `json:"loggedIn"`
	AgentID             string           `json:"agentId,omitempty"`
	Extension           string           `json:"extension,omitempty"`
	Status              AgentStatus      `json:"status"`
	NotReadyReason      *NotReadyReason  `json:"notReadyReason,omitempty"`
	StatusStart         time.Time        `json:"statusStart"`
	StatusDuration      float64          `json:"statusDuration"` // seconds, derived
	Dialpad             string           `json:"dialpad"`
	Call                *Call            `json:"call,omitempty"`
	Sentiment           *SentimentData   `json:"sentiment,omitempty"`
	Transcript          []TranscriptEntry `json:"transcript"`
	HoldDuration        float64          `json:"holdDuration"` // seconds, derived, 0 unless on hold
	Muted               bool             `json:"muted"`
	TranscriptCollapsed bool             `json:"transcriptCollapsed"`
}
