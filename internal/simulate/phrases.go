package simulate

import (
	"fmt"
	"math/rand"

	"github.com/dwagner/softphone/internal/types"
)

// Phrase banks for the synthetic transcription feed.
var customerPhrases = []string{
	"I need help with my recent order.",
	"When will my package arrive?",
	"This is taking too long, I'm frustrated.",
	"Thank you for your assistance today.",
	"Can you explain how this works?",
	"I'm still waiting for a resolution.",
	"Your service has been excellent.",
	"I've been a customer for years.",
	"This is not what I expected.",
	"I appreciate your patience.",
}

var agentPhrases = []string{
	"I'd be happy to help you with that.",
	"Let me check your account information.",
	"I understand your concern.",
	"Is there anything else I can assist you with?",
	"I apologize for the inconvenience.",
	"Let me transfer you to a specialist.",
	"Thank you for your patience.",
	"Could you please provide more details?",
	"I'm working on resolving this for you.",
	"I appreciate your understanding.",
}

var callerNames = []string{
	"John Smith",
	"Maria Garcia",
	"Alex Taylor",
	"Sarah Johnson",
	"Michael Brown",
	"Emma Wilson",
	"David Chen",
	"Olivia Davis",
}

var queueNames = []string{
	"Sales",
	"Support",
	"Billing",
	"New Accounts",
	"Technical Help",
}

var sentiments = []types.Sentiment{
	types.SentimentPositive,
	types.SentimentNeutral,
	types.SentimentNegative,
}

// randomPhoneNumber produces a plausible 10 digit NANP-style number.
func randomPhoneNumber(rng *rand.Rand) string {
	areaCode := rng.Intn(900) + 100
	prefix := rng.Intn(900) + 100
	lineNumber := rng.Intn(9000) + 1000
	return fmt.Sprintf("%d%d%d", areaCode, prefix, lineNumber)
}

// randomScore draws the numeric score for a sentiment classification.
// Positive utterances land in [0.5,1.0), negative in (-1.0,-0.5] and
// neutral in [-0.3,0.3).
func randomScore(rng *rand.Rand, sentiment types.Sentiment) float64 {
	switch sentiment {
	case types.SentimentPositive:
		return rng.Float64()*0.5 + 0.5
	case types.SentimentNegative:
		return -rng.Float64()*0.5 - 0.5
	default:
		return rng.Float64()*0.6 - 0.3
	}
}
