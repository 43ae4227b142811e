// Package format holds the pure display helpers shared by the API
// layer and the frontend payloads.
package format

import (
	"fmt"
	"strings"

	"github.com/dwagner/softphone/internal/types"
)

// Duration formats whole seconds as MM:SS.
func Duration(seconds int) string {
	if seconds <= 0 {
		return "00:00"
	}
	mins := seconds / 60
	secs := seconds % 60
	return fmt.Sprintf("%02d:%02d", mins, secs)
}

// PhoneNumber formats a 10 or 11 digit number as (XXX) XXX-XXXX,
// stripping any non-digit characters first. Anything else is returned
// unchanged.
func PhoneNumber(phoneNumber string) string {
	if phoneNumber == "" {
		return ""
	}

	var digits strings.Builder
	for _, r := range phoneNumber {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	cleaned := digits.String()

	switch len(cleaned) {
	case 10:
		return fmt.Sprintf("(%s) %s-%s", cleaned[0:3], cleaned[3:6], cleaned[6:10])
	case 11:
		return fmt.Sprintf("+%s (%s) %s-%s", cleaned[0:1], cleaned[1:4], cleaned[4:7], cleaned[7:11])
	}
	return phoneNumber
}

// StatusLabel returns the readable name for an agent status.
func StatusLabel(status types.AgentStatus) string {
	switch status {
	case types.StatusReady:
		return "Ready"
	case types.StatusNotReady:
		return "Not Ready"
	case types.StatusAfterCall:
		return "After Call Work"
	case types.StatusOffline:
		return "Offline"
	default:
		return string(status)
	}
}

// DirectionLabel returns the readable name for a call direction.
func DirectionLabel(direction types.CallDirection) string {
	switch direction {
	case types.DirectionInbound:
		return "Incoming Call"
	case types.DirectionOutbound:
		return "Outgoing Call"
	case types.DirectionInternal:
		return "Internal Call"
	default:
		return string(direction)
	}
}

// CallStateLabel returns the readable name for a call state.
func CallStateLabel(state types.CallState) string {
	switch state {
	case types.CallIdle:
		return "Idle"
	case types.CallRinging:
		return "Ringing"
	case types.CallConnected:
		return "Connected"
	case types.CallHold:
		return "On Hold"
	case types.CallTransferring:
		return "Transferring"
	case types.CallConferencing:
		return "Conferencing"
	default:
		return string(state)
	}
}
