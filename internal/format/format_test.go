package format

import (
	"testing"

	"github.com/dwagner/softphone/internal/types"
)

func TestDuration(t *testing.T) {
	tests := []struct {
		seconds  int
		expected string
	}{
		{0, "00:00"},
		{-5, "00:00"},
		{7, "00:07"},
		{59, "00:59"},
		{60, "01:00"},
		{61, "01:01"},
		{3599, "59:59"},
		{3661, "61:01"},
	}

	for _, tt := range tests {
		if got := Duration(tt.seconds); got != tt.expected {
			t.Errorf("Duration(%d) = %s, expected %s", tt.seconds, got, tt.expected)
		}
	}
}

func TestPhoneNumber(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", ""},
		{"5551234567", "(555) 123-4567"},
		{"555-123-4567", "(555) 123-4567"},
		{"(555) 123 4567", "(555) 123-4567"},
		{"15551234567", "+1 (555) 123-4567"},
		{"+1 555 123 4567", "+1 (555) 123-4567"},
		{"2002", "2002"},
		{"not a number", "not a number"},
	}

	for _, tt := range tests {
		if got := PhoneNumber(tt.input); got != tt.expected {
			t.Errorf("PhoneNumber(%q) = %q, expected %q", tt.input, got, tt.expected)
		}
	}
}

func TestStatusLabel(t *testing.T) {
	tests := []struct {
		status   types.AgentStatus
		expected string
	}{
		{types.StatusReady, "Ready"},
		{types.StatusNotReady, "Not Ready"},
		{types.StatusAfterCall, "After Call Work"},
		{types.StatusOffline, "Offline"},
		{types.AgentStatus("weird"), "weird"},
	}

	for _, tt := range tests {
		if got := StatusLabel(tt.status); got != tt.expected {
			t.Errorf("StatusLabel(%s) = %s, expected %s", tt.status, got, tt.expected)
		}
	}
}

func TestDirectionLabel(t *testing.T) {
	if got := DirectionLabel(types.DirectionInbound); got != "Incoming Call" {
		t.Errorf("expected Incoming Call, got %s", got)
	}
	if got := DirectionLabel(types.DirectionOutbound); got != "Outgoing Call" {
		t.Errorf("expected Outgoing Call, got %s", got)
	}
}

func TestCallStateLabel(t *testing.T) {
	tests := []struct {
		state    types.CallState
		expected string
	}{
		{types.CallRinging, "Ringing"},
		{types.CallConnected, "Connected"},
		{types.CallHold, "On Hold"},
		{types.CallTransferring, "Transferring"},
		{types.CallConferencing, "Conferencing"},
	}

	for _, tt := range tests {
		if got := CallStateLabel(tt.state); got != tt.expected {
			t.Errorf("CallStateLabel(%s) = %s, expected %s", tt.state, got, tt.expected)
		}
	}
}
