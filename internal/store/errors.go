package store

import "errors"

// Rejected commands are reported as sentinel errors. Every rejection
// is locally recoverable: the command is a no-op and the prior state
// is preserved.
var (
	// ErrCallInProgress is returned when a call would be originated or
	// delivered while one already exists.
	ErrCallInProgress = errors.New("a call is already in progress")

	// ErrAgentNotReady is returned when a call would be placed or
	// delivered while the agent is not in Ready status.
	ErrAgentNotReady = errors.New("agent is not in ready status")

	// ErrInvalidTransition is returned for any call operation that is
	// not valid from the current call state.
	ErrInvalidTransition = errors.New("invalid call state transition")

	// ErrEmptyDestination is returned for a blank dial, transfer or
	// conference target.
	ErrEmptyDestination = errors.New("destination must not be empty")

	// ErrMissingCredentials is returned when login fields are blank.
	ErrMissingCredentials = errors.New("agent id, password and extension are required")
)
