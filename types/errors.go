package types

import "errors"

var (
	// ErrInvalidRequest is returned when the request body can't be parsed
	ErrInvalidRequest = errors.New("invalid request")

	// ErrNotConfigured is returned when the email API key or destination mailbox is missing
	ErrNotConfigured = errors.New("server not configured")

	// ErrSendFailed is returned when the email provider rejects or fails a send
	ErrSendFailed = errors.New("email send failed")

	// ErrUnknownProvider is returned when no email sender is registered under the name
	ErrUnknownProvider = errors.New("unknown email provider")

	// ErrNotFound is returned when a snapshot does not exist
	ErrNotFound = errors.New("not found")

	// ErrMissingSnapshot is returned when entering a screen that needs the form snapshot
	ErrMissingSnapshot = errors.New("missing form snapshot")

	// ErrIllegalTransition is returned for a flow transition not in the transition table
	ErrIllegalTransition = errors.New("illegal flow transition")

	// ErrSubmissionInFlight is returned when a session submits while a submission is running
	ErrSubmissionInFlight = errors.New("submission already in flight")
)
