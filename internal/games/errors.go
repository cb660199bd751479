package games

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a ProcessError.
type ErrorKind string

const (
	// ErrorKindClient means the actor tried something the rules forbid.
	// The reason is safe to show to that actor verbatim.
	ErrorKindClient ErrorKind = "client"
	// ErrorKindServer means an engine invariant broke.
	ErrorKindServer ErrorKind = "server"
)

// ProcessError is the only error type returned across the engine boundary.
type ProcessError struct {
	Kind   ErrorKind `json:"type"`
	Reason string    `json:"reason"`
}

func (e *ProcessError) Error() string {
	return fmt.Sprintf("%s error: %s", e.Kind, e.Reason)
}

func clientError(format string, args ...any) *ProcessError {
	return &ProcessError{Kind: ErrorKindClient, Reason: fmt.Sprintf(format, args...)}
}

func serverError(format string, args ...any) *ProcessError {
	return &ProcessError{Kind: ErrorKindServer, Reason: fmt.Sprintf(format, args...)}
}

// asProcessError keeps ProcessErrors as they are and treats anything else as
// a server fault.
func asProcessError(err error) *ProcessError {
	if err == nil {
		return nil
	}
	var pe *ProcessError
	if errors.As(err, &pe) {
		return pe
	}
	return &ProcessError{Kind: ErrorKindServer, Reason: err.Error()}
}

// IsClientError reports whether err is a client-kind ProcessError.
func IsClientError(err error) bool {
	var pe *ProcessError
	return errors.As(err, &pe) && pe.Kind == ErrorKindClient
}

// IsServerError reports whether err is a server-kind ProcessError.
func IsServerError(err error) bool {
	var pe *ProcessError
	return errors.As(err, &pe) && pe.Kind == ErrorKindServer
}
