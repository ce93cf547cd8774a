package ai

import (
	"errors"
	"fmt"
)

// Kind classifies why a completion call failed.
type Kind string

const (
	KindTransport Kind = "transport"
	KindStatus    Kind = "status"
	KindParse     Kind = "parse"
)

// Error is returned by Client for every failed completion call.
type Error struct {
	Kind       Kind
	StatusCode int    // set for KindStatus
	Body       string // response excerpt for KindStatus
	Err        error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindStatus:
		if e.Body != "" {
			return fmt.Sprintf("gemini: unexpected status %d: %s", e.StatusCode, e.Body)
		}
		return fmt.Sprintf("gemini: unexpected status %d", e.StatusCode)
	default:
		return fmt.Sprintf("gemini %s error: %v", e.Kind, e.Err)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf reports the failure kind carried by err, or "" when err did not
// come from a Client.
func KindOf(err error) Kind {
	var aiErr *Error
	if errors.As(err, &aiErr) {
		return aiErr.Kind
	}
	return ""
}
