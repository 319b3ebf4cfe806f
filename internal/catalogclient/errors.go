package catalogclient

import (
	"context"
	"errors"
	"fmt"
	"net"
)

var (
	ErrUnavailable = errors.New("catalog unavailable")
	ErrBadStatus   = errors.New("catalog bad status")
	ErrMalformed   = errors.New("catalog malformed response")

	errNotArray = errors.New("body is not a json array")
)

type Reason string

const (
	ReasonConnect Reason = "connect"
	ReasonTimeout Reason = "timeout"
	ReasonRequest Reason = "request"
	ReasonStatus  Reason = "status"
	ReasonParse   Reason = "parse"
)

// Error is returned for every failed call. Callers that only care about
// success can treat any non-nil error as a failure.
type Error struct {
	Op     string
	Reason Reason
	Status int
	Err    error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("catalog %s: %s", e.Op, e.Reason)
	if e.Status != 0 {
		msg += fmt.Sprintf(" status=%d", e.Status)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	switch target {
	case ErrUnavailable:
		return e.Reason == ReasonConnect || e.Reason == ReasonTimeout || e.Reason == ReasonRequest
	case ErrBadStatus:
		return e.Reason == ReasonStatus
	case ErrMalformed:
		return e.Reason == ReasonParse
	}
	return false
}

func transportError(op string, err error) *Error {
	return &Error{Op: op, Reason: classify(err), Err: err}
}

func classify(err error) Reason {
	if errors.Is(err, context.DeadlineExceeded) {
		return ReasonTimeout
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return ReasonTimeout
	}
	var oe *net.OpError
	if errors.As(err, &oe) {
		return ReasonConnect
	}
	var de *net.DNSError
	if errors.As(err, &de) {
		return ReasonConnect
	}
	return ReasonRequest
}
