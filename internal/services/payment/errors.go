package payment

import (
	"errors"
	"fmt"
)

// Kind classifies relay failures; handlers map kinds to HTTP statuses.
type Kind int

const (
	KindUnknown Kind = iota
	KindUnauthorized
	KindInvalidCheckout
	KindMalformedNotification
	KindUpstreamAuth
	KindUpstreamOrder
	KindDownstreamUpdate
)

func (k Kind) String() string {
	switch k {
	case KindUnauthorized:
		return "unauthorized"
	case KindInvalidCheckout:
		return "invalid_checkout"
	case KindMalformedNotification:
		return "malformed_notification"
	case KindUpstreamAuth:
		return "upstream_auth"
	case KindUpstreamOrder:
		return "upstream_order"
	case KindDownstreamUpdate:
		return "downstream_update"
	default:
		return "unknown"
	}
}

// Error is returned by every Service operation.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the Kind carried by err, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

var errBadSignature = errors.New("signature mismatch")
var errMissingSignature = errors.New("signature required")
