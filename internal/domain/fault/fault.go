// Package fault classifies errors crossing the playlist pipeline so callers
// can map them without inspecting messages.
package fault

import (
	"context"
	"errors"
	"fmt"
)

type Kind int

const (
	KindUnknown Kind = iota
	KindClientInput
	KindProvider
	KindProviderTimeout
	KindCache
)

func (k Kind) String() string {
	switch k {
	case KindClientInput:
		return "client_input"
	case KindProvider:
		return "provider"
	case KindProviderTimeout:
		return "provider_timeout"
	case KindCache:
		return "cache"
	}

	return "unknown"
}

type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}

	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func ClientInput(op string, err error) error {
	return &Error{Kind: KindClientInput, Op: op, Err: err}
}

func Cache(op string, err error) error {
	return &Error{Kind: KindCache, Op: op, Err: err}
}

// Provider tags err as a provider fault. Deadline expiry is promoted to
// KindProviderTimeout, and errors that already carry a kind keep it.
func Provider(op string, err error) error {
	var fe *Error
	if errors.As(err, &fe) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindProviderTimeout, Op: op, Err: err}
	}

	return &Error{Kind: KindProvider, Op: op, Err: err}
}

// KindOf returns the kind of the outermost classified error in err's chain.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindProviderTimeout
	}

	return KindUnknown
}
