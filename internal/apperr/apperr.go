package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure so transports can pick a status code.
type Kind int

const (
	KindUnknown Kind = iota
	KindInvalidInput
	KindFontLoad
	KindFetch
	KindRender
)

func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid input"
	case KindFontLoad:
		return "font load failure"
	case KindFetch:
		return "fetch failure"
	case KindRender:
		return "render failure"
	default:
		return "unknown"
	}
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
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error by kind, so errors.Is(err, apperr.InvalidInput)
// works through wrapping.
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}
	return other.Op == "" && other.Err == nil && other.Kind == e.Kind
}

// Sentinels for errors.Is checks.
var (
	InvalidInput = &Error{Kind: KindInvalidInput}
	FontLoad     = &Error{Kind: KindFontLoad}
	Fetch        = &Error{Kind: KindFetch}
	Render       = &Error{Kind: KindRender}
)

func New(kind Kind, op string, err error) error {
	return &Error{Kind: kind, Op: op, Err: err}
}

func Invalidf(op, format string, args ...any) error {
	return &Error{Kind: KindInvalidInput, Op: op, Err: fmt.Errorf(format, args...)}
}

// KindOf returns the kind of the outermost *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
