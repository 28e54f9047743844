// Package apperr defines the typed errors shared by the invoicing pipeline and
// its adapters. Callers branch on Kind; messages are for humans only.
package apperr

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a failure.
type Kind int

const (
	KindUnknown Kind = iota
	// KindConfig is a missing or invalid configuration value.
	KindConfig
	// KindNotFound is a sheet, document or folder that does not exist.
	KindNotFound
	// KindTransient is a failed external call that may succeed later.
	KindTransient
	// KindData is malformed input data.
	KindData
)

func (k Kind) String() string {
	switch k {
	case KindConfig:
		return "configuration error"
	case KindNotFound:
		return "not found"
	case KindTransient:
		return "transient I/O error"
	case KindData:
		return "data error"
	default:
		return "error"
	}
}

// Error is a classified failure of operation Op on the resource ID.
type Error struct {
	Kind Kind
	Op   string
	ID   string
	// Alternatives lists valid names when a lookup by name failed.
	Alternatives []string
	Err          error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	b.WriteString(": ")
	b.WriteString(e.Kind.String())
	if e.ID != "" {
		fmt.Fprintf(&b, " (%s)", e.ID)
	}
	if len(e.Alternatives) > 0 {
		fmt.Fprintf(&b, "; available: %s", strings.Join(e.Alternatives, ", "))
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// NotFound reports a missing resource together with the names that do exist.
func NotFound(op, id string, alternatives ...string) *Error {
	return &Error{Kind: KindNotFound, Op: op, ID: id, Alternatives: alternatives}
}

// Config reports an invalid configuration key.
func Config(op, key, msg string) *Error {
	return &Error{Kind: KindConfig, Op: op, ID: key, Err: errors.New(msg)}
}

// Wrap classifies err. A nil err yields nil.
func Wrap(kind Kind, op, id string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, ID: id, Err: err}
}

// KindOf returns the Kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
