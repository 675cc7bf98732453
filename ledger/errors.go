package ledger

import "errors"

// Kind is a stable category for programmatic error handling.
//
// The five on-chain failure kinds (Authorization, Structural, Immutability,
// Arithmetic, CrossValidator) are the only ones a validation unit may
// reject with; Encoding and Internal cover the Go surfaces around it.
//
// NOTE: Error() strings are intentionally human-readable and may evolve.
// Callers should branch on Kind/RuleID via errors.As, never on messages.
type Kind string

const (
	// KindAuthorization rejects a missing signer or capability token.
	KindAuthorization Kind = "Authorization"
	// KindStructural rejects absent or ambiguous single-input/single-output
	// resolution and malformed transaction shapes.
	KindStructural Kind = "Structural"
	// KindImmutability rejects a pinned field changed outside its permitted
	// transition.
	KindImmutability Kind = "Immutability"
	// KindArithmetic rejects a supply/participation/certification bound
	// violation.
	KindArithmetic Kind = "Arithmetic"
	// KindCrossValidator rejects a disagreement between the grey-token
	// policy's headroom and the project validator's transition.
	KindCrossValidator Kind = "CrossValidator"

	KindEncoding Kind = "Encoding"
	KindInternal Kind = "Internal"
)

// Error is the module's structured error type.
//
// RuleID is a stable identifier (e.g., AUTH-STR-002, PROJ-IMM-204) naming
// the violated invariant. Message is intended for humans; do not match on
// it.
type Error struct {
	Kind    Kind
	RuleID  string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// NewError constructs a structured error.
func NewError(kind Kind, ruleID, msg string) error {
	return &Error{Kind: kind, RuleID: ruleID, Message: msg}
}

// WrapError constructs a structured error with a cause.
func WrapError(kind Kind, ruleID, msg string, cause error) error {
	if cause == nil {
		return NewError(kind, ruleID, msg)
	}
	return &Error{Kind: kind, RuleID: ruleID, Message: msg, Cause: cause}
}

// IsKind reports whether err is (or wraps) a *Error with the given Kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}

// RuleID returns the stable RuleID for a structured error, or "" if unknown.
func RuleID(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return ""
	}
	return e.RuleID
}
