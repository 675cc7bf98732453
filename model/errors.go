package model

import "fmt"

type ErrorCode string

const (
	ErrInvalidRequest  ErrorCode = "INVALID_REQUEST"
	ErrInvalidRedeemer ErrorCode = "INVALID_REDEEMER"
	ErrInvalidDatum    ErrorCode = "INVALID_DATUM"
	ErrRejected        ErrorCode = "REJECTED"
	ErrInternal        ErrorCode = "INTERNAL"
)

// CodedError is a stable error with a machine-readable code and a human message.
type CodedError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`

	// RuleID carries the violated rule for REJECTED errors, when known.
	RuleID string `json:"rule_id,omitempty"`
}

func (e *CodedError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewError(code ErrorCode, message string) *CodedError {
	return &CodedError{Code: code, Message: message}
}
