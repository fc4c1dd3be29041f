package fetch

import (
	"fmt"
)

// Reason categorizes why a vendor fetch failed. Callers treat every reason
// the same way (the vendor is unavailable for this instrument, move on to
// the next source); the category only feeds logs.
type Reason string

const (
	// ReasonEmpty indicates the vendor answered but returned no rows.
	ReasonEmpty Reason = "empty"
	// ReasonMissingColumns indicates the response lacked the required
	// date/close columns after normalization.
	ReasonMissingColumns Reason = "missing_columns"
	// ReasonTransport indicates a network, HTTP status or parse failure.
	ReasonTransport Reason = "transport"
)

// SourceError is the structured failure returned by every vendor adapter.
// Raw transport or decode errors never escape an adapter; they arrive here
// as the Cause.
type SourceError struct {
	Source string
	Symbol string
	Reason Reason
	Cause  error
}

// Error implements the error interface
func (e *SourceError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s %s: %v", e.Source, e.Symbol, e.Reason, e.Cause)
	}
	return fmt.Sprintf("%s: %s %s", e.Source, e.Symbol, e.Reason)
}

// Unwrap implements error unwrapping for errors.Is and errors.As
func (e *SourceError) Unwrap() error {
	return e.Cause
}

// NewEmptyError reports a response with no usable rows.
func NewEmptyError(source, symbol string) *SourceError {
	return &SourceError{Source: source, Symbol: symbol, Reason: ReasonEmpty}
}

// NewMissingColumnsError reports a response lacking required columns.
func NewMissingColumnsError(source, symbol string, cause error) *SourceError {
	return &SourceError{Source: source, Symbol: symbol, Reason: ReasonMissingColumns, Cause: cause}
}

// NewTransportError reports a network, HTTP or decode failure.
func NewTransportError(source, symbol string, cause error) *SourceError {
	return &SourceError{Source: source, Symbol: symbol, Reason: ReasonTransport, Cause: cause}
}
