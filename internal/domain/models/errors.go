package models

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures of the prediction pipeline so that every entry
// point (HTTP, queue, Kafka, CLI) can react to them the same way.
type ErrorKind string

const (
	KindSymbolNotFound   ErrorKind = "symbol_not_found"
	KindInsufficientData ErrorKind = "insufficient_data"
	KindDegenerateRange  ErrorKind = "degenerate_range"
	KindModelNotFound    ErrorKind = "model_not_found"
	KindCorruptArtifact  ErrorKind = "corrupt_artifact"
	KindUpstreamFetch    ErrorKind = "upstream_fetch"
	KindInvalidArgument  ErrorKind = "invalid_argument"
	KindFeedUnavailable  ErrorKind = "feed_unavailable"
	KindTrainingFailed   ErrorKind = "training_failed"
	KindBusy             ErrorKind = "busy"
)

// Sentinels for errors.Is checks. They match any *Error of the same kind.
var (
	ErrSymbolNotFound   = &Error{Kind: KindSymbolNotFound}
	ErrInsufficientData = &Error{Kind: KindInsufficientData}
	ErrDegenerateRange  = &Error{Kind: KindDegenerateRange}
	ErrModelNotFound    = &Error{Kind: KindModelNotFound}
	ErrCorruptArtifact  = &Error{Kind: KindCorruptArtifact}
	ErrUpstreamFetch    = &Error{Kind: KindUpstreamFetch}
	ErrInvalidArgument  = &Error{Kind: KindInvalidArgument}
	ErrFeedUnavailable  = &Error{Kind: KindFeedUnavailable}
	ErrTrainingFailed   = &Error{Kind: KindTrainingFailed}
	ErrBusy             = &Error{Kind: KindBusy}
)

// Error is the typed error returned across the service boundary.
type Error struct {
	Kind    ErrorKind
	Symbol  string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Symbol != "" {
		msg = fmt.Sprintf("%s: %s", e.Symbol, msg)
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports kind equality, so wrapped errors match the package sentinels.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// NewError builds a typed error of the given kind.
func NewError(kind ErrorKind, symbol, message string, err error) *Error {
	return &Error{Kind: kind, Symbol: symbol, Message: message, Err: err}
}

func SymbolNotFound(symbol string, err error) *Error {
	return NewError(KindSymbolNotFound, symbol, "symbol not found or no price history", err)
}

func InsufficientData(symbol, message string) *Error {
	return NewError(KindInsufficientData, symbol, message, nil)
}

func DegenerateRange(symbol string, value float64) *Error {
	return NewError(KindDegenerateRange, symbol, fmt.Sprintf("price range is degenerate (constant %.4f)", value), nil)
}

func ModelNotFound(symbol string) *Error {
	return NewError(KindModelNotFound, symbol, "model not trained yet", nil)
}

func CorruptArtifact(symbol string, err error) *Error {
	return NewError(KindCorruptArtifact, symbol, "model artifact is unreadable", err)
}

func UpstreamFetch(symbol string, err error) *Error {
	return NewError(KindUpstreamFetch, symbol, "upstream fetch failed", err)
}

func InvalidArgument(message string) *Error {
	return NewError(KindInvalidArgument, "", message, nil)
}

func FeedUnavailable(symbol string, err error) *Error {
	return NewError(KindFeedUnavailable, symbol, "price feed unavailable", err)
}

func TrainingFailed(symbol string, err error) *Error {
	return NewError(KindTrainingFailed, symbol, "training failed", err)
}

// Busy reports that background capacity is exhausted and the caller should
// retry later.
func Busy(symbol string, err error) *Error {
	return NewError(KindBusy, symbol, "too many pending training jobs", err)
}

// KindOf returns the kind of the first *Error in err's chain, or "" if none.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// WithSymbol fills in the symbol of a typed error that was raised without one.
func WithSymbol(err error, symbol string) error {
	var e *Error
	if errors.As(err, &e) && e.Symbol == "" {
		cp := *e
		cp.Symbol = symbol
		return &cp
	}
	return err
}
