// Package errors provides structured error handling for txcore.
// It defines sentinel errors for every failure kind the transaction
// engine can surface, plus helpers for adding context, details, and
// suggestions to errors.
//
//nolint:revive // Package name intentionally shadows stdlib for domain-specific error handling
package errors

import (
	"errors"
	"fmt"
	"sort"
)

// Exit codes for the CLI layer.
const (
	ExitSuccess    = 0 // Successful execution
	ExitGeneral    = 1 // General/unknown error
	ExitInput      = 2 // Invalid input
	ExitNotFound   = 4 // Resource not found
	ExitPermission = 5 // Insufficient funds or fee balance
)

// TxError is the structured error type for txcore.
type TxError struct {
	Code       string            // Machine-readable error code
	Message    string            // Human-readable message
	Details    map[string]string // Additional context
	Suggestion string            // Actionable suggestion for user
	Cause      error             // Underlying error
	ExitCode   int               // Exit code for CLI
}

func (e *TxError) Error() string {
	msg := e.Message

	// Include details in error message (sorted for deterministic output)
	if len(e.Details) > 0 {
		keys := make([]string, 0, len(e.Details))
		for k := range e.Details {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			msg = fmt.Sprintf("%s (%s: %s)", msg, k, e.Details[k])
		}
	}

	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *TxError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is for TxError.
func (e *TxError) Is(target error) bool {
	var t *TxError
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// Sentinel errors.
var (
	ErrGeneral = &TxError{
		Code:     "GENERAL_ERROR",
		Message:  "an error occurred",
		ExitCode: ExitGeneral,
	}

	// Build-time funding errors. Fee shortfall and principal shortfall are
	// deliberately distinct codes even where the original UI showed one
	// message for both.
	ErrInsufficientFunds = &TxError{
		Code:     "INSUFFICIENT_FUNDS",
		Message:  "insufficient funds for transaction",
		ExitCode: ExitPermission,
	}

	ErrInsufficientFeeBalance = &TxError{
		Code:     "INSUFFICIENT_FEE_BALANCE",
		Message:  "insufficient native balance to cover network fee",
		ExitCode: ExitPermission,
	}

	ErrDustAmount = &TxError{
		Code:     "DUST_AMOUNT",
		Message:  "amount is below the network dust threshold",
		ExitCode: ExitInput,
	}

	ErrReserveNotMet = &TxError{
		Code:     "RESERVE_NOT_MET",
		Message:  "first transfer to an unactivated account must meet the base reserve",
		ExitCode: ExitInput,
	}

	// Fetch-time errors.
	ErrMissingNetworkData = &TxError{
		Code:     "MISSING_NETWORK_DATA",
		Message:  "required network data is unavailable",
		ExitCode: ExitGeneral,
	}

	ErrNetworkError = &TxError{
		Code:     "NETWORK_ERROR",
		Message:  "network communication failed",
		ExitCode: ExitGeneral,
	}

	ErrAccountNotFound = &TxError{
		Code:     "ACCOUNT_NOT_FOUND",
		Message:  "account not found on chain",
		ExitCode: ExitNotFound,
	}

	// Input and dispatch errors.
	ErrUnsupportedChain = &TxError{
		Code:     "UNSUPPORTED_CHAIN",
		Message:  "unsupported chain",
		ExitCode: ExitInput,
	}

	ErrInvalidAddress = &TxError{
		Code:     "INVALID_ADDRESS",
		Message:  "invalid address format",
		ExitCode: ExitInput,
	}

	ErrInvalidAmount = &TxError{
		Code:     "INVALID_AMOUNT",
		Message:  "invalid amount format",
		ExitCode: ExitInput,
	}

	ErrScriptGeneration = &TxError{
		Code:     "SCRIPT_GENERATION_FAILED",
		Message:  "failed to generate locking script for address",
		ExitCode: ExitGeneral,
	}

	// Transport-layer retry classification (chain-data client only; the
	// engine itself never retries).
	ErrRetryable = &TxError{
		Code:     "RETRYABLE_ERROR",
		Message:  "retryable error",
		ExitCode: ExitGeneral,
	}

	ErrRateLimited = &TxError{
		Code:     "RATE_LIMITED",
		Message:  "rate limited",
		ExitCode: ExitGeneral,
	}

	ErrTimeout = &TxError{
		Code:     "TIMEOUT",
		Message:  "operation timed out",
		ExitCode: ExitGeneral,
	}
)

// New creates a new TxError with the given code and message.
func New(code, message string) *TxError {
	return &TxError{
		Code:     code,
		Message:  message,
		ExitCode: ExitGeneral,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}

	msg := fmt.Sprintf(format, args...)

	var te *TxError
	if errors.As(err, &te) {
		return &TxError{
			Code:       te.Code,
			Message:    fmt.Sprintf("%s: %s", msg, te.Message),
			Details:    te.Details,
			Suggestion: te.Suggestion,
			Cause:      err,
			ExitCode:   te.ExitCode,
		}
	}

	return &TxError{
		Code:     "GENERAL_ERROR",
		Message:  msg,
		Cause:    err,
		ExitCode: ExitGeneral,
	}
}

// WithDetails adds details to an error.
func WithDetails(err error, details map[string]string) error {
	if err == nil {
		return nil
	}

	var te *TxError
	if errors.As(err, &te) {
		return &TxError{
			Code:       te.Code,
			Message:    te.Message,
			Details:    details,
			Suggestion: te.Suggestion,
			Cause:      te.Cause,
			ExitCode:   te.ExitCode,
		}
	}

	return &TxError{
		Code:     "GENERAL_ERROR",
		Message:  err.Error(),
		Details:  details,
		Cause:    err,
		ExitCode: ExitGeneral,
	}
}

// WithSuggestion adds a suggestion to an error.
func WithSuggestion(err error, suggestion string) error {
	if err == nil {
		return nil
	}

	var te *TxError
	if errors.As(err, &te) {
		return &TxError{
			Code:       te.Code,
			Message:    te.Message,
			Details:    te.Details,
			Suggestion: suggestion,
			Cause:      te.Cause,
			ExitCode:   te.ExitCode,
		}
	}

	return &TxError{
		Code:       "GENERAL_ERROR",
		Message:    err.Error(),
		Suggestion: suggestion,
		Cause:      err,
		ExitCode:   ExitGeneral,
	}
}

// ExitCode returns the appropriate exit code for an error.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var te *TxError
	if errors.As(err, &te) {
		return te.ExitCode
	}

	return ExitGeneral
}

// Code returns the error code for an error.
func Code(err error) string {
	var te *TxError
	if errors.As(err, &te) {
		return te.Code
	}
	return "GENERAL_ERROR"
}

// Is wraps errors.Is for convenience.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As wraps errors.As for convenience.
func As(err error, target any) bool {
	return errors.As(err, target)
}
