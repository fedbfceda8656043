package coach

import (
	"fmt"
	"strings"
	"time"
)

// ErrorKind buckets provider failures into the categories the retry and
// messaging policies care about.
type ErrorKind string

const (
	ErrKindValidation ErrorKind = "validation"
	ErrKindCooldown   ErrorKind = "cooldown"
	ErrKindTimeout    ErrorKind = "timeout"
	ErrKindAuth       ErrorKind = "auth"
	ErrKindQuota      ErrorKind = "quota"
	ErrKindNetwork    ErrorKind = "network"
	ErrKindProvider   ErrorKind = "provider"
)

// AnalysisError carries a user-presentable message alongside the machine
// classification. Message is safe to show verbatim in a UI.
type AnalysisError struct {
	Kind     ErrorKind
	Provider Provider
	Message  string
	Wait     time.Duration // remaining cooldown, set for ErrKindCooldown
	cause    error
}

func (e *AnalysisError) Error() string {
	return e.Message
}

func (e *AnalysisError) Unwrap() error {
	return e.cause
}

// Retryable reports whether a fresh attempt against the same provider could
// plausibly succeed. Only transient network failures qualify; auth and quota
// errors will fail the same way on every attempt.
func (e *AnalysisError) Retryable() bool {
	return e.Kind == ErrKindNetwork
}

func newValidationError(msg string) *AnalysisError {
	return &AnalysisError{Kind: ErrKindValidation, Message: msg}
}

func newCooldownError(wait time.Duration) *AnalysisError {
	return &AnalysisError{
		Kind:    ErrKindCooldown,
		Message: fmt.Sprintf("Please wait %.1f seconds before trying again.", wait.Seconds()),
		Wait:    wait,
	}
}

// Classify maps a raw provider error to an AnalysisError with a user-facing
// message. Classification is by substring because the upstream APIs disagree
// on error encodings; the quota check runs before auth since some backends
// phrase 429s as "API key quota exceeded".
func Classify(p Provider, err error) *AnalysisError {
	if err == nil {
		return nil
	}
	if ae, ok := err.(*AnalysisError); ok {
		return ae
	}
	msg := strings.ToLower(err.Error())
	out := &AnalysisError{Provider: p, cause: err}

	switch {
	case containsAny(msg, "quota", "429", "rate limit", "too many requests"):
		out.Kind = ErrKindQuota
		out.Message = fmt.Sprintf("%s quota exceeded. Try another provider or wait a few minutes.", p)
	case containsAny(msg, "api key", "authentication", "unauthorized", "401"):
		out.Kind = ErrKindAuth
		out.Message = fmt.Sprintf("Invalid %s API key. Please check your Settings.", p)
	case containsAny(msg, "timeout", "timed out", "deadline"):
		out.Kind = ErrKindTimeout
		out.Message = "Request timed out. Check your connection and try again."
	case containsAny(msg, "network", "connection", "no such host", "dial tcp"):
		out.Kind = ErrKindNetwork
		out.Message = "Network error. Check your internet connection."
	default:
		out.Kind = ErrKindProvider
		out.Message = fmt.Sprintf("%s request failed: %v", p, err)
	}
	return out
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
