package errors

import (
	"errors"
	"fmt"
)

// Kind classifies a storage-tier failure. Callers above the storage layer
// only ever observe Hard, Fallback and Config errors; Soft errors are logged
// and degraded internally.
type Kind string

const (
	// KindSoft marks a non-authoritative tier failing on a read or existence
	// check. The operation degrades to the next tier.
	KindSoft Kind = "soft"

	// KindHard marks an authoritative-store failure, including writes that
	// matched zero rows. The operation aborts.
	KindHard Kind = "hard"

	// KindFallback marks a distributed-cache write that failed and whose
	// compensating invalidation also failed: the authoritative write
	// succeeded but the cache may serve a stale value until its TTL lapses.
	KindFallback Kind = "fallback"

	// KindConfig marks a programming error such as requesting a field the
	// schema does not define.
	KindConfig Kind = "config"
)

// TierError is a structured storage-layer error carrying its classification
// and the underlying cause.
type TierError struct {
	Kind    Kind
	Op      string // logical operation, e.g. "cascade.get"
	Message string
	Cause   error
}

func (e *TierError) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := e.Message
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap exposes the cause for errors.Is / errors.As compatibility.
func (e *TierError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// Soft wraps a non-authoritative tier failure.
func Soft(op string, cause error) *TierError {
	return &TierError{Kind: KindSoft, Op: op, Message: "cache tier unavailable", Cause: cause}
}

// Hard wraps an authoritative-store failure.
func Hard(op string, cause error) *TierError {
	return &TierError{Kind: KindHard, Op: op, Message: "persistent store failed", Cause: cause}
}

// Fallback wraps the combined error of a failed cache write whose
// invalidation fallback also failed.
func Fallback(op string, cause error) *TierError {
	return &TierError{Kind: KindFallback, Op: op, Message: "cache invalidation fallback failed", Cause: cause}
}

// Config reports a caller mistake such as an unknown field name.
func Config(op, message string) *TierError {
	return &TierError{Kind: KindConfig, Op: op, Message: message}
}

// KindOf extracts the Kind of an error, or the empty Kind for errors that
// did not originate in the storage layer.
func KindOf(err error) Kind {
	var te *TierError
	if errors.As(err, &te) {
		return te.Kind
	}
	return ""
}

// IsSoft reports whether the error is a degradable cache-tier failure.
func IsSoft(err error) bool { return KindOf(err) == KindSoft }

// IsHard reports whether the error is an authoritative-store failure.
func IsHard(err error) bool { return KindOf(err) == KindHard }

// IsFallback reports whether the error is a failed cache invalidation
// fallback.
func IsFallback(err error) bool { return KindOf(err) == KindFallback }

// IsConfig reports whether the error is a caller configuration mistake.
func IsConfig(err error) bool { return KindOf(err) == KindConfig }
