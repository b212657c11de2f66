package reconcile

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Sentinel errors for the reconciliation error taxonomy.
var (
	// ErrSourceUnavailable means the first source call failed; nothing was planned.
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrPageFetch means a later page failed and the listing is partial.
	ErrPageFetch = errors.New("page fetch failed")

	// ErrFieldCoercion means one cell could not be converted to its field type.
	ErrFieldCoercion = errors.New("field coercion failed")

	// ErrSinkApply means one remote mutation failed.
	ErrSinkApply = errors.New("sink apply failed")
)

// SourceUnavailableError is fatal to a run and aborts it before any mutation.
type SourceUnavailableError struct {
	EntityType string
	Err        error
}

// Error implements the error interface
func (e *SourceUnavailableError) Error() string {
	return fmt.Sprintf("source unavailable while listing %s: %v", e.EntityType, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *SourceUnavailableError) Unwrap() error { return e.Err }

// Is implements errors.Is support
func (e *SourceUnavailableError) Is(target error) bool { return target == ErrSourceUnavailable }

// PageFetchError records a mid-walk page failure. The records collected before it
// remain usable.
type PageFetchError struct {
	EntityType string
	Page       int
	Collected  int
	Err        error
}

// Error implements the error interface
func (e *PageFetchError) Error() string {
	return fmt.Sprintf("page %d of %s failed after %d records: %v", e.Page, e.EntityType, e.Collected, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *PageFetchError) Unwrap() error { return e.Err }

// Is implements errors.Is support
func (e *PageFetchError) Is(target error) bool { return target == ErrPageFetch }

// FieldCoercionError is isolated to a single field of a single row.
type FieldCoercionError struct {
	Column string
	Value  string
	Err    error
}

// Error implements the error interface
func (e *FieldCoercionError) Error() string {
	return fmt.Sprintf("column %s: cannot convert %q: %v", e.Column, e.Value, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *FieldCoercionError) Unwrap() error { return e.Err }

// Is implements errors.Is support
func (e *FieldCoercionError) Is(target error) bool { return target == ErrFieldCoercion }

// SinkApplyError is isolated to a single item.
type SinkApplyError struct {
	Ref string
	Err error
}

// Error implements the error interface
func (e *SinkApplyError) Error() string {
	return fmt.Sprintf("%s: %s", e.Ref, SanitizeMessage(errorText(e.Err)))
}

// Unwrap implements errors.Unwrap
func (e *SinkApplyError) Unwrap() error { return e.Err }

// Is implements errors.Is support
func (e *SinkApplyError) Is(target error) bool { return target == ErrSinkApply }

// OwnerAssignmentError is a SinkApplyError caused by an unknown owner on create.
type OwnerAssignmentError struct {
	SinkApplyError
	Owner string
}

// Error implements the error interface
func (e *OwnerAssignmentError) Error() string {
	return fmt.Sprintf("owner %q could not be assigned: %s", e.Owner, e.SinkApplyError.Error())
}

const maxMessageRunes = 500

var (
	bearerPattern     = regexp.MustCompile(`(?i)bearer\s+[A-Za-z0-9\-._~+/]+=*`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// SanitizeMessage makes a remote error message safe to show and export: credentials are
// redacted, whitespace is collapsed and the text is truncated.
func SanitizeMessage(msg string) string {
	msg = bearerPattern.ReplaceAllString(msg, "Bearer [redacted]")
	msg = strings.TrimSpace(whitespacePattern.ReplaceAllString(msg, " "))

	runes := []rune(msg)
	if len(runes) > maxMessageRunes {
		return string(runes[:maxMessageRunes]) + "…"
	}
	return msg
}

func errorText(err error) string {
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}
