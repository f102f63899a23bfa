package databoy

import (
	"errors"
	"fmt"
)

// Standard sentinel errors.
var (
	// ErrNullArgument is returned when a required name (column, key) is empty.
	ErrNullArgument = errors.New("databoy: required argument is empty")

	// ErrDuplicateColumn is returned when a column is added twice to one row.
	ErrDuplicateColumn = errors.New("databoy: duplicate column")

	// ErrDuplicateReturnKey is returned when a return-value key is registered
	// twice without a reset.
	ErrDuplicateReturnKey = errors.New("databoy: duplicate return value key")

	// ErrMissingReturnValue is returned when a return value is looked up
	// before it was registered or resolved.
	ErrMissingReturnValue = errors.New("databoy: return value not available")

	// ErrNoProvider is returned by Commit when the session has no way to
	// obtain an execution provider.
	ErrNoProvider = errors.New("databoy: no execution provider configured")

	// ErrSessionCommitted is returned when a session is committed twice.
	ErrSessionCommitted = errors.New("databoy: session already committed")

	// ErrNoRows is returned by value queries that match no row.
	ErrNoRows = errors.New("databoy: no rows in result set")

	// ErrMalformedData is returned when an inline data string cannot be
	// parsed.
	ErrMalformedData = errors.New("databoy: malformed data string")
)

// NullArgumentError reports an empty required argument.
type NullArgumentError struct {
	Name string // argument name, e.g. "column"
}

// Error returns the error string.
func (e *NullArgumentError) Error() string {
	return fmt.Sprintf("databoy: argument %q must not be empty", e.Name)
}

// Is reports whether the target error matches NullArgumentError.
func (e *NullArgumentError) Is(err error) bool {
	return err == ErrNullArgument
}

// IsNullArgument returns true if the error is a NullArgumentError.
func IsNullArgument(err error) bool {
	if err == nil {
		return false
	}
	var e *NullArgumentError
	return errors.As(err, &e) || errors.Is(err, ErrNullArgument)
}

// DuplicateColumnError reports a column added twice to the same row.
type DuplicateColumnError struct {
	Table  string
	Column string
}

// Error returns the error string.
func (e *DuplicateColumnError) Error() string {
	return fmt.Sprintf("databoy: column %q already added to row of table %q", e.Column, e.Table)
}

// Is reports whether the target error matches DuplicateColumnError.
func (e *DuplicateColumnError) Is(err error) bool {
	return err == ErrDuplicateColumn
}

// IsDuplicateColumn returns true if the error is a DuplicateColumnError.
func IsDuplicateColumn(err error) bool {
	if err == nil {
		return false
	}
	var e *DuplicateColumnError
	return errors.As(err, &e) || errors.Is(err, ErrDuplicateColumn)
}

// MalformedDataError reports an inline data segment that is not a
// key=value pair.
type MalformedDataError struct {
	Segment string
}

// Error returns the error string.
func (e *MalformedDataError) Error() string {
	return fmt.Sprintf("databoy: malformed column value %q: missing '='", e.Segment)
}

// Is reports whether the target error matches MalformedDataError.
func (e *MalformedDataError) Is(err error) bool {
	return err == ErrMalformedData
}

// IsMalformedData returns true if the error is a MalformedDataError.
func IsMalformedData(err error) bool {
	if err == nil {
		return false
	}
	var e *MalformedDataError
	return errors.As(err, &e) || errors.Is(err, ErrMalformedData)
}

// DuplicateReturnKeyError reports a return-value key registered twice.
type DuplicateReturnKeyError struct {
	Key string
}

// Error returns the error string.
func (e *DuplicateReturnKeyError) Error() string {
	return fmt.Sprintf("databoy: return value key %q is already registered", e.Key)
}

// Is reports whether the target error matches DuplicateReturnKeyError.
func (e *DuplicateReturnKeyError) Is(err error) bool {
	return err == ErrDuplicateReturnKey
}

// IsDuplicateReturnKey returns true if the error is a DuplicateReturnKeyError.
func IsDuplicateReturnKey(err error) bool {
	if err == nil {
		return false
	}
	var e *DuplicateReturnKeyError
	return errors.As(err, &e) || errors.Is(err, ErrDuplicateReturnKey)
}

// MissingReturnValueError reports a return value that cannot be resolved.
// Key is empty for the last registered (unkeyed) value.
type MissingReturnValueError struct {
	Key    string
	Reason string
}

// Error returns the error string.
func (e *MissingReturnValueError) Error() string {
	name := "last return value"
	if e.Key != "" {
		name = fmt.Sprintf("return value %q", e.Key)
	}
	if e.Reason != "" {
		return fmt.Sprintf("databoy: %s: %s", name, e.Reason)
	}
	return fmt.Sprintf("databoy: %s is not available", name)
}

// Is reports whether the target error matches MissingReturnValueError.
func (e *MissingReturnValueError) Is(err error) bool {
	return err == ErrMissingReturnValue
}

// IsMissingReturnValue returns true if the error is a MissingReturnValueError.
func IsMissingReturnValue(err error) bool {
	if err == nil {
		return false
	}
	var e *MissingReturnValueError
	return errors.As(err, &e) || errors.Is(err, ErrMissingReturnValue)
}

// ProviderError wraps a failure returned by the execution provider.
// The provider error is available through errors.Unwrap, errors.Is and
// errors.As without modification.
type ProviderError struct {
	Op        string // "exec" or "query"
	Table     string
	Statement string
	Err       error
}

// Error returns the error string.
func (e *ProviderError) Error() string {
	return fmt.Sprintf("databoy: %s on table %q failed: %v (sql: %s)", e.Op, e.Table, e.Err, e.Statement)
}

// Unwrap returns the provider error.
func (e *ProviderError) Unwrap() error {
	return e.Err
}

// IsProviderError returns true if the error is a ProviderError.
func IsProviderError(err error) bool {
	if err == nil {
		return false
	}
	var e *ProviderError
	return errors.As(err, &e)
}
