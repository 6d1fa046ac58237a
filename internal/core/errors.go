package core

import "fmt"

// ValidationError reports the first field of a draft or patch that failed the
// rule set. It is returned, never panicked, so the caller can surface it as a
// transient notification and keep prior state.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NotFoundError reports a lookup by an id that no live transaction has.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("transaction %s not found", e.ID)
}

// DuplicateError reports an insert of a value already present in a set.
type DuplicateError struct {
	Value string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("%q already exists", e.Value)
}

// ProtectedError reports an attempt to remove a seeded default category.
type ProtectedError struct {
	Value string
}

func (e *ProtectedError) Error() string {
	return fmt.Sprintf("%q is a default category and cannot be deleted", e.Value)
}

// PersistenceError wraps a failed snapshot write. It is logged at the store
// boundary and never propagated: the in-memory state stays authoritative for
// the session.
type PersistenceError struct {
	Cause error
}

func (e *PersistenceError) Error() string {
	return "snapshot persistence failed: " + e.Cause.Error()
}

func (e *PersistenceError) Unwrap() error { return e.Cause }

// ArtifactError wraps a failure from a derived-artifact generator (nota
// renderer or QR encoder).
type ArtifactError struct {
	Cause error
}

func (e *ArtifactError) Error() string {
	return "artifact generation failed: " + e.Cause.Error()
}

func (e *ArtifactError) Unwrap() error { return e.Cause }
