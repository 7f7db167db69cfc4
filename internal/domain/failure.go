package domain

import (
	"errors"
	"fmt"
)

// ErrMissingLock reports a verify run against a tree whose hashlock file has
// never been committed.
var ErrMissingLock = errors.New("hashlock file not found")

// FailureKind classifies a drift or processing failure.
type FailureKind string

const (
	// FailureParse marks a manifest file that could not be decoded. The file
	// is skipped and the run continues.
	FailureParse FailureKind = "parse"
	// FailureMissingLock marks a verify run without a committed ledger.
	FailureMissingLock FailureKind = "missing-lock"
	// FailureAnnotationDrift marks an object whose stored identity
	// annotations disagree with the freshly computed identity.
	FailureAnnotationDrift FailureKind = "annotation-drift"
	// FailureMissingFromLock marks a computed URN absent from the ledger:
	// a new or changed resource not yet committed.
	FailureMissingFromLock FailureKind = "missing-from-lock"
	// FailureStaleLockEntry marks a ledger URN with no matching resource:
	// a removed or renamed resource still pinned in the ledger.
	FailureStaleLockEntry FailureKind = "stale-lock-entry"
	// FailureInvalidIdentity marks an object whose derived identity fails
	// the URN grammar, e.g. an uppercase platform label. The object is
	// skipped and the run continues.
	FailureInvalidIdentity FailureKind = "invalid-identity"
	// FailureDuplicateURN marks two source files producing the same URN
	// under the "error" duplicate policy.
	FailureDuplicateURN FailureKind = "duplicate-urn"
)

// Failure is one accumulated drift or processing failure. Every failure is
// emitted as a single tagged line; the exit code is the machine-readable
// signal.
type Failure struct {
	Kind     FailureKind
	Source   string // file path, when known
	Ref      string // object reference or URN the failure is about
	Expected string
	Actual   string
	Message  string
}

func (f Failure) String() string {
	s := "[FAIL] " + string(f.Kind)
	if f.Ref != "" {
		s += " " + f.Ref
	}
	if f.Source != "" {
		s += " (" + f.Source + ")"
	}
	if f.Message != "" {
		s += ": " + f.Message
	}
	if f.Expected != "" || f.Actual != "" {
		s += fmt.Sprintf(": expected %q, got %q", f.Expected, f.Actual)
	}
	return s
}

// Warning is a non-fatal advisory emitted during a run. Warnings never
// affect the exit code.
type Warning struct {
	Source  string
	Message string
}

func (w Warning) String() string {
	if w.Source != "" {
		return "[WARN] " + w.Source + ": " + w.Message
	}
	return "[WARN] " + w.Message
}

// DuplicatePolicy decides what happens when two distinct source files
// produce the same URN, e.g. an identical manifest duplicated into two
// overlay directories.
type DuplicatePolicy string

const (
	// DuplicateAllow treats duplicates as intentionally shared resources.
	DuplicateAllow DuplicatePolicy = "allow"
	// DuplicateWarn reports duplicates without failing the run.
	DuplicateWarn DuplicatePolicy = "warn"
	// DuplicateError fails the run on any duplicate URN.
	DuplicateError DuplicatePolicy = "error"
)

// ParseDuplicatePolicy converts a string to a DuplicatePolicy, defaulting
// to DuplicateWarn.
func ParseDuplicatePolicy(s string) DuplicatePolicy {
	switch s {
	case "allow":
		return DuplicateAllow
	case "warn":
		return DuplicateWarn
	case "error":
		return DuplicateError
	default:
		return DuplicateWarn
	}
}
