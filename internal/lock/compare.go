package lock

import (
	"sort"

	"manifestlock/internal/domain"
)

// Compare checks the freshly computed entry set against the committed
// ledger. Because a URN embeds the content hash, a changed object never
// shows up as "same URN, different hash": it produces one missing-from-lock
// failure for its new URN and one stale-lock-entry failure for its old one.
// Failures are returned in deterministic (source, kind, namespace, name)
// order, computed set first.
func Compare(committed, computed []domain.HashlockEntry) []domain.Failure {
	locked := domain.ByURN(committed)
	current := domain.ByURN(computed)

	var failures []domain.Failure

	// a URN duplicated across source files is reported once here; the
	// duplicate policy owns the per-source reporting
	reported := make(map[string]bool)
	for _, e := range sortedCopy(computed) {
		if reported[e.URN] {
			continue
		}
		if _, ok := locked[e.URN]; !ok {
			reported[e.URN] = true
			failures = append(failures, domain.Failure{
				Kind:    domain.FailureMissingFromLock,
				Source:  e.Source,
				Ref:     e.URN,
				Message: "resource not committed to hashlock; run update mode",
			})
		}
	}
	for _, e := range sortedCopy(committed) {
		if _, ok := current[e.URN]; !ok {
			failures = append(failures, domain.Failure{
				Kind:    domain.FailureStaleLockEntry,
				Source:  e.Source,
				Ref:     e.URN,
				Message: "hashlock entry has no matching resource in the tree",
			})
		}
	}
	return failures
}

// Duplicate reports a URN produced by more than one source file.
type Duplicate struct {
	URN     string
	Sources []string
}

// FindDuplicates returns every URN produced by two or more distinct source
// files, in sorted URN order. What to do about them is decided by the
// configured duplicate policy.
func FindDuplicates(entries []domain.HashlockEntry) []Duplicate {
	sources := make(map[string][]string)
	for _, e := range entries {
		if !contains(sources[e.URN], e.Source) {
			sources[e.URN] = append(sources[e.URN], e.Source)
		}
	}

	var dups []Duplicate
	for urn, srcs := range sources {
		if len(srcs) > 1 {
			sort.Strings(srcs)
			dups = append(dups, Duplicate{URN: urn, Sources: srcs})
		}
	}
	sort.Slice(dups, func(i, j int) bool { return dups[i].URN < dups[j].URN })
	return dups
}

func sortedCopy(entries []domain.HashlockEntry) []domain.HashlockEntry {
	out := make([]domain.HashlockEntry, len(entries))
	copy(out, entries)
	domain.SortEntries(out)
	return out
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
