package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"manifestlock/internal/codec"
	"manifestlock/internal/domain"
	"manifestlock/internal/identity"
	"manifestlock/internal/lock"
	"manifestlock/internal/repository"
)

// Run mode names, also recorded in the run history.
const (
	ModeUpdate = "update"
	ModeVerify = "verify"
)

// Options configure a run.
type Options struct {
	// FailFast stops the scan at the first accumulated failure.
	FailFast bool
	// Duplicates is the policy applied when two source files produce the
	// same URN.
	Duplicates domain.DuplicatePolicy
}

// LockService coordinates one update or verify run. It owns the ledger and
// the decoded document lists for the duration of the run; nothing is shared
// across runs.
type LockService struct {
	store   *lock.Store
	history repository.RunHistory
	opts    Options
}

// NewLockService creates a lock service. history may be nil to disable run
// recording.
func NewLockService(store *lock.Store, history repository.RunHistory, opts Options) *LockService {
	return &LockService{
		store:   store,
		history: history,
		opts:    opts,
	}
}

// Update recomputes every governed identity, rewrites drifted identity
// annotations in place and regenerates the hashlock ledger. A file rewrite
// or ledger write failure aborts the run; everything else accumulates. A
// fail-fast run that stops early leaves the committed ledger untouched.
func (s *LockService) Update(ctx context.Context, files []string) (*domain.Report, error) {
	started := time.Now()
	report := &domain.Report{Mode: ModeUpdate}
	var entries []domain.HashlockEntry

	for _, file := range files {
		if s.stop(report) {
			break
		}
		report.Files++

		docs, err := codec.ReadManifest(file)
		if err != nil {
			log.Printf("skipping %s: %v", file, err)
			report.AddFailure(domain.Failure{
				Kind:    domain.FailureParse,
				Source:  file,
				Message: err.Error(),
			})
			continue
		}

		dirty := false
		for _, doc := range docs {
			obj, ok := domain.ParseObject(doc)
			if !ok {
				continue
			}
			report.Objects++

			id, entry, err := s.identify(obj, file, report)
			if err != nil {
				report.AddFailure(domain.Failure{
					Kind:    domain.FailureInvalidIdentity,
					Source:  file,
					Ref:     obj.Ref(),
					Message: err.Error(),
				})
				continue
			}
			entries = append(entries, entry)

			if obj.SetIdentity(id) {
				dirty = true
			}
		}

		if dirty {
			if err := codec.WriteManifest(file, docs); err != nil {
				return nil, fmt.Errorf("rewrite %s: %w", file, err)
			}
			report.Rewritten++
		}
	}

	s.applyDuplicatePolicy(entries, report)

	// the ledger is regenerated even when nothing changed, but a fail-fast
	// abort must not replace the committed ledger with one built from a
	// partial scan
	if !s.stop(report) {
		if _, err := s.store.Write(entries); err != nil {
			return nil, err
		}
	}

	s.record(ctx, report, started)
	return report, nil
}

// Verify recomputes every governed identity without mutating anything and
// compares it against the stored annotations and the committed ledger. A
// missing ledger is a single aggregate failure; the comparison phase is
// skipped entirely.
func (s *LockService) Verify(ctx context.Context, files []string) (*domain.Report, error) {
	started := time.Now()
	report := &domain.Report{Mode: ModeVerify}

	committed, err := s.store.Load()
	if err != nil {
		if errors.Is(err, domain.ErrMissingLock) {
			report.AddFailure(domain.Failure{
				Kind:    domain.FailureMissingLock,
				Source:  s.store.Path,
				Message: "run update mode to generate the hashlock first",
			})
			s.record(ctx, report, started)
			return report, nil
		}
		return nil, err
	}

	var entries []domain.HashlockEntry

scan:
	for _, file := range files {
		if s.stop(report) {
			break
		}
		report.Files++

		docs, err := codec.ReadManifest(file)
		if err != nil {
			log.Printf("skipping %s: %v", file, err)
			report.AddFailure(domain.Failure{
				Kind:    domain.FailureParse,
				Source:  file,
				Message: err.Error(),
			})
			continue
		}

		for _, doc := range docs {
			obj, ok := domain.ParseObject(doc)
			if !ok {
				continue
			}
			report.Objects++

			id, entry, err := s.identify(obj, file, report)
			if err != nil {
				report.AddFailure(domain.Failure{
					Kind:    domain.FailureInvalidIdentity,
					Source:  file,
					Ref:     obj.Ref(),
					Message: err.Error(),
				})
				if s.stop(report) {
					break scan
				}
				continue
			}
			entries = append(entries, entry)

			uri, urn := obj.StoredIdentity()
			if urn != id.URN {
				report.AddFailure(domain.Failure{
					Kind:     domain.FailureAnnotationDrift,
					Source:   file,
					Ref:      obj.Ref(),
					Expected: id.URN,
					Actual:   urn,
				})
			} else if uri != id.URI {
				report.AddFailure(domain.Failure{
					Kind:     domain.FailureAnnotationDrift,
					Source:   file,
					Ref:      obj.Ref(),
					Expected: id.URI,
					Actual:   uri,
				})
			}
			if s.stop(report) {
				break scan
			}
		}
	}

	if !s.stop(report) {
		for _, f := range lock.Compare(committed.Entries, entries) {
			report.AddFailure(f)
			if s.stop(report) {
				break
			}
		}
	}

	s.applyDuplicatePolicy(entries, report)

	s.record(ctx, report, started)
	return report, nil
}

// identify resolves the platform and computes the identity and ledger entry
// for one governed object, warning when the platform fell back to the
// default. An error means the object's identity could not be derived;
// callers accumulate it and skip the object.
func (s *LockService) identify(obj *domain.GovernedObject, file string, report *domain.Report) (domain.Identity, domain.HashlockEntry, error) {
	platform, warned := identity.ResolvePlatform(obj, file)
	if warned {
		report.AddWarning(domain.Warning{
			Source: file,
			Message: fmt.Sprintf("no platform label on %s, defaulting to %q",
				obj.Ref(), platform),
		})
	}

	id, err := identity.Compute(obj, platform)
	if err != nil {
		return domain.Identity{}, domain.HashlockEntry{}, err
	}
	return id, identity.Entry(obj, id, file), nil
}

// applyDuplicatePolicy turns duplicate URNs into warnings or failures per
// the configured policy.
func (s *LockService) applyDuplicatePolicy(entries []domain.HashlockEntry, report *domain.Report) {
	if s.opts.Duplicates == domain.DuplicateAllow {
		return
	}
	for _, dup := range lock.FindDuplicates(entries) {
		msg := fmt.Sprintf("urn produced by %d sources: %v", len(dup.Sources), dup.Sources)
		if s.opts.Duplicates == domain.DuplicateError {
			report.AddFailure(domain.Failure{
				Kind:    domain.FailureDuplicateURN,
				Ref:     dup.URN,
				Message: msg,
			})
			if s.stop(report) {
				return
			}
			continue
		}
		report.AddWarning(domain.Warning{Message: dup.URN + ": " + msg})
	}
}

// stop reports whether a fail-fast run has already accumulated a failure.
func (s *LockService) stop(report *domain.Report) bool {
	return s.opts.FailFast && report.Failed()
}

// record persists the run to the history repository. Best effort: failures
// are logged and never change the run's outcome.
func (s *LockService) record(ctx context.Context, report *domain.Report, started time.Time) {
	if s.history == nil {
		return
	}
	run := domain.NewRunRecord(uuid.NewString(), report, started, time.Now())
	if err := s.history.RecordRun(ctx, run); err != nil {
		log.Printf("[WARN] run history: %v", err)
	}
}
