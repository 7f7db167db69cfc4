// Package service implements the update and verify runs that tie discovery,
// canonicalization, identity computation and the hashlock ledger together.
//
// # Runs
//
// Update recomputes every governed identity, rewrites drifted identity
// annotations in place (atomically, file by file) and regenerates the
// hashlock ledger wholesale. Running update twice against an unchanged tree
// converges: manifests come out byte-identical and the ledger differs only
// in its generatedAt timestamp.
//
// Verify is strictly read-only. It recomputes every identity, checks the
// stored annotations against the computed ones, and compares the computed
// URN set against the committed ledger. Both checks are needed: a changed
// spec produces a different URN rather than the same URN with a different
// hash, so annotation drift and ledger drift catch different drift classes.
//
// # Design Principles
//
// - The entry accumulator is threaded explicitly, never global
// - The orchestrator exclusively owns each file's document list for one pass
// - Recoverable issues accumulate into the report; only a broken rewrite or
//   ledger write aborts the run
// - Run history is best effort and never changes the exit code
package service
