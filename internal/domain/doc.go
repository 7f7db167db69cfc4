// Package domain defines the core domain types for the manifestlock identity
// locking system.
//
// This package contains the fundamental entities and value objects used to
// pin declarative manifest objects to deterministic identities: governed
// objects, identity triples, hashlock ledger entries, and the drift failure
// taxonomy.
//
// # Core Types
//
// GovernedObject is one parsed manifest document whose kind appears in the
// governed-kind table and is therefore subject to identity locking.
//
// Identity is the derived triple of location URI, content-addressed URN and
// SHA-256 content hash for a governed object.
//
// HashlockEntry and HashlockFile model the committed ledger of expected
// identities, analogous to a dependency lock file.
//
// # Drift Model
//
// Failure and Warning represent the issues accumulated during a run. All
// recoverable problems are collected and reported together; only a missing
// ledger in verify mode aborts the comparison phase outright.
//
// # Design Principles
//
// - Immutable value objects where possible
// - No database or external dependencies
// - Pure domain logic without infrastructure concerns
// - Rich type system with meaningful constants and enumerations
package domain
