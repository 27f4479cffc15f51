// Package ledger is the record service: the only place that mutates the
// ledger tables.
//
// ARCHITECTURE:
//
// A Service owns one identifier generator and four tables, all carved
// out of a single store:
//
//	segment 0  id_counter   shared identifier counter
//	segment 1  obligations  id → Obligation
//	segment 2  escrows      obligation id → EscrowHold
//	segment 3  policies     id → CoveragePolicy
//	segment 4  claims       id → Claim
//
// These assignments are part of the persisted format and never change.
//
// Creates follow the same order: validate input, check that referenced
// records exist, draw an identifier, write. UpdateObligation looks the
// obligation up before validating. Nothing is written before the last
// check passes. Identifiers come from one counter shared
// by all four tables, so ids within a table are unique but not dense.
//
// CreateEscrow draws an identifier it never uses, since the hold is keyed
// by the obligation's id. The draw still advances the counter.
//
// Concurrency: operations run to completion one at a time under a mutex.
// The caller's context is checked on entry only; once an operation has
// started it is not cancelled, so an identifier is never drawn without
// its record being written.
package ledger
