// Package script runs YAML operation scripts against a ledger.
//
// A script is an ordered list of steps. Each step names one ledger
// operation, its arguments and, optionally, what the operation should
// produce:
//
//	name: escrow
//	steps:
//	  - op: add_obligation
//	    args: {debtor: alice, creditor: bob, amount: 100}
//	    expect: {id: 1}
//	  - op: get_escrow
//	    args: {obligation_id: 2}
//	    expect_error: NOT_FOUND
//
// Expect is a subset match on the JSON form of the returned record.
// Run records every step in a Trace; AssertGolden compares that trace
// against testdata/golden.
package script
