// Package models defines the core domain records for splitledger.
//
// # Records
//
//   - User: a registered identity, referenced by ID everywhere else
//   - Expense: an amount fronted by a payer and shared among participants
//   - Settlement: money that actually changed hands between two users
//   - Friendship: an auxiliary pairwise relation used for presentation
//   - Activity: a ledger-affecting event delivered to the activity feed
//
// # Design Principles
//
// 1. **Integer money**: every amount is a money.Amount in minor units
// 2. **Derived balances**: nothing here stores a balance; the ledger recomputes them
// 3. **IDs, not pointers**: relationships are expressed as ID strings (UUID format)
// 4. **Soft delete is a state**: an Expense is either Active or Deleted, never both
package models
