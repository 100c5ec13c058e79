// Package repositories implements SQLite persistence for the local identity provider.
//
// [AccountRepository] stores email and password-hash credentials with soft deletes via deleted_at timestamps;
// deleted records are excluded from queries by default.
//
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
package repositories
