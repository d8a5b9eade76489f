// Package kvstore keeps tracker records in a single SQLite table instead of
// one file per record. Values are encrypted with the same envelope as the
// file store.
package kvstore
