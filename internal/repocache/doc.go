// Package repocache stores per-repository update metadata in the option store
// with a time-to-live.
//
// Each repository owns one option row keyed by "ghu-" plus the md5 of its
// slug. The row is a JSON object holding a "timeout" unix timestamp and any
// number of named data fields written by successive Put calls:
//
//	{"timeout": 1767225600, "meta": {...}, "tags": [...], "changes": "..."}
//
// Put merges into the existing row rather than replacing it, so the fields of
// one repository share a single expiry that every write pushes forward. The
// read-modify-write is not atomic across processes; the last writer wins.
//
// Get treats a missing row, a row without a timeout and an expired row the
// same way: no data.
package repocache
