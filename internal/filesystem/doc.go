// Package filesystem implements the local filesystem driver backing the
// Filedock editor and job tooling.
//
// The package is organized into focused files:
//   - types: snapshot values (Entry, Tree, TextParams, Properties)
//   - errors: the closed failure taxonomy every operation reports through
//   - driver: tree listing and mutation (create, rename, delete, copy, load, save)
//   - archives: ZIP validation, streaming compress and decompress
//   - text: charset detection, decoding/encoding, line-ending normalization
//   - properties: text statistics and permission flags
//   - sort: listing comparators
//
// Entries are snapshots, not live handles. The driver holds no cache and no
// lock state: every operation re-validates against the live device, and
// concurrent calls on overlapping paths are a caller-responsibility hazard
// the driver does not arbitrate.
package filesystem
