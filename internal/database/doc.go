// Package database provides SQLite-based storage for philowalk.
//
// This package implements the WalkDB, which stores:
//   - Finished walk reports, as indexed columns plus the full JSON report
//   - Every visited article (hop), for "most visited title" statistics
//   - The link cache: the title and first link of recently seen topics
//
// SQLite is accessed through modernc.org/sqlite, a CGO-free driver, so the
// binary cross-compiles without a C toolchain. The history lives in a
// single file under the XDG data directory.
package database
