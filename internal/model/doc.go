// Package model defines the data structures shared by the walk engine,
// the history database and the report writers.
//
// This package contains the following main types:
//   - WalkReport: everything recorded during one run of the walk engine
//   - Attempt: one walk from a starting topic until Philosophy or a restart
//   - Hop: one article visited during an attempt
//   - Outcome: how an attempt ended
//
// Models live in their own package so that walk, database and report can
// share them without import cycles. All types serialize to JSON; the
// database stores the full report as JSON next to its indexed columns.
package model
