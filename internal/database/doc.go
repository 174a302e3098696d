// Package database provides the SQLite-backed media registry.
//
// It stores one row per uploaded media item and owns every status
// transition of the processing state machine:
//
//	pending -> processing -> ready | failed
//	failed  -> pending  (operator requeue)
//	ready   -> pending  (operator force reprocess)
//
// The claim operation is a conditional update verified by rows
// affected, so multiple scheduler workers can poll concurrently without
// double-claiming an item.
//
// The database uses WAL mode for concurrent read performance and
// includes automatic schema initialization.
package database
