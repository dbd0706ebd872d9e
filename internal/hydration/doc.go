// Package hydration mirrors the remote subject collection into the local store.
//
// A run reads the persisted cursor, picks a strategy and then fetches pages
// strictly in order. Every page is upserted as one batch and only then is the
// cursor advanced, in a separate write. A crash between the two re-applies
// the same page on the next run, which is harmless because upserts replace
// whole records by id.
//
// State machine for one run:
//
//	idle -> determining_strategy -> fetching <-> persisting -> completed -> idle
//	                                    \____________\______-> failed -> idle
//
// Strategy:
//
//   - cursor.PagesCompleted > 0: resume the interrupted run from its stored
//     page cursor, with its original start time and since filter
//   - cursor.LastSyncedAt == nil: full sync
//   - otherwise: incremental sync of records updated after LastSyncedAt
//
// At most one run is active per Pipeline. Disabling the pipeline is observed
// at the next page boundary; a batch is never abandoned halfway.
package hydration
