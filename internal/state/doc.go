// Package state holds the single shared application record for the launcher
// and the store that mediates every mutation of it.
//
// # Overview
//
// All observable application state lives in one State value owned by a Store.
// The update orchestrator and the event bridge are the producers; the render
// sink is the consumer:
//
//	Producers (orchestrator, bridge):      Consumer (render sink):
//	┌──────────────────────────┐          ┌──────────────────────┐
//	│ store.Merge(Patch{...})  │─────────→│ OnChange(snapshot)   │
//	│ store.ResetCycle()       │ coalesce │ redraw               │
//	└──────────────────────────┘          └──────────────────────┘
//
// # Merge semantics
//
// Merge is a shallow merge: nil Patch fields leave the state untouched,
// non-nil fields overwrite. Two fields are the exception: TotalSize and
// TotalDownloadedBytes are sealed by their first positive write in a cycle
// and ignore later writes, so a late or stale backend event carrying a zero
// total cannot clobber a value established with more current data.
// ResetCycle unseals both for the next cycle.
//
// # Notification coalescing
//
// Every Merge schedules at most one pending notification on the frame
// interval. Merges arriving while one is pending fold into the same frame,
// bounding render cost independent of event arrival rate. The pending mark
// is cleared before the callback runs, so a merge performed inside the
// callback arms a fresh frame.
//
// # Speed history ownership
//
// SpeedHistory is the one structure touched by more than one call path: live
// progress events and replayed batch samples both feed it through
// EstimateTimeRemaining. It is owned by the store and mutated in place under
// the store lock; snapshots carry an independent copy.
package state
