// Package state holds the client-side session and studio state.
//
// # Overview
//
// Session and Studios are plain values with pure transition methods. Each
// asynchronous operation moves through three of them: Pending when it is
// dispatched, then either a fulfillment (Listed, Fetched, Created, Updated,
// Deleted for studios; Fulfilled for the session) or Rejected.
//
//	studios = studios.Pending()
//	items, err := api.List(ctx, filters)
//	if err != nil {
//		studios = studios.Rejected(apiclient.Message(err))
//	} else {
//		studios = studios.Listed(items)
//	}
//
// Transitions never mutate the receiver's slices in place, so a value handed
// out earlier stays stable.
//
// # Store
//
// Store is the single process-wide owner of both values. Controllers apply
// transitions with UpdateSession and UpdateStudios; the UI reads copies with
// Snapshot. All access goes through a sync.RWMutex and the lock is never held
// across network I/O.
//
// # Shared loading flag
//
// Studios carries one Loading flag and one Error for all five operations.
// When two operations overlap the first to settle clears Loading while the
// other is still in flight, and the last to settle decides Error. Callers
// that need per-operation status must track it themselves.
//
// # Background refresh
//
// RecordPoll tracks consecutive failures of the optional background list
// refresh so the header can show an offline indicator via IsOffline.
package state
