// Package taskstore keeps the client-side mirror of a user's to-do board.
//
// The Store owns the list of tasks shown on the board, partitions it into
// the three lanes, and routes every mutation through the remote task
// collection. The remote collection is always authoritative: after a
// mutation the mirror is re-fetched (a reconciling refresh) so it never
// stays diverged. Only board drag-and-drop updates the mirror before the
// remote call confirms it.
package taskstore
