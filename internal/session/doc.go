// Package session holds the review session aggregate: the work queue,
// selection state, outstanding task handles, and counters, all owned by
// a single logical control thread (the session mutex). Worker goroutines
// never touch this state; the reconciler (Poll) is the only place where
// task completion flows back into queue items.
package session
