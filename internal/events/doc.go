// Package events provides a thread-safe activity log for the review
// session. Worker goroutines append entries describing task progress;
// the control thread and the API read bounded snapshots. Workers never
// write to shared display state directly — this buffer is the staging
// area between them.
package events
