// Package dispatch submits generation and transformation work to a
// bounded pool of worker goroutines and hands back pollable task handles.
//
// The pool size is a deliberate backpressure control bounding concurrent
// calls to the remote image backend, not a performance tuning knob.
// Workers only read their job payload and write the handle's result (plus
// activity-buffer entries); they never touch queue or selection state.
package dispatch
