// Package handler implements the C6 output-handler strategy pair that
// routes session.OutputEvent values either into a throttled command-block
// batch buffer (line-oriented mode) or straight to a display collaborator
// (interactive mode).
//
// The flush-on-timer-or-threshold shape is grounded on the batched-eviction
// idiom in internal/ring (insert, check threshold, flush/evict in one
// step) replayed here as "insert, check threshold, flush on a 50ms timer"
// instead of "insert, check capacity, evict". Switching between the two
// handlers is modeled as a single atomic flag on Dispatcher, matching the
// spec's requirement that the interactive-mode transition happen as one
// property change rather than a multi-step handoff.
package handler
