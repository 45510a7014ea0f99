// Package scheduler implements the session/tab manager (C7): the ordered
// list of live sessions, selection tracking with activation hooks, the
// three global timers (resource sampler, spinner animator, AI-CLI elapsed
// counter), restore-on-start/persist-on-shutdown against internal/store,
// and split-pane layout pairing.
//
// The ordered-list-plus-change-notification shape follows the same
// subscribe/notify idiom as internal/ring and internal/block, replayed here
// over a plain slice since the spec's "effectively unbounded" open-tabs
// list has no eviction behavior to borrow from ring's bounded trim policy.
// The resource sampler is grounded on nothing in either
// teacher package (neither hosts a tab manager that samples its own
// children's CPU/RSS); github.com/shirou/gopsutil/v4, present in the wider
// reference corpus for exactly this purpose, is wired in here since no
// teacher file covers per-process resource sampling at all.
package scheduler
