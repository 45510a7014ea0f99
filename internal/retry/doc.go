// Package retry implements the error-analysis retry loop (C11): given a
// failed command and its stderr, decide whether to block it as dangerous,
// propose a local auto-fix heuristic, ask the AI translator's
// AnalyzeError capability for a fix, or give up as a terminal failure.
// The loop itself is iterative rather than recursive in this
// implementation — Next makes one decision per call and the caller
// executes and calls again — since nothing in the teacher or the wider
// pack recurses through a subprocess execution step, and an explicit loop
// keeps the bounded-attempts invariant (attempts_so_far >= max_attempts)
// visible at the call site instead of buried in stack depth.
package retry
