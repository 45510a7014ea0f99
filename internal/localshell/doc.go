// Package localshell hosts a single local interactive shell attached to a
// pseudo-terminal (C3). It wraps github.com/creack/pty the same way the
// companion agent binary in this codebase wraps it for its own terminal
// stream (services/terminal.go), but exposes the session.Session contract
// instead of a custom framing protocol, and adds command-block-oriented
// execute() semantics on top of the raw byte stream.
//
// On platforms or environments where PTY allocation fails, the host falls
// back to a plain redirected-pipes child process. That fallback has
// deliberately weaker semantics (no resize, no real TTY, stderr on a
// separate tagged stream) and is surfaced through IsFallback().
package localshell
