// Package api exposes the scheduler's session list and a WebSocket
// terminal-attach endpoint over HTTP, for an external UI process to drive.
// The router shape (chi, one handler file per concern) and the terminal
// WebSocket's message protocol (binary frames for raw I/O, a small JSON
// envelope for resize/ping) are grounded on
// control-plane/internal/handlers/terminal.go, trimmed down from its
// multi-session-per-SSH-connection persistence model to one WebSocket per
// already-scheduled session, since session lifecycle here is already owned
// by internal/scheduler rather than re-implemented at the transport layer.
package api
