// Package sshsession hosts an SSH-backed interactive session (C4): password
// or key authentication (including PPK and passphrase-protected keys via
// internal/sshkeys), a persistent shell-stream channel driven by a
// prompt-marker protocol for command-result extraction, an ephemeral
// one-exec-per-command mode, and working-directory tracking.
//
// The shell-stream setup (RequestPty, StdinPipe/StdoutPipe, keepalive) is
// grounded on this codebase's sshterminal package; the prompt-marker
// extraction protocol and the connection-health bookkeeping are grounded on
// sshmanager's keepalive/metrics design, adapted from "one client per
// instance" to "one shell-stream per session."
package sshsession
