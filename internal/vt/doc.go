// Package vt turns a raw PTY/SSH byte stream into text, stripping terminal
// escape sequences while preserving a second, unstripped copy of the same
// text for clients (like a real terminal widget) that want to render the
// escapes themselves.
//
// The stripping grammar covers CSI, OSC, DCS, SOS/PM/APC and single-character
// escapes, extending the simple SGR-only regex (`\x1b\[[0-9;]*m`) seen
// elsewhere in this codebase's ancestry to the fuller set a real shell
// session emits (cursor movement, title-setting OSC sequences, and so on).
// Because PTY reads arrive in arbitrary chunks, both the UTF-8 decoding and
// the escape-sequence scanning are stateful: a multi-byte rune or an escape
// sequence split across two reads is carried forward rather than mangled.
package vt
