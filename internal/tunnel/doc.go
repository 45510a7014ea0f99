// Package tunnel implements the per-SSH-connection port-forwarding
// sub-manager (part of C4): local, remote, and dynamic (SOCKS5) forwards,
// each tracked with a status and restarted across a reconnect when marked
// auto-start or when it was running at the moment the connection dropped.
//
// The accept-loop-plus-bidirectional-copy shape is grounded on
// sshtunnel/tunnel.go's CreateReverseTunnel and its bidirectionalCopy
// helper; entry bookkeeping (status, last error, per-entry listener/cancel)
// is grounded on sshproxy/tunnel.go's ActiveTunnel. Dynamic (SOCKS5) forwards
// have no analog in either teacher package; armon/go-socks5 — present
// elsewhere in the reference corpus's dependency graph — is wired in here
// with its Dial hook routed through the SSH client so SOCKS traffic is
// tunneled rather than dialed directly from this process.
package tunnel
