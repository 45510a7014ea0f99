package sshsession

import "time"

// AuthMethod selects how Config authenticates to the remote host.
type AuthMethod string

const (
	AuthPassword   AuthMethod = "password"
	AuthPrivateKey AuthMethod = "private-key"
)

// Config describes how to connect to one SSH profile. Secret fields
// (Password, Passphrase) are expected to already be decrypted by the caller
// through internal/secretstore before being placed here.
type Config struct {
	Host       string
	Port       int
	Username   string
	AuthMethod AuthMethod

	Password string

	PrivateKeyPath string
	Passphrase     string

	// ExpectedHostKeyFingerprint is the fingerprint recorded from a prior
	// connection (TOFU). Empty means "first connection, accept and report".
	ExpectedHostKeyFingerprint string

	HandshakeTimeout   time.Duration
	KeepaliveInterval  time.Duration
	ShellType          string
	Cols, Rows         int
}

// withDefaults fills in zero-valued fields with the reference values named
// in the SSH host contract.
func (c Config) withDefaults() Config {
	if c.HandshakeTimeout <= 0 {
		c.HandshakeTimeout = 30 * time.Second
	}
	if c.KeepaliveInterval <= 0 {
		c.KeepaliveInterval = 30 * time.Second
	}
	if c.ShellType == "" {
		c.ShellType = "xterm-256color"
	}
	if c.Cols <= 0 {
		c.Cols = 120
	}
	if c.Rows <= 0 {
		c.Rows = 30
	}
	return c
}
