// Package sshkeys handles SSH key pair generation and loading for outbound
// SSH session authentication, plus parsing of the two private-key formats a
// user might hand the session host: OpenSSH PEM and PuTTY's PPK.
//
// The identity key pair written by SaveKeyPair (and so by EnsureIdentity)
// is stored unencrypted, with the private key file at mode 0600.
// Passphrases reach LoadSigner and ParsePPK already decrypted; callers
// decrypt stored passphrases through internal/secretstore.
package sshkeys
