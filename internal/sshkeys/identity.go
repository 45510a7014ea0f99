package sshkeys

import (
	"fmt"
	"os"
	"path/filepath"
)

// EnsureIdentity returns the path to a private key and the authorized_keys
// line for its public half in dir, generating and persisting a fresh
// ED25519 pair the first time it's called for a given dir. Subsequent
// calls load and validate the existing pair instead of regenerating it,
// so a profile that auto-provisions its own identity key gets a stable
// fingerprint across restarts.
func EnsureIdentity(dir string) (privateKeyPath, publicKeyLine string, err error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", "", fmt.Errorf("ensure identity dir: %w", err)
	}

	privateKeyPath = filepath.Join(dir, privateKeyFile)

	if KeyPairExists(dir) {
		privPEM, err := LoadPrivateKey(dir)
		if err != nil {
			return "", "", fmt.Errorf("load existing identity: %w", err)
		}
		if _, err := ParsePrivateKey(privPEM); err != nil {
			return "", "", fmt.Errorf("existing identity at %s is unusable: %w", dir, err)
		}
		pub, err := LoadPublicKey(dir)
		if err != nil {
			return "", "", fmt.Errorf("load existing identity public key: %w", err)
		}
		return privateKeyPath, pub, nil
	}

	pub, priv, err := GenerateKeyPair()
	if err != nil {
		return "", "", fmt.Errorf("generate identity: %w", err)
	}
	if err := SaveKeyPair(dir, priv, pub); err != nil {
		return "", "", fmt.Errorf("save identity: %w", err)
	}

	return privateKeyPath, string(pub), nil
}
