package sshkeys

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/crypto/ssh"
)

// LoadSigner reads a private key file and returns an ssh.Signer, choosing
// between the PPK and OpenSSH/PEM parsers by file extension first and by
// content sniffing as a fallback (a renamed .key file is common enough that
// extension alone isn't reliable).
func LoadSigner(path, passphrase string) (ssh.Signer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read private key %s: %w", path, err)
	}

	if strings.HasSuffix(strings.ToLower(path), ".ppk") || IsPPK(data) {
		return ParsePPK(data, passphrase)
	}

	if passphrase != "" {
		signer, err := ssh.ParsePrivateKeyWithPassphrase(data, []byte(passphrase))
		if err != nil {
			return nil, fmt.Errorf("parse passphrase-protected private key: %w", err)
		}
		return signer, nil
	}

	signer, err := ssh.ParsePrivateKey(data)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	return signer, nil
}
