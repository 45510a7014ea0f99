// Package secretstore encrypts sensitive configuration values — SSH
// passwords, private key passphrases, AI provider API keys — at rest using a
// symmetric key lazily generated on first use and persisted as a setting row.
package secretstore

import (
	"encoding/base64"
	"fmt"
	"time"

	"github.com/fernet/fernet-go"

	"github.com/gluk-w/tabshell/internal/store"
)

const settingKeyFernet = "fernet_key"

func getKey() (*fernet.Key, error) {
	keyStr, err := store.GetSetting(settingKeyFernet)
	if err != nil {
		var k fernet.Key
		if err := k.Generate(); err != nil {
			return nil, fmt.Errorf("generate fernet key: %w", err)
		}
		keyStr = k.Encode()
		if err := store.SetSetting(settingKeyFernet, keyStr); err != nil {
			return nil, fmt.Errorf("save fernet key: %w", err)
		}
		return &k, nil
	}

	key, err := fernet.DecodeKey(keyStr)
	if err != nil {
		return nil, fmt.Errorf("decode fernet key: %w", err)
	}
	return key, nil
}

// Encrypt returns a Fernet token encrypting plaintext under the store's
// lazily-generated key.
func Encrypt(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}
	key, err := getKey()
	if err != nil {
		return "", err
	}
	tok, err := fernet.EncryptAndSign([]byte(plaintext), key)
	if err != nil {
		return "", fmt.Errorf("encrypt: %w", err)
	}
	return string(tok), nil
}

// Decrypt reverses Encrypt. An empty ciphertext decrypts to an empty string
// so that optional secret fields round-trip without special-casing.
func Decrypt(ciphertext string) (string, error) {
	if ciphertext == "" {
		return "", nil
	}
	key, err := getKey()
	if err != nil {
		return "", err
	}
	msg := fernet.VerifyAndDecrypt([]byte(ciphertext), 0*time.Second, []*fernet.Key{key})
	if msg == nil {
		if _, err := base64.URLEncoding.DecodeString(ciphertext); err != nil {
			return "", fmt.Errorf("decrypt: invalid token")
		}
		return "", fmt.Errorf("decrypt: invalid token")
	}
	return string(msg), nil
}

// Mask renders a secret suitable for display: four asterisks followed by its
// last four characters, or only the four asterisks when the value has four
// characters or fewer.
func Mask(value string) string {
	if value == "" {
		return ""
	}
	if len(value) > 4 {
		return "****" + value[len(value)-4:]
	}
	return "****"
}
