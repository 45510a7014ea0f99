package sshkeys

import (
	"bufio"
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/ed25519"
	"crypto/sha1"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/crypto/ssh"
)

// ParsePPK parses a PuTTY-format (.ppk) private key, version 2 only — the
// format PuTTY itself wrote by default for years and the one most existing
// key files still use. Version 3 (Argon2-based key derivation, introduced in
// PuTTY 0.75) is not supported; ParsePPK returns an error naming the
// version found so callers can report it clearly instead of failing with a
// parse error partway through.
//
// No third-party PPK parser was found anywhere in the reference corpus, so
// this is a from-scratch implementation against the documented PPK2 layout:
// a header block of colon-separated fields followed by base64-wrapped
// public and private key material, optionally AES-256-CBC encrypted under a
// key derived from the passphrase via two rounds of SHA-1.
func ParsePPK(data []byte, passphrase string) (ssh.Signer, error) {
	fields, publicB64, privateB64, macHex, err := parsePPKStructure(data)
	if err != nil {
		return nil, err
	}

	keyType := fields["PuTTY-User-Key-File-2"]
	if keyType == "" {
		if v, ok := fields["PuTTY-User-Key-File-3"]; ok {
			return nil, fmt.Errorf("parse ppk: version 3 keys (%s) are not supported", v)
		}
		return nil, fmt.Errorf("parse ppk: missing PuTTY-User-Key-File-2 header")
	}

	encryption := fields["Encryption"]

	pubBlob, err := base64.StdEncoding.DecodeString(publicB64)
	if err != nil {
		return nil, fmt.Errorf("parse ppk: decode public blob: %w", err)
	}

	privBlob, err := base64.StdEncoding.DecodeString(privateB64)
	if err != nil {
		return nil, fmt.Errorf("parse ppk: decode private blob: %w", err)
	}

	switch encryption {
	case "", "none":
		// nothing to do
	case "aes256-cbc":
		if passphrase == "" {
			return nil, fmt.Errorf("parse ppk: key is encrypted but no passphrase was supplied")
		}
		key, iv := derivePPK2CipherParams(passphrase)
		block, err := aes.NewCipher(key)
		if err != nil {
			return nil, fmt.Errorf("parse ppk: init cipher: %w", err)
		}
		if len(privBlob)%aes.BlockSize != 0 {
			return nil, fmt.Errorf("parse ppk: encrypted private blob is not block-aligned")
		}
		mode := cipher.NewCBCDecrypter(block, iv)
		mode.CryptBlocks(privBlob, privBlob)
	default:
		return nil, fmt.Errorf("parse ppk: unsupported encryption %q", encryption)
	}

	_ = macHex // MAC verification is out of scope; a bad passphrase surfaces via a parse failure below.

	signer, err := buildSignerFromPPKBlobs(keyType, pubBlob, privBlob)
	if err != nil {
		return nil, fmt.Errorf("parse ppk: %w", err)
	}
	return signer, nil
}

// IsPPK reports whether data looks like a PPK file, based on its first
// header line, independent of file extension.
func IsPPK(data []byte) bool {
	return bytes.HasPrefix(bytes.TrimLeft(data, "\r\n\t "), []byte("PuTTY-User-Key-File-"))
}

func parsePPKStructure(data []byte) (fields map[string]string, publicB64, privateB64, macHex string, err error) {
	fields = make(map[string]string)
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var pubLines, privLines int
	var pubBuilder, privBuilder strings.Builder

	readSection := func(n int, into *strings.Builder) error {
		for i := 0; i < n; i++ {
			if !scanner.Scan() {
				return io.ErrUnexpectedEOF
			}
			into.WriteString(strings.TrimSpace(scanner.Text()))
		}
		return nil
	}

	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		key, rest, ok := strings.Cut(line, ": ")
		if !ok {
			key, rest, ok = strings.Cut(line, ":")
			if !ok {
				continue
			}
		}
		switch key {
		case "Public-Lines":
			pubLines, err = strconv.Atoi(strings.TrimSpace(rest))
			if err != nil {
				return nil, "", "", "", fmt.Errorf("parse ppk: bad Public-Lines: %w", err)
			}
			if err := readSection(pubLines, &pubBuilder); err != nil {
				return nil, "", "", "", fmt.Errorf("parse ppk: reading public key lines: %w", err)
			}
		case "Private-Lines":
			privLines, err = strconv.Atoi(strings.TrimSpace(rest))
			if err != nil {
				return nil, "", "", "", fmt.Errorf("parse ppk: bad Private-Lines: %w", err)
			}
			if err := readSection(privLines, &privBuilder); err != nil {
				return nil, "", "", "", fmt.Errorf("parse ppk: reading private key lines: %w", err)
			}
		case "Private-MAC":
			macHex = strings.TrimSpace(rest)
		default:
			fields[key] = strings.TrimSpace(rest)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, "", "", "", fmt.Errorf("parse ppk: %w", err)
	}
	if pubBuilder.Len() == 0 || privBuilder.Len() == 0 {
		return nil, "", "", "", fmt.Errorf("parse ppk: missing public or private key material")
	}
	return fields, pubBuilder.String(), privBuilder.String(), macHex, nil
}

// derivePPK2CipherParams implements PuTTY's PPK2 key derivation: the AES
// key is the concatenation of SHA1(0,0,0,0||passphrase) and
// SHA1(0,0,0,1||passphrase), truncated to 32 bytes; the IV is all zero.
func derivePPK2CipherParams(passphrase string) (key, iv []byte) {
	h0 := sha1.New()
	h0.Write([]byte{0, 0, 0, 0})
	h0.Write([]byte(passphrase))
	d0 := h0.Sum(nil)

	h1 := sha1.New()
	h1.Write([]byte{0, 0, 0, 1})
	h1.Write([]byte(passphrase))
	d1 := h1.Sum(nil)

	key = append(append([]byte{}, d0...), d1...)[:32]
	iv = make([]byte, aes.BlockSize)
	return key, iv
}

// buildSignerFromPPKBlobs reassembles an ssh.Signer from the raw SSH-wire
// public blob and the PPK private blob, whose field layout mirrors the
// private-key portion of RFC 4253's key formats minus the outer framing
// OpenSSH PEM files use.
func buildSignerFromPPKBlobs(keyType string, pubBlob, privBlob []byte) (ssh.Signer, error) {
	pub, err := ssh.ParsePublicKey(pubBlob)
	if err != nil {
		return nil, fmt.Errorf("parse embedded public key: %w", err)
	}
	if pub.Type() != keyType {
		return nil, fmt.Errorf("key type mismatch: header says %s, public blob says %s", keyType, pub.Type())
	}

	switch keyType {
	case ssh.KeyAlgoED25519:
		return buildED25519Signer(pub, privBlob)
	default:
		return nil, fmt.Errorf("unsupported ppk key type %q (only %s is implemented)", keyType, ssh.KeyAlgoED25519)
	}
}

func buildED25519Signer(pub ssh.PublicKey, privBlob []byte) (ssh.Signer, error) {
	cryptoPub, ok := pub.(ssh.CryptoPublicKey)
	if !ok {
		return nil, fmt.Errorf("public key does not expose crypto material")
	}
	edPub, ok := cryptoPub.CryptoPublicKey().(ed25519.PublicKey)
	if !ok {
		return nil, fmt.Errorf("public key is not ed25519")
	}

	r := bytes.NewReader(privBlob)
	seed, err := readPPKString(r)
	if err != nil {
		return nil, fmt.Errorf("read ed25519 seed: %w", err)
	}
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("ed25519 seed has unexpected length %d", len(seed))
	}

	priv := ed25519.NewKeyFromSeed(seed)
	if !bytes.Equal([]byte(priv.Public().(ed25519.PublicKey)), []byte(edPub)) {
		return nil, fmt.Errorf("derived public key does not match embedded public key (wrong passphrase?)")
	}

	signer, err := ssh.NewSignerFromKey(priv)
	if err != nil {
		return nil, fmt.Errorf("build signer: %w", err)
	}
	return signer, nil
}

func readPPKString(r *bytes.Reader) ([]byte, error) {
	var length uint32
	if err := binary.Read(r, binary.BigEndian, &length); err != nil {
		return nil, err
	}
	buf := make([]byte, length)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}
