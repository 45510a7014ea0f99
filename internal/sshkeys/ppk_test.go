package sshkeys

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"strings"
	"testing"

	"golang.org/x/crypto/ssh"
)

// buildPPKFixture assembles a minimal unencrypted PPK2 file around a
// freshly generated ed25519 key pair, mirroring what PuTTYgen would write.
func buildPPKFixture(t *testing.T) (ppkData []byte, wantFingerprint string) {
	t.Helper()

	pub, priv, err := GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair: %v", err)
	}
	seed := parsePKCS8Seed(t, priv)

	parsedPub, _, _, _, err := ssh.ParseAuthorizedKey(pub)
	if err != nil {
		t.Fatalf("ParseAuthorizedKey: %v", err)
	}
	wantFingerprint = ssh.FingerprintSHA256(parsedPub)

	pubBlob := parsedPub.Marshal()
	pubB64 := wrapBase64(base64.StdEncoding.EncodeToString(pubBlob))

	var privBuf bytes.Buffer
	lenBuf := make([]byte, 4)
	binary.BigEndian.PutUint32(lenBuf, uint32(len(seed)))
	privBuf.Write(lenBuf)
	privBuf.Write(seed)
	privB64 := wrapBase64(base64.StdEncoding.EncodeToString(privBuf.Bytes()))

	var out strings.Builder
	out.WriteString("PuTTY-User-Key-File-2: ssh-ed25519\n")
	out.WriteString("Encryption: none\n")
	out.WriteString("Comment: test-fixture\n")
	out.WriteString("Public-Lines: " + itoa(len(pubB64)) + "\n")
	for _, l := range pubB64 {
		out.WriteString(l + "\n")
	}
	out.WriteString("Private-Lines: " + itoa(len(privB64)) + "\n")
	for _, l := range privB64 {
		out.WriteString(l + "\n")
	}
	out.WriteString("Private-MAC: 0000000000000000000000000000000000000000\n")

	return []byte(out.String()), wantFingerprint
}

func wrapBase64(s string) []string {
	var lines []string
	for len(s) > 64 {
		lines = append(lines, s[:64])
		s = s[64:]
	}
	if len(s) > 0 {
		lines = append(lines, s)
	}
	return lines
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	digits := []byte{}
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}

func TestParsePPKUnencrypted(t *testing.T) {
	data, wantFP := buildPPKFixture(t)

	if !IsPPK(data) {
		t.Fatal("IsPPK() = false for a valid PPK fixture")
	}

	signer, err := ParsePPK(data, "")
	if err != nil {
		t.Fatalf("ParsePPK() error: %v", err)
	}

	gotFP := ssh.FingerprintSHA256(signer.PublicKey())
	if gotFP != wantFP {
		t.Errorf("signer fingerprint = %s, want %s", gotFP, wantFP)
	}
}

func TestParsePPKRejectsV3(t *testing.T) {
	data := []byte("PuTTY-User-Key-File-3: ssh-ed25519\nEncryption: none\n")
	if _, err := ParsePPK(data, ""); err == nil {
		t.Error("expected error for PPK v3 file, got nil")
	}
}

func TestParsePPKMissingHeader(t *testing.T) {
	if _, err := ParsePPK([]byte("not a ppk file at all"), ""); err == nil {
		t.Error("expected error for malformed PPK data, got nil")
	}
}

func TestIsPPKFalseForOpenSSHKey(t *testing.T) {
	_, priv, err := GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair: %v", err)
	}
	if IsPPK(priv) {
		t.Error("IsPPK() = true for an OpenSSH PEM key")
	}
}
