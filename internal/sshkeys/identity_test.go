package sshkeys

import "testing"

func TestEnsureIdentityGeneratesOnFirstCall(t *testing.T) {
	dir := t.TempDir()

	privPath, pub, err := EnsureIdentity(dir)
	if err != nil {
		t.Fatalf("EnsureIdentity() error: %v", err)
	}
	if !KeyPairExists(dir) {
		t.Fatal("EnsureIdentity did not persist a key pair")
	}
	if pub == "" {
		t.Error("EnsureIdentity returned empty public key")
	}
	if privPath == "" {
		t.Error("EnsureIdentity returned empty private key path")
	}
}

func TestEnsureIdentityIsStableAcrossCalls(t *testing.T) {
	dir := t.TempDir()

	path1, pub1, err := EnsureIdentity(dir)
	if err != nil {
		t.Fatalf("first EnsureIdentity() error: %v", err)
	}
	path2, pub2, err := EnsureIdentity(dir)
	if err != nil {
		t.Fatalf("second EnsureIdentity() error: %v", err)
	}

	if path1 != path2 {
		t.Errorf("private key path changed: %q != %q", path1, path2)
	}
	if pub1 != pub2 {
		t.Error("public key changed between calls, expected the same identity to be reused")
	}
}
