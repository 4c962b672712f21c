package rsakey

import (
	"bytes"
	"strings"
	"testing"

	"golang.org/x/crypto/ssh"
)

func TestSSHWireRoundTrip(t *testing.T) {
	key := generatedTestKey(t)
	blob := key.MarshalSSHWire()

	pub, err := ParseSSHWire(blob)
	if err != nil {
		t.Fatalf("ParseSSHWire: %v", err)
	}
	if !pub.E.Equal(key.E) || !pub.N.Equal(key.N) {
		t.Error("public key round trip lost components")
	}
	if !bytes.Equal(pub.MarshalSSHWire(), blob) {
		t.Error("re-marshaled wire blob differs")
	}
}

func TestSSHWireRejectsCorruption(t *testing.T) {
	key := generatedTestKey(t)
	blob := key.MarshalSSHWire()

	if _, err := ParseSSHWire(blob[:8]); err == nil {
		t.Error("accepted truncated blob")
	}
	if _, err := ParseSSHWire(append(append([]byte{}, blob...), 1)); err == nil {
		t.Error("accepted trailing bytes")
	}
	bad := append([]byte{}, blob...)
	copy(bad[4:], "ssh-dss")
	if _, err := ParseSSHWire(bad); err == nil {
		t.Error("accepted wrong key type")
	}
}

func TestAuthorizedKeyLine(t *testing.T) {
	key := generatedTestKey(t)
	line := key.AuthorizedKeyLine(DefaultComment)

	if !strings.HasPrefix(string(line), "ssh-rsa ") || !strings.HasSuffix(string(line), DefaultComment+"\n") {
		t.Fatalf("unexpected line shape: %q", line)
	}
	pub, err := ParsePublicKeyLine(line)
	if err != nil {
		t.Fatalf("ParsePublicKeyLine: %v", err)
	}
	if !pub.N.Equal(key.N) {
		t.Error("modulus lost in authorized-key round trip")
	}
}

// TestSSHWireCrossValidation feeds the generated public key to
// golang.org/x/crypto/ssh as an independent reader of the wire format.
func TestSSHWireCrossValidation(t *testing.T) {
	key := generatedTestKey(t)

	parsed, err := ssh.ParsePublicKey(key.MarshalSSHWire())
	if err != nil {
		t.Fatalf("x/crypto/ssh rejects our wire blob: %v", err)
	}
	if parsed.Type() != ssh.KeyAlgoRSA {
		t.Errorf("key type = %s, want %s", parsed.Type(), ssh.KeyAlgoRSA)
	}
	if !bytes.Equal(parsed.Marshal(), key.MarshalSSHWire()) {
		t.Error("x/crypto/ssh re-marshals to different bytes")
	}

	fromLine, comment, _, _, err := ssh.ParseAuthorizedKey(key.AuthorizedKeyLine(DefaultComment))
	if err != nil {
		t.Fatalf("x/crypto/ssh rejects our authorized-key line: %v", err)
	}
	if comment != DefaultComment {
		t.Errorf("comment = %q, want %q", comment, DefaultComment)
	}
	if !bytes.Equal(fromLine.Marshal(), key.MarshalSSHWire()) {
		t.Error("authorized-key line carries different key material")
	}
}
