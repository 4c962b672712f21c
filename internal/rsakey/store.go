package rsakey

import (
	"encoding/base64"
	"encoding/pem"
	"os"
	"strings"

	apperrors "github.com/dgeis/mpa/internal/errors"
)

// File-level serialization: the private key is PEM-wrapped DER with the
// file restricted to owner read/write, the public key an authorized-keys
// line next to it.

const pemPrivateKeyType = "RSA PRIVATE KEY"

// WriteFiles writes <base> (private, mode 0600) and <base>.pub and returns
// the byte counts written.
func (k *Key) WriteFiles(base string) (privBytes, pubBytes int, err error) {
	priv := pem.EncodeToMemory(&pem.Block{Type: pemPrivateKeyType, Bytes: k.MarshalDER()})
	if err := os.WriteFile(base, priv, 0o600); err != nil {
		return 0, 0, apperrors.WrapError(err, "writing private key %q", base)
	}
	pub := k.AuthorizedKeyLine(DefaultComment)
	if err := os.WriteFile(base+".pub", pub, 0o644); err != nil {
		return 0, 0, apperrors.WrapError(err, "writing public key %q", base+".pub")
	}
	return len(priv), len(pub), nil
}

// ParseResult carries whichever key type a file contained.
type ParseResult struct {
	Private *Key
	Public  *PublicKey
}

// ParseKeyFile reads a key file, detecting private PEM material by its
// header and falling back to the one-line public key format.
func ParseKeyFile(path string, mrSteps int) (*ParseResult, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.WrapError(err, "reading key file %q", path)
	}
	if strings.Contains(strings.SplitN(string(raw), "\n", 2)[0], "PRIVATE KEY") {
		key, err := ParsePrivateKeyPEM(raw, mrSteps)
		if err != nil {
			return nil, err
		}
		return &ParseResult{Private: key}, nil
	}
	pub, err := ParsePublicKeyLine(raw)
	if err != nil {
		return nil, err
	}
	return &ParseResult{Public: pub}, nil
}

// ParsePrivateKeyPEM decodes a PEM-wrapped private key, in PKCS#1 or
// openssh-key-v1 format.
func ParsePrivateKeyPEM(data []byte, mrSteps int) (*Key, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, apperrors.ParseError{Message: "no PEM block found"}
	}
	if isOpenSSH(block.Bytes) {
		return parseOpenSSH(block.Bytes, mrSteps)
	}
	return ParseDER(block.Bytes, mrSteps)
}

// ParsePublicKeyLine decodes a "ssh-rsa <base64> [comment]" line.
func ParsePublicKeyLine(data []byte) (*PublicKey, error) {
	fields := strings.Fields(string(data))
	if len(fields) < 2 || fields[0] != sshKeyType {
		return nil, apperrors.ParseError{Message: "not an ssh-rsa public key line"}
	}
	blob, err := base64.StdEncoding.DecodeString(fields[1])
	if err != nil {
		return nil, apperrors.WrapError(err, "decoding public key base64")
	}
	return ParseSSHWire(blob)
}
