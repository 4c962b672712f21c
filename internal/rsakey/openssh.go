package rsakey

import (
	"bytes"

	apperrors "github.com/dgeis/mpa/internal/errors"
	"github.com/dgeis/mpa/internal/mpa"
)

// openssh-key-v1 private key layout, as written by ssh-keygen:
//
//	byte[]  "openssh-key-v1\0"
//	string  ciphername
//	string  kdfname
//	string  kdfoptions
//	uint32  number of keys (must be 1)
//	string  public key blob (ssh-rsa, e, n)
//	string  private section: uint64 check bytes, ssh-rsa, n, e, d, iqmp, p, q, ...
//
// The cipher and KDF names are read and ignored; the private section is
// parsed as cleartext. Behavior on encrypted keys is undefined.

var opensshMagic = []byte("openssh-key-v1\x00")

// isOpenSSH reports whether the decoded key bytes carry the openssh-key-v1
// magic.
func isOpenSSH(data []byte) bool {
	return len(data) >= len(opensshMagic) && bytes.Equal(data[:len(opensshMagic)], opensshMagic)
}

// parseOpenSSH decodes and validates an openssh-key-v1 RSA private key.
func parseOpenSSH(data []byte, mrSteps int) (*Key, error) {
	r := &wireReader{data: data, off: len(opensshMagic)}

	r.lengthPrefixed() // cipher name, ignored
	r.lengthPrefixed() // kdf name, ignored
	r.lengthPrefixed() // kdf options, ignored
	keyCount := r.u32()
	if r.err == nil && keyCount != 1 {
		return nil, apperrors.ParseError{Message: "expected key count to be 1"}
	}

	// Embedded public key blob.
	r.skip(4) // blob length
	if ident := r.lengthPrefixed(); r.err == nil && string(ident) != sshKeyType {
		return nil, apperrors.ParseError{Message: "embedded public key format not supported"}
	}
	r.mpint() // public e, superseded by the private copy
	r.mpint() // public n, superseded by the private copy

	// Private section.
	r.skip(4) // section length
	r.skip(8) // check bytes
	if ident := r.lengthPrefixed(); r.err == nil && string(ident) != sshKeyType {
		return nil, apperrors.ParseError{Message: "embedded private key format not supported"}
	}
	n := r.mpint()
	e := r.mpint()
	d := r.mpint()
	coefficient := r.mpint()
	p := r.mpint()
	q := r.mpint()
	if r.err != nil {
		return nil, r.err
	}

	key := &Key{N: n, E: e, D: d, P: p, Q: q}
	one := mpa.New[uint64](1)
	phi := p.Sub(one).Mul(q.Sub(one))
	if !d.Equal(mpa.ModularInverse(e, phi)) {
		return nil, apperrors.ValidationError{Field: "privateExponent", Message: "d != e^-1 mod (p-1)(q-1)"}
	}
	if err := key.Validate(nil, nil, coefficient, mrSteps); err != nil {
		return nil, err
	}
	return key, nil
}
