package rsakey

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"

	apperrors "github.com/dgeis/mpa/internal/errors"
	"github.com/dgeis/mpa/internal/mpa"
)

// ssh-rsa public key wire format: a length-prefixed list of the string
// "ssh-rsa" followed by the mpints e and n. An mpint is big-endian with a
// zero byte prepended when the top bit of the first byte is set.

const sshKeyType = "ssh-rsa"

// DefaultComment is appended to generated authorized-key lines.
const DefaultComment = "generated-by-mpa"

// appendString appends a u32 length-prefixed byte string.
func appendString(buf *bytes.Buffer, s []byte) {
	var l [4]byte
	binary.BigEndian.PutUint32(l[:], uint32(len(s)))
	buf.Write(l[:])
	buf.Write(s)
}

// appendMpint appends a u32 length-prefixed mpint.
func appendMpint(buf *bytes.Buffer, x *Int) {
	b := x.Bytes()
	if b[0]&0x80 != 0 {
		b = append([]byte{0}, b...)
	}
	appendString(buf, b)
}

// MarshalSSHWire returns the ssh-rsa wire blob for the public half.
func (k *Key) MarshalSSHWire() []byte {
	return marshalSSHWire(k.E, k.N)
}

// MarshalSSHWire returns the ssh-rsa wire blob.
func (pk *PublicKey) MarshalSSHWire() []byte {
	return marshalSSHWire(pk.E, pk.N)
}

func marshalSSHWire(e, n *Int) []byte {
	var buf bytes.Buffer
	appendString(&buf, []byte(sshKeyType))
	appendMpint(&buf, e)
	appendMpint(&buf, n)
	return buf.Bytes()
}

// AuthorizedKeyLine renders the one-line public key file format:
// "ssh-rsa <base64 wire> <comment>\n".
func (k *Key) AuthorizedKeyLine(comment string) []byte {
	blob := base64.StdEncoding.EncodeToString(k.MarshalSSHWire())
	return []byte(sshKeyType + " " + blob + " " + comment + "\n")
}

// wireReader walks an SSH wire buffer; the first error sticks.
type wireReader struct {
	data []byte
	off  int
	err  error
}

func (r *wireReader) fail(msg string) {
	if r.err == nil {
		r.err = apperrors.ParseError{Message: msg}
	}
}

func (r *wireReader) u32() int {
	if r.err != nil {
		return 0
	}
	if r.off+4 > len(r.data) {
		r.fail("truncated length field")
		return 0
	}
	v := binary.BigEndian.Uint32(r.data[r.off:])
	r.off += 4
	return int(v)
}

func (r *wireReader) bytes(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || r.off+n > len(r.data) {
		r.fail("truncated field")
		return nil
	}
	b := r.data[r.off : r.off+n]
	r.off += n
	return b
}

func (r *wireReader) lengthPrefixed() []byte {
	return r.bytes(r.u32())
}

func (r *wireReader) mpint() *Int {
	return mpa.FromBytes[uint64](r.lengthPrefixed())
}

func (r *wireReader) skip(n int) {
	r.bytes(n)
}

// ParseSSHWire decodes an ssh-rsa public key wire blob. Trailing bytes are
// rejected.
func ParseSSHWire(blob []byte) (*PublicKey, error) {
	r := &wireReader{data: blob}
	if ident := r.lengthPrefixed(); r.err == nil && string(ident) != sshKeyType {
		return nil, apperrors.ParseError{Message: "not an ssh-rsa key"}
	}
	e := r.mpint()
	n := r.mpint()
	if r.err != nil {
		return nil, r.err
	}
	if r.off != len(r.data) {
		return nil, apperrors.ParseError{Message: "trailing bytes after public key"}
	}
	return &PublicKey{E: e, N: n}, nil
}
