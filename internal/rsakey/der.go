package rsakey

import (
	"bytes"
	"fmt"

	apperrors "github.com/dgeis/mpa/internal/errors"
	"github.com/dgeis/mpa/internal/mpa"
)

// PKCS#1 RSAPrivateKey:
//
//	RSAPrivateKey ::= SEQUENCE {
//	    version           Version,  -- two-prime(0)
//	    modulus           INTEGER,  -- n
//	    publicExponent    INTEGER,  -- e
//	    privateExponent   INTEGER,  -- d
//	    prime1            INTEGER,  -- p
//	    prime2            INTEGER,  -- q
//	    exponent1         INTEGER,  -- d mod (p-1)
//	    exponent2         INTEGER,  -- d mod (q-1)
//	    coefficient       INTEGER   -- q^-1 mod p
//	}

const (
	derIntegerTag  = 0x02
	derSequenceTag = 0x30
)

// derPutLength appends a DER length field in short or long form.
func derPutLength(buf *bytes.Buffer, n int) {
	switch {
	case n <= 0x7f:
		buf.WriteByte(byte(n))
	case n <= 0xff:
		buf.WriteByte(0x81)
		buf.WriteByte(byte(n))
	case n <= 0xffff:
		buf.WriteByte(0x82)
		buf.WriteByte(byte(n >> 8))
		buf.WriteByte(byte(n))
	case n <= 0xffffff:
		buf.WriteByte(0x83)
		buf.WriteByte(byte(n >> 16))
		buf.WriteByte(byte(n >> 8))
		buf.WriteByte(byte(n))
	default:
		buf.WriteByte(0x84)
		buf.WriteByte(byte(n >> 24))
		buf.WriteByte(byte(n >> 16))
		buf.WriteByte(byte(n >> 8))
		buf.WriteByte(byte(n))
	}
}

// derAppendInteger appends an INTEGER: big-endian magnitude with a zero
// byte prepended when the leading byte has its top bit set.
func derAppendInteger(buf *bytes.Buffer, x *Int) {
	b := x.Bytes()
	buf.WriteByte(derIntegerTag)
	if b[0]&0x80 != 0 {
		derPutLength(buf, len(b)+1)
		buf.WriteByte(0)
	} else {
		derPutLength(buf, len(b))
	}
	buf.Write(b)
}

// MarshalDER encodes the key as a PKCS#1 RSAPrivateKey with a two-byte
// long-form sequence length.
func (k *Key) MarshalDER() []byte {
	one := mpa.New[uint64](1)
	var body bytes.Buffer
	derAppendInteger(&body, mpa.New[uint64](0)) // version: two-prime
	derAppendInteger(&body, k.N)
	derAppendInteger(&body, k.E)
	derAppendInteger(&body, k.D)
	derAppendInteger(&body, k.P)
	derAppendInteger(&body, k.Q)
	derAppendInteger(&body, k.D.Mod(k.P.Sub(one)))
	derAppendInteger(&body, k.D.Mod(k.Q.Sub(one)))
	derAppendInteger(&body, mpa.ModularInverse(k.Q, k.P))

	out := make([]byte, 0, body.Len()+4)
	out = append(out, derSequenceTag, 0x82, byte(body.Len()>>8), byte(body.Len()))
	return append(out, body.Bytes()...)
}

// derReader walks a DER buffer; the first error sticks.
type derReader struct {
	data []byte
	off  int
	err  error
}

func (r *derReader) fail(format string, args ...any) {
	if r.err == nil {
		r.err = apperrors.ParseError{Message: fmt.Sprintf(format, args...)}
	}
}

func (r *derReader) byteAt() byte {
	if r.err != nil {
		return 0
	}
	if r.off >= len(r.data) {
		r.fail("truncated input at offset %d", r.off)
		return 0
	}
	b := r.data[r.off]
	r.off++
	return b
}

// integerLength reads an INTEGER tag and its length field.
func (r *derReader) integerLength() int {
	tag := r.byteAt()
	if r.err != nil {
		return 0
	}
	if tag != derIntegerTag {
		r.fail("expected integer tag, but received %d", tag)
		return 0
	}
	lengthTag := r.byteAt()
	if lengthTag <= 0x7f {
		return int(lengthTag)
	}
	extra := int(lengthTag - 0x80)
	if extra > 4 {
		r.fail("bad length tag %d", lengthTag)
		return 0
	}
	length := 0
	for i := 0; i < extra; i++ {
		length = length<<8 | int(r.byteAt())
	}
	return length
}

// integer reads a length-prefixed INTEGER into an Int.
func (r *derReader) integer() *Int {
	length := r.integerLength()
	if r.err != nil {
		return mpa.New[uint64](0)
	}
	if r.off+length > len(r.data) {
		r.fail("integer of %d bytes exceeds input", length)
		return mpa.New[uint64](0)
	}
	out := mpa.FromBytes[uint64](r.data[r.off : r.off+length])
	r.off += length
	return out
}

// ParseDER decodes and validates a PKCS#1 RSAPrivateKey.
func ParseDER(der []byte, mrSteps int) (*Key, error) {
	r := &derReader{data: der}
	if tag := r.byteAt(); r.err == nil && tag != derSequenceTag {
		return nil, apperrors.ParseError{Message: "bad sequence tag"}
	}
	if lt := r.byteAt(); r.err == nil && lt != 0x82 {
		return nil, apperrors.ParseError{Message: "bad sequence length type"}
	}
	seqLen := int(r.byteAt())<<8 | int(r.byteAt())

	versionLen := r.integerLength()
	if r.err == nil && (versionLen > 1 || r.byteAt() != 0) {
		return nil, apperrors.ParseError{Message: "unsupported version"}
	}
	n := r.integer()
	eLen := r.integerLength()
	if r.err == nil && eLen > 4 {
		return nil, apperrors.ParseError{Message: fmt.Sprintf("unexpected encryption exponent length %d", eLen)}
	}
	e := r.integerPayload(eLen)
	d := r.integer()
	p := r.integer()
	q := r.integer()
	exponent1 := r.integer()
	exponent2 := r.integer()
	coefficient := r.integer()
	if r.err != nil {
		return nil, r.err
	}
	if r.off != len(r.data) || r.off != seqLen+4 {
		return nil, apperrors.ParseError{Message: "bad sequence length or unexpected padding"}
	}

	key := &Key{N: n, E: e, D: d, P: p, Q: q}
	if err := key.Validate(exponent1, exponent2, coefficient, mrSteps); err != nil {
		return nil, err
	}
	return key, nil
}

// integerPayload reads length raw magnitude bytes (the length field was
// already consumed).
func (r *derReader) integerPayload(length int) *Int {
	if r.err != nil {
		return mpa.New[uint64](0)
	}
	if r.off+length > len(r.data) {
		r.fail("integer of %d bytes exceeds input", length)
		return mpa.New[uint64](0)
	}
	out := mpa.FromBytes[uint64](r.data[r.off : r.off+length])
	r.off += length
	return out
}
