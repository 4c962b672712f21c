// Package rsakey generates, validates and serializes two-prime RSA private
// keys and their SSH public counterparts on top of the mpa integer core.
package rsakey

import (
	"context"

	"golang.org/x/sync/errgroup"

	apperrors "github.com/dgeis/mpa/internal/errors"
	"github.com/dgeis/mpa/internal/mpa"
)

// Int is the limb instantiation the RSA layer works with.
type Int = mpa.Integer[uint64]

const (
	// MinBits is the smallest accepted key size.
	MinBits = 512

	bitsInWord = 64

	// DefaultPublicExponent is the starting public exponent; it is
	// decremented until coprime with the Carmichael totient.
	DefaultPublicExponent = 0x10001
)

// Key holds a two-prime RSA private key.
type Key struct {
	N *Int // modulus, p*q
	E *Int // public exponent
	D *Int // private exponent, e^-1 mod lcm(p-1, q-1)
	P *Int // prime 1
	Q *Int // prime 2
}

// PublicKey holds the public half.
type PublicKey struct {
	E *Int
	N *Int
}

// ProgressFunc receives the search telemetry of each generated prime.
type ProgressFunc func(prime int, stats mpa.SearchStats)

// Generate produces a key of the given bit length rounded down to a
// multiple of 128: each prime has bits/128 64-bit limbs. The two primes are
// searched concurrently, one on a second goroutine, and the search is
// restarted while they collide. The private exponent is derived from the
// Carmichael totient lcm(p-1, q-1).
func Generate(ctx context.Context, bits int, onPrime ProgressFunc) (*Key, error) {
	if bits < MinBits {
		return nil, apperrors.ValidationError{
			Field:   "bitlength",
			Message: "must be at least 512",
		}
	}
	wordcount := bits / (2 * bitsInWord)

	var p, q *Int
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		g, _ := errgroup.WithContext(ctx)
		g.Go(func() error {
			prime, stats := mpa.RandomPrimeStats[uint64](wordcount)
			p = prime
			if onPrime != nil {
				onPrime(1, stats)
			}
			return nil
		})
		prime, stats := mpa.RandomPrimeStats[uint64](wordcount)
		q = prime
		if onPrime != nil {
			onPrime(2, stats)
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		if !p.Equal(q) {
			break
		}
	}

	one := mpa.New[uint64](1)
	n := p.Mul(q)
	lambda := mpa.LCM(p.Sub(one), q.Sub(one))
	e := mpa.New[uint64](DefaultPublicExponent)
	d := mpa.ModularInverse(e, lambda)
	for d.IsZero() { // e and lambda share a factor; step e down
		e = e.Sub(one)
		d = mpa.ModularInverse(e, lambda)
	}
	return &Key{N: n, E: e, D: d, P: p, Q: q}, nil
}

// Validate checks the component relations of a parsed key: the modulus
// factors into the two primes, both primes pass Miller-Rabin, and the CRT
// values derive from d. It returns the first violated relation.
func (k *Key) Validate(exponent1, exponent2, coefficient *Int, mrSteps int) error {
	one := mpa.New[uint64](1)
	if !k.P.Mul(k.Q).Equal(k.N) {
		return apperrors.ValidationError{Field: "modulus", Message: "modulus does not match p and q"}
	}
	if !mpa.IsProbablyPrime(k.P, mrSteps) || !mpa.IsProbablyPrime(k.Q, mrSteps) {
		return apperrors.ValidationError{Field: "primes", Message: "p or q are not prime"}
	}
	if exponent1 != nil && !k.D.Mod(k.P.Sub(one)).Equal(exponent1) {
		return apperrors.ValidationError{Field: "exponent1", Message: "exponent1 != d mod (p-1)"}
	}
	if exponent2 != nil && !k.D.Mod(k.Q.Sub(one)).Equal(exponent2) {
		return apperrors.ValidationError{Field: "exponent2", Message: "exponent2 != d mod (q-1)"}
	}
	if coefficient != nil && !mpa.ModularInverse(k.Q, k.P).Equal(coefficient) {
		return apperrors.ValidationError{Field: "coefficient", Message: "coefficient != q^-1 mod p"}
	}
	return nil
}
