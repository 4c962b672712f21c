package rsakey

import (
	"context"
	"sync"
	"testing"

	"github.com/dgeis/mpa/internal/mpa"
)

var (
	testKeyOnce sync.Once
	testKey     *Key
)

// generatedTestKey returns a shared 512-bit key so the expensive
// generation runs once per test binary.
func generatedTestKey(t *testing.T) *Key {
	t.Helper()
	testKeyOnce.Do(func() {
		key, err := Generate(context.Background(), 512, nil)
		if err != nil {
			panic(err)
		}
		testKey = key
	})
	return testKey
}

// fixtureKey returns the textbook RSA example key (p=61, q=53, e=17),
// whose private exponent is derived from phi rather than lambda, matching
// what the OpenSSH parser validates against.
func fixtureKey() (*Key, *Int) {
	p := mpa.New[uint64](61)
	q := mpa.New[uint64](53)
	coefficient := mpa.New[uint64](38) // q^-1 mod p
	return &Key{
		N: mpa.New[uint64](3233),
		E: mpa.New[uint64](17),
		D: mpa.New[uint64](2753),
		P: p,
		Q: q,
	}, coefficient
}

func TestGenerateKeyRelations(t *testing.T) {
	key := generatedTestKey(t)
	one := mpa.New[uint64](1)

	if key.P.Equal(key.Q) {
		t.Fatal("p == q")
	}
	if !key.P.Mul(key.Q).Equal(key.N) {
		t.Error("n != p*q")
	}
	if got := key.N.BitCount(); got < 504 || got > 512 {
		t.Errorf("modulus bit count = %d, want close to 512", got)
	}
	lambda := mpa.LCM(key.P.Sub(one), key.Q.Sub(one))
	if got := key.E.Mul(key.D).Mod(lambda); !got.Equal(one) {
		t.Errorf("(e*d) mod lambda = %s, want 1", got)
	}
	if !mpa.IsProbablyPrime(key.P, mpa.DefaultMillerRabinSteps) ||
		!mpa.IsProbablyPrime(key.Q, mpa.DefaultMillerRabinSteps) {
		t.Error("generated primes fail Miller-Rabin")
	}
}

func TestGenerateRejectsShortKeys(t *testing.T) {
	if _, err := Generate(context.Background(), 256, nil); err == nil {
		t.Fatal("Generate(256) succeeded, want error")
	}
}

func TestGenerateReportsProgress(t *testing.T) {
	key := generatedTestKey(t)
	_ = key
	calls := 0
	_, err := Generate(context.Background(), 512, func(prime int, stats mpa.SearchStats) {
		calls++
		if prime != 1 && prime != 2 {
			t.Errorf("prime index = %d", prime)
		}
	})
	if err != nil {
		t.Fatal(err)
	}
	if calls < 2 {
		t.Errorf("progress callback ran %d times, want >= 2", calls)
	}
}

func TestValidateDetectsMismatches(t *testing.T) {
	key, coefficient := fixtureKey()
	one := mpa.New[uint64](1)
	exp1 := key.D.Mod(key.P.Sub(one))
	exp2 := key.D.Mod(key.Q.Sub(one))

	if err := key.Validate(exp1, exp2, coefficient, mpa.DefaultMillerRabinSteps); err != nil {
		t.Fatalf("valid fixture rejected: %v", err)
	}

	bad := *key
	bad.N = key.N.Add(one)
	if err := bad.Validate(exp1, exp2, coefficient, mpa.DefaultMillerRabinSteps); err == nil {
		t.Error("corrupted modulus accepted")
	}
	if err := key.Validate(exp1.Add(one), exp2, coefficient, mpa.DefaultMillerRabinSteps); err == nil {
		t.Error("corrupted exponent1 accepted")
	}
	if err := key.Validate(exp1, exp2, coefficient.Add(one), mpa.DefaultMillerRabinSteps); err == nil {
		t.Error("corrupted coefficient accepted")
	}
}
