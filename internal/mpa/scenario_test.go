package mpa

import (
	"math/big"
	"testing"
)

// toBig converts an Integer to the math/big oracle representation.
func toBig[W Word](x *Integer[W]) *big.Int {
	b := new(big.Int).SetBytes(x.Bytes())
	if x.IsNegative() {
		b.Neg(b)
	}
	return b
}

// fromBig converts a math/big value to an Integer.
func fromBig[W Word](b *big.Int) *Integer[W] {
	out := FromBytes[W](b.Bytes())
	if b.Sign() < 0 {
		out.neg = true
	}
	return out
}

func TestSeededScenarios(t *testing.T) {
	a := Parse[uint64]("0xab123567567adeeff143565756742")
	b := Parse[uint64]("0x1234aeefdbba123231221")

	t.Run("S1 addition", func(t *testing.T) {
		want := "0xab12356768af8ddfccfd688987963"
		if got := a.Add(b).ToHex(); got != want {
			t.Errorf("Add() = %s, want %s", got, want)
		}
	})

	t.Run("S2 division", func(t *testing.T) {
		want := "0x96582653d"
		if got := a.Div(b).ToHex(); got != want {
			t.Errorf("Div() = %s, want %s", got, want)
		}
	})

	t.Run("S3 decimal rendering", func(t *testing.T) {
		want := "55515754828527398988712969445402434"
		if got := a.ToDecimal(); got != want {
			t.Errorf("ToDecimal() = %s, want %s", got, want)
		}
	})

	t.Run("S4 shift and carry", func(t *testing.T) {
		one := New[uint64](1)
		x := one.Lsh(1232)
		got := x.Sub(one).Add(one)
		if !got.Equal(x) {
			t.Errorf("(1<<1232)-1+1 = %s, want %s", got, x)
		}
	})

	t.Run("S5 modular power", func(t *testing.T) {
		base := Parse[uint64]("0x112312334534535241312312313245345345")
		exp := Parse[uint64]("0x111123123123123123123123123")
		m := Parse[uint64]("0x11797897897892312334534535241312312313245345345")
		want := "0x4d3e8ef9f877a4899d1326dd59914a33a1c472033601cc"
		if got := ModularPower(base, exp, m).ToHex(); got != want {
			t.Errorf("ModularPower() = %s, want %s", got, want)
		}
	})

	t.Run("S6 RSA public exponent inverse", func(t *testing.T) {
		p, _ := RandomPrimeStats[uint64](2)
		q, _ := RandomPrimeStats[uint64](2)
		for p.Equal(q) {
			q, _ = RandomPrimeStats[uint64](2)
		}
		one := New[uint64](1)
		phi := p.Sub(one).Mul(q.Sub(one))
		e := New[uint64](0x10001)
		inv := ModularInverse(e, phi)
		if inv.IsZero() {
			t.Skip("0x10001 shares a factor with phi for this draw")
		}
		if got := e.Mul(inv).Mod(phi); !got.Equal(one) {
			t.Errorf("(e * e^-1) mod phi = %s, want 1", got)
		}
	})

	t.Run("S7 prime product is composite", func(t *testing.T) {
		p, _ := RandomPrimeStats[uint64](2) // 16 random bytes
		q, _ := RandomPrimeStats[uint64](2)
		for p.Equal(q) {
			q, _ = RandomPrimeStats[uint64](2)
		}
		if !IsProbablyPrime(p, DefaultMillerRabinSteps) {
			t.Errorf("IsProbablyPrime(%s) = false, want true", p)
		}
		if IsProbablyPrime(p.Mul(q), DefaultMillerRabinSteps) {
			t.Errorf("IsProbablyPrime(p*q) = true, want false")
		}
	})

	t.Run("S8 extended gcd coefficients", func(t *testing.T) {
		g, s, tc := ExtendedGCD(a, b)
		if !g.Equal(New[uint64](1)) {
			t.Fatalf("gcd = %s, want 1", g)
		}
		sum := s.Mul(a).Add(tc.Mul(b))
		if !sum.Equal(New[uint64](1)) {
			t.Errorf("s*x + t*y = %s, want 1", sum)
		}
	})
}

func TestSeededScenariosAgainstOracle(t *testing.T) {
	a := Parse[uint64]("0xab123567567adeeff143565756742")
	b := Parse[uint64]("0x1234aeefdbba123231221")
	bigA, bigB := toBig(a), toBig(b)

	if got, want := toBig(a.Mul(b)), new(big.Int).Mul(bigA, bigB); got.Cmp(want) != 0 {
		t.Errorf("Mul() = %s, want %s", got, want)
	}
	if got, want := toBig(a.Mod(b)), new(big.Int).Mod(bigA, bigB); got.Cmp(want) != 0 {
		t.Errorf("Mod() = %s, want %s", got, want)
	}
	if got, want := toBig(a.Sub(b)), new(big.Int).Sub(bigA, bigB); got.Cmp(want) != 0 {
		t.Errorf("Sub() = %s, want %s", got, want)
	}
}
