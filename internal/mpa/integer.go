package mpa

// Integer is an arbitrary-precision sign-magnitude integer over limbs of
// type W. The limb slice is little-endian and always trimmed to the most
// significant non-zero limb; the value zero is a single zero limb and is
// never negative.
type Integer[W Word] struct {
	words []W
	neg   bool
}

// New returns an Integer with the given value.
func New[W Word](n int64) *Integer[W] {
	neg := n < 0
	mag := uint64(n)
	if neg {
		mag = uint64(-n)
	}
	b := wordBits[W]()
	words := []W{W(mag)}
	for mag >>= b; mag != 0; mag >>= b {
		words = append(words, W(mag))
	}
	return &Integer[W]{words: words, neg: neg}
}

// FromWords adopts the given limb slice with the given sign, normalizing
// the head and the sign of zero. The slice must not be used by the caller
// afterwards.
func FromWords[W Word](words []W, neg bool) *Integer[W] {
	if len(words) == 0 {
		words = []W{0}
	}
	head := findHead(words, len(words)-1)
	words = words[:head+1]
	if head == 0 && words[0] == 0 {
		neg = false
	}
	return &Integer[W]{words: words, neg: neg}
}

// normalized trims a freshly computed buffer to the given head and fixes
// the sign of zero.
func normalized[W Word](words []W, head int, neg bool) *Integer[W] {
	words = words[:head+1]
	if head == 0 && words[0] == 0 {
		neg = false
	}
	return &Integer[W]{words: words, neg: neg}
}

// Copy returns a deep copy of x.
func (x *Integer[W]) Copy() *Integer[W] {
	words := make([]W, len(x.words))
	copy(words, x.words)
	return &Integer[W]{words: words, neg: x.neg}
}

// Head returns the index of the most significant non-zero limb (0 for zero).
func (x *Integer[W]) Head() int { return len(x.words) - 1 }

// WordCount returns the number of limbs in use.
func (x *Integer[W]) WordCount() int { return len(x.words) }

// Word returns the limb at the given index; indices past the head read as 0.
func (x *Integer[W]) Word(i int) W {
	if i < len(x.words) {
		return x.words[i]
	}
	return 0
}

// Bit returns the bit at the given index; indices past the bit count read
// as 0.
func (x *Integer[W]) Bit(i uint) bool {
	w := int(i / wordBits[W]())
	if w >= len(x.words) {
		return false
	}
	return x.words[w]&(W(1)<<(i&(wordBits[W]()-1))) != 0
}

// BitCount returns the number of significant bits of the magnitude.
// Zero has bit count 0.
func (x *Integer[W]) BitCount() uint {
	return uint(len(x.words))*wordBits[W]() - leadingZeroBits(x.words[len(x.words)-1])
}

// IsZero reports whether x is zero.
func (x *Integer[W]) IsZero() bool { return x.words[len(x.words)-1] == 0 }

// IsNegative reports whether x is negative.
func (x *Integer[W]) IsNegative() bool { return x.neg }

// IsOdd reports whether x is odd.
func (x *Integer[W]) IsOdd() bool { return x.words[0]&1 != 0 }

// IsEven reports whether x is even.
func (x *Integer[W]) IsEven() bool { return !x.IsOdd() }

// Sign returns -1, 0 or +1.
func (x *Integer[W]) Sign() int {
	if x.IsZero() {
		return 0
	}
	if x.neg {
		return -1
	}
	return 1
}

// Neg returns -x. Negating zero yields zero.
func (x *Integer[W]) Neg() *Integer[W] {
	out := x.Copy()
	if !out.IsZero() {
		out.neg = !x.neg
	}
	return out
}

// Abs returns |x|.
func (x *Integer[W]) Abs() *Integer[W] {
	out := x.Copy()
	out.neg = false
	return out
}

// Cmp compares x and y, returning -1, 0 or +1.
func (x *Integer[W]) Cmp(y *Integer[W]) int {
	if x.neg != y.neg {
		if x.neg {
			return -1
		}
		return 1
	}
	mag := 0
	switch {
	case x.Head() > y.Head():
		mag = 1
	case x.Head() < y.Head():
		mag = -1
	default:
		for i := x.Head(); i >= 0; i-- {
			if x.words[i] != y.words[i] {
				if x.words[i] > y.words[i] {
					mag = 1
				} else {
					mag = -1
				}
				break
			}
		}
	}
	if x.neg {
		return -mag
	}
	return mag
}

// Equal reports whether x == y.
func (x *Integer[W]) Equal(y *Integer[W]) bool { return x.Cmp(y) == 0 }

// addMagnitudes computes |x| + |y| into a fresh buffer and returns it with
// the sign of x (the caller has already decided the sign dispatch).
func addMagnitudes[W Word](x, y *Integer[W], neg bool) *Integer[W] {
	bigger, smaller := x, y
	if y.Head() > x.Head() {
		bigger, smaller = y, x
	}
	out := make([]W, bigger.Head()+2)
	addWords(bigger.words, smaller.words, out)
	head := bigger.Head()
	if out[head+1] != 0 {
		head++
	}
	return normalized(out, head, neg)
}

// subMagnitudes computes the magnitude difference of x and y into a fresh
// buffer; the result takes signIfXBigger when |x| >= |y| and its inverse
// otherwise.
func subMagnitudes[W Word](x, y *Integer[W], signIfXBigger bool) *Integer[W] {
	xGeq := absGeq(x.words, y.words, x.Head(), y.Head())
	bigger, smaller := x, y
	if !xGeq {
		bigger, smaller = y, x
	}
	out := make([]W, bigger.Head()+2)
	head := subtractWords(bigger.words, smaller.words, bigger.Head(), smaller.Head(), out)
	neg := signIfXBigger
	if !xGeq {
		neg = !signIfXBigger
	}
	return normalized(out, head, neg)
}

// Add returns x + y.
func (x *Integer[W]) Add(y *Integer[W]) *Integer[W] {
	if x.neg == y.neg {
		return addMagnitudes(x, y, x.neg)
	}
	return subMagnitudes(x, y, x.neg)
}

// Sub returns x - y.
func (x *Integer[W]) Sub(y *Integer[W]) *Integer[W] {
	if x.neg != y.neg {
		return addMagnitudes(x, y, x.neg)
	}
	return subMagnitudes(x, y, x.neg)
}

// Mul returns x * y.
func (x *Integer[W]) Mul(y *Integer[W]) *Integer[W] {
	lsize, rsize := x.WordCount(), y.WordCount()
	out := make([]W, lsize+rsize)
	sc := acquireScratch[W]()
	if x == y || (&x.words[0] == &y.words[0] && lsize == rsize) {
		karatsubaSqr(sc, x.words, lsize, out)
	} else {
		karatsubaMul(sc, x.words, y.words, lsize, rsize, out)
	}
	releaseScratch(sc)
	head := findHead(out, lsize+rsize-1)
	return normalized(out, head, x.neg != y.neg)
}

// Div returns the quotient of x / y, truncated toward zero.
// Division by zero is a caller error, as with the built-in integer types.
func (x *Integer[W]) Div(y *Integer[W]) *Integer[W] {
	lHead, rHead := x.Head(), y.Head()
	K := lHead + 5
	out := make([]W, K)
	if rHead > lHead {
		return normalized(out, 0, false)
	}
	sc := acquireScratch[W]()
	workspace := sc.divmodWorkspace(3 * K)
	head := divmod(x.words, lHead, y.words, rHead, out, workspace, K, false)
	releaseScratch(sc)
	return normalized(out, head, x.neg != y.neg)
}

// Mod returns x mod y in [0, |y|), the non-negative residue. For negative
// x a non-zero magnitude remainder is subtracted from |y| to land in range.
func (x *Integer[W]) Mod(y *Integer[W]) *Integer[W] {
	rem := magnitudeRemainder(x, y)
	if !x.neg || rem.IsZero() {
		return rem
	}
	return y.Abs().Sub(rem)
}

// magnitudeRemainder returns |x| mod |y|.
func magnitudeRemainder[W Word](x, y *Integer[W]) *Integer[W] {
	lHead, rHead := x.Head(), y.Head()
	K := lHead + 5
	out := make([]W, K)
	if rHead > lHead {
		copy(out, x.words)
		return normalized(out, lHead, false)
	}
	sc := acquireScratch[W]()
	workspace := sc.divmodWorkspace(3 * K)
	head := divmod(x.words, lHead, y.words, rHead, out, workspace, K, true)
	releaseScratch(sc)
	return normalized(out, head, false)
}

// DivMod returns both the truncated quotient and the non-negative residue.
func (x *Integer[W]) DivMod(y *Integer[W]) (q, r *Integer[W]) {
	return x.Div(y), x.Mod(y)
}
