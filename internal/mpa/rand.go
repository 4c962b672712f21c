package mpa

import (
	"crypto/rand"

	"github.com/rs/zerolog/log"
)

// Random integers are filled from the platform CSPRNG at byte granularity.
// Entropy failure is unrecoverable for the callers of this package, so it
// aborts the process like an allocation failure would.

// randRead fills b from crypto/rand or aborts.
func randRead(b []byte) {
	if _, err := rand.Read(b); err != nil {
		log.Fatal().Err(err).Msg("cannot read from system entropy source")
	}
}

// Random returns a uniformly random Integer of exactly wordcount limbs.
// The top limb is forced non-zero so the head lands on the requested
// width.
func Random[W Word](wordcount int, negative bool) *Integer[W] {
	wb := wordBytes[W]()
	buf := make([]byte, wordcount*wb)
	randRead(buf)
	words := make([]W, wordcount)
	for i := 0; i < wordcount; i++ {
		var w W
		for j := 0; j < wb; j++ {
			w |= W(buf[i*wb+j]) << uint(8*j)
		}
		words[i] = w
	}
	if words[wordcount-1] == 0 {
		words[wordcount-1] = maxWord[W]()
	}
	return &Integer[W]{words: words, neg: negative}
}

// RandomBelow rejection-samples a random value in [1, |limit|). The byte
// count sampled is trimmed conservatively below the limit's bit count and
// the top sampled byte is re-rolled while zero, so the result is never
// zero; the callers (Miller-Rabin witnesses) rely on that.
func RandomBelow[W Word](limit *Integer[W]) *Integer[W] {
	unsignedLimit := limit.Abs()
	bitCount := unsignedLimit.BitCount()
	byteCount := int(bitCount / 8)
	bitsLeftOver := int(bitCount) - byteCount*8

	if byteCount <= 1 {
		b := make([]byte, 1)
		for {
			randRead(b)
			out := FromBytes[W](b)
			if b[0] != 0 && out.Cmp(unsignedLimit) < 0 {
				return out
			}
		}
	}
	byteCount -= bitsLeftOver
	if byteCount < 1 {
		byteCount = 1
	}
	buf := make([]byte, byteCount)
	for {
		randRead(buf)
		for buf[0] == 0 {
			randRead(buf[:1])
		}
		out := FromBytes[W](buf)
		if out.Cmp(unsignedLimit) < 0 {
			return out
		}
	}
}
