// Package mpa implements multi-precision signed integer arithmetic on
// little-endian limb vectors, parameterized over the limb width (16, 32 or
// 64 bits). It provides the operations needed for RSA key handling:
// Karatsuba multiplication and squaring, normalizing long division with
// two-limb quotient estimation, Barrett-reduced sliding-window modular
// exponentiation, extended Euclidean GCD, Miller-Rabin primality testing
// backed by a small-prime sieve, and cryptographically seeded random
// integer and prime generation.
//
// Integers are sign-magnitude: a limb slice trimmed to its most significant
// non-zero limb plus a sign flag. Zero is canonically non-negative. The
// arithmetic cores run on scratch buffers drawn from a pooled scratch
// context so that hot paths stay allocation-free.
package mpa
