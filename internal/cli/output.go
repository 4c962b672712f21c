// # Naming Conventions
//
// Functions in this package follow consistent naming patterns based on
// their behavior:
//
//   - Display* functions write formatted output to an [io.Writer].
//     They handle presentation logic and colorization.
//   - Format* functions return a formatted string without performing I/O.
//
// Package cli renders key material and progress for the terminal.
package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/dgeis/mpa/internal/rsakey"
	"github.com/dgeis/mpa/internal/ui"
)

// FormatExecutionDuration formats a time.Duration for display: it shows
// microseconds below a millisecond and milliseconds below a second.
func FormatExecutionDuration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dµs", d.Microseconds())
	} else if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return d.String()
}

// DisplayPrivateKey prints the private key components in hex.
func DisplayPrivateKey(out io.Writer, key *rsakey.Key) {
	theme := ui.Active()
	fmt.Fprintf(out, "%s<<<RSA PRIVATE KEY DETAIL START>>>%s\n\n", theme.Bold, theme.Reset)
	displayComponent(out, "modulus", key.N.ToHex())
	displayComponent(out, "prime 1", key.P.ToHex())
	displayComponent(out, "prime 2", key.Q.ToHex())
	displayComponent(out, "encryption exponent", key.E.ToHex())
	displayComponent(out, "decryption exponent", key.D.ToHex())
	fmt.Fprintf(out, "%s<<<RSA PRIVATE KEY DETAIL END>>>%s\n", theme.Bold, theme.Reset)
}

// DisplayPublicKey prints the public key components in hex.
func DisplayPublicKey(out io.Writer, key *rsakey.PublicKey) {
	theme := ui.Active()
	fmt.Fprintf(out, "%s<<<RSA PUBLIC KEY DETAIL START>>>%s\n\n", theme.Bold, theme.Reset)
	displayComponent(out, "encryption exponent", key.E.ToHex())
	displayComponent(out, "modulus", key.N.ToHex())
	fmt.Fprintf(out, "%s<<<RSA PUBLIC KEY DETAIL END>>>%s\n", theme.Bold, theme.Reset)
}

func displayComponent(out io.Writer, label, value string) {
	theme := ui.Active()
	fmt.Fprintf(out, "%s%s:%s\n%s\n\n", theme.Primary, label, theme.Reset, value)
}

// DisplayGenerationSummary prints where the key files went.
func DisplayGenerationSummary(out io.Writer, privPath, pubPath string, privBytes, pubBytes int, elapsed time.Duration) {
	theme := ui.Active()
	fmt.Fprintf(out, "%swrote private key to %s (%d bytes)%s\n", theme.Success, privPath, privBytes, theme.Reset)
	fmt.Fprintf(out, "%swrote public key to %s (%d bytes)%s\n", theme.Success, pubPath, pubBytes, theme.Reset)
	fmt.Fprintf(out, "finished in %s\n", FormatExecutionDuration(elapsed))
}
