// Package e2e drives the application through its public entrypoints the
// way the binary would, with real files in a temp directory.
package e2e

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/crypto/ssh"

	"github.com/dgeis/mpa/internal/app"
)

func runApp(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var out, errOut bytes.Buffer
	application, err := app.New(append([]string{"rsatool"}, args...), &errOut)
	if err != nil {
		return 1, out.String(), errOut.String()
	}
	code := application.Run(context.Background(), &out)
	return code, out.String(), errOut.String()
}

func TestGenerateThenParse(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "example.rsa")

	code, out, errOut := runApp(t, "generate", "512", "-out", base, "-quiet", "-no-color")
	if code != 0 {
		t.Fatalf("generate exit code = %d, stderr: %s", code, errOut)
	}
	_ = out

	for _, f := range []string{base, base + ".pub"} {
		if _, err := os.Stat(f); err != nil {
			t.Fatalf("expected key file %s: %v", f, err)
		}
	}

	code, out, errOut = runApp(t, "parse", base, "-no-color")
	if code != 0 {
		t.Fatalf("parse exit code = %d, stderr: %s", code, errOut)
	}
	if !strings.Contains(out, "RSA PRIVATE KEY DETAIL") || !strings.Contains(out, "modulus") {
		t.Errorf("parse output missing key detail:\n%s", out)
	}

	code, out, _ = runApp(t, "parse", base+".pub", "-no-color")
	if code != 0 {
		t.Fatalf("public parse exit code = %d", code)
	}
	if !strings.Contains(out, "RSA PUBLIC KEY DETAIL") {
		t.Errorf("public parse output missing detail:\n%s", out)
	}
}

func TestGeneratedPublicKeyIsValidAuthorizedKey(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "id.rsa")

	if code, _, errOut := runApp(t, "generate", "512", "-out", base, "-quiet"); code != 0 {
		t.Fatalf("generate failed: %s", errOut)
	}
	line, err := os.ReadFile(base + ".pub")
	if err != nil {
		t.Fatal(err)
	}
	key, _, _, _, err := ssh.ParseAuthorizedKey(line)
	if err != nil {
		t.Fatalf("ssh.ParseAuthorizedKey rejects generated key: %v", err)
	}
	if key.Type() != ssh.KeyAlgoRSA {
		t.Errorf("key type = %s", key.Type())
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.key")
	if err := os.WriteFile(bad, []byte("garbage\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if code, _, _ := runApp(t, "parse", bad); code == 0 {
		t.Error("parsing garbage exited 0")
	}
	if code, _, _ := runApp(t, "parse", filepath.Join(dir, "missing")); code == 0 {
		t.Error("parsing a missing file exited 0")
	}
}

func TestUsageErrors(t *testing.T) {
	if code, _, _ := runApp(t, "generate", "128"); code == 0 {
		t.Error("short bitlength exited 0")
	}
	if code, _, _ := runApp(t); code == 0 {
		t.Error("missing subcommand exited 0")
	}
}

func TestTamperedPrivateKeyFailsValidation(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "k.rsa")
	if code, _, errOut := runApp(t, "generate", "512", "-out", base, "-quiet"); code != 0 {
		t.Fatalf("generate failed: %s", errOut)
	}
	raw, err := os.ReadFile(base)
	if err != nil {
		t.Fatal(err)
	}
	// Flip a character in the base64 body.
	lines := strings.Split(string(raw), "\n")
	body := []byte(lines[2])
	if body[10] == 'A' {
		body[10] = 'B'
	} else {
		body[10] = 'A'
	}
	lines[2] = string(body)
	if err := os.WriteFile(base, []byte(strings.Join(lines, "\n")), 0o600); err != nil {
		t.Fatal(err)
	}
	if code, _, _ := runApp(t, "parse", base); code == 0 {
		t.Error("tampered private key exited 0")
	}
}
