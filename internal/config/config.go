// Package config holds the application configuration: CLI flags parsed
// per subcommand, with environment variable overrides applied for flags
// that were not set explicitly.
package config

import (
	"flag"
	"fmt"
	"io"
	"strconv"
	"time"

	apperrors "github.com/dgeis/mpa/internal/errors"
)

// EnvPrefix is prepended to every environment override key.
const EnvPrefix = "RSATOOL_"

// Mode selects the application operation.
type Mode string

const (
	// ModeGenerate creates a new key pair.
	ModeGenerate Mode = "generate"
	// ModeParse reads and validates an existing key file.
	ModeParse Mode = "parse"
)

// AppConfig carries the full application configuration.
type AppConfig struct {
	// Mode is the selected subcommand.
	Mode Mode
	// Bits is the requested key size for generate.
	Bits int
	// File is the key file path for parse.
	File string
	// OutFile is the private key output path; the public key gets a
	// ".pub" suffix next to it.
	OutFile string
	// Steps is the Miller-Rabin trial count used when validating parsed
	// keys.
	Steps int
	// Quiet suppresses progress output.
	Quiet bool
	// NoColor disables colored terminal output.
	NoColor bool
	// Verbose enables prime-search telemetry logging.
	Verbose bool
	// MetricsAddr, when non-empty, serves prometheus metrics on this
	// address while generating.
	MetricsAddr string
	// Timeout is a deadline on the run's context; zero means no limit.
	// generate checks it before each prime-search round and does not
	// interrupt a search in progress; parse does not consult it.
	Timeout time.Duration
}

// Defaults returns the built-in configuration.
func Defaults() AppConfig {
	return AppConfig{
		OutFile: "example.rsa",
		Steps:   32,
	}
}

// usage is printed on missing or unknown subcommands.
func usage(w io.Writer, programName string) {
	fmt.Fprintf(w, "USAGE: %s generate <bitlength> [flags]\n", programName)
	fmt.Fprintf(w, "          generate an RSA key of 'bitlength' bits rounded down to a multiple of 128 (minimum 512)\n")
	fmt.Fprintf(w, "       %s parse <filepath> [flags]\n", programName)
	fmt.Fprintf(w, "          parse an RSA public or private key file\n")
}

// ParseConfig parses the command line into an AppConfig. The first
// argument selects the subcommand; flags follow the positional argument.
func ParseConfig(programName string, args []string, errWriter io.Writer) (AppConfig, error) {
	cfg := Defaults()
	if len(args) < 2 {
		usage(errWriter, programName)
		return cfg, apperrors.NewConfigError("missing subcommand or argument")
	}

	fs := flag.NewFlagSet(programName, flag.ContinueOnError)
	fs.SetOutput(errWriter)
	fs.StringVar(&cfg.OutFile, "out", cfg.OutFile, "private key output path (public key gets .pub)")
	fs.IntVar(&cfg.Steps, "steps", cfg.Steps, "Miller-Rabin rounds for key validation")
	fs.BoolVar(&cfg.Quiet, "quiet", false, "suppress progress output")
	fs.BoolVar(&cfg.NoColor, "no-color", false, "disable colored output")
	fs.BoolVar(&cfg.Verbose, "verbose", false, "log prime search telemetry")
	fs.StringVar(&cfg.MetricsAddr, "metrics", "", "serve prometheus metrics on this address while generating")
	fs.DurationVar(&cfg.Timeout, "timeout", 0, "deadline checked before each prime-search round of generate (0 = no limit)")

	switch args[0] {
	case string(ModeGenerate):
		cfg.Mode = ModeGenerate
		bits, err := strconv.Atoi(args[1])
		if err != nil {
			return cfg, apperrors.NewConfigError("bitlength %q is not a number", args[1])
		}
		cfg.Bits = bits
	case string(ModeParse):
		cfg.Mode = ModeParse
		cfg.File = args[1]
	default:
		usage(errWriter, programName)
		return cfg, apperrors.NewConfigError("unknown subcommand %q", args[0])
	}

	if err := fs.Parse(args[2:]); err != nil {
		return cfg, err
	}
	applyEnvOverrides(&cfg, fs)

	if cfg.Mode == ModeGenerate && cfg.Bits < 512 {
		return cfg, apperrors.NewConfigError("provided bitlength %d is too short, must be at least 512", cfg.Bits)
	}
	if cfg.Steps < 1 {
		return cfg, apperrors.NewConfigError("steps must be positive")
	}
	return cfg, nil
}
