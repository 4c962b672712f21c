package app

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/dgeis/mpa/internal/cli"
	"github.com/dgeis/mpa/internal/logging"
	"github.com/dgeis/mpa/internal/metrics"
	"github.com/dgeis/mpa/internal/mpa"
	"github.com/dgeis/mpa/internal/rsakey"
)

// runGenerate creates a key pair and writes the two key files.
func (a *Application) runGenerate(ctx context.Context, out io.Writer) error {
	cfg := a.Config
	a.Logger.Info("generating rsa key", logging.Int("bitlength", cfg.Bits))

	collector := metrics.NewCollector()
	if cfg.MetricsAddr != "" {
		go func() {
			if err := collector.Serve(ctx, cfg.MetricsAddr); err != nil {
				a.Logger.Warn("metrics server stopped", logging.Err(err))
			}
		}()
	}

	spin := cli.NewNoopSpinner()
	if !cfg.Quiet {
		spin = cli.NewSpinner(out)
	}
	spin.UpdateSuffix(fmt.Sprintf(" searching two %d-bit primes...", cfg.Bits/128*64))
	spin.Start()

	start := time.Now()
	key, err := rsakey.Generate(ctx, cfg.Bits, func(prime int, stats mpa.SearchStats) {
		collector.ObserveSearch(stats)
		if cfg.Verbose {
			a.Logger.Info("prime found",
				logging.Int("prime", prime),
				logging.Int("iterations", stats.Iterations),
				logging.Int("sieve_rejections", stats.SieveRejections),
				logging.Int("miller_rabin_calls", stats.MillerRabinCalls))
		}
	})
	spin.Stop()
	if err != nil {
		return err
	}

	privBytes, pubBytes, err := key.WriteFiles(cfg.OutFile)
	if err != nil {
		return err
	}
	if !cfg.Quiet {
		cli.DisplayPrivateKey(out, key)
		cli.DisplayGenerationSummary(out, cfg.OutFile, cfg.OutFile+".pub", privBytes, pubBytes, time.Since(start))
	}
	return nil
}

// runParse reads a key file, validates it and prints its components.
func (a *Application) runParse(out io.Writer) error {
	result, err := rsakey.ParseKeyFile(a.Config.File, a.Config.Steps)
	if err != nil {
		return err
	}
	if result.Private != nil {
		cli.DisplayPrivateKey(out, result.Private)
		return nil
	}
	cli.DisplayPublicKey(out, result.Public)
	return nil
}
