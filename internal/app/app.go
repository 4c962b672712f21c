// Package app wires configuration, logging and the key operations into the
// runnable application.
package app

import (
	"context"
	"errors"
	"flag"
	"io"
	"os/signal"
	"syscall"

	"github.com/dgeis/mpa/internal/config"
	apperrors "github.com/dgeis/mpa/internal/errors"
	"github.com/dgeis/mpa/internal/logging"
	"github.com/dgeis/mpa/internal/ui"
)

// Version is the application version, overridable at link time.
var Version = "dev"

// Application represents the rsatool application instance.
type Application struct {
	Config    config.AppConfig
	Logger    logging.Logger
	ErrWriter io.Writer
}

// AppOption configures an Application during construction.
type AppOption func(*Application)

// WithLogger sets a custom logger for the application.
func WithLogger(l logging.Logger) AppOption {
	return func(a *Application) { a.Logger = l }
}

// New creates a new Application instance by parsing command-line arguments.
func New(args []string, errWriter io.Writer, opts ...AppOption) (*Application, error) {
	app := &Application{ErrWriter: errWriter}
	for _, opt := range opts {
		opt(app)
	}
	if app.Logger == nil {
		app.Logger = logging.NewDefaultLogger()
	}

	programName := "rsatool"
	var cmdArgs []string
	if len(args) > 0 {
		programName = args[0]
		cmdArgs = args[1:]
	}

	cfg, err := config.ParseConfig(programName, cmdArgs, errWriter)
	if err != nil {
		return nil, err
	}
	app.Config = cfg
	return app, nil
}

// Run executes the application based on the configured mode and returns
// the process exit code.
func (a *Application) Run(ctx context.Context, out io.Writer) int {
	ui.InitTheme(a.Config.NoColor)

	ctx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()
	if a.Config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.Config.Timeout)
		defer cancel()
	}

	var err error
	switch a.Config.Mode {
	case config.ModeGenerate:
		err = a.runGenerate(ctx, out)
	case config.ModeParse:
		err = a.runParse(out)
	default:
		err = apperrors.NewConfigError("unknown mode %q", a.Config.Mode)
	}
	if err != nil {
		a.Logger.Error("operation failed", logging.Err(err))
		return apperrors.ExitCodeFor(err)
	}
	return apperrors.ExitSuccess
}

// IsHelpError checks if the error is a help flag error (--help was used).
func IsHelpError(err error) bool {
	return errors.Is(err, flag.ErrHelp)
}
