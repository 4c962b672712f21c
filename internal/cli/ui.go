package cli

import (
	"io"
	"time"

	"github.com/briandowns/spinner"
)

// ProgressRefreshRate defines the refresh frequency of the spinner.
const ProgressRefreshRate = 200 * time.Millisecond

// Spinner is an interface that abstracts the behavior of a terminal
// spinner, decoupling the progress display from a specific implementation
// and making it testable.
type Spinner interface {
	// Start begins the spinner animation.
	Start()
	// Stop halts the spinner animation.
	Stop()
	// UpdateSuffix sets the text that is displayed after the spinner.
	UpdateSuffix(suffix string)
}

// realSpinner wraps spinner.Spinner to implement the Spinner interface.
type realSpinner struct {
	s *spinner.Spinner
}

// Start begins the spinner animation.
func (rs *realSpinner) Start() { rs.s.Start() }

// Stop halts the spinner animation.
func (rs *realSpinner) Stop() { rs.s.Stop() }

// UpdateSuffix sets the text that is displayed after the spinner.
func (rs *realSpinner) UpdateSuffix(suffix string) { rs.s.Suffix = suffix }

// NewSpinner creates a Spinner writing to out.
func NewSpinner(out io.Writer) Spinner {
	s := spinner.New(spinner.CharSets[14], ProgressRefreshRate, spinner.WithWriter(out))
	return &realSpinner{s: s}
}

// noopSpinner is used in quiet mode.
type noopSpinner struct{}

func (noopSpinner) Start()              {}
func (noopSpinner) Stop()               {}
func (noopSpinner) UpdateSuffix(string) {}

// NewNoopSpinner returns a Spinner that renders nothing.
func NewNoopSpinner() Spinner { return noopSpinner{} }
