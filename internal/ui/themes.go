package ui

import (
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Theme defines a color scheme for UI output. Each field contains an ANSI
// escape code for the corresponding color category.
type Theme struct {
	// Name is the identifier of the theme.
	Name string
	// Primary is the main accent color for important elements.
	Primary string
	// Secondary is used for less prominent elements.
	Secondary string
	// Success indicates positive outcomes or completed operations.
	Success string
	// Warning is used for caution messages or non-critical issues.
	Warning string
	// Error indicates failures or critical issues.
	Error string
	// Bold is the escape code for bold text.
	Bold string
	// Reset clears all formatting.
	Reset string
}

var (
	// DarkTheme is optimized for dark terminal backgrounds.
	DarkTheme = Theme{
		Name:      "dark",
		Primary:   "\033[38;5;39m",  // Bright blue
		Secondary: "\033[38;5;245m", // Grey
		Success:   "\033[38;5;82m",  // Bright green
		Warning:   "\033[38;5;220m", // Yellow
		Error:     "\033[38;5;196m", // Red
		Bold:      "\033[1m",
		Reset:     "\033[0m",
	}

	// LightTheme is optimized for light terminal backgrounds.
	LightTheme = Theme{
		Name:      "light",
		Primary:   "\033[38;5;27m",  // Dark blue
		Secondary: "\033[38;5;240m", // Dark grey
		Success:   "\033[38;5;28m",  // Dark green
		Warning:   "\033[38;5;130m", // Orange
		Error:     "\033[38;5;124m", // Dark red
		Bold:      "\033[1m",
		Reset:     "\033[0m",
	}

	// PlainTheme carries no escape codes at all.
	PlainTheme = Theme{Name: "plain"}
)

var (
	themeMu sync.RWMutex
	active  = DarkTheme
)

// InitTheme selects the active theme. With noColor, or when stdout is not
// a terminal, all styling is disabled; otherwise the terminal background
// is probed to pick the dark or light palette.
func InitTheme(noColor bool) {
	themeMu.Lock()
	defer themeMu.Unlock()
	if noColor || os.Getenv("NO_COLOR") != "" {
		active = PlainTheme
		return
	}
	if fi, err := os.Stdout.Stat(); err != nil || fi.Mode()&os.ModeCharDevice == 0 {
		active = PlainTheme
		return
	}
	if lipgloss.HasDarkBackground() {
		active = DarkTheme
	} else {
		active = LightTheme
	}
}

// Active returns the currently selected theme.
func Active() Theme {
	themeMu.RLock()
	defer themeMu.RUnlock()
	return active
}
