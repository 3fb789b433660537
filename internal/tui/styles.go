// Package tui provides terminal output components for remedy.
//
// The package centralizes Lip Gloss styles so status output looks the same
// across commands. All colors use AdaptiveColor for light/dark terminal
// support, and every status display keeps triple redundancy: icon + color
// + text.
//
// Call CheckNoColor() at the start of commands to respect the NO_COLOR
// environment variable. Colors are also disabled when TERM=dumb.
package tui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/mrz1836/remedy/internal/constants"
)

//nolint:gochecknoglobals // Intentional package-level constants for styling API
var (
	// ColorPrimary is blue, used for active states and primary information.
	ColorPrimary = lipgloss.AdaptiveColor{Light: "#0087AF", Dark: "#00D7FF"}

	// ColorSuccess is green, used for recovered pipelines and completed runs.
	ColorSuccess = lipgloss.AdaptiveColor{Light: "#008700", Dark: "#00FF87"}

	// ColorWarning is yellow, used for warnings and attention-required states.
	ColorWarning = lipgloss.AdaptiveColor{Light: "#AF8700", Dark: "#FFD700"}

	// ColorError is red, used for failed and escalated runs.
	ColorError = lipgloss.AdaptiveColor{Light: "#AF0000", Dark: "#FF5F5F"}

	// ColorMuted is gray, used for dim/inactive states and secondary text.
	ColorMuted = lipgloss.AdaptiveColor{Light: "#585858", Dark: "#6C6C6C"}
)

// OutputStyles holds common output styles.
type OutputStyles struct {
	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Info    lipgloss.Style
	Dim     lipgloss.Style
}

// NewOutputStyles creates common output styles using AdaptiveColor for
// light/dark terminal support.
func NewOutputStyles() *OutputStyles {
	return &OutputStyles{
		Success: lipgloss.NewStyle().
			Foreground(ColorSuccess).
			Bold(true),
		Error: lipgloss.NewStyle().
			Foreground(ColorError).
			Bold(true),
		Warning: lipgloss.NewStyle().
			Foreground(ColorWarning),
		Info: lipgloss.NewStyle().
			Foreground(ColorPrimary),
		Dim: lipgloss.NewStyle().
			Foreground(ColorMuted),
	}
}

// CheckNoColor respects the NO_COLOR environment variable.
// Call this at the start of commands that output styled text.
func CheckNoColor() {
	if !HasColorSupport() {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}

// HasColorSupport returns true if the terminal supports colors.
// Returns false if NO_COLOR is set (any value including empty string) or
// TERM=dumb. This follows the NO_COLOR standard: https://no-color.org/
func HasColorSupport() bool {
	if _, exists := os.LookupEnv("NO_COLOR"); exists {
		return false
	}
	if os.Getenv("TERM") == "dumb" {
		return false
	}
	return true
}

// SessionStatusColors returns the semantic color definitions for session
// statuses.
func SessionStatusColors() map[constants.SessionStatus]lipgloss.AdaptiveColor {
	return map[constants.SessionStatus]lipgloss.AdaptiveColor{
		// Active states - Blue
		constants.SessionStatusPending:     {Light: "#0087AF", Dark: "#00D7FF"},
		constants.SessionStatusMonitoring:  {Light: "#0087AF", Dark: "#00D7FF"},
		constants.SessionStatusFixing:      {Light: "#0087AF", Dark: "#00D7FF"},
		constants.SessionStatusRedeploying: {Light: "#0087AF", Dark: "#00D7FF"},

		// Waiting - Yellow
		constants.SessionStatusWaiting: {Light: "#D7AF00", Dark: "#FFD700"},

		// Success - Green
		constants.SessionStatusSucceeded: {Light: "#00875F", Dark: "#00FF87"},

		// Terminal failures - Red
		constants.SessionStatusFailed:    {Light: "#AF0000", Dark: "#FF5F5F"},
		constants.SessionStatusEscalated: {Light: "#AF0000", Dark: "#FF5F5F"},
	}
}

// SessionStatusIcon returns the icon/symbol for a given session status.
// Used for visual status indicators in status displays.
func SessionStatusIcon(status constants.SessionStatus) string {
	icons := map[constants.SessionStatus]string{
		constants.SessionStatusPending:     "○", // Empty circle - waiting to start
		constants.SessionStatusMonitoring:  "●", // Filled circle - active
		constants.SessionStatusFixing:      "⟳", // Rotating - in progress
		constants.SessionStatusRedeploying: "⟳", // Rotating - in progress
		constants.SessionStatusWaiting:     "◌", // Dashed circle - backing off
		constants.SessionStatusSucceeded:   "✓", // Checkmark - recovered
		constants.SessionStatusFailed:      "✗", // X mark - failed
		constants.SessionStatusEscalated:   "⚠", // Warning - operator attention
	}
	if icon, ok := icons[status]; ok {
		return icon
	}
	return "?"
}

// FormatStatusWithIcon formats a session status with its icon and text for
// triple redundancy. Color is applied via Lip Gloss styles when rendering;
// this function provides icon + text.
func FormatStatusWithIcon(status constants.SessionStatus, text string) string {
	return SessionStatusIcon(status) + " " + text
}
