package tui

import (
	"encoding/json"
	"fmt"
	"io"
)

// Output renders command results for either a human or a machine.
// Human-only lines (Success, Warning, Info) must stay off the JSON
// stream so piped output remains parseable.
type Output interface {
	Success(msg string)
	Error(err error)
	Warning(msg string)
	Info(msg string)
	JSON(v any) error
}

// NewOutput selects the implementation for the --output format. Any
// format other than "json" gets the styled terminal renderer.
func NewOutput(w io.Writer, format string) Output {
	if format == "json" {
		return NewJSONOutput(w)
	}
	return NewTTYOutput(w)
}

// encodeJSON writes v as indented JSON, shared by both renderers.
func encodeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// TTYOutput renders styled, icon-prefixed lines for terminals.
type TTYOutput struct {
	w      io.Writer
	styles *OutputStyles
}

// NewTTYOutput creates a terminal renderer writing to w.
func NewTTYOutput(w io.Writer) *TTYOutput {
	return &TTYOutput{
		w:      w,
		styles: NewOutputStyles(),
	}
}

// Success prints a checkmarked success line.
func (o *TTYOutput) Success(msg string) {
	_, _ = fmt.Fprintln(o.w, o.styles.Success.Render("✓ "+msg))
}

// Error prints a crossed error line.
func (o *TTYOutput) Error(err error) {
	_, _ = fmt.Fprintln(o.w, o.styles.Error.Render("✗ "+err.Error()))
}

// Warning prints a warning line.
func (o *TTYOutput) Warning(msg string) {
	_, _ = fmt.Fprintln(o.w, o.styles.Warning.Render("⚠ "+msg))
}

// Info prints a plain informational line.
func (o *TTYOutput) Info(msg string) {
	_, _ = fmt.Fprintln(o.w, o.styles.Info.Render(msg))
}

// JSON writes v as indented JSON, unstyled even on a terminal.
func (o *TTYOutput) JSON(v any) error {
	return encodeJSON(o.w, v)
}

// JSONOutput emits machine-readable output only.
type JSONOutput struct {
	w io.Writer
}

// NewJSONOutput creates a JSON-only renderer writing to w.
func NewJSONOutput(w io.Writer) *JSONOutput {
	return &JSONOutput{w: w}
}

// Success is suppressed in JSON mode.
func (o *JSONOutput) Success(_ string) {}

// Error emits the error as a one-field JSON object.
func (o *JSONOutput) Error(err error) {
	_, _ = fmt.Fprintf(o.w, "{\"error\": %q}\n", err.Error())
}

// Warning is suppressed in JSON mode.
func (o *JSONOutput) Warning(_ string) {}

// Info is suppressed in JSON mode.
func (o *JSONOutput) Info(_ string) {}

// JSON writes v as indented JSON.
func (o *JSONOutput) JSON(v any) error {
	return encodeJSON(o.w, v)
}
