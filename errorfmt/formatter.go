package errorfmt

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Formatter renders a batch of diagnostics for a particular consumer:
// TextFormatter for a terminal, JSONFormatter for a machine client.
type Formatter interface {
	Format(d Diagnostic) string
	FormatAll(ds []Diagnostic) string
}

// TextFormatter renders diagnostics bean-check style: one line per
// diagnostic, entries separated by a single newline.
type TextFormatter struct {
	// Colorize, when set, wraps the severity label (for example in ANSI
	// styling).
	Colorize func(severity Severity, s string) string
}

func NewTextFormatter() *TextFormatter {
	return &TextFormatter{}
}

func (tf *TextFormatter) Format(d Diagnostic) string {
	label := string(d.Severity)
	if tf.Colorize != nil {
		label = tf.Colorize(d.Severity, label)
	}
	if d.File == "" {
		return fmt.Sprintf("%s: %s: %s", label, d.Kind, d.Message)
	}
	return fmt.Sprintf("%s:%d:%d: %s: %s: %s", d.File, d.Span.Line, d.Span.Column, label, d.Kind, d.Message)
}

func (tf *TextFormatter) FormatAll(ds []Diagnostic) string {
	if len(ds) == 0 {
		return ""
	}
	var buf bytes.Buffer
	for i, d := range ds {
		buf.WriteString(tf.Format(d))
		if i < len(ds)-1 {
			buf.WriteString("\n")
		}
	}
	return buf.String()
}

// JSONFormatter renders diagnostics as a JSON array.
type JSONFormatter struct{}

func NewJSONFormatter() *JSONFormatter { return &JSONFormatter{} }

type diagnosticJSON struct {
	Kind     Kind     `json:"kind"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
	File     string   `json:"file,omitempty"`
	Line     int      `json:"line,omitempty"`
	Column   int      `json:"column,omitempty"`
}

func toJSON(d Diagnostic) diagnosticJSON {
	return diagnosticJSON{
		Kind:     d.Kind,
		Severity: d.Severity,
		Message:  d.Message,
		File:     d.File,
		Line:     d.Span.Line,
		Column:   d.Span.Column,
	}
}

func (jf *JSONFormatter) Format(d Diagnostic) string {
	data, _ := json.Marshal(toJSON(d))
	return string(data)
}

func (jf *JSONFormatter) FormatAll(ds []Diagnostic) string {
	out := make([]diagnosticJSON, len(ds))
	for i, d := range ds {
		out[i] = toJSON(d)
	}
	data, _ := json.MarshalIndent(out, "", "  ")
	return string(data)
}
