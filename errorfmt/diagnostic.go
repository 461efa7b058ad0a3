// Package errorfmt defines the diagnostic value type shared by the lexer,
// parser, loader, and evaluator, plus text/JSON formatters for presenting a
// batch of diagnostics to a human or a machine client.
package errorfmt

import (
	"fmt"

	"github.com/ledgerfile/ledgerfile/ast"
)

// Kind tags a Diagnostic with one of the twelve recognized conditions.
// Every non-fatal condition the system can detect maps to exactly one Kind;
// handlers never return a bare error for something a caller should recover
// from.
type Kind string

const (
	KindSyntaxError            Kind = "syntax_error"
	KindAccountNotOpen         Kind = "account_not_open"
	KindAccountClosed          Kind = "account_closed"
	KindCommodityMismatch      Kind = "commodity_mismatch"
	KindTransactionUnbalanced  Kind = "transaction_unbalanced"
	KindMultipleElisions       Kind = "multiple_elisions"
	KindUnresolvableElision    Kind = "unresolvable_elision"
	KindBalanceAssertionFailed Kind = "balance_assertion_failed"
	KindDuplicateInclude       Kind = "duplicate_include"
	KindIncludeNotFound        Kind = "include_not_found"
	KindNoPriceConversion      Kind = "no_price_conversion"
	KindIoError                Kind = "io_error"
)

// Severity distinguishes conditions that abort evaluation of the affected
// directive from those that are merely surfaced to the user.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Diagnostic is a single structured finding, carrying enough information to
// render a one-line message or a source-anchored one.
type Diagnostic struct {
	Kind     Kind
	Severity Severity
	Message  string
	Span     ast.SourceSpan
	File     string
}

func (d Diagnostic) Error() string {
	if d.File == "" {
		return fmt.Sprintf("%s: %s", d.Kind, d.Message)
	}
	return fmt.Sprintf("%s:%d:%d: %s: %s", d.File, d.Span.Line, d.Span.Column, d.Kind, d.Message)
}

// New builds a Diagnostic at error severity.
func New(kind Kind, file string, span ast.SourceSpan, format string, args ...any) Diagnostic {
	return Diagnostic{
		Kind:     kind,
		Severity: SeverityError,
		Message:  fmt.Sprintf(format, args...),
		Span:     span,
		File:     file,
	}
}

// Warningf builds a Diagnostic at warning severity.
func Warningf(kind Kind, file string, span ast.SourceSpan, format string, args ...any) Diagnostic {
	d := New(kind, file, span, format, args...)
	d.Severity = SeverityWarning
	return d
}
