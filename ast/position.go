// Package ast declares the types used to represent the syntax tree of a
// plain-text ledger file: dates, accounts, amounts, and the directive
// variants described by the grammar, plus the position information needed
// by diagnostics and the mutation service.
package ast

import "fmt"

// Position is a single point in a source file.
type Position struct {
	FileID int
	Offset int // byte offset
	Line   int // 1-indexed
	Column int // 1-indexed
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// SourceSpan is a byte range in a source file, used by diagnostics and the
// mutation service to locate directives for in-place editing.
type SourceSpan struct {
	FileID     int
	ByteStart  int
	ByteEnd    int
	Line       int
	Column     int
}

// Text extracts the span's source text. Returns "" if the span is invalid
// for the given buffer.
func (s SourceSpan) Text(source []byte) string {
	if s.ByteStart < 0 || s.ByteEnd < s.ByteStart || s.ByteEnd > len(source) {
		return ""
	}
	return string(source[s.ByteStart:s.ByteEnd])
}
