package ast

import "golang.org/x/exp/slices"

// File records one source file contributing directives to an AST, after
// include expansion.
type File struct {
	ID      int
	Path    string
	ModTime int64 // unix nanos, recorded by the loader when it reads the file
}

// AST is the full, include-expanded directive stream produced by the
// parser/loader, plus the file registry it was built from. Directives stay
// in the order they were produced until Sort is called; loader.Load calls
// Sort before returning.
type AST struct {
	Directives []Directive
	Files      []File
}

// Sort orders Directives by (date, source order) per spec §4.4's evaluation
// order rule: same-day directives keep their textual order across the
// include-expanded stream. SourceOrder is an explicit tiebreak field rather
// than relying on sort stability, matching compareDirectives in the teacher.
func (a *AST) Sort() {
	slices.SortFunc(a.Directives, compareDirectives)
}

func compareDirectives(x, y Directive) int {
	if x.GetDate().Before(y.GetDate()) {
		return -1
	}
	if x.GetDate().After(y.GetDate()) {
		return 1
	}
	if x.SourceOrder() < y.SourceOrder() {
		return -1
	}
	if x.SourceOrder() > y.SourceOrder() {
		return 1
	}
	return 0
}
