// Package loader reads a ledger file from disk, parses it, and recursively
// resolves any include directives into a single flattened ast.AST, tracking
// every file it touched so the watcher package knows what to re-read on
// change.
package loader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/ledgerfile/ledgerfile/ast"
	"github.com/ledgerfile/ledgerfile/errorfmt"
	"github.com/ledgerfile/ledgerfile/parser"
)

// Result is everything a Load call produces: the flattened, sorted
// directive set, every diagnostic collected along the way, and the file
// registry the watcher needs to rebuild on change.
type Result struct {
	AST         *ast.AST
	Diagnostics []errorfmt.Diagnostic
	Files       []string // absolute paths, in first-visited order
}

// Loader resolves include directives by glob, relative to the including
// file's own directory, and deduplicates repeated includes of the same
// resolved path.
type Loader struct {
	mu      sync.Mutex
	visited map[string]bool
	files   []string
	nextID  int
	order   int
}

func New() *Loader {
	return &Loader{visited: make(map[string]bool)}
}

// nextOrder hands out a strictly increasing SourceOrder, safe to call from
// the concurrent goroutines spawned for sibling include files.
func (l *Loader) nextOrder() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.order++
	return l.order
}

// Load reads and parses root, recursively following every include
// directive it finds. It never returns an error for a malformed or missing
// include — those become errorfmt.Diagnostic entries in the result — only
// when the root path cannot be resolved or a file it has to read (the root
// or a file an include matched) cannot be read.
func (l *Loader) Load(ctx context.Context, root string) (*Result, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", root, err)
	}

	result := &Result{AST: &ast.AST{}}
	var mu sync.Mutex

	if err := l.loadFile(ctx, absRoot, &mu, result); err != nil {
		return nil, err
	}

	result.AST.Sort()
	return result, nil
}

func (l *Loader) loadFile(ctx context.Context, absPath string, mu *sync.Mutex, result *Result) error {
	l.mu.Lock()
	if l.visited[absPath] {
		l.mu.Unlock()
		return nil
	}
	l.visited[absPath] = true
	fileID := l.nextID
	l.nextID++
	l.mu.Unlock()

	data, err := os.ReadFile(absPath)
	if err != nil {
		return fmt.Errorf("read %s: %w", absPath, err)
	}

	info, _ := os.Stat(absPath)
	var modTime int64
	if info != nil {
		modTime = info.ModTime().UnixNano()
	}

	directives, diags := parser.Parse(data, absPath, fileID, l.nextOrder)

	mu.Lock()
	result.Files = append(result.Files, absPath)
	result.AST.Files = append(result.AST.Files, ast.File{ID: fileID, Path: absPath, ModTime: modTime})
	result.Diagnostics = append(result.Diagnostics, diags...)
	mu.Unlock()

	baseDir := filepath.Dir(absPath)
	var includes []ast.Include
	var kept []ast.Directive
	for _, d := range directives {
		if inc, ok := d.(ast.Include); ok {
			includes = append(includes, inc)
			continue
		}
		kept = append(kept, d)
	}

	mu.Lock()
	result.AST.Directives = append(result.AST.Directives, kept...)
	mu.Unlock()

	if len(includes) == 0 {
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, inc := range includes {
		inc := inc
		g.Go(func() error {
			return l.resolveInclude(gctx, inc, baseDir, absPath, mu, result)
		})
	}
	return g.Wait()
}

func (l *Loader) resolveInclude(ctx context.Context, inc ast.Include, baseDir, fromFile string, mu *sync.Mutex, result *Result) error {
	pattern := inc.Pattern
	if !filepath.IsAbs(pattern) {
		pattern = filepath.Join(baseDir, pattern)
	}

	matches, err := filepath.Glob(pattern)
	if err != nil {
		mu.Lock()
		result.Diagnostics = append(result.Diagnostics, errorfmt.New(
			errorfmt.KindIncludeNotFound, fromFile, inc.Span, "invalid include pattern %q: %s", inc.Pattern, err))
		mu.Unlock()
		return nil
	}
	if len(matches) == 0 {
		mu.Lock()
		result.Diagnostics = append(result.Diagnostics, errorfmt.New(
			errorfmt.KindIncludeNotFound, fromFile, inc.Span, "include %q matched no files", inc.Pattern))
		mu.Unlock()
		return nil
	}

	for _, match := range matches {
		absMatch, err := filepath.Abs(match)
		if err != nil {
			continue
		}

		l.mu.Lock()
		alreadyVisited := l.visited[absMatch]
		l.mu.Unlock()
		if alreadyVisited {
			mu.Lock()
			result.Diagnostics = append(result.Diagnostics, errorfmt.Warningf(
				errorfmt.KindDuplicateInclude, fromFile, inc.Span, "%q already included, skipping", match))
			mu.Unlock()
			continue
		}

		if err := l.loadFile(ctx, absMatch, mu, result); err != nil {
			return err
		}
	}
	return nil
}
