// Package mutation implements the append-mutation service from spec §4.6:
// it edits the underlying ledger text files by appending canonically
// rendered directives, never rewriting existing lines, and hands the
// watcher a changed mtime to pick up. Grounded on the teacher's
// web/source.go handlePutSource write path (temp-file-free os.WriteFile
// there becomes a temp-file+rename here, since appends must never
// truncate or corrupt a file a concurrent reader might be mid-read on).
package mutation

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ledgerfile/ledgerfile/ast"
)

// Router decides which file an appended transaction should land in. The
// default is a single file; spec §4.6 also allows one-file-per-month or a
// caller-supplied mapping.
type Router func(date ast.Date) string

// SingleFile returns a Router that always targets path, the simplest of
// the three routing modes spec §4.6 names.
func SingleFile(path string) Router {
	return func(ast.Date) string { return path }
}

// MonthlyFiles returns a Router that targets "<dir>/<YYYY-MM>.ledger",
// creating a new file per calendar month.
func MonthlyFiles(dir string) Router {
	return func(d ast.Date) string {
		return filepath.Join(dir, d.Time.Format("2006-01")+".ledger")
	}
}

// Service is the single writer for a ledger tree. Every mutation
// serializes through mu, matching spec §5's "mutations serialize through a
// single writer queue".
type Service struct {
	mu          sync.Mutex
	route       Router
	documentDir string
}

// New builds a Service that routes appended transactions through route and
// stores uploaded documents under documentDir (spec's
// "<ledger_root>/documents/<account_path>/").
func New(route Router, documentDir string) *Service {
	return &Service{route: route, documentDir: documentDir}
}

// AppendTransaction renders t canonically and atomically appends it to the
// file route(t.Date) selects.
func (s *Service) AppendTransaction(t ast.Transaction) (path string, err error) {
	path = s.route(t.Date)
	return path, s.appendText(path, renderTransaction(t))
}

// SetBalancePad appends a `balance ... with pad ...` line per spec §4.6.
func (s *Service) SetBalancePad(b ast.Balance) (path string, err error) {
	path = s.route(b.Date)
	return path, s.appendText(path, renderBalanceDirective(b))
}

// UploadDocument stores fileBytes under
// <document_dir>/<account_path>/<date>-<uuid>.<ext> and appends a document
// directive referencing it to the routed file.
func (s *Service) UploadDocument(account ast.Account, date ast.Date, fileBytes []byte, ext string) (blobPath, ledgerPath string, err error) {
	accountDir := filepath.Join(s.documentDir, strings.ReplaceAll(string(account), ":", string(filepath.Separator)))
	if err := os.MkdirAll(accountDir, 0o755); err != nil {
		return "", "", fmt.Errorf("create document directory: %w", err)
	}

	ext = strings.TrimPrefix(ext, ".")
	name := fmt.Sprintf("%s-%s", date.Time.Format("2006-01-02"), uuid.NewString())
	if ext != "" {
		name += "." + ext
	}
	blobPath = filepath.Join(accountDir, name)

	if err := atomicWrite(blobPath, fileBytes); err != nil {
		return "", "", fmt.Errorf("write document blob: %w", err)
	}

	doc := ast.Document{
		Base:    ast.Base{Date: date},
		Account: account,
		Path:    blobPath,
	}
	ledgerPath = s.route(date)
	if err := s.appendText(ledgerPath, renderDocumentDirective(doc)); err != nil {
		return blobPath, ledgerPath, err
	}
	return blobPath, ledgerPath, nil
}

// appendText acquires the writer lock and atomically appends text to path,
// creating the file if it doesn't exist yet.
func (s *Service) appendText(path, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("read %s: %w", path, err)
		}
		existing = nil
	}

	var b strings.Builder
	b.Write(existing)
	if len(existing) > 0 && existing[len(existing)-1] != '\n' {
		b.WriteByte('\n')
	}
	b.WriteString(text)

	if err := atomicWrite(path, []byte(b.String())); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	now := time.Now()
	_ = os.Chtimes(path, now, now)
	return nil
}

// atomicWrite writes data to a temp file in the same directory as path,
// then renames it into place, so a concurrent reader (the watcher's
// rebuild, or another process) never observes a partially written file.
func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".mutation-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
