package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"
	"go.uber.org/zap"

	"github.com/ledgerfile/ledgerfile/logging"
	"github.com/ledgerfile/ledgerfile/mutation"
	"github.com/ledgerfile/ledgerfile/server"
	"github.com/ledgerfile/ledgerfile/watcher"
)

// ServeCmd runs the watcher controller and the read/write HTTP API, per
// spec §6: `serve <ledger_path> [--port N] [--addr HOST] [--no-watch]`.
// Grounded on the teacher's cli/web.go WebCmd, generalized from a read-only
// editor server to the spec's watcher+mutation-backed API.
type ServeCmd struct {
	LedgerPath string `help:"Path to the root ledger file." arg:""`
	Port       int    `help:"Port to listen on." default:"8080"`
	Addr       string `help:"Address to bind to." default:"127.0.0.1"`
	NoWatch    bool   `help:"Disable the file watcher; serve a static snapshot."`
	Create     bool   `help:"Automatically create the ledger file if it doesn't exist (no confirmation prompt)." short:"c"`
}

func (cmd *ServeCmd) Run(ctx *kong.Context, globals *Globals) error {
	log, err := logging.New()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer log.Sync()

	ledgerPath, err := filepath.Abs(cmd.LedgerPath)
	if err != nil {
		Fatalf(ctx.Stderr, ExitUsage, "failed to resolve absolute path: %s", err)
	}

	if _, err := os.Stat(ledgerPath); err != nil {
		if !os.IsNotExist(err) {
			Fatalf(ctx.Stderr, ExitIoErr, "failed to access file: %s", err)
		}
		shouldCreate := cmd.Create
		if !shouldCreate {
			confirmed, err := promptYesNo(fmt.Sprintf("File %q does not exist. Create it?", ledgerPath))
			if err != nil {
				Fatalf(ctx.Stderr, ExitIoErr, "failed to read confirmation: %s", err)
			}
			shouldCreate = confirmed
		}
		if !shouldCreate {
			Fatalf(ctx.Stderr, ExitUsage, "file does not exist: %s", ledgerPath)
		}
		if err := os.MkdirAll(filepath.Dir(ledgerPath), 0o755); err != nil {
			Fatalf(ctx.Stderr, ExitIoErr, "failed to create parent directory: %s", err)
		}
		if err := os.WriteFile(ledgerPath, []byte(""), 0o600); err != nil {
			Fatalf(ctx.Stderr, ExitIoErr, "failed to create file: %s", err)
		}
		printInfof(ctx.Stdout, "Created empty ledger file: %s", pathStyle.Render(ledgerPath))
	}

	controller := watcher.New(ledgerPath, log)
	runCtx := context.Background()
	if err := controller.Start(runCtx, false); err != nil {
		Fatalf(ctx.Stderr, ExitIoErr, "failed to load ledger: %s", err)
	}

	if !cmd.NoWatch {
		go func() {
			if err := controller.Start(runCtx, true); err != nil {
				log.Warn("watcher stopped", zap.Error(err))
			}
		}()
	}

	mutator := mutation.New(mutation.SingleFile(ledgerPath), filepath.Join(filepath.Dir(ledgerPath), "documents"))
	authToken := os.Getenv("ZHANG_AUTH_TOKEN")

	addr := fmt.Sprintf("%s:%d", cmd.Addr, cmd.Port)
	srv := server.New(addr, controller, mutator, authToken, log)

	printInfof(ctx.Stdout, "Starting server on %s", addr)
	printInfof(ctx.Stdout, "Serving ledger: %s", pathStyle.Render(ledgerPath))
	if authToken != "" {
		printInfof(ctx.Stdout, "Write routes require a bearer token")
	}

	if err := srv.ListenAndServe(); err != nil {
		Fatalf(ctx.Stderr, ExitIoErr, "server stopped: %s", err)
	}
	return nil
}
