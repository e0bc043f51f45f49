// Command booksheet manages the book catalog from the command line.
//
// Every command opens the configured backend, runs one operation and
// exits. The menu command starts an interactive session instead.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/JonMunkholm/booksheet/internal/backend"
	"github.com/JonMunkholm/booksheet/internal/config"
	"github.com/JonMunkholm/booksheet/internal/core"
	"github.com/JonMunkholm/booksheet/internal/logging"
	"github.com/JonMunkholm/booksheet/internal/sheet"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// cli holds the flags and connections shared by every command.
type cli struct {
	configPath  string
	backendKind string
	format      string

	in     io.Reader
	out    io.Writer
	errOut io.Writer

	svc   *core.Service
	store sheet.Backend
}

func main() {
	c := &cli{in: os.Stdin, out: os.Stdout, errOut: os.Stderr}
	if err := newRootCmd(c).Execute(); err != nil {
		fmt.Fprintln(c.errOut, "Error:", userError(err))
		os.Exit(1)
	}
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:           "booksheet",
		Short:         "Lend books from a spreadsheet-backed catalog",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.svc != nil {
				return nil
			}
			return c.connect(cmd.Context())
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if c.store == nil {
				return nil
			}
			return c.store.Close()
		},
	}
	root.SetIn(c.in)
	root.SetOut(c.out)
	root.SetErr(c.errOut)

	root.PersistentFlags().StringVar(&c.configPath, "config", os.Getenv(config.FileEnv), "YAML config file")
	root.PersistentFlags().StringVar(&c.backendKind, "backend", "", "override the backend: sheets, postgres, sqlite, memory")
	root.PersistentFlags().StringVar(&c.format, "format", formatAuto, "output format: auto, text, json")

	root.AddCommand(
		newListCmd(c),
		newSearchCmd(c),
		newAddCmd(c),
		newCopiesCmd(c),
		newRemoveCmd(c),
		newCheckOutCmd(c),
		newReturnCmd(c),
		newOverdueCmd(c),
		newMenuCmd(c),
	)
	return root
}

// connect loads configuration and opens the service. Logs go to stderr so
// command output stays machine-readable.
func (c *cli) connect(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := godotenv.Load(); err == nil {
		slog.Debug("loaded .env file")
	}
	if c.backendKind != "" {
		os.Setenv("BOOKSHEET_BACKEND", c.backendKind)
	}

	cfg, err := config.LoadFile(c.configPath)
	if err != nil {
		return err
	}
	slog.SetDefault(logging.New(c.errOut, cfg.Logging.Level, cfg.Logging.Format))

	store, err := backend.Open(ctx, cfg)
	if err != nil {
		return err
	}

	svc, err := core.Open(ctx, store, core.WithLoanDays(cfg.Library.LoanDays))
	if err != nil {
		store.Close()
		return err
	}

	c.store = store
	c.svc = svc
	return nil
}
