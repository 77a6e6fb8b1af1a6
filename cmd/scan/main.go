package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"vegan-agent-be/internal/bootstrap"
	"vegan-agent-be/internal/config"
	"vegan-agent-be/internal/pkg/logger"

	"github.com/spf13/cobra"
)

// cliSession is the session id every CLI invocation uses.
const cliSession = "cli"

var (
	// Global flags
	verbose bool
	noColor bool

	cfg       *config.Config
	container *bootstrap.Container
)

// exitError carries a process exit code up to main.
type exitError struct {
	code int
	msg  string
}

func (e *exitError) Error() string { return e.msg }

var rootCmd = &cobra.Command{
	Use:   "vegan-scan",
	Short: "Check a food label for animal-derived ingredients",
	Long: `vegan-scan sends an ingredient label photo to a vision model and prints
a best-effort vegan verdict. Results are not medical, religious or
nutritional advice.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg = config.Load()
		c, err := bootstrap.NewContainer(cmd.Context(), cfg, logger.NewConsoleLogger(verbose))
		if err != nil {
			return fmt.Errorf("failed to start: %w", err)
		}
		container = c
		return nil
	},
}

// closeContainer is swapped in tests.
var closeContainer = func(c *bootstrap.Container) { c.Close() }

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(scanCmd, searchCmd, lookupCmd, keyCmd, watchCmd)
}

// run executes one command and returns the process exit code. The container
// is closed here rather than in a post-run hook, which cobra skips when a
// command fails.
func run(ctx context.Context, args []string, stderr io.Writer) int {
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(ctx)
	if container != nil {
		closeContainer(container)
		container = nil
	}
	if err == nil {
		return 0
	}

	var exit *exitError
	if errors.As(err, &exit) {
		if exit.msg != "" {
			fmt.Fprintln(stderr, exit.msg)
		}
		return exit.code
	}
	fmt.Fprintln(stderr, "Error:", err)
	return 1
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stderr)
	stop()
	os.Exit(code)
}
