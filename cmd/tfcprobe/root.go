package tfcprobe

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

var (
	flagJSON         bool
	flagThreads      int
	flagNoColor      bool
	flagEngine       string
	flagPathEngine   string
	flagMatchTimeout string
	flagLogLevel     string
	flagLogFormat    string

	version = "0.1.0"
)

// rootCmd is the base Cobra command for the tfcprobe CLI.
var rootCmd = &cobra.Command{
	Use:           "tfcprobe",
	Short:         "Collect text file content evidence",
	Long:          "tfcprobe locates files by path and name criteria and extracts regex matches from their contents as structured items.",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the tfcprobe CLI. It should be called by the main package.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(2)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "emit JSON")
	rootCmd.PersistentFlags().IntVar(&flagThreads, "threads", 0, "objects evaluated concurrently (0 = GOMAXPROCS)")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "disable colorized output")
	rootCmd.PersistentFlags().StringVar(&flagEngine, "engine", "", "content regex engine: pcre|posix (default pcre)")
	rootCmd.PersistentFlags().StringVar(&flagPathEngine, "path-engine", "", "path and filename regex engine: posix|pcre (default posix)")
	rootCmd.PersistentFlags().StringVar(&flagMatchTimeout, "match-timeout", "", "per-match timeout for the pcre engine (e.g. 2s)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level: debug|info|warn|error (default warn)")
	rootCmd.PersistentFlags().StringVar(&flagLogFormat, "log-format", "", "log format: text|json (default text)")
	_ = rootCmd.RegisterFlagCompletionFunc("engine", engineValues)
	_ = rootCmd.RegisterFlagCompletionFunc("path-engine", engineValues)
}
