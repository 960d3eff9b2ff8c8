package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/ironsheep/photo-mosaic/internal/mosaic"
	"github.com/spf13/cobra"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// logLevelEnv overrides the default of --log-level.
const logLevelEnv = "PHOTO_MOSAIC_LOG_LEVEL"

var rootCmd = &cobra.Command{
	Use:           "photo-mosaic",
	Short:         "Build photo mosaics from a directory of tile images",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, _ := cmd.Flags().GetString("log-level")
		return setupLogging(level)
	},
}

func init() {
	rootCmd.PersistentFlags().String("log-level", envOr(logLevelEnv, "warn"), "Log level (debug, info, warn, error)")
}

// setupLogging sends text logs to stderr; stdout carries results and, for
// serve, the MCP protocol.
func setupLogging(level string) error {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToLower(level))); err != nil {
		return fmt.Errorf("log level %q: %w", level, err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)
	mosaic.SetLogger(logger)
	return nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
