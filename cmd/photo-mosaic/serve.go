package main

import (
	"log/slog"

	"github.com/ironsheep/photo-mosaic/internal/server"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the MCP server over stdin/stdout",
	Long: `Run the mosaic engine as an MCP (Model Context Protocol) server.

Requests are read from stdin and responses written to stdout, one JSON-RPC
message per line. Logs go to stderr. Configure it in your MCP client.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringP("tiles", "t", "", "Default tile directory for tool calls that do not pass one")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	tileRoot, _ := cmd.Flags().GetString("tiles")

	slog.Debug("starting MCP server", "version", Version, "built", BuildTime, "commit", GitCommit, "tiles", tileRoot)

	srv := server.New(server.Config{Version: Version, TileRoot: tileRoot})
	return srv.Run()
}
