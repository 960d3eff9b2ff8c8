package main

import (
	"fmt"

	"github.com/ironsheep/photo-mosaic/internal/tiles"
	"github.com/spf13/cobra"
)

var keyCmd = &cobra.Command{
	Use:   "key [label]",
	Short: "Print the tile sub-directory name for a content label",
	Args:  cobra.ExactArgs(1),
	RunE:  runKey,
}

func init() {
	rootCmd.AddCommand(keyCmd)
}

func runKey(cmd *cobra.Command, args []string) error {
	fmt.Fprintln(cmd.OutOrStdout(), tiles.LabelKey(args[0]))
	return nil
}
