package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ironsheep/photo-mosaic/internal/imaging"
	"github.com/ironsheep/photo-mosaic/internal/mosaic"
	"github.com/ironsheep/photo-mosaic/internal/pipeline"
	"github.com/ironsheep/photo-mosaic/internal/tiles"
	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Render a mosaic of a source photo",
	RunE:  runGenerate,
}

func init() {
	generateCmd.Flags().StringP("input", "i", "", "Source image")
	generateCmd.Flags().StringP("output", "o", "", "Output JPEG file")
	generateCmd.Flags().StringP("tiles", "t", "", "Tile directory")
	generateCmd.Flags().String("label", "", "Content label; tiles are read from its key sub-directory")
	generateCmd.Flags().Int("tile-width", mosaic.DefaultTileSize, "Cell width in source pixels")
	generateCmd.Flags().Int("tile-height", mosaic.DefaultTileSize, "Cell height in source pixels")
	generateCmd.Flags().Int("divisions", mosaic.DefaultDivisions, "Descriptor grid size per cell")
	generateCmd.Flags().Int("scale", mosaic.DefaultScale, "Output size multiplier per cell")
	generateCmd.Flags().Int("quality", imaging.DefaultJPEGQuality, "JPEG quality (1-100)")
	generateCmd.Flags().Uint64("seed", 0, "Random seed (random when unset)")
	generateCmd.Flags().Float64("best-probability", mosaic.DefaultSelectionPolicy().BestProbability, "Chance of using the best tile rather than the runner-up")
	generateCmd.Flags().String("scorer", "quadrant", "Descriptor scoring (quadrant, lab)")
	generateCmd.Flags().Bool("no-normalize", false, "Use tiles at their own size instead of cropping to the cell")
	generateCmd.Flags().String("grid-color", "", "Draw cell boundaries in this hex color")
	generateCmd.Flags().String("plan", "", "Write the visitation order and tile choices as JSON")
	generateCmd.MarkFlagRequired("input")
	generateCmd.MarkFlagRequired("output")
	generateCmd.MarkFlagRequired("tiles")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	inputPath, _ := cmd.Flags().GetString("input")
	outputPath, _ := cmd.Flags().GetString("output")
	tileRoot, _ := cmd.Flags().GetString("tiles")
	label, _ := cmd.Flags().GetString("label")
	tileWidth, _ := cmd.Flags().GetInt("tile-width")
	tileHeight, _ := cmd.Flags().GetInt("tile-height")
	divisions, _ := cmd.Flags().GetInt("divisions")
	scale, _ := cmd.Flags().GetInt("scale")
	quality, _ := cmd.Flags().GetInt("quality")
	bestProbability, _ := cmd.Flags().GetFloat64("best-probability")
	scorer, _ := cmd.Flags().GetString("scorer")
	noNormalize, _ := cmd.Flags().GetBool("no-normalize")
	gridColor, _ := cmd.Flags().GetString("grid-color")
	planPath, _ := cmd.Flags().GetString("plan")

	inputData, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	src := &tiles.DirSource{Root: tileRoot}
	if !noNormalize {
		src.TileWidth = tileWidth
		src.TileHeight = tileHeight
	}
	lib, err := src.Load(label, divisions)
	if err != nil {
		return fmt.Errorf("loading tiles: %w", err)
	}

	opts := pipeline.Options{
		TileWidth:       tileWidth,
		TileHeight:      tileHeight,
		Scale:           scale,
		Quality:         quality,
		BestProbability: &bestProbability,
		Scorer:          scorer,
		GridColor:       gridColor,
	}
	if cmd.Flags().Changed("seed") {
		seed, _ := cmd.Flags().GetUint64("seed")
		opts.Seed = &seed
	}

	result, err := pipeline.Run(inputData, lib.Library, opts)
	if err != nil {
		return fmt.Errorf("mosaic: %w", err)
	}

	if err := imaging.WriteFile(outputPath, result.Data); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	if planPath != "" {
		data, err := json.MarshalIndent(result.Plan, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding plan: %w", err)
		}
		if err := os.WriteFile(planPath, data, 0644); err != nil {
			return fmt.Errorf("writing plan: %w", err)
		}
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Rendered %dx%d source → %dx%d mosaic (%dx%d cells)\n",
		result.SourceWidth, result.SourceHeight, result.Width, result.Height, result.Plan.Columns, result.Plan.Rows)
	fmt.Fprintf(out, "Tiles:  %s (%d loaded, %d used)\n", lib.Dir, lib.Len(), result.DistinctTiles)
	fmt.Fprintf(out, "Output: %s (%d bytes)\n", outputPath, len(result.Data))
	fmt.Fprintf(out, "Seed:   %d\n", result.Seed)

	return nil
}
