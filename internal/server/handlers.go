package server

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ironsheep/photo-mosaic/internal/imaging"
	"github.com/ironsheep/photo-mosaic/internal/mosaic"
	"github.com/ironsheep/photo-mosaic/internal/pipeline"
	"github.com/ironsheep/photo-mosaic/internal/tiles"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_load", "mosaic_generate").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	start := time.Now()
	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		slog.Warn("tool failed", "tool", params.Name, "error", err)
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}
	slog.Debug("tool done", "tool", params.Name, "elapsed", time.Since(start))

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Basic Image Information
	case "image_load":
		return s.handleImageLoad(args)
	case "image_dimensions":
		return s.handleImageDimensions(args)

	// Mosaic Operations
	case "mosaic_tile_key":
		return s.handleTileKey(args)
	case "mosaic_tile_library":
		return s.handleTileLibrary(args)
	case "mosaic_generate":
		return s.handleGenerate(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Basic Image Information Handlers ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, errors.New("path is required")
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

func (s *Server) handleImageDimensions(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, errors.New("path is required")
	}
	return imaging.GetDimensions(s.cache, a.Path)
}

// === Mosaic Handlers ===

type tileKeyArgs struct {
	Label string `json:"label"`
}

type tileKeyResult struct {
	Label string `json:"label"`
	Key   string `json:"key"`
}

func (s *Server) handleTileKey(args json.RawMessage) (interface{}, error) {
	var a tileKeyArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return &tileKeyResult{Label: a.Label, Key: tiles.LabelKey(a.Label)}, nil
}

// libraryArgs selects a tile library. It is shared by every tool that
// needs one.
type libraryArgs struct {
	Dir        string `json:"dir"`
	Label      string `json:"label"`
	TileWidth  int    `json:"tile_width"`
	TileHeight int    `json:"tile_height"`
	Divisions  int    `json:"divisions"`
	Normalize  *bool  `json:"normalize"`
	Reload     bool   `json:"reload"`
}

func (a *libraryArgs) applyDefaults() {
	if a.TileWidth == 0 {
		a.TileWidth = mosaic.DefaultTileSize
	}
	if a.TileHeight == 0 {
		a.TileHeight = mosaic.DefaultTileSize
	}
	if a.Divisions == 0 {
		a.Divisions = mosaic.DefaultDivisions
	}
	if a.Normalize == nil {
		normalize := true
		a.Normalize = &normalize
	}
}

// library resolves a to a registered library, building it if needed.
func (s *Server) library(a libraryArgs) (*tiles.Library, bool, error) {
	a.applyDefaults()

	root := a.Dir
	if root == "" {
		root = s.cfg.TileRoot
	}
	if root == "" {
		return nil, false, errors.New("no tile directory: pass dir or start the server with a tile root")
	}

	src := &tiles.DirSource{Root: root}
	if *a.Normalize {
		src.TileWidth = a.TileWidth
		src.TileHeight = a.TileHeight
	}
	return s.libraries.get(src, a.Label, a.Divisions, a.Reload)
}

type tileSummary struct {
	Index  int      `json:"index"`
	Path   string   `json:"path"`
	Colors []string `json:"colors"`
}

type tileLibraryResult struct {
	Dir       string        `json:"dir"`
	Tiles     int           `json:"tiles"`
	Divisions int           `json:"divisions"`
	Cached    bool          `json:"cached"`
	Entries   []tileSummary `json:"entries"`
}

func (s *Server) handleTileLibrary(args json.RawMessage) (interface{}, error) {
	var a libraryArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	lib, cached, err := s.library(a)
	if err != nil {
		return nil, err
	}

	entries := make([]tileSummary, lib.Len())
	for i := range entries {
		rec := lib.Tile(i)
		colors := make([]string, len(rec.Descriptor.Cells))
		for j, c := range rec.Descriptor.Cells {
			colors[j] = c.Hex()
		}
		entries[i] = tileSummary{Index: rec.Index, Path: lib.Paths[i], Colors: colors}
	}

	return &tileLibraryResult{
		Dir:       lib.Dir,
		Tiles:     lib.Len(),
		Divisions: lib.Divisions(),
		Cached:    cached,
		Entries:   entries,
	}, nil
}

type generateArgs struct {
	libraryArgs

	SourcePath      string   `json:"source_path"`
	OutputPath      string   `json:"output_path"`
	Scale           int      `json:"scale"`
	Quality         int      `json:"quality"`
	Seed            *uint64  `json:"seed"`
	BestProbability *float64 `json:"best_probability"`
	Scorer          string   `json:"scorer"`
	GridColor       string   `json:"grid_color"`
	IncludePlan     bool     `json:"include_plan"`
}

type generateResult struct {
	Width         int    `json:"width"`
	Height        int    `json:"height"`
	Columns       int    `json:"columns"`
	Rows          int    `json:"rows"`
	Seed          uint64 `json:"seed"`
	TileDir       string `json:"tile_dir"`
	DistinctTiles int    `json:"distinct_tiles"`
	Bytes         int    `json:"bytes"`

	// Exactly one of OutputPath and ImageBase64 is set.
	OutputPath  string `json:"output_path,omitempty"`
	ImageBase64 string `json:"image_base64,omitempty"`

	Plan *mosaic.Plan `json:"plan,omitempty"`
}

func (s *Server) handleGenerate(args json.RawMessage) (interface{}, error) {
	var a generateArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.SourcePath == "" {
		return nil, errors.New("source_path is required")
	}

	if a.Reload {
		s.cache.Evict(a.SourcePath)
	}
	src, err := s.cache.Load(a.SourcePath)
	if err != nil {
		return nil, err
	}

	lib, _, err := s.library(a.libraryArgs)
	if err != nil {
		return nil, err
	}

	res, err := pipeline.RunImage(src, lib.Library, pipeline.Options{
		TileWidth:       a.TileWidth,
		TileHeight:      a.TileHeight,
		Scale:           a.Scale,
		Quality:         a.Quality,
		Seed:            a.Seed,
		BestProbability: a.BestProbability,
		Scorer:          a.Scorer,
		GridColor:       a.GridColor,
	})
	if err != nil {
		return nil, err
	}

	out := &generateResult{
		Width:         res.Width,
		Height:        res.Height,
		Columns:       res.Plan.Columns,
		Rows:          res.Plan.Rows,
		Seed:          res.Seed,
		TileDir:       lib.Dir,
		DistinctTiles: res.DistinctTiles,
		Bytes:         len(res.Data),
	}
	if a.IncludePlan {
		out.Plan = res.Plan
	}

	if a.OutputPath != "" {
		if err := imaging.WriteFile(a.OutputPath, res.Data); err != nil {
			return nil, err
		}
		out.OutputPath = a.OutputPath
	} else {
		out.ImageBase64 = base64.StdEncoding.EncodeToString(res.Data)
	}
	return out, nil
}
