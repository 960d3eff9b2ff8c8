package server

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeImageFile writes a solid-color PNG into dir and returns its path.
func writeImageFile(t *testing.T, dir, name string, width, height int, c color.Color) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create file: %v", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	return path
}

// tileDir creates a directory holding red, green and blue tiles.
func tileDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeImageFile(t, dir, "1-red.png", 30, 30, color.RGBA{255, 0, 0, 255})
	writeImageFile(t, dir, "2-green.png", 30, 30, color.RGBA{0, 255, 0, 255})
	writeImageFile(t, dir, "3-blue.png", 30, 30, color.RGBA{0, 0, 255, 255})
	return dir
}

// callTool runs a tools/call request and returns the response.
func callTool(t *testing.T, s *Server, name string, args map[string]interface{}) *MCPResponse {
	t.Helper()
	paramsJSON, err := json.Marshal(map[string]interface{}{
		"name":      name,
		"arguments": args,
	})
	if err != nil {
		t.Fatalf("failed to marshal params: %v", err)
	}

	resp := s.handleRequest(&MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  paramsJSON,
	})
	if resp == nil {
		t.Fatal("handleRequest returned nil")
	}
	return resp
}

// decodeResult unmarshals the text content of a successful tool response into v.
func decodeResult(t *testing.T, resp *MCPResponse, v interface{}) {
	t.Helper()
	if resp.Error != nil {
		t.Fatalf("Unexpected error: %+v", resp.Error)
	}
	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatal("Result should be a map")
	}
	content, ok := result["content"].([]map[string]interface{})
	if !ok || len(content) != 1 {
		t.Fatalf("unexpected content: %v", result["content"])
	}
	if err := json.Unmarshal([]byte(content[0]["text"].(string)), v); err != nil {
		t.Fatalf("content is not JSON: %v", err)
	}
}

// expectToolError checks for a -32000 response whose data mentions want.
func expectToolError(t *testing.T, resp *MCPResponse, want string) {
	t.Helper()
	if resp.Error == nil {
		t.Fatal("expected an error response")
	}
	if resp.Error.Code != -32000 {
		t.Errorf("Error code: got %d, want -32000", resp.Error.Code)
	}
	if data, _ := resp.Error.Data.(string); !strings.Contains(data, want) {
		t.Errorf("error data %q does not mention %q", data, want)
	}
}

func TestHandleToolsCall_ImageLoad(t *testing.T) {
	s := New(Config{})
	imgPath := writeImageFile(t, t.TempDir(), "photo.png", 100, 80, color.RGBA{255, 0, 0, 255})

	var info struct {
		Width  int    `json:"width"`
		Height int    `json:"height"`
		Format string `json:"format"`
	}
	decodeResult(t, callTool(t, s, "image_load", map[string]interface{}{"path": imgPath}), &info)

	if info.Width != 100 || info.Height != 80 || info.Format != "png" {
		t.Errorf("info: got %+v", info)
	}
	if s.cache.Len() != 1 {
		t.Errorf("image not cached: %d entries", s.cache.Len())
	}
}

func TestHandleToolsCall_ImageDimensions(t *testing.T) {
	s := New(Config{})
	imgPath := writeImageFile(t, t.TempDir(), "photo.png", 200, 150, color.RGBA{0, 255, 0, 255})

	var dims struct {
		Width  int `json:"width"`
		Height int `json:"height"`
	}
	decodeResult(t, callTool(t, s, "image_dimensions", map[string]interface{}{"path": imgPath}), &dims)

	if dims.Width != 200 || dims.Height != 150 {
		t.Errorf("dimensions: got %dx%d, want 200x150", dims.Width, dims.Height)
	}
}

func TestHandleToolsCall_NonExistentFile(t *testing.T) {
	s := New(Config{})
	resp := callTool(t, s, "image_load", map[string]interface{}{"path": "/nonexistent/image.png"})
	expectToolError(t, resp, "no such file")
}

func TestHandleToolsCall_MissingArguments(t *testing.T) {
	s := New(Config{})

	tests := []struct {
		tool string
		want string
	}{
		{"image_load", "path is required"},
		{"image_dimensions", "path is required"},
		{"mosaic_generate", "source_path is required"},
		{"mosaic_tile_library", "no tile directory"},
	}

	for _, tt := range tests {
		t.Run(tt.tool, func(t *testing.T) {
			expectToolError(t, callTool(t, s, tt.tool, map[string]interface{}{}), tt.want)
		})
	}
}

func TestHandleToolsCall_InvalidTool(t *testing.T) {
	s := New(Config{})
	expectToolError(t, callTool(t, s, "image_crop", map[string]interface{}{}), "unknown tool: image_crop")
}

func TestHandleToolsCall_InvalidParams(t *testing.T) {
	s := New(Config{})

	resp := s.handleToolsCall(&MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Params:  json.RawMessage(`not json`),
	})

	if resp.Error == nil {
		t.Fatal("expected an error response")
	}
	if resp.Error.Code != -32602 {
		t.Errorf("Error code: got %d, want -32602", resp.Error.Code)
	}
}

func TestHandleToolsCall_TileKey(t *testing.T) {
	s := New(Config{})

	var res tileKeyResult
	decodeResult(t, callTool(t, s, "mosaic_tile_key", map[string]interface{}{"label": "sunset"}), &res)

	if res.Label != "sunset" || res.Key != "-1953424019" {
		t.Errorf("got %+v", res)
	}
}

func TestHandleToolsCall_TileLibrary(t *testing.T) {
	s := New(Config{})
	dir := tileDir(t)

	var res tileLibraryResult
	decodeResult(t, callTool(t, s, "mosaic_tile_library", map[string]interface{}{
		"dir":       dir,
		"divisions": 2,
	}), &res)

	if res.Dir != dir || res.Tiles != 3 || res.Divisions != 2 || res.Cached {
		t.Errorf("summary: got dir=%s tiles=%d divisions=%d cached=%v", res.Dir, res.Tiles, res.Divisions, res.Cached)
	}
	wantColors := []string{"#ff0000", "#00ff00", "#0000ff"}
	for i, e := range res.Entries {
		if e.Index != i || !strings.HasSuffix(e.Path, ".png") {
			t.Errorf("entry %d: %+v", i, e)
		}
		if len(e.Colors) != 4 {
			t.Fatalf("entry %d: %d colors, want 4", i, len(e.Colors))
		}
		for _, c := range e.Colors {
			if c != wantColors[i] {
				t.Errorf("entry %d: color %s, want %s", i, c, wantColors[i])
			}
		}
	}

	// A second call is served from the registry.
	decodeResult(t, callTool(t, s, "mosaic_tile_library", map[string]interface{}{
		"dir":       dir,
		"divisions": 2,
	}), &res)
	if !res.Cached {
		t.Error("second call was not cached")
	}

	// A different division count is a different library.
	decodeResult(t, callTool(t, s, "mosaic_tile_library", map[string]interface{}{"dir": dir}), &res)
	if res.Cached || res.Divisions != 1 {
		t.Errorf("divisions 1: cached=%v divisions=%d", res.Cached, res.Divisions)
	}
	if s.libraries.len() != 2 {
		t.Errorf("registry holds %d libraries, want 2", s.libraries.len())
	}
}

func TestHandleToolsCall_TileLibrary_Reload(t *testing.T) {
	s := New(Config{})
	dir := tileDir(t)

	var res tileLibraryResult
	decodeResult(t, callTool(t, s, "mosaic_tile_library", map[string]interface{}{"dir": dir}), &res)

	writeImageFile(t, dir, "4-white.png", 30, 30, color.White)

	decodeResult(t, callTool(t, s, "mosaic_tile_library", map[string]interface{}{"dir": dir}), &res)
	if res.Tiles != 3 {
		t.Errorf("cached library changed: %d tiles", res.Tiles)
	}

	decodeResult(t, callTool(t, s, "mosaic_tile_library", map[string]interface{}{"dir": dir, "reload": true}), &res)
	if res.Tiles != 4 || res.Cached {
		t.Errorf("reload: tiles=%d cached=%v, want 4 tiles uncached", res.Tiles, res.Cached)
	}
}

func TestHandleToolsCall_TileLibrary_Label(t *testing.T) {
	root := t.TempDir()
	labelDir := filepath.Join(root, "810") // key of "a"
	if err := os.Mkdir(labelDir, 0o755); err != nil {
		t.Fatal(err)
	}
	writeImageFile(t, labelDir, "tile.png", 10, 10, color.Black)

	s := New(Config{TileRoot: root})

	var res tileLibraryResult
	decodeResult(t, callTool(t, s, "mosaic_tile_library", map[string]interface{}{"label": "a"}), &res)
	if res.Dir != labelDir || res.Tiles != 1 {
		t.Errorf("got dir=%s tiles=%d, want %s with 1 tile", res.Dir, res.Tiles, labelDir)
	}

	expectToolError(t, callTool(t, s, "mosaic_tile_library", map[string]interface{}{"label": "missing"}), "tile directory")
}

func TestHandleToolsCall_TileLibrary_Empty(t *testing.T) {
	s := New(Config{TileRoot: t.TempDir()})
	expectToolError(t, callTool(t, s, "mosaic_tile_library", map[string]interface{}{}), "empty tile library")
}

func TestHandleToolsCall_Generate(t *testing.T) {
	s := New(Config{TileRoot: tileDir(t)})
	src := writeImageFile(t, t.TempDir(), "source.png", 50, 45, color.RGBA{250, 20, 20, 255})

	var res generateResult
	decodeResult(t, callTool(t, s, "mosaic_generate", map[string]interface{}{
		"source_path":  src,
		"scale":        2,
		"seed":         12345,
		"include_plan": true,
	}), &res)

	if res.Width != 80 || res.Height != 80 {
		t.Errorf("canvas: got %dx%d, want 80x80", res.Width, res.Height)
	}
	if res.Columns != 2 || res.Rows != 2 {
		t.Errorf("grid: got %dx%d, want 2x2", res.Columns, res.Rows)
	}
	if res.Seed != 12345 {
		t.Errorf("seed: got %d, want 12345", res.Seed)
	}
	if res.Plan == nil || len(res.Plan.Order) != 4 {
		t.Fatalf("plan missing or incomplete: %+v", res.Plan)
	}
	if res.OutputPath != "" {
		t.Errorf("unexpected output path %s", res.OutputPath)
	}

	data, err := base64.StdEncoding.DecodeString(res.ImageBase64)
	if err != nil {
		t.Fatalf("image is not base64: %v", err)
	}
	if len(data) != res.Bytes {
		t.Errorf("bytes: got %d, reported %d", len(data), res.Bytes)
	}
	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("image is not a JPEG: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 80 || b.Dy() != 80 {
		t.Errorf("decoded: got %dx%d, want 80x80", b.Dx(), b.Dy())
	}
}

func TestHandleToolsCall_Generate_Reproducible(t *testing.T) {
	s := New(Config{TileRoot: tileDir(t)})
	src := writeImageFile(t, t.TempDir(), "source.png", 100, 100, color.RGBA{200, 100, 0, 255})

	var first, replay generateResult
	decodeResult(t, callTool(t, s, "mosaic_generate", map[string]interface{}{
		"source_path":  src,
		"include_plan": true,
	}), &first)
	decodeResult(t, callTool(t, s, "mosaic_generate", map[string]interface{}{
		"source_path":  src,
		"seed":         first.Seed,
		"include_plan": true,
	}), &replay)

	if first.ImageBase64 != replay.ImageBase64 {
		t.Error("replaying the reported seed produced a different image")
	}
	if first.Plan == nil || replay.Plan == nil {
		t.Fatal("plan missing")
	}
	for i := range first.Plan.Tiles {
		if first.Plan.Tiles[i] != replay.Plan.Tiles[i] {
			t.Fatalf("plans differ at cell %d", i)
		}
	}
}

func TestHandleToolsCall_Generate_OutputPath(t *testing.T) {
	s := New(Config{})
	tiles := tileDir(t)
	src := writeImageFile(t, t.TempDir(), "source.png", 40, 40, color.RGBA{0, 0, 250, 255})
	out := filepath.Join(t.TempDir(), "mosaic.jpg")

	var res generateResult
	decodeResult(t, callTool(t, s, "mosaic_generate", map[string]interface{}{
		"source_path": src,
		"dir":         tiles,
		"output_path": out,
		"grid_color":  "#00000080",
		"scorer":      "lab",
	}), &res)

	if res.OutputPath != out || res.ImageBase64 != "" {
		t.Errorf("got output_path=%q and %d base64 bytes", res.OutputPath, len(res.ImageBase64))
	}
	if res.Plan != nil {
		t.Error("plan returned without include_plan")
	}
	if res.TileDir != tiles {
		t.Errorf("tile_dir: got %s, want %s", res.TileDir, tiles)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("output not written: %v", err)
	}
	if len(data) != res.Bytes {
		t.Errorf("file holds %d bytes, reported %d", len(data), res.Bytes)
	}
}

func TestHandleToolsCall_Generate_Errors(t *testing.T) {
	tiles := tileDir(t)
	dir := t.TempDir()
	small := writeImageFile(t, dir, "small.png", 10, 10, color.White)
	src := writeImageFile(t, dir, "source.png", 40, 40, color.White)
	broken := filepath.Join(dir, "broken.png")
	if err := os.WriteFile(broken, []byte("garbage"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		args map[string]interface{}
		want string
	}{
		{"source smaller than a tile", map[string]interface{}{"source_path": small, "dir": tiles}, "invalid input"},
		{"undecodable source", map[string]interface{}{"source_path": broken, "dir": tiles}, "image decode failure"},
		{"unknown scorer", map[string]interface{}{"source_path": src, "dir": tiles, "scorer": "cosine"}, "unknown scorer"},
		{"bad probability", map[string]interface{}{"source_path": src, "dir": tiles, "best_probability": 2}, "best match probability"},
		{"bad quality", map[string]interface{}{"source_path": src, "dir": tiles, "quality": 500}, "quality"},
		{"canvas too large", map[string]interface{}{"source_path": src, "dir": tiles, "scale": 1 << 20}, "exceeds"},
		{"bad grid color", map[string]interface{}{"source_path": src, "dir": tiles, "grid_color": "red"}, "grid color"},
		{"missing tile dir", map[string]interface{}{"source_path": src, "dir": filepath.Join(dir, "nope")}, "tile directory"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(Config{})
			expectToolError(t, callTool(t, s, "mosaic_generate", tt.args), tt.want)
		})
	}
}

func TestExecuteTool_UnknownTool(t *testing.T) {
	s := New(Config{})
	if _, err := s.executeTool("nonexistent", json.RawMessage(`{}`)); err == nil {
		t.Error("Expected error for unknown tool")
	}
}

func TestExecuteTool_InvalidJSON(t *testing.T) {
	s := New(Config{})
	for _, tool := range []string{"image_load", "image_dimensions", "mosaic_tile_key", "mosaic_tile_library", "mosaic_generate"} {
		if _, err := s.executeTool(tool, json.RawMessage(`{invalid`)); err == nil {
			t.Errorf("%s: expected error for invalid JSON", tool)
		}
	}
}

func TestHandleToolsCall_Generate_ReloadSource(t *testing.T) {
	s := New(Config{TileRoot: tileDir(t)})
	dir := t.TempDir()
	src := writeImageFile(t, dir, "source.png", 40, 40, color.White)

	var res generateResult
	decodeResult(t, callTool(t, s, "mosaic_generate", map[string]interface{}{"source_path": src}), &res)

	// Replace the source with a larger image of the same name.
	writeImageFile(t, dir, "source.png", 60, 60, color.White)

	decodeResult(t, callTool(t, s, "mosaic_generate", map[string]interface{}{"source_path": src}), &res)
	if res.Columns != 2 {
		t.Errorf("cached source: got %d columns, want 2", res.Columns)
	}

	decodeResult(t, callTool(t, s, "mosaic_generate", map[string]interface{}{"source_path": src, "reload": true}), &res)
	if res.Columns != 3 {
		t.Errorf("reloaded source: got %d columns, want 3", res.Columns)
	}
}
