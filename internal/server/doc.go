// Package server implements the MCP (Model Context Protocol) server for the
// photo mosaic engine.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Basic Image Information:
//   - image_load: Load image and get metadata
//   - image_dimensions: Get width and height
//
// Mosaic Operations:
//   - mosaic_tile_key: Map a content label to its tile directory name
//   - mosaic_tile_library: Load a tile directory and list tile descriptors
//   - mosaic_generate: Render a mosaic to a file or base64 JPEG
//
// # Caching
//
// Source images are cached by path for the lifetime of the process. Tile
// libraries are built once per directory, tile size and division count and
// then shared read-only by every later run; pass reload to pick up changes
// on disk.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: Additional error details (typically the Go error string)
//
// # Usage
//
//	srv := server.New(server.Config{Version: "1.0.0", TileRoot: "/srv/tiles"})
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
