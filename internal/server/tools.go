package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// libraryProperties are the schema properties every library-backed tool accepts.
func libraryProperties() map[string]interface{} {
	return map[string]interface{}{
		"dir": map[string]interface{}{
			"type":        "string",
			"description": "Absolute path to the tile directory. Defaults to the server's tile root.",
		},
		"label": map[string]interface{}{
			"type":        "string",
			"description": "Optional content label; tiles are read from the sub-directory named by its key",
		},
		"tile_width": map[string]interface{}{
			"type":        "integer",
			"description": "Cell width in source pixels. Default 20",
			"default":     20,
		},
		"tile_height": map[string]interface{}{
			"type":        "integer",
			"description": "Cell height in source pixels. Default 20",
			"default":     20,
		},
		"divisions": map[string]interface{}{
			"type":        "integer",
			"description": "Color descriptor grid size per cell (N for an N×N grid). Default 1",
			"default":     1,
		},
		"normalize": map[string]interface{}{
			"type":        "boolean",
			"description": "Centre-crop and resize tiles to the cell size when loading. Default true",
			"default":     true,
		},
		"reload": map[string]interface{}{
			"type":        "boolean",
			"description": "Re-read files from disk even if already loaded (the tile directory, and for mosaic_generate the source image)",
			"default":     false,
		},
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	generateProps := libraryProperties()
	generateProps["source_path"] = map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to the source photograph",
	}
	generateProps["output_path"] = map[string]interface{}{
		"type":        "string",
		"description": "Where to write the JPEG. When omitted the image is returned base64-encoded.",
	}
	generateProps["scale"] = map[string]interface{}{
		"type":        "integer",
		"description": "Output size multiplier per cell. Default 1",
		"default":     1,
	}
	generateProps["quality"] = map[string]interface{}{
		"type":        "integer",
		"description": "JPEG quality (1-100). Default 80",
		"default":     80,
	}
	generateProps["seed"] = map[string]interface{}{
		"type":        "integer",
		"description": "Random seed. The same seed, source and library reproduce the same mosaic. Random when omitted; the seed used is returned.",
	}
	generateProps["best_probability"] = map[string]interface{}{
		"type":        "number",
		"description": "Chance (0-1) of using the best tile rather than the runner-up. Default 0.8",
		"default":     0.8,
	}
	generateProps["scorer"] = map[string]interface{}{
		"type":        "string",
		"enum":        []string{"quadrant", "lab"},
		"description": "Descriptor scoring function. Default quadrant",
		"default":     "quadrant",
	}
	generateProps["grid_color"] = map[string]interface{}{
		"type":        "string",
		"description": "Optional hex color (#RRGGBB or #RRGGBBAA) for cell boundary lines",
	}
	generateProps["include_plan"] = map[string]interface{}{
		"type":        "boolean",
		"description": "Return the visitation order and per-cell tile indices",
		"default":     false,
	}

	return []Tool{
		// Basic Image Information
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions and format. The decoded image is cached for later mosaic runs.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_dimensions",
			Description: "Get the width and height of an image file.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
				},
				"required": []string{"path"},
			},
		},

		// Mosaic Operations
		{
			Name:        "mosaic_tile_key",
			Description: "Return the tile sub-directory name for a content label.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"label": map[string]interface{}{
						"type":        "string",
						"description": "Content label, e.g. \"beach\"",
					},
				},
				"required": []string{"label"},
			},
		},
		{
			Name:        "mosaic_tile_library",
			Description: "Load a tile directory as a mosaic library and list each tile with its descriptor colors.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": libraryProperties(),
			},
		},
		{
			Name:        "mosaic_generate",
			Description: "Render a photo mosaic of a source image from a tile library and return it as JPEG.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": generateProps,
				"required":   []string{"source_path"},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
