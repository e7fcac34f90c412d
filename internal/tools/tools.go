// Package tools exposes a project's semantic paths and annotations as MCP
// tools, so coding agents can read and write notes the same way the UI does.
package tools

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/DeusData/syl/internal/workspace"
)

// Server wraps the MCP server with tool handlers.
type Server struct {
	mcp     *mcp.Server
	project *workspace.Project
}

// NewServer creates a new MCP server with all tools registered.
func NewServer(p *workspace.Project, version string) *Server {
	srv := &Server{
		project: p,
		mcp: mcp.NewServer(
			&mcp.Implementation{
				Name:    "syl",
				Version: version,
			},
			nil,
		),
	}
	srv.registerTools()
	return srv
}

// MCPServer returns the underlying MCP server.
func (s *Server) MCPServer() *mcp.Server {
	return s.mcp
}

func (s *Server) registerTools() {
	s.mcp.AddTool(&mcp.Tool{
		Name:        "list_files",
		Description: "List the project's source files that have a supported language, with the language of each. Directories such as node_modules, .git and dist are skipped.",
		InputSchema: json.RawMessage(`{"type": "object"}`),
	}, s.handleListFiles)

	s.mcp.AddTool(&mcp.Tool{
		Name:        "read_file",
		Description: "Read a project file with line numbers. Supports line range selection for large files.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"path": {
					"type": "string",
					"description": "File path relative to the project root"
				},
				"start_line": {
					"type": "integer",
					"description": "Start reading from this line (1-based, optional)"
				},
				"end_line": {
					"type": "integer",
					"description": "Stop reading at this line (inclusive, optional)"
				}
			},
			"required": ["path"]
		}`),
	}, s.handleReadFile)

	s.mcp.AddTool(&mcp.Tool{
		Name:        "get_semantic_tree",
		Description: "Return the semantic tree of a file: every named declaration (function, class, method, variable...) with its semantic path, kind and line range. Paths look like 'Class.method'; same-named siblings get an index such as 'helper[2]'.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"file": {
					"type": "string",
					"description": "File path relative to the project root"
				}
			},
			"required": ["file"]
		}`),
	}, s.handleGetSemanticTree)

	s.mcp.AddTool(&mcp.Tool{
		Name:        "get_node_source",
		Description: "Return the source code of the declaration at a semantic path, with line numbers.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"file": {
					"type": "string",
					"description": "File path relative to the project root"
				},
				"semantic_path": {
					"type": "string",
					"description": "Semantic path of the node (e.g. 'MyClass.myMethod')"
				}
			},
			"required": ["file", "semantic_path"]
		}`),
	}, s.handleGetNodeSource)

	s.mcp.AddTool(&mcp.Tool{
		Name:        "paths_at_line",
		Description: "Return the semantic paths enclosing a line, outermost first.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"file": {
					"type": "string",
					"description": "File path relative to the project root"
				},
				"line": {
					"type": "integer",
					"description": "1-based line number"
				}
			},
			"required": ["file", "line"]
		}`),
	}, s.handlePathsAtLine)

	s.mcp.AddTool(&mcp.Tool{
		Name:        "list_annotations",
		Description: "List the annotations of a file, grouped by semantic path. With semantic_path, only that path's annotations are returned.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"file": {
					"type": "string",
					"description": "File path relative to the project root"
				},
				"semantic_path": {
					"type": "string",
					"description": "Restrict to one semantic path (optional)"
				}
			},
			"required": ["file"]
		}`),
	}, s.handleListAnnotations)

	s.mcp.AddTool(&mcp.Tool{
		Name:        "add_annotation",
		Description: "Attach a note to the declaration at a semantic path. Use get_semantic_tree first to find valid paths.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"file": {"type": "string", "description": "File path relative to the project root"},
				"semantic_path": {"type": "string", "description": "Semantic path to annotate"},
				"body": {"type": "string", "description": "Annotation text"},
				"author": {"type": "string", "description": "Author name (default 'agent')"}
			},
			"required": ["file", "semantic_path", "body"]
		}`),
	}, s.handleAddAnnotation)

	s.mcp.AddTool(&mcp.Tool{
		Name:        "update_annotation",
		Description: "Replace the text of an existing annotation.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"file": {"type": "string", "description": "File path relative to the project root"},
				"semantic_path": {"type": "string", "description": "Semantic path the annotation is stored under"},
				"id": {"type": "string", "description": "Annotation id"},
				"body": {"type": "string", "description": "New annotation text"}
			},
			"required": ["file", "semantic_path", "id", "body"]
		}`),
	}, s.handleUpdateAnnotation)

	s.mcp.AddTool(&mcp.Tool{
		Name:        "delete_annotation",
		Description: "Delete an annotation. This action is irreversible.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"file": {"type": "string", "description": "File path relative to the project root"},
				"semantic_path": {"type": "string", "description": "Semantic path the annotation is stored under"},
				"id": {"type": "string", "description": "Annotation id"}
			},
			"required": ["file", "semantic_path", "id"]
		}`),
	}, s.handleDeleteAnnotation)

	s.mcp.AddTool(&mcp.Tool{
		Name:        "resolve_annotations",
		Description: "Resolve a file's annotations against its current source: each annotation is returned with the node it is attached to and its line range, or flagged as orphaned when the path no longer exists.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"file": {"type": "string", "description": "File path relative to the project root"}
			},
			"required": ["file"]
		}`),
	}, s.handleResolveAnnotations)

	s.mcp.AddTool(&mcp.Tool{
		Name:        "detect_orphans",
		Description: "Report annotations whose semantic path no longer exists, for one file or, when file is omitted, for every annotated file in the project.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"file": {"type": "string", "description": "File path relative to the project root (optional)"}
			}
		}`),
	}, s.handleDetectOrphans)
}

// jsonResult marshals data to JSON and returns as tool result.
func jsonResult(data any) *mcp.CallToolResult {
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return errResult("json marshal err=" + err.Error())
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(b)},
		},
	}
}

// textResult returns plain text as tool result.
func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}

// errResult returns a tool result indicating an error.
func errResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: msg},
		},
		IsError: true,
	}
}

// parseArgs unmarshals the raw JSON arguments into a map.
func parseArgs(req *mcp.CallToolRequest) (map[string]any, error) {
	if req.Params == nil || len(req.Params.Arguments) == 0 {
		return map[string]any{}, nil
	}
	var m map[string]any
	if err := json.Unmarshal(req.Params.Arguments, &m); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}
	return m, nil
}

// getStringArg extracts a string argument from parsed args.
func getStringArg(args map[string]any, key string) string {
	s, _ := args[key].(string)
	return s
}

// getIntArg extracts an integer argument with a default value.
func getIntArg(args map[string]any, key string, defaultVal int) int {
	f, ok := args[key].(float64) // JSON numbers decode as float64
	if !ok {
		return defaultVal
	}
	return int(f)
}

// requireArgs returns an error naming the first missing string argument.
func requireArgs(args map[string]any, keys ...string) error {
	for _, k := range keys {
		if getStringArg(args, k) == "" {
			return fmt.Errorf("%s is required", k)
		}
	}
	return nil
}

// failure turns a workspace or store error into a tool error result.
func failure(err error) *mcp.CallToolResult {
	if errors.Is(err, workspace.ErrNoSuchPath) {
		return errResult(err.Error() + ". Use get_semantic_tree to see available paths.")
	}
	return errResult(err.Error())
}
