package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func (s *Server) handleListFiles(ctx context.Context, _ *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	files, err := s.project.SourceFiles(ctx)
	if err != nil {
		return errResult(fmt.Sprintf("list files: %v", err)), nil
	}
	type entry struct {
		Path     string `json:"path"`
		Language string `json:"language"`
	}
	entries := make([]entry, 0, len(files))
	for _, f := range files {
		entries = append(entries, entry{Path: f.RelPath, Language: string(f.Language)})
	}
	return jsonResult(map[string]any{
		"root":  s.project.Root(),
		"count": len(entries),
		"files": entries,
	}), nil
}

func (s *Server) handleReadFile(_ context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := parseArgs(req)
	if err != nil {
		return errResult(err.Error()), nil
	}
	if err := requireArgs(args, "path"); err != nil {
		return errResult(err.Error()), nil
	}
	path := getStringArg(args, "path")
	startLine := getIntArg(args, "start_line", 0)
	endLine := getIntArg(args, "end_line", 0)

	content, err := s.project.ReadFile(path)
	if err != nil {
		return failure(err), nil
	}

	lines := strings.Split(content, "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	result := map[string]any{
		"path":        path,
		"total_lines": len(lines),
		"content":     numberLines(lines, startLine, endLine),
	}
	if startLine > 0 || endLine > 0 {
		result["range"] = fmt.Sprintf("%d-%d", startLine, endLine)
	}
	return jsonResult(result), nil
}

// numberLines renders lines[start-1:end] as "%4d | text", one per line.
// Zero bounds mean the start or end of the file.
func numberLines(lines []string, start, end int) string {
	if start < 1 {
		start = 1
	}
	if end < 1 || end > len(lines) {
		end = len(lines)
	}
	var sb strings.Builder
	for i := start; i <= end; i++ {
		line := lines[i-1]
		if len(line) > 500 {
			line = line[:500] + "..."
		}
		fmt.Fprintf(&sb, "%4d | %s\n", i, line)
	}
	return sb.String()
}
