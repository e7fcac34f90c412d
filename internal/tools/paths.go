package tools

import (
	"context"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func (s *Server) handleGetSemanticTree(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := parseArgs(req)
	if err != nil {
		return errResult(err.Error()), nil
	}
	if err := requireArgs(args, "file"); err != nil {
		return errResult(err.Error()), nil
	}
	a, err := s.project.Analyze(ctx, getStringArg(args, "file"))
	if err != nil {
		return failure(err), nil
	}
	return textResult(a.Result.Format()), nil
}

func (s *Server) handleGetNodeSource(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := parseArgs(req)
	if err != nil {
		return errResult(err.Error()), nil
	}
	if err := requireArgs(args, "file", "semantic_path"); err != nil {
		return errResult(err.Error()), nil
	}
	a, n, err := s.project.Node(ctx, getStringArg(args, "file"), getStringArg(args, "semantic_path"))
	if err != nil {
		return failure(err), nil
	}
	lines := strings.Split(a.Content, "\n")
	return jsonResult(map[string]any{
		"semantic_path": n.Path,
		"name":          n.Name,
		"kind":          n.Kind,
		"file":          a.File,
		"start_line":    n.StartLine,
		"end_line":      n.EndLine,
		"source":        numberLines(lines, n.StartLine, n.EndLine),
	}), nil
}

func (s *Server) handlePathsAtLine(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := parseArgs(req)
	if err != nil {
		return errResult(err.Error()), nil
	}
	if err := requireArgs(args, "file"); err != nil {
		return errResult(err.Error()), nil
	}
	line := getIntArg(args, "line", 0)
	if line < 1 {
		return errResult("line must be a positive integer"), nil
	}
	a, err := s.project.Analyze(ctx, getStringArg(args, "file"))
	if err != nil {
		return failure(err), nil
	}
	paths := a.Result.PathsAt(line)
	if paths == nil {
		paths = []string{}
	}
	innermost, _ := a.Result.Innermost(line)
	return jsonResult(map[string]any{
		"file":      a.File,
		"line":      line,
		"paths":     paths,
		"innermost": innermost,
	}), nil
}
