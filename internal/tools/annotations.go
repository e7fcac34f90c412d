package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/DeusData/syl/internal/annotation"
	"github.com/DeusData/syl/internal/workspace"
)

const defaultAuthor = "agent"

func (s *Server) handleListAnnotations(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := parseArgs(req)
	if err != nil {
		return errResult(err.Error()), nil
	}
	if err := requireArgs(args, "file"); err != nil {
		return errResult(err.Error()), nil
	}
	file := getStringArg(args, "file")
	if semPath := getStringArg(args, "semantic_path"); semPath != "" {
		list, err := s.project.Store().ForPath(ctx, file, semPath)
		if err != nil {
			return failure(err), nil
		}
		return jsonResult(map[string]any{"file": file, "semantic_path": semPath, "annotations": list}), nil
	}
	f, err := s.project.Store().Load(ctx, file)
	if err != nil {
		return failure(err), nil
	}
	return jsonResult(f), nil
}

func (s *Server) handleAddAnnotation(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := parseArgs(req)
	if err != nil {
		return errResult(err.Error()), nil
	}
	if err := requireArgs(args, "file", "semantic_path", "body"); err != nil {
		return errResult(err.Error()), nil
	}
	file, semPath := getStringArg(args, "file"), getStringArg(args, "semantic_path")
	author := getStringArg(args, "author")
	if author == "" {
		author = defaultAuthor
	}

	a, err := s.project.Store().Add(ctx, file, semPath, getStringArg(args, "body"), author)
	if err != nil {
		return failure(err), nil
	}
	result := map[string]any{"file": file, "semantic_path": semPath, "annotation": a}

	// Warn when the note is attached to a path the file does not have.
	if an, err := s.project.Analyze(ctx, file); err == nil {
		if _, ok := an.Result.Lookup(semPath); !ok {
			result["warning"] = fmt.Sprintf("semantic path %q does not exist in %s; the annotation is stored but orphaned", semPath, file)
		}
	}
	return jsonResult(result), nil
}

func (s *Server) handleUpdateAnnotation(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := parseArgs(req)
	if err != nil {
		return errResult(err.Error()), nil
	}
	if err := requireArgs(args, "file", "semantic_path", "id", "body"); err != nil {
		return errResult(err.Error()), nil
	}
	a, err := s.project.Store().Update(ctx,
		getStringArg(args, "file"), getStringArg(args, "semantic_path"),
		getStringArg(args, "id"), getStringArg(args, "body"))
	if errors.Is(err, annotation.ErrNotFound) {
		return errResult(fmt.Sprintf("annotation not found: %s", getStringArg(args, "id"))), nil
	}
	if err != nil {
		return failure(err), nil
	}
	return jsonResult(a), nil
}

func (s *Server) handleDeleteAnnotation(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := parseArgs(req)
	if err != nil {
		return errResult(err.Error()), nil
	}
	if err := requireArgs(args, "file", "semantic_path", "id"); err != nil {
		return errResult(err.Error()), nil
	}
	id := getStringArg(args, "id")
	removed, err := s.project.Store().Remove(ctx, getStringArg(args, "file"), getStringArg(args, "semantic_path"), id)
	if err != nil {
		return failure(err), nil
	}
	if !removed {
		return errResult(fmt.Sprintf("annotation not found: %s", id)), nil
	}
	return jsonResult(map[string]any{"deleted": id}), nil
}

func (s *Server) handleResolveAnnotations(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := parseArgs(req)
	if err != nil {
		return errResult(err.Error()), nil
	}
	if err := requireArgs(args, "file"); err != nil {
		return errResult(err.Error()), nil
	}
	r, err := s.project.Resolve(ctx, getStringArg(args, "file"))
	if err != nil {
		return failure(err), nil
	}

	type entry struct {
		SemanticPath string `json:"semantic_path"`
		ID           string `json:"id"`
		Body         string `json:"body"`
		Author       string `json:"author"`
		Orphaned     bool   `json:"orphaned"`
		Kind         string `json:"kind,omitempty"`
		StartLine    int    `json:"start_line,omitempty"`
		EndLine      int    `json:"end_line,omitempty"`
	}
	entries := make([]entry, 0, len(r.Resolved))
	for _, ra := range r.Resolved {
		e := entry{
			SemanticPath: ra.Path,
			ID:           ra.Annotation.ID,
			Body:         ra.Annotation.Body,
			Author:       ra.Annotation.Author,
			Orphaned:     ra.Orphaned,
		}
		if ra.Node != nil {
			e.Kind, e.StartLine, e.EndLine = ra.Node.Kind, ra.Node.StartLine, ra.Node.EndLine
		}
		entries = append(entries, e)
	}
	return jsonResult(map[string]any{
		"file":         r.File,
		"supported":    r.Supported,
		"annotations":  entries,
		"total":        r.Report.Total,
		"orphan_count": r.Report.OrphanCount,
	}), nil
}

func (s *Server) handleDetectOrphans(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := parseArgs(req)
	if err != nil {
		return errResult(err.Error()), nil
	}
	var reports []workspace.FileReport
	if file := getStringArg(args, "file"); file != "" {
		reports, err = s.project.ScanFiles(ctx, []string{file})
	} else {
		reports, err = s.project.Scan(ctx)
	}
	if err != nil {
		return failure(err), nil
	}
	orphans := 0
	for _, r := range reports {
		orphans += r.OrphanCount
	}
	return jsonResult(map[string]any{
		"files":        reports,
		"orphan_count": orphans,
	}), nil
}
