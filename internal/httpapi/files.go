package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/DeusData/syl/internal/workspace"
)

func (s *Server) handleTree(c *gin.Context) {
	tree, err := s.project.Tree(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, tree)
}

func (s *Server) handleRead(c *gin.Context) {
	rel := c.Query("path")
	if rel == "" {
		badRequest(c, "path required")
		return
	}
	content, err := s.project.ReadFile(rel)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"path": rel, "content": content})
	case errors.Is(err, workspace.ErrPathTraversal):
		c.JSON(http.StatusForbidden, gin.H{"error": "invalid path"})
	case errors.Is(err, workspace.ErrBinaryFile):
		c.JSON(http.StatusBadRequest, gin.H{"error": "binary file", "binary": true})
	default:
		c.JSON(http.StatusNotFound, gin.H{"error": "file not found"})
	}
}

type languageInfo struct {
	Language   string   `json:"language"`
	Extensions []string `json:"extensions"`
}

// handleLanguages lists the registered languages, so the UI knows which
// files it can annotate.
func (s *Server) handleLanguages(c *gin.Context) {
	all := s.project.Registry().All()
	out := make([]languageInfo, 0, len(all))
	for _, cfg := range all {
		out = append(out, languageInfo{Language: string(cfg.Language), Extensions: cfg.Extensions})
	}
	c.JSON(http.StatusOK, out)
}
