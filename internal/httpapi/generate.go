package httpapi

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/DeusData/syl/internal/generate"
	"github.com/DeusData/syl/internal/workspace"
)

func (s *Server) handleGenerateStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"available": s.gen.Available()})
}

func (s *Server) handleGenerate(c *gin.Context) {
	var req generate.Request
	if err := c.ShouldBindJSON(&req); err != nil || req.File == "" {
		badRequest(c, "file is required")
		return
	}
	res, err := s.gen.Generate(c.Request.Context(), req)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"ok": true, "count": res.Count})
	case errors.Is(err, workspace.ErrUnsupported):
		badRequest(c, "Unsupported file type for annotation generation")
	case errors.Is(err, workspace.ErrNoSuchPath):
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("Semantic path %q not found in file", req.SemanticPath)})
	default:
		fail(c, err)
	}
}
