package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/DeusData/syl/internal/workspace"
)

type annotationBody struct {
	File   string `json:"file"`
	Path   string `json:"path"`
	Body   string `json:"body"`
	Author string `json:"author"`
}

func (s *Server) handleListAnnotations(c *gin.Context) {
	file := c.Query("file")
	if file == "" {
		badRequest(c, "file required")
		return
	}
	f, err := s.project.Store().Load(c.Request.Context(), file)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, f)
}

func (s *Server) handleAddAnnotation(c *gin.Context) {
	var in annotationBody
	if err := c.ShouldBindJSON(&in); err != nil || in.File == "" || in.Path == "" || in.Body == "" {
		badRequest(c, "file, path, and body required")
		return
	}
	if in.Author == "" {
		in.Author = "anonymous"
	}
	a, err := s.project.Store().Add(c.Request.Context(), in.File, in.Path, in.Body, in.Author)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, a)
}

func (s *Server) handleUpdateAnnotation(c *gin.Context) {
	var in annotationBody
	if err := c.ShouldBindJSON(&in); err != nil || in.File == "" || in.Path == "" || in.Body == "" {
		badRequest(c, "file, path, and body required")
		return
	}
	a, err := s.project.Store().Update(c.Request.Context(), in.File, in.Path, c.Param("id"), in.Body)
	if err != nil {
		if statusFor(err) == http.StatusNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

// handleDeleteAnnotation takes file and path from a JSON body, falling back
// to query parameters for clients that cannot send a DELETE body.
func (s *Server) handleDeleteAnnotation(c *gin.Context) {
	var in annotationBody
	_ = c.ShouldBindJSON(&in)
	if in.File == "" {
		in.File = c.Query("file")
	}
	if in.Path == "" {
		in.Path = c.Query("path")
	}
	if in.File == "" || in.Path == "" {
		badRequest(c, "file and path required")
		return
	}
	removed, err := s.project.Store().Remove(c.Request.Context(), in.File, in.Path, c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	if !removed {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s *Server) handleResolve(c *gin.Context) {
	file := c.Query("file")
	if file == "" {
		badRequest(c, "file required")
		return
	}
	r, err := s.project.Resolve(c.Request.Context(), file)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

// handleOrphans reports orphans of one file, or of every annotated file.
func (s *Server) handleOrphans(c *gin.Context) {
	ctx := c.Request.Context()
	var (
		reports []workspace.FileReport
		err     error
	)
	if file := c.Query("file"); file != "" {
		reports, err = s.project.ScanFiles(ctx, []string{file})
	} else {
		reports, err = s.project.Scan(ctx)
	}
	if err != nil {
		fail(c, err)
		return
	}
	total, orphans := 0, 0
	for _, r := range reports {
		total += r.Total
		orphans += r.OrphanCount
	}
	c.JSON(http.StatusOK, gin.H{"files": reports, "total": total, "orphanCount": orphans})
}

func (s *Server) handlePaths(c *gin.Context) {
	file := c.Query("file")
	if file == "" {
		badRequest(c, "file required")
		return
	}
	a, err := s.project.Analyze(c.Request.Context(), file)
	if err != nil {
		fail(c, err)
		return
	}
	if raw := c.Query("line"); raw != "" {
		line, err := strconv.Atoi(raw)
		if err != nil || line < 1 {
			badRequest(c, "line must be a positive integer")
			return
		}
		paths := a.Result.PathsAt(line)
		if paths == nil {
			paths = []string{}
		}
		c.JSON(http.StatusOK, gin.H{"file": file, "line": line, "paths": paths})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"file":       file,
		"language":   a.Config.Language,
		"nodes":      a.Result.Roots,
		"lineToPath": a.Result.LineToPaths,
	})
}
