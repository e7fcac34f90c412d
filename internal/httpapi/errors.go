package httpapi

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/DeusData/syl/internal/annotation"
	"github.com/DeusData/syl/internal/generate"
	"github.com/DeusData/syl/internal/workspace"
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, workspace.ErrPathTraversal), errors.Is(err, annotation.ErrInvalidSourceFile):
		return http.StatusForbidden
	case errors.Is(err, workspace.ErrBinaryFile), errors.Is(err, workspace.ErrUnsupported):
		return http.StatusBadRequest
	case errors.Is(err, workspace.ErrNoSuchPath), errors.Is(err, annotation.ErrNotFound), errors.Is(err, fs.ErrNotExist):
		return http.StatusNotFound
	case errors.Is(err, generate.ErrUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.Canceled):
		return 499
	default:
		return http.StatusInternalServerError
	}
}

func fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		slog.Warn("http.error", "path", c.Request.URL.Path, "err", err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}
