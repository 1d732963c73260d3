package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	herrors "github.com/yourusername/hivestore/pkg/errors"
)

// statusOf maps an error to its HTTP status.
func statusOf(err error) int {
	switch {
	case herrors.IsValidation(err):
		return http.StatusBadRequest
	case herrors.IsNotFound(err):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// abortWithError writes {"error": "..."} with the mapped status.
// Internal errors are logged and their text is not exposed.
func abortWithError(c *gin.Context, err error) {
	status := statusOf(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		msg = http.StatusText(status)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

// badRequest reports a binding failure.
func badRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

func errorFields(c *gin.Context) []zap.Field {
	if len(c.Errors) == 0 {
		return nil
	}
	return []zap.Field{zap.String("error", c.Errors.String())}
}
