package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/talqs/talqs/backend/go-services/internal/apperrors"
	"github.com/talqs/talqs/backend/go-services/pkg/logger"
	"github.com/talqs/talqs/backend/go-services/pkg/middleware"
)

// Warnings attached to degraded responses.
const (
	summaryFallbackWarning = "Using fallback summarization"
	answerFallbackWarning  = "Using rule-based fallback answer"
	bulkFallbackWarning    = "Some answers used the rule-based fallback"
)

// writeError maps err onto its HTTP status and a client-safe message.
func writeError(c *gin.Context, err error) {
	status := apperrors.HTTPStatus(err)
	if status >= 500 {
		logger.With("request_id", c.GetString(middleware.RequestIDKey), "path", c.Request.URL.Path).
			Error("request failed", "error", err)
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, gin.H{"error": apperrors.PublicMessage(err)})
}

func badRequest(c *gin.Context, msg string) {
	writeError(c, apperrors.Validation(msg))
}
