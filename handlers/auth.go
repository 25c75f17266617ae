package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/talqs/talqs/backend/go-services/pkg/middleware"
)

// defaultRevokeTTL is used when a token carries no exp claim.
const defaultRevokeTTL = 24 * time.Hour

// Revoker stores revoked bearer tokens.
type Revoker interface {
	Revoke(ctx context.Context, token string, ttl time.Duration) error
}

// AuthHandler serves token revocation. It must be mounted behind
// middleware.AuthMiddleware.
type AuthHandler struct {
	revoker Revoker
}

func NewAuthHandler(r Revoker) *AuthHandler {
	return &AuthHandler{revoker: r}
}

// Register routes under /api
func (h *AuthHandler) Register(rg gin.IRouter) {
	rg.POST("/api/logout", h.Logout)
}

// Logout revokes the current access token until it would have expired.
func (h *AuthHandler) Logout(c *gin.Context) {
	token := c.GetString(middleware.TokenKey)
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing Authorization header"})
		return
	}
	ttl := defaultRevokeTTL
	if claims, ok := c.Get(middleware.ClaimsKey); ok {
		if cm, ok := claims.(map[string]interface{}); ok {
			if exp, err := expFromClaims(cm); err == nil {
				ttl = time.Until(exp)
			}
		}
	}
	if ttl > 0 {
		if err := h.revoker.Revoke(c.Request.Context(), token, ttl); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to revoke access token"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// expFromClaims returns the exp claim as time.Time.
func expFromClaims(claims map[string]interface{}) (time.Time, error) {
	v, ok := claims["exp"]
	if !ok {
		return time.Time{}, fmt.Errorf("exp claim not present")
	}
	// exp may be float64 (json number) or json.Number; handle common cases
	switch vv := v.(type) {
	case float64:
		return time.Unix(int64(vv), 0), nil
	case int64:
		return time.Unix(vv, 0), nil
	case json.Number:
		i64, err := vv.Int64()
		if err != nil {
			return time.Time{}, err
		}
		return time.Unix(i64, 0), nil
	default:
		return time.Time{}, fmt.Errorf("unsupported exp type %T", v)
	}
}
