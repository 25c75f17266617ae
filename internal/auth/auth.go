// Package auth provides the optional bearer-token verifiers and the Redis
// revocation list used by the HTTP layer.
package auth

import (
	"context"
	"fmt"

	"github.com/talqs/talqs/backend/go-services/internal/config"
	"github.com/talqs/talqs/backend/go-services/pkg/middleware"
)

// NewVerifier returns the verifier for cfg.Mode, or nil when auth is off.
func NewVerifier(ctx context.Context, cfg config.AuthConfig) (middleware.Verifier, error) {
	switch cfg.Mode {
	case config.AuthNone, "":
		return nil, nil
	case config.AuthJWT:
		v, err := NewJWTVerifier(cfg.JWTSecret)
		if err != nil {
			return nil, err
		}
		return v, nil
	case config.AuthOIDC:
		v, err := NewOIDCVerifier(ctx, cfg.Issuer(), cfg.KeycloakClientID)
		if err != nil {
			return nil, err
		}
		return v, nil
	default:
		return nil, fmt.Errorf("unknown auth mode %q", cfg.Mode)
	}
}
