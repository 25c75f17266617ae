package auth

import (
	"context"
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/talqs/talqs/backend/go-services/internal/config"
)

const testSecret = "test-secret-32-bytes-should-be-long-enough"

func encodeSegment(b []byte) string {
	return base64.RawURLEncoding.EncodeToString(b)
}

func TestSignAndVerify(t *testing.T) {
	tok, err := SignToken(testSecret, "user-123", 2*time.Minute, map[string]interface{}{"email": "test@example.com"})
	require.NoError(t, err)

	v, err := NewJWTVerifier(testSecret)
	require.NoError(t, err)
	got, err := v.Verify(context.Background(), tok)
	require.NoError(t, err)

	var claims map[string]interface{}
	require.NoError(t, got.Claims(&claims))
	require.Equal(t, "user-123", claims["sub"])
	require.Equal(t, "test@example.com", claims["email"])
}

func TestVerifyRejectsExpired(t *testing.T) {
	tok, err := SignToken(testSecret, "u2", -time.Minute, nil)
	require.NoError(t, err)
	v, _ := NewJWTVerifier(testSecret)
	_, err = v.Verify(context.Background(), tok)
	require.Error(t, err)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	tok, err := SignToken("secret-one-32-bytes-xxxxxxxxxxxxxxxx", "u3", time.Minute, nil)
	require.NoError(t, err)
	v, _ := NewJWTVerifier("different-secret-xxxxxxxxxxxxxxxx")
	_, err = v.Verify(context.Background(), tok)
	require.Error(t, err)
}

func TestVerifyRejectsMalformedAndAlgNone(t *testing.T) {
	v, _ := NewJWTVerifier(testSecret)
	_, err := v.Verify(context.Background(), "not.a.jwt")
	require.Error(t, err)

	headerEnc := encodeSegment([]byte(`{"alg":"none"}`))
	payloadEnc := encodeSegment([]byte(`{"sub":"u-none","exp":9999999999}`))
	_, err = v.Verify(context.Background(), headerEnc+"."+payloadEnc+".")
	require.Error(t, err)
}

func TestVerifyRejectsTamperedPayload(t *testing.T) {
	tok, err := SignToken(testSecret, "user-t", 5*time.Minute, nil)
	require.NoError(t, err)
	parts := strings.Split(tok, ".")
	require.Len(t, parts, 3)
	payload, err := jwt.NewParser().DecodeSegment(parts[1])
	require.NoError(t, err)
	parts[1] = encodeSegment([]byte(strings.Replace(string(payload), "user-t", "attacker", 1)))

	v, _ := NewJWTVerifier(testSecret)
	_, err = v.Verify(context.Background(), strings.Join(parts, "."))
	require.Error(t, err)
}

func TestVerifyRequiresSubject(t *testing.T) {
	tok, err := SignToken(testSecret, "", time.Minute, nil)
	require.NoError(t, err)
	v, _ := NewJWTVerifier(testSecret)
	_, err = v.Verify(context.Background(), tok)
	require.ErrorContains(t, err, "subject")
}

func TestNewVerifierByMode(t *testing.T) {
	v, err := NewVerifier(context.Background(), config.AuthConfig{Mode: config.AuthNone})
	require.NoError(t, err)
	require.Nil(t, v)

	v, err = NewVerifier(context.Background(), config.AuthConfig{Mode: config.AuthJWT, JWTSecret: testSecret})
	require.NoError(t, err)
	require.IsType(t, &JWTVerifier{}, v)

	_, err = NewVerifier(context.Background(), config.AuthConfig{Mode: config.AuthJWT})
	require.Error(t, err)
	_, err = NewVerifier(context.Background(), config.AuthConfig{Mode: "saml"})
	require.Error(t, err)
}
