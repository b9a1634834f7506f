package auth

import (
	"crypto/ecdsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/wolfeidau/taskscope/internal/models"
)

// JWTVerifier verifies caller tokens signed with the matching ECDSA private key.
type JWTVerifier struct {
	publicKey *ecdsa.PublicKey
}

// NewJWTVerifier creates a verifier from a PEM-encoded ECDSA public key.
func NewJWTVerifier(publicKeyPEM string) (*JWTVerifier, error) {
	if publicKeyPEM == "" {
		return nil, errors.New("JWT public key not provided")
	}

	publicKey, err := ParsePublicKeyPEM(publicKeyPEM)
	if err != nil {
		return nil, err
	}

	return &JWTVerifier{publicKey: publicKey}, nil
}

// Verify validates the token and returns the caller it identifies.
func (v *JWTVerifier) Verify(tokenString string) (Caller, error) {
	claims := &CallerClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodES256 {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.publicKey, nil
	},
		jwt.WithIssuer(TokenIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return Caller{}, err
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return Caller{}, fmt.Errorf("invalid sub UUID: %w", err)
	}

	orgID, err := uuid.Parse(claims.OrgID)
	if err != nil {
		return Caller{}, fmt.Errorf("invalid org UUID: %w", err)
	}

	role, err := models.ParseRole(claims.Role)
	if err != nil {
		return Caller{}, err
	}

	return Caller{ID: id, Role: role, OrgID: orgID}, nil
}

// Middleware returns an HTTP middleware that verifies caller JWTs.
// Requests without a valid token are rejected with 401; otherwise the caller
// is added to the request context.
func (v *JWTVerifier) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := zerolog.Ctx(r.Context())

			tokenString := extractBearerToken(r)
			if tokenString == "" {
				logger.Warn().Msg("Missing Authorization header")
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			caller, err := v.Verify(tokenString)
			if err != nil {
				logger.Warn().Err(err).Msg("Failed to verify caller JWT")
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := WithCaller(r.Context(), caller)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractBearerToken extracts the JWT from the Authorization header.
func extractBearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return ""
	}

	return parts[1]
}

// ParsePublicKeyPEM parses a PEM-encoded ECDSA public key.
func ParsePublicKeyPEM(pemStr string) (*ecdsa.PublicKey, error) {
	block, _ := pem.Decode([]byte(pemStr))
	if block == nil {
		return nil, errors.New("failed to decode PEM block")
	}

	pub, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse public key: %w", err)
	}

	ecdsaPub, ok := pub.(*ecdsa.PublicKey)
	if !ok {
		return nil, errors.New("not an ECDSA public key")
	}

	return ecdsaPub, nil
}
