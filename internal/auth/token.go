package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenIssuer is the issuer claim of caller tokens.
const TokenIssuer = "taskscope"

// CallerClaims are the claims carried by a caller token.
type CallerClaims struct {
	Role  string `json:"role"`
	OrgID string `json:"org"`
	jwt.RegisteredClaims
}

// IssueToken creates a signed JWT token for the given caller.
// signingKeyPEM is the PEM-encoded ECDSA private key.
func IssueToken(signingKeyPEM string, caller Caller, ttl time.Duration) (string, error) {
	signingKey, err := jwt.ParseECPrivateKeyFromPEM([]byte(signingKeyPEM))
	if err != nil {
		return "", err
	}

	now := time.Now()
	claims := &CallerClaims{
		Role:  caller.Role.String(),
		OrgID: caller.OrgID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   caller.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Issuer:    TokenIssuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodES256, claims)
	return token.SignedString(signingKey)
}
