package auth

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"technika/internal/domain"
)

type jwtClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

type jwtVerifier struct {
	secret          []byte
	skipExpiryCheck bool
}

// NewJWTVerifier returns an IdentityVerifier that validates HS256 JWTs
// signed with the given secret. skipExpiryCheck disables expiry/revocation
// validation and must only be enabled in non-production environments.
func NewJWTVerifier(secret string, skipExpiryCheck bool) domain.IdentityVerifier {
	return &jwtVerifier{secret: []byte(secret), skipExpiryCheck: skipExpiryCheck}
}

func (v *jwtVerifier) Verify(tokenString string) (domain.Identity, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{"HS256"})}
	if v.skipExpiryCheck {
		opts = append(opts, jwt.WithoutClaimsValidation())
	}
	claims := &jwtClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}
	if !token.Valid || claims.Subject == "" {
		return domain.Identity{}, fmt.Errorf("%w: token has no subject", domain.ErrUnauthorized)
	}
	return domain.Identity{UID: claims.Subject, Email: claims.Email}, nil
}
