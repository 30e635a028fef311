package usecase

import (
	"rentaldesk/internal/domain/user"
	"rentaldesk/internal/pkg/jwt"

	"github.com/google/uuid"
)

// TokenValidator is what the auth middleware needs from the token layer: an
// access token in, a verified identity out.
type TokenValidator interface {
	ValidateToken(token string) (uuid.UUID, user.Role, error)
}

type tokenValidator struct {
	jwtService *jwt.Service
}

func NewTokenValidator(jwtService *jwt.Service) TokenValidator {
	return &tokenValidator{jwtService: jwtService}
}

func (v *tokenValidator) ValidateToken(token string) (uuid.UUID, user.Role, error) {
	claims, err := v.jwtService.ValidateToken(token)
	if err != nil {
		return uuid.Nil, "", err
	}
	// Refresh tokens are valid JWTs but must never authenticate a request.
	if claims.TokenType != jwt.TokenTypeAccess {
		return uuid.Nil, "", jwt.ErrWrongTokenType
	}

	role, err := user.NewRole(claims.Role)
	if err != nil {
		return uuid.Nil, "", err
	}
	return claims.UserID, role, nil
}
