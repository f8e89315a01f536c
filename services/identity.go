package services

import (
	"strconv"
	"strings"

	"github.com/techagentng/carefront/config"
	errs "github.com/techagentng/carefront/errors"
	"github.com/techagentng/carefront/models"
	"github.com/techagentng/carefront/services/jwt"
)

// IdentityVerifier turns a bearer credential into the caller's identity.
type IdentityVerifier interface {
	Verify(credential string) (*models.Identity, error)
}

type identityVerifier struct {
	secret string
}

func NewIdentityVerifier(conf *config.Config) IdentityVerifier {
	return &identityVerifier{secret: conf.JWTSecret}
}

// Verify accepts a raw token or a "Bearer <token>" value.
func (v *identityVerifier) Verify(credential string) (*models.Identity, error) {
	token := strings.TrimSpace(credential)
	if len(token) >= 7 && strings.EqualFold(token[:7], "bearer ") {
		token = strings.TrimSpace(token[7:])
	}
	if token == "" {
		return nil, errs.Unauthenticated("No token provided")
	}

	claims, err := jwt.ValidateAndGetClaims(token, v.secret)
	if err != nil {
		return nil, errs.InvalidCredential("Invalid token")
	}

	identity := &models.Identity{}
	switch id := claims["id"].(type) {
	case float64:
		identity.ID = strconv.FormatFloat(id, 'f', -1, 64)
	case string:
		identity.ID = id
	}
	if identity.ID == "" {
		return nil, errs.InvalidCredential("Invalid token")
	}
	identity.Role, _ = claims["role"].(string)
	identity.Email, _ = claims["email"].(string)
	return identity, nil
}
