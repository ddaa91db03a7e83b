package controllers

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"lifecontext/lifecontext/config"
	"lifecontext/lifecontext/utils/types"
)

var ErrInvalidAPIKey = errors.New("invalid api key")

// AuthController issues dashboard tokens against the configured shared key.
type AuthController struct {
	cfg config.Config
}

func NewAuthController(cfg config.Config) *AuthController {
	return &AuthController{cfg: cfg}
}

func (c *AuthController) IssueToken(req types.TokenRequest) (*types.TokenResponse, error) {
	if c.cfg.APIKey == "" || req.APIKey != c.cfg.APIKey {
		return nil, ErrInvalidAPIKey
	}
	claims := jwt.MapClaims{
		"user_id": "dashboard",
		"exp":     time.Now().Add(24 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(c.cfg.JWTSecret))
	if err != nil {
		return nil, err
	}
	return &types.TokenResponse{Token: signed}, nil
}
