package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/learnhub/backend/internal/models"
)

// TokenGenerator handles JWT access token generation and validation
type TokenGenerator struct {
	secret            string
	accessTokenExpiry time.Duration
}

// NewTokenGenerator creates a new token generator
func NewTokenGenerator(secret string, accessExpiry time.Duration) *TokenGenerator {
	return &TokenGenerator{
		secret:            secret,
		accessTokenExpiry: accessExpiry,
	}
}

// GenerateAccessToken creates an access token carrying the principal's ID, role and display name
func (tg *TokenGenerator) GenerateAccessToken(principal models.Principal) (string, error) {
	if principal.UserID == "" {
		return "", fmt.Errorf("user ID is required")
	}
	if !isKnownRole(principal.Role) {
		return "", fmt.Errorf("unknown role: %s", principal.Role)
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": principal.UserID,
		"role":    principal.Role,
		"name":    principal.Name,
		"exp":     now.Add(tg.accessTokenExpiry).Unix(),
		"iat":     now.Unix(),
		"type":    "access",
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(tg.secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}

	return tokenString, nil
}

// ValidateAccessToken validates an access token and returns the principal it was issued for
func (tg *TokenGenerator) ValidateAccessToken(tokenString string) (*models.Principal, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		// Validate the signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(tg.secret), nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	if !token.Valid {
		return nil, fmt.Errorf("token is invalid")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}

	tokenType, ok := claims["type"].(string)
	if !ok || tokenType != "access" {
		return nil, fmt.Errorf("token is not an access token")
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return nil, fmt.Errorf("user_id not found in token")
	}

	role, ok := claims["role"].(string)
	if !ok || !isKnownRole(role) {
		return nil, fmt.Errorf("role not found in token")
	}

	// name is optional
	name, _ := claims["name"].(string)

	return &models.Principal{UserID: userID, Role: role, Name: name}, nil
}

func isKnownRole(role string) bool {
	return role == models.RoleStudent || role == models.RoleTeacher
}
