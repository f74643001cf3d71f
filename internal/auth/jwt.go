// Package auth issues and verifies actor tokens. Identities are managed
// elsewhere; a token only asserts who is calling and in which role.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrMissingToken = errors.New("authorization token required")
)

// Role distinguishes group members from operators acting for the company.
type Role string

const (
	RoleMember   Role = "member"
	RoleOperator Role = "operator"
)

// Actor is the verified caller behind a request.
type Actor struct {
	ID   string
	Name string
	Role Role
}

// Claims represents the custom JWT claims for an actor.
type Claims struct {
	ActorID string `json:"actor_id"`
	Name    string `json:"name,omitempty"`
	Role    Role   `json:"role"`
	jwt.RegisteredClaims
}

// JWTManager handles JWT token generation and validation.
type JWTManager struct {
	secretKey     []byte
	tokenDuration time.Duration
	now           func() time.Time
}

// NewJWTManager creates a new JWT manager with the given secret and token duration.
func NewJWTManager(secretKey string, tokenDuration time.Duration) *JWTManager {
	return &JWTManager{
		secretKey:     []byte(secretKey),
		tokenDuration: tokenDuration,
		now:           time.Now,
	}
}

// Generate creates a signed token for the actor.
func (m *JWTManager) Generate(actor Actor) (string, error) {
	if actor.ID == "" {
		return "", fmt.Errorf("%w: actor id is required", ErrInvalidToken)
	}
	role := actor.Role
	if role == "" {
		role = RoleMember
	}
	now := m.now()
	claims := &Claims{
		ActorID: actor.ID,
		Name:    actor.Name,
		Role:    role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actor.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(m.tokenDuration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(m.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// Validate parses and validates a token, returning the actor it names.
func (m *JWTManager) Validate(tokenString string) (*Actor, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&Claims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return m.secretKey, nil
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.ActorID == "" {
		return nil, ErrInvalidToken
	}
	return &Actor{ID: claims.ActorID, Name: claims.Name, Role: claims.Role}, nil
}
