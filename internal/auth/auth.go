package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/frahmantamala/inventory-management/internal"
	"github.com/golang-jwt/jwt/v5"
)

// Purpose separates the three kinds of token so one can never stand in for
// another.
type Purpose string

const (
	PurposeAccess    Purpose = "access"
	PurposeRefresh   Purpose = "refresh"
	PurposeChallenge Purpose = "2fa"
)

// Claims represents JWT token claims
type Claims struct {
	UserID   int64         `json:"uid"`
	Username string        `json:"username"`
	Role     internal.Role `json:"role"`
	Purpose  Purpose       `json:"purpose"`
	jwt.RegisteredClaims
}

// TokenGenerator creates and validates signed session tokens.
type TokenGenerator interface {
	Generate(userID int64, username string, role internal.Role, purpose Purpose) (string, time.Time, error)
	Validate(tokenString string, purpose Purpose) (*Claims, error)
}

type AuthTokens struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

type JWTTokenGenerator struct {
	Secret       []byte
	AccessTTL    time.Duration
	RefreshTTL   time.Duration
	ChallengeTTL time.Duration
	now          func() time.Time
}

// NewJWTTokenGenerator creates an HS256 token generator
func NewJWTTokenGenerator(secret string, accessTTL, refreshTTL, challengeTTL time.Duration) *JWTTokenGenerator {
	return &JWTTokenGenerator{
		Secret:       []byte(secret),
		AccessTTL:    accessTTL,
		RefreshTTL:   refreshTTL,
		ChallengeTTL: challengeTTL,
		now:          time.Now,
	}
}

func (j *JWTTokenGenerator) ttl(purpose Purpose) time.Duration {
	switch purpose {
	case PurposeRefresh:
		return j.RefreshTTL
	case PurposeChallenge:
		return j.ChallengeTTL
	default:
		return j.AccessTTL
	}
}

func (j *JWTTokenGenerator) Generate(userID int64, username string, role internal.Role, purpose Purpose) (string, time.Time, error) {
	now := j.now()
	expiresAt := now.Add(j.ttl(purpose))

	claims := &Claims{
		UserID:   userID,
		Username: username,
		Role:     role,
		Purpose:  purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   fmt.Sprint(userID),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(j.Secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return tokenString, expiresAt, nil
}

// Validate checks the signature, expiry and purpose of a token.
func (j *JWTTokenGenerator) Validate(tokenString string, purpose Purpose) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return j.Secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(j.now))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, internal.ErrTokenExpired
		}
		return nil, internal.ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Purpose != purpose {
		return nil, internal.ErrInvalidToken
	}
	return claims, nil
}
