// Package auth issues and validates the JWT pairs handed out on login.
// The userstore core treats this package as an opaque collaborator.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// Claims carried by both access and refresh tokens: the login plus the
// stable identifiers of the user and its person. Surrogate ids never
// leave the backend.
type Claims struct {
	Login      string `json:"login"`
	UserUUID   string `json:"user_uuid"`
	PersonUUID string `json:"person_uuid"`
	jwt.RegisteredClaims
}

// TokenService signs access/refresh pairs with distinct secrets.
type TokenService struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewTokenService(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *TokenService {
	return &TokenService{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

// IssueTokens returns a fresh access/refresh pair for an authenticated
// user.
func (t *TokenService) IssueTokens(login string, userUUID, personUUID uuid.UUID) (string, string, error) {
	access, err := t.sign(login, userUUID.String(), personUUID.String(), t.accessSecret, t.accessTTL)
	if err != nil {
		return "", "", err
	}
	refresh, err := t.sign(login, userUUID.String(), personUUID.String(), t.refreshSecret, t.refreshTTL)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

// RefreshTokens validates a refresh token and reissues both tokens.
func (t *TokenService) RefreshTokens(refreshToken string) (string, string, error) {
	claims, err := t.parse(refreshToken, t.refreshSecret)
	if err != nil {
		return "", "", err
	}

	access, err := t.sign(claims.Login, claims.UserUUID, claims.PersonUUID, t.accessSecret, t.accessTTL)
	if err != nil {
		return "", "", err
	}
	refresh, err := t.sign(claims.Login, claims.UserUUID, claims.PersonUUID, t.refreshSecret, t.refreshTTL)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

// ValidateAccessToken checks signature and expiry of an access token.
func (t *TokenService) ValidateAccessToken(token string) error {
	_, err := t.parse(token, t.accessSecret)
	return err
}

func (t *TokenService) sign(login, userUUID, personUUID string, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		Login:      login,
		UserUUID:   userUUID,
		PersonUUID: personUUID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userUUID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func (t *TokenService) parse(tokenString string, secret []byte) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
