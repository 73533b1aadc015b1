package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

const (
	AccessToken  = "access"
	RefreshToken = "refresh"
)

type Claims struct {
	UserID string `json:"sub"`
	Kind   string `json:"kind"`
	jwt.RegisteredClaims
}

// Authenticator signs and verifies the two session cookies. Access and
// refresh tokens use different secrets so one can never stand in for the
// other.
type Authenticator struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewAuthenticator(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *Authenticator {
	return &Authenticator{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

func (a *Authenticator) AccessTTL() time.Duration  { return a.accessTTL }
func (a *Authenticator) RefreshTTL() time.Duration { return a.refreshTTL }

func (a *Authenticator) GenerateAccessToken(userID string) (string, error) {
	return a.generate(userID, AccessToken, a.accessSecret, a.accessTTL)
}

func (a *Authenticator) GenerateRefreshToken(userID string) (string, error) {
	return a.generate(userID, RefreshToken, a.refreshSecret, a.refreshTTL)
}

func (a *Authenticator) ValidateAccessToken(tokenString string) (*Claims, error) {
	return a.validate(tokenString, AccessToken, a.accessSecret)
}

func (a *Authenticator) ValidateRefreshToken(tokenString string) (*Claims, error) {
	return a.validate(tokenString, RefreshToken, a.refreshSecret)
}

func (a *Authenticator) generate(userID, kind string, secret []byte, validity time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		Kind:   kind,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(validity)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func (a *Authenticator) validate(tokenString, kind string, secret []byte) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Kind != kind || claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
