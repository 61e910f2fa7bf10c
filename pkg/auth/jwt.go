package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/dmehra2102/prod-golang-projects/medibook/config"
	"github.com/dmehra2102/prod-golang-projects/medibook/internal/domain"
)

var (
	ErrTokenExpired = errors.New("token has expired")
	ErrTokenInvalid = errors.New("token is invalid")
)

type medibookClaims struct {
	jwt.RegisteredClaims
	Username string `json:"username"`
	Role     string `json:"role"`
}

type JWTManager struct {
	cfg config.JWTConfig
	now func() time.Time
}

func NewJWTManager(cfg config.JWTConfig) *JWTManager {
	return &JWTManager{cfg: cfg, now: time.Now}
}

func (m *JWTManager) GenerateAccessToken(claims *domain.Claims) (*domain.Token, error) {
	now := m.now()
	expiresAt := now.Add(m.cfg.AccessTokenTTL)

	jwtClaims := medibookClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    m.cfg.Issuer,
			Subject:   claims.UserID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			// 10s clock skew tolerance
			NotBefore: jwt.NewNumericDate(now.Add(-10 * time.Second)),
		},
		Username: claims.Username,
		Role:     string(claims.Role),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwtClaims)
	signed, err := token.SignedString([]byte(m.cfg.Secret))
	if err != nil {
		return nil, fmt.Errorf("signing access token: %w", err)
	}

	return &domain.Token{
		AccessToken: signed,
		ExpiresAt:   expiresAt,
		TokenType:   "Bearer",
	}, nil
}

func (m *JWTManager) ValidateAccessToken(tokenString string) (*domain.Claims, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&medibookClaims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(m.cfg.Secret), nil
		},
		jwt.WithIssuer(m.cfg.Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(*medibookClaims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, ErrTokenInvalid
	}

	role := domain.Role(claims.Role)
	if !role.IsValid() {
		return nil, ErrTokenInvalid
	}

	return &domain.Claims{
		UserID:   userID,
		Username: claims.Username,
		Role:     role,
	}, nil
}
