package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	errSignToken    = errors.New("sign token error")
)

type sessionClaims struct {
	UserId string `json:"userId"`
	jwt.RegisteredClaims
}

// TokenManager выпускает и проверяет сессионные HS256 токены
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	parser *jwt.Parser
	now    func() time.Time
}

func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{
		secret: []byte(secret),
		ttl:    ttl,
		parser: jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})),
		now:    time.Now,
	}
}

func (m *TokenManager) Issue(userId string) (string, error) {
	now := m.now()
	claims := sessionClaims{
		UserId: userId,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userId,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("%w: %w", errSignToken, err)
	}
	return signed, nil
}

// Parse возвращает id пользователя из валидного токена
func (m *TokenManager) Parse(token string) (string, error) {
	claims := &sessionClaims{}
	parsed, err := m.parser.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return m.secret, nil
	})
	if err != nil || !parsed.Valid {
		return "", ErrInvalidToken
	}

	userId := claims.UserId
	if userId == "" {
		userId = claims.Subject
	}
	if userId == "" {
		return "", ErrInvalidToken
	}
	return userId, nil
}
