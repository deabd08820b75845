package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MicahParks/keyfunc"
	"github.com/golang-jwt/jwt/v4"
	"github.com/niklvrr/TicketBoard/internal/domain"
)

var (
	ErrInvalidGoogleToken = errors.New("invalid google token")
	errJWKSInit           = errors.New("jwks init error")
)

var googleIssuers = []string{"accounts.google.com", "https://accounts.google.com"}

type GoogleVerifier struct {
	jwks     *keyfunc.JWKS
	clientId string
	parser   *jwt.Parser
}

// NewGoogleVerifier загружает JWKS и обновляет ключи в фоне
func NewGoogleVerifier(jwksURL, clientId string) (*GoogleVerifier, error) {
	jwks, err := keyfunc.Get(jwksURL, keyfunc.Options{
		RefreshInterval:   time.Hour,
		RefreshRateLimit:  5 * time.Minute,
		RefreshTimeout:    10 * time.Second,
		RefreshUnknownKID: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errJWKSInit, err)
	}
	return NewGoogleVerifierWithJWKS(jwks, clientId), nil
}

func NewGoogleVerifierWithJWKS(jwks *keyfunc.JWKS, clientId string) *GoogleVerifier {
	return &GoogleVerifier{
		jwks:     jwks,
		clientId: clientId,
		parser:   jwt.NewParser(jwt.WithValidMethods([]string{"RS256"})),
	}
}

func (v *GoogleVerifier) Verify(_ context.Context, credential string) (*domain.GoogleIdentity, error) {
	parsed, err := v.parser.Parse(credential, v.jwks.Keyfunc)
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidGoogleToken
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidGoogleToken
	}
	if !claims.VerifyAudience(v.clientId, true) {
		return nil, ErrInvalidGoogleToken
	}
	if !verifyIssuer(claims) {
		return nil, ErrInvalidGoogleToken
	}

	identity := &domain.GoogleIdentity{}
	identity.Subject, _ = claims["sub"].(string)
	identity.Email, _ = claims["email"].(string)
	identity.Name, _ = claims["name"].(string)
	if identity.Subject == "" || identity.Email == "" || identity.Name == "" {
		return nil, ErrInvalidGoogleToken
	}
	return identity, nil
}

func (v *GoogleVerifier) Close() {
	v.jwks.EndBackground()
}

func verifyIssuer(claims jwt.MapClaims) bool {
	for _, iss := range googleIssuers {
		if claims.VerifyIssuer(iss, true) {
			return true
		}
	}
	return false
}
