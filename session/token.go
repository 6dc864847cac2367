package session

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	CookieName = "portfolio_sid"
	issuer     = "portfolio-api"
)

// TokenProvider keeps the session id in a signed cookie minted by the server.
// Ids claimed in request bodies are ignored.
type TokenProvider struct {
	secret []byte
	ttl    time.Duration
	secure bool
	now    func() time.Time
}

func NewTokenProvider(secret []byte, ttl time.Duration, secure bool) (*TokenProvider, error) {
	if len(secret) == 0 {
		return nil, errors.New("session secret is empty")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("invalid session ttl: %s", ttl)
	}
	return &TokenProvider{secret: secret, ttl: ttl, secure: secure, now: time.Now}, nil
}

// Issue signs a token carrying sessionID as its subject.
func (p *TokenProvider) Issue(sessionID string) (string, error) {
	now := p.now()
	claims := jwt.RegisteredClaims{
		Subject:   sessionID,
		Issuer:    issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(p.ttl)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(p.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}

// Validate checks a token and returns the session id it carries.
func (p *TokenProvider) Validate(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return p.secret, nil
	}, jwt.WithIssuer(issuer), jwt.WithTimeFunc(p.now))
	if err != nil {
		return "", fmt.Errorf("invalid session token: %w", err)
	}
	if !token.Valid || claims.Subject == "" {
		return "", errors.New("session token is not valid")
	}
	return claims.Subject, nil
}

// SessionID reuses the id from a valid cookie, or mints a new one and sets the cookie.
func (p *TokenProvider) SessionID(c *gin.Context, _ string) (string, error) {
	if raw, err := c.Cookie(CookieName); err == nil {
		if id, err := p.Validate(raw); err == nil {
			return id, nil
		}
	}

	id := uuid.NewString()
	signed, err := p.Issue(id)
	if err != nil {
		return "", err
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, signed, int(p.ttl.Seconds()), "/", "", p.secure, true)
	return id, nil
}
