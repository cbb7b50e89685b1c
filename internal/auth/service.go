package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/inamate/figconv/internal/typeid"
)

var (
	ErrInvalidAPIKey = errors.New("invalid api key")
	ErrInvalidToken  = errors.New("invalid token")
)

const tokenTTL = 24 * time.Hour

// Service issues and checks bearer tokens. Tokens are granted against a
// shared API key; each token gets its own session subject.
type Service struct {
	jwtSecret []byte
	apiKey    []byte
	now       func() time.Time
}

func NewService(jwtSecret, apiKey string) *Service {
	return &Service{
		jwtSecret: []byte(jwtSecret),
		apiKey:    []byte(apiKey),
		now:       time.Now,
	}
}

type TokenResult struct {
	Token     string `json:"token"`
	Subject   string `json:"subject"`
	ExpiresAt int64  `json:"expiresAt"`
}

// IssueToken trades the API key for a signed token.
func (s *Service) IssueToken(apiKey string) (*TokenResult, error) {
	if len(s.apiKey) == 0 || subtle.ConstantTimeCompare([]byte(apiKey), s.apiKey) != 1 {
		return nil, ErrInvalidAPIKey
	}
	return s.issueToken(typeid.NewSessionID())
}

func (s *Service) ValidateToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", ErrInvalidToken
	}

	subject, ok := claims["sub"].(string)
	if !ok || subject == "" {
		return "", fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	return subject, nil
}

func (s *Service) issueToken(subject string) (*TokenResult, error) {
	now := s.now()
	exp := now.Add(tokenTTL)
	claims := jwt.MapClaims{
		"sub": subject,
		"iat": now.Unix(),
		"exp": exp.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	return &TokenResult{Token: signed, Subject: subject, ExpiresAt: exp.Unix()}, nil
}
