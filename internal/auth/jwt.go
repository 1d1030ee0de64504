package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenType discriminates the three JWT namespaces. Login tokens carry the
// principal id; verification tokens carry only the email they confirm.
type TokenType string

const (
	TokenUser         TokenType = "user"
	TokenAdmin        TokenType = "admin"
	TokenVerification TokenType = "verification"
)

const (
	loginTokenTTL        = 7 * 24 * time.Hour
	verificationTokenTTL = 24 * time.Hour
)

var (
	ErrInvalidToken   = errors.New("invalid token")
	ErrWrongTokenType = errors.New("wrong token type")
)

type Claims struct {
	ID    uint      `json:"id,omitempty"`
	Email string    `json:"email,omitempty"`
	Type  TokenType `json:"type"`
	jwt.RegisteredClaims
}

// Service signs and verifies tokens with a single HS256 secret.
type Service struct {
	secret []byte
}

func NewService(secret string) *Service {
	return &Service{secret: []byte(secret)}
}

// LoginToken issues a 7-day token for a user or admin principal.
func (s *Service) LoginToken(id uint, typ TokenType) (string, error) {
	if typ != TokenUser && typ != TokenAdmin {
		return "", ErrWrongTokenType
	}
	return s.sign(Claims{ID: id, Type: typ}, loginTokenTTL)
}

// VerificationToken issues the 24-hour token embedded in the email
// confirmation link.
func (s *Service) VerificationToken(email string) (string, error) {
	return s.sign(Claims{Email: email, Type: TokenVerification}, verificationTokenTTL)
}

func (s *Service) sign(claims Claims, ttl time.Duration) (string, error) {
	now := time.Now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify parses the token and checks it carries the expected type claim.
// Missing, malformed, expired and wrong-type tokens all come back as one
// of the two sentinel errors so callers answer 401 uniformly.
func (s *Service) Verify(tokenString string, want TokenType) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Type != want {
		return nil, ErrWrongTokenType
	}
	return claims, nil
}
