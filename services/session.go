package services

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/vnkhanh/e-learning-backend/models"
)

const DefaultSessionTTL = time.Hour

type SessionConfig struct {
	Secret []byte
	TTL    time.Duration
	Issuer string
}

// Claims is the payload of a session token.
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// SessionService mints and verifies stateless HS256 session tokens.
type SessionService struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

func NewSessionService(cfg SessionConfig) *SessionService {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionService{
		secret: cfg.Secret,
		ttl:    ttl,
		issuer: cfg.Issuer,
		now:    time.Now,
	}
}

func (s *SessionService) Issue(user *models.User) (string, error) {
	now := s.now()
	claims := Claims{
		UserID: user.ID.String(),
		Email:  user.Email,
		Role:   string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify returns the claims of a token signed with this service's secret that has not expired yet.
func (s *SessionService) Verify(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrUnauthenticated
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, errors.Join(ErrInvalidToken, jwt.ErrTokenExpired)
		}
		return nil, errors.Join(ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
