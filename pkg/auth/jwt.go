package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/jwalitptl/hms-api/internal/model"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

const issuer = "hms-api"

type JWTService interface {
	GenerateToken(user *model.User, sessionID string) (string, time.Time, error)
	ValidateToken(token string) (*model.TokenClaims, error)
}

// Claims carries the user id, role and session id of a login.
type Claims struct {
	Role      string `json:"role"`
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

type jwtService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewJWTService(secret string, ttl time.Duration) JWTService {
	return newJWTService(secret, ttl, time.Now)
}

func newJWTService(secret string, ttl time.Duration, now func() time.Time) *jwtService {
	if ttl <= 0 {
		ttl = 8 * time.Hour
	}
	return &jwtService{secret: []byte(secret), ttl: ttl, now: now}
}

func (s *jwtService) GenerateToken(user *model.User, sessionID string) (string, time.Time, error) {
	if user == nil {
		return "", time.Time{}, fmt.Errorf("user cannot be nil")
	}
	issued := s.now()
	expires := issued.Add(s.ttl)

	claims := Claims{
		Role:      string(user.Role),
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(user.ID, 10),
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expires, nil
}

func (s *jwtService) ValidateToken(raw string) (*model.TokenClaims, error) {
	tok, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (any, error) {
		// block alg confusion
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithIssuer(issuer))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	c, ok := tok.Claims.(*Claims)
	if !ok || !tok.Valid {
		return nil, ErrInvalidToken
	}
	uid, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return nil, ErrInvalidToken
	}

	out := &model.TokenClaims{
		UserID:    uid,
		Role:      model.Role(c.Role),
		SessionID: c.SessionID,
	}
	if c.ExpiresAt != nil {
		out.ExpiresAt = c.ExpiresAt.Time
	}
	return out, nil
}
