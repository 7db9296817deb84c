package tokens

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
	ErrRevokedToken = errors.New("token revoked")
)

// IsAuthError reports whether err means the presented token must be rejected.
func IsAuthError(err error) bool {
	return errors.Is(err, ErrInvalidToken) ||
		errors.Is(err, ErrExpiredToken) ||
		errors.Is(err, ErrRevokedToken)
}

type Claims struct {
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

type Blacklist interface {
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
	BlacklistJTI(ctx context.Context, jti string, userID uint, expiresAt time.Time) error
}

type Config struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

type Token struct {
	Value     string
	JTI       string
	ExpiresAt time.Time
}

type Pair struct {
	Access  Token
	Refresh Token
}

type Service struct {
	cfg       Config
	blacklist Blacklist
	now       func() time.Time
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func New(cfg Config, blacklist Blacklist, opts ...Option) *Service {
	s := &Service{cfg: cfg, blacklist: blacklist, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Issue(userID uint) (Pair, error) {
	access, err := s.sign(userID, TypeAccess, s.cfg.AccessSecret, s.cfg.AccessTTL)
	if err != nil {
		return Pair{}, err
	}
	refresh, err := s.sign(userID, TypeRefresh, s.cfg.RefreshSecret, s.cfg.RefreshTTL)
	if err != nil {
		return Pair{}, err
	}
	return Pair{Access: access, Refresh: refresh}, nil
}

func (s *Service) ValidateAccess(raw string) (uint, error) {
	claims, err := s.parse(raw, TypeAccess, s.cfg.AccessSecret)
	if err != nil {
		return 0, err
	}
	return subject(claims)
}

// ValidateRefresh also rejects tokens whose jti is blacklisted.
func (s *Service) ValidateRefresh(ctx context.Context, raw string) (uint, string, error) {
	claims, err := s.parse(raw, TypeRefresh, s.cfg.RefreshSecret)
	if err != nil {
		return 0, "", err
	}
	userID, err := subject(claims)
	if err != nil {
		return 0, "", err
	}

	revoked, err := s.blacklist.IsBlacklisted(ctx, claims.ID)
	if err != nil {
		return 0, "", fmt.Errorf("check blacklist: %w", err)
	}
	if revoked {
		return 0, "", ErrRevokedToken
	}
	return userID, claims.ID, nil
}

// RotateAccess issues a new access token for a valid refresh token.
// The refresh token itself stays in use.
func (s *Service) RotateAccess(ctx context.Context, refresh string) (Token, error) {
	userID, _, err := s.ValidateRefresh(ctx, refresh)
	if err != nil {
		return Token{}, err
	}
	return s.sign(userID, TypeAccess, s.cfg.AccessSecret, s.cfg.AccessTTL)
}

// Revoke blacklists the refresh token. Tokens that are already unusable are
// ignored; only store failures are returned.
func (s *Service) Revoke(ctx context.Context, refresh string) error {
	claims, err := s.parse(refresh, TypeRefresh, s.cfg.RefreshSecret)
	if err != nil {
		return nil
	}
	userID, err := subject(claims)
	if err != nil {
		return nil
	}
	if err := s.blacklist.BlacklistJTI(ctx, claims.ID, userID, claims.ExpiresAt.Time); err != nil {
		return fmt.Errorf("blacklist token: %w", err)
	}
	return nil
}

func (s *Service) sign(userID uint, typ string, secret []byte, ttl time.Duration) (Token, error) {
	now := s.now()
	exp := now.Add(ttl)
	jti := uuid.NewString()

	claims := Claims{
		TokenType: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
			ID:        jti,
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return Token{}, fmt.Errorf("sign %s token: %w", typ, err)
	}
	return Token{Value: signed, JTI: jti, ExpiresAt: exp}, nil
}

func (s *Service) parse(raw, typ string, secret []byte) (*Claims, error) {
	if raw == "" {
		return nil, ErrInvalidToken
	}

	var claims Claims
	tkn, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected sign method")
		}
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	if !tkn.Valid || claims.TokenType != typ || claims.ID == "" {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}

func subject(claims *Claims) (uint, error) {
	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || id == 0 {
		return 0, ErrInvalidToken
	}
	return uint(id), nil
}
