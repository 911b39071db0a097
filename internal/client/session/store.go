// Package session persists the (token, userId) credential pair.
package session

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/poputchiki/internal/client/repositories/cookies"
	"github.com/dmitrijs2005/poputchiki/internal/common"
	"github.com/dmitrijs2005/poputchiki/internal/logging"
	"github.com/golang-jwt/jwt/v5"
)

// Credentials identify an authenticated client.
type Credentials struct {
	Token  string
	UserID string
}

// Valid reports whether both halves are present.
func (c Credentials) Valid() bool {
	return c.Token != "" && c.UserID != ""
}

// Store reads and writes credentials as the `token` and `userId` cookies.
type Store struct {
	repo   cookies.Repository
	maxAge time.Duration
	now    cookies.Clock
	log    logging.Logger
}

// NewStore builds a Store. maxAge is the cookie lifetime used for tokens
// that carry no expiry of their own; zero means the cookies never expire.
func NewStore(repo cookies.Repository, maxAge time.Duration, log logging.Logger) *Store {
	if log == nil {
		log = logging.Nop()
	}
	return &Store{repo: repo, maxAge: maxAge, now: time.Now, log: log.With("component", "session")}
}

// Load returns the stored credentials. ok is false when either cookie is
// missing or expired; read failures are logged and treated the same way.
func (s *Store) Load(ctx context.Context) (creds Credentials, ok bool) {
	token, err := s.repo.Get(ctx, common.TokenCookieName)
	if err != nil {
		s.log.Warn(ctx, "read token cookie", "error", err)
		return Credentials{}, false
	}
	userID, err := s.repo.Get(ctx, common.UserIDCookieName)
	if err != nil {
		s.log.Warn(ctx, "read userId cookie", "error", err)
		return Credentials{}, false
	}
	if token == nil || userID == nil {
		if token != nil || userID != nil {
			s.log.Debug(ctx, "partial credentials ignored")
		}
		return Credentials{}, false
	}

	creds = Credentials{Token: token.Value, UserID: userID.Value}
	return creds, creds.Valid()
}

// Save writes both cookies in one atomic operation.
func (s *Store) Save(ctx context.Context, creds Credentials) error {
	if !creds.Valid() {
		return fmt.Errorf("save credentials: %w", common.ErrInvalidToken)
	}
	exp := s.expiry(creds.Token)
	if err := s.repo.Set(ctx,
		cookies.Cookie{Name: common.TokenCookieName, Value: creds.Token, ExpiresAt: exp},
		cookies.Cookie{Name: common.UserIDCookieName, Value: creds.UserID, ExpiresAt: exp},
	); err != nil {
		return fmt.Errorf("save credentials: %w", err)
	}
	return nil
}

// Clear removes both cookies.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.repo.Delete(ctx, common.TokenCookieName, common.UserIDCookieName); err != nil {
		return fmt.Errorf("clear credentials: %w", err)
	}
	return nil
}

// expiry picks the cookie expiry: the token's own exp claim if it is a JWT,
// otherwise now+maxAge (or none).
func (s *Store) expiry(token string) time.Time {
	if exp, ok := TokenExpiry(token); ok {
		return exp
	}
	if s.maxAge <= 0 {
		return time.Time{}
	}
	return s.now().Add(s.maxAge)
}

// TokenExpiry extracts the exp claim of a JWT without verifying its
// signature; the client cannot verify it and only uses it as a hint.
// ok is false for opaque tokens and JWTs without exp.
func TokenExpiry(token string) (time.Time, bool) {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
