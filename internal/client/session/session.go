// Package session derives the client's authentication state from the
// persistent cache. It owns no storage of its own beyond the two cache keys
// and makes no network calls.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/useraccounts/internal/client/cache"
	"github.com/dmitrijs2005/useraccounts/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

var ErrEmptyToken = errors.New("empty session token")

// Session reports whether the user is logged in and who they are. A
// session is authenticated exactly when its token is non-empty.
type Session struct {
	store  *cache.Store
	token  *cache.Value[string]
	userID *cache.Value[int64]
}

func New(store *cache.Store) *Session {
	return &Session{
		store:  store,
		token:  cache.NewValue(store, common.TokenKey, ""),
		userID: cache.NewValue(store, common.UserIDKey, int64(0)),
	}
}

func (s *Session) IsAuthenticated() bool {
	return s.token.Get() != ""
}

// Token returns the cached token, or "" when logged out.
func (s *Session) Token() string {
	return s.token.Get()
}

// CurrentUserID returns the cached user id. ok is false when the session is
// not authenticated, in which case the id carries no meaning.
func (s *Session) CurrentUserID() (id int64, ok bool) {
	if !s.IsAuthenticated() {
		return 0, false
	}
	return s.userID.Get(), true
}

// Establish stores token and userID together.
func (s *Session) Establish(ctx context.Context, token string, userID int64) error {
	if token == "" {
		return ErrEmptyToken
	}
	tokenOp, err := s.token.SetOp(token)
	if err != nil {
		return err
	}
	idOp, err := s.userID.SetOp(userID)
	if err != nil {
		return err
	}
	if err := s.store.Apply(ctx, tokenOp, idOp); err != nil {
		return fmt.Errorf("establish session: %w", err)
	}
	return nil
}

// Terminate clears both session keys.
func (s *Session) Terminate(ctx context.Context) error {
	if err := s.store.Apply(ctx, s.token.ClearOp(), s.userID.ClearOp()); err != nil {
		return fmt.Errorf("terminate session: %w", err)
	}
	return nil
}

// ExpiresAt reports the exp claim when the token is a JWT. The signature is
// not checked; the value is informational and does not affect
// IsAuthenticated.
func (s *Session) ExpiresAt() (time.Time, bool) {
	tok := s.Token()
	if tok == "" {
		return time.Time{}, false
	}
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tok, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
