// Package services contains application services for the user-account
// client. AccountService issues the account endpoints through the request
// client and keeps the session in step with their results.
package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/useraccounts/internal/client/api"
	"github.com/dmitrijs2005/useraccounts/internal/client/models"
	"github.com/dmitrijs2005/useraccounts/internal/client/session"
	"github.com/dmitrijs2005/useraccounts/internal/logging"
)

const (
	DefaultRegisterPath = "/users"
	loginPath           = "/users/login"
	usersPath           = "/users"
)

var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrNoToken          = errors.New("response carried no session token")
)

// AccountService defines the account operations used by the screens.
//
// Contract:
//   - Register and Login establish the session only from a successful
//     response that carries a token.
//   - A failed call leaves the session exactly as it was.
//   - Logout ends the session only after the service accepted the call.
type AccountService interface {
	Register(ctx context.Context, username, password string) (*models.User, error)
	Login(ctx context.Context, username, password string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Get(ctx context.Context, id models.ID) (*models.User, error)
	Me(ctx context.Context) (*models.User, error)
	Update(ctx context.Context, id models.ID, username, birthday string) error
	Logout(ctx context.Context) error
	TerminateOnUnauthorized(ctx context.Context, err error) bool
}

type accountService struct {
	client       *api.Client
	session      *session.Session
	registerPath string
	log          logging.Logger
}

type Option func(*accountService)

// WithRegisterPath overrides the registration endpoint; some deployments
// expose it as /users/register.
func WithRegisterPath(path string) Option {
	return func(s *accountService) {
		if path != "" {
			s.registerPath = path
		}
	}
}

func WithLogger(l logging.Logger) Option {
	return func(s *accountService) {
		if l != nil {
			s.log = l
		}
	}
}

func NewAccountService(client *api.Client, sess *session.Session, opts ...Option) AccountService {
	s := &accountService{
		client:       client,
		session:      sess,
		registerPath: DefaultRegisterPath,
		log:          logging.Nop(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func userPath(id models.ID) string {
	return fmt.Sprintf("%s/%d", usersPath, id)
}

func (s *accountService) Register(ctx context.Context, username, password string) (*models.User, error) {
	u, err := api.Post[models.User](ctx, s.client, s.registerPath, models.Credentials{Username: username, Password: password})
	if err != nil {
		return nil, err
	}
	if u.Token != "" {
		if err := s.session.Establish(ctx, u.Token, int64(u.ID)); err != nil {
			return nil, err
		}
		s.log.Info(ctx, "registered and signed in", "user_id", int64(u.ID))
	}
	u.Password = ""
	return &u, nil
}

func (s *accountService) Login(ctx context.Context, username, password string) (*models.User, error) {
	u, err := api.Post[models.User](ctx, s.client, loginPath, models.Credentials{Username: username, Password: password})
	if err != nil {
		return nil, err
	}
	if u.Token == "" {
		return nil, ErrNoToken
	}
	if err := s.session.Establish(ctx, u.Token, int64(u.ID)); err != nil {
		return nil, err
	}
	s.log.Info(ctx, "signed in", "user_id", int64(u.ID))
	u.Password = ""
	return &u, nil
}

func (s *accountService) List(ctx context.Context) ([]models.User, error) {
	users, err := api.Get[[]models.User](ctx, s.client, usersPath)
	if err != nil {
		return nil, err
	}
	for i := range users {
		users[i].Password = ""
	}
	return users, nil
}

func (s *accountService) Get(ctx context.Context, id models.ID) (*models.User, error) {
	u, err := api.Get[models.User](ctx, s.client, userPath(id))
	if err != nil {
		return nil, err
	}
	u.Password = ""
	return &u, nil
}

// Me loads the user the session belongs to.
func (s *accountService) Me(ctx context.Context) (*models.User, error) {
	id, ok := s.session.CurrentUserID()
	if !ok {
		return nil, ErrNotAuthenticated
	}
	return s.Get(ctx, models.ID(id))
}

// Update sends the editable profile fields. An empty birthday is sent as
// null.
func (s *accountService) Update(ctx context.Context, id models.ID, username, birthday string) error {
	body := models.UserUpdate{Username: strings.TrimSpace(username)}
	if b := strings.TrimSpace(birthday); b != "" {
		body.Birthday = &b
	}
	return s.client.Do(ctx, http.MethodPut, userPath(id), body, nil)
}

func (s *accountService) Logout(ctx context.Context) error {
	id, ok := s.session.CurrentUserID()
	if !ok {
		return ErrNotAuthenticated
	}
	if err := s.client.Do(ctx, http.MethodPut, userPath(models.ID(id))+"/logout", struct{}{}, nil); err != nil {
		return err
	}
	if err := s.session.Terminate(ctx); err != nil {
		return err
	}
	s.log.Info(ctx, "signed out", "user_id", id)
	return nil
}

// TerminateOnUnauthorized ends the session when err is a 401 from the
// service and reports whether it did.
func (s *accountService) TerminateOnUnauthorized(ctx context.Context, err error) bool {
	if !errors.Is(err, api.ErrUnauthorized) {
		return false
	}
	if tErr := s.session.Terminate(ctx); tErr != nil {
		s.log.Warn(ctx, "failed to end rejected session", "error", tErr)
		return false
	}
	s.log.Info(ctx, "session rejected by service; signed out")
	return true
}
