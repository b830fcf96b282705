package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/useraccounts/internal/client/guard"
	"github.com/dmitrijs2005/useraccounts/internal/client/models"
	"github.com/dmitrijs2005/useraccounts/internal/client/services"
	"github.com/dmitrijs2005/useraccounts/internal/common"
)

var (
	ErrEmptyInput    = errors.New("input required")
	ErrInvalidUserID = errors.New("invalid user id")
	ErrNotOwnProfile = errors.New("not your profile")
)

const clearValue = "-"

// getSimpleText, getTextWithDefault and getPassword are indirections used
// to facilitate testing.
var (
	getSimpleText      = GetSimpleText
	getTextWithDefault = GetTextWithDefault
	getPassword        = GetPassword
)

func (a *App) redirectToLogin() {
	a.router.Replace(Route{Name: RouteLogin})
	a.println("Please log in to continue.")
}

func (a *App) readCredentials() (string, []byte, error) {
	username, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return "", nil, err
	}
	if username == "" {
		a.println("Username is required.")
		return "", nil, ErrEmptyInput
	}
	password, err := getPassword(a.reader, a.out)
	if err != nil {
		return "", nil, err
	}
	if len(password) == 0 {
		a.println("Password is required.")
		return "", nil, ErrEmptyInput
	}
	return username, password, nil
}

// Register prompts for credentials and creates an account. If the service
// signs the new user in right away the users screen opens, otherwise the
// login screen does.
func (a *App) Register(ctx context.Context) error {
	a.router.Navigate(Route{Name: RouteRegister})

	username, password, err := a.readCredentials()
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if _, err := a.accounts.Register(ctx, username, string(password)); err != nil {
		a.println("Registration failed: " + err.Error())
		return err
	}

	if a.session.IsAuthenticated() {
		a.println("Registration successful! You are now logged in.")
		a.router.Navigate(Route{Name: RouteUsers})
		return nil
	}
	a.println("Registration successful! You can now log in.")
	a.router.Navigate(Route{Name: RouteLogin})
	return nil
}

// Login prompts for credentials and establishes the session on success.
// A failed attempt leaves any previous session untouched.
func (a *App) Login(ctx context.Context) error {
	a.router.Navigate(Route{Name: RouteLogin})

	username, password, err := a.readCredentials()
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if _, err := a.accounts.Login(ctx, username, string(password)); err != nil {
		a.println("Login Failed: " + err.Error())
		return err
	}
	a.println("Login Successful: You have been successfully logged in.")
	a.router.Navigate(Route{Name: RouteUsers})
	return nil
}

// loadFailed reports a failed protected load. A 401 ends the session.
func (a *App) loadFailed(ctx context.Context, what string, err error) error {
	switch {
	case errors.Is(err, guard.ErrDenied):
		return err
	case errors.Is(err, guard.ErrStale):
		return nil
	}
	a.println(fmt.Sprintf("Error loading %s: %s", what, err.Error()))
	if a.accounts.TerminateOnUnauthorized(ctx, err) {
		a.println("Your session is no longer valid. Please log in again.")
		a.router.Replace(Route{Name: RouteLogin})
	}
	return err
}

func (a *App) Users(ctx context.Context) error {
	a.router.Navigate(Route{Name: RouteUsers})

	users, err := a.usersView.Enter(ctx, a.accounts.List, a.redirectToLogin)
	if err != nil {
		return a.loadFailed(ctx, "users", err)
	}

	a.outMu.Lock()
	defer a.outMu.Unlock()
	return renderUsers(a.out, users)
}

func parseUserID(arg string) (models.ID, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidUserID, arg)
	}
	return models.ID(id), nil
}

func (a *App) isOwnProfile(id models.ID) bool {
	cur, ok := a.session.CurrentUserID()
	return ok && models.ID(cur) == id
}

func (a *App) loadUser(id models.ID) func(context.Context) (*models.User, error) {
	return func(ctx context.Context) (*models.User, error) {
		return a.accounts.Get(ctx, id)
	}
}

// Show displays one user's profile.
func (a *App) Show(ctx context.Context, arg string) error {
	id, err := parseUserID(arg)
	if err != nil {
		a.println("Usage: show <id>")
		return err
	}
	a.router.Navigate(UserRoute(id))

	u, err := a.userView.Enter(ctx, a.loadUser(id), a.redirectToLogin)
	if err != nil {
		return a.loadFailed(ctx, "user data", err)
	}

	a.outMu.Lock()
	err = renderUser(a.out, u)
	a.outMu.Unlock()
	if err != nil {
		return err
	}
	if a.isOwnProfile(id) {
		a.println(fmt.Sprintf("Type 'edit %d' to change your profile.", id))
	}
	return nil
}

// Me shows the profile of the signed-in user.
func (a *App) Me(ctx context.Context) error {
	id, ok := a.session.CurrentUserID()
	if !ok {
		a.redirectToLogin()
		return guard.ErrDenied
	}
	return a.Show(ctx, strconv.FormatInt(id, 10))
}

// Edit lets the signed-in user change their username and birthday. An
// empty answer keeps the current value; "-" clears the birthday.
func (a *App) Edit(ctx context.Context, arg string) error {
	id, err := parseUserID(arg)
	if err != nil {
		a.println("Usage: edit <id>")
		return err
	}
	a.router.Navigate(UserEditRoute(id))

	u, err := a.userView.Enter(ctx, a.loadUser(id), a.redirectToLogin)
	if err != nil {
		return a.loadFailed(ctx, "user", err)
	}
	if !a.isOwnProfile(id) {
		a.println("You can only edit your own profile.")
		a.router.Replace(UserRoute(id))
		return ErrNotOwnProfile
	}

	username, err := getTextWithDefault(a.reader, "Username", u.Username, a.out)
	if err != nil {
		return err
	}
	if username == "" {
		a.println("Please input your username!")
		return ErrEmptyInput
	}
	birthday, err := getTextWithDefault(a.reader, "Birthday (YYYY-MM-DD, '-' to clear)", u.BirthdayOrEmpty(), a.out)
	if err != nil {
		return err
	}
	if birthday == clearValue {
		birthday = ""
	}

	if err := a.accounts.Update(ctx, id, username, birthday); err != nil {
		a.println("Update failed: " + services.UpdateFailureMessage(err))
		return err
	}
	a.println("Profile updated.")
	a.router.Navigate(UserRoute(id))
	return nil
}

// Logout ends the session once the service has accepted the logout.
func (a *App) Logout(ctx context.Context) error {
	err := a.accounts.Logout(ctx)
	switch {
	case errors.Is(err, services.ErrNotAuthenticated):
		a.println("You are not logged in.")
		return err
	case err != nil:
		a.println("Logout Failed: " + err.Error())
		return err
	}
	a.println("Logout Successful: You have been logged out successfully.")
	a.router.Navigate(Route{Name: RouteLogin})
	return nil
}

// Status prints the session, screen and connection settings.
func (a *App) Status(ctx context.Context) error {
	a.outMu.Lock()
	defer a.outMu.Unlock()

	st := status{
		Route:      a.router.Current().String(),
		Server:     a.config.ServerURL,
		Storage:    a.config.StoragePath,
		Persistent: a.db != nil,
	}
	if id, ok := a.session.CurrentUserID(); ok {
		st.UserID = id
		st.LoggedIn = true
		st.ExpiresAt, st.HasExpiry = a.session.ExpiresAt()
	}
	return renderStatus(a.out, st)
}
