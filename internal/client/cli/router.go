package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/dmitrijs2005/useraccounts/internal/client/models"
)

var ErrUnknownRoute = errors.New("unknown route")

type RouteName string

const (
	RouteHome     RouteName = "home"
	RouteLogin    RouteName = "login"
	RouteRegister RouteName = "register"
	RouteUsers    RouteName = "users"
	RouteUser     RouteName = "user"
	RouteUserEdit RouteName = "user-edit"
)

// Route is a parsed screen location. ID is set for the per-user routes.
type Route struct {
	Name RouteName
	ID   models.ID
}

func (r Route) String() string {
	switch r.Name {
	case RouteLogin:
		return "/login"
	case RouteRegister:
		return "/register"
	case RouteUsers:
		return "/users"
	case RouteUser:
		return fmt.Sprintf("/users/%d", r.ID)
	case RouteUserEdit:
		return fmt.Sprintf("/users/%d/edit", r.ID)
	default:
		return "/"
	}
}

// Protected reports whether the route requires an authenticated session.
func (r Route) Protected() bool {
	switch r.Name {
	case RouteUsers, RouteUser, RouteUserEdit:
		return true
	}
	return false
}

func UserRoute(id models.ID) Route     { return Route{Name: RouteUser, ID: id} }
func UserEditRoute(id models.ID) Route { return Route{Name: RouteUserEdit, ID: id} }

// ParseRoute maps a path such as "/users/7/edit" to a Route.
func ParseRoute(path string) (Route, error) {
	p := strings.Trim(path, "/")
	if p == "" {
		return Route{Name: RouteHome}, nil
	}
	parts := strings.Split(p, "/")
	switch {
	case len(parts) == 1 && parts[0] == "login":
		return Route{Name: RouteLogin}, nil
	case len(parts) == 1 && parts[0] == "register":
		return Route{Name: RouteRegister}, nil
	case len(parts) == 1 && parts[0] == "users":
		return Route{Name: RouteUsers}, nil
	case parts[0] == "users" && (len(parts) == 2 || len(parts) == 3 && parts[2] == "edit"):
		id, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil || id <= 0 {
			return Route{}, fmt.Errorf("%w: %s", ErrUnknownRoute, path)
		}
		if len(parts) == 3 {
			return UserEditRoute(models.ID(id)), nil
		}
		return UserRoute(models.ID(id)), nil
	}
	return Route{}, fmt.Errorf("%w: %s", ErrUnknownRoute, path)
}

// Router tracks the current screen and the navigation history.
type Router struct {
	mu      sync.Mutex
	current Route
	history []Route
	onMove  func(from, to Route)
}

func NewRouter(start Route) *Router {
	return &Router{current: start}
}

// OnMove installs a hook called after every navigation.
func (r *Router) OnMove(fn func(from, to Route)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onMove = fn
}

func (r *Router) Current() Route {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// History returns the routes behind the current one, oldest first.
func (r *Router) History() []Route {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Route(nil), r.history...)
}

// Navigate moves to to, keeping the current route in history.
func (r *Router) Navigate(to Route) {
	r.move(to, true)
}

// Replace moves to to without a history entry, as redirects do.
func (r *Router) Replace(to Route) {
	r.move(to, false)
}

func (r *Router) move(to Route, push bool) {
	r.mu.Lock()
	from := r.current
	if push && from != to {
		r.history = append(r.history, from)
	}
	r.current = to
	hook := r.onMove
	r.mu.Unlock()

	if hook != nil {
		hook(from, to)
	}
}
