package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRoute(t *testing.T) {
	tests := []struct {
		path    string
		want    Route
		wantErr bool
	}{
		{path: "/", want: Route{Name: RouteHome}},
		{path: "", want: Route{Name: RouteHome}},
		{path: "/login", want: Route{Name: RouteLogin}},
		{path: "/register", want: Route{Name: RouteRegister}},
		{path: "/users", want: Route{Name: RouteUsers}},
		{path: "/users/", want: Route{Name: RouteUsers}},
		{path: "/users/7", want: UserRoute(7)},
		{path: "/users/7/edit", want: UserEditRoute(7)},
		{path: "/users/abc", wantErr: true},
		{path: "/users/0", wantErr: true},
		{path: "/users/7/delete", wantErr: true},
		{path: "/admin", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := ParseRoute(tt.path)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrUnknownRoute)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRoute_StringRoundTrip(t *testing.T) {
	for _, r := range []Route{{Name: RouteHome}, {Name: RouteLogin}, {Name: RouteRegister}, {Name: RouteUsers}, UserRoute(3), UserEditRoute(3)} {
		got, err := ParseRoute(r.String())
		require.NoError(t, err)
		assert.Equal(t, r, got)
	}
}

func TestRoute_Protected(t *testing.T) {
	assert.False(t, Route{Name: RouteLogin}.Protected())
	assert.False(t, Route{Name: RouteRegister}.Protected())
	assert.True(t, Route{Name: RouteUsers}.Protected())
	assert.True(t, UserRoute(1).Protected())
	assert.True(t, UserEditRoute(1).Protected())
}

func TestRouter_NavigateAndReplace(t *testing.T) {
	r := NewRouter(Route{Name: RouteHome})
	var moves []string
	r.OnMove(func(from, to Route) { moves = append(moves, from.String()+"->"+to.String()) })

	r.Navigate(Route{Name: RouteUsers})
	r.Navigate(UserRoute(7))
	r.Replace(Route{Name: RouteLogin})

	assert.Equal(t, Route{Name: RouteLogin}, r.Current())
	assert.Equal(t, []Route{{Name: RouteHome}, {Name: RouteUsers}}, r.History())
	assert.Equal(t, []string{"/->/users", "/users->/users/7", "/users/7->/login"}, moves)
}

func TestRouter_NavigateToCurrentDoesNotGrowHistory(t *testing.T) {
	r := NewRouter(Route{Name: RouteUsers})
	r.Navigate(Route{Name: RouteUsers})
	assert.Empty(t, r.History())
}
