package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

type captured struct {
	method      string
	path        string
	auth        string
	contentType string
	accept      string
	requestID   string
	body        string
}

// recorder is a chi-routed fake service that remembers the last request.
type recorder struct {
	mu   sync.Mutex
	last captured
	hits atomic.Int32
}

func (r *recorder) capture(req *http.Request) {
	b, _ := io.ReadAll(req.Body)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.last = captured{
		method:      req.Method,
		path:        req.URL.Path,
		auth:        req.Header.Get("Authorization"),
		contentType: req.Header.Get("Content-Type"),
		accept:      req.Header.Get("Accept"),
		requestID:   req.Header.Get("X-Request-ID"),
		body:        string(b),
	}
	r.hits.Add(1)
}

func (r *recorder) lastRequest() captured {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}

func newServer(t *testing.T) (*httptest.Server, *recorder) {
	t.Helper()
	rec := &recorder{}
	r := chi.NewRouter()

	r.Get("/users", func(w http.ResponseWriter, req *http.Request) {
		rec.capture(req)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":1,"username":"ann"},{"id":2,"username":"bob"}]`))
	})
	r.Get("/users/{id}", func(w http.ResponseWriter, req *http.Request) {
		rec.capture(req)
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		fmt.Fprintf(w, `{"id":%s,"username":"user-%s"}`, chi.URLParam(req, "id"), chi.URLParam(req, "id"))
	})
	r.Post("/echo", func(w http.ResponseWriter, req *http.Request) {
		rec.capture(req)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(rec.lastRequest().body))
	})
	r.Put("/empty", func(w http.ResponseWriter, req *http.Request) {
		rec.capture(req)
		w.WriteHeader(http.StatusOK)
	})
	r.Put("/nocontent", func(w http.ResponseWriter, req *http.Request) {
		rec.capture(req)
		w.WriteHeader(http.StatusNoContent)
	})
	r.Get("/broken", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":`))
	})
	r.Get("/html", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html></html>`))
	})
	r.Get("/problem", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/problem+json")
		_, _ = w.Write([]byte(`{"id":5}`))
	})
	r.Get("/untyped", func(w http.ResponseWriter, req *http.Request) {
		w.Header()["Content-Type"] = nil
		_, _ = w.Write([]byte(`{"id":6}`))
	})
	r.Put("/status/{code}", func(w http.ResponseWriter, req *http.Request) {
		rec.capture(req)
		var code int
		fmt.Sscanf(chi.URLParam(req, "code"), "%d", &code)
		w.WriteHeader(code)
		_, _ = w.Write([]byte(req.URL.Query().Get("body")))
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, rec
}

type user struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
}

func TestNew_RejectsBadBaseURL(t *testing.T) {
	for _, raw := range []string{"", "localhost:8080", "ftp://x", "http://", "::"} {
		_, err := New(raw, nil)
		require.ErrorIs(t, err, ErrInvalidBaseURL, raw)
	}
}

func TestDo_AttachesTokenWhenPresent(t *testing.T) {
	srv, rec := newServer(t)

	c, err := New(srv.URL, staticToken("abc123"))
	require.NoError(t, err)
	_, err = Get[[]user](context.Background(), c, "/users")
	require.NoError(t, err)
	assert.Equal(t, "Bearer abc123", rec.lastRequest().auth)

	raw, err := New(srv.URL, staticToken("abc123"), WithAuthScheme(""))
	require.NoError(t, err)
	_, err = Get[[]user](context.Background(), raw, "/users")
	require.NoError(t, err)
	assert.Equal(t, "abc123", rec.lastRequest().auth)
}

func TestDo_OmitsTokenWhenAbsent(t *testing.T) {
	srv, rec := newServer(t)

	for _, tokens := range []TokenSource{nil, staticToken("")} {
		c, err := New(srv.URL, tokens)
		require.NoError(t, err)

		users, err := Get[[]user](context.Background(), c, "/users")
		require.NoError(t, err, "unauthenticated calls are not blocked")
		assert.Len(t, users, 2)
		assert.Empty(t, rec.lastRequest().auth)
	}
}

func TestDo_HeadersAndBody(t *testing.T) {
	srv, rec := newServer(t)
	c, err := New(srv.URL, nil)
	require.NoError(t, err)

	got, err := Post[map[string]string](context.Background(), c, "/echo", map[string]string{"username": "ann", "password": "pw"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"username": "ann", "password": "pw"}, got)

	last := rec.lastRequest()
	assert.Equal(t, http.MethodPost, last.method)
	assert.Equal(t, "application/json", last.contentType)
	assert.Equal(t, "application/json", last.accept)
	_, err = uuid.Parse(last.requestID)
	assert.NoError(t, err)
}

func TestDo_BodilessMethodDropsBody(t *testing.T) {
	srv, rec := newServer(t)
	c, err := New(srv.URL, nil)
	require.NoError(t, err)

	require.NoError(t, c.Do(context.Background(), http.MethodGet, "/users", map[string]string{"x": "y"}, nil))

	last := rec.lastRequest()
	assert.Empty(t, last.body)
	assert.Empty(t, last.contentType)
}

func TestDo_EmptyObjectBody(t *testing.T) {
	srv, rec := newServer(t)
	c, err := New(srv.URL, nil)
	require.NoError(t, err)

	require.NoError(t, c.Do(context.Background(), http.MethodPut, "/empty", struct{}{}, nil))
	assert.Equal(t, "{}", rec.lastRequest().body)
}

func TestDo_EmptySuccessBodyIsEmptyResult(t *testing.T) {
	srv, _ := newServer(t)
	c, err := New(srv.URL, nil)
	require.NoError(t, err)

	for _, path := range []string{"/empty", "/nocontent"} {
		out := user{ID: 99}
		require.NoError(t, c.Do(context.Background(), http.MethodPut, path, struct{}{}, &out))
		assert.Equal(t, user{ID: 99}, out, path)

		got, err := Put[*user](context.Background(), c, path, struct{}{})
		require.NoError(t, err)
		assert.Nil(t, got)
	}
}

func TestDo_DecodesJSONVariants(t *testing.T) {
	srv, _ := newServer(t)
	c, err := New(srv.URL, nil)
	require.NoError(t, err)
	ctx := context.Background()

	u, err := Get[user](ctx, c, "/users/7")
	require.NoError(t, err)
	assert.Equal(t, user{ID: 7, Username: "user-7"}, u)

	u, err = Get[user](ctx, c, "/problem")
	require.NoError(t, err)
	assert.Equal(t, 5, u.ID)

	u, err = Get[user](ctx, c, "/untyped")
	require.NoError(t, err)
	assert.Equal(t, 6, u.ID)
}

func TestDo_ParseFailures(t *testing.T) {
	srv, _ := newServer(t)
	c, err := New(srv.URL, nil)
	require.NoError(t, err)
	ctx := context.Background()

	for _, path := range []string{"/broken", "/html"} {
		_, err := Get[user](ctx, c, path)
		re, ok := AsRequestError(err)
		require.True(t, ok, path)
		assert.Equal(t, KindParse, re.Kind)
		assert.Equal(t, http.StatusOK, re.StatusCode)
		assert.True(t, strings.HasPrefix(re.Message, "failed to parse response: "), re.Message)
	}

	err = c.Do(ctx, http.MethodGet, "/broken", nil, nil)
	re, ok := AsRequestError(err)
	require.True(t, ok)
	assert.Equal(t, KindParse, re.Kind)
}

func TestDo_NonSuccessMessage(t *testing.T) {
	srv, _ := newServer(t)
	c, err := New(srv.URL, staticToken("t"))
	require.NoError(t, err)
	ctx := context.Background()

	tests := []struct {
		code int
		body string
		want string
	}{
		{400, "", "400: "},
		{400, "Username already taken", "400: Username already taken"},
		{401, "expired", "401: expired"},
		{404, "no such user", "404: no such user"},
		{409, "duplicate key violates unique constraint", "409: duplicate key violates unique constraint"},
		{500, "", "500: "},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			path := fmt.Sprintf("/status/%d?body=%s", tt.code, strings.ReplaceAll(tt.body, " ", "+"))
			_, err := Put[user](ctx, c, path, map[string]string{"username": "x"})

			re, ok := AsRequestError(err)
			require.True(t, ok)
			assert.Equal(t, KindHTTP, re.Kind)
			assert.Equal(t, tt.code, re.StatusCode)
			assert.Equal(t, tt.want, re.Message)
			assert.True(t, strings.HasPrefix(re.Message, fmt.Sprintf("%d: ", tt.code)))
			assert.Equal(t, tt.code == 401, errors.Is(err, ErrUnauthorized))
			assert.Equal(t, tt.code == 404, errors.Is(err, ErrNotFound))
			assert.False(t, errors.Is(err, ErrNetwork))
		})
	}
}

func TestDo_NoResponseHasNoStatus(t *testing.T) {
	srv, _ := newServer(t)
	url := srv.URL
	srv.Close()

	c, err := New(url, nil)
	require.NoError(t, err)

	_, err = Get[[]user](context.Background(), c, "/users")
	re, ok := AsRequestError(err)
	require.True(t, ok)
	assert.Equal(t, KindTransport, re.Kind)
	assert.Zero(t, re.StatusCode)
	assert.False(t, re.HasStatus())
	assert.True(t, strings.HasPrefix(re.Message, "network error: "))
	assert.ErrorIs(t, err, ErrNetwork)
}

func TestDo_CanceledContextIsTransportError(t *testing.T) {
	srv, _ := newServer(t)
	c, err := New(srv.URL, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = c.Do(ctx, http.MethodGet, "/users", nil, nil)
	assert.ErrorIs(t, err, ErrNetwork)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDo_Timeout(t *testing.T) {
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer slow.Close()

	c, err := New(slow.URL, nil, WithTimeout(50*time.Millisecond))
	require.NoError(t, err)

	err = c.Do(context.Background(), http.MethodGet, "/", nil, nil)
	assert.ErrorIs(t, err, ErrNetwork)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestDo_BasePathIsPreserved(t *testing.T) {
	paths := make(chan string, 2)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths <- r.URL.Path
	}))
	defer srv.Close()

	for _, base := range []string{srv.URL + "/api", srv.URL + "/api/"} {
		c, err := New(base, nil)
		require.NoError(t, err)
		require.NoError(t, c.Do(context.Background(), http.MethodGet, "/users/7", nil, nil))
		assert.Equal(t, "/api/users/7", <-paths)
	}
}

func TestDo_PathStaysUnderBase(t *testing.T) {
	paths := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths <- r.URL.Path
	}))
	defer srv.Close()

	c, err := New(srv.URL+"/api", nil)
	require.NoError(t, err)

	require.NoError(t, c.Do(context.Background(), http.MethodGet, "//users", nil, nil))
	assert.Equal(t, "/api/users", <-paths)

	for _, path := range []string{"users/../../admin", "/../admin", ".."} {
		err := c.Do(context.Background(), http.MethodGet, path, nil, nil)
		re, ok := AsRequestError(err)
		require.True(t, ok, path)
		assert.Equal(t, KindRequest, re.Kind, path)
	}
	assert.Empty(t, paths, "no request may leave the base path")
}

func TestDo_AbsolutePathRejected(t *testing.T) {
	c, err := New("http://localhost:1", nil)
	require.NoError(t, err)

	err = c.Do(context.Background(), http.MethodGet, "http://evil.example/users", nil, nil)
	re, ok := AsRequestError(err)
	require.True(t, ok)
	assert.Equal(t, KindRequest, re.Kind)
	assert.Zero(t, re.StatusCode)
}

func TestDo_UnencodableBody(t *testing.T) {
	c, err := New("http://localhost:1", nil)
	require.NoError(t, err)

	err = c.Do(context.Background(), http.MethodPost, "/users", make(chan int), nil)
	re, ok := AsRequestError(err)
	require.True(t, ok)
	assert.Equal(t, KindRequest, re.Kind)
}

func TestDo_NoResponseCaching(t *testing.T) {
	srv, rec := newServer(t)
	c, err := New(srv.URL, nil)
	require.NoError(t, err)

	for range 3 {
		_, err := Get[[]user](context.Background(), c, "/users")
		require.NoError(t, err)
	}
	assert.Equal(t, int32(3), rec.hits.Load())
}

func TestDo_ConcurrentCallsAreIndependent(t *testing.T) {
	srv, _ := newServer(t)
	c, err := New(srv.URL, staticToken("t"))
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 20)
	got := make([]user, 20)
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got[i], errs[i] = Get[user](context.Background(), c, fmt.Sprintf("/users/%d", i))
		}()
	}
	wg.Wait()

	for i := range 20 {
		require.NoError(t, errs[i])
		assert.Equal(t, i, got[i].ID)
	}
}

func TestDo_RateLimitWaitFailureIsTransport(t *testing.T) {
	srv, rec := newServer(t)
	c, err := New(srv.URL, nil, WithRateLimit(rate.Every(time.Hour), 1))
	require.NoError(t, err)

	require.NoError(t, c.Do(context.Background(), http.MethodGet, "/users", nil, nil))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err = c.Do(ctx, http.MethodGet, "/users", nil, nil)
	assert.ErrorIs(t, err, ErrNetwork)
	assert.Equal(t, int32(1), rec.hits.Load())
}

type doerFunc func(*http.Request) (*http.Response, error)

func (f doerFunc) Do(r *http.Request) (*http.Response, error) { return f(r) }

type failingBody struct{}

func (failingBody) Read([]byte) (int, error) { return 0, errors.New("connection reset") }
func (failingBody) Close() error             { return nil }

func TestDo_ErrorBodyReadFailureYieldsEmptyText(t *testing.T) {
	c, err := New("http://service.test", nil, WithHTTPClient(doerFunc(func(r *http.Request) (*http.Response, error) {
		return &http.Response{StatusCode: 503, Body: failingBody{}, Header: http.Header{}}, nil
	})))
	require.NoError(t, err)

	err = c.Do(context.Background(), http.MethodGet, "/users", nil, nil)
	re, ok := AsRequestError(err)
	require.True(t, ok)
	assert.Equal(t, "503: ", re.Message)
}

func TestDo_SuccessBodyReadFailureIsParseError(t *testing.T) {
	c, err := New("http://service.test", nil, WithHTTPClient(doerFunc(func(r *http.Request) (*http.Response, error) {
		return &http.Response{StatusCode: 200, Body: failingBody{}, Header: http.Header{}}, nil
	})))
	require.NoError(t, err)

	err = c.Do(context.Background(), http.MethodGet, "/users", nil, nil)
	re, ok := AsRequestError(err)
	require.True(t, ok)
	assert.Equal(t, KindParse, re.Kind)
}

func TestDo_TransportErrorFromDoer(t *testing.T) {
	boom := errors.New("dial tcp: refused")
	c, err := New("http://service.test", nil, WithHTTPClient(doerFunc(func(r *http.Request) (*http.Response, error) {
		return nil, boom
	})))
	require.NoError(t, err)

	_, err = Get[json.RawMessage](context.Background(), c, "/users")
	assert.ErrorIs(t, err, boom)
	re, _ := AsRequestError(err)
	assert.Equal(t, "network error: dial tcp: refused", re.Message)
}

func TestErrorKind_String(t *testing.T) {
	assert.Equal(t, "transport", KindTransport.String())
	assert.Equal(t, "http", KindHTTP.String())
	assert.Equal(t, "parse", KindParse.String())
	assert.Equal(t, "request", KindRequest.String())
	assert.Equal(t, "ErrorKind(0)", ErrorKind(0).String())
}
