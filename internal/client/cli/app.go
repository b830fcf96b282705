package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/dmitrijs2005/useraccounts/internal/buildinfo"
	"github.com/dmitrijs2005/useraccounts/internal/client/api"
	"github.com/dmitrijs2005/useraccounts/internal/client/cache"
	"github.com/dmitrijs2005/useraccounts/internal/client/config"
	"github.com/dmitrijs2005/useraccounts/internal/client/guard"
	"github.com/dmitrijs2005/useraccounts/internal/client/models"
	"github.com/dmitrijs2005/useraccounts/internal/client/repositories/kv"
	"github.com/dmitrijs2005/useraccounts/internal/client/services"
	"github.com/dmitrijs2005/useraccounts/internal/client/session"
	"github.com/dmitrijs2005/useraccounts/internal/client/storage"
	"github.com/dmitrijs2005/useraccounts/internal/common"
	"github.com/dmitrijs2005/useraccounts/internal/logging"
	"golang.org/x/time/rate"
)

type App struct {
	config   *config.Config
	log      logging.Logger
	db       *sql.DB
	store    *cache.Store
	session  *session.Session
	accounts services.AccountService
	guard    *guard.Guard
	router   *Router

	usersView *guard.View[[]models.User]
	userView  *guard.View[*models.User]

	reader *bufio.Reader
	outMu  sync.Mutex
	out    io.Writer
}

// NewApp wires the client. When the cache file cannot be opened the app
// still starts, with a session that lasts only for this process.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	var repo kv.Repository
	db, err := storage.Open(ctx, c.StoragePath)
	if err != nil {
		log.Warn(ctx, "local storage unavailable, session will not persist", "path", c.StoragePath, "error", err)
		repo = kv.NewMemoryRepository()
	} else {
		repo = kv.NewSQLiteRepository(db)
	}

	store := cache.NewStore(ctx, repo, log)
	sess := session.New(store)

	opts := []api.Option{
		api.WithTimeout(c.RequestTimeout),
		api.WithLogger(log),
		api.WithAuthScheme(c.AuthScheme),
		api.WithUserAgent("useraccounts-cli/" + buildinfo.Version),
	}
	if c.RateLimit > 0 {
		opts = append(opts, api.WithRateLimit(rate.Limit(c.RateLimit), c.RateBurst))
	}
	client, err := api.New(c.ServerURL, sess, opts...)
	if err != nil {
		if db != nil {
			_ = db.Close()
		}
		return nil, err
	}

	accounts := services.NewAccountService(client, sess,
		services.WithRegisterPath(c.RegisterPath),
		services.WithLogger(log),
	)
	g := guard.New(sess)

	a := &App{
		config:    c,
		log:       log,
		db:        db,
		store:     store,
		session:   sess,
		accounts:  accounts,
		guard:     g,
		router:    NewRouter(Route{Name: RouteHome}),
		usersView: guard.NewView[[]models.User](g),
		userView:  guard.NewView[*models.User](g),
		reader:    bufio.NewReader(os.Stdin),
		out:       os.Stdout,
	}
	a.usersView.Subscribe(a.showLoading)
	a.userView.Subscribe(a.showLoading)
	a.router.OnMove(func(from, to Route) {
		log.Debug(ctx, "navigate", "from", from.String(), "to", to.String())
	})
	store.Subscribe(a.onCacheChange)
	return a, nil
}

// Close releases the cache database.
func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

// watchesStorage reports whether the cache file should be watched for
// writes by other processes. An in-memory cache has no file.
func (a *App) watchesStorage() bool {
	return a.db != nil && a.config.WatchStorage && a.config.StoragePath != storage.MemoryDSN
}

// Run starts the storage watcher and the REPL and blocks until the user
// exits or ctx is done.
func (a *App) Run(ctx context.Context) {
	defer a.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if a.watchesStorage() {
		w := cache.NewWatcher(a.store, a.config.StoragePath, cache.DefaultDebounce, a.log)
		go func() {
			if err := w.Run(ctx); err != nil {
				a.log.Warn(ctx, "storage watcher stopped", "error", err)
			}
		}()
	}

	a.println("Welcome to the user-account client (type 'help' for commands)")
	if a.session.IsAuthenticated() {
		a.router.Replace(Route{Name: RouteUsers})
	} else {
		a.router.Replace(Route{Name: RouteLogin})
	}
	runREPL(ctx, a, a.getStatus, a.reader)
}

func (a *App) isLoggedIn() bool {
	return a.session.IsAuthenticated()
}

func (a *App) getStatus() string {
	s := a.router.Current().String()
	if id, ok := a.session.CurrentUserID(); ok {
		s = fmt.Sprintf("%s #%d", s, id)
	}
	return s
}

func (a *App) println(args ...any) {
	a.outMu.Lock()
	defer a.outMu.Unlock()
	fmt.Fprintln(a.out, args...)
}

func (a *App) showLoading(s guard.State) {
	if s == guard.StateLoading {
		a.println("Loading...")
	}
}

// onCacheChange leaves a protected screen once the session is gone, which
// happens when another process sharing the cache logs out.
func (a *App) onCacheChange(key string) {
	if key != common.TokenKey || a.session.IsAuthenticated() {
		return
	}
	if a.router.Current().Protected() {
		a.usersView.Abandon()
		a.userView.Abandon()
		a.router.Replace(Route{Name: RouteLogin})
	}
}
