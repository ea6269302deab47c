package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	goredis "github.com/redis/go-redis/v9"

	picasa "github.com/Camalot9/picasaweb-go"
	"github.com/Camalot9/picasaweb-go/internal/auth"
	"github.com/Camalot9/picasaweb-go/internal/cache"
	"github.com/Camalot9/picasaweb-go/internal/config"
	"github.com/Camalot9/picasaweb-go/internal/httpx"
	"github.com/Camalot9/picasaweb-go/internal/logger"
	"github.com/Camalot9/picasaweb-go/internal/redisconn"
	"github.com/Camalot9/picasaweb-go/internal/version"
)

type App struct {
	cfg    *config.Config
	logger logger.Logger
	client *picasa.Client
	auth   *auth.Manager
	store  cache.Store

	janitor     *cache.Janitor
	redisClient *goredis.Client

	in  io.Reader
	out io.Writer
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	a := &App{
		cfg:    cfg,
		logger: loggerClient,
		in:     os.Stdin,
		out:    os.Stdout,
	}

	if err := a.initCache(); err != nil {
		return nil, err
	}

	transport := httpx.New(httpx.WithTimeout(cfg.HTTPTimeout))
	a.auth = auth.New(transport, auth.WithLogger(loggerClient))
	a.restoreSession()

	a.client = picasa.New(
		picasa.WithHost(cfg.Host),
		picasa.WithHTTPClient(&http.Client{Timeout: cfg.HTTPTimeout}),
		picasa.WithTransport(transport),
		picasa.WithAuth(a.auth),
		picasa.WithCache(a.store),
		picasa.WithLogger(loggerClient),
	)

	return a, nil
}

// initCache wires the configured cache backend. The file backend gets a
// janitor so stale entries do not accumulate on disk; Redis expires entries
// itself.
func (a *App) initCache() error {
	switch a.cfg.CacheBackend {
	case "file":
		fs := cache.NewFileStore(a.cfg.CacheDir,
			cache.WithTTL(a.cfg.CacheTTL),
			cache.WithLogger(a.logger),
		)
		a.store = fs
		a.janitor = cache.NewJanitor(fs, a.logger, a.cfg.SweepInterval)

	case "memory":
		a.store = cache.NewMemoryStore(
			cache.WithMemoryTTL(a.cfg.CacheTTL),
		)

	case "redis":
		client, err := redisconn.New(redisconn.Options{
			Addr:           a.cfg.RedisAddr,
			User:           a.cfg.RedisUser,
			Password:       a.cfg.RedisPassword,
			DB:             a.cfg.RedisDB,
			DialTimeout:    a.cfg.RedisDialTimeout,
			ConnectTimeout: a.cfg.RedisConnectTimeout,
			RetryInterval:  a.cfg.RedisRetryInterval,
			MaxWait:        a.cfg.RedisMaxWait,
			PingTimeout:    a.cfg.RedisPingTimeout,
		}, a.logger)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		a.redisClient = client
		a.store = cache.NewRedisStore(client, a.cfg.CacheTTL, a.logger)

	case "off":
		a.store = cache.Nop{}
	}
	return nil
}

// Run dispatches args to the matching command and blocks until it finishes
// or the process receives an interrupt.
func (a *App) Run(args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer a.close()

	if a.janitor != nil {
		a.janitor.Start(ctx)
		defer a.janitor.Stop()
	}

	if len(args) == 0 {
		a.usage()
		return errors.New("no command given")
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "albums":
		return a.cmdAlbums(ctx, rest)
	case "images":
		return a.cmdImages(ctx, rest)
	case "album":
		return a.cmdAlbum(ctx, rest)
	case "image":
		return a.cmdImage(ctx, rest)
	case "tags":
		return a.cmdTags(ctx, rest)
	case "comments":
		return a.cmdComments(ctx, rest)
	case "contacts":
		return a.cmdContacts(ctx, rest)
	case "upload":
		return a.cmdUpload(ctx, rest)
	case "post-album":
		return a.cmdPostAlbum(ctx, rest)
	case "login":
		return a.cmdLogin(ctx, rest)
	case "logout":
		return a.cmdLogout(ctx, rest)
	case "cache-clear":
		return a.cmdCacheClear(ctx)
	case "version":
		fmt.Fprintf(a.out, "picasa %s (commit=%s, built=%s, go=%s)\n",
			version.Version, version.Commit, version.BuildDate, version.GoVersion)
		return nil
	default:
		a.usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func (a *App) close() {
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warnf("failed to close redis: %v", err)
		}
	}
	_ = a.logger.Sync()
}

func (a *App) usage() {
	fmt.Fprint(a.out, `Usage: picasa <command> [flags] [args]

Commands:
  albums <user>                          list a user's albums
  images <user> [flags]                  search a user's photos
  album <user> <albumid>                 show one album with its photos
  image <user> <albumid> <photoid>       show one photo
  tags <user> [albumid]                  list tags
  comments <user> [albumid]              list comments
  contacts <user>                        list contacts
  upload <user> <albumid> <file>         upload a photo
  post-album <user> [flags]              create an album
  login                                  sign in (password or -redirect)
  logout                                 drop the stored session
  cache-clear                            flush the response cache
  version                                print version information
`)
}
