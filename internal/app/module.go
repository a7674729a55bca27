package app

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/sprava/spravaterm/internal/api"
	"github.com/sprava/spravaterm/internal/bus"
	"github.com/sprava/spravaterm/internal/cache"
	"github.com/sprava/spravaterm/internal/config"
	"github.com/sprava/spravaterm/internal/feed"
	"github.com/sprava/spravaterm/internal/lock"
	"github.com/sprava/spravaterm/internal/logging"
	"github.com/sprava/spravaterm/internal/profile"
	"github.com/sprava/spravaterm/internal/refresh"
	"github.com/sprava/spravaterm/internal/session"
	"github.com/sprava/spravaterm/internal/store"
	"github.com/sprava/spravaterm/internal/transport"
)

// Params holds the resolved runtime configuration passed to the fx module.
type Params struct {
	Profile string
	Console bool // also log to stderr, for debugging outside the TUI
}

// Module composes the client's providers and lifecycle hooks.
func Module(p Params) fx.Option {
	return fx.Module("spravaterm",
		fx.Supply(p),
		fx.Provide(
			provideConfig,
			provideLogger,
			provideBus,
			provideLock,
			provideStore,
			provideSession,
			provideAPIClient,
			provideTransport,
			provideFeeds,
			provideCaches,
			provideRouter,
		),
		fx.Invoke(registerLifecycle),
	)
}

func provideConfig() *config.Config {
	return config.LoadOrDefault(profile.ConfigPath())
}

func provideLogger(p Params) (*zap.Logger, error) {
	if err := profile.EnsureDir(p.Profile); err != nil {
		return nil, err
	}
	return logging.New(profile.LogPath(p.Profile), p.Profile, p.Console)
}

func provideBus() *bus.Bus {
	return bus.New()
}

func provideLock(p Params, logger *zap.Logger) (*lock.Lock, error) {
	logger.Info("acquiring profile lock", zap.String("profile", p.Profile))
	l, err := lock.Acquire(profile.Dir(p.Profile))
	if err != nil {
		return nil, err
	}
	logger.Info("profile lock acquired")
	return l, nil
}

func provideStore(p Params, logger *zap.Logger) (*store.DB, error) {
	dbPath := profile.StatePath(p.Profile)
	db, err := store.Open(dbPath)
	if err != nil {
		return nil, err
	}
	result, err := db.Migrate()
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if result.Changed {
		logger.Info("migrations applied", zap.Uint("version", result.Version))
	} else {
		logger.Info("migrations up to date", zap.Uint("version", result.Version))
	}
	logger.Info("store initialized", zap.String("path", dbPath))
	return db, nil
}

func provideSession(db *store.DB, b *bus.Bus, logger *zap.Logger) *session.Session {
	return session.New(db, b, logger)
}

func provideAPIClient(cfg *config.Config, s *session.Session, logger *zap.Logger) *api.Client {
	return api.New(cfg.APIBaseURL, s.Token, logger)
}

func provideTransport(cfg *config.Config, b *bus.Bus, logger *zap.Logger) *transport.Transport {
	return transport.New(cfg.WSBaseURL, b, logger)
}

func provideFeeds(client *api.Client, logger *zap.Logger) *feed.Manager {
	return feed.NewManager(client.Messages, logger)
}

func provideCaches(client *api.Client, logger *zap.Logger) *cache.Caches {
	return cache.New(client, logger)
}

func provideRouter(caches *cache.Caches, feeds *feed.Manager, b *bus.Bus, logger *zap.Logger) *refresh.Router {
	invalidate := func(scope string) {
		ctx := context.Background()
		caches.Invalidate(ctx, scope)
		feeds.Invalidate(ctx, scope)
	}
	return refresh.NewRouter(invalidate, b, logger)
}

// watchRejection clears the local session when the transport reports its
// credential rejected. The push service closing with the rejection code means
// the stored token is dead, so the client must land in the same state as an
// explicit logout: credential gone, caches empty, feeds closed.
func watchRejection(b *bus.Bus, s *session.Session, caches *cache.Caches, feeds *feed.Manager, r *refresh.Router, logger *zap.Logger) (stop func()) {
	ch, unsub := b.Subscribe(bus.KindTransportRejected, 4)
	quit := make(chan struct{})

	go func() {
		for {
			select {
			case <-ch:
				logger.Warn("credential rejected by push service, signing out")
				feeds.CloseAll()
				caches.Clear()
				r.Reset()
				if err := s.Logout(); err != nil {
					logger.Error("logout after credential rejection failed", zap.Error(err))
				}
			case <-quit:
				return
			}
		}
	}()

	return func() {
		unsub()
		close(quit)
	}
}

func registerLifecycle(lc fx.Lifecycle, b *bus.Bus, s *session.Session, t *transport.Transport, r *refresh.Router, caches *cache.Caches, feeds *feed.Manager, lk *lock.Lock, db *store.DB, logger *zap.Logger) {
	var stopRejectionWatch func()
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			if err := s.Restore(); err != nil {
				return err
			}

			r.Start(t)
			stopRejectionWatch = watchRejection(b, s, caches, feeds, r, logger)

			if s.IsAuthenticated() {
				t.SetCredential(s.Token())
				go func() {
					if err := t.Connect(context.Background()); err != nil {
						logger.Warn("initial connect failed", zap.Error(err))
					}
				}()
			} else {
				logger.Info("no credential found, sign in required")
			}

			return nil
		},
		OnStop: func(_ context.Context) error {
			if stopRejectionWatch != nil {
				stopRejectionWatch()
			}
			t.Disconnect()
			r.Stop()
			feeds.CloseAll()
			caches.Clear()
			if err := lk.Release(); err != nil {
				logger.Warn("error releasing lock", zap.Error(err))
			}
			if err := db.Close(); err != nil {
				logger.Warn("error closing store", zap.Error(err))
			}
			logger.Info("client stopped")
			return nil
		},
	})
}
