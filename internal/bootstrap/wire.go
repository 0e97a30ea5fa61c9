package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/cloudforge/invoice-service/internal/application/account"
	"github.com/cloudforge/invoice-service/internal/audit"
	"github.com/cloudforge/invoice-service/internal/config"
	"github.com/cloudforge/invoice-service/internal/domain"
	"github.com/cloudforge/invoice-service/internal/infrastructure/db/postgres"
	"github.com/cloudforge/invoice-service/internal/infrastructure/memory"
	rabbitmq_pub "github.com/cloudforge/invoice-service/internal/infrastructure/messaging/rabbitmq"
	"github.com/cloudforge/invoice-service/internal/infrastructure/redis"
	"github.com/cloudforge/invoice-service/internal/infrastructure/security"
	"github.com/cloudforge/invoice-service/internal/logger"
	"github.com/cloudforge/invoice-service/internal/notify"
	http_handlers "github.com/cloudforge/invoice-service/internal/transport/http/handlers"
	"github.com/cloudforge/invoice-service/internal/transport/http/middleware"
	"github.com/cloudforge/invoice-service/internal/transport/http/response"
	"github.com/cloudforge/invoice-service/internal/transport/http/router"
)

/*
========================
 Public entry (prod)
========================
*/

func NewServer() (*http.Server, func(), error) {
	return newServer(defaultDeps())
}

// NewServerWithDeps allows injecting dependencies for testing
func NewServerWithDeps(deps Deps) (*http.Server, func(), error) {
	return newServer(deps)
}

/*
========================
 Dependency injection
========================
*/

type Deps struct {
	LoadConfig func() (*config.Config, error)

	NewDB func(addr string, debug bool) (DBCloser, error)

	NewRedis func(addr, password string, db int) RedisClient

	NewPublisher func(rabbitURL string) (notify.Publisher, error)

	NewRouter func(router.Deps) (http.Handler, error)
}

type DBCloser interface {
	Close() error
}

type RedisClient interface {
	Ping(ctx context.Context) error
	Close() error
}

/*
========================
 Core bootstrap logic
========================
*/

func newServer(deps Deps) (*http.Server, func(), error) {
	// 0) config
	cfg, err := deps.LoadConfig()
	if err != nil {
		return nil, nil, err
	}

	var cleanupFns []func()

	// 1) persistence: postgres, or in-memory stand-ins in dev
	var (
		sqlDB      *sql.DB
		userRepo   account.UserRepo
		ledgerRepo account.VerificationRepo
		eventRepo  account.EventRepo
	)

	db, dbErr := connectDB(deps, cfg)
	if dbErr != nil {
		if cfg.Env != "dev" {
			return nil, nil, dbErr
		}
		logger.Logger.Warn().Err(dbErr).Msg("postgres unavailable; using in-memory stores")
		memUsers := memory.NewUserRepo()
		userRepo = memUsers
		ledgerRepo = memory.NewVerificationRepo()
		eventRepo = memory.NewEventRepo(memUsers)
	} else {
		var ok bool
		sqlDB, ok = db.(*sql.DB)
		if !ok {
			return nil, nil, errors.New("bootstrap: NewDB did not return *sql.DB")
		}
		cleanupFns = append(cleanupFns, func() { _ = sqlDB.Close() })

		userRepo = postgres.NewUserRepo(sqlDB)
		ledgerRepo = postgres.NewVerificationRepo(sqlDB)
		eventRepo = postgres.NewEventRepo(sqlDB)
	}

	// 2) redis sessions (best-effort in dev)
	var sessionStore account.SessionStore
	if deps.NewRedis != nil && cfg.RedisAddr != "" {
		c := deps.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		if err := c.Ping(ctx); err != nil {
			if cfg.Env != "dev" {
				runCleanup(cleanupFns)
				return nil, nil, err
			}
			logger.Logger.Warn().Err(err).Msg("redis unavailable; using in-memory sessions")
			_ = c.Close()
		} else {
			logger.Logger.Info().Msg("redis connected")
			cleanupFns = append(cleanupFns, func() { _ = c.Close() })
			if rc, ok := c.(*redis.Client); ok {
				sessionStore = redis.NewSessionStore(rc)
			}
		}
	}
	if sessionStore == nil {
		sessionStore = memory.NewSessionStore()
	}

	// 3) notifications: rabbitmq publisher behind a worker pool
	var pub notify.Publisher
	if cfg.RabbitURL != "" {
		p, err := deps.NewPublisher(cfg.RabbitURL)
		if err != nil {
			if cfg.Env != "dev" {
				runCleanup(cleanupFns)
				return nil, nil, err
			}
			logger.Logger.Warn().Err(err).Msg("rabbitmq unavailable; notifications recorded in memory")
			pub = memory.NewPublisher()
		} else {
			pub = p
		}
	} else {
		pub = memory.NewPublisher()
	}
	if c, ok := pub.(interface{ Close() error }); ok {
		cleanupFns = append(cleanupFns, func() { _ = c.Close() })
	}

	dispatcher := notify.NewDispatcher(pub, cfg.NotifyWorkers, logger.Logger)
	cleanupFns = append(cleanupFns, dispatcher.Stop)

	// 4) security
	hasher := security.NewBcryptHasher(12)
	signer := security.NewJWTSigner(cfg.JWTSecret, "invoice-service")

	// 5) service
	svc := account.NewService(
		userRepo,
		ledgerRepo,
		eventRepo,
		hasher,
		signer,
		sessionStore,
		dispatcher,
		account.Config{
			AccessTTL:            cfg.AccessTokenTTL,
			RefreshTTL:           cfg.RefreshTokenTTL,
			VerifyAccountBaseURL: cfg.VerifyAccountBaseURL,
			PasswordResetBaseURL: cfg.PasswordResetBaseURL,
			PasswordResetTTL:     cfg.PasswordResetTokenTTL,
		},
	)

	svc = svc.WithAudit(func(action string, fields map[string]string) {
		evt := logger.Logger.Info().
			Bool("audit", true).
			Str("action", action)
		for k, v := range fields {
			evt = evt.Str(k, v)
		}
		evt.Msg("audit")
	})

	// 6) handlers + middleware
	accountH := http_handlers.NewAccountHandler(svc, audit.New(logger.Logger))
	healthH := http_handlers.NewHealthHandler(sqlDB)

	authMW := middleware.Auth(signer, response.WriteError)
	adminMW := middleware.RequireAtLeast(string(domain.RoleAdmin), response.WriteError)

	// 7) router
	mux, err := deps.NewRouter(router.Deps{
		Health:  healthH,
		Account: accountH,
		MetaMW:  middleware.RequestMeta,
		AuthMW:  authMW,
		AdminMW: adminMW,
	})
	if err != nil {
		runCleanup(cleanupFns)
		return nil, nil, err
	}

	// 8) server
	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      mux,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	cleanup := func() {
		runCleanup(cleanupFns)
	}

	return srv, cleanup, nil
}

func connectDB(deps Deps, cfg *config.Config) (DBCloser, error) {
	if cfg.DBAddr == "" {
		return nil, errors.New("bootstrap: DB_ADDR not set")
	}
	return deps.NewDB(cfg.DBAddr, cfg.DBDebug)
}

/*
========================
 Default deps (prod)
========================
*/

func defaultDeps() Deps {
	return Deps{
		LoadConfig: config.Load,
		NewDB: func(addr string, debug bool) (DBCloser, error) {
			return config.NewDB(addr, debug)
		},
		NewRedis: func(addr, password string, db int) RedisClient {
			return redis.New(addr, password, db)
		},
		NewPublisher: func(url string) (notify.Publisher, error) {
			return rabbitmq_pub.NewPublisher(url)
		},
		NewRouter: func(d router.Deps) (http.Handler, error) {
			return router.New(d)
		},
	}
}

/*
========================
 helpers
========================
*/

func runCleanup(fns []func()) {
	for i := len(fns) - 1; i >= 0; i-- {
		fns[i]()
	}
}
