package bootstrap

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/cloudforge/invoice-service/internal/config"
	"github.com/cloudforge/invoice-service/internal/infrastructure/memory"
	"github.com/cloudforge/invoice-service/internal/notify"
	"github.com/cloudforge/invoice-service/internal/transport/http/router"
)

// The wiring is exercised with injected constructors: no real postgres,
// redis or rabbitmq is needed.

type fakeRedis struct {
	pingErr error
	closed  bool
}

func (f *fakeRedis) Ping(ctx context.Context) error { return f.pingErr }
func (f *fakeRedis) Close() error                   { f.closed = true; return nil }

func testConfig(env string) *config.Config {
	return &config.Config{
		Env:                  env,
		HTTPAddr:             ":0",
		JWTSecret:            "test-secret",
		AccessTokenTTL:       15 * time.Minute,
		RefreshTokenTTL:      24 * time.Hour,
		VerifyAccountBaseURL: "http://example.com/verify?token=",
		PasswordResetBaseURL: "http://example.com/reset?token=",
		NotifyWorkers:        1,
	}
}

func testDeps(cfg *config.Config) Deps {
	return Deps{
		LoadConfig: func() (*config.Config, error) { return cfg, nil },
		NewDB: func(addr string, debug bool) (DBCloser, error) {
			return nil, errors.New("no db in tests")
		},
		NewRedis: func(addr, password string, db int) RedisClient {
			return &fakeRedis{}
		},
		NewPublisher: func(url string) (notify.Publisher, error) {
			return memory.NewPublisher(), nil
		},
		NewRouter: router.New,
	}
}

// mockDB wires a sqlmock database so the postgres branch can be reached
// without a server.
func mockDB(t *testing.T) func(addr string, debug bool) (DBCloser, error) {
	t.Helper()
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	return func(addr string, debug bool) (DBCloser, error) { return db, nil }
}

func TestNewServer_ConfigLoadFails(t *testing.T) {
	deps := testDeps(nil)
	deps.LoadConfig = func() (*config.Config, error) {
		return nil, errors.New("missing required env var")
	}

	srv, cleanup, err := NewServerWithDeps(deps)
	if err == nil {
		t.Fatalf("expected error")
	}
	if srv != nil || cleanup != nil {
		t.Fatalf("expected nil server and cleanup on config failure")
	}
}

func TestNewServer_Dev_DBUnavailable_FallsBackToMemory(t *testing.T) {
	cfg := testConfig("dev")

	srv, cleanup, err := NewServerWithDeps(testDeps(cfg))
	if err != nil {
		t.Fatalf("dev must tolerate a missing database: %v", err)
	}
	if srv == nil || srv.Handler == nil {
		t.Fatalf("expected a wired server")
	}
	if srv.Addr != ":0" {
		t.Fatalf("expected addr :0, got %q", srv.Addr)
	}
	cleanup()
}

func TestNewServer_Prod_DBUnavailable_Fails(t *testing.T) {
	cfg := testConfig("prod")
	cfg.DBAddr = "postgres://invalid:5432/db"

	srv, cleanup, err := NewServerWithDeps(testDeps(cfg))
	if err == nil {
		t.Fatalf("prod must fail fast without a database")
	}
	if srv != nil || cleanup != nil {
		t.Fatalf("expected nil server and cleanup")
	}
}

func TestNewServer_Dev_RedisUnreachable_FallsBackToMemory(t *testing.T) {
	cfg := testConfig("dev")
	cfg.RedisAddr = "localhost:1"

	r := &fakeRedis{pingErr: errors.New("connection refused")}
	deps := testDeps(cfg)
	deps.NewRedis = func(addr, password string, db int) RedisClient { return r }

	_, cleanup, err := NewServerWithDeps(deps)
	if err != nil {
		t.Fatalf("dev must tolerate an unreachable redis: %v", err)
	}
	if !r.closed {
		t.Fatalf("the failed redis client must be closed")
	}
	cleanup()
}

func TestNewServer_Prod_RedisUnreachable_Fails(t *testing.T) {
	cfg := testConfig("prod")
	cfg.DBAddr = "postgres://db"
	cfg.RedisAddr = "localhost:1"

	deps := testDeps(cfg)
	deps.NewDB = mockDB(t)
	deps.NewRedis = func(addr, password string, db int) RedisClient {
		return &fakeRedis{pingErr: errors.New("connection refused")}
	}

	if _, _, err := NewServerWithDeps(deps); err == nil {
		t.Fatalf("prod must fail fast when redis is down")
	}
}

func TestNewServer_Dev_RabbitUnavailable_RecordsInMemory(t *testing.T) {
	cfg := testConfig("dev")
	cfg.RabbitURL = "amqp://invalid"

	deps := testDeps(cfg)
	deps.NewPublisher = func(url string) (notify.Publisher, error) {
		return nil, errors.New("dial amqp: connection refused")
	}

	srv, cleanup, err := NewServerWithDeps(deps)
	if err != nil {
		t.Fatalf("dev must tolerate a missing broker: %v", err)
	}
	if srv == nil {
		t.Fatalf("expected a wired server")
	}
	cleanup()
}

func TestNewServer_Prod_RabbitUnavailable_Fails(t *testing.T) {
	cfg := testConfig("prod")
	cfg.DBAddr = "postgres://db"
	cfg.RabbitURL = "amqp://invalid"

	deps := testDeps(cfg)
	deps.NewDB = mockDB(t)
	deps.NewPublisher = func(url string) (notify.Publisher, error) {
		return nil, errors.New("dial amqp: connection refused")
	}

	if _, _, err := NewServerWithDeps(deps); err == nil {
		t.Fatalf("prod must fail fast when the broker is down")
	}
}

func TestNewServer_RouterFailurePropagates(t *testing.T) {
	cfg := testConfig("dev")

	deps := testDeps(cfg)
	deps.NewRouter = func(d router.Deps) (http.Handler, error) {
		return nil, errors.New("nil handler")
	}

	if _, _, err := NewServerWithDeps(deps); err == nil {
		t.Fatalf("expected router error to propagate")
	}
}

func TestNewServer_ServesHealthz(t *testing.T) {
	cfg := testConfig("dev")

	srv, cleanup, err := NewServerWithDeps(testDeps(cfg))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer cleanup()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 from /healthz, got %d", rr.Code)
	}
}

func TestNewServer_CleanupIsIdempotent(t *testing.T) {
	cfg := testConfig("dev")

	_, cleanup, err := NewServerWithDeps(testDeps(cfg))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cleanup()
	cleanup()
}
