package main

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"relytailors-be/internal/config"
	"relytailors-be/internal/logger"
	"relytailors-be/internal/metrics"
	"relytailors-be/internal/middleware"
	"relytailors-be/internal/notification"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Mock Driver for Testing ---
type mockDriver struct{}

func (m *mockDriver) Open(name string) (driver.Conn, error)         { return &mockConn{}, nil }
func (c *mockConn) Prepare(query string) (driver.Stmt, error)       { return &mockStmt{}, nil }
func (c *mockConn) Close() error                                    { return nil }
func (c *mockConn) Begin() (driver.Tx, error)                       { return nil, errors.New("not supported") }
func (s *mockStmt) Close() error                                    { return nil }
func (s *mockStmt) NumInput() int                                   { return -1 }
func (s *mockStmt) Exec(args []driver.Value) (driver.Result, error) { return nil, errors.New("not supported") }
func (s *mockStmt) Query(args []driver.Value) (driver.Rows, error)  { return nil, errors.New("not supported") }

type mockConn struct{}
type mockStmt struct{}

func init() {
	sql.Register("mock_driver_main", &mockDriver{})
}

func testConfig() *config.Config {
	return &config.Config{
		AppPort:           "8080",
		AppEnv:            "test",
		JWTSecret:         "test-secret",
		TokenTTL:          time.Hour,
		NotificationTopic: "notifications.email",
	}
}

func TestNewServer(t *testing.T) {
	db, err := sql.Open("mock_driver_main", "")
	require.NoError(t, err)
	defer db.Close()

	srv, err := newServer(testConfig(), db)
	require.NoError(t, err)
	defer srv.pubsub.Close()

	t.Run("Health Check", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/healthz", nil)
		rr := httptest.NewRecorder()

		srv.handler.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `"status":"ok"`)
	})

	t.Run("Metrics", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/metrics", nil)
		rr := httptest.NewRecorder()

		srv.handler.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "relytailors_notifications_sent_total")
	})

	t.Run("Protected Route", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/orders/myorders", nil)
		rr := httptest.NewRecorder()

		srv.handler.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("Database Failure Hidden", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/products", nil)
		rr := httptest.NewRecorder()

		srv.handler.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.JSONEq(t, `{"message":"Internal server error"}`, rr.Body.String())
	})
}

func TestNewServer_UnknownBackend(t *testing.T) {
	cfg := testConfig()
	cfg.NotificationBackend = "sqs"

	_, err := newServer(cfg, nil)
	assert.Error(t, err)
}

func TestRun(t *testing.T) {
	origInitDB := initDBFunc
	defer func() { initDBFunc = origInitDB }()
	initDBFunc = func(cfg *config.Config) *sql.DB {
		db, _ := sql.Open("mock_driver_main", "")
		return db
	}

	origStartServer := startServerFunc
	defer func() { startServerFunc = origStartServer }()

	t.Setenv("APP_PORT", "8080")
	t.Setenv("APP_ENV", "test")
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_PORT", "5432")
	t.Setenv("DB_USER", "user")
	t.Setenv("DB_PASSWORD", "pass")
	t.Setenv("DB_NAME", "db")
	t.Setenv("JWT_SECRET", "test-secret")

	t.Run("Server Closed", func(t *testing.T) {
		startServerFunc = func(srv *http.Server) error { return http.ErrServerClosed }
		assert.NoError(t, run(context.Background()))
	})

	t.Run("Listen Error", func(t *testing.T) {
		startServerFunc = func(srv *http.Server) error { return errors.New("address in use") }
		assert.ErrorContains(t, run(context.Background()), "address in use")
	})

	t.Run("Context Cancelled", func(t *testing.T) {
		block := make(chan struct{})
		startServerFunc = func(srv *http.Server) error {
			<-block
			return http.ErrServerClosed
		}
		defer close(block)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		assert.NoError(t, run(ctx))
	})
}

func TestRun_MissingConfig(t *testing.T) {
	t.Setenv("DB_HOST", "")
	t.Setenv("JWT_SECRET", "")

	assert.Error(t, run(context.Background()))
}

type recordingDispatcher struct {
	mu sync.Mutex
	to []string
}

func (d *recordingDispatcher) Send(ctx context.Context, to, subject, htmlBody string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.to = append(d.to, to)
	return nil
}

func (d *recordingDispatcher) recipients() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.to...)
}

func TestServe_DeliversEmailsEnqueuedDuringShutdown(t *testing.T) {
	cfg := testConfig()
	pubsub, err := notification.NewPubSub(cfg, logger.L())
	require.NoError(t, err)
	defer pubsub.Close()

	dispatcher := &recordingDispatcher{}
	queue := notification.NewQueue(pubsub.Publisher, cfg.NotificationTopic)

	inFlight := make(chan struct{})
	release := make(chan struct{})
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(inFlight)
		<-release
		if err := queue.Enqueue(r.Context(), notification.Email{
			To:      "asha@example.com",
			Subject: "Order RT-1: Cancelled",
		}); err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	srv := &server{
		handler: handler,
		worker:  notification.NewWorker(pubsub.Subscriber, cfg.NotificationTopic, dispatcher, metrics.New()),
		pubsub:  pubsub,
		limiter: middleware.NewRateLimiter(""),
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	origStartServer := startServerFunc
	defer func() { startServerFunc = origStartServer }()
	startServerFunc = func(s *http.Server) error { return s.Serve(ln) }

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	served := make(chan error, 1)
	go func() { served <- srv.serve(ctx, &http.Server{Handler: srv.handler}) }()

	status := make(chan int, 1)
	go func() {
		resp, err := http.Post("http://"+ln.Addr().String()+"/api/admin/orders/x/cancel", "application/json", nil)
		if err != nil {
			status <- 0
			return
		}
		resp.Body.Close()
		status <- resp.StatusCode
	}()

	<-inFlight
	// The signal arrives while the cancel request is still being handled.
	cancel()
	time.Sleep(50 * time.Millisecond)
	close(release)

	assert.Equal(t, http.StatusOK, <-status)
	select {
	case err := <-served:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not return")
	}
	assert.Equal(t, []string{"asha@example.com"}, dispatcher.recipients())
}

func TestServe_WorkerStartFailure(t *testing.T) {
	cfg := testConfig()
	pubsub, err := notification.NewPubSub(cfg, logger.L())
	require.NoError(t, err)
	require.NoError(t, pubsub.Close())

	srv := &server{
		handler: http.NotFoundHandler(),
		worker:  notification.NewWorker(pubsub.Subscriber, cfg.NotificationTopic, &recordingDispatcher{}, metrics.New()),
		pubsub:  pubsub,
		limiter: middleware.NewRateLimiter(""),
	}

	err = srv.serve(context.Background(), &http.Server{})
	assert.ErrorContains(t, err, "notification worker failed to start")
}
