package app

import (
	"context"
	"database/sql"
	"errors"
	"io/fs"
	"net"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"surfsup-server/internal/config"
	"surfsup-server/internal/db"
)

func testConfig(path string) config.Config {
	return config.Config{
		AppEnv:            "dev",
		HTTPAddr:          "127.0.0.1:0",
		ReadHeaderTimeout: time.Second,
		ShutdownTimeout:   time.Second,
		Driver:            "sqlite3",
		Path:              path,
		MaxOpenConns:      2,
		MaxIdleConns:      2,
	}
}

func TestRun_MissingDataset(t *testing.T) {
	cfg := testConfig(filepath.Join(t.TempDir(), "missing.sqlite"))
	err := Run(context.Background(), cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestRun_SchemaMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "other.sqlite")
	rw, err := sql.Open("sqlite3", "file:"+path)
	require.NoError(t, err)
	_, err = rw.Exec(`CREATE TABLE measurement (station TEXT, date TEXT)`)
	require.NoError(t, err)
	require.NoError(t, rw.Close())

	err = Run(context.Background(), testConfig(path))
	require.Error(t, err)
	assert.ErrorIs(t, err, db.ErrSchemaMismatch)
}

func TestServe_ShutdownOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /ping", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("pong"))
	})
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: time.Second}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- serve(ctx, srv, ln, testConfig("")) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/ping")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.True(t, errors.Is(err, context.Canceled), "serve returned %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not return after cancel")
	}
}

func TestServe_ListenerError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	require.NoError(t, ln.Close())

	srv := &http.Server{Handler: http.NewServeMux(), ReadHeaderTimeout: time.Second}
	err = serve(context.Background(), srv, ln, testConfig(""))
	assert.Error(t, err)
}
