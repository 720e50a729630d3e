package app

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/sandeepkv93/bazar-universal-api/internal/config"
)

func TestServeAndShutdownClosesDependencies(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	cfg := &config.Config{
		APIV1Str:                     "/api/v1",
		ShutdownTimeout:              2 * time.Second,
		ShutdownHTTPDrainTimeout:     time.Second,
		ShutdownObservabilityTimeout: time.Second,
	}
	srv := &http.Server{Handler: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})}
	a := New(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), srv, nil, db, client, nil)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	done := make(chan error, 1)
	go func() { done <- a.Serve(ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/")
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}

	if err := a.Shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	if err := <-done; err != nil {
		t.Fatalf("serve returned %v after shutdown", err)
	}
	if err := client.Ping(context.Background()).Err(); err == nil {
		t.Fatal("expected redis client to be closed")
	}
	sqlDB, _ := db.DB()
	if err := sqlDB.Ping(); err == nil {
		t.Fatal("expected database to be closed")
	}
}

func TestDurationOr(t *testing.T) {
	if got := durationOr(0, time.Second); got != time.Second {
		t.Fatalf("expected fallback, got %v", got)
	}
	if got := durationOr(3*time.Second, time.Second); got != 3*time.Second {
		t.Fatalf("expected configured value, got %v", got)
	}
}
