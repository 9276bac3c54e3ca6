package rest

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/skullkeeper/internal/logging"
	"github.com/dmitrijs2005/skullkeeper/internal/server/services"
	"github.com/dmitrijs2005/skullkeeper/internal/store/memory"
)

func newTestServer(t *testing.T, addr string, opts Options) *RESTServer {
	t.Helper()
	s := memory.New([]string{"alice", "bob"})
	t.Cleanup(func() { _ = s.Close() })

	l := logging.Discard()
	return NewRESTServer(addr, l, services.New(s, l), testSecret, opts)
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, "127.0.0.1:0", Options{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- srv.Run(ctx)
	}()

	select {
	case err := <-done:
		t.Fatalf("server exited too early: %v", err)
	case <-time.After(150 * time.Millisecond):
	}

	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned error on graceful stop: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop within timeout after context cancel")
	}
}

func TestRun_ReturnsErrorOnBadAddress(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, "127.0.0.1:99999", Options{})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := srv.Run(ctx); err == nil {
		t.Fatal("expected listen error, got nil")
	}
}
