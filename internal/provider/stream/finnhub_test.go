package stream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// wsURL rewrites an httptest server URL into its ws:// form.
func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

// dropServer accepts each WebSocket upgrade and closes the connection
// right away, forcing the client through its reconnect path.
func dropServer(t *testing.T) *httptest.Server {
	t.Helper()
	up := websocket.Upgrader{}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := up.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		_ = conn.Close()
	}))
}

func TestReadSessionsDoNotLeakGoroutines(t *testing.T) {
	srv := dropServer(t)
	defer srv.Close()

	c := New(Config{
		WebsocketURL: wsURL(srv),
		PingInterval: 10 * time.Millisecond,
	})
	ctx := context.Background()

	before := runtime.NumGoroutine()

	for i := 0; i < 20; i++ {
		if err := c.Connect(ctx); err != nil {
			t.Fatalf("connect %d: %v", i, err)
		}
		quotes, errs := c.Read(ctx)
		for range errs {
		}
		for range quotes {
		}
		if err := c.Close(); err != nil {
			t.Fatalf("close %d: %v", i, err)
		}
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if runtime.NumGoroutine() <= before+2 {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("goroutines leaked across sessions: before=%d after=%d", before, runtime.NumGoroutine())
}

func TestReadWithoutConnect(t *testing.T) {
	c := New(Config{WebsocketURL: "ws://127.0.0.1:0"})

	quotes, errs := c.Read(context.Background())
	if err, ok := <-errs; !ok || err == nil {
		t.Fatalf("expected error for unconnected stream")
	}
	if _, ok := <-quotes; ok {
		t.Fatalf("quotes channel not closed")
	}
}
