package server

import (
	"context"
	"io"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/yongpi/fpool"
)

type nopLogger struct{}

func (nopLogger) Debugf(string, ...interface{}) {}
func (nopLogger) Errorf(string, ...interface{}) {}

type testServer struct {
	addr   string
	pool   *fpool.Pool
	cancel context.CancelFunc
	done   chan error
}

func start(t *testing.T, workers int, sleepDelay time.Duration) *testServer {
	t.Helper()

	pool, err := fpool.New(workers, fpool.WithLogger(nopLogger{}))
	if err != nil {
		t.Fatal(err)
	}
	srv, err := New(pool, nopLogger{}, sleepDelay)
	if err != nil {
		t.Fatal(err)
	}
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	ts := &testServer{addr: ln.Addr().String(), pool: pool, cancel: cancel, done: make(chan error, 1)}
	go func() {
		ts.done <- srv.Serve(ctx, ln)
	}()

	t.Cleanup(func() {
		ts.stop(t)
	})
	return ts
}

func (ts *testServer) stop(t *testing.T) {
	ts.cancel()
	select {
	case err := <-ts.done:
		if err != nil {
			t.Errorf("Serve returned %v", err)
		}
	case <-time.After(time.Second):
		t.Error("Serve did not return after cancel")
	}
	ts.pool.Shutdown()
}

func doRequest(addr, raw string) (string, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return "", err
	}
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(5 * time.Second))

	if _, err := conn.Write([]byte(raw)); err != nil {
		return "", err
	}
	resp, err := io.ReadAll(conn)
	return string(resp), err
}

func request(t *testing.T, addr, raw string) string {
	t.Helper()
	resp, err := doRequest(addr, raw)
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func TestServeRoutes(t *testing.T) {
	ts := start(t, 2, 10*time.Millisecond)

	tests := []struct {
		name    string
		request string
		status  string
		body    string
	}{
		{"Root", "GET / HTTP/1.1\r\nHost: localhost\r\n\r\n", "HTTP/1.1 200 OK", "Hi from fpool-web"},
		{"Sleep", "GET /sleep HTTP/1.1\r\nHost: localhost\r\n\r\n", "HTTP/1.1 200 OK", "Hi from fpool-web"},
		{"NotFound", "GET /missing HTTP/1.1\r\n\r\n", "HTTP/1.1 404 NOT FOUND", "Oops!"},
		{"WrongMethod", "POST / HTTP/1.1\r\n\r\n", "HTTP/1.1 404 NOT FOUND", "Oops!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := request(t, ts.addr, tt.request)
			if !strings.HasPrefix(resp, tt.status+"\r\n") {
				t.Errorf("expected status %q, got %q", tt.status, resp)
			}
			if !strings.Contains(resp, "Content-Length: ") {
				t.Errorf("expected a Content-Length header, got %q", resp)
			}
			if !strings.Contains(resp, tt.body) {
				t.Errorf("expected body to contain %q, got %q", tt.body, resp)
			}
		})
	}
}

func TestServeSleepDoesNotBlockOthers(t *testing.T) {
	ts := start(t, 2, 200*time.Millisecond)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if _, err := doRequest(ts.addr, "GET /sleep HTTP/1.1\r\n\r\n"); err != nil {
			t.Error(err)
		}
	}()
	time.Sleep(20 * time.Millisecond)

	begin := time.Now()
	resp := request(t, ts.addr, "GET / HTTP/1.1\r\n\r\n")
	if elapsed := time.Since(begin); elapsed > 150*time.Millisecond {
		t.Errorf("root request waited %v behind the sleeping one", elapsed)
	}
	if !strings.HasPrefix(resp, "HTTP/1.1 200 OK") {
		t.Errorf("unexpected response %q", resp)
	}
	wg.Wait()
}

func TestServeRefusesWhenPoolClosed(t *testing.T) {
	ts := start(t, 1, 0)
	ts.pool.Shutdown()

	conn, err := net.Dial("tcp", ts.addr)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(5 * time.Second))

	resp, err := io.ReadAll(conn)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(resp), "HTTP/1.1 503 SERVICE UNAVAILABLE") {
		t.Errorf("expected 503, got %q", resp)
	}
}
