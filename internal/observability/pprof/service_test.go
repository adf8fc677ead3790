package pprof

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"testing"
	"time"

	logx "studybot/pkg/logx"
)

func freePort(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := ln.Addr().String()
	_ = ln.Close()
	return addr
}

func waitHealthz(t *testing.T, addr, token string) *http.Response {
	t.Helper()
	url := fmt.Sprintf("http://%s/healthz", addr)
	if token != "" {
		url += "?token=" + token
	}
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := http.Get(url)
		if err == nil {
			return resp
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("server at %s never came up", addr)
	return nil
}

func TestServesHealthz(t *testing.T) {
	t.Parallel()
	addr := freePort(t)
	s := New(Config{Enabled: true, Addr: addr}, logx.Nop())
	s.Start(context.Background())
	defer s.Stop(context.Background())

	resp := waitHealthz(t, addr, "")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

func TestTokenRequired(t *testing.T) {
	t.Parallel()
	addr := freePort(t)
	s := New(Config{Enabled: true, Addr: addr, Token: "sekrit"}, logx.Nop())
	s.Start(context.Background())
	defer s.Stop(context.Background())

	ok := waitHealthz(t, addr, "sekrit")
	ok.Body.Close()
	if ok.StatusCode != http.StatusOK {
		t.Fatalf("with token: status = %d", ok.StatusCode)
	}

	resp, err := http.Get(fmt.Sprintf("http://%s/debug/pprof/", addr))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("without token: status = %d", resp.StatusCode)
	}
}

func TestRefusesInsecurePublicBind(t *testing.T) {
	t.Parallel()
	s := New(Config{Enabled: true, Addr: "0.0.0.0:0"}, logx.Nop())
	if err := s.serveOnce(context.Background()); err == nil {
		t.Fatal("expected refusal for tokenless public bind")
	}
}

func TestDisabledDoesNothing(t *testing.T) {
	t.Parallel()
	s := New(Config{Enabled: false}, logx.Nop())
	s.Start(context.Background())
	if s.sup != nil {
		t.Fatal("supervisor should not start when disabled")
	}
	s.Stop(context.Background())
}

func TestIsLoopbackAddr(t *testing.T) {
	t.Parallel()
	cases := []struct {
		addr string
		want bool
	}{
		{"127.0.0.1:6060", true},
		{"localhost:6060", true},
		{"[::1]:6060", true},
		{"0.0.0.0:6060", false},
		{":6060", false},
		{"10.0.0.5:6060", false},
		{"garbage", false},
	}
	for _, c := range cases {
		if got := isLoopbackAddr(c.addr); got != c.want {
			t.Fatalf("isLoopbackAddr(%q) = %v, want %v", c.addr, got, c.want)
		}
	}
}
