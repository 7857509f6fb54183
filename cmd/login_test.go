package cmd

import (
	"context"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/gagyelog/gagyelog/internal/config"
)

func TestServeOAuthCallback(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	type result struct {
		code string
		err  error
	}
	done := make(chan result, 1)
	go func() {
		code, err := serveOAuthCallback(ctx, ln, "/oauth/kakao/callback", "s1")
		done <- result{code, err}
	}()

	base := "http://" + ln.Addr().String() + "/oauth/kakao/callback"

	resp, err := http.Get(base + "?state=wrong&code=abc")
	if err != nil {
		t.Fatalf("GET wrong state: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("wrong state status = %d, want 400", resp.StatusCode)
	}

	resp, err = http.Get(base + "?state=s1&code=abc")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}

	r := <-done
	if r.err != nil || r.code != "abc" {
		t.Errorf("serveOAuthCallback = %q, %v; want abc", r.code, r.err)
	}
}

func TestServeOAuthCallbackProviderError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		_, err := serveOAuthCallback(ctx, ln, "/cb", "s1")
		done <- err
	}()

	resp, err := http.Get("http://" + ln.Addr().String() + "/cb?state=s1&error=access_denied")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	_ = resp.Body.Close()

	if err := <-done; err == nil {
		t.Error("expected provider error")
	}
}

func TestServeOAuthCallbackTimeout(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if _, err := serveOAuthCallback(ctx, ln, "/cb", "s1"); err == nil {
		t.Error("expected timeout error")
	}
}

func TestCallbackAddr(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.OAuth.CallbackPort = 9123
	if got := callbackAddr(cfg); got != "127.0.0.1:9123" {
		t.Errorf("callbackAddr = %q", got)
	}
	cfg.OAuth.CallbackPort = 0
	want := callbackAddr(config.DefaultConfig())
	if got := callbackAddr(cfg); got != want {
		t.Errorf("callbackAddr(zero port) = %q, want default %q", got, want)
	}
}

func TestRequiredField(t *testing.T) {
	check := requiredField("email")
	if err := check("  "); err == nil {
		t.Error("blank should fail")
	}
	if err := check("a@b.c"); err != nil {
		t.Errorf("non-blank: %v", err)
	}
}

func TestMaskToken(t *testing.T) {
	tests := map[string]string{
		"":                              "****",
		"short":                         "****",
		"eyJhbGciOiJIUzI1NiJ9.abcd1234": "eyJhbG...1234",
	}
	for in, want := range tests {
		if got := maskToken(in); got != want {
			t.Errorf("maskToken(%q) = %q, want %q", in, got, want)
		}
	}
}
