package browser

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/chromedp/cdproto/target"
)

func TestPickTarget(t *testing.T) {
	targets := []*target.Info{
		{TargetID: "sw", Type: "service_worker", URL: "https://www.linkedin.com/in/ada/sw.js"},
		{TargetID: "feed", Type: "page", URL: "https://www.linkedin.com/feed/"},
		{TargetID: "ada", Type: "page", URL: "https://www.linkedin.com/in/ada/"},
	}

	got, ok := pickTarget(targets, "linkedin.com/in/")
	if !ok || got.TargetID != "ada" {
		t.Fatalf("pickTarget() = %v, %v; want ada", got, ok)
	}
	got, ok = pickTarget(targets, "")
	if !ok || got.TargetID != "feed" {
		t.Fatalf("pickTarget(\"\") = %v, %v; want feed", got, ok)
	}
	if _, ok := pickTarget(targets, "example.com"); ok {
		t.Fatalf("pickTarget(example.com) matched; want none")
	}
}

func TestWaitOverlayAvailable(t *testing.T) {
	calls := 0
	probe := func(context.Context) (bool, error) {
		calls++
		return calls == 3, nil
	}
	if got := WaitOverlay(context.Background(), probe, time.Millisecond, 10); got != OverlayAvailable {
		t.Fatalf("WaitOverlay() = %v; want available", got)
	}
	if calls != 3 {
		t.Fatalf("probe calls = %d; want 3", calls)
	}
}

func TestWaitOverlayIsBounded(t *testing.T) {
	calls := 0
	probe := func(context.Context) (bool, error) {
		calls++
		return false, errors.New("not yet")
	}
	start := time.Now()
	if got := WaitOverlay(context.Background(), probe, 2*time.Millisecond, 5); got != OverlayAbsent {
		t.Fatalf("WaitOverlay() = %v; want absent", got)
	}
	if calls != 5 {
		t.Fatalf("probe calls = %d; want 5", calls)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("WaitOverlay() took %s", elapsed)
	}
}

func TestWaitOverlayCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	probe := func(context.Context) (bool, error) { return false, nil }
	if got := WaitOverlay(ctx, probe, time.Hour, 100); got != OverlayAbsent {
		t.Fatalf("WaitOverlay() = %v; want absent", got)
	}
}

func TestDetectBrowserConfiguredMissing(t *testing.T) {
	_, err := detectBrowser(filepath.Join(t.TempDir(), "nope"))
	if err == nil {
		t.Fatalf("detectBrowser() = nil; want error")
	}
}

func TestLauncherArgs(t *testing.T) {
	l := NewLauncher(LaunchConfig{CDPAddress: "127.0.0.1", CDPPort: 9333, ProfileDir: "/tmp/p", Headless: true})
	args := strings.Join(l.args(), " ")
	for _, want := range []string{"--remote-debugging-port=9333", "--user-data-dir=/tmp/p", "--headless=new", "https://www.linkedin.com/feed/"} {
		if !strings.Contains(args, want) {
			t.Fatalf("args %q missing %q", args, want)
		}
	}
}

func hostPort(t *testing.T, raw string) (string, int) {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("url.Parse() failed: %v", err)
	}
	host, portStr, err := net.SplitHostPort(u.Host)
	if err != nil {
		t.Fatalf("SplitHostPort() failed: %v", err)
	}
	port, _ := strconv.Atoi(portStr)
	return host, port
}

func TestLaunchReusesRunningBrowser(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()
	host, port := hostPort(t, srv.URL)

	l := NewLauncher(LaunchConfig{CDPAddress: host, CDPPort: port, BrowserPath: "/definitely/missing"})
	if err := l.Launch(context.Background()); err != nil {
		t.Fatalf("Launch() = %v; want nil when port is in use", err)
	}
	if l.Running() {
		t.Fatalf("Running() = true; want false for a reused browser")
	}
}

func TestWaitForCDP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/json/version" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`{"Browser":"Chrome/124"}`))
	}))
	defer srv.Close()
	host, port := hostPort(t, srv.URL)

	if err := waitForCDP(context.Background(), host, port, 5*time.Second); err != nil {
		t.Fatalf("waitForCDP() = %v; want nil", err)
	}
}
