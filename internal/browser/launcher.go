package browser

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/exec"
	"runtime"
	"strconv"
	"syscall"
	"time"
)

// LaunchConfig describes the Chromium process started for a login or upload session.
type LaunchConfig struct {
	CDPAddress  string
	CDPPort     int
	StartURL    string
	ProfileDir  string
	BrowserPath string
	Headless    bool
	WindowSize  string
	ReadyWithin time.Duration
}

// Launcher starts Chromium when nothing is listening on the CDP port yet.
type Launcher struct {
	cfg     LaunchConfig
	cmd     *exec.Cmd
	running bool
}

func NewLauncher(cfg LaunchConfig) *Launcher {
	if cfg.WindowSize == "" {
		cfg.WindowSize = "1440,1000"
	}
	if cfg.StartURL == "" {
		cfg.StartURL = "https://www.linkedin.com/feed/"
	}
	if cfg.ReadyWithin <= 0 {
		cfg.ReadyWithin = 15 * time.Second
	}
	return &Launcher{cfg: cfg}
}

// detectBrowser returns the configured binary, or the first Chromium-family
// binary found on PATH.
func detectBrowser(configured string) (string, error) {
	if configured != "" {
		if _, err := os.Stat(configured); err != nil {
			return "", fmt.Errorf("browser binary %s: %w", configured, err)
		}
		return configured, nil
	}
	for _, name := range []string{"chromium-browser", "chromium", "google-chrome", "google-chrome-stable"} {
		if path, err := exec.LookPath(name); err == nil {
			return path, nil
		}
	}
	if runtime.GOOS == "darwin" {
		macPath := "/Applications/Google Chrome.app/Contents/MacOS/Google Chrome"
		if _, err := os.Stat(macPath); err == nil {
			return macPath, nil
		}
	}
	return "", fmt.Errorf("no chromium browser found on PATH")
}

func cdpListening(address string, port int) bool {
	conn, err := net.DialTimeout("tcp", net.JoinHostPort(address, strconv.Itoa(port)), time.Second)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}

func (l *Launcher) args() []string {
	args := []string{
		"--remote-debugging-port=" + strconv.Itoa(l.cfg.CDPPort),
		"--remote-debugging-address=" + l.cfg.CDPAddress,
		"--user-data-dir=" + l.cfg.ProfileDir,
		"--no-first-run",
		"--no-default-browser-check",
		"--disable-dev-shm-usage",
		"--window-size=" + l.cfg.WindowSize,
	}
	if l.cfg.Headless {
		args = append(args, "--headless=new")
	}
	return append(args, l.cfg.StartURL)
}

// Launch starts the browser, keeping the user's LinkedIn login in ProfileDir.
func (l *Launcher) Launch(ctx context.Context) error {
	if cdpListening(l.cfg.CDPAddress, l.cfg.CDPPort) {
		slog.Info("browser already running, reusing it", "address", l.cfg.CDPAddress, "port", l.cfg.CDPPort)
		return nil
	}

	browserPath, err := detectBrowser(l.cfg.BrowserPath)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(l.cfg.ProfileDir, 0o700); err != nil {
		return fmt.Errorf("create profile dir: %w", err)
	}

	l.cmd = exec.Command(browserPath, l.args()...)
	l.cmd.Stdout = os.Stdout
	l.cmd.Stderr = os.Stderr
	if err := l.cmd.Start(); err != nil {
		return fmt.Errorf("start browser: %w", err)
	}
	l.running = true
	slog.Info("browser process started", "path", browserPath, "pid", l.cmd.Process.Pid, "start_url", l.cfg.StartURL)

	if err := waitForCDP(ctx, l.cfg.CDPAddress, l.cfg.CDPPort, l.cfg.ReadyWithin); err != nil {
		l.Stop()
		return fmt.Errorf("waiting for CDP: %w", err)
	}
	slog.Info("CDP endpoint ready", "address", l.cfg.CDPAddress, "port", l.cfg.CDPPort)
	return nil
}

// waitForCDP polls /json/version until it answers 200.
func waitForCDP(ctx context.Context, address string, port int, within time.Duration) error {
	url := fmt.Sprintf("http://%s/json/version", net.JoinHostPort(address, strconv.Itoa(port)))
	deadline := time.After(within)
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	client := &http.Client{Timeout: time.Second}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline:
			return fmt.Errorf("CDP did not become ready within %s at %s", within, url)
		case <-ticker.C:
			resp, err := client.Get(url)
			if err != nil {
				continue
			}
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
	}
}

// Running reports whether this launcher spawned the browser.
func (l *Launcher) Running() bool {
	return l.running
}

// Stop sends SIGTERM and escalates to SIGKILL after five seconds.
func (l *Launcher) Stop() {
	if l.cmd == nil || l.cmd.Process == nil {
		return
	}
	_ = l.cmd.Process.Signal(syscall.SIGTERM)

	done := make(chan struct{})
	go func() {
		_ = l.cmd.Wait()
		close(done)
	}()

	select {
	case <-done:
		slog.Info("browser stopped")
	case <-time.After(5 * time.Second):
		slog.Warn("browser did not exit, killing it", "pid", l.cmd.Process.Pid)
		_ = l.cmd.Process.Kill()
		<-done
	}
	l.running = false
}
