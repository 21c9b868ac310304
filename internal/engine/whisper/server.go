package whisper

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/exec"
	"sync"
	"time"
)

const (
	defaultReadyTimeout = 30 * time.Second
	readyPollInterval   = 1 * time.Second
)

// serverProcess is one owned whisper-server process. Every engine owns
// exactly one process and stops it on Close, so a model switch never
// leaves orphans behind.
type serverProcess struct {
	cmd      *exec.Cmd
	cancel   context.CancelFunc
	baseURL  string
	port     int
	stopOnce sync.Once
}

// startServer spawns the engine binary serving one model and waits until
// it answers on its HTTP port.
func startServer(binPath string, args []string, port int, readyTimeout time.Duration) (*serverProcess, error) {
	if info, err := os.Stat(binPath); err != nil {
		return nil, fmt.Errorf("engine binary not found: %w", err)
	} else if info.IsDir() {
		return nil, fmt.Errorf("engine binary is a directory: %s", binPath)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cmd := exec.CommandContext(ctx, binPath, args...)
	if err := cmd.Start(); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to start whisper server: %w", err)
	}

	p := &serverProcess{
		cmd:     cmd,
		cancel:  cancel,
		baseURL: fmt.Sprintf("http://127.0.0.1:%d", port),
		port:    port,
	}

	if readyTimeout == 0 {
		readyTimeout = defaultReadyTimeout
	}
	if err := p.waitForReady(ctx, readyTimeout); err != nil {
		p.Stop()
		return nil, err
	}

	slog.Info("Whisper server started", "port", port, "bin", binPath)
	return p, nil
}

// waitForReady polls the server root until it responds. whisper-server
// has no dedicated health endpoint; the root page answering is readiness.
func (p *serverProcess) waitForReady(ctx context.Context, timeout time.Duration) error {
	client := &http.Client{Timeout: 1 * time.Second}
	deadline := time.Now().Add(timeout)

	for time.Now().Before(deadline) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/", http.NoBody)
		if err != nil {
			return fmt.Errorf("failed to create readiness request: %w", err)
		}

		resp, err := client.Do(req)
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}

		time.Sleep(readyPollInterval)
	}

	return fmt.Errorf("%w: %s after %v", ErrServerNotReady, p.baseURL, timeout)
}

// Stop terminates the server process and reaps it. Safe to call more
// than once.
func (p *serverProcess) Stop() error {
	p.stopOnce.Do(func() {
		p.cancel()
		if err := p.cmd.Wait(); err != nil {
			// Killed by cancellation, which Wait reports as an error.
			slog.Debug("Whisper server exited", "port", p.port, "error", err)
		}
		slog.Info("Whisper server stopped", "port", p.port)
	})
	return nil
}

// pickFreePort asks the kernel for an unused loopback port.
func pickFreePort() (int, error) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, err
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port, nil
}
