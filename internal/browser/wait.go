package browser

import (
	"context"
	"log/slog"
	"time"
)

// OverlayState is the definite outcome of waiting for the contact-info panel.
type OverlayState int

const (
	OverlayAbsent OverlayState = iota
	OverlayAvailable
)

func (s OverlayState) String() string {
	if s == OverlayAvailable {
		return "available"
	}
	return "absent"
}

// Probe checks once whether the overlay is rendered.
type Probe func(ctx context.Context) (bool, error)

// WaitOverlay polls probe every interval, at most attempts times. It never
// blocks longer than attempts*interval plus the probe time, and returns
// OverlayAbsent on exhaustion or cancellation. Probe errors count as misses.
func WaitOverlay(ctx context.Context, probe Probe, interval time.Duration, attempts int) OverlayState {
	if attempts < 1 {
		attempts = 1
	}
	ticker := time.NewTicker(max(interval, time.Millisecond))
	defer ticker.Stop()

	for i := 1; ; i++ {
		ok, err := probe(ctx)
		if err != nil {
			slog.Debug("overlay probe failed", "attempt", i, "error", err)
		}
		if ok {
			slog.Debug("overlay available", "attempt", i)
			return OverlayAvailable
		}
		if i >= attempts {
			slog.Info("overlay did not appear, continuing with main page data", "attempts", attempts)
			return OverlayAbsent
		}
		select {
		case <-ctx.Done():
			return OverlayAbsent
		case <-ticker.C:
		}
	}
}
