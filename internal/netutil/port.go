// Package netutil picks the address the HTTP servers bind to.
package netutil

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
)

// ErrNoAddr is returned when neither the preferred address nor any
// candidate can be bound.
var ErrNoAddr = errors.New("no available bind addresses")

// Listen binds the preferred address, falling back to the candidates in order
// when autoFallback is set. The returned listener is owned by the caller.
func Listen(preferred string, candidates []string, autoFallback bool) (net.Listener, error) {
	if preferred != "" {
		ln, err := net.Listen("tcp", preferred)
		if err == nil {
			return ln, nil
		}
		if !autoFallback {
			return nil, fmt.Errorf("preferred bind address in use: %s: %w", preferred, err)
		}
		slog.Warn("preferred bind address unavailable, trying fallbacks", "addr", preferred, "error", err)
	}

	for _, addr := range candidates {
		if addr == preferred {
			continue
		}
		ln, err := net.Listen("tcp", addr)
		if err == nil {
			return ln, nil
		}
		slog.Debug("bind candidate unavailable", "addr", addr, "error", err)
	}
	return nil, ErrNoAddr
}

// SelectBindAddr picks an available bind address based on preferred and fallback list.
func SelectBindAddr(preferred string, candidates []string, autoFallback bool) (string, error) {
	ln, err := Listen(preferred, candidates, autoFallback)
	if err != nil {
		return "", err
	}
	addr := ln.Addr().String()
	if err := ln.Close(); err != nil {
		return "", err
	}
	return addr, nil
}

// IsAddrAvailable returns true when an address can be listened on.
func IsAddrAvailable(addr string) (bool, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return false, nil
	}
	if closeErr := ln.Close(); closeErr != nil {
		return false, closeErr
	}
	return true, nil
}
