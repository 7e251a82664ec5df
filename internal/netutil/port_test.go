package netutil

import (
	"errors"
	"net"
	"testing"
)

func freeAddr(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	_ = ln.Close()
	return addr
}

func TestSelectBindAddrPreferredFree(t *testing.T) {
	addr := freeAddr(t)

	got, err := SelectBindAddr(addr, nil, false)
	if err != nil {
		t.Fatalf("SelectBindAddr() error = %v", err)
	}
	if got != addr {
		t.Fatalf("SelectBindAddr() = %q, want %q", got, addr)
	}
}

func TestSelectBindAddrFallback(t *testing.T) {
	busy, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen busy: %v", err)
	}
	defer func() { _ = busy.Close() }()

	free := freeAddr(t)

	got, err := SelectBindAddr(busy.Addr().String(), []string{busy.Addr().String(), free}, true)
	if err != nil {
		t.Fatalf("SelectBindAddr() error = %v", err)
	}
	if got != free {
		t.Fatalf("SelectBindAddr() = %q, want %q", got, free)
	}
}

func TestListenNoFallback(t *testing.T) {
	busy, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen busy: %v", err)
	}
	defer func() { _ = busy.Close() }()

	if _, err := Listen(busy.Addr().String(), []string{freeAddr(t)}, false); err == nil {
		t.Fatalf("Listen() error = nil; want preferred-in-use error")
	}
}

func TestListenExhausted(t *testing.T) {
	busy, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen busy: %v", err)
	}
	defer func() { _ = busy.Close() }()

	_, err = Listen("", []string{busy.Addr().String()}, true)
	if !errors.Is(err, ErrNoAddr) {
		t.Fatalf("Listen() error = %v; want ErrNoAddr", err)
	}
}

func TestIsAddrAvailable(t *testing.T) {
	busy, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen busy: %v", err)
	}
	defer func() { _ = busy.Close() }()

	ok, err := IsAddrAvailable(busy.Addr().String())
	if err != nil || ok {
		t.Fatalf("IsAddrAvailable(busy) = %v, %v; want false, nil", ok, err)
	}
	ok, err = IsAddrAvailable(freeAddr(t))
	if err != nil || !ok {
		t.Fatalf("IsAddrAvailable(free) = %v, %v; want true, nil", ok, err)
	}
}
