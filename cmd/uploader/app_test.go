package main

import (
	"testing"

	"github.com/jito-dev/LinkedIn2Odoo-Contact-Uploader/internal/gateway"
	"github.com/jito-dev/LinkedIn2Odoo-Contact-Uploader/internal/session"
)

func TestDefaultBackendFillsMissingURL(t *testing.T) {
	store, err := session.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	if err := defaultBackend(store, "http://127.0.0.1:8000"); err != nil {
		t.Fatalf("defaultBackend() error = %v", err)
	}
	got, err := store.Credentials()
	if err != nil {
		t.Fatalf("Credentials() error = %v", err)
	}
	if got.BackendURL != "http://127.0.0.1:8000" {
		t.Fatalf("BackendURL = %q; want configured url", got.BackendURL)
	}
}

func TestDefaultBackendKeepsSavedURL(t *testing.T) {
	store, err := session.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	if err := store.SaveCredentials(gateway.Credentials{BackendURL: "https://gw.example.com"}); err != nil {
		t.Fatalf("SaveCredentials() error = %v", err)
	}
	if err := defaultBackend(store, "http://127.0.0.1:8000"); err != nil {
		t.Fatalf("defaultBackend() error = %v", err)
	}
	got, _ := store.Credentials()
	if got.BackendURL != "https://gw.example.com" {
		t.Fatalf("BackendURL = %q; want saved url kept", got.BackendURL)
	}
}

func TestCommandTree(t *testing.T) {
	for _, path := range [][]string{
		{"serve"}, {"login"}, {"extract"}, {"upload"}, {"show"}, {"edit"},
		{"campaign", "list"}, {"campaign", "activate"},
		{"credentials", "set"}, {"credentials", "test"},
	} {
		cmd, _, err := rootCmd.Find(path)
		if err != nil || cmd == rootCmd {
			t.Fatalf("command %v not registered: %v", path, err)
		}
	}
}
