package storage_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/boddenberg/shopboard-dashboard-go/internal/infra/storage"
	"github.com/boddenberg/shopboard-dashboard-go/internal/port"
)

var (
	_ port.SessionStorage = (*storage.FileStore)(nil)
	_ port.SessionStorage = (*storage.RedisStore)(nil)
)

func TestFileStore_RoundTripPlain(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.json")
	s := storage.NewFileStore(path, "")

	if err := s.Set(ctx, storage.KeyAuthToken, "tok-1"); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if err := s.Set(ctx, storage.KeyUserData, `{"id":1}`); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	// A fresh store over the same file sees the persisted values.
	reopened := storage.NewFileStore(path, "")
	v, ok, err := reopened.Get(ctx, storage.KeyAuthToken)
	if err != nil || !ok || v != "tok-1" {
		t.Fatalf("unexpected get v=%q ok=%v err=%v", v, ok, err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("expected 0600, got %o", info.Mode().Perm())
	}
}

func TestFileStore_RoundTripEncrypted(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.json")
	s := storage.NewFileStore(path, "correct horse")

	if err := s.Set(ctx, storage.KeyAuthToken, "very-secret-token"); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if bytes.Contains(raw, []byte("very-secret-token")) {
		t.Fatal("expected token not to appear in clear on disk")
	}

	v, ok, err := storage.NewFileStore(path, "correct horse").Get(ctx, storage.KeyAuthToken)
	if err != nil || !ok || v != "very-secret-token" {
		t.Fatalf("unexpected get v=%q ok=%v err=%v", v, ok, err)
	}

	if _, _, err := storage.NewFileStore(path, "wrong").Get(ctx, storage.KeyAuthToken); err == nil {
		t.Fatal("expected wrong secret to fail")
	}
	if _, _, err := storage.NewFileStore(path, "").Get(ctx, storage.KeyAuthToken); err == nil {
		t.Fatal("expected missing secret to fail")
	}
}

func TestFileStore_DeleteRemovesFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.json")
	s := storage.NewFileStore(path, "")

	_ = s.Set(ctx, storage.KeyAuthToken, "tok")
	_ = s.Set(ctx, storage.KeyUserData, "{}")

	if err := s.Delete(ctx, storage.KeyAuthToken); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, ok, _ := s.Get(ctx, storage.KeyAuthToken); ok {
		t.Fatal("expected token to be deleted")
	}
	if _, ok, _ := s.Get(ctx, storage.KeyUserData); !ok {
		t.Fatal("expected user data to survive a single-key delete")
	}

	if err := s.Delete(ctx, storage.KeyUserData); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected file to be removed, stat err=%v", err)
	}
}

func TestFileStore_MissingFile(t *testing.T) {
	s := storage.NewFileStore(filepath.Join(t.TempDir(), "none.json"), "")

	_, ok, err := s.Get(context.Background(), storage.KeyAuthToken)
	if err != nil || ok {
		t.Fatalf("expected clean miss, got ok=%v err=%v", ok, err)
	}
	if err := s.Delete(context.Background(), storage.KeyAuthToken); err != nil {
		t.Fatalf("expected delete on missing file to succeed, got %v", err)
	}
}

func TestFileStore_CorruptFileIsClearedOnDelete(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	s := storage.NewFileStore(path, "")

	if _, _, err := s.Get(context.Background(), storage.KeyAuthToken); err == nil {
		t.Fatal("expected decode error")
	}
	if err := s.Delete(context.Background(), storage.KeyAuthToken, storage.KeyUserData); err != nil {
		t.Fatalf("expected delete to clear corrupt file, got %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatal("expected corrupt file to be removed")
	}
}
