package auth

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/CrestNiraj12/molterm/domain"
)

func TestFileKeyStore_SaveAndReadKey(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	s := NewFileKeyStore(dir)

	if _, err := s.APIKey(); !errors.Is(err, domain.ErrNoAPIKey) {
		t.Fatalf("expected ErrNoAPIKey before login, got %v", err)
	}
	if s.HasKey() {
		t.Fatalf("empty store must not report a key")
	}

	if err := s.SaveAPIKey("  moltbook_sk_abcdefghijkl \n"); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	got, err := s.APIKey()
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if got != "moltbook_sk_abcdefghijkl" {
		t.Fatalf("unexpected key: %q", got)
	}
	if s.MaskedKey() != "moltbook_sk_...ijkl" {
		t.Fatalf("unexpected masked key: %q", s.MaskedKey())
	}

	info, err := os.Stat(filepath.Join(dir, apiKeyFile))
	if err != nil {
		t.Fatalf("stat failed: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("key file must be private, got %v", info.Mode().Perm())
	}
}

func TestFileKeyStore_RejectsBlankKey(t *testing.T) {
	s := NewFileKeyStore(t.TempDir())
	if err := s.SaveAPIKey(" \t"); !errors.Is(err, domain.ErrEmptyAPIKey) {
		t.Fatalf("expected ErrEmptyAPIKey, got %v", err)
	}

	if err := os.WriteFile(filepath.Join(s.Dir(), apiKeyFile), []byte(" \n"), 0o600); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if _, err := s.APIKey(); !errors.Is(err, domain.ErrNoAPIKey) {
		t.Fatalf("blank key file must read as no key, got %v", err)
	}
}

func TestFileKeyStore_AgentCacheAndClear(t *testing.T) {
	s := NewFileKeyStore(t.TempDir())
	if _, ok, err := s.Agent(); ok || err != nil {
		t.Fatalf("expected no cached agent, ok=%v err=%v", ok, err)
	}

	want := domain.Agent{
		Name:      "clawd",
		Karma:     12,
		IsClaimed: true,
		CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Owner:     domain.Owner{XHandle: "owner", XName: "Owner Name"},
	}
	if err := s.SaveAPIKey("k"); err != nil {
		t.Fatalf("save key failed: %v", err)
	}
	if err := s.SaveAgent(want); err != nil {
		t.Fatalf("save agent failed: %v", err)
	}
	got, ok, err := s.Agent()
	if err != nil || !ok {
		t.Fatalf("load agent failed: ok=%v err=%v", ok, err)
	}
	if got != want {
		t.Fatalf("unexpected agent got=%#v want=%#v", got, want)
	}

	if err := s.Clear(); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	if s.HasKey() {
		t.Fatalf("key must be gone after clear")
	}
	if _, ok, _ := s.Agent(); ok {
		t.Fatalf("cached agent must be gone after clear")
	}
	if err := s.Clear(); err != nil {
		t.Fatalf("clearing twice must be fine: %v", err)
	}
}

func TestStaticKey(t *testing.T) {
	if got, err := StaticKey(" abc ").APIKey(); err != nil || got != "abc" {
		t.Fatalf("unexpected static key: %q %v", got, err)
	}
	if _, err := StaticKey("").APIKey(); !errors.Is(err, domain.ErrNoAPIKey) {
		t.Fatalf("expected ErrNoAPIKey, got %v", err)
	}
}

func TestMemoryKeyStore(t *testing.T) {
	s := NewMemoryKeyStore("")
	if _, err := s.APIKey(); !errors.Is(err, domain.ErrNoAPIKey) {
		t.Fatalf("expected ErrNoAPIKey, got %v", err)
	}
	if err := s.SaveAPIKey("  "); !errors.Is(err, domain.ErrEmptyAPIKey) {
		t.Fatalf("expected ErrEmptyAPIKey, got %v", err)
	}
	if err := s.SaveAPIKey("k1"); err != nil {
		t.Fatalf("save: %v", err)
	}
	_ = s.SaveAgent(domain.Agent{Name: "clawd"})
	if a, ok, _ := s.Agent(); !ok || a.Name != "clawd" {
		t.Fatalf("unexpected agent %+v %v", a, ok)
	}

	// A different key invalidates the cached agent.
	_ = s.SaveAPIKey("k2")
	if _, ok, _ := s.Agent(); ok {
		t.Fatalf("agent must be dropped when the key changes")
	}

	_ = s.Clear()
	if _, err := s.APIKey(); !errors.Is(err, domain.ErrNoAPIKey) {
		t.Fatalf("expected key cleared, got %v", err)
	}
}
