package configwatch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/jg-phare/toolcore/pkg/permission"
)

type fakeTarget struct {
	mu  sync.Mutex
	cfg *permission.Config
}

func (f *fakeTarget) SetConfig(cfg *permission.Config) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cfg = cfg
}

func (f *fakeTarget) get() *permission.Config {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cfg
}

func writeConfig(t *testing.T, path string, cfg string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(cfg), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestLoad_ValidConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "permissions.json")
	writeConfig(t, path, `{"allow":["Read(**)"],"ask":[],"deny":["Bash(rm -rf *:*)"]}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.Allow) != 1 || cfg.Allow[0] != "Read(**)" {
		t.Errorf("unexpected allow list: %v", cfg.Allow)
	}
	if len(cfg.Deny) != 1 {
		t.Errorf("unexpected deny list: %v", cfg.Deny)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/permissions.json")
	if err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "permissions.json")
	writeConfig(t, path, `{not valid json`)

	_, err := Load(path)
	if err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func TestWatcher_InitialLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "permissions.json")
	writeConfig(t, path, `{"allow":["Read(**)"]}`)

	target := &fakeTarget{}
	w := New(path, target)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	cfg := target.get()
	if cfg == nil || len(cfg.Allow) != 1 {
		t.Fatalf("expected initial config loaded, got %+v", cfg)
	}
}

func TestWatcher_ReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "permissions.json")
	writeConfig(t, path, `{"allow":["Read(**)"]}`)

	target := &fakeTarget{}
	w := New(path, target)
	w.debounce = 20 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	writeConfig(t, path, `{"allow":["Read(**)","Glob(**)"]}`)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cfg := target.get(); cfg != nil && len(cfg.Allow) == 2 {
			return
		}
		time.Sleep(25 * time.Millisecond)
	}
	t.Fatal("config was not reloaded within deadline")
}
