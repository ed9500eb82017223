package permission

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/gofrs/flock"
)

const persistLockTimeout = 5 * time.Second

// ErrPersistLockTimeout is returned when the config file's lock could not
// be acquired within persistLockTimeout.
var ErrPersistLockTimeout = fmt.Errorf("permission: timed out acquiring config file lock")

// PersistCallback is the S4 "remember for Persistent scope" hook: given
// an abstracted rule pattern, make it durable across process restarts.
type PersistCallback func(toolName, pattern string) error

// FileAllowListPersister appends accepted Persistent-scope patterns to the
// Allow list of a permission config file on disk, using a file lock so it
// is safe against concurrent external editors of the same file.
type FileAllowListPersister struct {
	path string
}

// NewFileAllowListPersister returns a persister that appends to the
// config file at path.
func NewFileAllowListPersister(path string) *FileAllowListPersister {
	return &FileAllowListPersister{path: path}
}

// Persist appends pattern to the Allow list, attributed to toolName only
// insofar as pattern already encodes the tool name (per AbstractPermissionRule
// convention, e.g. "Bash(npm run *:*)"). It is a no-op if pattern is
// already present.
func (p *FileAllowListPersister) Persist(toolName, pattern string) error {
	fl := flock.New(p.path + ".lock")
	ctx, cancel := context.WithTimeout(context.Background(), persistLockTimeout)
	defer cancel()

	locked, err := fl.TryLockContext(ctx, 50*time.Millisecond)
	if err != nil || !locked {
		return ErrPersistLockTimeout
	}
	defer fl.Unlock()

	cfg, err := p.readLocked()
	if err != nil {
		return err
	}

	for _, existing := range cfg.Allow {
		if existing == pattern {
			return nil
		}
	}
	cfg.Allow = append(cfg.Allow, pattern)

	return p.writeLocked(cfg)
}

func (p *FileAllowListPersister) readLocked() (*Config, error) {
	data, err := os.ReadFile(p.path)
	if os.IsNotExist(err) {
		return &Config{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("permission: reading config %s: %w", p.path, err)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("permission: parsing config %s: %w", p.path, err)
	}
	return &cfg, nil
}

func (p *FileAllowListPersister) writeLocked(cfg *Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("permission: marshaling config: %w", err)
	}
	if err := os.WriteFile(p.path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("permission: writing config %s: %w", p.path, err)
	}
	return nil
}
