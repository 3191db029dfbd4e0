package source

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"thread_broadcast_bot/internal/infra/config"
)

type fileBackend struct {
	paths map[field]string
}

func newFileBackend(cfg config.SourceConfig) *fileBackend {
	return &fileBackend{paths: map[field]string{
		fieldCredential:   cfg.CredentialFile,
		fieldDestinations: cfg.DestinationFile,
		fieldMessage:      cfg.MessageFile,
	}}
}

func (b *fileBackend) read(f field) ([]byte, error) {
	raw, err := os.ReadFile(b.paths[f])
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	return raw, err
}

func (b *fileBackend) location(f field) string {
	return fmt.Sprintf("file '%s'", b.paths[f])
}

type envBackend struct {
	values map[field]string
	names  map[field]string
}

func newEnvBackend(cfg config.SourceConfig) *envBackend {
	return &envBackend{
		values: map[field]string{
			fieldCredential:   cfg.CredentialEnv,
			fieldDestinations: cfg.DestinationsEnv,
			fieldMessage:      cfg.MessageEnv,
		},
		names: map[field]string{
			fieldCredential:   "SESSION_ID",
			fieldDestinations: "THREAD_IDS",
			fieldMessage:      "MESSAGE",
		},
	}
}

func (b *envBackend) read(f field) ([]byte, error) {
	v := b.values[f]
	if v == "" {
		return nil, nil
	}
	return []byte(v), nil
}

func (b *envBackend) location(f field) string {
	return "env " + b.names[f]
}

// hybridBackend seeds each file from its environment variable when one is set,
// then reads the file. Files left over from an earlier run still work without env.
type hybridBackend struct {
	files *fileBackend
	env   *envBackend
}

func (b *hybridBackend) read(f field) ([]byte, error) {
	if v, _ := b.env.read(f); v != nil {
		path := b.files.paths[f]
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, err
			}
		}
		if err := os.WriteFile(path, v, 0o600); err != nil {
			return nil, fmt.Errorf("seeding %s: %w", path, err)
		}
	}
	return b.files.read(f)
}

func (b *hybridBackend) location(f field) string {
	return b.env.location(f) + " or " + b.files.location(f)
}
