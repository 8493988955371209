package dataaccess

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/discosoft/talep/pkg/entities"
	"github.com/discosoft/talep/pkg/logging"
)

const fileDalName = "file_config_dal"

// fileConfigDal persists the guild configuration as an indented JSON document
// on disk, matching the layout of the historical config.json.
type fileConfigDal struct {
	// l is the logger.
	l *slog.Logger

	// path is the location of the JSON document.
	path string
}

// NewFileConfigDal creates a configuration data access layer backed by a JSON
// file at the given path.
func NewFileConfigDal(path string) ConfigDal {
	return &fileConfigDal{
		l:    slog.Default().With(slog.String(logging.KeyDal, fileDalName)),
		path: path,
	}
}

func (d *fileConfigDal) Load(ctx context.Context) (*entities.GuildConfig, error) {
	raw, err := os.ReadFile(d.path)
	if errors.Is(err, os.ErrNotExist) {
		d.l.Info("No configuration document found, creating default", slog.String("path", d.path))

		cfg := entities.NewGuildConfig()
		if err := d.Save(ctx, cfg); err != nil {
			return nil, fmt.Errorf("error saving default configuration: %w", err)
		}
		return cfg, nil
	} else if err != nil {
		return nil, fmt.Errorf("error reading configuration: %w", err)
	}

	cfg := new(entities.GuildConfig)
	if err := json.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("malformed configuration document: %w", err)
	}

	cfg.Migrate()

	// Rewrite the migrated document so that a subsequent load starts from
	// the current schema.
	if err := d.Save(ctx, cfg); err != nil {
		return nil, fmt.Errorf("error saving migrated configuration: %w", err)
	}
	return cfg, nil
}

func (d *fileConfigDal) Save(_ context.Context, cfg *entities.GuildConfig) error {
	raw, err := json.MarshalIndent(cfg, "", "    ")
	if err != nil {
		return fmt.Errorf("error encoding configuration: %w", err)
	}

	// Write to a temp file and rename it over the document so that readers
	// never observe a partial write.
	tmp, err := os.CreateTemp(filepath.Dir(d.path), ".config-*.json")
	if err != nil {
		return fmt.Errorf("error creating temp file: %w", err)
	}

	if _, err := tmp.Write(append(raw, '\n')); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("error writing configuration: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("error closing temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), d.path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("error replacing configuration: %w", err)
	}
	return nil
}
