package memory

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/scrypster/insight/internal/config"
	"github.com/scrypster/insight/internal/storage"
	"github.com/scrypster/insight/internal/storage/chromem"
	"github.com/scrypster/insight/internal/storage/postgres"
	"github.com/scrypster/insight/internal/storage/sqlite"
)

// Locations of the embedded engines under the data path.
const (
	ChromemDir   = "chroma_db"
	SQLiteFile   = "insight.db"
	dataDirPerms = 0o750
)

// OpenIndex opens the vector index selected by cfg.Engine.
func OpenIndex(ctx context.Context, cfg config.StorageConfig, logger *zap.Logger) (storage.VectorIndex, error) {
	switch cfg.Engine {
	case "chromem", "":
		path := ""
		if cfg.DataPath != "" {
			if err := os.MkdirAll(cfg.DataPath, dataDirPerms); err != nil {
				return nil, fmt.Errorf("create data path: %w", err)
			}
			path = filepath.Join(cfg.DataPath, ChromemDir)
		}
		idx, err := chromem.Open(path, logger)
		if err != nil {
			return nil, err
		}
		return idx, nil

	case "sqlite":
		dsn := ":memory:"
		if cfg.DataPath != "" {
			if err := os.MkdirAll(cfg.DataPath, dataDirPerms); err != nil {
				return nil, fmt.Errorf("create data path: %w", err)
			}
			dsn = filepath.Join(cfg.DataPath, SQLiteFile)
		}
		idx, err := sqlite.Open(dsn, logger)
		if err != nil {
			return nil, err
		}
		return idx, nil

	case "postgres":
		if cfg.PostgresDSN == "" {
			return nil, fmt.Errorf("postgres engine requires a DSN")
		}
		idx, err := postgres.Open(ctx, cfg.PostgresDSN, logger)
		if err != nil {
			return nil, err
		}
		return idx, nil

	default:
		return nil, fmt.Errorf("unsupported storage engine: %q", cfg.Engine)
	}
}
