package db

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/yigit/campusnet/internal/config"
)

// Open connects the store selected by cfg.Database.Driver. The caller owns the
// returned store and must Close it.
func Open(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (Store, error) {
	switch cfg.Database.Driver {
	case config.DriverPostgres:
		return NewPostgresStore(ctx, cfg, logger)
	case config.DriverMongo:
		return NewMongoStore(ctx, cfg, logger)
	case config.DriverMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
}
