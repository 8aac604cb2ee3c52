package migrate

import (
	"context"
	"fmt"

	"github.com/angelmondragon/content-console/pkg/config"
	"github.com/angelmondragon/content-console/pkg/db"
	"github.com/angelmondragon/content-console/pkg/logger"
)

// MaybeRun applies the embedded migrations when auto-migrate is enabled, or always
// for the local sqlite ledger.
func MaybeRun(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.FeatureFlags.AutoMigrate && !cfg.FeatureFlags.UseSQLite {
		return nil
	}

	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "driver": client.Driver()})
	logg.Info(ctx, "running goose migrations (auto-run)")

	if err := RunEmbedded(ctx, sqlDB, client.Driver()); err != nil {
		return fmt.Errorf("running goose up: %w", err)
	}

	logg.Info(ctx, "goose migrations completed")
	return nil
}
