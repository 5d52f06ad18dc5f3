package bootstrap

import (
	"context"
	"errors"
	"log/slog"

	"gorm.io/gorm"

	"radassist/internal/bootstrap/config"
	"radassist/internal/bootstrap/logging"
	"radassist/internal/errs"
	"radassist/internal/infrastructure/persistence/sqlite/schema"
)

// App is the bootstrapped application. DB is nil when the embedded store
// could not be opened and the process is running on in-memory stores.
type App struct {
	Config   config.Config
	DB       *gorm.DB
	Degraded bool
}

// InitSchema brings the embedded store to its target shape. The store heals
// its schema lazily on every access as well; this exists so init-db can do
// it eagerly and report the outcome.
func (a *App) InitSchema(ctx context.Context) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return errs.Wrap(err, "check context")
	}

	logCtx := logging.WithAttrs(ctx, slog.String("component", "bootstrap.app"))

	if a.DB == nil {
		logging.Warn(logCtx, "storage unavailable, nothing to migrate")
		return nil
	}

	logging.Info(logCtx, "start schema migration")
	if err := schema.NewManager(a.DB).Ensure(ctx); err != nil {
		return errs.Wrap(err, "ensure schema")
	}
	logging.Info(logCtx, "schema migration completed")
	return nil
}

func (a *App) Close(ctx context.Context) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if a.DB == nil {
		return nil
	}

	sqlDB, err := a.DB.DB()
	if err != nil {
		return errs.Wrap(err, "get sql db")
	}
	if err := sqlDB.Close(); err != nil {
		return errs.Wrap(err, "close sql db")
	}

	logging.Info(logging.WithAttrs(ctx, slog.String("component", "bootstrap.app")), "database connection closed")
	return nil
}
