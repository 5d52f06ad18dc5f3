package bootstrap

import (
	"context"
	"errors"
	"log/slog"

	"go.uber.org/fx"
	"gorm.io/gorm"

	"radassist/internal/bootstrap/config"
	"radassist/internal/bootstrap/database"
	"radassist/internal/bootstrap/logging"
	"radassist/internal/errs"
	cacheinfra "radassist/internal/infrastructure/cache"
	"radassist/internal/infrastructure/persistence/memory"
	sqliterepo "radassist/internal/infrastructure/persistence/sqlite/repository"
	"radassist/internal/infrastructure/persistence/sqlite/schema"
	sqliteuow "radassist/internal/infrastructure/persistence/sqlite/uow"
	"radassist/internal/ports"
	"radassist/internal/usecase/calculator"
	"radassist/internal/usecase/export"
	"radassist/internal/usecase/registry"
)

var Module = fx.Options(
	fx.Provide(provideConfig),
	fx.Provide(provideStorage),
	fx.Provide(provideApp),
	fx.Provide(
		func(s *storage) ports.ReferenceStore { return s.refs },
		func(s *storage) ports.AuditLog { return s.audit },
		func(s *storage) ports.CalculationStore { return s.calcs },
		func(s *storage) ports.KV { return s.kv },
		func(s *storage) ports.UnitOfWork { return s.uow },
	),
	fx.Provide(registry.NewService),
	fx.Provide(calculator.NewService),
	fx.Provide(export.NewService),
)

type configParams struct {
	fx.In

	Ctx        context.Context
	ConfigFile string `name:"configFile"`
}

func provideConfig(p configParams) (config.Config, error) {
	ctx := logging.WithAttrs(p.Ctx, slog.String("component", "bootstrap.fx"))
	return config.Load(ctx, p.ConfigFile)
}

// storage bundles the persistence ports so the sqlite-or-memory decision is
// made exactly once at bootstrap. A process never mixes backends.
type storage struct {
	db       *gorm.DB
	refs     ports.ReferenceStore
	audit    ports.AuditLog
	calcs    ports.CalculationStore
	kv       ports.KV
	uow      ports.UnitOfWork
	degraded bool
}

func provideStorage(lc fx.Lifecycle, ctx context.Context, cfg config.Config) (*storage, error) {
	logCtx := logging.WithAttrs(ctx, slog.String("component", "bootstrap.fx"))

	db, err := database.Open(logCtx, cfg.Database)
	if err != nil {
		if !errors.Is(err, database.ErrStorageUnavailable) {
			return nil, err
		}

		// Degraded mode: everything works, nothing survives the process.
		logging.Warn(logCtx, "storage unavailable, running on in-memory stores",
			slog.Any("err", errs.Loggable(err)),
		)
		mem := memory.NewStore()
		return &storage{
			refs:     mem.References(),
			audit:    mem.Audit(),
			calcs:    mem.Calculations(),
			kv:       mem.KV(),
			uow:      mem.UnitOfWork(),
			degraded: true,
		}, nil
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	})

	mgr := schema.NewManager(db)
	return &storage{
		db:    db,
		refs:  sqliterepo.NewReferenceStore(db, mgr),
		audit: sqliterepo.NewAuditLog(db, mgr),
		calcs: sqliterepo.NewCalculationStore(db, mgr),
		kv:    cacheinfra.NewSQLiteKV(db, mgr),
		uow:   sqliteuow.NewUnitOfWork(db),
	}, nil
}

func provideApp(cfg config.Config, s *storage) *App {
	return &App{
		Config:   cfg,
		DB:       s.db,
		Degraded: s.degraded,
	}
}
