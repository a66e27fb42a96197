package main

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/iliyamo/sabha-admin/internal/asset"
	"github.com/iliyamo/sabha-admin/internal/config"
	"github.com/iliyamo/sabha-admin/internal/database"
	"github.com/iliyamo/sabha-admin/internal/logger"
	"github.com/iliyamo/sabha-admin/internal/queue"
	"github.com/iliyamo/sabha-admin/internal/repository"
	"github.com/iliyamo/sabha-admin/internal/sequence"
	"github.com/iliyamo/sabha-admin/internal/service"
	"github.com/iliyamo/sabha-admin/internal/validate"
)

// app is the process-wide wiring shared by every subcommand.
type app struct {
	cfg config.Config
	log *zap.SugaredLogger
	db  *sql.DB

	roles    *repository.RoleRepo
	areas    *repository.AreaRepo
	pincodes *repository.PincodeRepo
	users    *repository.UserRepo
	sabhas   *repository.SabhaRepo
}

func newApp(ctx context.Context) (*app, error) {
	cfg := config.Load()
	log := logger.New(cfg.LogLevel)

	db, err := database.Open(database.DSN(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if cfg.AutoMigrate {
		if err := database.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}
	return &app{
		cfg:      cfg,
		log:      log,
		db:       db,
		roles:    repository.NewRoleRepo(db),
		areas:    repository.NewAreaRepo(db),
		pincodes: repository.NewPincodeRepo(db),
		users:    repository.NewUserRepo(db),
		sabhas:   repository.NewSabhaRepo(db),
	}, nil
}

func (a *app) Close() {
	_ = a.db.Close()
	_ = a.log.Sync()
}

func (a *app) avatars() service.AvatarUploader {
	if a.cfg.Asset.UploadURL != "" {
		return asset.NewRemoteUploader(a.cfg.Asset.UploadURL, a.cfg.Asset.UploadToken)
	}
	return asset.NewLocalStore(a.cfg.Asset.Dir, a.cfg.Asset.BaseURL)
}

func (a *app) userService() *service.UserService {
	return service.NewUserService(service.UserDeps{
		Users:      a.users,
		Roles:      a.roles,
		Sabhas:     a.sabhas,
		Sequence:   sequence.NewMySQL(a.db),
		Avatars:    a.avatars(),
		Notifier:   queue.NewPublisher(a.cfg.RabbitURL, a.log),
		Required:   validate.Required,
		BcryptCost: a.cfg.BcryptCost,
		Log:        a.log,
	})
}
