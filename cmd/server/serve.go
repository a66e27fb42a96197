package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/iliyamo/sabha-admin/internal/config"
	"github.com/iliyamo/sabha-admin/internal/handler"
	"github.com/iliyamo/sabha-admin/internal/mail"
	"github.com/iliyamo/sabha-admin/internal/middleware"
	"github.com/iliyamo/sabha-admin/internal/queue"
	"github.com/iliyamo/sabha-admin/internal/router"
	"github.com/iliyamo/sabha-admin/internal/service"
	"github.com/iliyamo/sabha-admin/internal/validate"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API and the registration mail consumer",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()
	cfg, log := a.cfg, a.log

	rdb := config.NewRedisClient(config.LoadRedisConfig())
	if rdb == nil {
		log.Warnw("redis unreachable, rate limiting disabled")
	} else {
		defer rdb.Close()
	}
	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, log)

	sender, err := mail.New(cfg.Mail, log)
	if err != nil {
		return err
	}
	consumer := queue.NewMailConsumer(cfg.RabbitURL, sender, log)
	go func() {
		if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Errorw("mail consumer stopped", "error", err)
		}
	}()

	auth := service.NewAuthService(a.users, a.roles, service.TokenConfig{
		AccessSecret:  cfg.AccessSecret,
		RefreshSecret: cfg.RefreshSecret,
		AccessTTL:     cfg.AccessTTL,
		RefreshTTL:    cfg.RefreshTTL,
		BcryptCost:    cfg.BcryptCost,
	}, validate.Required)

	h := router.Handlers{
		Auth:  handler.NewAuthHandler(auth, handler.CookieOptions{Secure: cfg.CookieSecure, SameSite: cfg.CookieSameSite}, log),
		Role:  handler.NewRoleHandler(service.NewRoleService(a.roles, a.users, validate.Required), log),
		Area:  handler.NewAreaHandler(service.NewAreaService(a.areas, a.pincodes, a.sabhas, validate.Required), log),
		Sabha: handler.NewSabhaHandler(service.NewSabhaService(a.sabhas, a.areas, a.users, validate.Required), log),
		User:  handler.NewUserHandler(a.userService(), log),
		DB:    a.db,
	}
	opts := router.Options{
		CORSOrigin:  cfg.CORSOrigin,
		RequireAuth: middleware.Auth(auth, log),
		RateLimit:   limiter,
	}
	if cfg.Asset.UploadURL == "" {
		opts.AssetDir, opts.AssetURL = cfg.Asset.Dir, cfg.Asset.BaseURL
	}
	e := router.New(h, opts, log)

	errCh := make(chan error, 1)
	go func() {
		log.Infow("listening", "addr", ":"+cfg.Port, "env", cfg.Env)
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	log.Infow("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(sctx)
}
