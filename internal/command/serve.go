package command

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/taskhub/taskhub/internal/api"
	"github.com/taskhub/taskhub/internal/api/handler"
	"github.com/taskhub/taskhub/internal/core/ports"
	"github.com/taskhub/taskhub/internal/core/service"
	mongostore "github.com/taskhub/taskhub/internal/infrastructure/db/mongo"
	redisstore "github.com/taskhub/taskhub/internal/infrastructure/db/redis"
	"github.com/taskhub/taskhub/internal/infrastructure/db/sqlite"
	"github.com/taskhub/taskhub/internal/infrastructure/queue"
	"github.com/taskhub/taskhub/internal/pkg/config"
	"github.com/taskhub/taskhub/pkg/logger"
)

// Server timeouts.
const (
	readHeaderTimeout = 5 * time.Second
	readTimeout       = 15 * time.Second
	writeTimeout      = 30 * time.Second
	idleTimeout       = 60 * time.Second
)

func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: "Applies pending migrations and serves the API. MongoDB (task activity log)\n" +
			"and Redis (session revocation) are used when MONGO_URI and REDIS_ADDR are set.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cmd.Context())
			if err != nil {
				return err
			}
			log := logger.Init(logger.Options{
				Level:   cfg.LogLevel,
				Pretty:  cfg.IsDevelopment(),
				Service: "taskhub",
			})
			return serve(cmd.Context(), cfg, log)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config, log zerolog.Logger) (runErr error) {
	store, err := sqlite.Open(ctx, cfg.Database.Path)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			runErr = errors.Join(runErr, err)
		}
	}()
	if err := store.Migrate(); err != nil {
		return err
	}
	health := map[string]handler.Pinger{"sqlite": store}

	var activity ports.ActivityRepository = service.DiscardActivity{}
	if cfg.Mongo.URI != "" {
		mc, db, err := mongostore.Connect(ctx, mongostore.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return err
		}
		defer func() {
			dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
			defer cancel()
			if err := mc.Disconnect(dctx); err != nil {
				log.Warn().Err(err).Msg("mongo disconnect failed")
			}
		}()

		repo := mongostore.NewActivityRepository(db)
		if err := repo.EnsureIndexes(ctx); err != nil {
			return err
		}
		activity = repo
		health["mongo"] = mongostore.NewPinger(db)
		log.Info().Str("database", cfg.Mongo.Database).Msg("task activity log enabled")
	} else {
		log.Warn().Msg("MONGO_URI not set; task activity is not recorded")
	}

	// Left nil without Redis: the guard then checks signatures only.
	var revocations ports.SessionRevoker
	if cfg.Redis.Addr != "" {
		rc, err := redisstore.Connect(ctx, redisstore.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		if err != nil {
			return err
		}
		defer func() { _ = rc.Close() }()

		revocations = redisstore.NewRevocationStore(rc, cfg.Auth.TokenTTL)
		health["redis"] = redisstore.NewPinger(rc)
		log.Info().Str("addr", cfg.Redis.Addr).Msg("session revocation enabled")
	} else {
		log.Warn().Dur("token_ttl", cfg.Auth.TokenTTL).Msg("REDIS_ADDR not set; role changes apply when tokens expire")
	}

	dispatcher := queue.NewDispatcher(cfg.Activity.Workers, activity, log)
	dispatcher.Start(ctx)
	defer dispatcher.Close()

	tokens := service.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	users, projects, tasks, tags := store.Users(), store.Projects(), store.Tasks(), store.Tags()

	e := api.NewRouter(api.Dependencies{
		Logger:        log,
		Tokens:        tokens,
		Revocations:   revocations,
		Auth:          service.NewAuthService(users, tokens, cfg.Auth.ActivationCode, log).WithRevocations(revocations),
		Users:         service.NewUserService(users, tokens, revocations, log),
		Projects:      service.NewProjectService(projects, users, log),
		Tasks:         service.NewTaskService(tasks, projects, users, tags, activity, dispatcher, log),
		Tags:          service.NewTagService(tags, log),
		Health:        health,
		AuthRateLimit: cfg.Auth.RateLimit,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           e,
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}

	grp, gctx := errgroup.WithContext(ctx)
	grp.Go(func() error {
		log.Info().Str("addr", srv.Addr).Str("env", cfg.Env).Msg("starting HTTP server")
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	grp.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return grp.Wait()
}
