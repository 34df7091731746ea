// @title                       AdoptaFácil API
// @version                     1.0
// @description                 Pet adoption listings, donations and adoption requests.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	_ "github.com/adoptafacil/adoption-api/docs"
	"github.com/adoptafacil/adoption-api/internal/api"
	"github.com/adoptafacil/adoption-api/internal/core/ports"
	"github.com/adoptafacil/adoption-api/internal/core/service"
	"github.com/adoptafacil/adoption-api/internal/infrastructure/config"
	mongodb "github.com/adoptafacil/adoption-api/internal/infrastructure/db/mongo"
	"github.com/adoptafacil/adoption-api/internal/infrastructure/db/postgres"
	redisdb "github.com/adoptafacil/adoption-api/internal/infrastructure/db/redis"
	"github.com/adoptafacil/adoption-api/internal/infrastructure/http/handlers"
	"github.com/adoptafacil/adoption-api/internal/infrastructure/queue"
	"github.com/adoptafacil/adoption-api/internal/infrastructure/seed"
	"github.com/adoptafacil/adoption-api/internal/infrastructure/storage"
	"github.com/adoptafacil/adoption-api/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := run(); err != nil {
		// The singleton may not exist yet when configuration fails.
		fallback := zerolog.New(os.Stderr).With().Timestamp().Logger()
		fallback.Fatal().Err(err).Msg("server stopped")
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "adoption-api",
	})

	// --- Relational store ---
	db, err := postgres.Open(ctx, postgres.Config{
		DSN:          cfg.Postgres.URL,
		MaxOpenConns: cfg.Postgres.MaxOpenConns,
	})
	if err != nil {
		return err
	}
	defer db.Close()
	if err := postgres.Migrate(ctx, db); err != nil {
		return err
	}
	log.Info().Msg("postgres ready")

	checks := []handlers.DependencyCheck{handlers.PostgresCheck(db)}

	// --- Optional backing services ---
	var keys ports.IdempotencyStore
	if cfg.Redis.Addr != "" {
		rdb, err := redisdb.Connect(ctx, redisdb.Config{
			Addr:     cfg.Redis.Addr,
			Username: cfg.Redis.Username,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			TLS:      cfg.Redis.TLS,
			PoolSize: cfg.Redis.PoolSize,
		})
		if err != nil {
			return err
		}
		defer rdb.Close()
		keys = redisdb.NewIdempotencyStore(rdb)
		checks = append(checks, handlers.RedisCheck(rdb))
		log.Info().Str("addr", cfg.Redis.Addr).Msg("redis idempotency store enabled")
	}

	var audit ports.SecurityAudit = ports.NopAudit{}
	if cfg.Mongo.URI != "" {
		client, mdb, err := mongodb.Connect(ctx, mongodb.Config{
			URI:         cfg.Mongo.URI,
			Database:    cfg.Mongo.Database,
			MaxPoolSize: cfg.Mongo.MaxPoolSize,
		})
		if err != nil {
			return err
		}
		defer func() {
			dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = client.Disconnect(dctx)
		}()
		auditRepo := mongodb.NewAuditRepository(mdb)
		if err := auditRepo.EnsureIndexes(ctx); err != nil {
			log.Warn().Err(err).Msg("could not create audit indexes")
		}
		dispatcher := queue.NewAuditDispatcher(cfg.Mongo.AuditWorkers, auditRepo, log)
		dispatcher.Start()
		defer func() {
			dctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := dispatcher.Close(dctx); err != nil {
				log.Warn().Err(err).Msg("security events dropped on shutdown")
			}
		}()
		audit = dispatcher
		checks = append(checks, handlers.MongoCheck(mdb))
		log.Info().Str("database", cfg.Mongo.Database).Msg("mongo security audit enabled")
	}

	images, uploadDir, err := openImageStore(ctx, cfg)
	if err != nil {
		return err
	}

	// --- Repositories ---
	personRepo := postgres.NewPersonRepository(db)
	roleRepo := postgres.NewRoleRepository(db)
	petRepo := postgres.NewPetRepository(db)
	donationRepo := postgres.NewDonationRepository(db)
	adoptionRepo := postgres.NewAdoptionRepository(db)

	// --- Services ---
	hasher := service.NewBcryptHasher(cfg.Auth.BcryptCost)
	tokens := service.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL())
	personService := service.NewPersonService(personRepo, roleRepo, hasher, log)

	if err := bootstrap(ctx, cfg, roleRepo, personService, log); err != nil {
		return err
	}

	router := api.NewRouter(api.Services{
		Auth:       service.NewAuthService(personRepo, roleRepo, hasher, tokens, audit, log),
		Pets:       service.NewPetService(petRepo, images, audit, log),
		Donations:  service.NewDonationService(donationRepo, personRepo, keys, log),
		Roles:      service.NewRoleService(roleRepo, log),
		Persons:    personService,
		Adoptions:  service.NewAdoptionService(adoptionRepo, petRepo, personRepo, log),
		Tokens:     tokens,
		Identities: personRepo,
	}, api.Options{UploadDir: uploadDir, Checks: checks}, log)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info().Msg("server exited")
	return nil
}

// openImageStore selects the configured driver. The returned directory is
// non-empty only for local storage, which the router then serves.
func openImageStore(ctx context.Context, cfg *config.Config) (ports.ImageStore, string, error) {
	log := logger.Get()
	log.Info().Str("driver", cfg.Storage.Driver).Msg("opening image store")
	switch cfg.Storage.Driver {
	case "s3":
		s3cfg := cfg.Storage.S3
		store, err := storage.NewS3Store(ctx, storage.S3Config{
			Bucket:       s3cfg.Bucket,
			Region:       s3cfg.Region,
			Endpoint:     s3cfg.Endpoint,
			AccessKey:    s3cfg.AccessKey,
			SecretKey:    s3cfg.SecretKey,
			UsePathStyle: s3cfg.UsePathStyle,
			PublicURL:    s3cfg.PublicURL,
		})
		if err != nil {
			return nil, "", err
		}
		return storage.NewInstrumented(store, "s3"), "", nil
	default:
		store, err := storage.NewLocalStore(cfg.Storage.UploadDir, cfg.PublicBaseURL)
		if err != nil {
			return nil, "", err
		}
		return storage.NewInstrumented(store, "local"), store.Dir(), nil
	}
}

// bootstrap provisions the fixed roles and, when configured, demo users.
func bootstrap(ctx context.Context, cfg *config.Config, roles ports.RoleRepository, persons ports.PersonService, log zerolog.Logger) error {
	if err := service.EnsureRoles(ctx, roles, log); err != nil {
		return fmt.Errorf("ensure roles: %w", err)
	}
	if cfg.SeedFile == "" {
		return nil
	}
	users, err := seed.Load(cfg.SeedFile)
	if err != nil {
		return err
	}
	n, err := service.SeedUsers(ctx, persons, users, log)
	if err != nil {
		return fmt.Errorf("seed users: %w", err)
	}
	log.Info().Int("created", n).Str("file", cfg.SeedFile).Msg("seed users loaded")
	return nil
}
