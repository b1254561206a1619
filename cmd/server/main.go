// Package main is the entry point for the grade portal HTTP server.
//
// The architecture follows Clean Architecture and DDD:
// - Domain: grading rules and the record model, no external dependencies
// - Application: commands, queries and report assembly
// - Infrastructure: PostgreSQL store, optional Redis cache, auth
// - Interface: REST API
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/grade-portal/grade-portal/config"
	"github.com/grade-portal/grade-portal/internal/application/command"
	"github.com/grade-portal/grade-portal/internal/application/query"
	"github.com/grade-portal/grade-portal/internal/application/report"
	"github.com/grade-portal/grade-portal/internal/domain/shared"
	"github.com/grade-portal/grade-portal/internal/domain/user"
	"github.com/grade-portal/grade-portal/internal/infrastructure/persistence/postgres"
	"github.com/grade-portal/grade-portal/internal/infrastructure/persistence/redis"
	"github.com/grade-portal/grade-portal/internal/infrastructure/service"
	httpserver "github.com/grade-portal/grade-portal/internal/interface/http"
	"github.com/grade-portal/grade-portal/pkg/logger"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.Default().Fatal("failed to load config", logger.Err(err))
	}

	log := logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.App.LogLevel),
		Output: os.Stdout,
	}).With(logger.Component("server"))

	if err := run(cfg, log); err != nil {
		log.Fatal("server exited with error", logger.Err(err))
	}
}

func run(cfg *config.Config, log *logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ─────────────────────────────────────────────────────────────────────────
	// PostgreSQL
	// ─────────────────────────────────────────────────────────────────────────
	conn, err := connectPostgres(ctx, cfg)
	if err != nil {
		return err
	}
	defer conn.Close()
	log.Info("connected to postgres")

	if err := postgres.NewMigrator(conn).Migrate(ctx); err != nil {
		return err
	}
	log.Info("migrations applied")

	// ─────────────────────────────────────────────────────────────────────────
	// Redis (optional)
	// ─────────────────────────────────────────────────────────────────────────
	var aggregateCache *redis.AggregateCache
	if !cfg.Redis.Disabled {
		cache, err := redis.NewCache(redis.Config{
			Host:         cfg.Redis.Host,
			Port:         cfg.Redis.Port,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})
		if err != nil {
			return err
		}
		defer cache.Close()
		aggregateCache = redis.NewAggregateCache(cache)
		log.Info("connected to redis")
	} else {
		log.Info("redis disabled, aggregate caching off")
	}

	// ─────────────────────────────────────────────────────────────────────────
	// Repositories & services
	// ─────────────────────────────────────────────────────────────────────────
	studentRepo := postgres.NewStudentRepository(conn)
	subjectRepo := postgres.NewSubjectRepository(conn)
	markRepo := postgres.NewMarkRepository(conn)
	userRepo := postgres.NewUserRepository(conn)

	var invalidator command.AggregateInvalidator
	var queryCache query.AggregateCache
	if aggregateCache != nil {
		invalidator = aggregateCache
		queryCache = aggregateCache
	}

	auth := service.NewAuthService(userRepo, cfg.Auth.SessionTTL)
	if err := bootstrapAdmin(ctx, cfg, auth, log); err != nil {
		return err
	}

	deps := httpserver.Dependencies{
		RegisterStudent: command.NewRegisterStudentHandler(studentRepo),
		UpdateStudent:   command.NewUpdateStudentHandler(studentRepo),
		RemoveStudent:   command.NewRemoveStudentHandler(studentRepo, invalidator),
		AddSubject:      command.NewAddSubjectHandler(subjectRepo),
		UpdateSubject:   command.NewUpdateSubjectHandler(subjectRepo),
		RemoveSubject:   command.NewRemoveSubjectHandler(subjectRepo, markRepo),
		RecordMark:      command.NewRecordMarkHandler(markRepo, studentRepo, subjectRepo, invalidator),
		AmendMark:       command.NewAmendMarkHandler(markRepo, invalidator),
		RemoveMark:      command.NewRemoveMarkHandler(markRepo, invalidator),

		Students:   studentRepo,
		Subjects:   subjectRepo,
		Marks:      markRepo,
		Aggregates: query.NewAggregateService(markRepo, studentRepo, subjectRepo, queryCache),
		Reports:    report.NewBuilder(studentRepo, markRepo),
		Exporter:   report.NewExporter(markRepo),

		Auth:   auth,
		Pinger: conn,
		Logger: log,
	}

	// ─────────────────────────────────────────────────────────────────────────
	// HTTP server
	// ─────────────────────────────────────────────────────────────────────────
	server := httpserver.NewServer(httpserver.Config{
		Host:           cfg.HTTP.Host,
		Port:           cfg.HTTP.Port,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
	}, deps)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func connectPostgres(ctx context.Context, cfg *config.Config) (*postgres.Connection, error) {
	if cfg.Database.URL != "" {
		return postgres.NewConnectionFromURL(ctx, cfg.Database.URL)
	}

	pgCfg := postgres.DefaultConfig()
	pgCfg.Host = cfg.Database.Host
	pgCfg.Port = cfg.Database.Port
	pgCfg.User = cfg.Database.User
	pgCfg.Password = cfg.Database.Password
	pgCfg.Database = cfg.Database.Name
	pgCfg.SSLMode = cfg.Database.SSLMode
	pgCfg.MaxConns = int32(cfg.Database.MaxConns)
	pgCfg.MinConns = int32(cfg.Database.MinConns)
	pgCfg.MaxConnLifetime = cfg.Database.ConnMaxLifetime
	pgCfg.MaxConnIdleTime = cfg.Database.ConnMaxIdleTime

	return postgres.NewConnection(ctx, pgCfg)
}

// bootstrapAdmin creates the configured admin account if it does not exist
// yet, so a fresh deployment can log in.
func bootstrapAdmin(ctx context.Context, cfg *config.Config, auth *service.AuthService, log *logger.Logger) error {
	if cfg.Auth.AdminUsername == "" {
		return nil
	}

	_, err := auth.CreateUser(ctx, cfg.Auth.AdminUsername, cfg.Auth.AdminPassword, user.RoleAdmin)
	if err != nil {
		if shared.IsConflict(err) {
			return nil
		}
		return err
	}

	log.Info("bootstrap admin created", logger.Username(cfg.Auth.AdminUsername))
	return nil
}
