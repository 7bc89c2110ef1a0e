package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"ctg-quiz-service/internal/app"
	"ctg-quiz-service/internal/certificate"
	"ctg-quiz-service/internal/config"
	"ctg-quiz-service/internal/infra/hint"
	"ctg-quiz-service/internal/infra/memory"
	pgstore "ctg-quiz-service/internal/infra/postgres"
	redisstore "ctg-quiz-service/internal/infra/redis"
	"ctg-quiz-service/internal/infra/sheet"
	"ctg-quiz-service/internal/logger"
	transport "ctg-quiz-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log := logger.Setup(cfg.Log.Level, cfg.Log.Format)

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
		log.Info().Msg("migrations applied")
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	redisTTL := config.Duration(cfg.Redis.TTL, 10*time.Minute)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	var loader memory.BankLoader
	switch {
	case cfg.Sheet.URL != "":
		loader = sheet.NewLoader(cfg.Sheet.URL, config.Duration(cfg.Sheet.Timeout, 15*time.Second))
	case pool != nil:
		loader = pgstore.NewBankLoader(pool)
	default:
		return fmt.Errorf("no question bank source configured (sheet.url or postgres.url)")
	}

	bankTTL := config.Duration(cfg.Quiz.BankTTL, 10*time.Minute)
	var bankRepo app.BankRepository
	if redisClient != nil {
		bankRepo = redisstore.NewBankRepository(redisClient, loader, bankTTL)
	} else {
		bankRepo = memory.NewBankRepository(loader, bankTTL)
	}

	var hints app.HintProvider
	if cfg.Hint.URL != "" {
		hints = hint.NewHTTPProvider(cfg.Hint.URL, config.Duration(cfg.Hint.Timeout, 20*time.Second), log)
	} else {
		hints = hint.NewStaticProvider(nil)
	}
	if redisClient != nil {
		hints = redisstore.NewHintCache(redisClient, hints, bankTTL)
	}

	sessionCfg := app.SessionConfig{
		QuizLength:   cfg.Quiz.Length,
		QuestionTime: cfg.Quiz.QuestionTime,
		PassPercent:  cfg.Quiz.PassPercent,
	}
	factory := app.NewSessionFactory(sessionCfg, hints)

	var store app.SessionRepository
	if redisClient != nil {
		store = redisstore.NewSessionStore(redisClient, redisTTL, factory)
	} else {
		store = memory.NewSessionStore(factory)
	}

	var archive app.ResultArchive
	if pool != nil {
		archive = pgstore.NewResultArchive(pool)
	}

	service := app.NewQuizService(store, bankRepo, archive, log)
	wsHandler := transport.NewWSHandler(service, log)
	certHandler := transport.NewCertificateHandler(service, certificate.NewFormatter(), log)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", wsHandler.ServeWS)
	mux.Handle("/certificate", certHandler)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info().Str("port", finalPort).Msg("starting quiz service")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info().Msg("shutting down server")
	case <-ctx.Done():
		log.Info().Msg("context canceled, shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
