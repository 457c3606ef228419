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

	"github.com/joho/godotenv"

	"github.com/zhouzirui/path-finder/backend/internal/config"
	"github.com/zhouzirui/path-finder/backend/internal/handler"
	"github.com/zhouzirui/path-finder/backend/internal/logger"
	"github.com/zhouzirui/path-finder/backend/internal/middleware"
	"github.com/zhouzirui/path-finder/backend/internal/model/profile"
	"github.com/zhouzirui/path-finder/backend/internal/service/ai"
	"github.com/zhouzirui/path-finder/backend/internal/service/chat"
	"github.com/zhouzirui/path-finder/backend/internal/service/cv"
	"github.com/zhouzirui/path-finder/backend/internal/service/fact"
	"github.com/zhouzirui/path-finder/backend/internal/service/files"
	"github.com/zhouzirui/path-finder/backend/internal/service/quiz"
	"github.com/zhouzirui/path-finder/backend/internal/service/search"
	"github.com/zhouzirui/path-finder/backend/internal/store/boltstore"
	"github.com/zhouzirui/path-finder/backend/internal/store/redisstore"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// .env is optional; the process environment always wins.
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log.Mode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if envErr != nil {
		log.Debug("no .env file loaded, using process environment only", "error", envErr)
	}

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server error", "error", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	gen := newGenerator(ctx, cfg.AI, log)
	catalog := ai.NewCatalog(ai.Models{Default: cfg.AI.Model, Chat: cfg.AI.ChatModelID()})

	var (
		conversations   chat.Store               = chat.NewMemoryStore()
		recommendations quiz.RecommendationStore = quiz.NewMemoryStore()
		cvs             cv.Store                 = cv.NewMemoryStore()
		profiles        profile.Store            = profile.NewMemoryStore(nil)
	)
	if cfg.Store.UseRedis() {
		client, err := redisstore.Connect(ctx, cfg.Store, log)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer client.Close()

		conversations = redisstore.NewConversationStore(client)
		recommendations = redisstore.NewRecommendationStore(client)
		cvs = redisstore.NewCVStore(client)
		profiles = redisstore.NewProfileStore(client)
		log.Info("using redis stores", "addr", cfg.Store.RedisAddr, "db", cfg.Store.RedisDB)
	} else if cfg.Store.UseBolt() {
		db, err := boltstore.Open(cfg.Store.BoltPath)
		if err != nil {
			return fmt.Errorf("open bolt store: %w", err)
		}
		defer db.Close()

		conversations = boltstore.NewConversationStore(db)
		recommendations = boltstore.NewRecommendationStore(db)
		cvs = boltstore.NewCVStore(db)
		profiles = boltstore.NewProfileStore(db)
		log.Info("using bolt stores", "path", cfg.Store.BoltPath)
	} else {
		log.Warn("neither REDIS_ADDR nor BOLT_PATH set, conversations, CVs and profiles are kept in memory")
	}

	var searcher ai.Searcher
	if cfg.Search.Enabled() {
		searxng, err := search.NewSearXNG(cfg.Search.URL, cfg.Search.Timeout, cfg.Search.MaxResults)
		if err != nil {
			return fmt.Errorf("configure search: %w", err)
		}
		searcher = searxng
		log.Info("chat search augmentation enabled", "url", cfg.Search.URL)
	} else {
		log.Info("SEARCH_URL not set, chat search requests are answered without search")
	}

	chatSvc := chat.NewService(conversations, gen, catalog.MustGet(ai.TemplateCareerChat), chat.Options{
		Files:    files.NewHTTPResolver(cfg.Files.FetchTimeout, cfg.Files.MaxBytes),
		Profiles: profiles,
		Search:   searcher,
		Logger:   log,
	})
	quizSvc := quiz.NewService(gen, catalog, recommendations, log)
	cvSvc := cv.NewService(cvs, gen, catalog, log)
	factSvc := fact.NewService(gen, catalog)

	if !cfg.Auth.Required() {
		log.Warn("JWT_SECRET not set, trusting the " + middleware.DevUserHeader + " header (development only)")
	}

	router := handler.NewRouter(handler.Dependencies{
		Profiles:       profiles,
		Chat:           chatSvc,
		Quiz:           quizSvc,
		CV:             cvSvc,
		Facts:          factSvc,
		JWTSecret:      cfg.Auth.JWTSecret,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Limiter:        middleware.NewRateLimiter(cfg.Auth.RateLimitRPS, cfg.Auth.RateLimitBurst),
		Logger:         log,
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Info("Path Finder backend listening", "addr", cfg.Server.Addr)
	return runServer(ctx, srv)
}

// newGenerator validates the credential once at startup. Without one the server still runs and
// generation routes answer 503.
func newGenerator(ctx context.Context, cfg config.AIConfig, log *logger.Logger) ai.Generator {
	client, err := ai.NewClient(cfg, log)
	if err == nil {
		err = client.Warm(ctx, cfg.Model, cfg.ChatModelID())
	}

	var cfgErr *ai.ConfigurationError
	if errors.As(err, &cfgErr) {
		log.Warn("generation disabled", "reason", cfgErr.Reason)
		return ai.Unavailable{Err: cfgErr}
	}
	if err != nil {
		log.Warn("generation disabled", "error", err)
		return ai.Unavailable{}
	}

	log.Info("generation service ready", "model", cfg.Model, "chatModel", cfg.ChatModelID())
	return client
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
