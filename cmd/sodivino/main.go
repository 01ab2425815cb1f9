package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/giuliontini/SoDiVino/internal/config"
	dbRedis "github.com/giuliontini/SoDiVino/internal/db/redis"
	"github.com/giuliontini/SoDiVino/internal/domain"
	"github.com/giuliontini/SoDiVino/internal/domain/preference"
	logpkg "github.com/giuliontini/SoDiVino/internal/logger"
	"github.com/giuliontini/SoDiVino/internal/metrics"
	budgetrepo "github.com/giuliontini/SoDiVino/internal/repository/budget"
	"github.com/giuliontini/SoDiVino/internal/repository/menucache"
	parsedlistrepo "github.com/giuliontini/SoDiVino/internal/repository/parsedlist"
	personarepo "github.com/giuliontini/SoDiVino/internal/repository/persona"
	prefsrepo "github.com/giuliontini/SoDiVino/internal/repository/preferences"
	sessionrepo "github.com/giuliontini/SoDiVino/internal/repository/session"
	tasteprofilerepo "github.com/giuliontini/SoDiVino/internal/repository/tasteprofile"
	chiTransport "github.com/giuliontini/SoDiVino/internal/transport/chi"
	openaiLLM "github.com/giuliontini/SoDiVino/internal/transport/openai"
	healthuc "github.com/giuliontini/SoDiVino/internal/usecase/health"
	llmuc "github.com/giuliontini/SoDiVino/internal/usecase/llm"
	menuuc "github.com/giuliontini/SoDiVino/internal/usecase/menu"
	personauc "github.com/giuliontini/SoDiVino/internal/usecase/persona"
	preferencesuc "github.com/giuliontini/SoDiVino/internal/usecase/preferences"
	recommenduc "github.com/giuliontini/SoDiVino/internal/usecase/recommend"
	sessionuc "github.com/giuliontini/SoDiVino/internal/usecase/session"
	tasteprofileuc "github.com/giuliontini/SoDiVino/internal/usecase/tasteprofile"
	usageuc "github.com/giuliontini/SoDiVino/internal/usecase/usage"
	"github.com/giuliontini/SoDiVino/internal/version"
)

func main() {
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting sodivino API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_driver", cfg.Database.Driver),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	// Valkey speaks the same protocol, so both drivers share the rueidis store.
	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	metrics.RegisterLLMMetrics()

	// One budget tracker and one limiter per provider, shared by every model using it.
	budgetStore := budgetrepo.New(store, 48*time.Hour, 62*24*time.Hour)
	budgets := make(map[string]*llmuc.BudgetTracker, len(cfg.LLM.Providers))
	limiters := make(map[string]*rate.Limiter, len(cfg.LLM.Providers))
	usageSources := make([]usageuc.Source, 0, len(cfg.LLM.Providers))
	for name, prov := range cfg.LLM.Providers {
		action := llmuc.BudgetActionWarn
		if prov.Budget.Action == "reject" {
			action = llmuc.BudgetActionReject
		}
		tracker := llmuc.NewBudgetTracker(
			name, cfg.Storage.KeyPrefix, prov.Budget.DailyTokenLimit, prov.Budget.MonthlyTokenLimit, action, logger,
		).WithStore(ctx, budgetStore)
		budgets[name] = tracker
		usageSources = append(usageSources, usageuc.Source{
			Budget:               tracker,
			CostPerMillionTokens: prov.Budget.CostPerMillionTokens,
		})
		if cfg.LLM.RequestsPerSecond > 0 {
			limiters[name] = rate.NewLimiter(rate.Limit(cfg.LLM.RequestsPerSecond), max(1, int(cfg.LLM.RequestsPerSecond)))
		}
	}

	providerChecks := make(map[string]healthuc.ProviderChecker, 2)

	// Vision chain: OpenAI -> Instrumented -> Cached (outermost, so hits skip budget and breaker).
	var extractor domain.MenuExtractor
	if client := newClientConfig(cfg, cfg.LLM.Vision, logger); client != nil {
		base := openaiLLM.NewExtractor(client)
		providerChecks["vision"] = base
		instrumented := llmuc.NewInstrumentedExtractor(base, newGuard(cfg, "vision", cfg.LLM.Vision, budgets, limiters, logger))
		extractor = menucache.New(
			instrumented, store, cfg.Storage.KeyPrefix,
			time.Duration(cfg.Cache.ExtractionTTLHours)*time.Hour,
			metrics.ExtractionCacheTotal, logger,
		)
	} else {
		logger.Warn("Vision model not configured, image routes will return 503",
			zap.String("provider", cfg.LLM.Vision.Provider))
	}

	var rater domain.WineRater
	if client := newClientConfig(cfg, cfg.LLM.Recommender, logger); client != nil {
		base := openaiLLM.NewRater(client)
		providerChecks["recommender"] = base
		rater = llmuc.NewInstrumentedRater(base, newGuard(cfg, "recommender", cfg.LLM.Recommender, budgets, limiters, logger))
	} else {
		logger.Warn("Recommender model not configured, falling back to heuristic ranking",
			zap.String("provider", cfg.LLM.Recommender.Provider))
	}

	logger.Info("Language models configured",
		zap.String("vision_model", cfg.LLM.Vision.Model),
		zap.String("recommender_model", cfg.LLM.Recommender.Model),
		zap.Strings("providers", providerNames(cfg)),
	)

	// Repositories
	prefix := cfg.Storage.KeyPrefix
	personaRepo := personarepo.New(store, prefix)
	prefsRepo := prefsrepo.New(store, prefix)
	tasteRepo := tasteprofilerepo.New(store, prefix)
	sessionRepo := sessionrepo.New(store, prefix)
	listRepo := parsedlistrepo.New(store, prefix)

	catalogue, err := newCatalogue(cfg.Catalogue)
	if err != nil {
		logger.Fatal("Invalid profile catalogue", zap.Error(err))
	}

	// Use cases
	menuSvc := menuuc.New(extractor, listRepo, logger)
	recommendSvc := recommenduc.New(recommenduc.Config{
		TopN:                   cfg.Recommend.TopN,
		BatchSize:              cfg.Recommend.BatchSize,
		BatchConcurrency:       cfg.Recommend.BatchConcurrency,
		DefaultAdventurousness: cfg.Recommend.DefaultAdventurousness,
	}, recommenduc.Deps{
		Catalogue:     catalogue,
		Extractor:     extractor,
		Rater:         rater,
		Personas:      personaRepo,
		Preferences:   prefsRepo,
		TasteProfiles: tasteRepo,
		Lists:         listRepo,
		Logger:        logger,
	})

	server := chiTransport.NewServer(chiTransport.Services{
		Menus:         menuSvc,
		Recommend:     recommendSvc,
		Personas:      personauc.New(personaRepo),
		Preferences:   preferencesuc.New(prefsRepo),
		TasteProfiles: tasteprofileuc.New(tasteRepo),
		Sessions:      sessionuc.New(sessionRepo),
		Usage:         usageuc.New(usageSources...),
		Health:        healthuc.New(store, providerChecks),
	}, chiTransport.Options{
		MaxUploadBytes: int64(cfg.HTTP.MaxUploadMB) << 20,
		UploadLimiter:  uploadLimiter(cfg.RateLimit.UploadsPerMinute),
	}, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	if len(cfg.CORS.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: cfg.CORS.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", chiTransport.UserIDHeader},
			ExposedHeaders: []string{"X-Request-ID", "X-LLM-Tokens"},
			MaxAge:         300,
		}))
	}
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// newClientConfig resolves a task's provider. Returns nil when the provider is
// missing or has no API key.
func newClientConfig(cfg config.Config, model config.ModelConfig, logger *zap.Logger) *openaiLLM.Config {
	prov, ok := cfg.LLM.Providers[model.Provider]
	if !ok || prov.APIKey == "" {
		return nil
	}
	return &openaiLLM.Config{
		APIKey:    prov.APIKey,
		BaseURL:   prov.BaseURL,
		Model:     model.Model,
		MaxTokens: model.MaxTokens,
		Timeout:   time.Duration(model.TimeoutSec) * time.Second,
		Provider:  model.Provider,
		Logger:    logger,
	}
}

func newGuard(
	cfg config.Config,
	task string,
	model config.ModelConfig,
	budgets map[string]*llmuc.BudgetTracker,
	limiters map[string]*rate.Limiter,
	logger *zap.Logger,
) *llmuc.Guard {
	// A typed nil *BudgetTracker inside the interface would not compare equal to nil.
	var budget llmuc.BudgetChecker
	if b := budgets[model.Provider]; b != nil {
		budget = b
	}
	return &llmuc.Guard{
		Provider: model.Provider,
		Model:    model.Model,
		Budget:   budget,
		Limiter:  limiters[model.Provider],
		Breaker: llmuc.NewBreaker(llmuc.BreakerConfig{
			Name:             task,
			FailureThreshold: cfg.LLM.Breaker.FailureThreshold,
			OpenTimeout:      time.Duration(cfg.LLM.Breaker.OpenTimeoutSec) * time.Second,
		}, logger),
		Logger: logger,
	}
}

func providerNames(cfg config.Config) []string {
	names := make([]string, 0, len(cfg.LLM.Providers))
	for name := range cfg.LLM.Providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// uploadLimiter throttles image uploads per client IP. Zero disables it.
func uploadLimiter(perMinute int) func(http.Handler) http.Handler {
	if perMinute <= 0 {
		return nil
	}
	return httprate.Limit(perMinute, time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_ = json.NewEncoder(w).Encode(chiTransport.ErrorResponse{
				Code:    chiTransport.CodeRateLimited,
				Message: "Too many uploads, try again later",
			})
		}),
	)
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(chiTransport.ErrorResponse{
						Code:    chiTransport.CodeInternalError,
						Message: "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
				zap.String("llm_tokens", ww.Header().Get("X-LLM-Tokens")),
			)
		})
	}
}

// newCatalogue builds the profile catalogue from config, falling back to the built-in profiles.
func newCatalogue(profiles []config.ProfileConfig) (preference.Catalogue, error) {
	if len(profiles) == 0 {
		return preference.DefaultCatalogue(), nil
	}
	specs := make([]preference.ProfileSpec, len(profiles))
	for i, p := range profiles {
		specs[i] = preference.ProfileSpec{
			ID:              p.ID,
			Label:           p.Label,
			Description:     p.Description,
			Color:           p.Color,
			Body:            p.Body,
			Sweetness:       p.Sweetness,
			Acidity:         p.Acidity,
			Budget:          p.Budget,
			DislikedTerms:   p.Dislikes,
			Adventurousness: p.Adventurousness,
		}
	}
	return preference.NewCatalogue(specs)
}
