package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"reelsmaker/internal/billing"
	"reelsmaker/internal/catalog"
	"reelsmaker/internal/composer"
	"reelsmaker/internal/compositor"
	"reelsmaker/internal/domain"
	"reelsmaker/internal/history"
	"reelsmaker/internal/http/handlers"
	httpapi "reelsmaker/internal/http/httpapi"
	"reelsmaker/internal/infra"
	"reelsmaker/internal/infra/geoip"
	"reelsmaker/internal/planner"
	"reelsmaker/internal/providers/voice"
	"reelsmaker/internal/storage"
)

func main() {
	// Muat .env (opsional)
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	templates, err := loadCatalog(cfg.TemplateCatalogPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load template catalog")
	}

	synth := voice.NewTranslateSynthesizer(voice.TranslateOptions{
		BaseURL:    cfg.TTSBaseURL,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
		Logger:     &logger,
	})
	plans := planner.NewService(templates, synth, logger)

	files, err := storage.NewFileStore(cfg.StoragePath, cfg.StorageBaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to prepare storage")
	}

	store, err := openHistory(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open history store")
	}
	defer store.Close()

	resolver, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip disabled")
	}
	if closer, ok := resolver.(io.Closer); ok {
		defer closer.Close()
	}

	comp, err := compositor.New()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load fonts")
	}
	ffmpeg := composer.NewFFmpeg(cfg.FFmpegPath)
	if err := ffmpeg.Check(); err != nil {
		logger.Warn().Err(err).Str("ffmpeg", cfg.FFmpegPath).Msg("compositions will be refused")
	}
	// Folder kerja sementara, di luar storage publik
	workDir := filepath.Join(os.TempDir(), "reelsmaker")
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		logger.Fatal().Err(err).Msg("failed to prepare work dir")
	}
	reels, err := composer.New(composer.Options{
		Planner:    plans,
		Decoder:    ffmpeg,
		Recorder:   ffmpeg,
		Compositor: comp,
		Assets:     compositor.NewLoader(cfg.AssetsDir, &http.Client{Timeout: 20 * time.Second}),
		Uploader:   &composer.StoreUploader{Files: files, History: store},
		WorkDir:    workDir,
		Logger:     logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build composer")
	}
	manager := composer.NewManager(reels, composer.ManagerOptions{
		MaxInFlight: cfg.MaxCompositions,
		Retention:   cfg.JobRetention,
	}, logger)
	defer manager.Close()

	app := handlers.NewApp(handlers.Deps{
		Logger:         logger,
		Planner:        plans,
		Templates:      templates,
		Billing:        billing.NewService(cfg.StripeSecretKey, cfg.StripePriceID),
		Compositions:   manager,
		History:        store,
		AllowedOrigins: cfg.CORSAllowedOrigins,
	})

	router := httpapi.NewRouter(app, httpapi.Options{
		Logger:          logger,
		JWTSecret:       cfg.JWTSecret,
		AllowedOrigins:  cfg.CORSAllowedOrigins,
		RateLimitPerMin: cfg.RateLimitPerMin,
		CountryLookup:   geoip.Lookup(resolver),
		StaticDir:       files.BasePath(),
		AssetsDir:       cfg.AssetsDir,
	})
	if !cfg.AuthEnabled() {
		logger.Warn().Msg("JWT_SECRET not set, every caller is anonymous")
	}

	server := infra.NewHTTPServer(cfg, router, logger)
	if err := server.Run(ctx, cfg.HTTPIdleTimeout); err != nil {
		logger.Error().Err(err).Msg("http server failed")
	}
	logger.Info().Msg("server stopped")
}

func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default()
	}
	return catalog.Load(path)
}

// openHistory prefers Postgres and falls back to a local SQLite file.
func openHistory(ctx context.Context, cfg *infra.Config, logger infra.Logger) (history.Store, error) {
	pool, err := infra.NewDBPool(ctx, cfg)
	switch {
	case errors.Is(err, infra.ErrNoDatabase):
		logger.Info().Str("path", cfg.HistoryDBPath).Msg("history: using sqlite")
		return history.OpenSQLite(ctx, cfg.HistoryDBPath, logger)
	case err != nil:
		return nil, err
	}
	store := history.NewPostgresStore(infra.NewSQLRunner(pool, logger), logger)
	if err := store.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	logger.Info().Msg("history: using postgres")
	return &pooledStore{PostgresStore: store, close: pool.Close}, nil
}

type pooledStore struct {
	*history.PostgresStore
	close func()
}

func (s *pooledStore) Close() error {
	s.close()
	return nil
}

var _ domain.GenerationRepository = (*pooledStore)(nil)
