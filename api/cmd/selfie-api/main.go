package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"persona-selfie/api/internal/config"
	"persona-selfie/api/internal/gradio"
	"persona-selfie/api/internal/handle"
	"persona-selfie/api/internal/httpserver"
	"persona-selfie/api/internal/llm/gemini"
	"persona-selfie/api/internal/logging"
	"persona-selfie/api/internal/notify"
	"persona-selfie/api/internal/persona"
	"persona-selfie/api/internal/scene"
	"persona-selfie/api/internal/selfie"
	"persona-selfie/api/internal/storage"
	"persona-selfie/api/internal/store"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("selfie-api stopped", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	logger.Info("application startup")

	reg, err := persona.Load(cfg.BotsFile)
	if err != nil {
		return err
	}
	logger.Info("personas loaded", zap.Strings("bot_ids", reg.IDs()))

	eng, err := gemini.New(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		return err
	}
	defer eng.Close()

	st, err := storage.New(cfg.ImagesDir(), "/static/images")
	if err != nil {
		return err
	}

	deps := selfie.Deps{
		Registry:  reg,
		Photos:    persona.NewPhotos(cfg.PhotosDir),
		Extractor: scene.NewExtractor(eng, logger.Named("scene"), cfg.LLMTimeout),
		Store:     st,
		Log:       logger.Named("selfie"),
		Timeout:   cfg.GenerationTimeout,
	}

	// Недоступный Gradio не роняет сервис: все генерации получат 503.
	cctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	gc, err := gradio.Connect(cctx, gradio.Options{Space: cfg.GradioSpace, URL: cfg.GradioURL, Token: cfg.HFToken})
	cancel()
	if err != nil {
		logger.Error("failed to initialize gradio client", zap.String("space", cfg.GradioSpace), zap.Error(err))
	} else {
		p := gradio.DefaultFaceIDParams()
		p.APIName = cfg.GradioAPIName
		deps.Backend = gradio.NewFaceID(gc, p)
		logger.Info("gradio client initialized", zap.String("url", gc.BaseURL()))
	}

	if cfg.DatabaseURL != "" {
		db, err := store.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Warn("generation ledger disabled", zap.String("dsn", store.SafeDSNSummary(cfg.DatabaseURL)), zap.Error(err))
		} else {
			defer db.Close()
			if l := setupLedger(ctx, logger, db, cfg.DatabaseURL); l != nil {
				deps.Ledger = l
			}
		}
	}

	if cfg.TelegramBotToken != "" {
		tg, err := notify.NewTelegram(cfg.TelegramBotToken, cfg.TelegramChatID)
		if err != nil {
			logger.Warn("telegram publishing disabled", zap.Error(err))
		} else {
			deps.Publisher = tg
			logger.Info("telegram publishing enabled", zap.Int64("chat_id", cfg.TelegramChatID))
		}
	}

	h := handle.New(selfie.New(deps), logger.Named("handle"))
	srv := httpserver.New(h, httpserver.Options{
		Addr:           ":" + cfg.Port,
		StaticDir:      cfg.StaticDir,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		Log:            logger.Named("http"),
	})
	err = srv.Run(ctx)
	logger.Info("application shutdown")
	return err
}

// setupLedger prepares the schema; on failure the ledger stays disabled.
func setupLedger(ctx context.Context, logger *zap.Logger, db *sql.DB, dsn string) selfie.Ledger {
	repo := store.NewGenerationRepo(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		logger.Warn("generation ledger disabled", zap.String("dsn", store.SafeDSNSummary(dsn)), zap.Error(err))
		return nil
	}
	logger.Info("generation ledger enabled", zap.String("dsn", store.SafeDSNSummary(dsn)))
	return repo
}
