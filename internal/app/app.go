package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/weaviate/weaviate-go-client/v5/weaviate"

	"merchflow/backend/features/chat"
	"merchflow/backend/features/document"
	"merchflow/backend/features/job"
	"merchflow/backend/features/progress"
	"merchflow/backend/features/stats"
	"merchflow/backend/internal/adapter/gemini"
	wstore "merchflow/backend/internal/adapter/weaviate"
	"merchflow/backend/internal/config"
	"merchflow/backend/internal/middleware"
	"merchflow/backend/internal/retrieval"
	"merchflow/backend/internal/settings"
	"merchflow/backend/internal/text"
	"merchflow/backend/internal/worker"
)

// TaskPublisher is what the features need from the NSQ producer.
type TaskPublisher interface {
	Publish(topic string, body []byte) error
}

type App struct {
	Handler         http.Handler
	DocumentService *document.Service
	EmbedConsumer   *worker.EmbedConsumer

	addr string
}

func New(cfg *config.Config, db *sql.DB, wClient *weaviate.Client, taskPub TaskPublisher) (*App, error) {
	// Feature: Settings
	settingsRepo := settings.NewPostgresRepo(db)
	settingsService := settings.NewService(settingsRepo)
	seedSettings(cfg, settingsService)
	settingsHandler := settings.NewHandler(settingsService)

	vecStore := wstore.NewStore(wClient)

	// Feature: Progress (tasks + stage)
	progressRepo := progress.NewPostgresRepo(db)
	progressService := progress.NewService(progressRepo)
	progressHandler := progress.NewHandler(progressService)

	// Feature: Job
	jobRepo := job.NewPostgresRepo(db)
	jobService := job.NewService(jobRepo, taskPub)
	jobHandler := job.NewHandler(jobService)

	// Feature: Document ingestion
	documentRepo := document.NewPostgresRepo(db)
	documentService := document.NewService(documentRepo, text.NewChunker(), taskPub, vecStore)
	documentHandler := document.NewHandler(documentService)

	// Feature: Stats
	statsHandler := stats.NewHandler(documentRepo, jobRepo, vecStore)

	// Retrieval + Chat
	queryLogger, err := retrieval.NewFileQueryLogger("data/logs/query.log")
	if err != nil {
		slog.Warn("failed to create query logger, falling back to stdout", "error", err)
		queryLogger = retrieval.NewQueryLogger(os.Stdout)
	}

	embedder := gemini.NewDynamicEmbedder(settingsService)
	retrievalService := retrieval.NewService(embedder, vecStore, progressRepo, settingsService, queryLogger)

	generator := gemini.NewDynamicGenerator(settingsService)
	chatService := chat.NewService(retrievalService, progressService, generator)
	chatHandler := chat.NewHandler(chatService)

	enableCORS := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}
			next(w, r)
		}
	}

	mux := http.NewServeMux()

	mux.Handle("GET /folders/{id}/progress", middleware.CorrelationID(enableCORS(progressHandler.GetProgress)))
	mux.Handle("GET /folders/{id}/tasks", middleware.CorrelationID(enableCORS(progressHandler.GetTasks)))

	mux.Handle("POST /chat", middleware.CorrelationID(enableCORS(chatHandler.Chat)))

	mux.Handle("POST /documents", middleware.CorrelationID(enableCORS(documentHandler.Create)))
	mux.Handle("GET /documents", middleware.CorrelationID(enableCORS(documentHandler.List)))
	mux.Handle("GET /documents/{id}", middleware.CorrelationID(enableCORS(documentHandler.Get)))
	mux.Handle("DELETE /documents/{id}", middleware.CorrelationID(enableCORS(documentHandler.Delete)))

	mux.Handle("GET /settings", middleware.CorrelationID(enableCORS(settingsHandler.GetSettings)))
	mux.Handle("PUT /settings", middleware.CorrelationID(enableCORS(settingsHandler.UpdateSettings)))

	mux.Handle("GET /jobs/failed", middleware.CorrelationID(enableCORS(jobHandler.List)))
	mux.Handle("POST /jobs/{id}/retry", middleware.CorrelationID(enableCORS(jobHandler.Retry)))

	mux.Handle("GET /stats", middleware.CorrelationID(enableCORS(statsHandler.GetStats)))

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	embedConsumer := worker.NewEmbedConsumer(embedder, vecStore, documentRepo, jobRepo, cfg.EmbedMaxAttempts)

	return &App{
		Handler:         mux,
		DocumentService: documentService,
		EmbedConsumer:   embedConsumer,
		addr:            fmt.Sprintf(":%d", cfg.ServerPort),
	}, nil
}

// seedSettings copies bootstrap config into the settings row when the row is
// still empty, so a fresh deployment works without touching the settings API.
func seedSettings(cfg *config.Config, svc *settings.Service) {
	ctx := context.Background()
	set, err := svc.Get(ctx)
	if err != nil {
		slog.Warn("failed to fetch settings for seeding", "error", err)
		return
	}

	changed := false
	if set.GeminiAPIKey == "" && cfg.GeminiAPIKey != "" {
		set.GeminiAPIKey = cfg.GeminiAPIKey
		changed = true
	}
	if set.ChatModel == "" && cfg.ChatModel != "" {
		set.ChatModel = cfg.ChatModel
		changed = true
	}
	if set.SearchTopK <= 0 && cfg.SearchTopK > 0 {
		set.SearchTopK = cfg.SearchTopK
		changed = true
	}
	if !changed {
		return
	}

	if err := svc.Update(ctx, set); err != nil {
		slog.Warn("failed to seed settings from environment", "error", err)
		return
	}
	slog.Info("seeded settings from environment")
}

func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    a.addr,
		Handler: a.Handler,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutting down server...")
		if err := srv.Shutdown(context.Background()); err != nil {
			slog.Error("server shutdown failed", "error", err)
		}
	}()

	slog.Info("server starting", "addr", a.addr)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}
