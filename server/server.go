package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"Bt1QDL/cache"
	"Bt1QDL/config"
	"Bt1QDL/core/acquire"
	"Bt1QDL/core/audio"
	"Bt1QDL/core/extractor"
	"Bt1QDL/core/progress"
	"Bt1QDL/db"
	"Bt1QDL/logger"
	"Bt1QDL/repository"
	"Bt1QDL/storage"
)

// Start initializes dependencies and runs the HTTP server until interrupted.
func Start() {
	cfg := config.Load()

	logger.InitLogger(logger.Config{
		Level:      logger.LogLevel(cfg.LogLevel),
		OutputPath: cfg.LogPath,
		MaxSize:    100,
		MaxBackups: 5,
		MaxAge:     30,
		Compress:   true,
	})

	if err := db.ConnectDB(cfg); err != nil {
		logger.Fatal("failed to connect to database", logger.ErrorField(err))
	}
	defer db.DB.Close()

	if err := db.InitDB(); err != nil {
		logger.Fatal("failed to initialize database", logger.ErrorField(err))
	}

	if err := db.ConnectGormDB(cfg); err != nil {
		logger.Fatal("failed to connect gorm", logger.ErrorField(err))
	}

	if err := db.ConnectRedis(cfg); err != nil {
		logger.Fatal("failed to connect to Redis", logger.ErrorField(err))
	}
	defer db.CloseRedis()

	ensureDirExists(cfg.UploadDir)
	ensureDirExists(cfg.AudioUploadDir)
	ensureDirExists(cfg.CoverUploadDir)

	// Archival is optional; the pipeline runs without object storage.
	var archiver acquire.Archiver
	if cfg.MinioEndpoint != "" {
		store, err := storage.NewStore(cfg)
		if err != nil {
			logger.Warn("MinIO unavailable, archival disabled", logger.ErrorField(err))
		} else {
			archiver = store
		}
	}

	broadcaster := progress.NewBroadcaster(cfg.EventGracePeriod)
	sessions := cache.NewSessionCache(db.RedisClient)
	tracks := repository.NewMySQLTrackRepository(db.DB)
	history := repository.NewGormAcquisitionRepository(db.GormDB)
	prober := audio.NewFFprobeProber(cfg.FFmpegPath)
	runner := extractor.NewExecRunner()

	orchestrator := acquire.NewOrchestrator(cfg, runner, prober, broadcaster, tracks, history, sessions, archiver)
	apiHandler := NewAPIHandler(orchestrator, broadcaster, sessions, history, tracks, cfg)

	router := mux.NewRouter()

	// CORS middleware
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}
			next.ServeHTTP(w, r)
		})
	})

	router.HandleFunc("/api/acquisitions", apiHandler.StartAcquisitionHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/acquisitions/history", apiHandler.HistoryHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/acquisitions/{session_id}", apiHandler.SessionStatusHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/acquisitions/{session_id}/events", apiHandler.EventsHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/acquisitions/{session_id}/cancel", apiHandler.CancelAcquisitionHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/tracks", apiHandler.ListTracksHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/tracks/{id}", apiHandler.GetTrackHandler).Methods(http.MethodGet)
	router.HandleFunc("/ws/acquisitions/{session_id}", apiHandler.WebSocketProgressHandler)

	// Downloaded assets are served straight from the uploads directory.
	uploadsFileServer := http.FileServer(http.Dir(cfg.UploadDir))
	router.PathPrefix("/uploads/").Handler(http.StripPrefix("/uploads/", uploadsFileServer))

	server := &http.Server{
		Addr:        cfg.ListenAddr,
		Handler:     router,
		ReadTimeout: 30 * time.Second,
		IdleTimeout: 120 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("server starting", logger.String("addr", cfg.ListenAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", logger.ErrorField(err))
		}
	}()

	<-stop
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", logger.ErrorField(err))
	}
	logger.Info("server stopped")
}

func ensureDirExists(path string) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		logger.Info("creating directory", logger.String("path", path))
		if err := os.MkdirAll(path, 0755); err != nil {
			logger.Fatal("failed to create directory",
				logger.String("path", path),
				logger.ErrorField(err))
		}
	} else if err != nil {
		logger.Fatal("failed to check directory",
			logger.String("path", path),
			logger.ErrorField(err))
	}
}
