package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	api "github.com/mind-engage/mindengage-scorm/internal/api/http"
	"github.com/mind-engage/mindengage-scorm/internal/config"
	"github.com/mind-engage/mindengage-scorm/internal/course"
	"github.com/mind-engage/mindengage-scorm/internal/db"
	"github.com/mind-engage/mindengage-scorm/internal/export"
	"github.com/mind-engage/mindengage-scorm/internal/logger"
	"github.com/mind-engage/mindengage-scorm/internal/storage"
	syncx "github.com/mind-engage/mindengage-scorm/internal/sync"
)

func main() {
	cfg := config.FromEnv()

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- DB ---
	store, dbh := openStore(ctx, cfg, log)
	if dbh != nil {
		defer dbh.Close()
	}

	// --- Bundle cache ---
	blobs := openBlobs(ctx, cfg, log)

	svc := &export.Service{Tree: store, Blobs: blobs, Log: log, SiteID: cfg.SiteID}
	var events api.EventFeed
	if dbh != nil {
		repo := syncx.NewEventRepo(dbh)
		svc.Events = repo
		events = repo
	}

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "If-None-Match"},
		ExposedHeaders:   []string{"Content-Length", "Content-Disposition", "ETag"},
		AllowCredentials: cfg.CORSAllowCredentials,
		MaxAge:           300,
	}))

	r.Route("/api", func(ar chi.Router) {
		api.Mount(ar, store, svc, events, log)
	})
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warn("shutdown", "err", err)
		}
	}()

	log.Info("listening", "addr", cfg.HTTPAddr, "mode", cfg.Mode, "db", cfg.DBDriver, "blobs", cfg.BlobDriver)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("server failed", "err", err)
	}
}

// openStore returns the course store; dbh is nil for the in-memory driver.
func openStore(ctx context.Context, cfg config.Config, log *logger.Logger) (course.Store, *sql.DB) {
	if cfg.DBDriver == "memory" {
		log.Warn("using in-memory store; content is lost on exit")
		return course.NewInMemoryStore(), nil
	}
	openCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	dbh, err := db.Open(openCtx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatal("db open failed", "err", err, "driver", cfg.DBDriver)
	}
	dbh.SetMaxOpenConns(cfg.DBMaxOpenConns)
	return course.NewSQLStore(dbh, cfg.DBDriver), dbh
}

func openBlobs(ctx context.Context, cfg config.Config, log *logger.Logger) storage.BlobStore {
	switch cfg.BlobDriver {
	case "fs":
		bs, err := storage.NewFSStore(cfg.BlobBasePath)
		if err != nil {
			log.Fatal("blob store", "err", err)
		}
		return bs
	case "redis":
		rs, err := storage.NewRedisStore(ctx, cfg.RedisURL, cfg.BundleCacheTTL)
		if err != nil {
			log.Fatal("redis blob store", "err", err)
		}
		return rs
	case "", "none":
		return storage.NopStore{}
	default:
		log.Fatal("unknown BLOB_DRIVER", "driver", cfg.BlobDriver)
		return nil
	}
}
