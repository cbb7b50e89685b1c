package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/inamate/figconv/internal/asset"
	"github.com/inamate/figconv/internal/auth"
	"github.com/inamate/figconv/internal/config"
	"github.com/inamate/figconv/internal/convert"
	"github.com/inamate/figconv/internal/export"
	mw "github.com/inamate/figconv/internal/middleware"
	"github.com/inamate/figconv/internal/protocol"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Level()})))

	authService := auth.NewService(cfg.JWTSecret, cfg.APIKey)
	authHandler := auth.NewHandler(authService)

	converter := convert.New(
		convert.WithExportDelay(cfg.ExportDelay),
		convert.WithMaxConcurrency(cfg.MaxConcurrency),
		convert.WithClassMode(cfg.ClassMode),
		convert.WithGradients(convert.NewLocalGradients(cfg.GradientWidth, cfg.GradientHeight)),
	)

	hub := protocol.NewHub()
	go hub.Run()

	wsOpts := []protocol.HandlerOption{protocol.WithOriginPatterns(cfg.Origins())}
	if cfg.GradientMode == config.GradientRemote {
		wsOpts = append(wsOpts, protocol.WithClientGradients(0))
	}
	wsHandler := protocol.NewHandler(hub, converter, wsOpts...)

	assetHandler := asset.NewHandler(cfg.GradientWidth, cfg.GradientHeight)
	exportHandler := export.NewHandler(converter, cfg.MaxDocumentSize)

	r := mux.NewRouter()

	// Global middleware
	r.Use(mw.Recovery)
	r.Use(mw.Logger)
	r.Use(mw.CORS(cfg.Origins()))

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	r.HandleFunc("/auth/token", authHandler.Token).Methods("POST", "OPTIONS")

	// Gradient rasterizer (public, used by plugin UIs that paint nothing themselves)
	r.HandleFunc("/assets/gradient", assetHandler.Gradient).Methods("POST", "OPTIONS")

	api := r.PathPrefix("/api").Subrouter()
	api.Use(authService.Middleware(cfg.AuthRequired))
	api.HandleFunc("/convert/{mode}", exportHandler.Convert).Methods("POST", "OPTIONS")

	r.Handle("/ws", authService.Middleware(cfg.AuthRequired)(wsHandler))

	addr := ":" + strconv.Itoa(cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down server")

		// Close websocket sessions first so in-flight runs are cancelled
		if err := hub.Stop(); err != nil {
			slog.Warn("closing websocket clients", "error", err)
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		srv.Shutdown(shutdownCtx)
	}()

	slog.Info("server starting", "addr", addr, "gradients", cfg.GradientMode, "authRequired", cfg.AuthRequired)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}
