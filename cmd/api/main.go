package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"juansecalvinio/storefront-auth/internal/adapters/primary"
	"juansecalvinio/storefront-auth/internal/adapters/secondary"
	"juansecalvinio/storefront-auth/internal/config"
	"juansecalvinio/storefront-auth/internal/core/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"
	"github.com/markbates/goth/providers/google"
	"go.uber.org/zap"
)

func initGoth(cfg *config.Config) *sessions.CookieStore {
	key := []byte(cfg.Security.SessionSecret)
	store := sessions.NewCookieStore(key)

	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   cfg.Security.CookieMaxAge,
		HttpOnly: true,
		Secure:   cfg.Security.IsProd,
		SameSite: http.SameSiteLaxMode,
	}

	gothic.Store = store

	goth.UseProviders(
		google.New(
			cfg.Auth.GoogleClientID,
			cfg.Auth.GoogleClientSecret,
			cfg.Auth.CallbackURL,
			cfg.Auth.Scopes...,
		),
	)

	return store
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := config.NewLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	store := initGoth(cfg)

	// --- 1. INFRAESTRUCTURA (Adaptadores secundarios) ---
	gothAdapter := secondary.NewGothAdapter(store)
	hub := secondary.NewHub()

	// --- 2. CORE ---
	userService := service.NewUserService(logger.Named("session"))

	// --- 3. ADAPTADOR WEB ---
	ginAdapter := primary.NewGinAdapter(userService, gothAdapter, hub, primary.Options{
		FrontendURL:   cfg.Web.FrontendURL,
		LoginRedirect: cfg.Web.LoginRedirect,
	}, logger.Named("http"))

	if cfg.Security.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	ginAdapter.RegisterRoutes(router)

	// --- 4. INICIO DEL SERVIDOR ---
	// Los streams SSE terminan cuando se cancela el contexto base.
	baseCtx, cancelBase := context.WithCancel(context.Background())
	defer cancelBase()
	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return baseCtx },
	}
	srv.RegisterOnShutdown(cancelBase)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
