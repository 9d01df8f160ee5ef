package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cletusgizo/ZapPay-Global/internal/factory"
	"github.com/cletusgizo/ZapPay-Global/internal/handler"
	"github.com/cletusgizo/ZapPay-Global/internal/util"
)

func main() {
	// Initialize factory (which loads config and initializes all clients)
	f, err := factory.NewFactory()
	if err != nil {
		util.Fatal("Failed to initialize factory", util.ErrorField(err))
	}
	defer f.Close()

	cfg := f.Config()

	authHandler := handler.NewAuthHandler(f.AuthService(), util.Get())
	userHandler := handler.NewUserHandler(f.UserService(), util.Get())
	router := handler.NewRouter(authHandler, userHandler, f.Signer(), util.Get())

	server := &http.Server{
		Addr:         cfg.GetServerAddress(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if cfg.Server.EnableTLS {
			util.Info("Starting HTTPS server",
				util.String("environment", cfg.Environment),
				util.String("address", server.Addr),
			)
			if err := server.ListenAndServeTLS(cfg.Server.CertFile, cfg.Server.KeyFile); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		}

		util.Warn("Starting HTTP server - TLS is disabled",
			util.String("environment", cfg.Environment),
			util.String("address", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		util.Info("Received shutdown signal")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			util.Error("Failed to shutdown server gracefully", util.ErrorField(err))
			return err
		}
		util.Info("Server shutdown completed")
		return nil
	})

	if err := g.Wait(); err != nil {
		util.Error("Server exited with error", util.ErrorField(err))
		f.Close()
		os.Exit(1)
	}
}
