// @title           Todoist projection API
// @version         1.0
// @description     Password-gated, read-only projection of a Todoist account.
// @host            localhost:8080
// @BasePath        /api
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/owenmcgrath/todoist-projection/internal/app"
	"github.com/owenmcgrath/todoist-projection/internal/config"

	_ "github.com/owenmcgrath/todoist-projection/docs"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "projection",
	Short: "Read-only projection of a Todoist account",
	Long:  `Serves a password-gated, periodically refreshed view of Todoist projects, sections and tasks.`,
	// Running without a subcommand serves, as the container entrypoint expects.
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve()
	},
	SilenceUsage: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the refresh loop",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve()
	},
}

func main() {
	// A missing .env is fine; the environment may already be set.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf(".env: %v", err)
	}

	rootCmd.AddCommand(serveCmd, snapshotCmd, hashPasswordCmd, clearCacheCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serve() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.ValidateServe(); err != nil {
		return err
	}
	log.Printf("config loaded, connecting to Redis and the history store...")

	application, err := app.New(cfg)
	if err != nil {
		return err
	}
	application.Start()
	log.Printf("app ready, starting HTTP server")
	server := &http.Server{
		Addr:         "0.0.0.0:" + cfg.HTTP.Port,
		Handler:      application.Router(),
		ReadTimeout:  cfg.HTTP.ReadTimeout.Duration(),
		WriteTimeout: cfg.HTTP.WriteTimeout.Duration(),
		IdleTimeout:  cfg.HTTP.IdleTimeout.Duration(),
	}

	errc := make(chan error, 1)
	go func() {
		log.Printf("HTTP server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
	case err = <-errc:
		log.Printf("HTTP server error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if serr := server.Shutdown(ctx); serr != nil {
		log.Printf("shutdown: %v", serr)
	}
	if cerr := application.Close(ctx); cerr != nil {
		log.Printf("close: %v", cerr)
	}
	return err
}
