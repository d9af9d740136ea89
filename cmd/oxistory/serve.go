package main

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/parisxmas/OxiDB/OxiStory/internal/config"
	"github.com/parisxmas/OxiDB/OxiStory/internal/db"
	"github.com/parisxmas/OxiDB/OxiStory/internal/gelf"
	"github.com/parisxmas/OxiDB/OxiStory/internal/handler"
	"github.com/parisxmas/OxiDB/OxiStory/internal/organize"
	"github.com/parisxmas/OxiDB/OxiStory/internal/repository"
	"github.com/parisxmas/OxiDB/OxiStory/internal/router"
	"github.com/parisxmas/OxiDB/OxiStory/internal/service"
)

func serveCmd(load func() (*config.Config, error)) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the intake and back-office HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.HTTPAddr = addr
			}
			return runServe(cfg)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	return cmd
}

func runServe(cfg *config.Config) error {
	// GELF UDP logging
	if cfg.GELFAddr != "" {
		gelfWriter, err := gelf.New(cfg.GELFAddr, "oxistory")
		if err != nil {
			log.Printf("Warning: GELF init failed: %v", err)
		} else {
			defer gelfWriter.Close()
			log.SetOutput(io.MultiWriter(os.Stderr, gelfWriter))
			log.Printf("GELF logging: enabled (%s)", cfg.GELFAddr)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	b, err := openBackend(ctx, cfg, false)
	if err != nil {
		return err
	}
	defer b.close()
	stores := b.stores

	// Services
	authSvc := service.NewAuthService(stores.Admins, cfg.JWTSecret)
	var organizer service.Organizer
	if cfg.OrganizeURL != "" {
		organizer = organize.NewClient(cfg.OrganizeURL, cfg.HTTPTimeout)
	}
	subSvc := service.NewSubmissionService(stores, organizer, cfg.PublicURL)
	commits := newPipeline(cfg, stores)
	intakeSvc := service.NewIntakeService(commits, cfg.SessionTTL)
	intakeSvc.StartJanitor(cfg.SessionTTL / 4)

	// Handlers
	authH := handler.NewAuthHandler(authSvc)
	intakeH := handler.NewIntakeHandler(intakeSvc, cfg.MaxUploadBytes)
	subH := handler.NewSubmissionHandler(subSvc)

	r := router.New(cfg.JWTSecret, authH, intakeH, subH)

	if b.pool != nil {
		go backgroundInit(ctx, cfg, b.pool)
	} else if err := authSvc.SeedAdmin(ctx, cfg.AdminEmail, cfg.AdminPass); err != nil {
		log.Printf("Warning: failed to seed admin: %v", err)
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		log.Printf("OxiStory server starting on %s", cfg.HTTPAddr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		log.Printf("Shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Warning: shutdown: %v", err)
	}
	commits.Wait()
	intakeSvc.Close()
	log.Printf("Server stopped")
	return nil
}

// backgroundInit creates indexes and the bucket and seeds the admin on a
// dedicated connection so the HTTP pool is not blocked.
func backgroundInit(ctx context.Context, cfg *config.Config, pool *db.Pool) {
	log.Printf("Background init: starting")
	initPool, err := db.NewPool(cfg.OxiDBHost, cfg.OxiDBPort, 1)
	if err != nil {
		log.Printf("Warning: init pool connect failed, using main pool: %v", err)
		initPool = pool
	} else {
		log.Printf("Background init: dedicated connection ready")
	}
	defer func() {
		if initPool != pool {
			initPool.Close()
		}
	}()

	start := time.Now()
	if err := repository.PrepareOxiDB(ctx, initPool); err != nil {
		log.Printf("Warning: index creation failed: %v", err)
	} else {
		log.Printf("Background init: indexes and bucket ready (%s)", time.Since(start).Round(time.Millisecond))
	}

	log.Printf("Background init: seeding admin user...")
	initAuthSvc := service.NewAuthService(repository.NewOxiDBStores(initPool).Admins, cfg.JWTSecret)
	if err := initAuthSvc.SeedAdmin(ctx, cfg.AdminEmail, cfg.AdminPass); err != nil {
		log.Printf("Warning: failed to seed admin: %v", err)
	}
	log.Printf("Background init: all done")
}
