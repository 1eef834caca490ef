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

	"github.com/gin-gonic/gin"
	"github.com/harrison-roh/plant-disease-inference/inferapp/api"
	"github.com/harrison-roh/plant-disease-inference/inferapp/config"
	"github.com/harrison-roh/plant-disease-inference/inferapp/constants"
	"github.com/harrison-roh/plant-disease-inference/inferapp/data"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newServeCmd(configPath *string) *cobra.Command {
	o := &overrides{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the inference http server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath, o)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}
	o.register(cmd)
	cmd.Flags().StringVar(&o.port, "port", "", "Listen port")

	return cmd
}

func serve(ctx context.Context, cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	i, err := newInference(cfg)
	if err != nil {
		return err
	}
	defer i.Destroy()

	a := &api.APIs{
		I:              i,
		MaxUploadBytes: cfg.MaxUploadBytes,
		InferTimeout:   cfg.InferTimeout,
	}

	if cfg.JournalEnabled() {
		m, err := data.New(ctx, cfg.Journal)
		if err != nil {
			return err
		}
		defer m.Destroy()
		a.M = m
	}

	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}
	r := gin.Default()
	r.MaxMultipartMemory = 8 << 20
	a.Routes(r)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("Server starting on port %s (model loaded: %v, classes: %d)",
			cfg.Port, i.ModelLoaded(), i.ClassNames().Len())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Print("Shutting down server")

		sctx, cancel := context.WithTimeout(context.Background(),
			time.Duration(constants.ShutdownTimeoutSeconds)*time.Second)
		defer cancel()
		return server.Shutdown(sctx)
	})

	return g.Wait()
}
