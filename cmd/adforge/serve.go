package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/fpang/adforge/internal/httpapi"
	"github.com/fpang/adforge/internal/lambdaboot"
	"github.com/fpang/adforge/internal/metrics"
)

var (
	portFlag        int
	emitMetricsFlag bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Serve starts the AdForge HTTP API:

  GET  /              service banner
  GET  /health        health check
  POST /api/campaign  {image, style?} -> campaign
  POST /api/refine    {current_text, refinement_prompt, context} -> {refined_text}`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVarP(&portFlag, "port", "p", 8000, "Port to listen on (overrides PORT)")
	serveCmd.Flags().BoolVar(&emitMetricsFlag, "metrics", false, "Write EMF metric documents to stdout")
}

func runServe(cmd *cobra.Command, args []string) error {
	initStart := time.Now()
	if !emitMetricsFlag {
		metrics.SetOutput(io.Discard)
	}

	rt, err := boot(cmd)
	if err != nil {
		return err
	}

	handler := httpapi.NewHandler(rt.Service, httpapi.Options{OriginVerifySecret: rt.Config.OriginVerifySecret})
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", rt.Config.Port),
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 180 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info().Msg("Shutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Warn().Err(err).Msg("Shutdown did not complete cleanly")
		}
	}()

	lambdaboot.StartupLog("adforge", initStart, rt).
		CommitHash(commitHash).
		BuildTime(buildTime).
		Config("port", fmt.Sprint(rt.Config.Port)).
		Log()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error().Err(err).Msg("Server failed")
		return err
	}
	return nil
}
