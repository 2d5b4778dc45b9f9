package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"formbuilder/internal/app"
	"formbuilder/internal/document"
	"formbuilder/internal/metrics"
	"formbuilder/internal/service"
	"formbuilder/internal/transport/rest"
	"formbuilder/internal/transport/ws"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

// openState connects the configured store and loads the form and
// submissions from it
func openState(ctx context.Context) (*app.App, *app.Stores, error) {
	stores, err := app.OpenStores(ctx, cfg, log)
	if err != nil {
		return nil, nil, err
	}
	state := app.New(stores.KV, cfg.Store.Namespace, uuid.NewString, log)
	if err := state.Load(ctx); err != nil {
		stores.Close()
		return nil, nil, err
	}
	return state, stores, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	if cfg.AI.IsEnabled() {
		log.Info("AI generation configured", zap.String("model", cfg.AI.ModelName()))
	} else {
		log.Warn("AI generation disabled: API key not set")
	}

	state, stores, err := openState(ctx)
	if err != nil {
		return err
	}
	defer stores.Close()

	// Initialize WebSocket hub
	wsHub := ws.NewHub(log)
	defer wsHub.Close()

	m := metrics.New()

	// Initialize services (wsHub implements service.Broadcaster)
	formSvc := service.NewFormService(state, document.NewEditor(uuid.NewString), wsHub, log)
	generator := service.NewGeneratorService(&cfg.AI, log)
	tracker := service.NewGenerationTracker(generator, formSvc.MergeGenerated, cfg.AI.RatePerMinute, m, wsHub, log)
	fillSvc := service.NewFillService(state, stores.Sessions, m, wsHub, log)
	responsesSvc := service.NewResponsesService(state, cfg.Server.Location())
	viewSvc := service.NewViewService(state, cfg.Server.BaseURL, wsHub)

	router := rest.NewRouter(&rest.Container{
		FormService:       formSvc,
		GenerationTracker: tracker,
		FillService:       fillSvc,
		ResponsesService:  responsesSvc,
		ViewService:       viewSvc,
		WSHub:             wsHub,
		Metrics:           m,
		Logger:            log,
		AllowedOrigins:    cfg.CORS.AllowedOrigins,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting",
			zap.String("addr", srv.Addr),
			zap.String("store", cfg.Store.Backend),
			zap.String("namespace", cfg.Store.Namespace),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		return err
	}
	log.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	// let an in-flight generation land before the store closes
	if err := tracker.Wait(shutdownCtx); err != nil {
		log.Warn("generation still pending at shutdown", zap.Error(err))
	}

	log.Info("server exited")
	return nil
}
