package main

import (
	"context"
	"flag"
	"time"

	"formbuilder/internal/app"
	"formbuilder/internal/config"
	"formbuilder/internal/document"
	"formbuilder/internal/logger"
	"formbuilder/internal/service"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// seed resets the stored form to the default document. Submissions are
// left as they are.
func main() {
	configPath := flag.String("config", "", "path to config.yaml")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		panic(err)
	}
	log := logger.New(cfg)
	defer log.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	stores, err := app.OpenStores(ctx, cfg, log)
	if err != nil {
		log.Fatal("failed to open store", zap.Error(err))
	}
	defer stores.Close()

	state := app.New(stores.KV, cfg.Store.Namespace, uuid.NewString, log)
	if err := state.Load(ctx); err != nil {
		log.Fatal("failed to load state", zap.Error(err))
	}

	form, err := service.NewFormService(state, document.NewEditor(uuid.NewString), nil, log).Reset(ctx)
	if err != nil {
		log.Fatal("failed to reset form", zap.Error(err))
	}

	log.Info("form seeded",
		zap.String("store", cfg.Store.Backend),
		zap.String("namespace", cfg.Store.Namespace),
		zap.String("title", form.Title),
		zap.Int("questions", len(form.Questions)),
	)
}
