package main

import (
	"context"
	"time"

	"go.uber.org/zap"

	"thundle/internal/middleware/logger"
	"thundle/internal/thundle/api"
	"thundle/internal/thundle/dailycache"
	"thundle/internal/thundle/helper"
	"thundle/internal/thundle/pipeline"
	"thundle/internal/thundle/scheduler"
	"thundle/pkg/mongodb"
)

func main() {
	log, err := logger.NewLogger()
	if err != nil {
		panic(err)
	}
	defer func() {
		_ = log.Sync()
	}()

	ctx := context.Background()

	log.Info("Starting thundle service...")

	cfg, err := mongodb.LoadConfig("config/config.yaml")
	if err != nil {
		panic(err)
	}

	stores := helper.MustMongo(
		ctx,
		cfg.Mongo.Host,
		cfg.Mongo.DBName,
		cfg.Mongo.Username,
		cfg.Mongo.Password,
		cfg.Mongo.AuthSource,
	)

	worker := &scheduler.Worker{
		Log: log,
		Pipeline: &pipeline.Pipeline{
			Log:       log,
			Extractor: pipeline.NewExtractor(log, cfg.Catalog.BaseURL, time.Duration(cfg.Catalog.TimeoutSeconds)*time.Second),
			Enricher:  pipeline.NewEnricher(log, cfg.Wiki.BaseURL, time.Duration(cfg.Wiki.TimeoutSeconds)*time.Second),
			Stores:    stores,
			StartPage: cfg.Pipeline.StartPage,
			EndPage:   cfg.Pipeline.EndPage,
		},
	}
	go worker.Run(ctx)

	srv := &api.Server{
		Log:    log,
		Stores: stores,
		Cache:  dailycache.New(log, stores.DailyPicks),
	}
	r := srv.Router()
	_ = r.SetTrustedProxies(nil)
	log.Info("Thundle service is running", zap.String("address", cfg.API.Addr))
	_ = r.Run(cfg.API.Addr)
}
