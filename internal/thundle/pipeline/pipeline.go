package pipeline

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"thundle/internal/thundle/helper"
	"thundle/internal/thundle/model"
)

// Pipeline runs extract, normalize, enrich and clean, then loads the refined
// set into the vehicles collection.
type Pipeline struct {
	Log       *zap.Logger
	Extractor *Extractor
	Enricher  *Enricher
	Stores    *helper.Stores
	StartPage int
	EndPage   int
}

// Run executes one full pipeline pass. Per-record failures are absorbed by
// the stages; only transport and storage failures come back here, so the
// caller can retry the whole batch.
func (p *Pipeline) Run(ctx context.Context) error {
	raw, err := p.Extractor.Extract(ctx, p.StartPage, p.EndPage)
	if err != nil {
		return fmt.Errorf("extract: %w", err)
	}

	normalized := Normalize(p.Log, raw)
	enriched := p.Enricher.Enrich(ctx, normalized)
	refined := Clean(enriched)

	p.Log.Info("Refined vehicle set ready",
		zap.Int("raw", len(raw)),
		zap.Int("normalized", len(normalized)),
		zap.Int("refined", len(refined)),
	)

	return p.load(ctx, refined)
}

// load upserts the refined set keyed by identifier. $setOnInsert keeps the
// insert idempotent: re-runs and overlapping page ranges never duplicate or
// overwrite a stored vehicle.
func (p *Pipeline) load(ctx context.Context, vehicles []model.Vehicle) error {
	inserted := 0
	for _, v := range vehicles {
		res, err := p.Stores.Vehicles.UpdateOne(ctx,
			bson.M{"_id": v.ID},
			bson.M{"$setOnInsert": v},
			options.Update().SetUpsert(true),
		)
		if err != nil {
			return fmt.Errorf("store vehicle %s: %w", v.ID, err)
		}
		if res.UpsertedCount > 0 {
			inserted++
		}
	}

	p.Log.Info("Vehicle upload finished",
		zap.Int("total", len(vehicles)),
		zap.Int("inserted", inserted),
	)
	return nil
}
