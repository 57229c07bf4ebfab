// Package dailycache owns the daily_picks collection: at most one pick per
// (date, mode, game) key per day, append-only, addressable by date forever.
package dailycache

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"thundle/internal/thundle/model"
)

// DateLayout is the cache key day format, matching the archive interface.
const DateLayout = "02_01_2006"

var datePattern = regexp.MustCompile(`^\d{2}_\d{2}_\d{4}$`)

// Today returns the current UTC day as a cache key date.
func Today() string {
	return time.Now().UTC().Format(DateLayout)
}

type Cache struct {
	Log  *zap.Logger
	Coll *mongo.Collection
}

func New(log *zap.Logger, coll *mongo.Collection) *Cache {
	return &Cache{Log: log, Coll: coll}
}

// validateKey fails fast on malformed keys. The HTTP boundary validates user
// input before calling in; anything invalid here is a programming error, not
// something to sanitize.
func validateKey(date, mode, game string) error {
	if date != "" && !datePattern.MatchString(date) {
		return fmt.Errorf("%w: date %q", model.ErrInvalidKey, date)
	}
	if !model.ValidModeKey(mode) {
		return fmt.Errorf("%w: mode %q", model.ErrInvalidKey, mode)
	}
	if _, ok := model.GameOffset(game); !ok {
		return fmt.Errorf("%w: game %q", model.ErrInvalidKey, game)
	}
	return nil
}

// Lookup returns the pick stored for the exact key, or nil when the day has
// not been materialized yet.
func (c *Cache) Lookup(ctx context.Context, date, mode, game string) (*model.DailyPick, error) {
	if date == "" {
		return nil, fmt.Errorf("%w: empty date", model.ErrInvalidKey)
	}
	if err := validateKey(date, mode, game); err != nil {
		return nil, err
	}

	var pick model.DailyPick
	err := c.Coll.FindOne(ctx, bson.M{"date": date, "mode": mode, "game": game}).Decode(&pick)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &pick, nil
}

// Store freezes the vehicle as today's pick for (mode, game). The unique
// index on (date, mode, game) makes the write an atomic insert-if-absent:
// when a concurrent first request of the day wins the race, the duplicate
// insert is a no-op and the winning entry is returned instead.
func (c *Cache) Store(ctx context.Context, vehicle model.Vehicle, mode, game string) (*model.DailyPick, error) {
	date := Today()
	if err := validateKey(date, mode, game); err != nil {
		return nil, err
	}

	pick := &model.DailyPick{
		Date:      date,
		Mode:      mode,
		Game:      game,
		Vehicle:   vehicle,
		CreatedAt: time.Now().UTC(),
	}

	_, err := c.Coll.InsertOne(ctx, pick)
	if mongo.IsDuplicateKeyError(err) {
		c.Log.Debug("Daily pick already stored",
			zap.String("date", date),
			zap.String("mode", mode),
			zap.String("game", game),
		)
		return c.Lookup(ctx, date, mode, game)
	}
	if err != nil {
		return nil, err
	}
	return pick, nil
}

// Archive returns the stored picks for (mode, game): the single entry for an
// exact date, or every historical entry when date is empty.
func (c *Cache) Archive(ctx context.Context, date, mode, game string) ([]model.DailyPick, error) {
	if err := validateKey(date, mode, game); err != nil {
		return nil, err
	}

	cur, err := c.Coll.Find(ctx, archiveFilter(date, mode, game))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var picks []model.DailyPick
	for cur.Next(ctx) {
		var pick model.DailyPick
		if err := cur.Decode(&pick); err != nil {
			c.Log.Error("Failed to decode daily pick", zap.Error(err))
			continue
		}
		picks = append(picks, pick)
	}
	return picks, cur.Err()
}

func archiveFilter(date, mode, game string) bson.M {
	filter := bson.M{"mode": mode, "game": game}
	if date != "" {
		filter["date"] = date
	}
	return filter
}
