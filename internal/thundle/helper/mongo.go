package helper

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Stores struct {
	DB         *mongo.Database
	Vehicles   *mongo.Collection // refined record set, keyed by identifier
	DailyPicks *mongo.Collection // append-only daily pick cache
}

func MustMongo(ctx context.Context, host, dbname, username, password, authSource string) *Stores {
	clientOpts := options.Client().
		ApplyURI("mongodb://" + host).
		SetAuth(options.Credential{
			Username:   username,
			Password:   password,
			AuthSource: authSource,
		})

	cli, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		panic(err)
	}
	if err = cli.Ping(ctx, nil); err != nil {
		panic(err)
	}

	db := cli.Database(dbname)
	s := &Stores{
		DB:         db,
		Vehicles:   db.Collection("vehicles"),
		DailyPicks: db.Collection("daily_picks"),
	}
	ensureIndexes(ctx, s)
	return s
}

func ensureIndexes(ctx context.Context, s *Stores) {
	// vehicles: mode scopes every pick and listing query
	_, _ = s.Vehicles.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "mode", Value: 1}}},
		{Keys: bson.D{{Key: "name", Value: 1}}},
	})

	// daily_picks: the unique compound key turns the first-write-of-the-day
	// race into an atomic insert-if-absent at the storage layer.
	_, _ = s.DailyPicks.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "date", Value: 1},
				{Key: "mode", Value: 1},
				{Key: "game", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "createdAt", Value: 1}}},
	})
}
