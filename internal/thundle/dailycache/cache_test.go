package dailycache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"thundle/internal/thundle/model"
)

func TestTodayFormat(t *testing.T) {
	today := Today()
	require.Regexp(t, `^\d{2}_\d{2}_\d{4}$`, today)

	parsed, err := time.Parse(DateLayout, today)
	require.NoError(t, err)
	require.Equal(t, time.Now().UTC().Truncate(24*time.Hour), parsed)
}

func TestLookupRejectsInvalidKeys(t *testing.T) {
	c := New(zap.NewNop(), nil)
	ctx := context.Background()

	cases := []struct{ date, mode, game string }{
		{"", "all", "blur"},
		{"2024-01-01", "all", "blur"}, // wrong date form
		{"01_01_2024", "land", "blur"},
		{"01_01_2024", "all", "zoom"},
		{"1_1_2024", "all", "blur"},
	}
	for _, tc := range cases {
		_, err := c.Lookup(ctx, tc.date, tc.mode, tc.game)
		require.True(t, errors.Is(err, model.ErrInvalidKey),
			"date=%q mode=%q game=%q", tc.date, tc.mode, tc.game)
	}
}

func TestStoreRejectsInvalidKeys(t *testing.T) {
	c := New(zap.NewNop(), nil)
	ctx := context.Background()

	_, err := c.Store(ctx, model.Vehicle{ID: "tank_a"}, "land", "blur")
	require.True(t, errors.Is(err, model.ErrInvalidKey))

	_, err = c.Store(ctx, model.Vehicle{ID: "tank_a"}, "all", "zoom")
	require.True(t, errors.Is(err, model.ErrInvalidKey))
}

func TestArchiveRejectsInvalidKeys(t *testing.T) {
	c := New(zap.NewNop(), nil)
	ctx := context.Background()

	_, err := c.Archive(ctx, "31/12/2024", "all", "blur")
	require.True(t, errors.Is(err, model.ErrInvalidKey))

	_, err = c.Archive(ctx, "", "everything", "blur")
	require.True(t, errors.Is(err, model.ErrInvalidKey))
}

func TestArchiveFilter(t *testing.T) {
	require.Equal(t,
		bson.M{"mode": "ground", "game": "clue", "date": "31_12_2024"},
		archiveFilter("31_12_2024", "ground", "clue"),
	)

	// No date: every historical entry for the (mode, game) pair.
	require.Equal(t,
		bson.M{"mode": "all", "game": "blur"},
		archiveFilter("", "all", "blur"),
	)
}
