package pipeline

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"thundle/internal/thundle/model"
	"thundle/internal/thundle/picker"
)

func TestExtractPaginates(t *testing.T) {
	var pagesSeen []string
	catalog := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/vehicles", r.URL.Path)
		require.Equal(t, "200", r.URL.Query().Get("limit"))
		page := r.URL.Query().Get("page")
		pagesSeen = append(pagesSeen, page)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]model.RawVehicle{
			{"identifier": "vehicle_" + page, "vehicle_type": "fighter"},
		})
	}))
	defer catalog.Close()

	e := NewExtractor(zap.NewNop(), catalog.URL, 2*time.Second)
	raw, err := e.Extract(context.Background(), 0, 2)
	require.NoError(t, err)
	require.Equal(t, []string{"0", "1", "2"}, pagesSeen)
	require.Len(t, raw, 3)
	require.Equal(t, "vehicle_0", raw[0]["identifier"])
	require.Equal(t, "vehicle_2", raw[2]["identifier"])
}

func TestExtractPageFailureAborts(t *testing.T) {
	catalog := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "1" {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer catalog.Close()

	e := NewExtractor(zap.NewNop(), catalog.URL, 2*time.Second)
	_, err := e.Extract(context.Background(), 0, 3)
	require.Error(t, err)
	require.Contains(t, err.Error(), "page 1")
}

// Two raw records, one valid and one with an unmapped category: the refined
// set holds exactly the valid one, and the day's pick lands on it.
func TestRefineEndToEnd(t *testing.T) {
	wiki := wikiServer(map[string]string{
		"tank_a": unitPage("▃ M1 Abrams", "A main battle tank."),
	})
	defer wiki.Close()

	raw := []model.RawVehicle{
		rawTankA(),
		{
			"identifier":   "sub_b",
			"country":      "Germany",
			"vehicle_type": "submarine",
		},
	}

	normalized := Normalize(zap.NewNop(), raw)
	require.Len(t, normalized, 1)

	enricher := NewEnricher(zap.NewNop(), wiki.URL, 2*time.Second)
	enriched := enricher.Enrich(context.Background(), normalized)
	require.Len(t, enriched, 1)

	refined := Clean(enriched)
	require.Len(t, refined, 1)
	require.Equal(t, "tank_a", refined[0].ID)
	require.Equal(t, "M1 Abrams", refined[0].Name)
	require.Equal(t, model.ModeGround, refined[0].Mode)

	day := time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)
	idx, err := picker.PickIndexAt(day, len(refined), 0)
	require.NoError(t, err)
	require.Equal(t, 0, idx)
	require.Equal(t, "tank_a", refined[idx].ID)
}
