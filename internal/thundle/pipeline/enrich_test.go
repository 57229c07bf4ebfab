package pipeline

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"thundle/internal/thundle/model"
)

func unitPage(name, description string) string {
	return fmt.Sprintf(
		`<html><body><div class="game-unit_name">%s</div><div class="game-unit_desc">%s</div></body></html>`,
		name, description,
	)
}

func wikiServer(pages map[string]string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimPrefix(r.URL.Path, "/unit/")
		page, ok := pages[id]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(page))
	}))
}

func normalizedVehicle(id string) model.Vehicle {
	return model.Vehicle{
		ID:       id,
		Country:  "USA",
		Mode:     model.ModeGround,
		ImageURL: ImageURL(id),
	}
}

func TestEnrichMergesByIdentifier(t *testing.T) {
	srv := wikiServer(map[string]string{
		"tank_a": unitPage("M1 Abrams", "A main battle tank."),
		"tank_b": unitPage("Leopard 2", "Another main battle tank."),
		"tank_c": unitPage("T-80", "A third one."),
	})
	defer srv.Close()

	e := NewEnricher(zap.NewNop(), srv.URL, 2*time.Second)
	in := []model.Vehicle{
		normalizedVehicle("tank_a"),
		normalizedVehicle("tank_b"),
		normalizedVehicle("tank_c"),
	}

	out := e.Enrich(context.Background(), in)
	require.Len(t, out, 3)
	require.Equal(t, "tank_a", out[0].ID)
	require.Equal(t, "M1 Abrams", out[0].Name)
	require.Equal(t, "A main battle tank.", out[0].Description)
	require.Equal(t, "tank_b", out[1].ID)
	require.Equal(t, "Leopard 2", out[1].Name)
	require.Equal(t, "tank_c", out[2].ID)
	require.Equal(t, "T-80", out[2].Name)
}

func TestEnrichCountPreservedOnFailures(t *testing.T) {
	srv := wikiServer(map[string]string{
		"tank_a": unitPage("M1 Abrams", "desc"),
		"tank_c": unitPage("T-80", "desc"),
	})
	defer srv.Close()

	e := NewEnricher(zap.NewNop(), srv.URL, 2*time.Second)
	in := []model.Vehicle{
		normalizedVehicle("tank_a"),
		normalizedVehicle("tank_b"), // 404s
		normalizedVehicle("tank_c"),
		normalizedVehicle("tank_d"), // 404s
	}

	out := e.Enrich(context.Background(), in)
	require.Len(t, out, 4, "every input yields exactly one output")

	require.Equal(t, "M1 Abrams", out[0].Name)
	require.Empty(t, out[1].Name, "failed fetch degrades the record")
	require.Empty(t, out[1].Description)
	require.Equal(t, "T-80", out[2].Name)
	require.Empty(t, out[3].Name)

	// Other fields stay intact on the degraded records.
	require.Equal(t, "tank_b", out[1].ID)
	require.Equal(t, ImageURL("tank_b"), out[1].ImageURL)
}

func TestEnrichStripsNameDecoration(t *testing.T) {
	srv := wikiServer(map[string]string{
		"tank_a": unitPage("▃ M1 Abrams", "desc"),
	})
	defer srv.Close()

	e := NewEnricher(zap.NewNop(), srv.URL, 2*time.Second)
	out := e.Enrich(context.Background(), []model.Vehicle{normalizedVehicle("tank_a")})
	require.Len(t, out, 1)
	require.Equal(t, "M1 Abrams", out[0].Name)
}

func TestEnrichStripsControlGlyphs(t *testing.T) {
	srv := wikiServer(map[string]string{
		"tank_a": unitPage("M1 Abrams", "A\u00a0tank\u200b with\ufeff history."),
	})
	defer srv.Close()

	e := NewEnricher(zap.NewNop(), srv.URL, 2*time.Second)
	out := e.Enrich(context.Background(), []model.Vehicle{normalizedVehicle("tank_a")})
	require.Len(t, out, 1)
	require.Equal(t, "A tank with history.", out[0].Description)
}

func TestEnrichTimeoutDegradesRecord(t *testing.T) {
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/tank_x") {
			time.Sleep(500 * time.Millisecond)
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(unitPage("M1 Abrams", "desc")))
	}))
	defer slow.Close()

	e := NewEnricher(zap.NewNop(), slow.URL, 100*time.Millisecond)
	out := e.Enrich(context.Background(), []model.Vehicle{
		normalizedVehicle("tank_a"),
		normalizedVehicle("tank_x"),
	})
	require.Len(t, out, 2)
	require.Equal(t, "M1 Abrams", out[0].Name)
	require.Empty(t, out[1].Name, "timed out fetch degrades, not aborts")

	// The cleaner then excludes the degraded record.
	refined := Clean(out)
	require.Len(t, refined, 1)
	require.Equal(t, "tank_a", refined[0].ID)
}

func TestEnrichCancelledBatch(t *testing.T) {
	srv := wikiServer(map[string]string{})
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e := NewEnricher(zap.NewNop(), srv.URL, time.Second)
	out := e.Enrich(ctx, []model.Vehicle{
		normalizedVehicle("tank_a"),
		normalizedVehicle("tank_b"),
	})
	// A cancelled batch still returns one slot per input, just unenriched.
	require.Len(t, out, 2)
}

func TestParseUnitPage(t *testing.T) {
	name, description, err := parseUnitPage([]byte(unitPage("␗ Type 59", "A Chinese tank.")))
	require.NoError(t, err)
	require.Equal(t, "Type 59", name)
	require.Equal(t, "A Chinese tank.", description)
}

func TestParseUnitPageMissingName(t *testing.T) {
	_, _, err := parseUnitPage([]byte(`<html><body><p>not a unit page</p></body></html>`))
	require.Error(t, err)
}
