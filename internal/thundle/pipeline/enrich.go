package pipeline

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"thundle/internal/thundle/model"
)

// enrichWorkers caps how many wiki detail requests are in flight at once.
const enrichWorkers = 5

// Structural anchors on a unit detail page.
const (
	nameSelector        = ".game-unit_name"
	descriptionSelector = ".game-unit_desc"
)

// Enricher fills in name and description by fetching one wiki detail page per
// vehicle. The wiki is rate limited, so fetches are paced and fanned out over
// a small fixed worker pool.
type Enricher struct {
	Log     *zap.Logger
	Client  *resty.Client
	limiter *rate.Limiter
}

func NewEnricher(log *zap.Logger, baseURL string, timeout time.Duration) *Enricher {
	return &Enricher{
		Log:     log,
		Client:  resty.New().SetBaseURL(baseURL).SetTimeout(timeout),
		limiter: rate.NewLimiter(rate.Every(200*time.Millisecond), enrichWorkers),
	}
}

type unitDetail struct {
	id          string
	name        string
	description string
}

// Enrich fetches details for every vehicle and merges them back by identifier.
// Input order is preserved and every input yields exactly one output: a failed
// fetch or parse degrades that one record to an empty name and description
// instead of aborting the batch. Cancelling ctx abandons queued fetches;
// vehicles whose detail never arrived come out degraded the same way.
func (e *Enricher) Enrich(ctx context.Context, vehicles []model.Vehicle) []model.Vehicle {
	jobs := make(chan string)
	results := make(chan unitDetail, len(vehicles))

	var wg sync.WaitGroup
	for i := 0; i < enrichWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for id := range jobs {
				results <- e.fetchDetail(ctx, id)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, v := range vehicles {
			select {
			case <-ctx.Done():
				return
			case jobs <- v.ID:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	byID := make(map[string]unitDetail, len(vehicles))
	for d := range results {
		byID[d.id] = d
	}

	out := make([]model.Vehicle, len(vehicles))
	for i, v := range vehicles {
		d := byID[v.ID]
		v.Name = d.name
		v.Description = d.description
		out[i] = v
	}
	return out
}

func (e *Enricher) fetchDetail(ctx context.Context, id string) unitDetail {
	if err := e.limiter.Wait(ctx); err != nil {
		return unitDetail{id: id}
	}

	resp, err := e.Client.R().SetContext(ctx).Get("/unit/" + id)
	if err != nil {
		e.Log.Warn("Wiki fetch failed",
			zap.String("identifier", id),
			zap.Error(err),
		)
		return unitDetail{id: id}
	}
	if resp.IsError() {
		e.Log.Warn("Wiki fetch failed",
			zap.String("identifier", id),
			zap.String("status", resp.Status()),
		)
		return unitDetail{id: id}
	}

	name, description, err := parseUnitPage(resp.Body())
	if err != nil {
		e.Log.Warn("Wiki parse failed",
			zap.String("identifier", id),
			zap.Error(err),
		)
		return unitDetail{id: id}
	}

	return unitDetail{id: id, name: name, description: description}
}

// parseUnitPage extracts the display name and description blocks out of a
// unit detail page.
func parseUnitPage(page []byte) (name, description string, err error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return "", "", err
	}

	name = cleanName(doc.Find(nameSelector).First().Text())
	if name == "" {
		return "", "", errors.New("name block not found")
	}
	description = cleanDescription(doc.Find(descriptionSelector).First().Text())
	return name, description, nil
}

// cleanName drops the country marker glyphs the wiki prefixes unit names with.
func cleanName(s string) string {
	s = strings.TrimLeftFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	return strings.TrimSpace(s)
}

var controlGlyphs = strings.NewReplacer(
	"\u200b", "", // zero width space
	"\ufeff", "", // byte order mark
	"\u00a0", " ", // non-breaking space
)

func cleanDescription(s string) string {
	return strings.TrimSpace(controlGlyphs.Replace(s))
}
