package pipeline

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"thundle/internal/thundle/model"
)

// pageLimit is the fixed page size the catalog API is queried with.
const pageLimit = 200

// Extractor pulls raw vehicle records off the paginated catalog API.
type Extractor struct {
	Log    *zap.Logger
	Client *resty.Client
}

func NewExtractor(log *zap.Logger, baseURL string, timeout time.Duration) *Extractor {
	return &Extractor{
		Log:    log,
		Client: resty.New().SetBaseURL(baseURL).SetTimeout(timeout),
	}
}

// Extract fetches every page in the inclusive [startPage, endPage] range,
// preserving page order and intra-page order. No transformation, no retries:
// the first page that errors or times out fails the whole extraction and the
// caller decides whether to run the batch again.
func (e *Extractor) Extract(ctx context.Context, startPage, endPage int) ([]model.RawVehicle, error) {
	var all []model.RawVehicle
	for page := startPage; page <= endPage; page++ {
		e.Log.Info("Fetching catalog page",
			zap.Int("page", page),
			zap.Int("limit", pageLimit),
		)

		var records []model.RawVehicle
		resp, err := e.Client.R().
			SetContext(ctx).
			SetQueryParams(map[string]string{
				"limit": strconv.Itoa(pageLimit),
				"page":  strconv.Itoa(page),
			}).
			SetResult(&records).
			Get("/vehicles")
		if err != nil {
			return nil, fmt.Errorf("fetch catalog page %d: %w", page, err)
		}
		if resp.IsError() {
			return nil, fmt.Errorf("fetch catalog page %d: unexpected status %s", page, resp.Status())
		}

		all = append(all, records...)
	}
	return all, nil
}
