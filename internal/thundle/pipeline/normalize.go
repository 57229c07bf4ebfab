package pipeline

import (
	"errors"
	"time"

	"go.uber.org/zap"

	"thundle/internal/thundle/model"
)

const (
	imageBaseURL = "https://static.encyclopedia.warthunder.com/images/"
	imageSuffix  = ".png"

	releaseDateLayout = "2006-01-02"
)

// defaultReleaseDate substitutes an absent or unparseable upstream release
// date. Fixed constant: refined records never fail on a bad date.
var defaultReleaseDate = time.Date(1970, time.January, 1, 0, 0, 0, 0, time.UTC)

// Normalize projects the documented field subset out of raw records, coercing
// types and deriving mode and image URL. Order-preserving; records with an
// unmapped vehicle_type or a missing identifier are skipped and logged, the
// rest of the batch continues.
func Normalize(log *zap.Logger, raw []model.RawVehicle) []model.Vehicle {
	out := make([]model.Vehicle, 0, len(raw))
	for _, r := range raw {
		v, err := normalizeOne(r)
		if err != nil {
			log.Warn("Skipping catalog record",
				zap.String("identifier", stringField(r, "identifier")),
				zap.String("vehicleType", stringField(r, "vehicle_type")),
				zap.Error(err),
			)
			continue
		}
		out = append(out, v)
	}
	return out
}

func normalizeOne(r model.RawVehicle) (model.Vehicle, error) {
	id := stringField(r, "identifier")
	if id == "" {
		return model.Vehicle{}, errors.New("missing identifier")
	}

	vehicleType := stringField(r, "vehicle_type")
	mode, err := model.ModeForVehicleType(vehicleType)
	if err != nil {
		return model.Vehicle{}, err
	}

	return model.Vehicle{
		ID:                id,
		Country:           stringField(r, "country"),
		VehicleType:       vehicleType,
		Tier:              intField(r, "era"),
		RealisticBR:       floatField(r, "realistic_br"),
		RealisticGroundBR: floatField(r, "realistic_ground_br"),
		IsEvent:           boolField(r, "event"),
		IsPremium:         boolField(r, "is_premium"),
		IsPack:            boolField(r, "is_pack"),
		IsMarketplace:     boolField(r, "on_marketplace"),
		IsSquadron:        boolField(r, "squadron_vehicle"),
		ReleaseDate:       dateField(r, "release_date"),
		ImageURL:          ImageURL(id),
		Mode:              mode,
	}, nil
}

// ImageURL derives the canonical image reference from an identifier.
func ImageURL(id string) string {
	return imageBaseURL + id + imageSuffix
}

func stringField(r model.RawVehicle, key string) string {
	s, _ := r[key].(string)
	return s
}

func intField(r model.RawVehicle, key string) int {
	switch v := r[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}

func floatField(r model.RawVehicle, key string) float64 {
	switch v := r[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return 0
}

// boolField coerces any truthy upstream value to true; null, missing and
// every falsy value come out false.
func boolField(r model.RawVehicle, key string) bool {
	switch v := r[key].(type) {
	case bool:
		return v
	case string:
		return v != ""
	case float64:
		return v != 0
	case int:
		return v != 0
	}
	return false
}

func dateField(r model.RawVehicle, key string) time.Time {
	s, ok := r[key].(string)
	if !ok || s == "" {
		return defaultReleaseDate
	}
	t, err := time.ParseInLocation(releaseDateLayout, s, time.UTC)
	if err != nil {
		// Some records carry a full timestamp instead of a plain date.
		t, err = time.Parse(time.RFC3339, s)
		if err != nil {
			return defaultReleaseDate
		}
	}
	return t.UTC()
}
