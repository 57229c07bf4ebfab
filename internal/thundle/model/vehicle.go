package model

import (
	"fmt"
	"time"
)

// RawVehicle is one catalog record exactly as the upstream API returned it.
type RawVehicle map[string]any

// Mode is the coarse partition a vehicle belongs to.
type Mode string

const (
	ModeGround     Mode = "ground"
	ModeAir        Mode = "air"
	ModeNaval      Mode = "naval"
	ModeHelicopter Mode = "helicopter"
)

// ModeKeyAll selects every mode when filtering; it is never stored on a vehicle.
const ModeKeyAll = "all"

var modeByVehicleType = map[string]Mode{
	"fighter": ModeAir,
	"assault": ModeAir,
	"bomber":  ModeAir,

	"light_tank":     ModeGround,
	"medium_tank":    ModeGround,
	"heavy_tank":     ModeGround,
	"spaa":           ModeGround,
	"tank_destroyer": ModeGround,

	"attack_helicopter":  ModeHelicopter,
	"utility_helicopter": ModeHelicopter,

	"destroyer":  ModeNaval,
	"battleship": ModeNaval,
	"cruiser":    ModeNaval,
	"frigate":    ModeNaval,
	"boat":       ModeNaval,
}

// ModeForVehicleType resolves the partition for an upstream vehicle_type.
// Types outside the table are a per-record error, never a silent default.
func ModeForVehicleType(vehicleType string) (Mode, error) {
	mode, ok := modeByVehicleType[vehicleType]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnmappedVehicleType, vehicleType)
	}
	return mode, nil
}

// ValidModeKey reports whether s is usable as a pick partition key.
func ValidModeKey(s string) bool {
	if s == ModeKeyAll {
		return true
	}
	switch Mode(s) {
	case ModeGround, ModeAir, ModeNaval, ModeHelicopter:
		return true
	}
	return false
}

// GameOffset returns the year offset for a game variant. The two games share
// one vehicle set but must never pick the same index on the same day.
func GameOffset(game string) (int, bool) {
	switch game {
	case "blur":
		return 0, true
	case "clue":
		return 1, true
	}
	return 0, false
}

// Vehicle is one refined catalog record as served to consumers.
type Vehicle struct {
	ID                string    `bson:"_id" json:"id"`
	Country           string    `bson:"country" json:"country"`
	VehicleType       string    `bson:"vehicle_type" json:"vehicle_type"`
	Tier              int       `bson:"tier" json:"tier"`
	RealisticBR       float64   `bson:"realistic_br" json:"realistic_br"`
	RealisticGroundBR float64   `bson:"realistic_ground_br" json:"realistic_ground_br"`
	IsEvent           bool      `bson:"is_event" json:"is_event"`
	IsPremium         bool      `bson:"is_premium" json:"is_premium"`
	IsPack            bool      `bson:"is_pack" json:"is_pack"`
	IsMarketplace     bool      `bson:"is_marketplace" json:"is_marketplace"`
	IsSquadron        bool      `bson:"is_squadron" json:"is_squadron"`
	ReleaseDate       time.Time `bson:"release_date" json:"release_date"`
	ImageURL          string    `bson:"image_url" json:"image_url"`
	Mode              Mode      `bson:"mode" json:"mode"`
	Name              string    `bson:"name" json:"name"`
	Description       string    `bson:"description,omitempty" json:"description,omitempty"`
}

// VehicleOption is the id/name pair served for autocomplete.
type VehicleOption struct {
	ID   string `bson:"_id" json:"id"`
	Name string `bson:"name" json:"name"`
}
