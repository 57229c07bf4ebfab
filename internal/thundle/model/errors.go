package model

import "errors"

var (
	// ErrUnmappedVehicleType marks a record whose vehicle_type has no
	// partition mapping; the record is skipped, the batch continues.
	ErrUnmappedVehicleType = errors.New("unmapped vehicle type")

	// ErrEmptyVehicleSet means a pick was requested against zero vehicles.
	ErrEmptyVehicleSet = errors.New("empty vehicle set")

	// ErrInvalidKey means a cache key the boundary should have validated.
	ErrInvalidKey = errors.New("invalid cache key")
)
