// Package picker selects the day's vehicle index reproducibly: same date,
// same offset, same set size, same index, on any host, forever. Historical
// picks are verified against this exact construction, so the digest algorithm
// and its date encoding are part of the contract.
package picker

import (
	"crypto/sha256"
	"math/big"
	"time"

	"thundle/internal/thundle/model"
)

const hashDateLayout = "2006-01-02"

// A variant year is 52 weeks flat, not a calendar year. Intentional: the
// divergence between variants stays date-stable with no leap-year drift.
const yearOffset = 52 * 7 * 24 * time.Hour

// PickIndex returns today's index into a set of n vehicles for the given
// variant offset.
func PickIndex(n, offsetYears int) (int, error) {
	return PickIndexAt(time.Now().UTC(), n, offsetYears)
}

// PickIndexAt is PickIndex anchored at an explicit date.
func PickIndexAt(now time.Time, n, offsetYears int) (int, error) {
	if n <= 0 {
		return 0, model.ErrEmptyVehicleSet
	}

	effective := now.UTC().Add(time.Duration(offsetYears) * yearOffset)
	digest := sha256.Sum256([]byte(effective.Format(hashDateLayout)))

	idx := new(big.Int).SetBytes(digest[:])
	idx.Mod(idx, big.NewInt(int64(n)))
	return int(idx.Int64()), nil
}
