package pipeline

import "thundle/internal/thundle/model"

// Clean drops any record still missing a name or image URL after enrichment.
// Pure order-preserving filter; survivors are passed through untouched.
func Clean(vehicles []model.Vehicle) []model.Vehicle {
	out := make([]model.Vehicle, 0, len(vehicles))
	for _, v := range vehicles {
		if v.Name == "" || v.ImageURL == "" {
			continue
		}
		out = append(out, v)
	}
	return out
}
