package planner

import (
	"sort"

	"nexum/internal/models"
)

// MaxRanked is the number of venues Rank keeps.
const MaxRanked = 3

// Rank orders venues by closeness to the members' midpoint and keeps the top
// MaxRanked. Equal distances keep their input order. Slots do not affect the
// score yet.
func Rank(venues []models.Venue, _ []TimeSlot, members []*models.GroupMember) []models.Venue {
	center := Midpoint(members)

	type scored struct {
		venue models.Venue
		score float64
	}
	candidates := make([]scored, len(venues))
	for i, v := range venues {
		candidates[i] = scored{venue: v, score: -Distance(center, models.Point{Lat: v.Lat, Lng: v.Lng})}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	n := len(candidates)
	if n > MaxRanked {
		n = MaxRanked
	}
	ranked := make([]models.Venue, n)
	for i := 0; i < n; i++ {
		ranked[i] = candidates[i].venue
	}
	return ranked
}
