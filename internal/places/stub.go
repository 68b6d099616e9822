package places

import (
	"context"

	"nexum/internal/models"
)

// Stub returns three fixed venues around the query center.
type Stub struct{}

var stubOffsets = []struct {
	suffix string
	dLat   float64
	dLng   float64
	url    string
}{
	{"A", 0.005, 0.005, "https://example.com/a"},
	{"B", -0.004, 0.003, "https://example.com/b"},
	{"C", 0.002, -0.006, "https://example.com/c"},
}

func (Stub) Search(_ context.Context, q Query) ([]models.Venue, error) {
	term := q.Term()
	venues := make([]models.Venue, 0, len(stubOffsets))
	for _, o := range stubOffsets {
		venues = append(venues, models.Venue{
			Name: term + " spot " + o.suffix,
			Lat:  q.Center.Lat + o.dLat,
			Lng:  q.Center.Lng + o.dLng,
			URL:  o.url,
		})
	}
	return venues, nil
}
