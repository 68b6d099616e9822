// Package places finds candidate meetup venues near a point.
package places

import (
	"context"
	"fmt"
	"time"

	"nexum/internal/models"

	"go.uber.org/zap"
)

// Query describes a venue search around a center point.
type Query struct {
	Center   models.Point
	Keywords []string
	// Window is the proposed meetup time. Providers may ignore it.
	Window *Window
}

type Window struct {
	Start time.Time
	End   time.Time
}

// Term is the single search term used for q: the first keyword, or "meetup".
func (q Query) Term() string {
	if len(q.Keywords) > 0 && q.Keywords[0] != "" {
		return q.Keywords[0]
	}
	return "meetup"
}

// Searcher returns venues near a point that match the query's keywords.
// Implementations may return fewer venues than asked for, including none.
type Searcher interface {
	Search(ctx context.Context, q Query) ([]models.Venue, error)
}

// Provider names accepted in configuration.
const (
	ProviderStub      = "stub"
	ProviderNominatim = "nominatim"
)

// Options configures NewSearcher.
type Options struct {
	Provider string
	BaseURL  string
	Limit    int
	Timeout  time.Duration
}

// NewSearcher builds the configured provider wrapped with timeout and retry.
func NewSearcher(opts Options, logger *zap.Logger) (Searcher, error) {
	var base Searcher
	switch opts.Provider {
	case "", ProviderStub:
		return Stub{}, nil
	case ProviderNominatim:
		base = NewNominatim(NominatimConfig{BaseURL: opts.BaseURL, Limit: opts.Limit}, logger)
	default:
		return nil, fmt.Errorf("unknown places provider %q", opts.Provider)
	}
	return NewResilient(base, opts.Timeout, logger), nil
}
