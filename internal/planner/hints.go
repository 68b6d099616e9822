// Package planner holds the pure stages of the suggestion pipeline: hint
// extraction, time slots, the group midpoint and venue ranking.
package planner

import (
	"strings"

	"nexum/internal/models"
)

// ChatVocabulary is checked against chat text in this order.
var ChatVocabulary = []string{
	"sushi", "pizza", "bowling", "hiking", "concert", "museum", "arcade",
	"pottery", "karaoke", "burger", "tacos", "ramen", "bar",
}

// Hints are topic keywords derived from chat or profiles.
type Hints struct {
	Keywords       []string `json:"keywords"`
	CandidateDates []string `json:"candidateDates"`
}

// ExtractFromChat returns every vocabulary word contained in any message,
// case-insensitively, in vocabulary order.
func ExtractFromChat(messages []*models.Message) Hints {
	texts := make([]string, 0, len(messages))
	for _, m := range messages {
		texts = append(texts, m.Text)
	}
	joined := strings.ToLower(strings.Join(texts, " "))

	keywords := []string{}
	for _, word := range ChatVocabulary {
		if strings.Contains(joined, word) {
			keywords = append(keywords, word)
		}
	}
	return Hints{Keywords: keywords, CandidateDates: []string{}}
}

// ExtractFromProfiles returns the lower-cased interests and bucket items of
// all profiles, deduplicated by first occurrence.
func ExtractFromProfiles(profiles []*models.Profile) Hints {
	seen := make(map[string]struct{})
	keywords := []string{}
	add := func(s string) {
		k := strings.ToLower(strings.TrimSpace(s))
		if k == "" {
			return
		}
		if _, ok := seen[k]; ok {
			return
		}
		seen[k] = struct{}{}
		keywords = append(keywords, k)
	}

	for _, p := range profiles {
		for _, in := range p.Interests {
			add(in.Tag)
		}
		for _, b := range p.Bucket {
			add(b.Item)
		}
	}
	return Hints{Keywords: keywords, CandidateDates: []string{}}
}
