package places

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"nexum/internal/models"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

const (
	defaultNominatimURL = "https://nominatim.openstreetmap.org"
	// searchRadius is half the side of the bounding box searched, in degrees.
	searchRadius = 0.05
)

type NominatimConfig struct {
	BaseURL   string
	Limit     int
	UserAgent string
}

// Nominatim searches OpenStreetMap through the Nominatim API.
type Nominatim struct {
	baseURL    string
	limit      int
	userAgent  string
	httpClient *http.Client
	logger     *zap.Logger
}

type nominatimPlace struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	OSMType     string `json:"osm_type"`
	OSMID       int64  `json:"osm_id"`
}

func NewNominatim(cfg NominatimConfig, logger *zap.Logger) *Nominatim {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultNominatimURL
	}
	if cfg.Limit <= 0 {
		cfg.Limit = 5
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "nexum-meetup-planner/1.0"
	}

	logger.Info("Nominatim venue search initialized",
		zap.String("base_url", cfg.BaseURL),
		zap.Int("limit", cfg.Limit))

	return &Nominatim{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		limit:      cfg.Limit,
		userAgent:  cfg.UserAgent,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}
}

func (n *Nominatim) Search(ctx context.Context, q Query) ([]models.Venue, error) {
	params := url.Values{}
	params.Set("format", "jsonv2")
	params.Set("q", q.Term())
	params.Set("viewbox", fmt.Sprintf("%f,%f,%f,%f",
		q.Center.Lng-searchRadius, q.Center.Lat+searchRadius,
		q.Center.Lng+searchRadius, q.Center.Lat-searchRadius))
	params.Set("bounded", "1")
	params.Set("limit", strconv.Itoa(n.limit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", n.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("nominatim request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		n.logger.Error("Nominatim API error",
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(body)))
		err := fmt.Errorf("nominatim returned status %d", resp.StatusCode)
		// Client errors other than throttling will not change on retry.
		if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			return nil, backoff.Permanent(err)
		}
		return nil, err
	}

	var found []nominatimPlace
	if err := json.Unmarshal(body, &found); err != nil {
		return nil, fmt.Errorf("failed to parse nominatim response: %w", err)
	}

	venues := make([]models.Venue, 0, len(found))
	for _, p := range found {
		lat, errLat := strconv.ParseFloat(p.Lat, 64)
		lng, errLng := strconv.ParseFloat(p.Lon, 64)
		if errLat != nil || errLng != nil {
			n.logger.Warn("Skipping place with bad coordinates", zap.String("name", p.DisplayName))
			continue
		}
		name := p.Name
		if name == "" {
			name, _, _ = strings.Cut(p.DisplayName, ",")
		}
		venues = append(venues, models.Venue{
			Name: name,
			Lat:  lat,
			Lng:  lng,
			URL:  osmURL(p.OSMType, p.OSMID),
		})
	}

	n.logger.Debug("Nominatim search finished",
		zap.String("term", q.Term()),
		zap.Int("results", len(venues)))

	return venues, nil
}

func osmURL(osmType string, id int64) string {
	if osmType == "" || id == 0 {
		return ""
	}
	return fmt.Sprintf("https://www.openstreetmap.org/%s/%d", osmType, id)
}
