package places

import (
	"context"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"nexum/internal/models"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func TestStub(t *testing.T) {
	center := models.Point{Lat: -33.865, Lng: 151.19}
	venues, err := Stub{}.Search(context.Background(), Query{Center: center, Keywords: []string{"sushi", "bowling"}})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(venues) != 3 {
		t.Fatalf("Expected 3 venues, got %d", len(venues))
	}
	if venues[0].Name != "sushi spot A" || venues[2].URL != "https://example.com/c" {
		t.Errorf("Unexpected venues: %+v", venues)
	}
	if math.Abs(venues[1].Lat-(center.Lat-0.004)) > 1e-9 || math.Abs(venues[1].Lng-(center.Lng+0.003)) > 1e-9 {
		t.Errorf("Unexpected offset for spot B: %+v", venues[1])
	}

	def, _ := Stub{}.Search(context.Background(), Query{Center: center})
	if def[0].Name != "meetup spot A" {
		t.Errorf("Expected default term, got %s", def[0].Name)
	}
}

func TestNominatim_Search(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			http.NotFound(w, r)
			return
		}
		gotQuery = r.URL.Query().Get("q")
		if r.Header.Get("User-Agent") == "" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"name":"Sushi Train","display_name":"Sushi Train, George St","lat":"-33.87","lon":"151.21","osm_type":"node","osm_id":42},
			{"name":"","display_name":"Sushi Hub, Pitt St, Sydney","lat":"-33.86","lon":"151.20","osm_type":"way","osm_id":7},
			{"name":"Broken","lat":"x","lon":"151.2"}
		]`))
	}))
	defer srv.Close()

	n := NewNominatim(NominatimConfig{BaseURL: srv.URL}, zap.NewNop())
	venues, err := n.Search(context.Background(), Query{Center: models.Point{Lat: -33.865, Lng: 151.19}, Keywords: []string{"sushi"}})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if gotQuery != "sushi" {
		t.Errorf("Expected q=sushi, got %q", gotQuery)
	}
	if len(venues) != 2 {
		t.Fatalf("Expected 2 venues, got %d", len(venues))
	}
	if venues[0].URL != "https://www.openstreetmap.org/node/42" {
		t.Errorf("Unexpected URL: %s", venues[0].URL)
	}
	if venues[1].Name != "Sushi Hub" {
		t.Errorf("Expected name from display_name, got %q", venues[1].Name)
	}
}

func TestNominatim_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	n := NewNominatim(NominatimConfig{BaseURL: srv.URL}, zap.NewNop())
	if _, err := n.Search(context.Background(), Query{}); err == nil {
		t.Fatal("Expected error for 503 response")
	}
}

func TestResilient_NominatimStatusRetries(t *testing.T) {
	cases := []struct {
		status int
		calls  int32
	}{
		{http.StatusForbidden, 1},
		{http.StatusBadRequest, 1},
		{http.StatusTooManyRequests, 2},
		{http.StatusBadGateway, 2},
	}

	for _, tc := range cases {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(tc.status)
		}))

		r := NewResilient(NewNominatim(NominatimConfig{BaseURL: srv.URL}, zap.NewNop()), time.Second, zap.NewNop())
		if _, err := r.Search(context.Background(), Query{}); err == nil {
			t.Errorf("status %d: expected an error", tc.status)
		}
		if got := calls.Load(); got != tc.calls {
			t.Errorf("status %d: expected %d requests, got %d", tc.status, tc.calls, got)
		}
		srv.Close()
	}
}

type flakySearcher struct {
	calls    int
	failures int
}

func (f *flakySearcher) Search(ctx context.Context, q Query) ([]models.Venue, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, errors.New("boom")
	}
	return []models.Venue{{Name: "ok"}}, nil
}

func TestResilient_RetriesOnce(t *testing.T) {
	flaky := &flakySearcher{failures: 1}
	r := NewResilient(flaky, time.Second, zap.NewNop())

	venues, err := r.Search(context.Background(), Query{})
	if err != nil {
		t.Fatalf("Expected retry to succeed, got %v", err)
	}
	if len(venues) != 1 || flaky.calls != 2 {
		t.Errorf("Expected 2 calls and 1 venue, got %d calls, %d venues", flaky.calls, len(venues))
	}

	always := &flakySearcher{failures: 10}
	r = NewResilient(always, time.Second, zap.NewNop())
	if _, err := r.Search(context.Background(), Query{}); err == nil {
		t.Fatal("Expected error after retry is exhausted")
	}
	if always.calls != 2 {
		t.Errorf("Expected exactly 2 attempts, got %d", always.calls)
	}
}

type slowSearcher struct{}

func (slowSearcher) Search(ctx context.Context, q Query) ([]models.Venue, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestResilient_Timeout(t *testing.T) {
	r := NewResilient(slowSearcher{}, 20*time.Millisecond, zap.NewNop())
	start := time.Now()
	if _, err := r.Search(context.Background(), Query{}); err == nil {
		t.Fatal("Expected timeout error")
	}
	if time.Since(start) > 5*time.Second {
		t.Error("Search did not respect the attempt timeout")
	}
}

// fakeRedis implements the two commands Cached uses.
type fakeRedis struct {
	redis.Cmdable
	data map[string]string
	sets int
}

func (f *fakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) *redis.StatusCmd {
	f.data[key] = string(value.([]byte))
	f.sets++
	return redis.NewStatusResult("OK", nil)
}

func TestCached_ReadThrough(t *testing.T) {
	rdb := &fakeRedis{data: map[string]string{}}
	inner := &flakySearcher{}
	c := NewCached(inner, rdb, time.Minute, zap.NewNop())
	q := Query{Center: models.Point{Lat: -33.8651, Lng: 151.1902}, Keywords: []string{"sushi"}}

	for i := 0; i < 3; i++ {
		venues, err := c.Search(context.Background(), q)
		if err != nil {
			t.Fatalf("Search failed: %v", err)
		}
		if len(venues) != 1 || venues[0].Name != "ok" {
			t.Fatalf("Unexpected venues: %+v", venues)
		}
	}
	if inner.calls != 1 {
		t.Errorf("Expected 1 upstream call, got %d", inner.calls)
	}
	if rdb.sets != 1 {
		t.Errorf("Expected 1 cache write, got %d", rdb.sets)
	}
}

func TestNewSearcher(t *testing.T) {
	s, err := NewSearcher(Options{}, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSearcher failed: %v", err)
	}
	if _, ok := s.(Stub); !ok {
		t.Errorf("Expected stub by default, got %T", s)
	}
	if _, err := NewSearcher(Options{Provider: "yelp"}, zap.NewNop()); err == nil {
		t.Error("Expected error for unknown provider")
	}
}
