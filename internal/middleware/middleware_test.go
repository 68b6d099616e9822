package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"nexum/internal/auth"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestLimiterStore_Allow(t *testing.T) {
	s := NewLimiterStore(5, 5, time.Hour)
	defer s.Stop()

	key := "ip:1.2.3.4"
	for i := 0; i < 5; i++ {
		if !s.Allow(key) {
			t.Fatalf("expected allow at iteration %d", i)
		}
	}
	if s.Allow(key) {
		t.Fatal("expected limiter to block after burst consumed")
	}
	if !s.Allow("ip:5.6.7.8") {
		t.Error("expected other keys to have their own budget")
	}

	s.evictIdle(time.Now().Add(time.Minute))
	s.mu.Lock()
	n := len(s.clients)
	s.mu.Unlock()
	if n != 0 {
		t.Errorf("expected idle clients to be evicted, %d left", n)
	}
}

func newClaimRouter(m *auth.JWTManager, allowDemo bool) *gin.Engine {
	r := gin.New()
	r.Use(LeaderClaim(m, allowDemo, zap.NewNop()))
	r.GET("/claim", func(c *gin.Context) {
		claim := ClaimFrom(c)
		c.JSON(http.StatusOK, gin.H{"user": claim.UserID, "demo": claim.DemoLeader})
	})
	return r
}

func TestLeaderClaim(t *testing.T) {
	m := auth.NewJWTManager("secret", time.Hour)
	token, _, _ := m.GenerateToken("user-1", "Alice")
	expired, _, _ := auth.NewJWTManager("secret", -time.Minute).GenerateToken("user-1", "Alice")

	cases := []struct {
		name    string
		allow   bool
		headers map[string]string
		status  int
		body    string
	}{
		{"anonymous", true, nil, http.StatusOK, `"demo":false`},
		{"demo header", true, map[string]string{DemoLeaderHeader: "true"}, http.StatusOK, `"demo":true`},
		{"demo header disabled", false, map[string]string{DemoLeaderHeader: "true"}, http.StatusOK, `"demo":false`},
		{"bearer token", true, map[string]string{"Authorization": "Bearer " + token}, http.StatusOK, `"user":"user-1"`},
		{"bad token is anonymous", true, map[string]string{"Authorization": "Bearer nope"}, http.StatusOK, `"user":""`},
		{"expired token is anonymous", true, map[string]string{"Authorization": "Bearer " + expired}, http.StatusOK, `"user":""`},
		{"basic auth is anonymous", true, map[string]string{"Authorization": "Basic dXNlcjpwYXNz"}, http.StatusOK, `"user":""`},
		{"bad token keeps demo header", true, map[string]string{"Authorization": "Bearer nope", DemoLeaderHeader: "true"}, http.StatusOK, `"demo":true`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/claim", nil)
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}
			w := httptest.NewRecorder()
			newClaimRouter(m, tc.allow).ServeHTTP(w, req)

			if w.Code != tc.status {
				t.Fatalf("expected %d, got %d (%s)", tc.status, w.Code, w.Body.String())
			}
			if !strings.Contains(w.Body.String(), tc.body) {
				t.Errorf("expected body to contain %q, got %s", tc.body, w.Body.String())
			}
		})
	}
}

func TestRateLimit(t *testing.T) {
	store := NewLimiterStore(1, 2, time.Hour)
	defer store.Stop()

	r := gin.New()
	r.POST("/api/chat", RateLimit(store), func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/chat", nil))
		codes = append(codes, w.Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Errorf("unexpected status sequence %v", codes)
	}
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	r := gin.New()
	r.Use(m.Handler())
	r.GET("/groups/:groupId", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	for _, id := range []string{"a", "b"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/groups/"+id, nil))
	}

	got := testutil.ToFloat64(m.requests.WithLabelValues("/groups/:groupId", http.MethodGet, "404"))
	if got != 2 {
		t.Errorf("expected 2 requests recorded under the route pattern, got %v", got)
	}
}
