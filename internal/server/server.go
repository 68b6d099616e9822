package server

import (
	"net/http"

	"nexum/internal/auth"
	"nexum/internal/handler"
	"nexum/internal/middleware"
	"nexum/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

// Services are the application services exposed over HTTP.
type Services struct {
	Groups      service.GroupService
	Users       service.UserService
	Messages    service.MessageService
	Prefs       service.PrefsService
	Suggestions service.SuggestionService
	Assistant   service.Assistant
}

// Options controls the cross-cutting middleware.
type Options struct {
	JWT             *auth.JWTManager
	AllowDemoHeader bool
	// ChatLimiter throttles POST /api/chat per client. Nil disables it.
	ChatLimiter *middleware.LimiterStore
	// Registry receives the HTTP metrics and is served on /metrics. Nil disables both.
	Registry *prometheus.Registry
}

type Server struct {
	router   *gin.Engine
	services Services
	opts     Options
	logger   *zap.Logger
}

func NewServer(services Services, opts Options, logger *zap.Logger) *Server {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(logger))

	s := &Server{
		router:   router,
		services: services,
		opts:     opts,
		logger:   logger,
	}

	s.setupRoutes()

	return s
}

func (s *Server) setupRoutes() {
	if s.opts.Registry != nil {
		metrics := middleware.NewMetrics(s.opts.Registry)
		s.router.Use(metrics.Handler())
		s.router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.opts.Registry, promhttp.HandlerOpts{})))
	}

	s.router.Use(middleware.LeaderClaim(s.opts.JWT, s.opts.AllowDemoHeader, s.logger))

	assistantHandler := handler.NewAssistantHandler(s.services.Assistant, s.logger)
	groupHandler := handler.NewGroupHandler(s.services.Groups, s.services.Messages, s.logger)
	userHandler := handler.NewUserHandler(s.services.Users, s.logger)
	prefsHandler := handler.NewPrefsHandler(s.services.Prefs, s.logger)
	suggestionHandler := handler.NewSuggestionHandler(s.services.Suggestions, s.logger)

	s.router.GET("/health", handler.Health)

	chat := []gin.HandlerFunc{assistantHandler.Chat}
	if s.opts.ChatLimiter != nil {
		chat = append([]gin.HandlerFunc{middleware.RateLimit(s.opts.ChatLimiter)}, chat...)
	}
	s.router.POST("/api/chat", chat...)

	groups := s.router.Group("/groups")
	{
		groups.POST("", groupHandler.CreateGroup)
		groups.GET("/:groupId", groupHandler.GetGroup)
		groups.POST("/:groupId/members", groupHandler.AddMember)
		groups.POST("/:groupId/messages", groupHandler.PostMessage)
		groups.GET("/:groupId/messages", groupHandler.ListMessages)
		groups.GET("/:groupId/ai-prefs", prefsHandler.GetPrefs)
		groups.POST("/:groupId/ai-prefs", prefsHandler.UpdatePrefs)
		groups.POST("/:groupId/suggest", suggestionHandler.Suggest)
		groups.GET("/:groupId/suggestions", suggestionHandler.ListSuggestions)
	}

	users := s.router.Group("/users")
	{
		users.POST("", userHandler.CreateUser)
		users.POST("/:userId/interests", userHandler.AddInterest)
		users.POST("/:userId/bucket-items", userHandler.AddBucketItem)
	}

	s.router.POST("/suggestions/:id/action", suggestionHandler.ApplyAction)
}

// Handler returns the router wrapped with CORS.
func (s *Server) Handler() http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization", middleware.DemoLeaderHeader},
	}).Handler(s.router)
}
