package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/gravadigital/konkatsu-api/internal/auth"
	"github.com/gravadigital/konkatsu-api/internal/config"
	"github.com/gravadigital/konkatsu-api/internal/handlers"
	"github.com/gravadigital/konkatsu-api/internal/logger"
	"github.com/gravadigital/konkatsu-api/internal/middleware/events"
	"github.com/gravadigital/konkatsu-api/internal/services"
	"github.com/gravadigital/konkatsu-api/internal/storage/postgres"
)

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	config     *config.Config
	store      postgres.RepositoryContainer
	services   *services.Services
	issuer     *auth.Issuer
}

// New creates a new server instance
func New(cfg *config.Config, store postgres.RepositoryContainer, svc *services.Services) *Server {
	return &Server{
		config:   cfg,
		store:    store,
		services: svc,
		issuer:   auth.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
	}
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:    ":" + s.config.Server.Port,
		Handler: s.Router(),

		// Timeouts seguros según estándares de Go
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Get().Info("Starting HTTP server", "port", s.config.Server.Port)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	logger.Get().Info("Shutting down HTTP server...")

	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}

	return nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (s *Server) corsConfig() cors.Config {
	corsConfig := cors.DefaultConfig()
	origins := splitList(s.config.CORS.AllowOrigins)
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = origins
		corsConfig.AllowCredentials = true
	}
	if methods := splitList(s.config.CORS.AllowMethods); len(methods) > 0 {
		corsConfig.AllowMethods = methods
	}
	if headers := splitList(s.config.CORS.AllowHeaders); len(headers) > 0 {
		corsConfig.AllowHeaders = headers
	}
	corsConfig.ExposeHeaders = []string{"Content-Disposition", events.RequestIDHeader}
	return corsConfig
}

// Router configures the HTTP router with middleware and routes
func (s *Server) Router() *gin.Engine {
	// Configurar Gin
	if s.config.Server.GinMode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Middleware básico
	router.Use(events.RequestLog(logger.HTTP()))
	router.Use(gin.Recovery())
	router.Use(cors.New(s.corsConfig()))

	// Health check
	router.GET("/ping", s.ping)

	s.setupAPIRoutes(router)

	return router
}

func (s *Server) ping(c *gin.Context) {
	if err := s.store.Health(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"message": "Konkatsu API storage is unavailable",
			"status":  "unhealthy",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Konkatsu API is running",
		"status":  "healthy",
	})
}

// setupAPIRoutes configures all API routes
func (s *Server) setupAPIRoutes(router *gin.Engine) {
	authHandler := handlers.NewAuthHandler(s.services.Parties, s.issuer, s.config.Auth.AdminPasswordHash)
	partyHandler := handlers.NewPartyHandler(s.services.Parties)
	participantHandler := handlers.NewParticipantHandler(s.services.Parties, s.issuer, s.config.Auth.PublicBaseURL)
	generationHandler := handlers.NewGenerationHandler(s.services.Generation)
	meHandler := handlers.NewMeHandler(s.services.Parties, s.services.Voting)

	api := router.Group("/api")
	{
		api.POST("/auth/login", authHandler.Login)
		api.POST("/access", authHandler.Access)

		// Staff routes
		parties := api.Group("/parties", auth.RequireRole(s.issuer, auth.RoleAdmin))
		{
			parties.GET("", partyHandler.ListParties)
			parties.POST("", partyHandler.CreateParty)
			parties.GET("/:party_id", partyHandler.GetParty)
			parties.PATCH("/:party_id/stage", partyHandler.UpdateStage)
			parties.GET("/:party_id/settings", partyHandler.GetSettings)
			parties.PUT("/:party_id/settings", partyHandler.UpdateSettings)

			parties.GET("/:party_id/participants", participantHandler.ListParticipants)
			parties.POST("/:party_id/participants", participantHandler.RegisterParticipant)
			parties.DELETE("/:party_id/participants/:participant_id", participantHandler.RemoveParticipant)
			parties.GET("/:party_id/participants/:participant_id/access", participantHandler.GetAccess)

			rounds := parties.Group("/:party_id/rounds/:round")
			{
				rounds.POST("/matches", generationHandler.GenerateMatches)
				rounds.GET("/matches", generationHandler.GetMatches)
				rounds.POST("/seating", generationHandler.GenerateSeating)
				rounds.GET("/seating", generationHandler.GetSeating)
				rounds.GET("/export", generationHandler.Export)
			}
		}

		// Participant routes
		me := api.Group("/me", auth.RequireRole(s.issuer, auth.RoleParticipant))
		{
			me.GET("", meHandler.Profile)
			me.GET("/candidates", meHandler.Candidates)
			me.GET("/votes/:round", meHandler.GetVotes)
			me.POST("/votes/:round", meHandler.SubmitVotes)
		}
	}
}
