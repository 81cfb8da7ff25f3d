// Package api serves the troop JSON API over gin.
package api

import (
	"net/http"

	"troopstats/app"
	"troopstats/domain/core"
	"troopstats/internal"

	"github.com/gin-gonic/gin"
)

// UserHeader carries the caller's identity, set by the authenticating proxy
const UserHeader = "X-User-ID"

const userKey = "userID"

// Server holds the API router and the services behind it
type Server struct {
	router *gin.Engine
	troops *app.TroopService
	boards *app.LeaderboardService
	logger *internal.Logger
}

// NewServer builds the router. mode is a gin mode such as gin.ReleaseMode.
func NewServer(troops *app.TroopService, boards *app.LeaderboardService, mode string, logger *internal.Logger) *Server {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	if mode != "" {
		gin.SetMode(mode)
	}

	s := &Server{
		router: gin.New(),
		troops: troops,
		boards: boards,
		logger: logger.With("api"),
	}
	s.router.Use(gin.Logger(), gin.Recovery())
	s.setupRoutes()
	return s
}

// Handler exposes the router for an http.Server
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRoutes() {
	s.router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := s.router.Group("/api")
	{
		api.GET("/groups/:groupId/leaderboard", s.handleLeaderboard)
		api.GET("/groups/:groupId/export.xlsx", s.handleExport)
		api.GET("/groups/:groupId/participants", s.handleListParticipants)
		api.GET("/groups/:groupId/participants/:participantId/stats", s.handleParticipantStats)
	}

	authed := api.Group("", RequireUser())
	{
		authed.GET("/groups", s.handleListGroups)
		authed.POST("/groups", s.handleCreateGroup)
		authed.POST("/groups/join", s.handleJoinGroup)
		authed.POST("/groups/:groupId/participants", s.handleAddParticipant)
		authed.DELETE("/groups/:groupId/participants/:participantId", s.handleRemoveParticipant)
		authed.PUT("/groups/:groupId/entries", s.handleLogEntry)
		authed.POST("/groups/:groupId/migrate", s.handleMigrate)
		authed.GET("/profile", s.handleProfile)
	}
}

// RequireUser rejects requests without a caller identity
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := core.ParseUserID(c.GetHeader(UserHeader))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized", "code": "UNAUTHORIZED"})
			return
		}
		c.Set(userKey, userID.String())
		c.Next()
	}
}

func currentUser(c *gin.Context) core.UserID {
	return core.UserID(c.GetString(userKey))
}
