// Package stubserver is a self-contained backend the portal can run against
// for demos and local development. It speaks the same envelope contract and
// websocket frames as the production API and holds everything in memory.
package stubserver

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/noah-isme/studentlink-portal/internal/models"
	"github.com/noah-isme/studentlink-portal/internal/realtime"
	"github.com/noah-isme/studentlink-portal/pkg/config"
	appErrors "github.com/noah-isme/studentlink-portal/pkg/errors"
	"github.com/noah-isme/studentlink-portal/pkg/logger"
	"github.com/noah-isme/studentlink-portal/pkg/metrics"
)

const contextUserKey = "currentUser"

// Server bundles the gin engine, the in-memory state, and the websocket hub.
type Server struct {
	cfg     config.StubConfig
	logger  *zap.Logger
	metrics *metrics.Metrics
	engine  *gin.Engine
	state   *state
	hub     *hub
}

// New assembles the stub server.
func New(cfg config.StubConfig, log *zap.Logger, m *metrics.Metrics) (*Server, error) {
	if log == nil {
		log = zap.NewNop()
	}
	st, err := newState()
	if err != nil {
		return nil, err
	}

	s := &Server{
		cfg:     cfg,
		logger:  log,
		metrics: m,
		state:   st,
		hub:     newHub(log),
	}
	s.engine = s.buildRouter()
	return s, nil
}

// Handler exposes the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until the listener fails.
func (s *Server) Run() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.logger.Info("stub backend listening",
		zap.String("addr", addr),
		zap.String("demo_password", demoPassword))
	return s.engine.Run(addr)
}

func (s *Server) buildRouter() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery(), logger.GinMiddleware(s.logger))

	engine.GET("/health", func(c *gin.Context) {
		respond(c, http.StatusOK, gin.H{"status": "ok"})
	})
	if s.metrics != nil {
		engine.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}
	engine.GET("/ws", func(c *gin.Context) {
		s.hub.serveWS(c.Writer, c.Request)
	})

	v1 := engine.Group("/api/v1")
	v1.POST("/auth/login", s.handleLogin)

	authed := v1.Group("")
	authed.Use(s.requireJWT())
	{
		authed.POST("/auth/logout", s.handleLogout)
		authed.GET("/auth/me", s.handleMe)
		authed.POST("/auth/refresh", s.handleRefresh)

		authed.GET("/concerns", s.handleListConcerns)
		authed.POST("/concerns", s.handleCreateConcern)
		authed.GET("/concerns/:id", s.handleGetConcern)

		authed.GET("/chat/rooms", s.handleListRooms)
		authed.POST("/chat/rooms", s.handleGetOrCreateRoom)
		authed.GET("/chat/rooms/:id/messages", s.handleListMessages)
		authed.POST("/chat/rooms/:id/messages", s.handleSendMessage)
		authed.POST("/chat/rooms/:id/read", s.handleMarkRead)
		authed.POST("/chat/rooms/:id/typing", s.handleTyping)
	}

	return engine
}

// requireJWT validates the bearer token and stores the claims on the context.
func (s *Server) requireJWT() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			respondErr(c, appErrors.New(appErrors.KindAuthentication, "authentication required"))
			c.Abort()
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			respondErr(c, appErrors.New(appErrors.KindAuthentication, "invalid authorization header"))
			c.Abort()
			return
		}

		claims := &models.JWTClaims{}
		token, err := jwt.ParseWithClaims(parts[1], claims, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return []byte(s.cfg.JWTSecret), nil
		})
		if err != nil || !token.Valid {
			respondErr(c, appErrors.New(appErrors.KindAuthentication, "invalid or expired token"))
			c.Abort()
			return
		}

		c.Set(contextUserKey, claims)
		c.Next()
	}
}

func (s *Server) currentClaims(c *gin.Context) *models.JWTClaims {
	v, _ := c.Get(contextUserKey)
	claims, _ := v.(*models.JWTClaims)
	return claims
}

func (s *Server) currentUser(c *gin.Context) (*models.User, error) {
	claims := s.currentClaims(c)
	if claims == nil {
		return nil, appErrors.New(appErrors.KindAuthentication, "authentication required")
	}
	return s.state.userByID(claims.UserID)
}

func (s *Server) signToken(user *models.User) (string, time.Time, error) {
	expires := time.Now().Add(s.cfg.JWTExpiry)
	claims := models.JWTClaims{
		UserID: user.ID,
		Role:   user.Role,
		Email:  user.Email,
		Name:   user.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(expires),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
	return token, expires, err
}

// publishRoomCreated fans the new room out to its department's stream. Rooms
// whose concern has no department yet go to the general stream.
func (s *Server) publishRoomCreated(room *models.ChatRoom) {
	departmentID := "general"
	if room.Concern != nil && room.Concern.DepartmentID != nil {
		departmentID = *room.Concern.DepartmentID
	}
	s.hub.broadcast(realtime.DepartmentRoomsChannel(departmentID), realtime.EventRoomCreated, room)
}
