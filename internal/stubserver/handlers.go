package stubserver

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/studentlink-portal/internal/models"
	"github.com/noah-isme/studentlink-portal/internal/realtime"
	appErrors "github.com/noah-isme/studentlink-portal/pkg/errors"
)

func (s *Server) handleLogin(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErr(c, appErrors.New(appErrors.KindValidation, "email and password are required"))
		return
	}

	user, err := s.state.authenticate(req.Email, req.Password)
	if err != nil {
		respondErr(c, err)
		return
	}
	token, expires, err := s.signToken(user)
	if err != nil {
		respondErr(c, appErrors.Wrap(err, appErrors.KindServer, "failed to issue token"))
		return
	}

	respond(c, http.StatusOK, models.LoginResponse{Token: token, ExpiresAt: expires, User: *user})
}

func (s *Server) handleLogout(c *gin.Context) {
	// Stateless tokens; nothing to revoke.
	c.Status(http.StatusNoContent)
}

func (s *Server) handleMe(c *gin.Context) {
	user, err := s.currentUser(c)
	if err != nil {
		respondErr(c, err)
		return
	}
	respond(c, http.StatusOK, user)
}

func (s *Server) handleRefresh(c *gin.Context) {
	user, err := s.currentUser(c)
	if err != nil {
		respondErr(c, err)
		return
	}
	token, expires, err := s.signToken(user)
	if err != nil {
		respondErr(c, appErrors.Wrap(err, appErrors.KindServer, "failed to issue token"))
		return
	}
	respond(c, http.StatusOK, models.RefreshTokenResponse{Token: token, ExpiresAt: expires})
}

func (s *Server) handleListConcerns(c *gin.Context) {
	filter := models.ConcernFilter{Search: c.Query("search")}
	if v := c.Query("status"); v != "" {
		status := models.ConcernStatus(v)
		filter.Status = &status
	}
	if v := c.Query("priority"); v != "" {
		priority := models.ConcernPriority(v)
		filter.Priority = &priority
	}

	concerns := s.state.listConcerns(filter)
	page := paginate(c, len(concerns))
	respondPage(c, concerns, page)
}

func (s *Server) handleCreateConcern(c *gin.Context) {
	claims := s.currentClaims(c)
	var req models.CreateConcernRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErr(c, appErrors.New(appErrors.KindValidation, "invalid concern payload"))
		return
	}
	if req.Subject == "" || req.Description == "" {
		respondErr(c, appErrors.New(appErrors.KindValidation, "subject and description are required"))
		return
	}
	if req.Priority == "" {
		req.Priority = models.PriorityMedium
	}
	concern := s.state.createConcern(req, claims.UserID)
	respond(c, http.StatusCreated, concern)
}

func (s *Server) handleGetConcern(c *gin.Context) {
	concern, err := s.state.getConcern(c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}
	respond(c, http.StatusOK, concern)
}

func (s *Server) handleListRooms(c *gin.Context) {
	rooms := s.state.listRooms()
	page := paginate(c, len(rooms))
	respondPage(c, rooms, page)
}

func (s *Server) handleGetOrCreateRoom(c *gin.Context) {
	var req struct {
		ConcernID string `json:"concern_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.ConcernID == "" {
		respondErr(c, appErrors.New(appErrors.KindValidation, "concern_id is required"))
		return
	}

	room, created, err := s.state.roomForConcern(req.ConcernID)
	if err != nil {
		respondErr(c, err)
		return
	}
	if created {
		s.publishRoomCreated(room)
	}
	respond(c, http.StatusOK, room)
}

func (s *Server) handleListMessages(c *gin.Context) {
	roomID := c.Param("id")
	if _, err := s.state.roomByID(roomID); err != nil {
		respondErr(c, err)
		return
	}
	msgs := s.state.listMessages(roomID)
	page := paginate(c, len(msgs))
	respondPage(c, msgs, page)
}

func (s *Server) handleSendMessage(c *gin.Context) {
	roomID := c.Param("id")
	if _, err := s.state.roomByID(roomID); err != nil {
		respondErr(c, err)
		return
	}

	author, err := s.currentUser(c)
	if err != nil {
		respondErr(c, err)
		return
	}

	var req models.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Message == "" {
		respondErr(c, appErrors.New(appErrors.KindValidation, "message is required"))
		return
	}

	msg := s.state.appendMessage(roomID, *author, req)
	s.hub.broadcast(realtime.RoomChannel(roomID), realtime.EventNewMessage, msg)
	s.metrics.ObserveRealtimeEvent(realtime.EventNewMessage)
	respond(c, http.StatusCreated, msg)
}

func (s *Server) handleMarkRead(c *gin.Context) {
	roomID := c.Param("id")
	claims := s.currentClaims(c)

	touched := s.state.markRead(roomID, claims.UserID)
	if len(touched) > 0 {
		s.hub.broadcast(realtime.RoomChannel(roomID), realtime.EventMessageRead, realtime.ReadPayload{
			RoomID:     roomID,
			ReaderID:   claims.UserID,
			MessageIDs: touched,
		})
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleTyping(c *gin.Context) {
	roomID := c.Param("id")
	claims := s.currentClaims(c)

	var req struct {
		Typing bool `json:"typing"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErr(c, appErrors.New(appErrors.KindValidation, "invalid typing payload"))
		return
	}

	event := realtime.EventTyping
	if !req.Typing {
		event = realtime.EventStoppedTyping
	}
	s.hub.broadcast(realtime.TypingChannel(roomID), event, realtime.TypingPayload{
		RoomID: roomID,
		UserID: claims.UserID,
		Name:   claims.Name,
	})
	c.Status(http.StatusNoContent)
}

// paginate reads page/per_page and reports totals. The stub returns full
// result sets; the metadata keeps the client's pagination handling honest.
func paginate(c *gin.Context, total int) *models.Pagination {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "50"))
	if perPage < 1 {
		perPage = 50
	}
	last := (total + perPage - 1) / perPage
	if last < 1 {
		last = 1
	}
	return &models.Pagination{CurrentPage: page, LastPage: last, PerPage: perPage, Total: total}
}
