package stubserver

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/studentlink-portal/internal/models"
	appErrors "github.com/noah-isme/studentlink-portal/pkg/errors"
)

// demoPassword is the password every seeded account accepts.
const demoPassword = "password123"

type account struct {
	user models.User
	hash []byte
}

// state is the in-memory world the stub serves. Everything resets on restart.
type state struct {
	mu       sync.Mutex
	accounts map[string]*account
	concerns []*models.Concern
	rooms    map[string]*models.ChatRoom // keyed by concern id
	messages map[string][]models.ChatMessage
	refSeq   int
}

func newState() (*state, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(demoPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing demo password: %w", err)
	}

	now := time.Now().UTC()
	deptIT := "d-it"
	s := &state{
		accounts: make(map[string]*account),
		rooms:    make(map[string]*models.ChatRoom),
		messages: make(map[string][]models.ChatMessage),
		refSeq:   100,
	}

	seed := []models.User{
		{ID: "u-student", Name: "Sasha Student", Email: "student@campus.edu", Role: models.RoleStudent, Active: true},
		{ID: "u-staff", Name: "Devin Staff", Email: "staff@campus.edu", Role: models.RoleStaff, DepartmentID: &deptIT, Active: true},
		{ID: "u-head", Name: "Harper Head", Email: "head@campus.edu", Role: models.RoleDepartmentHead, DepartmentID: &deptIT, Active: true},
		{ID: "u-admin", Name: "Alex Admin", Email: "admin@campus.edu", Role: models.RoleAdmin, Active: true},
	}
	for i := range seed {
		u := seed[i]
		u.CreatedAt = now
		s.accounts[strings.ToLower(u.Email)] = &account{user: u, hash: hash}
	}

	student := "u-student"
	s.concerns = []*models.Concern{
		{
			ID: "c-wifi", ReferenceNumber: "CON-2025-0100",
			Subject: "WiFi down in library", Description: "No signal on floor 3 since Monday",
			Status: models.ConcernApproved, Priority: models.PriorityHigh,
			StudentID: &student, DepartmentID: &deptIT,
			CreatedAt: now.Add(-48 * time.Hour), UpdatedAt: now.Add(-time.Hour),
		},
		{
			ID: "c-card", ReferenceNumber: "CON-2025-0101",
			Subject: "Lost ID card", Description: "Lost my card near the gym",
			Status: models.ConcernPending, Priority: models.PriorityMedium,
			StudentID: &student,
			CreatedAt: now.Add(-24 * time.Hour), UpdatedAt: now.Add(-24 * time.Hour),
		},
	}
	return s, nil
}

func (s *state) authenticate(email, password string) (*models.User, error) {
	s.mu.Lock()
	acct, ok := s.accounts[strings.ToLower(email)]
	s.mu.Unlock()
	if !ok {
		return nil, appErrors.New(appErrors.KindAuthentication, "invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword(acct.hash, []byte(password)); err != nil {
		return nil, appErrors.New(appErrors.KindAuthentication, "invalid credentials")
	}
	u := acct.user
	return &u, nil
}

func (s *state) userByID(id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, acct := range s.accounts {
		if acct.user.ID == id {
			u := acct.user
			return &u, nil
		}
	}
	return nil, appErrors.New(appErrors.KindAuthentication, "account no longer exists")
}

func (s *state) listConcerns(filter models.ConcernFilter) []models.Concern {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Concern
	for _, c := range s.concerns {
		if filter.Status != nil && c.Status != *filter.Status {
			continue
		}
		if filter.Priority != nil && c.Priority != *filter.Priority {
			continue
		}
		if filter.Search != "" {
			q := strings.ToLower(filter.Search)
			if !strings.Contains(strings.ToLower(c.Subject), q) &&
				!strings.Contains(strings.ToLower(c.Description), q) {
				continue
			}
		}
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (s *state) getConcern(id string) (*models.Concern, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.concerns {
		if c.ID == id {
			out := *c
			return &out, nil
		}
	}
	return nil, appErrors.FromStatus(404, "concern not found")
}

func (s *state) createConcern(req models.CreateConcernRequest, studentID string) models.Concern {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refSeq++
	now := time.Now().UTC()
	c := &models.Concern{
		ID:              uuid.NewString(),
		ReferenceNumber: fmt.Sprintf("CON-%d-%04d", now.Year(), s.refSeq),
		Subject:         req.Subject,
		Description:     req.Description,
		Status:          models.ConcernPending,
		Priority:        req.Priority,
		StudentID:       &studentID,
		DepartmentID:    req.DepartmentID,
		IsAnonymous:     req.IsAnonymous,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	s.concerns = append(s.concerns, c)
	return *c
}

// roomForConcern returns the room bound to a concern, creating it on first
// need. The second return reports whether it was created by this call.
func (s *state) roomForConcern(concernID string) (*models.ChatRoom, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if room, ok := s.rooms[concernID]; ok {
		out := *room
		return &out, false, nil
	}

	var concern *models.Concern
	for _, c := range s.concerns {
		if c.ID == concernID {
			concern = c
			break
		}
	}
	if concern == nil {
		return nil, false, appErrors.FromStatus(404, "concern not found")
	}

	now := time.Now().UTC()
	room := &models.ChatRoom{
		ID:        uuid.NewString(),
		ConcernID: concernID,
		RoomName:  "Concern " + concern.ReferenceNumber,
		Status:    models.RoomActive,
		Concern:   concern,
		CreatedAt: now,
	}
	s.rooms[concernID] = room
	out := *room
	return &out, true, nil
}

func (s *state) listRooms() []models.ChatRoom {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.ChatRoom, 0, len(s.rooms))
	for _, room := range s.rooms {
		r := *room
		if msgs := s.messages[room.ID]; len(msgs) > 0 {
			last := msgs[len(msgs)-1]
			r.LatestMessage = &last
			r.LastActivityAt = &last.CreatedAt
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (s *state) roomByID(roomID string) (*models.ChatRoom, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, room := range s.rooms {
		if room.ID == roomID {
			out := *room
			return &out, nil
		}
	}
	return nil, appErrors.FromStatus(404, "chat room not found")
}

func (s *state) listMessages(roomID string) []models.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.ChatMessage(nil), s.messages[roomID]...)
}

func (s *state) appendMessage(roomID string, author models.User, req models.SendMessageRequest) models.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg := models.ChatMessage{
		ID:         uuid.NewString(),
		RoomID:     roomID,
		AuthorID:   author.ID,
		AuthorName: author.Name,
		Message:    req.Message,
		Type:       req.Type,
		CreatedAt:  time.Now().UTC(),
	}
	if msg.Type == "" {
		msg.Type = models.MessageText
	}
	s.messages[roomID] = append(s.messages[roomID], msg)
	return msg
}

// markRead stamps read_at on every message in the room not authored by the
// reader and returns the ids it touched.
func (s *state) markRead(roomID, readerID string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()

	var touched []string
	msgs := s.messages[roomID]
	for i := range msgs {
		if msgs[i].AuthorID == readerID || msgs[i].ReadAt != nil {
			continue
		}
		msgs[i].ReadAt = &now
		if msgs[i].DeliveredAt == nil {
			msgs[i].DeliveredAt = &now
		}
		touched = append(touched, msgs[i].ID)
	}
	return touched
}
