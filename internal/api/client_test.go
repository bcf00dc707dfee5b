package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/studentlink-portal/internal/models"
	"github.com/noah-isme/studentlink-portal/internal/session"
	appErrors "github.com/noah-isme/studentlink-portal/pkg/errors"
)

func envelope(t *testing.T, data any) []byte {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	out, err := json.Marshal(models.Envelope{Success: true, Data: raw})
	require.NoError(t, err)
	return out
}

func newTestClient(t *testing.T, handler http.Handler, opts ...Option) (*Client, *session.Session, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	sess := session.New(nil)
	return New(srv.URL, sess, zap.NewNop(), opts...), sess, srv
}

func TestBearerHeaderLifecycle(t *testing.T) {
	var gotAuth []string
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		gotAuth = append(gotAuth, r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write(envelope(t, models.LoginResponse{
			Token: "tok-abc",
			User:  models.User{ID: "u1", Email: "staff@campus.edu", Role: models.RoleStaff},
		}))
	})
	mux.HandleFunc("GET /auth/me", func(w http.ResponseWriter, r *http.Request) {
		gotAuth = append(gotAuth, r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write(envelope(t, models.User{ID: "u1"}))
	})
	mux.HandleFunc("POST /auth/logout", func(w http.ResponseWriter, r *http.Request) {
		gotAuth = append(gotAuth, r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusNoContent)
	})

	client, sess, _ := newTestClient(t, mux)

	_, err := client.Login(context.Background(), models.LoginRequest{Email: "staff@campus.edu", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, "tok-abc", sess.Token())

	_, err = client.CurrentUser(context.Background())
	require.NoError(t, err)

	require.NoError(t, client.Logout(context.Background()))
	assert.False(t, sess.Authenticated())

	// Unauthenticated calls omit the header entirely.
	_, err = client.CurrentUser(context.Background())
	require.NoError(t, err)

	require.Len(t, gotAuth, 4)
	assert.Empty(t, gotAuth[0])
	assert.Equal(t, "Bearer tok-abc", gotAuth[1])
	assert.Equal(t, "Bearer tok-abc", gotAuth[2])
	assert.Empty(t, gotAuth[3])
}

func TestUnauthorizedPurgesTokenAndFiresHookOnce(t *testing.T) {
	calls := 0
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"success":false,"message":"token expired"}`)
	})

	client, sess, _ := newTestClient(t, handler, WithUnauthorizedHook(func() { calls++ }))
	require.NoError(t, sess.SetToken("stale"))

	_, err := client.CurrentUser(context.Background())
	require.Error(t, err)

	appErr := appErrors.Normalize(err)
	assert.Equal(t, appErrors.KindAuthentication, appErr.Kind)
	assert.Equal(t, "token expired", appErr.Message)
	assert.Empty(t, sess.Token())
	assert.Equal(t, 1, calls)
}

func TestValidationErrorKind(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		fmt.Fprint(w, `{"success":false,"message":"subject is required"}`)
	})
	client, _, _ := newTestClient(t, handler)

	_, err := client.GetConcern(context.Background(), "c1")
	require.Error(t, err)
	appErr := appErrors.Normalize(err)
	assert.Equal(t, appErrors.KindValidation, appErr.Kind)
	assert.Equal(t, "subject is required", appErr.Message)
}

func TestServerErrorNonJSONBody(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		fmt.Fprint(w, "<html>upstream exploded</html>")
	})
	client, _, _ := newTestClient(t, handler)

	_, err := client.ListDepartments(context.Background())
	require.Error(t, err)
	appErr := appErrors.Normalize(err)
	assert.Equal(t, appErrors.KindServer, appErr.Kind)
	assert.Equal(t, "Bad Gateway", appErr.Message)
}

func TestTransportFailureIsNetworkKind(t *testing.T) {
	sess := session.New(nil)
	client := New("http://127.0.0.1:1", sess, zap.NewNop(),
		WithHTTPClient(&http.Client{Timeout: 250 * time.Millisecond}))

	_, err := client.ListDepartments(context.Background())
	require.Error(t, err)
	assert.True(t, appErrors.IsKind(err, appErrors.KindNetwork))
}

func TestClientSideValidation(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("request must not reach the server")
	})
	client, _, _ := newTestClient(t, handler)

	_, err := client.Login(context.Background(), models.LoginRequest{Email: "not-an-email", Password: ""})
	require.Error(t, err)
	assert.True(t, appErrors.IsKind(err, appErrors.KindValidation))
}

func TestListConcernsQueryAndPagination(t *testing.T) {
	status := models.ConcernPending
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "pending", r.URL.Query().Get("status"))
		assert.Equal(t, "wifi", r.URL.Query().Get("search"))
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.False(t, r.URL.Query().Has("priority"))

		raw, _ := json.Marshal([]models.Concern{{ID: "c1", Subject: "No wifi"}})
		out, _ := json.Marshal(models.Envelope{
			Success:    true,
			Data:       raw,
			Pagination: &models.Pagination{CurrentPage: 2, LastPage: 5, PerPage: 20, Total: 96},
		})
		w.Header().Set("Content-Type", "application/json")
		w.Write(out)
	})
	client, _, _ := newTestClient(t, handler)

	concerns, page, err := client.ListConcerns(context.Background(), models.ConcernFilter{
		Status: &status,
		Search: "wifi",
		Page:   2,
	})
	require.NoError(t, err)
	require.Len(t, concerns, 1)
	require.NotNil(t, page)
	assert.Equal(t, 96, page.Total)
}

func TestMultipartAnnouncementCreate(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ct := r.Header.Get("Content-Type")
		assert.True(t, strings.HasPrefix(ct, "multipart/form-data; boundary="), "content type %q", ct)

		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "Library hours", r.FormValue("title"))
		assert.Equal(t, `["hours","library"]`, r.FormValue("tags"))

		file, header, err := r.FormFile("image")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "banner.png", header.Filename)

		w.Header().Set("Content-Type", "application/json")
		w.Write(envelope(t, models.Announcement{ID: "a1", Title: "Library hours"}))
	})
	client, _, _ := newTestClient(t, handler)

	ann, err := client.CreateAnnouncement(context.Background(), models.CreateAnnouncementRequest{
		Title:    "Library hours",
		Content:  "New schedule",
		Category: "general",
		Tags:     []string{"hours", "library"},
	}, &ImageUpload{FileName: "banner.png", Content: strings.NewReader("png-bytes")})
	require.NoError(t, err)
	assert.Equal(t, "a1", ann.ID)
}

func TestDownloadBlobBypassesJSON(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "xlsx", r.URL.Query().Get("format"))
		w.Header().Set("Content-Type", "application/vnd.ms-excel")
		w.Write([]byte{0x50, 0x4b, 0x03, 0x04})
	})
	client, sess, _ := newTestClient(t, handler)
	require.NoError(t, sess.SetToken("tok"))

	blob, contentType, err := client.ExportReport(context.Background(), "xlsx", models.ReportFilter{})
	require.NoError(t, err)
	assert.Equal(t, "application/vnd.ms-excel", contentType)
	assert.Equal(t, []byte{0x50, 0x4b, 0x03, 0x04}, blob)
}

func TestSendChatMessageReturnsServerRecord(t *testing.T) {
	created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req models.SendMessageRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Hello", req.Message)
		assert.Equal(t, models.MessageText, req.Type)

		w.Header().Set("Content-Type", "application/json")
		w.Write(envelope(t, models.ChatMessage{
			ID: "m-server", RoomID: "42", AuthorID: "u1", Message: "Hello",
			Type: models.MessageText, CreatedAt: created,
		}))
	})
	client, _, _ := newTestClient(t, handler)

	msg, err := client.SendChatMessage(context.Background(), "42", models.SendMessageRequest{Message: "Hello"})
	require.NoError(t, err)
	assert.Equal(t, "m-server", msg.ID)
	assert.True(t, msg.CreatedAt.Equal(created))
}

func TestNoContentIsEmptySuccess(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	client, _, _ := newTestClient(t, handler)
	assert.NoError(t, client.MarkRoomRead(context.Background(), "42"))
}

func TestContextCancellation(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})
	client, _, _ := newTestClient(t, handler)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := client.ListDepartments(ctx)
	require.Error(t, err)
	assert.True(t, appErrors.IsKind(err, appErrors.KindNetwork))
}
