package chat

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/studentlink-portal/internal/models"
)

type mockRoomLister struct {
	mu    sync.Mutex
	rooms []models.ChatRoom
	err   error
	gate  chan struct{}
	calls int
}

func (m *mockRoomLister) ListChatRooms(ctx context.Context, filter models.ChatRoomFilter) ([]models.ChatRoom, *models.Pagination, error) {
	m.mu.Lock()
	m.calls++
	gate := m.gate
	rooms, err := m.rooms, m.err
	m.mu.Unlock()
	if gate != nil {
		<-gate
	}
	return rooms, nil, err
}

func room(id, name string) models.ChatRoom {
	return models.ChatRoom{ID: id, RoomName: name, Status: models.RoomActive}
}

func TestRoomListLoad(t *testing.T) {
	api := &mockRoomLister{rooms: []models.ChatRoom{room("r1", "Wifi outage"), room("r2", "Lost ID card")}}
	list := NewRoomList(api, zap.NewNop())
	assert.False(t, list.Loaded())

	require.NoError(t, list.Load(context.Background()))
	assert.True(t, list.Loaded())
	assert.Equal(t, 2, list.Len())
}

func TestRoomCreatedInsertIsIdempotent(t *testing.T) {
	api := &mockRoomLister{rooms: []models.ChatRoom{room("r1", "Wifi outage")}}
	list := NewRoomList(api, zap.NewNop())
	require.NoError(t, list.Load(context.Background()))

	assert.True(t, list.HandleRoomCreated(room("r2", "Dorm heating")))
	assert.False(t, list.HandleRoomCreated(room("r2", "Dorm heating")))
	assert.False(t, list.HandleRoomCreated(room("r1", "Wifi outage")))

	rooms := list.Rooms()
	require.Len(t, rooms, 2)
	assert.Equal(t, "r2", rooms[0].ID, "live rooms prepend")
	assert.Equal(t, "r1", rooms[1].ID)
}

func TestStaleLoadResponseDropped(t *testing.T) {
	gate := make(chan struct{})
	api := &mockRoomLister{rooms: []models.ChatRoom{room("old", "Old snapshot")}, gate: gate}
	list := NewRoomList(api, zap.NewNop())

	done := make(chan error, 1)
	go func() { done <- list.Load(context.Background()) }()

	// A second load supersedes the first while it is blocked in flight.
	api.mu.Lock()
	api.gate = nil
	api.rooms = []models.ChatRoom{room("new", "Fresh snapshot")}
	api.mu.Unlock()
	require.NoError(t, list.Load(context.Background()))

	close(gate)
	require.NoError(t, <-done)

	rooms := list.Rooms()
	require.Len(t, rooms, 1)
	assert.Equal(t, "new", rooms[0].ID)
}

func TestFilterMatchesSubjectDescriptionAndName(t *testing.T) {
	rooms := []models.ChatRoom{
		{ID: "r1", RoomName: "Concern #101", Concern: &models.Concern{Subject: "WiFi down in library", Description: "No signal on floor 3"}},
		{ID: "r2", RoomName: "Concern #102", Concern: &models.Concern{Subject: "Cafeteria menu", Description: "Vegan options"}},
		{ID: "r3", RoomName: "Maintenance chat"},
	}
	api := &mockRoomLister{rooms: rooms}
	list := NewRoomList(api, zap.NewNop())
	require.NoError(t, list.Load(context.Background()))

	assert.Len(t, list.Filter(""), 3)
	assert.Len(t, list.Filter("  "), 3)

	got := list.Filter("WIFI")
	require.Len(t, got, 1)
	assert.Equal(t, "r1", got[0].ID)

	got = list.Filter("vegan")
	require.Len(t, got, 1)
	assert.Equal(t, "r2", got[0].ID)

	got = list.Filter("maintenance")
	require.Len(t, got, 1)
	assert.Equal(t, "r3", got[0].ID)

	assert.Empty(t, list.Filter("parking"))
}
