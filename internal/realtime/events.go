package realtime

import (
	"encoding/json"
	"fmt"
)

// Event names delivered over the stream.
const (
	EventNewMessage    = "new_message"
	EventRoomCreated   = "chat_room_created"
	EventTyping        = "typing"
	EventStoppedTyping = "stopped_typing"
	EventMessageRead   = "messages_read"
)

// Frame is the wire format for both directions: client frames carry an
// action (subscribe/unsubscribe), server frames carry an event and payload.
type Frame struct {
	Action  string          `json:"action,omitempty"`
	Event   string          `json:"event,omitempty"`
	Channel string          `json:"channel,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Event is what handlers receive.
type Event struct {
	Channel string
	Name    string
	Data    json.RawMessage
}

// Decode unmarshals the event payload into out.
func (e Event) Decode(out any) error {
	if len(e.Data) == 0 {
		return fmt.Errorf("event %s carried no payload", e.Name)
	}
	return json.Unmarshal(e.Data, out)
}

// TypingPayload is the payload of typing/stopped_typing events.
type TypingPayload struct {
	RoomID string `json:"room_id"`
	UserID string `json:"user_id"`
	Name   string `json:"name,omitempty"`
}

// ReadPayload is the payload of messages_read events.
type ReadPayload struct {
	RoomID     string `json:"room_id"`
	ReaderID   string `json:"reader_id"`
	MessageIDs []string `json:"message_ids,omitempty"`
}

// RoomChannel names the message stream for a room.
func RoomChannel(roomID string) string {
	return "chat.room." + roomID
}

// TypingChannel names the typing-status stream for a room.
func TypingChannel(roomID string) string {
	return "chat.room." + roomID + ".typing"
}

// DepartmentRoomsChannel names the room-creation broadcast for a department.
func DepartmentRoomsChannel(departmentID string) string {
	return "department." + departmentID + ".rooms"
}
