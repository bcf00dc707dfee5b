package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/noah-isme/studentlink-portal/internal/models"
)

// ListChatRooms fetches conversations, active ones by default.
func (c *Client) ListChatRooms(ctx context.Context, filter models.ChatRoomFilter) ([]models.ChatRoom, *models.Pagination, error) {
	q := url.Values{}
	if filter.Status != nil {
		q.Set("status", string(*filter.Status))
	}
	q = pageQuery(q, filter.Page, filter.PerPage)

	env, err := c.do(ctx, http.MethodGet, "/chat/rooms", requestOptions{query: q})
	if err != nil {
		return nil, nil, err
	}
	var out []models.ChatRoom
	if err := decodeData(env, &out); err != nil {
		return nil, nil, err
	}
	return out, env.Pagination, nil
}

// GetOrCreateChatRoom returns the room bound to a concern, creating it
// lazily on first need. Exactly one room exists per concern.
func (c *Client) GetOrCreateChatRoom(ctx context.Context, concernID string) (*models.ChatRoom, error) {
	body := map[string]string{"concern_id": concernID}
	env, err := c.do(ctx, http.MethodPost, "/chat/rooms", requestOptions{body: body})
	if err != nil {
		return nil, err
	}
	var out models.ChatRoom
	if err := decodeData(env, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListChatMessages fetches message history for a room. Callers re-sort by
// created_at; the server is expected to return sorted data but that is not
// relied upon.
func (c *Client) ListChatMessages(ctx context.Context, roomID string, page, perPage int) ([]models.ChatMessage, *models.Pagination, error) {
	q := pageQuery(nil, page, perPage)
	env, err := c.do(ctx, http.MethodGet, "/chat/rooms/"+roomID+"/messages", requestOptions{query: q})
	if err != nil {
		return nil, nil, err
	}
	var out []models.ChatMessage
	if err := decodeData(env, &out); err != nil {
		return nil, nil, err
	}
	return out, env.Pagination, nil
}

// SendChatMessage posts a message and returns the server's canonical record
// with authoritative id and timestamps. The client never fabricates these.
func (c *Client) SendChatMessage(ctx context.Context, roomID string, req models.SendMessageRequest) (*models.ChatMessage, error) {
	if err := c.validate(req); err != nil {
		return nil, err
	}
	if req.Type == "" {
		req.Type = models.MessageText
	}
	env, err := c.do(ctx, http.MethodPost, "/chat/rooms/"+roomID+"/messages", requestOptions{body: req})
	if err != nil {
		return nil, err
	}
	var out models.ChatMessage
	if err := decodeData(env, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// MarkRoomRead marks every message in the room as read for the caller.
func (c *Client) MarkRoomRead(ctx context.Context, roomID string) error {
	_, err := c.do(ctx, http.MethodPost, "/chat/rooms/"+roomID+"/read", requestOptions{})
	return err
}

// SetTyping publishes the caller's typing state for a room.
func (c *Client) SetTyping(ctx context.Context, roomID string, typing bool) error {
	body := map[string]bool{"typing": typing}
	_, err := c.do(ctx, http.MethodPost, "/chat/rooms/"+roomID+"/typing", requestOptions{body: body})
	return err
}
