// Package store persists a read-through cache of rooms and messages in a
// local SQLite database so the portal can render the last known state before
// the first fetch completes.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/noah-isme/studentlink-portal/internal/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS chat_rooms (
	id               TEXT PRIMARY KEY,
	concern_id       TEXT NOT NULL,
	room_name        TEXT NOT NULL,
	status           TEXT NOT NULL,
	unread_count     INTEGER NOT NULL DEFAULT 0,
	last_activity_at TIMESTAMP,
	created_at       TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS chat_messages (
	id           TEXT PRIMARY KEY,
	room_id      TEXT NOT NULL,
	author_id    TEXT NOT NULL,
	author_name  TEXT NOT NULL DEFAULT '',
	message      TEXT NOT NULL,
	message_type TEXT NOT NULL,
	delivered_at TIMESTAMP,
	read_at      TIMESTAMP,
	created_at   TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_messages_room_created
	ON chat_messages (room_id, created_at);
`

// Store wraps the cache database.
type Store struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// Open creates the database file (and its directory) if needed and applies
// the schema.
func Open(path string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("creating cache directory: %w", err)
		}
	}

	db, err := sqlx.Connect("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening cache database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying cache schema: %w", err)
	}
	return &Store{db: db, logger: logger}, nil
}

// NewWithDB wraps an existing connection, for tests.
func NewWithDB(db *sqlx.DB, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{db: db, logger: logger}
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// UpsertRooms writes the given rooms, replacing cached copies by id.
func (s *Store) UpsertRooms(ctx context.Context, rooms []models.ChatRoom) error {
	if len(rooms) == 0 {
		return nil
	}
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	const query = `
		INSERT INTO chat_rooms (id, concern_id, room_name, status, unread_count, last_activity_at, created_at)
		VALUES (:id, :concern_id, :room_name, :status, :unread_count, :last_activity_at, :created_at)
		ON CONFLICT (id) DO UPDATE SET
			room_name = excluded.room_name,
			status = excluded.status,
			unread_count = excluded.unread_count,
			last_activity_at = excluded.last_activity_at`
	for _, room := range rooms {
		if _, err := tx.NamedExecContext(ctx, query, room); err != nil {
			return fmt.Errorf("caching room %s: %w", room.ID, err)
		}
	}
	return tx.Commit()
}

// ListRooms returns cached rooms, most recent activity first.
func (s *Store) ListRooms(ctx context.Context) ([]models.ChatRoom, error) {
	var rooms []models.ChatRoom
	err := s.db.SelectContext(ctx, &rooms, `
		SELECT id, concern_id, room_name, status, unread_count, last_activity_at, created_at
		FROM chat_rooms
		ORDER BY last_activity_at IS NULL, last_activity_at DESC, created_at DESC`)
	if err != nil {
		return nil, err
	}
	return rooms, nil
}

// UpsertMessages writes messages, replacing cached copies by id. Receipt
// timestamps only ever move forward: a cached read_at is never cleared.
func (s *Store) UpsertMessages(ctx context.Context, msgs []models.ChatMessage) error {
	if len(msgs) == 0 {
		return nil
	}
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	const query = `
		INSERT INTO chat_messages (id, room_id, author_id, author_name, message, message_type, delivered_at, read_at, created_at)
		VALUES (:id, :room_id, :author_id, :author_name, :message, :message_type, :delivered_at, :read_at, :created_at)
		ON CONFLICT (id) DO UPDATE SET
			delivered_at = COALESCE(excluded.delivered_at, chat_messages.delivered_at),
			read_at = COALESCE(excluded.read_at, chat_messages.read_at)`
	for _, m := range msgs {
		if _, err := tx.NamedExecContext(ctx, query, m); err != nil {
			return fmt.Errorf("caching message %s: %w", m.ID, err)
		}
	}
	return tx.Commit()
}

// ListMessages returns the cached tail of a room's history in timestamp
// order. limit <= 0 returns everything.
func (s *Store) ListMessages(ctx context.Context, roomID string, limit int) ([]models.ChatMessage, error) {
	query := `
		SELECT id, room_id, author_id, author_name, message, message_type, delivered_at, read_at, created_at
		FROM chat_messages
		WHERE room_id = ?
		ORDER BY created_at ASC`
	args := []any{roomID}
	if limit > 0 {
		query = `
			SELECT * FROM (
				SELECT id, room_id, author_id, author_name, message, message_type, delivered_at, read_at, created_at
				FROM chat_messages
				WHERE room_id = ?
				ORDER BY created_at DESC
				LIMIT ?
			) ORDER BY created_at ASC`
		args = append(args, limit)
	}

	var msgs []models.ChatMessage
	if err := s.db.SelectContext(ctx, &msgs, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return msgs, nil
}

// Purge drops all cached data, used on logout.
func (s *Store) Purge(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM chat_messages`); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `DELETE FROM chat_rooms`)
	return err
}
