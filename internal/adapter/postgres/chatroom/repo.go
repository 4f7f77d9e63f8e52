// Package chatroom records the chat room opened for each accepted matching.
// Room content lives in the chat subsystem; this table only hands out the
// identifier that subsystem keys rooms by.
package chatroom

import (
	"context"

	"github.com/google/uuid"

	postgres "github.com/heartmarshall/hearme-backend/internal/adapter/postgres"
	"github.com/heartmarshall/hearme-backend/internal/domain"
)

// Repo provides chat room persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new chat room repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

// Re-creating the room for the same matching returns the existing id.
const createRoomSQL = `
INSERT INTO chat_rooms (id, matching_id) VALUES ($1, $2)
ON CONFLICT (matching_id) DO UPDATE SET matching_id = EXCLUDED.matching_id
RETURNING id`

// CreateRoom opens the room for m and returns its id.
func (r *Repo) CreateRoom(ctx context.Context, m *domain.Matching) (string, error) {
	var id uuid.UUID
	err := postgres.QuerierFromCtx(ctx, r.db).QueryRow(ctx, createRoomSQL, uuid.New(), m.ID).Scan(&id)
	if err != nil {
		return "", postgres.MapError(err, "chat_room", m.ID)
	}
	return id.String(), nil
}
