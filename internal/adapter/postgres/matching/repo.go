// Package matching stores matchings. Every status change is a conditional
// UPDATE on the expected source statuses, so of two racing transitions on
// the same row exactly one succeeds.
package matching

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	postgres "github.com/heartmarshall/hearme-backend/internal/adapter/postgres"
	"github.com/heartmarshall/hearme-backend/internal/domain"
)

const columns = `id, speaker_profile_id, listener_profile_id, strategy, initiator_role, requested_topics,
    status, reject_reason, chat_room_id, created_at, matched_at, completed_at, updated_at`

const defaultListLimit = 50

// Repo provides matching persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new matching repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

type row struct {
	ID                int64      `db:"id"`
	SpeakerProfileID  int64      `db:"speaker_profile_id"`
	ListenerProfileID int64      `db:"listener_profile_id"`
	Strategy          string     `db:"strategy"`
	InitiatorRole     string     `db:"initiator_role"`
	RequestedTopics   []string   `db:"requested_topics"`
	Status            string     `db:"status"`
	RejectReason      *string    `db:"reject_reason"`
	ChatRoomID        *string    `db:"chat_room_id"`
	CreatedAt         time.Time  `db:"created_at"`
	MatchedAt         *time.Time `db:"matched_at"`
	CompletedAt       *time.Time `db:"completed_at"`
	UpdatedAt         time.Time  `db:"updated_at"`
}

func (r row) toDomain() domain.Matching {
	return domain.Matching{
		ID:                r.ID,
		SpeakerProfileID:  r.SpeakerProfileID,
		ListenerProfileID: r.ListenerProfileID,
		Strategy:          domain.Strategy(r.Strategy),
		InitiatorRole:     domain.Role(r.InitiatorRole),
		RequestedTopics:   r.RequestedTopics,
		Status:            domain.MatchingStatus(r.Status),
		RejectReason:      r.RejectReason,
		ChatRoomID:        r.ChatRoomID,
		CreatedAt:         r.CreatedAt,
		MatchedAt:         r.MatchedAt,
		CompletedAt:       r.CompletedAt,
		UpdatedAt:         r.UpdatedAt,
	}
}

func toDomainList(rows []row) []domain.Matching {
	out := make([]domain.Matching, len(rows))
	for i, r := range rows {
		out[i] = r.toDomain()
	}
	return out
}

func statusArgs(statuses []domain.MatchingStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

const createSQL = `
INSERT INTO matchings (speaker_profile_id, listener_profile_id, strategy, initiator_role, requested_topics, status)
VALUES ($1, $2, $3, $4, $5, 'REQUESTED')
RETURNING ` + columns

// Create inserts m in REQUESTED status.
func (r *Repo) Create(ctx context.Context, m *domain.Matching) (*domain.Matching, error) {
	topics := m.RequestedTopics
	if topics == nil {
		topics = []string{}
	}

	var out row
	err := pgxscan.Get(ctx, postgres.QuerierFromCtx(ctx, r.db), &out, createSQL,
		m.SpeakerProfileID, m.ListenerProfileID, string(m.Strategy), string(m.InitiatorRole), topics,
	)
	if err != nil {
		return nil, postgres.MapError(err, "matching", fmt.Sprintf("%d->%d", m.SpeakerProfileID, m.ListenerProfileID))
	}

	created := out.toDomain()
	return &created, nil
}

const transitionSQL = `
UPDATE matchings
SET status        = $3,
    reject_reason = COALESCE($4, reject_reason),
    matched_at    = CASE WHEN $3 = 'ACCEPTED' THEN now() ELSE matched_at END,
    completed_at  = CASE WHEN $3 = 'COMPLETED' THEN now() ELSE completed_at END,
    updated_at    = now()
WHERE id = $1 AND status = ANY($2)
RETURNING ` + columns

// Transition moves matching id to status to if it is currently in one of
// from. Returns domain.ErrInvalidStatus if the row is not in a source
// status (including when it does not exist; callers load it first).
func (r *Repo) Transition(ctx context.Context, id int64, from []domain.MatchingStatus, to domain.MatchingStatus, reason *string) (*domain.Matching, error) {
	var out row
	err := pgxscan.Get(ctx, postgres.QuerierFromCtx(ctx, r.db), &out, transitionSQL,
		id, statusArgs(from), string(to), reason,
	)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, fmt.Errorf("matching %d to %s: %w", id, to, domain.ErrInvalidStatus)
		}
		return nil, postgres.MapError(err, "matching", id)
	}

	m := out.toDomain()
	return &m, nil
}

const setChatRoomSQL = `UPDATE matchings SET chat_room_id = $2, updated_at = now() WHERE id = $1`

// SetChatRoom links the chat room opened for matching id.
func (r *Repo) SetChatRoom(ctx context.Context, id int64, roomID string) error {
	tag, err := postgres.QuerierFromCtx(ctx, r.db).Exec(ctx, setChatRoomSQL, id, roomID)
	if err != nil {
		return postgres.MapError(err, "matching", id)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("matching %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

const rejectPendingSQL = `
UPDATE matchings
SET status = 'REJECTED', reject_reason = $3, updated_at = now()
WHERE listener_profile_id = $1 AND status = 'REQUESTED' AND id <> $2
  AND ($4::timestamptz IS NULL OR created_at <= $4)
RETURNING ` + columns

// RejectPendingForListener rejects every REQUESTED matching of listenerID
// other than exceptID and returns the rows it changed. A non-nil
// createdBefore limits it to requests created at or before that instant, so
// requests made after the listener became free again survive a late replay.
// Rows already in a terminal status are untouched, so repeating the call
// returns nothing.
func (r *Repo) RejectPendingForListener(ctx context.Context, listenerID, exceptID int64, reason string, createdBefore *time.Time) ([]domain.Matching, error) {
	var rows []row
	err := pgxscan.Select(ctx, postgres.QuerierFromCtx(ctx, r.db), &rows, rejectPendingSQL, listenerID, exceptID, reason, createdBefore)
	if err != nil {
		return nil, postgres.MapError(err, "listener", listenerID)
	}
	return toDomainList(rows), nil
}

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

const getByIDSQL = `SELECT ` + columns + ` FROM matchings WHERE id = $1`

// GetByID returns a matching by primary key.
func (r *Repo) GetByID(ctx context.Context, id int64) (*domain.Matching, error) {
	var out row
	if err := pgxscan.Get(ctx, postgres.QuerierFromCtx(ctx, r.db), &out, getByIDSQL, id); err != nil {
		return nil, postgres.MapError(err, "matching", id)
	}
	m := out.toDomain()
	return &m, nil
}

// ListByProfile returns matchings where f.ProfileID is either party,
// newest first.
func (r *Repo) ListByProfile(ctx context.Context, f domain.MatchingFilter) ([]domain.Matching, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}

	query := postgres.Builder().
		Select(columns).
		From("matchings").
		Where(squirrel.Or{
			squirrel.Eq{"speaker_profile_id": f.ProfileID},
			squirrel.Eq{"listener_profile_id": f.ProfileID},
		}).
		OrderBy("created_at DESC", "id DESC").
		Limit(uint64(limit))

	if f.Status != nil {
		query = query.Where(squirrel.Eq{"status": string(*f.Status)})
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list query: %w", err)
	}

	var rows []row
	if err := pgxscan.Select(ctx, postgres.QuerierFromCtx(ctx, r.db), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("list matchings for profile %d: %w", f.ProfileID, err)
	}
	return toDomainList(rows), nil
}

const countOpenSQL = `
SELECT profile_id, count(*) AS open
FROM (
    SELECT speaker_profile_id AS profile_id FROM matchings WHERE status = ANY($1)
    UNION ALL
    SELECT listener_profile_id FROM matchings WHERE status = ANY($1)
) p
GROUP BY profile_id`

type openCount struct {
	ProfileID int64 `db:"profile_id"`
	Open      int64 `db:"open"`
}

// CountOpenByProfile returns, for every profile holding at least one
// non-terminal matching, how many it holds.
func (r *Repo) CountOpenByProfile(ctx context.Context) (map[int64]int64, error) {
	var rows []openCount
	err := pgxscan.Select(ctx, postgres.QuerierFromCtx(ctx, r.db), &rows, countOpenSQL,
		statusArgs(domain.OpenMatchingStatuses),
	)
	if err != nil {
		return nil, fmt.Errorf("count open matchings: %w", err)
	}

	out := make(map[int64]int64, len(rows))
	for _, c := range rows {
		out[c.ProfileID] = c.Open
	}
	return out, nil
}
