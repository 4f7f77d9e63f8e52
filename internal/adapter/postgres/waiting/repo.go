// Package waiting implements the waiting pool on PostgreSQL.
// Entries are never deleted: matching or canceling flips active to false.
package waiting

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	postgres "github.com/heartmarshall/hearme-backend/internal/adapter/postgres"
	"github.com/heartmarshall/hearme-backend/internal/domain"
)

const columns = "id, profile_id, role, topics, style, active, enqueued_at, updated_at, deactivated_at"

// Repo provides waiting entry persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new waiting pool repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

type row struct {
	ID            int64      `db:"id"`
	ProfileID     int64      `db:"profile_id"`
	Role          string     `db:"role"`
	Topics        []string   `db:"topics"`
	Style         *string    `db:"style"`
	Active        bool       `db:"active"`
	EnqueuedAt    time.Time  `db:"enqueued_at"`
	UpdatedAt     time.Time  `db:"updated_at"`
	DeactivatedAt *time.Time `db:"deactivated_at"`
}

func (r row) toDomain() domain.WaitingEntry {
	e := domain.WaitingEntry{
		ID:            r.ID,
		ProfileID:     r.ProfileID,
		Role:          domain.Role(r.Role),
		Topics:        r.Topics,
		Active:        r.Active,
		EnqueuedAt:    r.EnqueuedAt,
		UpdatedAt:     r.UpdatedAt,
		DeactivatedAt: r.DeactivatedAt,
	}
	if r.Style != nil {
		s := domain.CounselingStyle(*r.Style)
		e.Style = &s
	}
	return e
}

func styleArg(s *domain.CounselingStyle) *string {
	if s == nil {
		return nil
	}
	v := string(*s)
	return &v
}

func topicsArg(topics []string) []string {
	if topics == nil {
		return []string{}
	}
	return topics
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

const enqueueSQL = `
INSERT INTO waiting_entries (profile_id, role, topics, style)
VALUES ($1, $2, $3, $4)
ON CONFLICT (profile_id, role) WHERE active
DO UPDATE SET topics = EXCLUDED.topics, style = EXCLUDED.style, updated_at = now()
RETURNING ` + columns

// Enqueue inserts an active entry or, if one already exists for
// (profileID, role), replaces its preferences keeping enqueued_at.
func (r *Repo) Enqueue(ctx context.Context, profileID int64, role domain.Role, topics []string, style *domain.CounselingStyle) (*domain.WaitingEntry, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	var out row
	if err := pgxscan.Get(ctx, q, &out, enqueueSQL, profileID, string(role), topicsArg(topics), styleArg(style)); err != nil {
		return nil, postgres.MapError(err, "waiting_entry", profileID)
	}

	e := out.toDomain()
	return &e, nil
}

const deactivateSQL = `
UPDATE waiting_entries
SET active = FALSE, deactivated_at = now(), updated_at = now()
WHERE profile_id = $1 AND role = $2 AND active
RETURNING ` + columns

// Deactivate flips the active entry of (profileID, role) to inactive and
// returns it. Returns domain.ErrNotFound if there was no active entry.
func (r *Repo) Deactivate(ctx context.Context, profileID int64, role domain.Role) (*domain.WaitingEntry, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	var out row
	if err := pgxscan.Get(ctx, q, &out, deactivateSQL, profileID, string(role)); err != nil {
		return nil, postgres.MapError(err, "waiting_entry", profileID)
	}

	e := out.toDomain()
	return &e, nil
}

const restoreSQL = `
INSERT INTO waiting_entries (profile_id, role, topics, style)
SELECT last.profile_id, last.role, last.topics, last.style
FROM (
    SELECT profile_id, role, topics, style, active, deactivated_at
    FROM waiting_entries
    WHERE profile_id = $1 AND role = $2
    ORDER BY updated_at DESC, id DESC
    LIMIT 1
) last
WHERE (last.active OR last.deactivated_at >= $3)
  AND NOT EXISTS (
    SELECT 1 FROM matchings
    WHERE status = 'ACCEPTED' AND (speaker_profile_id = $1 OR listener_profile_id = $1)
  )
ON CONFLICT (profile_id, role) WHERE active
DO UPDATE SET updated_at = now()
RETURNING ` + columns

// Restore puts profileID back in the pool for role with the preferences of
// its most recent entry, provided that entry is still active or was closed
// at or after since. A profile engaged in an ACCEPTED matching stays out.
// Returns domain.ErrNotFound when nothing was restored.
func (r *Repo) Restore(ctx context.Context, profileID int64, role domain.Role, since time.Time) (*domain.WaitingEntry, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	var out row
	if err := pgxscan.Get(ctx, q, &out, restoreSQL, profileID, string(role), since); err != nil {
		return nil, postgres.MapError(err, "waiting_entry", profileID)
	}

	e := out.toDomain()
	return &e, nil
}

// Claim atomically deactivates the oldest active entry matching f and
// returns it. Concurrent claimers never receive the same entry. Returns
// domain.ErrNotFound if nothing qualifies.
func (r *Repo) Claim(ctx context.Context, f domain.WaitingFilter, excludeProfileID int64) (*domain.WaitingEntry, error) {
	pick := candidateQuery(squirrel.Select("id"), f, excludeProfileID).
		Limit(1).
		Suffix("FOR UPDATE SKIP LOCKED")

	query := postgres.Builder().
		Update("waiting_entries").
		Set("active", false).
		Set("deactivated_at", squirrel.Expr("now()")).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Expr("id = (?)", pick)).
		Suffix("RETURNING " + columns)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build claim query: %w", err)
	}

	var out row
	if err := pgxscan.Get(ctx, postgres.QuerierFromCtx(ctx, r.db), &out, sql, args...); err != nil {
		return nil, postgres.MapError(err, "waiting_entry", f.Role)
	}

	e := out.toDomain()
	return &e, nil
}

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// FindCandidates returns active entries of f.Role, oldest first, that share
// at least one topic with f.Topics (when given) and have style f.Style (when
// given). excludeProfileID, if positive, is left out.
func (r *Repo) FindCandidates(ctx context.Context, f domain.WaitingFilter, excludeProfileID int64) ([]domain.WaitingEntry, error) {
	query := candidateQuery(postgres.Builder().Select(columns), f, excludeProfileID)
	if f.Limit > 0 {
		query = query.Limit(uint64(f.Limit))
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build candidates query: %w", err)
	}

	var rows []row
	if err := pgxscan.Select(ctx, postgres.QuerierFromCtx(ctx, r.db), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("find candidates: %w", err)
	}

	out := make([]domain.WaitingEntry, len(rows))
	for i, rw := range rows {
		out[i] = rw.toDomain()
	}
	return out, nil
}

const isActiveSQL = `SELECT EXISTS(SELECT 1 FROM waiting_entries WHERE profile_id = $1 AND role = $2 AND active)`

// IsActive reports whether profileID currently waits in role.
func (r *Repo) IsActive(ctx context.Context, profileID int64, role domain.Role) (bool, error) {
	var ok bool
	err := postgres.QuerierFromCtx(ctx, r.db).QueryRow(ctx, isActiveSQL, profileID, string(role)).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("waiting_entry %d is active: %w", profileID, err)
	}
	return ok, nil
}

func candidateQuery(b squirrel.SelectBuilder, f domain.WaitingFilter, excludeProfileID int64) squirrel.SelectBuilder {
	q := b.From("waiting_entries").
		Where("active").
		Where(squirrel.Eq{"role": string(f.Role)})

	if excludeProfileID > 0 {
		q = q.Where(squirrel.NotEq{"profile_id": excludeProfileID})
	}
	if len(f.Topics) > 0 {
		q = q.Where("topics && ?", f.Topics)
	}
	if f.Style != nil {
		q = q.Where(squirrel.Eq{"style": string(*f.Style)})
	}
	return q.OrderBy("enqueued_at", "id")
}
