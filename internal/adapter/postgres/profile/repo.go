// Package profile holds the profile counters and daily quotas the matching
// engine maintains.
package profile

import (
	"context"
	"fmt"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"

	postgres "github.com/heartmarshall/hearme-backend/internal/adapter/postgres"
	"github.com/heartmarshall/hearme-backend/internal/domain"
)

// Repo provides profile persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new profile repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

const getByIDSQL = `SELECT id, nickname, counseling_count, created_at, updated_at FROM profiles WHERE id = $1`

// GetByID returns a profile by primary key.
func (r *Repo) GetByID(ctx context.Context, id int64) (*domain.Profile, error) {
	var p domain.Profile
	err := postgres.QuerierFromCtx(ctx, r.db).QueryRow(ctx, getByIDSQL, id).
		Scan(&p.ID, &p.Nickname, &p.CounselingCount, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, postgres.MapError(err, "profile", id)
	}
	return &p, nil
}

const incrementCounselingSQL = `
UPDATE profiles SET counseling_count = counseling_count + 1, updated_at = now()
WHERE id = ANY($1)`

// IncrementCounselingCount adds one completed session to every profile in ids.
func (r *Repo) IncrementCounselingCount(ctx context.Context, ids ...int64) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := postgres.QuerierFromCtx(ctx, r.db).Exec(ctx, incrementCounselingSQL, ids)
	if err != nil {
		return postgres.MapError(err, "profile", ids)
	}
	return nil
}

const consumeQuotaSQL = `
INSERT INTO profile_daily_quotas (profile_id, action, day, used)
VALUES ($1, $2, $3, 1)
ON CONFLICT (profile_id, action, day)
DO UPDATE SET used = profile_daily_quotas.used + 1
WHERE profile_daily_quotas.used < $4
RETURNING used`

// ConsumeQuota takes one unit of action for profileID on day. It returns
// domain.ErrQuotaExceeded when limit units are already used. Run it inside
// the transaction of the guarded transition so a failed transition does
// not consume quota.
func (r *Repo) ConsumeQuota(ctx context.Context, profileID int64, action domain.QuotaAction, day time.Time, limit int) (int, error) {
	var used int
	err := pgxscan.Get(ctx, postgres.QuerierFromCtx(ctx, r.db), &used, consumeQuotaSQL,
		profileID, string(action), day.UTC().Format(time.DateOnly), limit,
	)
	if err != nil {
		if pgxscan.NotFound(err) {
			return 0, fmt.Errorf("%s quota of profile %d: %w", action, profileID, domain.ErrQuotaExceeded)
		}
		return 0, postgres.MapError(err, "profile", profileID)
	}
	return used, nil
}
