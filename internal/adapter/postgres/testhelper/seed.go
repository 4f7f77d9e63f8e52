package testhelper

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/heartmarshall/hearme-backend/internal/domain"
)

func uniqueSuffix() string {
	return uuid.New().String()[:8]
}

// SeedProfile inserts a profile with a unique nickname.
func SeedProfile(t *testing.T, pool *pgxpool.Pool) domain.Profile {
	t.Helper()

	p := domain.Profile{Nickname: "tester-" + uniqueSuffix()}
	err := pool.QueryRow(context.Background(),
		`INSERT INTO profiles (nickname) VALUES ($1) RETURNING id, counseling_count, created_at, updated_at`,
		p.Nickname,
	).Scan(&p.ID, &p.CounselingCount, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		t.Fatalf("testhelper: SeedProfile: %v", err)
	}
	return p
}

// SeedWaiting inserts an active waiting entry with an explicit enqueue time,
// so tests can control FIFO order.
func SeedWaiting(t *testing.T, pool *pgxpool.Pool, profileID int64, role domain.Role, topics []string, enqueuedAt time.Time) domain.WaitingEntry {
	t.Helper()

	e := domain.WaitingEntry{
		ProfileID:  profileID,
		Role:       role,
		Topics:     domain.NormalizeTopics(topics),
		Active:     true,
		EnqueuedAt: enqueuedAt.UTC().Truncate(time.Microsecond),
	}
	if e.Topics == nil {
		e.Topics = []string{}
	}
	err := pool.QueryRow(context.Background(),
		`INSERT INTO waiting_entries (profile_id, role, topics, enqueued_at, updated_at)
		 VALUES ($1, $2, $3, $4, $4) RETURNING id, updated_at`,
		e.ProfileID, string(e.Role), e.Topics, e.EnqueuedAt,
	).Scan(&e.ID, &e.UpdatedAt)
	if err != nil {
		t.Fatalf("testhelper: SeedWaiting: %v", err)
	}
	return e
}

// SeedMatching inserts a matching in the given status.
func SeedMatching(t *testing.T, pool *pgxpool.Pool, speakerID, listenerID int64, initiator domain.Role, status domain.MatchingStatus) domain.Matching {
	t.Helper()

	m := domain.Matching{
		SpeakerProfileID:  speakerID,
		ListenerProfileID: listenerID,
		Strategy:          domain.StrategyManual,
		InitiatorRole:     initiator,
		RequestedTopics:   []string{},
		Status:            status,
	}
	err := pool.QueryRow(context.Background(),
		`INSERT INTO matchings (speaker_profile_id, listener_profile_id, strategy, initiator_role, status)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at, updated_at`,
		speakerID, listenerID, string(m.Strategy), string(initiator), string(status),
	).Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		t.Fatalf("testhelper: SeedMatching: %v", err)
	}
	return m
}
