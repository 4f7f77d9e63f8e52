package matching

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/heartmarshall/hearme-backend/internal/config"
	"github.com/heartmarshall/hearme-backend/internal/domain"
	"github.com/heartmarshall/hearme-backend/internal/relay"
	"github.com/heartmarshall/hearme-backend/pkg/ctxutil"
)

//go:generate moq -out waiting_repo_mock_test.go -pkg matching . waitingRepo
//go:generate moq -out matching_repo_mock_test.go -pkg matching . matchingRepo
//go:generate moq -out profile_repo_mock_test.go -pkg matching . profileRepo
//go:generate moq -out chat_rooms_mock_test.go -pkg matching . chatRooms
//go:generate moq -out tx_manager_mock_test.go -pkg matching . txManager

// ===========================================================================
// In-memory presence and publisher
// ===========================================================================

var errPresenceDown = errors.New("presence unavailable")

type fakePresence struct {
	mu        sync.Mutex
	active    map[int64]int64
	available map[domain.Role]map[int64]bool
	down      bool
}

func newFakePresence() *fakePresence {
	return &fakePresence{
		active: map[int64]int64{},
		available: map[domain.Role]map[int64]bool{
			domain.RoleSpeaker:  {},
			domain.RoleListener: {},
		},
	}
}

func (p *fakePresence) MarkAvailable(_ context.Context, id int64, role domain.Role) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.down {
		return errPresenceDown
	}
	p.available[role][id] = true
	return nil
}

func (p *fakePresence) MarkUnavailable(_ context.Context, id int64, role domain.Role) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.down {
		return errPresenceDown
	}
	delete(p.available[role], id)
	return nil
}

func (p *fakePresence) IncrementActive(_ context.Context, id int64) (int64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.down {
		return 0, errPresenceDown
	}
	p.active[id]++
	return p.active[id], nil
}

func (p *fakePresence) DecrementActive(_ context.Context, id int64) (int64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.down {
		return 0, errPresenceDown
	}
	if p.active[id] <= 1 {
		delete(p.active, id)
		return 0, nil
	}
	p.active[id]--
	return p.active[id], nil
}

func (p *fakePresence) ActiveCount(_ context.Context, id int64) (int64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.down {
		return 0, errPresenceDown
	}
	return p.active[id], nil
}

// PickRandomAvailable returns the lowest id so tests are deterministic.
func (p *fakePresence) PickRandomAvailable(_ context.Context, role domain.Role, exclude int64) (int64, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.down {
		return 0, false, errPresenceDown
	}
	var best int64
	for id := range p.available[role] {
		if id != exclude && (best == 0 || id < best) {
			best = id
		}
	}
	return best, best != 0, nil
}

func (p *fakePresence) ReplaceActiveCounts(_ context.Context, counts map[int64]int64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.down {
		return errPresenceDown
	}
	p.active = map[int64]int64{}
	for id, n := range counts {
		p.active[id] = n
	}
	return nil
}

func (p *fakePresence) ReplaceAvailable(_ context.Context, role domain.Role, ids []int64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.down {
		return errPresenceDown
	}
	p.available[role] = map[int64]bool{}
	for _, id := range ids {
		p.available[role][id] = true
	}
	return nil
}

func (p *fakePresence) isAvailable(id int64, role domain.Role) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.available[role][id]
}

func (p *fakePresence) count(id int64) int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active[id]
}

type fakePublisher struct {
	mu   sync.Mutex
	msgs []relay.Message
}

func (p *fakePublisher) Publish(_ context.Context, m relay.Message) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msgs = append(p.msgs, m)
}

func (p *fakePublisher) on(topic string) []relay.Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []relay.Message
	for _, m := range p.msgs {
		if m.Topic == topic {
			out = append(out, m)
		}
	}
	return out
}

// events decodes everything published on the events topic.
func (p *fakePublisher) events(t *testing.T) []domain.MatchingEvent {
	t.Helper()
	var out []domain.MatchingEvent
	for _, m := range p.on(testEventsTopic) {
		var e domain.MatchingEvent
		if err := json.Unmarshal(m.Payload, &e); err != nil {
			t.Fatalf("decode event: %v", err)
		}
		out = append(out, e)
	}
	return out
}

func (p *fakePublisher) eventTypes(t *testing.T) []domain.EventType {
	t.Helper()
	var out []domain.EventType
	for _, e := range p.events(t) {
		out = append(out, e.EventType)
	}
	return out
}

func (p *fakePublisher) notifications(t *testing.T) []domain.Notification {
	t.Helper()
	var out []domain.Notification
	for _, m := range p.on(testNotificationsTopic) {
		var n domain.Notification
		if err := json.Unmarshal(m.Payload, &n); err != nil {
			t.Fatalf("decode notification: %v", err)
		}
		out = append(out, n)
	}
	return out
}

// ===========================================================================
// Helpers
// ===========================================================================

const (
	testEventsTopic        = "matching.events"
	testNotificationsTopic = "matching.notifications"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type testDeps struct {
	waiting   *waitingRepoMock
	matchings *matchingRepoMock
	profiles  *profileRepoMock
	rooms     *chatRoomsMock
	presence  *fakePresence
	events    *fakePublisher
	tx        *txManagerMock
}

// newTestService wires mocks whose defaults describe an empty pool: nobody
// waits, nothing exists, quotas and chat rooms always succeed.
func newTestService(cfg config.MatchingConfig) (*Service, *testDeps) {
	nextID := int64(100)
	d := &testDeps{
		waiting: &waitingRepoMock{
			EnqueueFunc: func(_ context.Context, profileID int64, role domain.Role, topics []string, style *domain.CounselingStyle) (*domain.WaitingEntry, error) {
				return &domain.WaitingEntry{ID: 1, ProfileID: profileID, Role: role, Topics: topics, Style: style, Active: true}, nil
			},
			DeactivateFunc: func(context.Context, int64, domain.Role) (*domain.WaitingEntry, error) {
				return nil, domain.ErrNotFound
			},
			RestoreFunc: func(context.Context, int64, domain.Role, time.Time) (*domain.WaitingEntry, error) {
				return nil, domain.ErrNotFound
			},
			ClaimFunc: func(context.Context, domain.WaitingFilter, int64) (*domain.WaitingEntry, error) {
				return nil, domain.ErrNotFound
			},
			FindCandidatesFunc: func(context.Context, domain.WaitingFilter, int64) ([]domain.WaitingEntry, error) {
				return nil, nil
			},
			IsActiveFunc: func(context.Context, int64, domain.Role) (bool, error) {
				return false, nil
			},
		},
		matchings: &matchingRepoMock{
			CreateFunc: func(_ context.Context, m *domain.Matching) (*domain.Matching, error) {
				out := *m
				out.ID = nextID
				out.Status = domain.MatchingStatusRequested
				nextID++
				return &out, nil
			},
			TransitionFunc: func(context.Context, int64, []domain.MatchingStatus, domain.MatchingStatus, *string) (*domain.Matching, error) {
				return nil, domain.ErrInvalidStatus
			},
			SetChatRoomFunc: func(context.Context, int64, string) error {
				return nil
			},
			RejectPendingForListenerFunc: func(context.Context, int64, int64, string, *time.Time) ([]domain.Matching, error) {
				return nil, nil
			},
			GetByIDFunc: func(context.Context, int64) (*domain.Matching, error) {
				return nil, domain.ErrNotFound
			},
			ListByProfileFunc: func(context.Context, domain.MatchingFilter) ([]domain.Matching, error) {
				return nil, nil
			},
			CountOpenByProfileFunc: func(context.Context) (map[int64]int64, error) {
				return map[int64]int64{}, nil
			},
		},
		profiles: &profileRepoMock{
			IncrementCounselingCountFunc: func(context.Context, ...int64) error {
				return nil
			},
			ConsumeQuotaFunc: func(context.Context, int64, domain.QuotaAction, time.Time, int) (int, error) {
				return 1, nil
			},
		},
		rooms: &chatRoomsMock{
			CreateRoomFunc: func(context.Context, *domain.Matching) (string, error) {
				return "room-1", nil
			},
		},
		presence: newFakePresence(),
		events:   &fakePublisher{},
		tx: &txManagerMock{
			RunInTxFunc: func(ctx context.Context, fn func(ctx context.Context) error) error {
				return fn(ctx)
			},
		},
	}
	svc := NewService(
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		d.waiting, d.matchings, d.profiles, d.rooms, d.presence, d.events, d.tx,
		cfg,
		config.KafkaConfig{EventsTopic: testEventsTopic, NotificationsTopic: testNotificationsTopic},
	)
	svc.now = func() time.Time { return testNow }
	return svc, d
}

func defaultConfig() config.MatchingConfig {
	return config.MatchingConfig{MaxActiveMatches: 3, MaxRejectionsPerDay: 20, MaxCancellationsPerDay: 10}
}

func asProfile(id int64) context.Context {
	return ctxutil.WithProfileID(context.Background(), id)
}

func asAdmin(id int64) context.Context {
	return ctxutil.WithUserRole(asProfile(id), "admin")
}

// requested returns a REQUESTED matching from speaker 10 to listener 20,
// initiated by role.
func requested(id int64, initiator domain.Role) *domain.Matching {
	return &domain.Matching{
		ID:                id,
		SpeakerProfileID:  10,
		ListenerProfileID: 20,
		Strategy:          domain.StrategyManual,
		InitiatorRole:     initiator,
		Status:            domain.MatchingStatusRequested,
	}
}

// acceptedMatching returns requested(id, initiator) as it looks once accepted.
func acceptedMatching(id int64, initiator domain.Role) *domain.Matching {
	m := requested(id, initiator)
	at := testNow
	m.Status = domain.MatchingStatusAccepted
	m.MatchedAt = &at
	return m
}

// transitionTo returns a TransitionFunc that applies to onto base the way
// the store does, stamping matched_at on acceptance.
func transitionTo(base *domain.Matching) func(context.Context, int64, []domain.MatchingStatus, domain.MatchingStatus, *string) (*domain.Matching, error) {
	return func(_ context.Context, id int64, from []domain.MatchingStatus, to domain.MatchingStatus, reason *string) (*domain.Matching, error) {
		for _, s := range from {
			if s == base.Status {
				out := *base
				out.Status = to
				out.RejectReason = reason
				if to == domain.MatchingStatusAccepted {
					at := testNow
					out.MatchedAt = &at
				}
				return &out, nil
			}
		}
		return nil, domain.ErrInvalidStatus
	}
}

func enqueuedIDs(d *testDeps) []int64 {
	var ids []int64
	for _, c := range d.waiting.EnqueueCalls() {
		ids = append(ids, c.ProfileID)
	}
	return ids
}

func deactivatedIDs(d *testDeps) []int64 {
	var ids []int64
	for _, c := range d.waiting.DeactivateCalls() {
		ids = append(ids, c.ProfileID)
	}
	return ids
}

// restoredSeats lists the (profile, role) pairs Restore was asked for.
func restoredSeats(d *testDeps) []seat {
	var out []seat
	for _, c := range d.waiting.RestoreCalls() {
		out = append(out, seat{profileID: c.ProfileID, role: c.Role})
	}
	return out
}

// restoreAll makes every Restore succeed.
func restoreAll(_ context.Context, id int64, role domain.Role, _ time.Time) (*domain.WaitingEntry, error) {
	return &domain.WaitingEntry{ProfileID: id, Role: role, Active: true}, nil
}
