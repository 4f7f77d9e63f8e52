package matching

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/heartmarshall/hearme-backend/internal/config"
	"github.com/heartmarshall/hearme-backend/internal/domain"
	"github.com/heartmarshall/hearme-backend/internal/relay"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type waitingRepo interface {
	Enqueue(ctx context.Context, profileID int64, role domain.Role, topics []string, style *domain.CounselingStyle) (*domain.WaitingEntry, error)
	Deactivate(ctx context.Context, profileID int64, role domain.Role) (*domain.WaitingEntry, error)
	Restore(ctx context.Context, profileID int64, role domain.Role, since time.Time) (*domain.WaitingEntry, error)
	Claim(ctx context.Context, f domain.WaitingFilter, excludeProfileID int64) (*domain.WaitingEntry, error)
	FindCandidates(ctx context.Context, f domain.WaitingFilter, excludeProfileID int64) ([]domain.WaitingEntry, error)
	IsActive(ctx context.Context, profileID int64, role domain.Role) (bool, error)
}

type matchingRepo interface {
	Create(ctx context.Context, m *domain.Matching) (*domain.Matching, error)
	Transition(ctx context.Context, id int64, from []domain.MatchingStatus, to domain.MatchingStatus, reason *string) (*domain.Matching, error)
	SetChatRoom(ctx context.Context, id int64, roomID string) error
	RejectPendingForListener(ctx context.Context, listenerID, exceptID int64, reason string, createdBefore *time.Time) ([]domain.Matching, error)
	GetByID(ctx context.Context, id int64) (*domain.Matching, error)
	ListByProfile(ctx context.Context, f domain.MatchingFilter) ([]domain.Matching, error)
	CountOpenByProfile(ctx context.Context) (map[int64]int64, error)
}

type profileRepo interface {
	IncrementCounselingCount(ctx context.Context, ids ...int64) error
	ConsumeQuota(ctx context.Context, profileID int64, action domain.QuotaAction, day time.Time, limit int) (int, error)
}

type chatRooms interface {
	CreateRoom(ctx context.Context, m *domain.Matching) (string, error)
}

type presenceStore interface {
	MarkAvailable(ctx context.Context, profileID int64, role domain.Role) error
	MarkUnavailable(ctx context.Context, profileID int64, role domain.Role) error
	IncrementActive(ctx context.Context, profileID int64) (int64, error)
	DecrementActive(ctx context.Context, profileID int64) (int64, error)
	ActiveCount(ctx context.Context, profileID int64) (int64, error)
	PickRandomAvailable(ctx context.Context, role domain.Role, excludeProfileID int64) (int64, bool, error)
	ReplaceActiveCounts(ctx context.Context, counts map[int64]int64) error
	ReplaceAvailable(ctx context.Context, role domain.Role, profileIDs []int64) error
}

type publisher interface {
	Publish(ctx context.Context, m relay.Message)
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Service implements the matching engine: the waiting pool use cases, the
// request router, matching transitions and the event reactions.
type Service struct {
	log       *slog.Logger
	waiting   waitingRepo
	matchings matchingRepo
	profiles  profileRepo
	rooms     chatRooms
	presence  presenceStore
	events    publisher
	tx        txManager
	cfg       config.MatchingConfig
	topics    config.KafkaConfig
	now       func() time.Time
}

// NewService creates a new Matching service.
func NewService(
	logger *slog.Logger,
	waiting waitingRepo,
	matchings matchingRepo,
	profiles profileRepo,
	rooms chatRooms,
	presence presenceStore,
	events publisher,
	tx txManager,
	cfg config.MatchingConfig,
	topics config.KafkaConfig,
) *Service {
	return &Service{
		log:       logger.With("service", "matching"),
		waiting:   waiting,
		matchings: matchings,
		profiles:  profiles,
		rooms:     rooms,
		presence:  presence,
		events:    events,
		tx:        tx,
		cfg:       cfg,
		topics:    topics,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// ---------------------------------------------------------------------------
// Event publishing
// ---------------------------------------------------------------------------

func (s *Service) publish(ctx context.Context, t domain.EventType, m *domain.Matching) {
	evt := domain.NewMatchingEvent(t, m, s.now())
	msg, err := relay.NewMessage(s.topics.EventsTopic, evt.Key(), evt.EventID.String(), evt)
	if err != nil {
		s.log.ErrorContext(ctx, "encode matching event", slog.String("error", err.Error()))
		return
	}
	s.events.Publish(ctx, msg)
}

func (s *Service) notify(ctx context.Context, evt domain.MatchingEvent) {
	for _, n := range evt.Notifications() {
		msg, err := relay.NewMessage(s.topics.NotificationsTopic, n.Key(), n.EventID.String(), n)
		if err != nil {
			s.log.ErrorContext(ctx, "encode notification", slog.String("error", err.Error()))
			continue
		}
		s.events.Publish(ctx, msg)
	}
}

// ---------------------------------------------------------------------------
// Presence side effects. The cache is never authoritative: failures are
// logged and repaired by RebuildPresence.
// ---------------------------------------------------------------------------

func (s *Service) markAvailable(ctx context.Context, profileID int64, role domain.Role) {
	if err := s.presence.MarkAvailable(ctx, profileID, role); err != nil {
		s.log.WarnContext(ctx, "presence mark available", slog.Int64("profile_id", profileID), slog.String("error", err.Error()))
	}
}

func (s *Service) markUnavailable(ctx context.Context, profileID int64, role domain.Role) {
	if err := s.presence.MarkUnavailable(ctx, profileID, role); err != nil {
		s.log.WarnContext(ctx, "presence mark unavailable", slog.Int64("profile_id", profileID), slog.String("error", err.Error()))
	}
}

func (s *Service) incrementActive(ctx context.Context, ids ...int64) {
	for _, id := range ids {
		if _, err := s.presence.IncrementActive(ctx, id); err != nil {
			s.log.WarnContext(ctx, "presence increment", slog.Int64("profile_id", id), slog.String("error", err.Error()))
		}
	}
}

func (s *Service) decrementActive(ctx context.Context, ids ...int64) {
	for _, id := range ids {
		if _, err := s.presence.DecrementActive(ctx, id); err != nil {
			s.log.WarnContext(ctx, "presence decrement", slog.Int64("profile_id", id), slog.String("error", err.Error()))
		}
	}
}

// released applies the presence effects of matchings that reached a
// terminal status and publishes their events.
func (s *Service) released(ctx context.Context, t domain.EventType, ms ...domain.Matching) {
	for i := range ms {
		m := &ms[i]
		s.decrementActive(ctx, m.SpeakerProfileID, m.ListenerProfileID)
		s.publish(ctx, t, m)
	}
}

// deactivateIfWaiting removes profileID's waiting entry in role. Having none
// is fine.
func (s *Service) deactivateIfWaiting(ctx context.Context, profileID int64, role domain.Role) (bool, error) {
	_, err := s.waiting.Deactivate(ctx, profileID, role)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// seat is a profile's place in the pool under one role.
type seat struct {
	profileID int64
	role      domain.Role
}

func seatOf(m *domain.Matching, role domain.Role) seat {
	return seat{profileID: m.ProfileFor(role), role: role}
}

// restore puts the seats m took out of the pool back with their last
// preferences and returns those waiting again. Entries closed before m was
// created, or profiles busy in another ACCEPTED matching, stay out. Runs
// inside the transition's transaction.
func (s *Service) restore(ctx context.Context, m *domain.Matching, seats ...seat) ([]seat, error) {
	var back []seat
	for _, st := range seats {
		_, err := s.waiting.Restore(ctx, st.profileID, st.role, m.CreatedAt)
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("restore %s %d: %w", st.role, st.profileID, err)
		}
		back = append(back, st)
	}
	return back, nil
}

// restoreSpeakers restores the speaker of every superseded request.
func (s *Service) restoreSpeakers(ctx context.Context, superseded []domain.Matching) ([]seat, error) {
	var back []seat
	for i := range superseded {
		st, err := s.restore(ctx, &superseded[i], seatOf(&superseded[i], domain.RoleSpeaker))
		if err != nil {
			return nil, err
		}
		back = append(back, st...)
	}
	return back, nil
}

// reopen mirrors restored seats in the presence cache after commit.
func (s *Service) reopen(ctx context.Context, seats []seat) {
	for _, st := range seats {
		s.markAvailable(ctx, st.profileID, st.role)
	}
}
