package matching

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/heartmarshall/hearme-backend/internal/domain"
	"github.com/heartmarshall/hearme-backend/pkg/ctxutil"
)

const (
	// maxRandomPicks bounds how many stale presence entries a random request
	// skips before giving up.
	maxRandomPicks = 3
	// fallbackSample is how many waiters random selection draws from when the
	// presence cache is unreachable.
	fallbackSample = 20
)

// errNoCandidate means nobody qualified and the initiator should wait.
var errNoCandidate = errors.New("no candidate")

// RequestResult is the outcome of a match request: a new matching, or the
// caller's waiting entry when no counterpart qualified.
type RequestResult struct {
	Matching *domain.Matching
	Waiting  *domain.WaitingEntry
}

type candidate struct {
	profileID int64
	// claimed is set when picking removed the counterpart from the pool.
	claimed bool
}

// RequestMatch routes req to its strategy. Every matching it creates starts
// REQUESTED and is announced with MATCHING_REQUESTED.
func (s *Service) RequestMatch(ctx context.Context, req MatchRequest) (*RequestResult, error) {
	profileID, ok := ctxutil.ProfileIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	if req == nil {
		return nil, domain.NewValidationError("strategy", "required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := s.admit(ctx, profileID); err != nil {
		return nil, err
	}

	switch r := req.(type) {
	case RandomRequest:
		return s.requestRandom(ctx, profileID, r)
	case PreferenceRequest:
		return s.requestPreference(ctx, profileID, r)
	case ManualRequest:
		return s.requestManual(ctx, profileID, r)
	default:
		return nil, domain.NewValidationError("strategy", "unsupported")
	}
}

// admit enforces MaxActiveMatches. An unreadable counter admits the request.
func (s *Service) admit(ctx context.Context, profileID int64) error {
	if s.cfg.MaxActiveMatches <= 0 {
		return nil
	}
	n, err := s.presence.ActiveCount(ctx, profileID)
	if err != nil {
		s.log.WarnContext(ctx, "admission check skipped",
			slog.Int64("profile_id", profileID),
			slog.String("error", err.Error()),
		)
		return nil
	}
	if n >= int64(s.cfg.MaxActiveMatches) {
		return fmt.Errorf("profile %d has %d open matchings: %w", profileID, n, domain.ErrQuotaExceeded)
	}
	return nil
}

func (s *Service) requestRandom(ctx context.Context, profileID int64, r RandomRequest) (*RequestResult, error) {
	var pick func(ctx context.Context) (candidate, error)
	if r.Role == domain.RoleSpeaker {
		pick = func(ctx context.Context) (candidate, error) {
			return s.pickAvailableListener(ctx, profileID)
		}
	} else {
		pick = func(ctx context.Context) (candidate, error) {
			return s.claim(ctx, domain.WaitingFilter{Role: domain.RoleSpeaker}, profileID)
		}
	}

	m, err := s.pair(ctx, profileID, r, nil, pick)
	if errors.Is(err, errNoCandidate) {
		return s.waitInstead(ctx, profileID, r.Role, nil, nil)
	}
	if err != nil {
		return nil, err
	}
	return &RequestResult{Matching: m}, nil
}

// pickAvailableListener draws uniformly from the presence cache and checks
// the pick against the waiting pool.
func (s *Service) pickAvailableListener(ctx context.Context, speakerID int64) (candidate, error) {
	for range maxRandomPicks {
		id, found, err := s.presence.PickRandomAvailable(ctx, domain.RoleListener, speakerID)
		if err != nil {
			s.log.WarnContext(ctx, "presence pick failed, sampling waiting pool",
				slog.String("error", err.Error()),
			)
			return s.sampleWaiting(ctx, domain.RoleListener, speakerID)
		}
		if !found {
			return candidate{}, errNoCandidate
		}

		active, err := s.waiting.IsActive(ctx, id, domain.RoleListener)
		if err != nil {
			return candidate{}, fmt.Errorf("check listener %d: %w", id, err)
		}
		if active {
			return candidate{profileID: id}, nil
		}
		s.markUnavailable(ctx, id, domain.RoleListener)
	}
	return candidate{}, errNoCandidate
}

func (s *Service) sampleWaiting(ctx context.Context, role domain.Role, excludeID int64) (candidate, error) {
	entries, err := s.waiting.FindCandidates(ctx, domain.WaitingFilter{Role: role, Limit: fallbackSample}, excludeID)
	if err != nil {
		return candidate{}, fmt.Errorf("sample waiting %s: %w", role, err)
	}
	if len(entries) == 0 {
		return candidate{}, errNoCandidate
	}
	return candidate{profileID: entries[rand.IntN(len(entries))].ProfileID}, nil
}

func (s *Service) claim(ctx context.Context, f domain.WaitingFilter, excludeID int64) (candidate, error) {
	entry, err := s.waiting.Claim(ctx, f, excludeID)
	if errors.Is(err, domain.ErrNotFound) {
		return candidate{}, errNoCandidate
	}
	if err != nil {
		return candidate{}, fmt.Errorf("claim %s: %w", f.Role, err)
	}
	return candidate{profileID: entry.ProfileID, claimed: true}, nil
}

func (s *Service) requestPreference(ctx context.Context, profileID int64, r PreferenceRequest) (*RequestResult, error) {
	topics := domain.NormalizeTopics(r.Topics)
	filter := domain.WaitingFilter{
		Role:   r.Role.Opposite(),
		Topics: topics,
		Style:  r.Style,
	}

	m, err := s.pair(ctx, profileID, r, topics, func(ctx context.Context) (candidate, error) {
		return s.claim(ctx, filter, profileID)
	})
	if errors.Is(err, errNoCandidate) {
		return s.waitInstead(ctx, profileID, r.Role, topics, r.Style)
	}
	if err != nil {
		return nil, err
	}
	return &RequestResult{Matching: m}, nil
}

func (s *Service) requestManual(ctx context.Context, profileID int64, r ManualRequest) (*RequestResult, error) {
	if r.CounterpartID == profileID {
		return nil, domain.NewValidationError("counterpart_id", "must differ from caller")
	}
	opposite := r.Role.Opposite()

	m, err := s.pair(ctx, profileID, r, domain.NormalizeTopics(r.Topics), func(ctx context.Context) (candidate, error) {
		active, err := s.waiting.IsActive(ctx, r.CounterpartID, opposite)
		if err != nil {
			return candidate{}, fmt.Errorf("check counterpart %d: %w", r.CounterpartID, err)
		}
		if !active {
			return candidate{}, fmt.Errorf("profile %d is not waiting as %s: %w",
				r.CounterpartID, opposite, domain.ErrCounterpartUnavailable)
		}
		return candidate{profileID: r.CounterpartID}, nil
	})
	if err != nil {
		return nil, err
	}
	return &RequestResult{Matching: m}, nil
}

// pair picks a counterpart and persists the REQUESTED matching in one
// transaction, so a failed insert puts a claimed waiter back. The
// initiator's own waiting entry in its role is closed as well.
func (s *Service) pair(
	ctx context.Context,
	initiatorID int64,
	req MatchRequest,
	topics []string,
	pick func(ctx context.Context) (candidate, error),
) (*domain.Matching, error) {
	role := req.initiatorRole()

	var (
		created  *domain.Matching
		picked   candidate
		leftPool bool
	)
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		picked, err = pick(ctx)
		if err != nil {
			return err
		}

		m := &domain.Matching{
			Strategy:        req.strategy(),
			InitiatorRole:   role,
			RequestedTopics: topics,
		}
		if role == domain.RoleSpeaker {
			m.SpeakerProfileID, m.ListenerProfileID = initiatorID, picked.profileID
		} else {
			m.SpeakerProfileID, m.ListenerProfileID = picked.profileID, initiatorID
		}
		if err := m.Validate(); err != nil {
			return err
		}

		created, err = s.matchings.Create(ctx, m)
		if err != nil {
			return fmt.Errorf("create matching: %w", err)
		}

		leftPool, err = s.deactivateIfWaiting(ctx, initiatorID, role)
		if err != nil {
			return fmt.Errorf("close initiator entry: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if leftPool {
		s.markUnavailable(ctx, initiatorID, role)
	}
	if picked.claimed {
		s.markUnavailable(ctx, picked.profileID, role.Opposite())
	}
	s.incrementActive(ctx, created.SpeakerProfileID, created.ListenerProfileID)
	s.publish(ctx, domain.EventMatchingRequested, created)

	s.log.InfoContext(ctx, "matching requested",
		slog.Int64("matching_id", created.ID),
		slog.String("strategy", string(created.Strategy)),
		slog.Int64("speaker_id", created.SpeakerProfileID),
		slog.Int64("listener_id", created.ListenerProfileID),
	)
	return created, nil
}

func (s *Service) waitInstead(ctx context.Context, profileID int64, role domain.Role, topics []string, style *domain.CounselingStyle) (*RequestResult, error) {
	entry, err := s.enqueue(ctx, profileID, role, topics, style)
	if err != nil {
		return nil, err
	}
	return &RequestResult{Waiting: entry}, nil
}
