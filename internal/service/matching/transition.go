package matching

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/heartmarshall/hearme-backend/internal/domain"
	"github.com/heartmarshall/hearme-backend/pkg/ctxutil"
)

const (
	reasonSuperseded = "listener accepted another request"
	reasonAdmin      = "rejected by administrator"
)

// load fetches matching id and checks that actorID may perform t on it in
// its current status. Nothing is written when this fails.
func (s *Service) load(ctx context.Context, id int64, t domain.Transition, actorID int64) (*domain.Matching, error) {
	if id <= 0 {
		return nil, domain.NewValidationError("matching_id", "required")
	}
	m, err := s.matchings.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get matching: %w", err)
	}
	if err := m.Authorize(t, actorID); err != nil {
		return nil, err
	}
	if err := m.CanTransition(t); err != nil {
		return nil, err
	}
	return m, nil
}

// Accept moves a REQUESTED matching to ACCEPTED on behalf of the addressed
// counterpart, opens its chat room and rejects every other pending request
// to the same listener.
func (s *Service) Accept(ctx context.Context, matchingID int64) (*domain.Matching, error) {
	actorID, ok := ctxutil.ProfileIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	t := domain.TransitionAccept
	m, err := s.load(ctx, matchingID, t, actorID)
	if err != nil {
		return nil, err
	}

	var (
		accepted   *domain.Matching
		superseded []domain.Matching
		reopened   []seat
	)
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		accepted, err = s.matchings.Transition(ctx, m.ID, t.Sources(), t.Target(), nil)
		if err != nil {
			return err
		}

		roomID, err := s.rooms.CreateRoom(ctx, accepted)
		if err != nil {
			return fmt.Errorf("create chat room: %w", err)
		}
		if err := s.matchings.SetChatRoom(ctx, accepted.ID, roomID); err != nil {
			return fmt.Errorf("link chat room: %w", err)
		}
		accepted.ChatRoomID = &roomID

		superseded, err = s.matchings.RejectPendingForListener(ctx, accepted.ListenerProfileID, accepted.ID, reasonSuperseded, accepted.MatchedAt)
		if err != nil {
			return fmt.Errorf("reject pending: %w", err)
		}
		if reopened, err = s.restoreSpeakers(ctx, superseded); err != nil {
			return err
		}

		if _, err := s.deactivateIfWaiting(ctx, accepted.SpeakerProfileID, domain.RoleSpeaker); err != nil {
			return fmt.Errorf("close speaker entry: %w", err)
		}
		if _, err := s.deactivateIfWaiting(ctx, accepted.ListenerProfileID, domain.RoleListener); err != nil {
			return fmt.Errorf("close listener entry: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.markUnavailable(ctx, accepted.ListenerProfileID, domain.RoleListener)
	s.markUnavailable(ctx, accepted.SpeakerProfileID, domain.RoleSpeaker)
	s.reopen(ctx, reopened)
	s.released(ctx, domain.EventMatchingRejected, superseded...)
	s.publish(ctx, domain.EventMatchingAccepted, accepted)

	s.log.InfoContext(ctx, "matching accepted",
		slog.Int64("matching_id", accepted.ID),
		slog.Int64("actor_id", actorID),
		slog.Int("superseded", len(superseded)),
	)
	return accepted, nil
}

// Reject closes a REQUESTED matching on behalf of the addressed
// counterpart. It consumes one unit of the daily rejection quota and puts
// the initiator back in the pool.
func (s *Service) Reject(ctx context.Context, input RejectInput) (*domain.Matching, error) {
	actorID, ok := ctxutil.ProfileIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}
	t := domain.TransitionReject
	m, err := s.load(ctx, input.MatchingID, t, actorID)
	if err != nil {
		return nil, err
	}

	var reason *string
	if r := strings.TrimSpace(input.Reason); r != "" {
		reason = &r
	}

	var (
		rejected *domain.Matching
		reopened []seat
	)
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.consumeQuota(ctx, actorID, domain.QuotaActionReject, s.cfg.MaxRejectionsPerDay); err != nil {
			return err
		}
		var err error
		rejected, err = s.matchings.Transition(ctx, m.ID, t.Sources(), t.Target(), reason)
		if err != nil {
			return err
		}
		reopened, err = s.restore(ctx, rejected, seatOf(rejected, rejected.InitiatorRole))
		return err
	})
	if err != nil {
		return nil, err
	}

	s.reopen(ctx, reopened)
	s.released(ctx, domain.EventMatchingRejected, *rejected)
	s.log.InfoContext(ctx, "matching rejected",
		slog.Int64("matching_id", rejected.ID),
		slog.Int64("actor_id", actorID),
	)
	return rejected, nil
}

// Cancel withdraws a REQUESTED or ACCEPTED matching on behalf of its
// initiator. It consumes one unit of the daily cancellation quota. A
// listener freed from an ACCEPTED matching returns to the pool; a pending
// request gives the counterpart back its place instead. Which case applied
// is read from the committed row, not from the pre-check.
func (s *Service) Cancel(ctx context.Context, matchingID int64) (*domain.Matching, error) {
	actorID, ok := ctxutil.ProfileIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	t := domain.TransitionCancel
	m, err := s.load(ctx, matchingID, t, actorID)
	if err != nil {
		return nil, err
	}

	var (
		canceled    *domain.Matching
		wasAccepted bool
		reopened    []seat
	)
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.consumeQuota(ctx, actorID, domain.QuotaActionCancel, s.cfg.MaxCancellationsPerDay); err != nil {
			return err
		}
		var err error
		canceled, err = s.matchings.Transition(ctx, m.ID, t.Sources(), t.Target(), nil)
		if err != nil {
			return err
		}
		wasAccepted = canceled.MatchedAt != nil
		if wasAccepted {
			reopened, err = s.restore(ctx, canceled, seatOf(canceled, domain.RoleListener))
		} else {
			reopened, err = s.restore(ctx, canceled, seatOf(canceled, canceled.InitiatorRole.Opposite()))
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	s.reopen(ctx, reopened)
	s.released(ctx, domain.EventMatchingCanceled, *canceled)
	s.log.InfoContext(ctx, "matching canceled",
		slog.Int64("matching_id", canceled.ID),
		slog.Int64("actor_id", actorID),
		slog.Bool("was_accepted", wasAccepted),
	)
	return canceled, nil
}

// Complete closes an ACCEPTED matching on behalf of either party, credits
// both counseling counters and returns the listener to the pool.
func (s *Service) Complete(ctx context.Context, matchingID int64) (*domain.Matching, error) {
	actorID, ok := ctxutil.ProfileIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	t := domain.TransitionComplete
	m, err := s.load(ctx, matchingID, t, actorID)
	if err != nil {
		return nil, err
	}

	var (
		completed *domain.Matching
		reopened  []seat
	)
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		completed, err = s.matchings.Transition(ctx, m.ID, t.Sources(), t.Target(), nil)
		if err != nil {
			return err
		}
		reopened, err = s.restore(ctx, completed, seatOf(completed, domain.RoleListener))
		return err
	})
	if err != nil {
		return nil, err
	}

	if err := s.profiles.IncrementCounselingCount(ctx, completed.SpeakerProfileID, completed.ListenerProfileID); err != nil {
		s.log.WarnContext(ctx, "increment counseling count",
			slog.Int64("matching_id", completed.ID),
			slog.String("error", err.Error()),
		)
	}
	s.reopen(ctx, reopened)
	s.released(ctx, domain.EventMatchingCompleted, *completed)

	s.log.InfoContext(ctx, "matching completed",
		slog.Int64("matching_id", completed.ID),
		slog.Int64("actor_id", actorID),
	)
	return completed, nil
}

// ForceRejectPending rejects every REQUESTED matching addressed to the
// listener of matchingID, that one included. Admin only.
func (s *Service) ForceRejectPending(ctx context.Context, matchingID int64) ([]domain.Matching, error) {
	if _, ok := ctxutil.ProfileIDFromCtx(ctx); !ok {
		return nil, domain.ErrUnauthorized
	}
	if !ctxutil.IsAdminCtx(ctx) {
		return nil, domain.ErrForbidden
	}
	if matchingID <= 0 {
		return nil, domain.NewValidationError("matching_id", "required")
	}

	m, err := s.matchings.GetByID(ctx, matchingID)
	if err != nil {
		return nil, fmt.Errorf("get matching: %w", err)
	}

	var (
		rejected []domain.Matching
		reopened []seat
	)
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		rejected, err = s.matchings.RejectPendingForListener(ctx, m.ListenerProfileID, 0, reasonAdmin, nil)
		if err != nil {
			return fmt.Errorf("reject pending: %w", err)
		}
		reopened, err = s.restoreSpeakers(ctx, rejected)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.reopen(ctx, reopened)
	s.released(ctx, domain.EventMatchingRejected, rejected...)
	s.log.InfoContext(ctx, "pending requests force-rejected",
		slog.Int64("matching_id", matchingID),
		slog.Int64("listener_id", m.ListenerProfileID),
		slog.Int("rejected", len(rejected)),
	)
	return rejected, nil
}

func (s *Service) consumeQuota(ctx context.Context, profileID int64, action domain.QuotaAction, limit int) error {
	if limit <= 0 {
		return nil
	}
	if _, err := s.profiles.ConsumeQuota(ctx, profileID, action, s.now(), limit); err != nil {
		return fmt.Errorf("consume %s quota: %w", action, err)
	}
	return nil
}
