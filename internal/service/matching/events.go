package matching

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/heartmarshall/hearme-backend/internal/domain"
)

// HandleEvent reacts to a consumed matching event. Every event is fanned
// out as notifications. MATCHING_ACCEPTED additionally rejects the other
// pending requests to the same listener.
func (s *Service) HandleEvent(ctx context.Context, e domain.MatchingEvent) error {
	if e.EventType == domain.EventMatchingAccepted {
		if err := s.supersede(ctx, e); err != nil {
			return err
		}
	}

	s.notify(ctx, e)
	return nil
}

// supersede rejects the requests still pending for the listener of an
// accepted matching. It only acts while the matching is still ACCEPTED and
// only on requests created up to its acceptance, so a late or replayed
// event never touches requests made after the listener became free again.
func (s *Service) supersede(ctx context.Context, e domain.MatchingEvent) error {
	current, err := s.matchings.GetByID(ctx, e.AggregateID)
	if errors.Is(err, domain.ErrNotFound) {
		s.log.WarnContext(ctx, "accepted matching not found",
			slog.String("event_id", e.EventID.String()),
			slog.Int64("matching_id", e.AggregateID),
		)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get matching %d: %w", e.AggregateID, err)
	}
	if current.Status != domain.MatchingStatusAccepted {
		s.log.InfoContext(ctx, "stale accepted event skipped",
			slog.String("event_id", e.EventID.String()),
			slog.Int64("matching_id", current.ID),
			slog.String("status", string(current.Status)),
		)
		return nil
	}

	var (
		rejected []domain.Matching
		reopened []seat
	)
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		rejected, err = s.matchings.RejectPendingForListener(ctx, current.ListenerProfileID, current.ID, reasonSuperseded, current.MatchedAt)
		if err != nil {
			return fmt.Errorf("reject pending for listener %d: %w", current.ListenerProfileID, err)
		}
		reopened, err = s.restoreSpeakers(ctx, rejected)
		return err
	})
	if err != nil {
		return err
	}
	if len(rejected) == 0 {
		return nil
	}

	s.reopen(ctx, reopened)
	s.released(ctx, domain.EventMatchingRejected, rejected...)
	s.log.InfoContext(ctx, "stale requests rejected",
		slog.String("event_id", e.EventID.String()),
		slog.Int64("listener_id", current.ListenerProfileID),
		slog.Int("rejected", len(rejected)),
	)
	return nil
}
