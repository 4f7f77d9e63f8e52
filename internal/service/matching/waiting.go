package matching

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/heartmarshall/hearme-backend/internal/domain"
	"github.com/heartmarshall/hearme-backend/pkg/ctxutil"
)

// Enqueue puts the caller in the waiting pool for input.Role, or replaces
// the preferences of the entry already there.
func (s *Service) Enqueue(ctx context.Context, input EnqueueInput) (*domain.WaitingEntry, error) {
	profileID, ok := ctxutil.ProfileIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}
	return s.enqueue(ctx, profileID, input.Role, input.Topics, input.Style)
}

func (s *Service) enqueue(ctx context.Context, profileID int64, role domain.Role, topics []string, style *domain.CounselingStyle) (*domain.WaitingEntry, error) {
	entry, err := s.waiting.Enqueue(ctx, profileID, role, domain.NormalizeTopics(topics), style)
	if err != nil {
		return nil, fmt.Errorf("enqueue %s: %w", role, err)
	}
	s.markAvailable(ctx, profileID, role)

	s.log.InfoContext(ctx, "profile waiting",
		slog.Int64("profile_id", profileID),
		slog.String("role", string(role)),
		slog.Int("topics", len(entry.Topics)),
	)
	return entry, nil
}

// CancelWaiting takes the caller out of the waiting pool for role. It is a
// no-op if the caller was not waiting.
func (s *Service) CancelWaiting(ctx context.Context, role domain.Role) error {
	profileID, ok := ctxutil.ProfileIDFromCtx(ctx)
	if !ok {
		return domain.ErrUnauthorized
	}
	if !role.IsValid() {
		return domain.NewValidationError("role", "must be SPEAKER or LISTENER")
	}

	removed, err := s.deactivateIfWaiting(ctx, profileID, role)
	if err != nil {
		return fmt.Errorf("cancel waiting: %w", err)
	}
	s.markUnavailable(ctx, profileID, role)

	if removed {
		s.log.InfoContext(ctx, "profile left pool",
			slog.Int64("profile_id", profileID),
			slog.String("role", string(role)),
		)
	}
	return nil
}

// ListWaiting returns active waiters of input.Role, oldest first, filtered
// like a preference request. The caller is left out.
func (s *Service) ListWaiting(ctx context.Context, input ListWaitingInput) ([]domain.WaitingEntry, error) {
	profileID, ok := ctxutil.ProfileIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}

	entries, err := s.waiting.FindCandidates(ctx, domain.WaitingFilter{
		Role:   input.Role,
		Topics: domain.NormalizeTopics(input.Topics),
		Style:  input.Style,
		Limit:  limitOrDefault(input.Limit),
	}, profileID)
	if err != nil {
		return nil, fmt.Errorf("list waiting: %w", err)
	}
	return entries, nil
}
