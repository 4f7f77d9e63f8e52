package matching

import (
	"context"
	"fmt"

	"github.com/heartmarshall/hearme-backend/internal/domain"
	"github.com/heartmarshall/hearme-backend/pkg/ctxutil"
)

// GetMatching returns a matching to one of its parties or an admin.
func (s *Service) GetMatching(ctx context.Context, id int64) (*domain.Matching, error) {
	profileID, ok := ctxutil.ProfileIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	if id <= 0 {
		return nil, domain.NewValidationError("matching_id", "required")
	}

	m, err := s.matchings.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get matching: %w", err)
	}
	if !m.IsParty(profileID) && !ctxutil.IsAdminCtx(ctx) {
		return nil, domain.ErrForbidden
	}
	return m, nil
}

// ListMyMatchings returns the caller's matchings, newest first.
func (s *Service) ListMyMatchings(ctx context.Context, input ListMyMatchingsInput) ([]domain.Matching, error) {
	profileID, ok := ctxutil.ProfileIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}

	ms, err := s.matchings.ListByProfile(ctx, domain.MatchingFilter{
		ProfileID: profileID,
		Status:    input.Status,
		Limit:     limitOrDefault(input.Limit),
	})
	if err != nil {
		return nil, fmt.Errorf("list matchings: %w", err)
	}
	return ms, nil
}
