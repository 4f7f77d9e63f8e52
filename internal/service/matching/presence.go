package matching

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/heartmarshall/hearme-backend/internal/domain"
)

// RebuildResult summarizes a presence rebuild.
type RebuildResult struct {
	ActiveProfiles int
	Available      map[domain.Role]int
}

// RebuildPresence recomputes the presence cache from PostgreSQL: active
// counters from non-terminal matchings, available sets from active waiters.
func (s *Service) RebuildPresence(ctx context.Context) (*RebuildResult, error) {
	counts, err := s.matchings.CountOpenByProfile(ctx)
	if err != nil {
		return nil, fmt.Errorf("count open matchings: %w", err)
	}
	if err := s.presence.ReplaceActiveCounts(ctx, counts); err != nil {
		return nil, fmt.Errorf("replace active counts: %w", err)
	}

	res := &RebuildResult{
		ActiveProfiles: len(counts),
		Available:      make(map[domain.Role]int, 2),
	}
	for _, role := range []domain.Role{domain.RoleSpeaker, domain.RoleListener} {
		entries, err := s.waiting.FindCandidates(ctx, domain.WaitingFilter{Role: role}, 0)
		if err != nil {
			return nil, fmt.Errorf("list %s waiters: %w", role, err)
		}
		ids := make([]int64, len(entries))
		for i, e := range entries {
			ids[i] = e.ProfileID
		}
		if err := s.presence.ReplaceAvailable(ctx, role, ids); err != nil {
			return nil, fmt.Errorf("replace available %s: %w", role, err)
		}
		res.Available[role] = len(ids)
	}

	s.log.InfoContext(ctx, "presence rebuilt",
		slog.Int("active_profiles", res.ActiveProfiles),
		slog.Int("available_speakers", res.Available[domain.RoleSpeaker]),
		slog.Int("available_listeners", res.Available[domain.RoleListener]),
	)
	return res, nil
}
