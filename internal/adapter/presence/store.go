// Package presence keeps the presence cache in Redis: a per-profile count of
// open matchings and, per role, the set of profiles available for instant
// pairing. Nothing here is authoritative. Every key carries a TTL and the
// whole cache can be rebuilt from PostgreSQL.
package presence

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/heartmarshall/hearme-backend/internal/domain"
)

// pickSample is how many members one ZRANDMEMBER call draws; the caller's own
// profile is removed from the sample before choosing.
const pickSample = 8

// Saturating decrement: never below zero, key removed at zero.
var decrementScript = redis.NewScript(`
local v = tonumber(redis.call('GET', KEYS[1]) or '0')
if v <= 1 then
	redis.call('DEL', KEYS[1])
	return 0
end
v = redis.call('DECR', KEYS[1])
redis.call('PEXPIRE', KEYS[1], ARGV[1])
return v
`)

// Drops members whose availability expired, then samples.
var pickScript = redis.NewScript(`
redis.call('ZREMRANGEBYSCORE', KEYS[1], '-inf', ARGV[1])
return redis.call('ZRANDMEMBER', KEYS[1], ARGV[2])
`)

// Store is the Redis-backed presence cache.
type Store struct {
	client       redis.UniversalClient
	prefix       string
	availableTTL time.Duration
	activeTTL    time.Duration
	now          func() time.Time
}

// NewStore creates a presence store. prefix namespaces every key.
func NewStore(client redis.UniversalClient, prefix string, availableTTL, activeTTL time.Duration) *Store {
	return &Store{
		client:       client,
		prefix:       prefix,
		availableTTL: availableTTL,
		activeTTL:    activeTTL,
		now:          time.Now,
	}
}

func (s *Store) activeKey(profileID int64) string {
	return s.prefix + "presence:active:" + strconv.FormatInt(profileID, 10)
}

func (s *Store) availableKey(role domain.Role) string {
	return s.prefix + "presence:available:" + string(role)
}

func member(profileID int64) string {
	return strconv.FormatInt(profileID, 10)
}

// ---------------------------------------------------------------------------
// Availability
// ---------------------------------------------------------------------------

// MarkAvailable adds profileID to role's available set, or refreshes its
// expiry if already there.
func (s *Store) MarkAvailable(ctx context.Context, profileID int64, role domain.Role) error {
	key := s.availableKey(role)
	expireAt := s.now().Add(s.availableTTL)

	_, err := s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.ZAdd(ctx, key, redis.Z{Score: float64(expireAt.UnixMilli()), Member: member(profileID)})
		p.PExpire(ctx, key, 2*s.availableTTL)
		return nil
	})
	if err != nil {
		return fmt.Errorf("presence: mark %d available as %s: %w", profileID, role, err)
	}
	return nil
}

// MarkUnavailable removes profileID from role's available set.
func (s *Store) MarkUnavailable(ctx context.Context, profileID int64, role domain.Role) error {
	if err := s.client.ZRem(ctx, s.availableKey(role), member(profileID)).Err(); err != nil {
		return fmt.Errorf("presence: mark %d unavailable as %s: %w", profileID, role, err)
	}
	return nil
}

// IsAvailable reports whether profileID is in role's available set and not
// expired.
func (s *Store) IsAvailable(ctx context.Context, profileID int64, role domain.Role) (bool, error) {
	score, err := s.client.ZScore(ctx, s.availableKey(role), member(profileID)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("presence: is %d available: %w", profileID, err)
	}
	return int64(score) > s.now().UnixMilli(), nil
}

// PickRandomAvailable returns a uniformly chosen available profile of role
// other than excludeProfileID. ok is false when there is none.
func (s *Store) PickRandomAvailable(ctx context.Context, role domain.Role, excludeProfileID int64) (int64, bool, error) {
	res, err := pickScript.Run(ctx, s.client,
		[]string{s.availableKey(role)},
		s.now().UnixMilli(), pickSample,
	).StringSlice()
	if err != nil && !errors.Is(err, redis.Nil) {
		return 0, false, fmt.Errorf("presence: pick available %s: %w", role, err)
	}

	candidates := make([]int64, 0, len(res))
	for _, m := range res {
		id, err := strconv.ParseInt(m, 10, 64)
		if err != nil || id == excludeProfileID {
			continue
		}
		candidates = append(candidates, id)
	}
	if len(candidates) == 0 {
		return 0, false, nil
	}
	return candidates[rand.IntN(len(candidates))], true, nil
}

// ReplaceAvailable makes role's available set exactly profileIDs.
func (s *Store) ReplaceAvailable(ctx context.Context, role domain.Role, profileIDs []int64) error {
	key := s.availableKey(role)
	expireAt := float64(s.now().Add(s.availableTTL).UnixMilli())

	_, err := s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, key)
		if len(profileIDs) == 0 {
			return nil
		}
		members := make([]redis.Z, len(profileIDs))
		for i, id := range profileIDs {
			members[i] = redis.Z{Score: expireAt, Member: member(id)}
		}
		p.ZAdd(ctx, key, members...)
		p.PExpire(ctx, key, 2*s.availableTTL)
		return nil
	})
	if err != nil {
		return fmt.Errorf("presence: replace available %s: %w", role, err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Active match counters
// ---------------------------------------------------------------------------

// IncrementActive adds one open matching to profileID and returns the new
// count.
func (s *Store) IncrementActive(ctx context.Context, profileID int64) (int64, error) {
	key := s.activeKey(profileID)

	var incr *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		incr = p.Incr(ctx, key)
		p.PExpire(ctx, key, s.activeTTL)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("presence: increment active %d: %w", profileID, err)
	}
	return incr.Val(), nil
}

// DecrementActive removes one open matching from profileID, saturating at
// zero, and returns the new count.
func (s *Store) DecrementActive(ctx context.Context, profileID int64) (int64, error) {
	v, err := decrementScript.Run(ctx, s.client,
		[]string{s.activeKey(profileID)},
		s.activeTTL.Milliseconds(),
	).Int64()
	if err != nil {
		return 0, fmt.Errorf("presence: decrement active %d: %w", profileID, err)
	}
	return v, nil
}

// ActiveCount returns the open matching count of profileID.
func (s *Store) ActiveCount(ctx context.Context, profileID int64) (int64, error) {
	v, err := s.client.Get(ctx, s.activeKey(profileID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("presence: active count %d: %w", profileID, err)
	}
	return v, nil
}

// ReplaceActiveCounts makes the active counters exactly counts: keys of
// profiles missing from counts are removed.
func (s *Store) ReplaceActiveCounts(ctx context.Context, counts map[int64]int64) error {
	pattern := s.prefix + "presence:active:*"
	iter := s.client.Scan(ctx, 0, pattern, 500).Iterator()

	var stale []string
	for iter.Next(ctx) {
		key := iter.Val()
		id, err := strconv.ParseInt(key[len(pattern)-1:], 10, 64)
		if err != nil {
			continue
		}
		if _, keep := counts[id]; !keep {
			stale = append(stale, key)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("presence: scan active counters: %w", err)
	}

	_, err := s.client.Pipelined(ctx, func(p redis.Pipeliner) error {
		for _, key := range stale {
			p.Del(ctx, key)
		}
		for id, n := range counts {
			if n <= 0 {
				p.Del(ctx, s.activeKey(id))
				continue
			}
			p.Set(ctx, s.activeKey(id), n, s.activeTTL)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("presence: replace active counters: %w", err)
	}
	return nil
}

// Ping checks connectivity for readiness probes.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
