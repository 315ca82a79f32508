package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taskhub/taskhub/internal/core/ports"
)

// RevocationStore keeps one watermark per user.
// Key format: sessions:revoked_before:<user_id>, value: unix seconds. Tokens
// issued in or before that second are revoked, matching the whole-second iat.
// A watermark only moves forward: a revocation in or before the current
// watermark's second lands one second past it, so tokens stamped just after
// the old watermark are covered too.
type RevocationStore struct {
	client redis.UniversalClient
	ttl    time.Duration
}

var _ ports.SessionRevoker = (*RevocationStore)(nil)

// NewRevocationStore returns a store whose keys expire after ttl, the token
// lifetime; once every older token has expired the watermark is moot.
// A ttl of zero keeps watermarks forever.
func NewRevocationStore(client redis.UniversalClient, ttl time.Duration) *RevocationStore {
	return &RevocationStore{client: client, ttl: ttl}
}

// raiseWatermark sets KEYS[1] to max(ARGV[1], current+1) and returns it.
// ARGV[2] is the key lifetime in seconds, 0 for none.
var raiseWatermark = redis.NewScript(`
local mark = tonumber(ARGV[1])
local cur = redis.call('GET', KEYS[1])
if cur and tonumber(cur) >= mark then
	mark = tonumber(cur) + 1
end
if tonumber(ARGV[2]) > 0 then
	redis.call('SET', KEYS[1], mark, 'EX', ARGV[2])
else
	redis.call('SET', KEYS[1], mark)
end
return mark
`)

func (s *RevocationStore) RevokeSessions(ctx context.Context, userID int64, at time.Time) (time.Time, error) {
	n, err := raiseWatermark.Run(ctx, s.client, []string{key(userID)}, at.Unix(), ttlSeconds(s.ttl)).Int64()
	if err != nil {
		return time.Time{}, fmt.Errorf("revoke sessions: %w", err)
	}
	return time.Unix(n, 0), nil
}

func (s *RevocationStore) RevokedBefore(ctx context.Context, userID int64) (time.Time, error) {
	n, err := s.client.Get(ctx, key(userID)).Int64()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("read revocation: %w", err)
	}
	return time.Unix(n, 0), nil
}

// ttlSeconds rounds a positive ttl up to whole seconds.
func ttlSeconds(ttl time.Duration) int64 {
	if ttl <= 0 {
		return 0
	}
	return int64((ttl + time.Second - 1) / time.Second)
}

func key(userID int64) string {
	return "sessions:revoked_before:" + strconv.FormatInt(userID, 10)
}
