package ratelimit

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// slidingWindow trims the sorted set to the window, then admits the request
// when under the limit. Returns {allowed, count, oldest_ms}.
var slidingWindow = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])
local member = ARGV[4]

redis.call("ZREMRANGEBYSCORE", key, "-inf", now - window)
local count = redis.call("ZCARD", key)
local allowed = 0
if count < limit then
	redis.call("ZADD", key, now, member)
	count = count + 1
	allowed = 1
end
redis.call("PEXPIRE", key, window)
local oldest = redis.call("ZRANGE", key, 0, 0, "WITHSCORES")
local oldestMs = now
if oldest[2] then
	oldestMs = tonumber(oldest[2])
end
return {allowed, count, oldestMs}
`)

// RedisStore shares limits between servers through a sorted set per key.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
	now    func() time.Time
}

func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client, prefix: "i9score:ratelimit:", now: time.Now}
}

func (s *RedisStore) Allow(ctx context.Context, key string, limit int, window time.Duration) (*Result, error) {
	now := s.now()
	res, err := slidingWindow.Run(ctx, s.client, []string{s.prefix + key},
		now.UnixMilli(),
		window.Milliseconds(),
		limit,
		strconv.FormatInt(now.UnixNano(), 10)+"-"+uuid.NewString(),
	).Int64Slice()
	if err != nil {
		return nil, err
	}

	resetAt := time.UnixMilli(res[2]).Add(window)
	out := &Result{
		Allowed:   res[0] == 1,
		Limit:     limit,
		Remaining: max(limit-int(res[1]), 0),
		ResetAt:   resetAt,
	}
	if !out.Allowed {
		out.RetryAfter = retryAfter(resetAt, now)
	}
	return out, nil
}
