package dialogue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	redisKeyPrefix  = "medibook:chat:session:"
	redisLockPrefix = "medibook:chat:lock:"

	// Longer than the slowest turn (LLM timeout plus database writes).
	defaultLockTTL   = 30 * time.Second
	defaultLockWait  = 10 * time.Second
	defaultLockRetry = 50 * time.Millisecond
)

// Deletes the lock only if it still carries our token, so an expired lock
// that another replica re-acquired is left alone.
const releaseLockScript = `if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`

// redisClient is the subset of redis.Cmdable the store uses.
type redisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

// RedisStore keeps sessions as JSON with a TTL refreshed on every save, so
// several API replicas can share conversations. Lock makes turns for one
// patient exclusive across those replicas.
type RedisStore struct {
	client    redisClient
	ttl       time.Duration
	lockTTL   time.Duration
	lockWait  time.Duration
	lockRetry time.Duration
	log       *zap.Logger
}

func NewRedisStore(client redisClient, ttl time.Duration, log *zap.Logger) *RedisStore {
	return &RedisStore{
		client:    client,
		ttl:       ttl,
		lockTTL:   defaultLockTTL,
		lockWait:  defaultLockWait,
		lockRetry: defaultLockRetry,
		log:       log,
	}
}

func (s *RedisStore) Load(ctx context.Context, key string) (*Session, error) {
	data, err := s.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return NewSession(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading session: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		// A session we cannot read would wedge the patient until it expires.
		s.log.Warn("discarding undecodable chat session", zap.String("key", key), zap.Error(err))
		return NewSession(), nil
	}
	return &sess, nil
}

func (s *RedisStore) Save(ctx context.Context, key string, sess *Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}
	if err := s.client.Set(ctx, redisKeyPrefix+key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("writing session: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, redisKeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

// Lock takes the patient's conversation lock with SET NX PX and a random
// token, polling until it is free. It gives up with ErrSessionBusy after
// lockWait, or with ctx's error if ctx ends first.
func (s *RedisStore) Lock(ctx context.Context, key string) (func(), error) {
	lockKey := redisLockPrefix + key
	token := uuid.NewString()

	waitCtx, cancel := context.WithTimeout(ctx, s.lockWait)
	defer cancel()

	ticker := time.NewTicker(s.lockRetry)
	defer ticker.Stop()

	for {
		acquired, err := s.client.SetNX(waitCtx, lockKey, token, s.lockTTL).Result()
		if err == nil && acquired {
			return func() { s.unlock(lockKey, token) }, nil
		}
		if err != nil && waitCtx.Err() == nil {
			return nil, fmt.Errorf("acquiring session lock: %w", err)
		}

		select {
		case <-waitCtx.Done():
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, ErrSessionBusy
		case <-ticker.C:
		}
	}
}

func (s *RedisStore) unlock(lockKey, token string) {
	// The request context may already be cancelled; the lock still has to go.
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	released, err := s.client.Eval(ctx, releaseLockScript, []string{lockKey}, token).Int64()
	switch {
	case err != nil:
		s.log.Warn("releasing chat session lock failed", zap.String("key", lockKey), zap.Error(err))
	case released == 0:
		s.log.Warn("chat session lock expired before release", zap.String("key", lockKey))
	}
}
