package lock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/gravadigital/konkatsu-api/internal/logger"
)

// ErrBusy is returned when another generation already holds the party.
var ErrBusy = errors.New("generation already in progress")

// ReleaseFunc gives the party back. It is safe to call more than once.
type ReleaseFunc func(ctx context.Context) error

// PartyLocker serializes result generation per party. Acquire never blocks
// waiting for the holder; it fails fast with ErrBusy.
type PartyLocker interface {
	Acquire(ctx context.Context, partyID uuid.UUID) (ReleaseFunc, error)
}

// MemoryLocker holds locks in process. Enough for a single API instance.
type MemoryLocker struct {
	mu   sync.Mutex
	held map[uuid.UUID]struct{}
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{held: make(map[uuid.UUID]struct{})}
}

func (m *MemoryLocker) Acquire(ctx context.Context, partyID uuid.UUID) (ReleaseFunc, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.held[partyID]; ok {
		return nil, ErrBusy
	}
	m.held[partyID] = struct{}{}

	var once sync.Once
	return func(context.Context) error {
		once.Do(func() {
			m.mu.Lock()
			delete(m.held, partyID)
			m.mu.Unlock()
		})
		return nil
	}, nil
}

const keyPrefix = "konkatsu:lock:party:"

// releaseScript deletes the key only while it still carries our token, so
// a holder whose TTL expired cannot free somebody else's lock.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
    return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker shares locks between API instances through SET NX PX.
type RedisLocker struct {
	client *redis.Client
	ttl    time.Duration
	log    *log.Logger
}

func NewRedisLocker(client *redis.Client, ttl time.Duration) *RedisLocker {
	return &RedisLocker{
		client: client,
		ttl:    ttl,
		log:    logger.Service("lock"),
	}
}

// NewRedisLockerFromURL parses a redis:// URL and pings the server.
func NewRedisLockerFromURL(ctx context.Context, url string, ttl time.Duration) (*RedisLocker, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to reach redis: %w", err)
	}

	return NewRedisLocker(client, ttl), nil
}

func partyKey(partyID uuid.UUID) string {
	return keyPrefix + partyID.String()
}

func (r *RedisLocker) Acquire(ctx context.Context, partyID uuid.UUID) (ReleaseFunc, error) {
	key := partyKey(partyID)
	token := uuid.NewString()

	ok, err := r.client.SetNX(ctx, key, token, r.ttl).Result()
	if err != nil {
		r.log.Error("Failed to acquire party lock", "party_id", partyID, "error", err)
		return nil, fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !ok {
		r.log.Debug("Party lock busy", "party_id", partyID)
		return nil, ErrBusy
	}

	r.log.Debug("Party lock acquired", "party_id", partyID, "ttl", r.ttl)

	var once sync.Once
	var releaseErr error
	return func(ctx context.Context) error {
		once.Do(func() {
			if err := releaseScript.Run(ctx, r.client, []string{key}, token).Err(); err != nil {
				r.log.Warn("Failed to release party lock", "party_id", partyID, "error", err)
				releaseErr = fmt.Errorf("failed to release lock: %w", err)
			}
		})
		return releaseErr
	}, nil
}

func (r *RedisLocker) Close() error {
	return r.client.Close()
}

var (
	_ PartyLocker = (*MemoryLocker)(nil)
	_ PartyLocker = (*RedisLocker)(nil)
)
