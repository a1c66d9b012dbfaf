// File: /services/token_ledger.go
package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenLedger remembers consumed single-use tokens until they would expire.
type TokenLedger interface {
	// MarkUsed records id and reports whether this call was the first to do so.
	MarkUsed(ctx context.Context, id string, until time.Time) (bool, error)
	IsUsed(ctx context.Context, id string) (bool, error)
	// Release forgets id so the token can be used again.
	Release(ctx context.Context, id string) error
}

type MemoryTokenLedger struct {
	mu   sync.Mutex
	used map[string]time.Time
	now  func() time.Time
}

func NewMemoryTokenLedger() *MemoryTokenLedger {
	return &MemoryTokenLedger{used: make(map[string]time.Time), now: time.Now}
}

func (l *MemoryTokenLedger) WithClock(now func() time.Time) *MemoryTokenLedger {
	l.now = now
	return l
}

func (l *MemoryTokenLedger) MarkUsed(_ context.Context, id string, until time.Time) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if exp, ok := l.used[id]; ok && l.now().Before(exp) {
		return false, nil
	}
	l.used[id] = until
	return true, nil
}

func (l *MemoryTokenLedger) IsUsed(_ context.Context, id string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	exp, ok := l.used[id]
	return ok && l.now().Before(exp), nil
}

func (l *MemoryTokenLedger) Release(_ context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.used, id)
	return nil
}

// Purge drops entries whose tokens have expired and returns how many it removed.
func (l *MemoryTokenLedger) Purge() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	removed := 0
	for id, exp := range l.used {
		if !now.Before(exp) {
			delete(l.used, id)
			removed++
		}
	}
	return removed
}

func (l *MemoryTokenLedger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.used)
}

const redisLedgerPrefix = "vanlife:used-token:"

// RedisTokenLedger shares the ledger between API instances; keys expire on their own.
type RedisTokenLedger struct {
	client redis.Cmdable
	now    func() time.Time
}

func NewRedisTokenLedger(client redis.Cmdable) *RedisTokenLedger {
	return &RedisTokenLedger{client: client, now: time.Now}
}

func (l *RedisTokenLedger) MarkUsed(ctx context.Context, id string, until time.Time) (bool, error) {
	ttl := until.Sub(l.now())
	if ttl < time.Second {
		ttl = time.Second
	}
	first, err := l.client.SetNX(ctx, redisLedgerPrefix+id, 1, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to record used token: %w", err)
	}
	return first, nil
}

func (l *RedisTokenLedger) IsUsed(ctx context.Context, id string) (bool, error) {
	n, err := l.client.Exists(ctx, redisLedgerPrefix+id).Result()
	if err != nil {
		return false, fmt.Errorf("failed to look up used token: %w", err)
	}
	return n > 0, nil
}

func (l *RedisTokenLedger) Release(ctx context.Context, id string) error {
	if err := l.client.Del(ctx, redisLedgerPrefix+id).Err(); err != nil {
		return fmt.Errorf("failed to release used token: %w", err)
	}
	return nil
}
