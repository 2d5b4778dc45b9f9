package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"formbuilder/internal/viewer"

	"github.com/redis/go-redis/v9"
)

// FillSessionTTL is how long an idle fill session is kept
const FillSessionTTL = 24 * time.Hour

// maxUpdateRetries bounds optimistic retries when another writer wins
const maxUpdateRetries = 8

// sweepInterval is the minimum time between scans for expired
// in-memory sessions
const sweepInterval = time.Minute

var ErrUpdateConflict = errors.New("fill session changed concurrently, try again")

var errSessionAbsent = errors.New("fill session absent")

// FillSessionCache stores in-progress fill sessions
type FillSessionCache interface {
	Set(ctx context.Context, session *viewer.Session) error
	Get(ctx context.Context, id string) (*viewer.Session, error) // nil when absent
	// Update applies fn to the stored session and writes the result back
	// atomically. fn may run more than once and must not have side
	// effects. A non-nil error from fn aborts without writing. Returns
	// nil when the session is absent.
	Update(ctx context.Context, id string, fn func(*viewer.Session) error) (*viewer.Session, error)
}

type fillSessionCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewFillSessionCache creates a Redis-backed session cache
func NewFillSessionCache(client *redis.Client) FillSessionCache {
	return &fillSessionCache{
		client: client,
		ttl:    FillSessionTTL,
	}
}

func (c *fillSessionCache) key(id string) string {
	return fmt.Sprintf("fill:%s", id)
}

func (c *fillSessionCache) Set(ctx context.Context, session *viewer.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(session.ID), data, c.ttl).Err()
}

func (c *fillSessionCache) Get(ctx context.Context, id string) (*viewer.Session, error) {
	data, err := c.client.Get(ctx, c.key(id)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var session viewer.Session
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// Update is a WATCH/MULTI check-and-set on the session key
func (c *fillSessionCache) Update(ctx context.Context, id string, fn func(*viewer.Session) error) (*viewer.Session, error) {
	key := c.key(id)
	var out *viewer.Session

	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if err == redis.Nil {
			return errSessionAbsent
		}
		if err != nil {
			return err
		}

		var session viewer.Session
		if err := json.Unmarshal(data, &session); err != nil {
			return err
		}
		if err := fn(&session); err != nil {
			return err
		}
		encoded, err := json.Marshal(&session)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, encoded, c.ttl)
			return nil
		})
		if err == nil {
			out = &session
		}
		return err
	}

	for i := 0; i < maxUpdateRetries; i++ {
		err := c.client.Watch(ctx, txf, key)
		switch {
		case err == nil:
			return out, nil
		case errors.Is(err, redis.TxFailedErr):
			continue
		case errors.Is(err, errSessionAbsent):
			return nil, nil
		default:
			return nil, err
		}
	}
	return nil, ErrUpdateConflict
}

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

type memoryFillSessionCache struct {
	mu        sync.Mutex
	entries   map[string]memoryEntry
	ttl       time.Duration
	now       func() time.Time
	lastSweep time.Time
}

// NewMemoryFillSessionCache keeps sessions in process memory with the
// same expiry as the Redis cache
func NewMemoryFillSessionCache() FillSessionCache {
	return &memoryFillSessionCache{
		entries: make(map[string]memoryEntry),
		ttl:     FillSessionTTL,
		now:     time.Now,
	}
}

// sweepLocked drops expired entries so abandoned sessions do not pile up.
// The caller holds c.mu.
func (c *memoryFillSessionCache) sweepLocked(now time.Time) {
	if now.Sub(c.lastSweep) < sweepInterval {
		return
	}
	c.lastSweep = now
	for id, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, id)
		}
	}
}

// lookupLocked returns the live entry for id. The caller holds c.mu.
func (c *memoryFillSessionCache) lookupLocked(id string, now time.Time) (memoryEntry, bool) {
	entry, ok := c.entries[id]
	if ok && now.After(entry.expiresAt) {
		delete(c.entries, id)
		return memoryEntry{}, false
	}
	return entry, ok
}

func (c *memoryFillSessionCache) Set(ctx context.Context, session *viewer.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	c.sweepLocked(now)
	c.entries[session.ID] = memoryEntry{data: data, expiresAt: now.Add(c.ttl)}
	return nil
}

func (c *memoryFillSessionCache) Get(ctx context.Context, id string) (*viewer.Session, error) {
	c.mu.Lock()
	entry, ok := c.lookupLocked(id, c.now())
	c.mu.Unlock()
	if !ok {
		return nil, nil
	}

	var session viewer.Session
	if err := json.Unmarshal(entry.data, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// Update holds the cache lock across read, fn and write
func (c *memoryFillSessionCache) Update(ctx context.Context, id string, fn func(*viewer.Session) error) (*viewer.Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	c.sweepLocked(now)

	entry, ok := c.lookupLocked(id, now)
	if !ok {
		return nil, nil
	}
	var session viewer.Session
	if err := json.Unmarshal(entry.data, &session); err != nil {
		return nil, err
	}
	if err := fn(&session); err != nil {
		return nil, err
	}
	data, err := json.Marshal(&session)
	if err != nil {
		return nil, err
	}
	c.entries[id] = memoryEntry{data: data, expiresAt: now.Add(c.ttl)}
	return &session, nil
}
