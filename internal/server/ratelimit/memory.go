package ratelimit

import (
	"context"
	"hash/fnv"
	"sync"
	"time"
)

const shardCount = 16

type bucket struct {
	hits   []time.Time
	window time.Duration
}

type shard struct {
	mu      sync.Mutex
	buckets map[string]*bucket
}

// MemoryStore keeps hit logs in process memory, split across shards to
// limit lock contention.
type MemoryStore struct {
	shards [shardCount]*shard
}

func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{}
	for i := range s.shards {
		s.shards[i] = &shard{buckets: make(map[string]*bucket)}
	}
	return s
}

func (s *MemoryStore) shardFor(key string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return s.shards[h.Sum32()%shardCount]
}

func (s *MemoryStore) Take(_ context.Context, key string, now time.Time, window time.Duration, max int) (Decision, error) {
	sh := s.shardFor(key)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	b, ok := sh.buckets[key]
	if !ok {
		b = &bucket{window: window}
		sh.buckets[key] = b
	}
	b.window = window

	cutoff := now.Add(-window)
	i := 0
	for i < len(b.hits) && !b.hits[i].After(cutoff) {
		i++
	}
	b.hits = b.hits[i:]

	if len(b.hits) >= max {
		return Decision{Allowed: false, Remaining: 0, RetryAfter: retryAfter(b.hits[0], now, window)}, nil
	}

	b.hits = append(b.hits, now)
	return Decision{Allowed: true, Remaining: max - len(b.hits)}, nil
}

// Cleanup drops keys whose newest hit has left its window. It returns the
// number of keys removed.
func (s *MemoryStore) Cleanup(now time.Time) int {
	removed := 0
	for _, sh := range s.shards {
		sh.mu.Lock()
		for k, b := range sh.buckets {
			if len(b.hits) == 0 || !b.hits[len(b.hits)-1].After(now.Add(-b.window)) {
				delete(sh.buckets, k)
				removed++
			}
		}
		sh.mu.Unlock()
	}
	return removed
}

// Len reports the number of tracked keys.
func (s *MemoryStore) Len() int {
	n := 0
	for _, sh := range s.shards {
		sh.mu.Lock()
		n += len(sh.buckets)
		sh.mu.Unlock()
	}
	return n
}

// RunJanitor calls Cleanup every interval until ctx is done.
func (s *MemoryStore) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.Cleanup(now)
		}
	}
}
