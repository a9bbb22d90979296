package milestones

import (
	"context"
	"sort"
	"strconv"
	"sync"
)

// MemoryStore keeps achievements in process memory.
type MemoryStore struct {
	mu       sync.Mutex
	achieved map[Key]map[int]bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{achieved: make(map[Key]map[int]bool)}
}

func (s *MemoryStore) Achieved(_ context.Context, key Key) ([]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	days := make([]int, 0, len(s.achieved[key]))
	for d := range s.achieved[key] {
		days = append(days, d)
	}
	sort.Ints(days)
	return days, nil
}

func (s *MemoryStore) MarkAchieved(_ context.Context, key Key, days int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, ok := s.achieved[key]
	if !ok {
		set = make(map[int]bool)
		s.achieved[key] = set
	}
	if set[days] {
		return false, nil
	}
	set[days] = true
	return true, nil
}

func (s *MemoryStore) Clear(_ context.Context, key Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.achieved, key)
	return nil
}

func (s *MemoryStore) ClearUser(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k := range s.achieved {
		if k.UserID == userID {
			delete(s.achieved, k)
		}
	}
	return nil
}

// SetStore is the subset of the Redis client used by RedisStore.
type SetStore interface {
	SAdd(ctx context.Context, key, member string) (bool, error)
	SMembers(ctx context.Context, key string) ([]string, error)
	Delete(ctx context.Context, keys ...string) error
	ClearByPattern(ctx context.Context, pattern string) error
}

// RedisStore records each habit's achievements in one Redis set. SADD
// returns whether the member was new, which makes MarkAchieved atomic.
type RedisStore struct {
	sets SetStore
}

func NewRedisStore(sets SetStore) *RedisStore {
	return &RedisStore{sets: sets}
}

func redisKey(key Key) string {
	return "milestones:" + key.String()
}

func (s *RedisStore) Achieved(ctx context.Context, key Key) ([]int, error) {
	members, err := s.sets.SMembers(ctx, redisKey(key))
	if err != nil {
		return nil, err
	}

	days := make([]int, 0, len(members))
	for _, m := range members {
		d, err := strconv.Atoi(m)
		if err != nil {
			continue
		}
		days = append(days, d)
	}
	sort.Ints(days)
	return days, nil
}

func (s *RedisStore) MarkAchieved(ctx context.Context, key Key, days int) (bool, error) {
	return s.sets.SAdd(ctx, redisKey(key), strconv.Itoa(days))
}

func (s *RedisStore) Clear(ctx context.Context, key Key) error {
	return s.sets.Delete(ctx, redisKey(key))
}

// ClearUser removes every set under the user's prefix. Key.String joins
// user and habit with a colon, so the pattern cannot match another user
// whose id merely starts with userID.
func (s *RedisStore) ClearUser(ctx context.Context, userID string) error {
	return s.sets.ClearByPattern(ctx, "milestones:"+userID+":*")
}
