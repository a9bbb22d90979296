package milestones

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/RangerDjanger/BetterDay/internal/domain/streaks"
	"github.com/RangerDjanger/BetterDay/internal/infrastructure/cache"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	today = time.Date(2024, 6, 12, 0, 0, 0, 0, time.UTC)
	key   = Key{UserID: "user-1", HabitID: "habit-1"}
)

func streakOf(n int) []streaks.Log {
	logs := make([]streaks.Log, 0, n)
	for i := 0; i < n; i++ {
		logs = append(logs, streaks.Log{
			HabitID:   key.HabitID,
			Date:      streaks.FormatDate(today.AddDate(0, 0, -i)),
			Completed: true,
		})
	}
	return logs
}

func newTracker(store Store) *Tracker {
	return NewTracker(streaks.NewEngine(streaks.FixedClock{Date: today}), store)
}

func newRedisStore(t *testing.T) *RedisStore {
	t.Helper()
	mr := miniredis.RunT(t)
	cfg := cache.DefaultConfig()
	cfg.Addr = mr.Addr()
	cfg.HealthInterval = 0
	client, err := cache.NewRedisClient(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return NewRedisStore(client)
}

func TestThresholdsAreAscending(t *testing.T) {
	require.Len(t, Thresholds, 4)
	for i := 1; i < len(Thresholds); i++ {
		assert.Less(t, Thresholds[i-1].Days, Thresholds[i].Days)
	}
	assert.Equal(t, "Date Night Unlocked! 🎉", Thresholds[3].Label)
}

func TestCheckNewMilestone(t *testing.T) {
	tests := []struct {
		name      string
		prior     []int
		streak    int
		wantDays  int
		wantFound bool
	}{
		{name: "below first threshold", streak: 6},
		{name: "first week", streak: 7, wantDays: 7, wantFound: true},
		{name: "first week already recorded", prior: []int{7}, streak: 8},
		{name: "lowest unachieved first", streak: 15, wantDays: 7, wantFound: true},
		{name: "next after recorded", prior: []int{7}, streak: 15, wantDays: 14, wantFound: true},
		{name: "gap in recorded thresholds", prior: []int{7, 21}, streak: 30, wantDays: 14, wantFound: true},
		{name: "all recorded", prior: []int{7, 14, 21, 30}, streak: 45},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewMemoryStore()
			for _, d := range tt.prior {
				_, err := store.MarkAchieved(context.Background(), key, d)
				require.NoError(t, err)
			}

			th, found, err := newTracker(store).CheckNewMilestone(context.Background(), key, nil, streakOf(tt.streak))
			require.NoError(t, err)
			assert.Equal(t, tt.wantFound, found)
			assert.Equal(t, tt.wantDays, th.Days)
		})
	}
}

func TestCheckNewMilestoneReportsOnce(t *testing.T) {
	tracker := newTracker(NewMemoryStore())
	logs := streakOf(7)

	th, found, err := tracker.CheckNewMilestone(context.Background(), key, nil, logs)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "1 Week Strong! 💪", th.Label)

	_, found, err = tracker.CheckNewMilestone(context.Background(), key, nil, logs)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCheckNewMilestoneIsPerHabit(t *testing.T) {
	tracker := newTracker(NewMemoryStore())

	_, found, err := tracker.CheckNewMilestone(context.Background(), key, nil, streakOf(7))
	require.NoError(t, err)
	require.True(t, found)

	other := Key{UserID: key.UserID, HabitID: "habit-2"}
	logs := streakOf(7)
	for i := range logs {
		logs[i].HabitID = other.HabitID
	}
	th, found, err := tracker.CheckNewMilestone(context.Background(), other, nil, logs)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 7, th.Days)
}

func TestMilestonesForHabit(t *testing.T) {
	store := NewMemoryStore()
	_, err := store.MarkAchieved(context.Background(), key, 21)
	require.NoError(t, err)

	list, err := newTracker(store).MilestonesForHabit(context.Background(), key, nil, streakOf(8))
	require.NoError(t, err)
	require.Len(t, list, 4)

	achieved := map[int]bool{}
	for _, m := range list {
		achieved[m.Days] = m.Achieved
	}
	// 7 by streak, 21 by history; broken streaks never revoke history.
	assert.Equal(t, map[int]bool{7: true, 14: false, 21: true, 30: false}, achieved)
}

func TestAchievementSurvivesBrokenStreak(t *testing.T) {
	store := NewMemoryStore()
	tracker := newTracker(store)

	_, found, err := tracker.CheckNewMilestone(context.Background(), key, nil, streakOf(7))
	require.NoError(t, err)
	require.True(t, found)

	list, err := tracker.MilestonesForHabit(context.Background(), key, nil, nil)
	require.NoError(t, err)
	assert.True(t, list[0].Achieved)

	// Rebuilding the streak does not report the same label again.
	_, found, err = tracker.CheckNewMilestone(context.Background(), key, nil, streakOf(7))
	require.NoError(t, err)
	assert.False(t, found)
}

func TestConcurrentChecksReportExactlyOnce(t *testing.T) {
	stores := map[string]Store{
		"memory": NewMemoryStore(),
		"redis":  newRedisStore(t),
	}

	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			tracker := newTracker(store)
			logs := streakOf(7)

			var (
				wg      sync.WaitGroup
				mu      sync.Mutex
				reports int
			)
			for i := 0; i < 20; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					_, found, err := tracker.CheckNewMilestone(context.Background(), key, nil, logs)
					assert.NoError(t, err)
					if found {
						mu.Lock()
						reports++
						mu.Unlock()
					}
				}()
			}
			wg.Wait()

			assert.Equal(t, 1, reports)
		})
	}
}

func TestRedisStoreAchieved(t *testing.T) {
	store := newRedisStore(t)
	ctx := context.Background()

	for _, d := range []int{14, 7} {
		added, err := store.MarkAchieved(ctx, key, d)
		require.NoError(t, err)
		assert.True(t, added)
	}

	days, err := store.Achieved(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, []int{7, 14}, days)
}

func TestClearForgetsAchievements(t *testing.T) {
	stores := map[string]Store{
		"memory": NewMemoryStore(),
		"redis":  newRedisStore(t),
	}

	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			other := Key{UserID: key.UserID, HabitID: "habit-2"}
			prefixed := Key{UserID: key.UserID + "0", HabitID: key.HabitID}
			for _, k := range []Key{key, other, prefixed} {
				_, err := store.MarkAchieved(ctx, k, 7)
				require.NoError(t, err)
			}

			tracker := newTracker(store)
			require.NoError(t, tracker.Reset(ctx, key))
			days, err := store.Achieved(ctx, key)
			require.NoError(t, err)
			assert.Empty(t, days)
			days, err = store.Achieved(ctx, other)
			require.NoError(t, err)
			assert.Equal(t, []int{7}, days)

			// The threshold can be unlocked again after a reset.
			_, found, err := tracker.CheckNewMilestone(ctx, key, nil, streakOf(7))
			require.NoError(t, err)
			assert.True(t, found)

			require.NoError(t, tracker.ResetUser(ctx, key.UserID))
			for _, k := range []Key{key, other} {
				days, err = store.Achieved(ctx, k)
				require.NoError(t, err)
				assert.Empty(t, days, k.String())
			}
			days, err = store.Achieved(ctx, prefixed)
			require.NoError(t, err)
			assert.Equal(t, []int{7}, days)
		})
	}
}

type failingStore struct{ err error }

func (f failingStore) Achieved(context.Context, Key) ([]int, error) { return nil, f.err }
func (f failingStore) MarkAchieved(context.Context, Key, int) (bool, error) {
	return false, f.err
}
func (f failingStore) Clear(context.Context, Key) error        { return f.err }
func (f failingStore) ClearUser(context.Context, string) error { return f.err }

func TestStoreErrorsPropagate(t *testing.T) {
	boom := errors.New("boom")
	tracker := newTracker(failingStore{err: boom})

	_, _, err := tracker.CheckNewMilestone(context.Background(), key, nil, streakOf(7))
	assert.ErrorIs(t, err, boom)

	_, err = tracker.MilestonesForHabit(context.Background(), key, nil, nil)
	assert.ErrorIs(t, err, boom)

	assert.ErrorIs(t, tracker.Reset(context.Background(), key), boom)
	assert.ErrorIs(t, tracker.ResetUser(context.Background(), key.UserID), boom)
}
