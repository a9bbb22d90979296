package coach

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/RangerDjanger/BetterDay/internal/domain/events"
	"github.com/RangerDjanger/BetterDay/internal/domain/journal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSummary(t *testing.T) {
	summary := BuildSummary(DayInput{
		Habits: []HabitDay{
			{Name: "Read", Completed: true},
			{Name: "Run", Completed: false},
			{Name: "Meditate", Completed: true},
		},
		Morning:   0,
		Evening:   4,
		WentWell:  "",
		ToImprove: "bed earlier",
	})

	assert.Equal(t, []string{"Read", "Meditate"}, summary.CompletedHabits)
	assert.Equal(t, []string{"Run"}, summary.MissedHabits)
	assert.Equal(t, 3, summary.TotalHabits)
	assert.Zero(t, summary.Morning)
	assert.Equal(t, 4, summary.Evening)
	assert.Equal(t, "bed earlier", summary.ToImprove)
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name     string
		summary  DaySummary
		expected string
	}{
		{
			name:     "nothing scheduled",
			summary:  DaySummary{},
			expected: "Today I completed 0 out of 0 habits.",
		},
		{
			name: "full day",
			summary: DaySummary{
				CompletedHabits: []string{"Read", "Meditate"},
				MissedHabits:    []string{"Run"},
				TotalHabits:     3,
				Morning:         3,
				Evening:         4,
				WentWell:        "Finished a book",
				ToImprove:       "Sleep earlier",
			},
			expected: "Today I completed 2 out of 3 habits. Completed: Read, Meditate. Missed: Run. " +
				"Morning mood: 3/5. Evening mood: 4/5. What went well: Finished a book " +
				"What could improve: Sleep earlier",
		},
		{
			name: "absent moods are skipped",
			summary: DaySummary{
				MissedHabits: []string{"Run"},
				TotalHabits:  1,
			},
			expected: "Today I completed 0 out of 1 habits. Missed: Run.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, UserMessage(tt.summary))
		})
	}
}

func TestParsePersonality(t *testing.T) {
	p, err := ParsePersonality("")
	require.NoError(t, err)
	assert.Equal(t, Motivator, p)

	for _, want := range Personalities() {
		got, err := ParsePersonality(string(want))
		require.NoError(t, err)
		assert.Equal(t, want, got)
		assert.NotEmpty(t, Labels[want])
	}

	_, err = ParsePersonality("pirate")
	assert.Error(t, err)
}

func TestSystemPromptsAreDistinct(t *testing.T) {
	seen := map[string]bool{}
	for _, p := range Personalities() {
		prompt := p.SystemPrompt()
		assert.False(t, seen[prompt], "duplicate prompt for %s", p)
		seen[prompt] = true
	}
	assert.Contains(t, DrillSergeant.SystemPrompt(), "RECRUIT")
	assert.Equal(t, Motivator.SystemPrompt(), Personality("unknown").SystemPrompt())
}

type fakeGenerator struct {
	text    string
	err     error
	system  string
	user    string
	calls   int
	blockOn bool
}

func (f *fakeGenerator) Generate(ctx context.Context, systemPrompt, userMessage string) (string, error) {
	f.calls++
	f.system = systemPrompt
	f.user = userMessage
	if f.blockOn {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return f.text, f.err
}

func TestRespond(t *testing.T) {
	summary := DaySummary{CompletedHabits: []string{"Read"}, TotalHabits: 1}

	t.Run("trims and returns text", func(t *testing.T) {
		gen := &fakeGenerator{text: "  Great job!  "}
		text, err := NewService(gen, 0, nil).Respond(context.Background(), Comedian, summary)
		require.NoError(t, err)
		assert.Equal(t, "Great job!", text)
		assert.Equal(t, Comedian.SystemPrompt(), gen.system)
		assert.Equal(t, UserMessage(summary), gen.user)
	})

	t.Run("not configured", func(t *testing.T) {
		_, err := NewService(nil, 0, nil).Respond(context.Background(), Motivator, summary)
		assert.ErrorIs(t, err, ErrNotConfigured)
	})

	t.Run("empty response", func(t *testing.T) {
		_, err := NewService(&fakeGenerator{text: "   "}, 0, nil).Respond(context.Background(), Motivator, summary)
		assert.ErrorIs(t, err, ErrEmptyResponse)
	})

	t.Run("remote error is not retried", func(t *testing.T) {
		gen := &fakeGenerator{err: &RemoteServiceError{StatusCode: 429, Body: "rate limited"}}
		_, err := NewService(gen, 0, nil).Respond(context.Background(), Motivator, summary)

		var remote *RemoteServiceError
		require.ErrorAs(t, err, &remote)
		assert.Equal(t, 429, remote.StatusCode)
		assert.Equal(t, "rate limited", remote.Body)
		assert.Equal(t, 1, gen.calls)
	})

	t.Run("timeout", func(t *testing.T) {
		gen := &fakeGenerator{blockOn: true}
		_, err := NewService(gen, 20*time.Millisecond, nil).Respond(context.Background(), Motivator, summary)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("unknown personality uses default voice", func(t *testing.T) {
		gen := &fakeGenerator{text: "ok"}
		_, err := NewService(gen, 0, nil).Respond(context.Background(), Personality("pirate"), summary)
		require.NoError(t, err)
		assert.Equal(t, Motivator.SystemPrompt(), gen.system)
	})
}

// fakeJournal records saves in memory.
type fakeJournal struct {
	moods       map[string]journal.MoodEntry
	reflections map[string]journal.Reflection
	saveErr     error
}

func newFakeJournal() *fakeJournal {
	return &fakeJournal{
		moods:       map[string]journal.MoodEntry{},
		reflections: map[string]journal.Reflection{},
	}
}

func (f *fakeJournal) SaveReflection(_ context.Context, userID string, in journal.ReflectionInput) (*journal.Reflection, error) {
	if f.saveErr != nil {
		return nil, f.saveErr
	}
	r := journal.Reflection{UserID: userID, Date: in.Date, WentWell: in.WentWell, ToImprove: in.ToImprove}
	f.reflections[userID+in.Date] = r
	return &r, nil
}

func (f *fakeJournal) GetReflection(_ context.Context, userID, date string) (*journal.Reflection, error) {
	r, ok := f.reflections[userID+date]
	if !ok {
		return nil, journal.ErrReflectionNotFound
	}
	return &r, nil
}

func (f *fakeJournal) ListReflections(context.Context, string) ([]journal.Reflection, error) {
	return nil, nil
}

func (f *fakeJournal) SaveMood(_ context.Context, userID string, in journal.MoodInput) (*journal.MoodEntry, error) {
	if f.saveErr != nil {
		return nil, f.saveErr
	}
	m := journal.MoodEntry{UserID: userID, Date: in.Date, Morning: in.Morning, Evening: in.Evening}
	f.moods[userID+in.Date] = m
	return &m, nil
}

func (f *fakeJournal) GetMood(_ context.Context, userID, date string) (*journal.MoodEntry, error) {
	m, ok := f.moods[userID+date]
	if !ok {
		return nil, journal.ErrMoodNotFound
	}
	return &m, nil
}

func (f *fakeJournal) ListMoods(context.Context, string) ([]journal.MoodEntry, error) {
	return nil, nil
}

func (f *fakeJournal) ClearUserData(context.Context, string) error { return nil }

type fakeHabits struct {
	habits []HabitDay
	err    error
}

func (f fakeHabits) DayHabits(context.Context, string, string) ([]HabitDay, error) {
	return f.habits, f.err
}

type fixedPersonality Personality

func (p fixedPersonality) CoachPersonality(context.Context, string) (Personality, error) {
	return Personality(p), nil
}

type recordingPublisher struct {
	events []*events.Event
}

func (r *recordingPublisher) PublishDomainEvent(_ context.Context, e *events.Event) error {
	r.events = append(r.events, e)
	return nil
}

func TestCheckInComplete(t *testing.T) {
	js := newFakeJournal()
	js.moods["u12024-06-12"] = journal.MoodEntry{UserID: "u1", Date: "2024-06-12", Morning: 2}
	habits := fakeHabits{habits: []HabitDay{{Name: "Read", Completed: true}, {Name: "Run"}}}
	gen := &fakeGenerator{text: "Keep it up, RECRUIT!"}
	pub := &recordingPublisher{}

	svc := NewCheckInService(js, habits, fixedPersonality(DrillSergeant), NewService(gen, 0, nil), pub, nil)
	result, err := svc.Complete(context.Background(), "u1", CheckInInput{
		Date:      "2024-06-12",
		Evening:   4,
		WentWell:  "Read a chapter",
		ToImprove: "Go for the run",
	})
	require.NoError(t, err)
	require.NoError(t, result.CoachErr)

	// Morning mood recorded earlier is kept.
	assert.Equal(t, 2, result.Mood.Morning)
	assert.Equal(t, 4, result.Mood.Evening)
	assert.Equal(t, "Read a chapter", result.Reflection.WentWell)
	assert.Equal(t, DrillSergeant, result.Personality)
	assert.Equal(t, "Keep it up, RECRUIT!", result.Message)
	assert.True(t, strings.HasPrefix(gen.user, "Today I completed 1 out of 2 habits."))
	assert.Contains(t, gen.user, "Morning mood: 2/5.")
	assert.Equal(t, DrillSergeant.SystemPrompt(), gen.system)

	require.Len(t, pub.events, 1)
	assert.Equal(t, events.EventTypeCheckInCompleted, pub.events[0].EventType)
}

func TestCheckInKeepsSavesWhenCoachFails(t *testing.T) {
	js := newFakeJournal()
	svc := NewCheckInService(js, fakeHabits{}, nil, NewService(nil, 0, nil), nil, nil)

	result, err := svc.Complete(context.Background(), "u1", CheckInInput{Date: "2024-06-12", Evening: 3})
	require.NoError(t, err)
	assert.ErrorIs(t, result.CoachErr, ErrNotConfigured)
	assert.Empty(t, result.Message)

	_, ok := js.moods["u12024-06-12"]
	assert.True(t, ok)
	_, ok = js.reflections["u12024-06-12"]
	assert.True(t, ok)
}

func TestCheckInHabitLoadFailureIsReported(t *testing.T) {
	js := newFakeJournal()
	gen := &fakeGenerator{text: "hi"}
	svc := NewCheckInService(js, fakeHabits{err: errors.New("db down")}, nil, NewService(gen, 0, nil), nil, nil)

	result, err := svc.Complete(context.Background(), "u1", CheckInInput{Date: "2024-06-12"})
	require.NoError(t, err)
	assert.Error(t, result.CoachErr)
	assert.Zero(t, gen.calls)
}

func TestCheckInSaveFailureStopsBeforeCoach(t *testing.T) {
	js := newFakeJournal()
	js.saveErr = journal.ErrInvalidInput
	gen := &fakeGenerator{text: "hi"}
	svc := NewCheckInService(js, fakeHabits{}, nil, NewService(gen, 0, nil), nil, nil)

	_, err := svc.Complete(context.Background(), "u1", CheckInInput{Date: "bad"})
	assert.ErrorIs(t, err, journal.ErrInvalidInput)
	assert.Zero(t, gen.calls)
}

func TestCheckInPersonalityOverride(t *testing.T) {
	gen := &fakeGenerator{text: "ha"}
	svc := NewCheckInService(newFakeJournal(), fakeHabits{}, fixedPersonality(DrillSergeant), NewService(gen, 0, nil), nil, nil)

	result, err := svc.Complete(context.Background(), "u1", CheckInInput{Date: "2024-06-12", Personality: "comedian"})
	require.NoError(t, err)
	assert.Equal(t, Comedian, result.Personality)
	assert.Equal(t, Comedian.SystemPrompt(), gen.system)
}
