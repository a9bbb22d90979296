package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/RangerDjanger/BetterDay/internal/domain/coach"
	"github.com/RangerDjanger/BetterDay/internal/domain/habits"
	"github.com/RangerDjanger/BetterDay/internal/domain/journal"
	"github.com/RangerDjanger/BetterDay/internal/domain/reminders"
	"github.com/RangerDjanger/BetterDay/internal/domain/settings"
	"github.com/RangerDjanger/BetterDay/internal/domain/streaks"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func asUser(userID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Next()
	}
}

func do(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder, dest interface{}) {
	t.Helper()
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NoError(t, json.Unmarshal(envelope.Data, dest))
}

// fakeHabits implements only what the tests call; anything else panics.
type fakeHabits struct {
	habits.Service
	habits   map[string]*habits.Habit
	stats    *streaks.Stats
	heatmap  map[string]int
	logErr   error
	since    time.Time
	period   string
	cleared  []string
	clearErr error
}

func newFakeHabits() *fakeHabits {
	return &fakeHabits{habits: map[string]*habits.Habit{}}
}

func (f *fakeHabits) CreateHabit(_ context.Context, userID string, in habits.HabitInput) (*habits.Habit, error) {
	h := &habits.Habit{UserID: userID, ID: "h1", Name: in.Name, CreatedAt: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)}
	f.habits[h.ID] = h
	return h, nil
}

func (f *fakeHabits) GetHabit(_ context.Context, _, id string) (*habits.Habit, error) {
	if id == "boom" {
		return nil, errors.New("connection refused")
	}
	h, ok := f.habits[id]
	if !ok {
		return nil, habits.ErrHabitNotFound
	}
	return h, nil
}

func (f *fakeHabits) DeleteHabit(_ context.Context, _, id string) error {
	delete(f.habits, id)
	return nil
}

func (f *fakeHabits) SetLog(_ context.Context, _, habitID string, in habits.LogInput) (*habits.LogResult, error) {
	if f.logErr != nil {
		return nil, f.logErr
	}
	return &habits.LogResult{
		Log:       &habits.HabitLog{HabitID: habitID, Date: in.Date, Completed: in.Completed},
		Milestone: "First Step",
	}, nil
}

func (f *fakeHabits) GetStats(_ context.Context, _, habitID string) (*streaks.Stats, error) {
	if _, ok := f.habits[habitID]; !ok {
		return nil, habits.ErrHabitNotFound
	}
	return f.stats, nil
}

func (f *fakeHabits) GetHeatmapData(_ context.Context, _, period string) (map[string]int, error) {
	f.period = period
	return f.heatmap, nil
}

func (f *fakeHabits) GetActivitySummary(_ context.Context, _ string, since time.Time) (*habits.ActivitySummary, error) {
	f.since = since
	return &habits.ActivitySummary{ActionCounts: map[string]int{}, StartTime: since}, nil
}

func (f *fakeHabits) ClearUserData(_ context.Context, userID string) error {
	f.cleared = append(f.cleared, userID)
	return f.clearErr
}

func habitsRouter(h *HabitsHandler, userID string) *gin.Engine {
	r := gin.New()
	api := r.Group("/api/habits")
	if userID != "" {
		api.Use(asUser(userID))
	}
	api.POST("", h.CreateHabit)
	api.GET("/heatmap", h.GetHabitHeatmap)
	api.GET("/activity", h.GetActivitySummary)
	api.GET("/:id", h.GetHabit)
	api.DELETE("/:id", h.DeleteHabit)
	api.POST("/:id/logs", h.SetLog)
	api.GET("/:id/stats", h.GetHabitStats)
	return r
}

func TestCreateAndGetHabit(t *testing.T) {
	svc := newFakeHabits()
	r := habitsRouter(NewHabitsHandler(svc), "u1")

	w := do(r, http.MethodPost, "/api/habits", `{"name":"Read"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"activeDays":[]`)

	w = do(r, http.MethodGet, "/api/habits/h1", "")
	require.Equal(t, http.StatusOK, w.Code)
	var got struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	decodeData(t, w, &got)
	assert.Equal(t, "h1", got.ID)
	assert.Equal(t, "Read", got.Name)
}

func TestHabitErrorsMapToStatus(t *testing.T) {
	svc := newFakeHabits()
	r := habitsRouter(NewHabitsHandler(svc), "u1")

	w := do(r, http.MethodGet, "/api/habits/missing", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"habit not found"}`, w.Body.String())

	w = do(r, http.MethodGet, "/api/habits/boom", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "connection refused")

	svc.logErr = fmt.Errorf("%w: date must be YYYY-MM-DD", habits.ErrInvalidInput)
	w = do(r, http.MethodPost, "/api/habits/h1/logs", `{"date":"soon"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPost, "/api/habits", `{"name":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHabitsRequireUser(t *testing.T) {
	r := habitsRouter(NewHabitsHandler(newFakeHabits()), "")

	w := do(r, http.MethodGet, "/api/habits/h1", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSetLogReportsMilestone(t *testing.T) {
	r := habitsRouter(NewHabitsHandler(newFakeHabits()), "u1")

	w := do(r, http.MethodPost, "/api/habits/h1/logs", `{"date":"2024-03-01","completed":true}`)
	require.Equal(t, http.StatusOK, w.Code)
	var got struct {
		Log struct {
			HabitID   string `json:"habitId"`
			Date      string `json:"date"`
			Completed bool   `json:"completed"`
		} `json:"log"`
		Milestone string `json:"milestone"`
	}
	decodeData(t, w, &got)
	assert.Equal(t, "h1", got.Log.HabitID)
	assert.True(t, got.Log.Completed)
	assert.Equal(t, "First Step", got.Milestone)
}

func TestGetHabitStats(t *testing.T) {
	svc := newFakeHabits()
	svc.habits["h1"] = &habits.Habit{ID: "h1"}
	svc.stats = &streaks.Stats{TotalCompletions: 9, CurrentStreak: 3, BestStreak: 5, StreakGoal: 7}
	r := habitsRouter(NewHabitsHandler(svc), "u1")

	w := do(r, http.MethodGet, "/api/habits/h1/stats", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"data":{"habitId":"h1","totalCompletions":9,"currentStreak":3,"bestStreak":5,"streakGoal":7,"streakGoalComplete":false}}`,
		w.Body.String())

	w = do(r, http.MethodGet, "/api/habits/nope/stats", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetHabitHeatmap(t *testing.T) {
	svc := newFakeHabits()
	svc.heatmap = map[string]int{"2024-03-01": 2, "2024-03-02": 5}
	r := habitsRouter(NewHabitsHandler(svc), "u1")

	w := do(r, http.MethodGet, "/api/habits/heatmap", "")
	require.Equal(t, http.StatusOK, w.Code)
	var got struct {
		Period   string         `json:"period"`
		Data     map[string]int `json:"data"`
		MinValue int            `json:"minValue"`
		MaxValue int            `json:"maxValue"`
	}
	decodeData(t, w, &got)
	assert.Equal(t, "year", got.Period)
	assert.Equal(t, "", svc.period)
	assert.Equal(t, 2, got.MinValue)
	assert.Equal(t, 5, got.MaxValue)

	do(r, http.MethodGet, "/api/habits/heatmap?period=week", "")
	assert.Equal(t, "week", svc.period)
}

func TestGetActivitySummaryDefaultsToThirtyDays(t *testing.T) {
	svc := newFakeHabits()
	h := NewHabitsHandler(svc)
	now := time.Date(2024, 3, 31, 12, 0, 0, 0, time.UTC)
	h.now = func() time.Time { return now }

	w := do(habitsRouter(h, "u1"), http.MethodGet, "/api/habits/activity", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, now.AddDate(0, 0, -30), svc.since)
}

func TestDeleteHabit(t *testing.T) {
	svc := newFakeHabits()
	svc.habits["h1"] = &habits.Habit{ID: "h1"}
	r := habitsRouter(NewHabitsHandler(svc), "u1")

	w := do(r, http.MethodDelete, "/api/habits/h1", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, svc.habits)
}

type fakeJournal struct {
	journal.Service
	moods    []journal.MoodEntry
	cleared  []string
	clearErr error
}

func (f *fakeJournal) ListMoods(context.Context, string) ([]journal.MoodEntry, error) {
	return f.moods, nil
}

func (f *fakeJournal) GetMood(context.Context, string, string) (*journal.MoodEntry, error) {
	return nil, journal.ErrMoodNotFound
}

func (f *fakeJournal) GetReflection(context.Context, string, string) (*journal.Reflection, error) {
	return nil, journal.ErrReflectionNotFound
}

func (f *fakeJournal) ClearUserData(_ context.Context, userID string) error {
	f.cleared = append(f.cleared, userID)
	return f.clearErr
}

type fakeCheckIn struct {
	result *coach.CheckInResult
	err    error
	got    coach.CheckInInput
}

func (f *fakeCheckIn) Complete(_ context.Context, _ string, in coach.CheckInInput) (*coach.CheckInResult, error) {
	f.got = in
	return f.result, f.err
}

func journalRouter(h *JournalHandler) *gin.Engine {
	r := gin.New()
	api := r.Group("/api", asUser("u1"))
	api.GET("/mood", h.ListMoods)
	api.GET("/mood/:date", h.GetMood)
	api.GET("/reflections/:date", h.GetReflection)
	api.POST("/checkin", h.CheckIn)
	return r
}

func TestListMoodsNeverNull(t *testing.T) {
	r := journalRouter(NewJournalHandler(&fakeJournal{}, &fakeCheckIn{}))

	w := do(r, http.MethodGet, "/api/mood", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"data":[]}`, w.Body.String())
}

func TestMissingJournalEntriesReadAsEmpty(t *testing.T) {
	r := journalRouter(NewJournalHandler(&fakeJournal{}, &fakeCheckIn{}))

	w := do(r, http.MethodGet, "/api/reflections/2024-03-01", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"data":{"date":"2024-03-01","wentWell":"","toImprove":""}}`, w.Body.String())

	w = do(r, http.MethodGet, "/api/mood/2024-03-01", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"data":{"date":"2024-03-01"}}`, w.Body.String())
}

func TestCheckIn(t *testing.T) {
	body := `{"date":"2024-03-01","morning":3,"evening":4,"wentWell":"walked","toImprove":"sleep","personality":"comedian"}`
	saved := &coach.CheckInResult{
		Mood:        &journal.MoodEntry{Date: "2024-03-01", Morning: 3, Evening: 4},
		Reflection:  &journal.Reflection{Date: "2024-03-01", WentWell: "walked", ToImprove: "sleep"},
		Summary:     coach.DaySummary{CompletedHabits: []string{"Read"}, MissedHabits: []string{}, TotalHabits: 1},
		Personality: coach.Comedian,
	}

	t.Run("coached", func(t *testing.T) {
		result := *saved
		result.Message = "Nice work!"
		checkIn := &fakeCheckIn{result: &result}
		r := journalRouter(NewJournalHandler(&fakeJournal{}, checkIn))

		w := do(r, http.MethodPost, "/api/checkin", body)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "comedian", checkIn.got.Personality)
		assert.Equal(t, 4, checkIn.got.Evening)

		var got struct {
			Message    string `json:"message"`
			CoachError string `json:"coach_error"`
		}
		decodeData(t, w, &got)
		assert.Equal(t, "Nice work!", got.Message)
		assert.Empty(t, got.CoachError)
	})

	t.Run("coach failure keeps the saved records", func(t *testing.T) {
		result := *saved
		result.Message = "partial"
		result.CoachErr = fmt.Errorf("respond: %w", coach.ErrNotConfigured)
		r := journalRouter(NewJournalHandler(&fakeJournal{}, &fakeCheckIn{result: &result}))

		w := do(r, http.MethodPost, "/api/checkin", body)
		require.Equal(t, http.StatusOK, w.Code)
		var got struct {
			Mood       *journal.MoodEntry `json:"mood"`
			Message    string             `json:"message"`
			CoachError string             `json:"coach_error"`
		}
		decodeData(t, w, &got)
		require.NotNil(t, got.Mood)
		assert.Equal(t, 3, got.Mood.Morning)
		assert.Empty(t, got.Message)
		assert.Equal(t, "coach is not configured", got.CoachError)
	})

	t.Run("invalid input", func(t *testing.T) {
		checkIn := &fakeCheckIn{err: fmt.Errorf("%w: morning must be 1-5", journal.ErrInvalidInput)}
		r := journalRouter(NewJournalHandler(&fakeJournal{}, checkIn))

		w := do(r, http.MethodPost, "/api/checkin", body)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestCoachErrorMessage(t *testing.T) {
	assert.Empty(t, coachErrorMessage(nil))
	assert.Equal(t, "coach returned an empty message", coachErrorMessage(coach.ErrEmptyResponse))
	assert.Equal(t, "coach service is unavailable", coachErrorMessage(&coach.RemoteServiceError{StatusCode: 502}))
	assert.Equal(t, "coach could not be reached", coachErrorMessage(context.DeadlineExceeded))
}

type fakeSettings struct {
	settings.Service
	saved    settings.Input
	cleared  []string
	clearErr error
}

func (f *fakeSettings) Get(context.Context, string) (*settings.Settings, error) {
	return &settings.Settings{CoachPersonality: "motivator", MorningTime: "07:00", EveningTime: "21:00"}, nil
}

func (f *fakeSettings) Save(_ context.Context, userID string, in settings.Input) (*settings.Settings, error) {
	f.saved = in
	return &settings.Settings{
		UserID:           userID,
		CoachPersonality: in.CoachPersonality,
		RemindersEnabled: in.RemindersEnabled,
		MorningTime:      in.MorningTime,
		EveningTime:      in.EveningTime,
	}, nil
}

func (f *fakeSettings) ClearUserData(_ context.Context, userID string) error {
	f.cleared = append(f.cleared, userID)
	return f.clearErr
}

type fakePlanner struct {
	rebuilt []string
	plan    []reminders.Reminder
}

func (f *fakePlanner) RebuildUser(_ context.Context, userID string) error {
	f.rebuilt = append(f.rebuilt, userID)
	return nil
}

func (f *fakePlanner) Plan(context.Context, string) ([]reminders.Reminder, error) {
	return f.plan, nil
}

func TestSaveSettingsRebuildsReminders(t *testing.T) {
	svc := &fakeSettings{}
	planner := &fakePlanner{}
	h := NewSettingsHandler(svc, planner)
	r := gin.New()
	r.PUT("/api/settings", asUser("u1"), h.SaveSettings)

	w := do(r, http.MethodPut, "/api/settings",
		`{"coachPersonality":"drill-sergeant","remindersEnabled":true,"morningTime":"06:30","eveningTime":"22:00"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "06:30", svc.saved.MorningTime)
	assert.Equal(t, []string{"u1"}, planner.rebuilt)
	assert.Contains(t, w.Body.String(), `"coachPersonality":"drill-sergeant"`)
}

func TestPreviewReminders(t *testing.T) {
	planner := &fakePlanner{plan: []reminders.Reminder{{ID: "morning", Time: "07:00", Title: "Good morning"}}}

	r := gin.New()
	r.GET("/with", asUser("u1"), NewSettingsHandler(&fakeSettings{}, planner).PreviewReminders)
	r.GET("/without", asUser("u1"), NewSettingsHandler(&fakeSettings{}, nil).PreviewReminders)

	w := do(r, http.MethodGet, "/with", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"id":"morning"`)

	w = do(r, http.MethodGet, "/without", "")
	assert.JSONEq(t, `{"data":[]}`, w.Body.String())
}

func TestClearData(t *testing.T) {
	hab, jour, sett := newFakeHabits(), &fakeJournal{}, &fakeSettings{}
	planner := &fakePlanner{}
	h := NewUserHandler(planner, hab, jour, sett)
	r := gin.New()
	r.DELETE("/api/me/data", asUser("u1"), h.ClearData)
	r.GET("/api/me", asUser("u1"), h.GetMe)

	w := do(r, http.MethodDelete, "/api/me/data", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, []string{"u1"}, hab.cleared)
	assert.Equal(t, []string{"u1"}, jour.cleared)
	assert.Equal(t, []string{"u1"}, sett.cleared)
	assert.Equal(t, []string{"u1"}, planner.rebuilt)

	w = do(r, http.MethodGet, "/api/me", "")
	assert.Contains(t, w.Body.String(), `"userId":"u1"`)
}

func TestClearDataStopsOnFailure(t *testing.T) {
	hab, jour := newFakeHabits(), &fakeJournal{clearErr: errors.New("db down")}
	sett := &fakeSettings{}
	planner := &fakePlanner{}
	r := gin.New()
	r.DELETE("/api/me/data", asUser("u1"), NewUserHandler(planner, hab, jour, sett).ClearData)

	w := do(r, http.MethodDelete, "/api/me/data", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Empty(t, sett.cleared)
	assert.Empty(t, planner.rebuilt)
}
