package main

import (
	"context"
	"net/http"
	"testing"
	"time"

	"lg/fitness-metrics-go-api/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMondayOf(t *testing.T) {
	cases := map[string]string{
		"2026-03-02": "2026-03-02", // Monday
		"2026-03-04": "2026-03-02",
		"2026-03-08": "2026-03-02", // Sunday belongs to the week before
		"2026-01-01": "2025-12-29", // across a year boundary
	}
	for in, want := range cases {
		d, err := time.Parse(dateLayout, in)
		require.NoError(t, err)
		got := mondayOf(d.Add(15 * time.Hour))
		assert.Equal(t, want, got.Format(dateLayout), in)
		assert.Equal(t, time.Monday, got.Weekday())
		assert.Equal(t, time.UTC, got.Location())
		assert.Zero(t, got.Hour()+got.Minute()+got.Second()+got.Nanosecond())
	}
}

func TestCreateLog(t *testing.T) {
	env := newTestEnv(t)

	t.Run("known exercise without calories", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/logs", `{"type":"Exercise","content":"Yoga"}`)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		e := decode[store.LogEntry](t, w)
		assert.Equal(t, store.LogTypeExercise, e.Type)
		assert.Equal(t, 80.0, e.Calories)
		assert.Equal(t, store.SourceManual, e.Source)
		assert.Equal(t, "2026-03-04", e.Date.String())
		assert.True(t, e.OccurredAt.Equal(fixedNow))
	})

	t.Run("explicit calories win", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/logs", `{"type":"exercise","content":"swimming","calories":420}`)
		require.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, 420.0, decode[store.LogEntry](t, w).Calories)
	})

	t.Run("unknown exercise keeps zero", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/logs", `{"type":"exercise","content":"Curling"}`)
		require.Equal(t, http.StatusCreated, w.Code)
		assert.Zero(t, decode[store.LogEntry](t, w).Calories)
	})

	t.Run("meal with satisfaction and time", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/logs",
			`{"type":"Meal","content":"Oatmeal","satisfaction":8,"calories":350,"occurred_at":"2026-03-03T07:30:00Z"}`)
		require.Equal(t, http.StatusCreated, w.Code)
		e := decode[store.LogEntry](t, w)
		require.NotNil(t, e.Satisfaction)
		assert.Equal(t, 8, *e.Satisfaction)
		assert.Equal(t, "2026-03-03", e.Date.String())
	})

	for name, tc := range map[string]struct{ body, want string }{
		"bad type":      {`{"type":"snack","content":"chips"}`, "type must be one of: meal, exercise"},
		"empty content": {`{"type":"meal","content":"  "}`, "content is required"},
		"satisfaction":  {`{"type":"meal","content":"soup","satisfaction":11}`, "satisfaction must be between 1 and 10"},
		"negative":      {`{"type":"meal","content":"soup","calories":-5}`, "calories must not be negative"},
		"malformed":     {`{"type":`, "invalid request body"},
	} {
		t.Run(name, func(t *testing.T) {
			w := env.do(t, http.MethodPost, "/api/logs", tc.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tc.want, errorMessage(t, w))
		})
	}
}

func seedLogs(t *testing.T, env *testEnv) []store.LogEntry {
	t.Helper()
	entries := []store.LogEntry{
		{Type: store.LogTypeMeal, Content: "eggs", Calories: 300, OccurredAt: time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)},
		{Type: store.LogTypeExercise, Content: "Jogging", Calories: 200, OccurredAt: time.Date(2026, 3, 2, 18, 0, 0, 0, time.UTC)},
		{Type: store.LogTypeMeal, Content: "soup", Calories: 400, OccurredAt: time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)},
		{Type: store.LogTypeMeal, Content: "pasta", Calories: 700, OccurredAt: time.Date(2026, 3, 4, 19, 0, 0, 0, time.UTC)},
		{Type: store.LogTypeExercise, Content: "Cycling", Calories: 250, OccurredAt: time.Date(2026, 3, 4, 7, 0, 0, 0, time.UTC)},
		{Type: store.LogTypeMeal, Content: "old", Calories: 500, OccurredAt: time.Date(2026, 2, 20, 12, 0, 0, 0, time.UTC)},
	}
	out := make([]store.LogEntry, 0, len(entries))
	for _, e := range entries {
		e.UserID = env.userID
		e.Source = store.SourceManual
		created, err := env.store.CreateLog(context.Background(), e)
		require.NoError(t, err)
		out = append(out, created)
	}
	return out
}

func TestListLogs(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/logs", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	seedLogs(t, env)

	w = env.do(t, http.MethodGet, "/api/logs?type=Exercise", nil)
	require.Equal(t, http.StatusOK, w.Code)
	ex := decode[[]store.LogEntry](t, w)
	require.Len(t, ex, 2)
	assert.Equal(t, "Cycling", ex[0].Content)

	w = env.do(t, http.MethodGet, "/api/logs?start=2026-03-04&end=2026-03-04&limit=2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	day := decode[[]store.LogEntry](t, w)
	require.Len(t, day, 2)
	assert.Equal(t, "pasta", day[0].Content)
	assert.Equal(t, "soup", day[1].Content)

	for _, q := range []string{"?limit=0", "?limit=501", "?type=snack", "?start=yesterday"} {
		assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/api/logs"+q, nil).Code, q)
	}
}

func TestDeleteLog(t *testing.T) {
	env := newTestEnv(t)
	logs := seedLogs(t, env)
	path := "/api/logs/" + itoa(logs[0].ID)

	assert.Equal(t, http.StatusNoContent, env.do(t, http.MethodDelete, path, nil).Code)
	w := env.do(t, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "log entry not found", errorMessage(t, w))
}

func TestGetWeekSummary(t *testing.T) {
	env := newTestEnv(t)
	seedLogs(t, env)

	for _, path := range []string{"/api/logs/week-summary", "/api/logs/week-summary?week_start=2026-03-08"} {
		w := env.do(t, http.MethodGet, path, nil)
		require.Equal(t, http.StatusOK, w.Code, path)
		days := decode[[]weekDaySummary](t, w)
		require.Len(t, days, 7)

		assert.Equal(t, "2026-03-02", days[0].Date.String())
		assert.Equal(t, "2026-03-08", days[6].Date.String())

		assert.True(t, days[0].HasData)
		assert.Equal(t, 1, days[0].Meals)
		assert.Equal(t, 200.0, days[0].CaloriesExercise)
		assert.Equal(t, 100.0, days[0].NetCalories)

		assert.False(t, days[1].HasData)
		assert.Zero(t, days[1].Meals)

		assert.Equal(t, 2, days[2].Meals)
		assert.Equal(t, 1, days[2].Exercises)
		assert.Equal(t, 1100.0, days[2].CaloriesFood)
		assert.Equal(t, 850.0, days[2].NetCalories)
	}

	w := env.do(t, http.MethodGet, "/api/logs/week-summary?week_start=03/02/2026", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetProgress(t *testing.T) {
	env := newTestEnv(t)
	seedLogs(t, env)

	w := env.do(t, http.MethodGet, "/api/logs/progress?start=2026-03-01&end=2026-03-31", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[progressResponse](t, w)

	require.Len(t, resp.Days, 2)
	assert.Equal(t, 2, resp.Stats.DaysTracked)
	assert.Equal(t, 3, resp.Stats.TotalMeals)
	assert.Equal(t, 1.5, resp.Stats.AvgMealsPerDay)
	assert.Equal(t, 450.0, resp.Stats.TotalCaloriesBurnt)
	assert.Equal(t, 225.0, resp.Stats.AvgCaloriesBurnt)
	assert.Equal(t, 700.0, resp.Stats.AvgCaloriesFood)

	for _, q := range []string{"", "?start=2026-03-01", "?start=2026-03-10&end=2026-03-01", "?start=x&end=2026-03-01"} {
		assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/api/logs/progress"+q, nil).Code, q)
	}
}

func TestGetEarliestLogDate(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/logs/earliest-date", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"date":null}`, w.Body.String())

	seedLogs(t, env)
	w = env.do(t, http.MethodGet, "/api/logs/earliest-date", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"date":"2026-02-20"}`, w.Body.String())
}
