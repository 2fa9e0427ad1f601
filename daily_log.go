package main

import (
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"lg/fitness-metrics-go-api/internal/biometrics"
	"lg/fitness-metrics-go-api/internal/store"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

const (
	defaultLogsLimit = 50
	maxLogsLimit     = 500
)

// exerciseCalories holds the standard burn of the exercises offered in the
// quick-pick list, used when an exercise entry is logged without calories.
var exerciseCalories = map[string]float64{
	"brisk walk":     150,
	"core exercises": 100,
	"yoga":           80,
	"stretching":     50,
	"jogging":        200,
	"cycling":        250,
	"swimming":       300,
}

// defaultExerciseCalories looks up a known exercise by name, case-insensitively.
func defaultExerciseCalories(name string) (float64, bool) {
	cal, ok := exerciseCalories[strings.ToLower(strings.TrimSpace(name))]
	return cal, ok
}

// normalizeLogType accepts "Meal"/"meal"/"Exercise"/"exercise".
func normalizeLogType(s string) (string, bool) {
	switch t := strings.ToLower(strings.TrimSpace(s)); t {
	case store.LogTypeMeal, store.LogTypeExercise:
		return t, true
	}
	return "", false
}

// createLogRequest is the body of POST /api/logs.
type createLogRequest struct {
	Type         string     `json:"type"`
	Content      string     `json:"content"`
	Satisfaction *int       `json:"satisfaction"`
	Calories     *float64   `json:"calories"`
	OccurredAt   *time.Time `json:"occurred_at"`
}

// weekDaySummary is one day of week-summary and progress responses.
type weekDaySummary struct {
	Date             store.DateOnly `json:"date"`
	Meals            int            `json:"meals"`
	Exercises        int            `json:"exercises"`
	CaloriesFood     float64        `json:"calories_food"`
	CaloriesExercise float64        `json:"calories_exercise"`
	NetCalories      float64        `json:"net_calories"`
	HasData          bool           `json:"has_data"`
}

func daySummaryFrom(row store.DayTotals) weekDaySummary {
	return weekDaySummary{
		Date:             row.Date,
		Meals:            row.Meals,
		Exercises:        row.Exercises,
		CaloriesFood:     row.CaloriesFood,
		CaloriesExercise: row.CaloriesExercise,
		NetCalories:      row.CaloriesFood - row.CaloriesExercise,
		HasData:          true,
	}
}

type progressStats struct {
	DaysTracked        int     `json:"days_tracked"`
	TotalMeals         int     `json:"total_meals"`
	AvgMealsPerDay     float64 `json:"avg_meals_per_day"`
	TotalCaloriesBurnt float64 `json:"total_calories_burnt"`
	AvgCaloriesBurnt   float64 `json:"avg_calories_burnt"`
	AvgCaloriesFood    float64 `json:"avg_calories_food"`
}

type progressResponse struct {
	Days  []weekDaySummary `json:"days"`
	Stats progressStats    `json:"stats"`
}

// mondayOf returns the Monday of t's week at midnight UTC. AddDate handles
// month and year boundaries.
func mondayOf(t time.Time) time.Time {
	t = t.UTC()
	weekday := int(t.Weekday()) // 0=Sun
	if weekday == 0 {
		weekday = 7 // Mon=1..Sun=7
	}
	return t.AddDate(0, 0, -(weekday - 1)).Truncate(24 * time.Hour)
}

func (h *Handler) currentMonday() time.Time {
	return mondayOf(h.now())
}

// listLogs returns the user's log entries, most recent first.
// GET /api/logs?type=meal|exercise&start=YYYY-MM-DD&end=YYYY-MM-DD&limit=N.
func (h *Handler) listLogs(c *gin.Context) {
	userID := c.GetInt("user_id")

	params := store.ListLogsParams{Limit: defaultLogsLimit}
	if t := c.Query("type"); t != "" {
		norm, ok := normalizeLogType(t)
		if !ok {
			apiError(c, http.StatusBadRequest, "type must be one of: meal, exercise")
			return
		}
		params.Type = norm
	}
	for _, q := range []struct {
		name string
		dst  *string
	}{{"start", &params.Start}, {"end", &params.End}} {
		v := c.Query(q.name)
		if v == "" {
			continue
		}
		if _, err := time.Parse(dateLayout, v); err != nil {
			apiError(c, http.StatusBadRequest, "invalid "+q.name+", expected YYYY-MM-DD")
			return
		}
		*q.dst = v
	}
	if s := c.Query("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 || n > maxLogsLimit {
			apiError(c, http.StatusBadRequest, "limit must be between 1 and 500")
			return
		}
		params.Limit = n
	}

	entries, err := h.store.ListLogs(c, userID, params)
	if err != nil {
		storeError(c, err, "logs")
		return
	}
	// Ensure empty array (not null) in JSON
	if entries == nil {
		entries = []store.LogEntry{}
	}
	c.JSON(http.StatusOK, entries)
}

// createLog inserts a meal or exercise entry. Exercise entries without
// calories take the standard value of a known exercise.
// POST /api/logs. occurred_at defaults to now.
func (h *Handler) createLog(c *gin.Context) {
	userID := c.GetInt("user_id")

	var body createLogRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	logType, ok := normalizeLogType(body.Type)
	if !ok {
		apiError(c, http.StatusBadRequest, "type must be one of: meal, exercise")
		return
	}
	content := strings.TrimSpace(body.Content)
	if content == "" {
		apiError(c, http.StatusBadRequest, "content is required")
		return
	}
	if body.Satisfaction != nil && (*body.Satisfaction < 1 || *body.Satisfaction > 10) {
		apiError(c, http.StatusBadRequest, "satisfaction must be between 1 and 10")
		return
	}

	var calories float64
	if body.Calories != nil {
		calories = *body.Calories
		if math.IsNaN(calories) || math.IsInf(calories, 0) || calories < 0 {
			apiError(c, http.StatusBadRequest, "calories must not be negative")
			return
		}
	}
	if logType == store.LogTypeExercise && calories == 0 {
		if std, ok := defaultExerciseCalories(content); ok {
			calories = std
		}
	}

	occurredAt := h.now()
	if body.OccurredAt != nil {
		occurredAt = *body.OccurredAt
	}

	entry, err := h.store.CreateLog(c, store.LogEntry{
		UserID:       userID,
		Type:         logType,
		Content:      content,
		Satisfaction: body.Satisfaction,
		Calories:     calories,
		Source:       store.SourceManual,
		OccurredAt:   occurredAt.UTC(),
	})
	if err != nil {
		log.Errorf("[createLog] user %d: %v", userID, err)
		apiError(c, http.StatusInternalServerError, "failed to create log entry")
		return
	}

	c.JSON(http.StatusCreated, entry)
}

// deleteLog removes a log entry. Returns 204 on success, 404 if not found.
// DELETE /api/logs/:id. Ownership is enforced by matching user_id as well.
func (h *Handler) deleteLog(c *gin.Context) {
	userID := c.GetInt("user_id")
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.store.DeleteLog(c, userID, id); err != nil {
		storeError(c, err, "log entry")
		return
	}
	c.Status(http.StatusNoContent)
}

// getWeekSummary returns per-day totals for the Mon–Sun week containing
// week_start. Days without entries are included with has_data=false.
// GET /api/logs/week-summary?week_start=YYYY-MM-DD (defaults to current week).
func (h *Handler) getWeekSummary(c *gin.Context) {
	userID := c.GetInt("user_id")

	weekStart := h.currentMonday()
	if s := c.Query("week_start"); s != "" {
		t, err := time.Parse(dateLayout, s)
		if err != nil {
			apiError(c, http.StatusBadRequest, "invalid week_start, expected YYYY-MM-DD")
			return
		}
		weekStart = mondayOf(t)
	}
	weekEnd := weekStart.AddDate(0, 0, 6)

	rows, err := h.store.DayTotals(c, userID, weekStart.Format(dateLayout), weekEnd.Format(dateLayout))
	if err != nil {
		storeError(c, err, "week data")
		return
	}

	rowByDate := make(map[string]store.DayTotals, len(rows))
	for _, r := range rows {
		rowByDate[r.Date.String()] = r
	}

	result := make([]weekDaySummary, 7)
	for i := range result {
		d := weekStart.AddDate(0, 0, i)
		if row, ok := rowByDate[d.Format(dateLayout)]; ok {
			result[i] = daySummaryFrom(row)
			continue
		}
		result[i] = weekDaySummary{Date: store.DateOnly{Time: d}}
	}

	c.JSON(http.StatusOK, result)
}

// getProgress returns per-day totals and aggregate stats for a date range,
// the data behind the meals-per-day and calories-burnt charts.
// GET /api/logs/progress?start=YYYY-MM-DD&end=YYYY-MM-DD. Only days with
// entries are returned; the client fills gaps.
func (h *Handler) getProgress(c *gin.Context) {
	userID := c.GetInt("user_id")
	start, end, ok := dateRange(c)
	if !ok {
		return
	}

	rows, err := h.store.DayTotals(c, userID, start, end)
	if err != nil {
		storeError(c, err, "progress data")
		return
	}

	days := make([]weekDaySummary, 0, len(rows))
	var stats progressStats
	var totalFood float64
	for _, row := range rows {
		days = append(days, daySummaryFrom(row))
		stats.DaysTracked++
		stats.TotalMeals += row.Meals
		stats.TotalCaloriesBurnt += row.CaloriesExercise
		totalFood += row.CaloriesFood
	}
	if stats.DaysTracked > 0 {
		n := float64(stats.DaysTracked)
		stats.AvgMealsPerDay = biometrics.Round2(float64(stats.TotalMeals) / n)
		stats.AvgCaloriesBurnt = biometrics.Round2(stats.TotalCaloriesBurnt / n)
		stats.AvgCaloriesFood = biometrics.Round2(totalFood / n)
	}

	c.JSON(http.StatusOK, progressResponse{Days: days, Stats: stats})
}

// getEarliestLogDate returns { "date": "YYYY-MM-DD" } or { "date": null }.
// GET /api/logs/earliest-date. Used by the client for the "All Time" range.
func (h *Handler) getEarliestLogDate(c *gin.Context) {
	userID := c.GetInt("user_id")

	date, err := h.store.EarliestLogDate(c, userID)
	if err != nil {
		storeError(c, err, "earliest date")
		return
	}
	c.JSON(http.StatusOK, gin.H{"date": date})
}
