package main

import (
	"net/http"
	"time"

	"lg/fitness-metrics-go-api/internal/store"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

const maxWeightKG = 700.0

func validWeight(kg float64) bool {
	return kg > 0 && kg <= maxWeightKG
}

// getWeightLog returns weight entries for the authenticated user within [start, end].
// GET /api/weight-log?start=YYYY-MM-DD&end=YYYY-MM-DD. Both params required.
// Returns an empty array (not null) if no entries exist in the range.
func (h *Handler) getWeightLog(c *gin.Context) {
	userID := c.GetInt("user_id")
	start, end, ok := dateRange(c)
	if !ok {
		return
	}

	entries, err := h.store.ListWeights(c, userID, start, end)
	if err != nil {
		storeError(c, err, "weight log")
		return
	}
	if entries == nil {
		entries = []store.WeightEntry{}
	}

	c.JSON(http.StatusOK, entries)
}

// upsertWeightEntry creates or updates the weight entry for the given date.
// POST /api/weight-log. Body: { "date"?: "YYYY-MM-DD", "weight_kg": 80.5 }.
// The date defaults to today; today's weight also becomes the profile weight
// and the derived metrics are recomputed from it.
func (h *Handler) upsertWeightEntry(c *gin.Context) {
	userID := c.GetInt("user_id")

	var body struct {
		Date     string  `json:"date"`
		WeightKG float64 `json:"weight_kg"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Date == "" {
		body.Date = h.today()
	}
	if _, err := time.Parse(dateLayout, body.Date); err != nil {
		apiError(c, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}
	if !validWeight(body.WeightKG) {
		apiError(c, http.StatusBadRequest, "weight_kg must be between 0 and 700")
		return
	}

	entry, err := h.store.UpsertWeight(c, userID, body.Date, body.WeightKG)
	if err != nil {
		log.Errorf("[upsertWeightEntry] user %d: %v", userID, err)
		apiError(c, http.StatusInternalServerError, "failed to upsert weight entry")
		return
	}

	if body.Date == h.today() {
		if err := h.refreshWeight(c, userID, body.WeightKG); err != nil {
			log.Warnf("[upsertWeightEntry] refresh profile for user %d: %v", userID, err)
		}
	}

	c.JSON(http.StatusCreated, entry)
}

// updateWeightEntry partially updates an existing weight entry.
// PUT /api/weight-log/:id. Body: { "date"?, "weight_kg"? }; omitted fields keep their values.
func (h *Handler) updateWeightEntry(c *gin.Context) {
	userID := c.GetInt("user_id")
	id, ok := pathID(c)
	if !ok {
		return
	}

	var body struct {
		Date     *string  `json:"date"`
		WeightKG *float64 `json:"weight_kg"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Date != nil {
		if _, err := time.Parse(dateLayout, *body.Date); err != nil {
			apiError(c, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
			return
		}
	}
	if body.WeightKG != nil && !validWeight(*body.WeightKG) {
		apiError(c, http.StatusBadRequest, "weight_kg must be between 0 and 700")
		return
	}

	entry, err := h.store.UpdateWeight(c, userID, id, body.Date, body.WeightKG)
	if err != nil {
		storeError(c, err, "weight entry")
		return
	}

	if entry.Date.String() == h.today() {
		if err := h.refreshWeight(c, userID, entry.WeightKG); err != nil {
			log.Warnf("[updateWeightEntry] refresh profile for user %d: %v", userID, err)
		}
	}

	c.JSON(http.StatusOK, entry)
}

// deleteWeightEntry removes a weight log entry by ID.
// DELETE /api/weight-log/:id. Returns 204 on success, 404 if not found.
func (h *Handler) deleteWeightEntry(c *gin.Context) {
	userID := c.GetInt("user_id")
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.store.DeleteWeight(c, userID, id); err != nil {
		storeError(c, err, "weight entry")
		return
	}
	c.Status(http.StatusNoContent)
}
