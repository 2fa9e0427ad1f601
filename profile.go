package main

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"lg/fitness-metrics-go-api/internal/biometrics"
	"lg/fitness-metrics-go-api/internal/metrics"
	"lg/fitness-metrics-go-api/internal/store"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

const (
	defaultGoalWeeks        = 12
	defaultTargetWeightDrop = 5.0 // kg below current weight
)

// profileRequest is the body of PUT /api/profile and POST /api/metrics/compute.
// Circumferences are optional; nil means "not measured".
type profileRequest struct {
	Name              string   `json:"name"`
	AgeYears          int      `json:"age_years"`
	Gender            string   `json:"gender"`
	HeightCM          float64  `json:"height_cm"`
	WeightKG          float64  `json:"weight_kg"`
	NeckCM            *float64 `json:"neck_cm"`
	WaistCM           *float64 `json:"waist_cm"`
	HipCM             *float64 `json:"hip_cm"`
	ActivityLevel     string   `json:"activity_level"`
	Goal              string   `json:"goal"`
	TargetWeightKG    *float64 `json:"target_weight_kg"`
	GoalDurationWeeks *int     `json:"goal_duration_weeks"`
	BMRFormula        string   `json:"bmr_formula"`
	BodyFatFormula    string   `json:"body_fat_formula"`
}

func valueOr(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

// snapshot parses the request into a metrics input and the formula pair to
// use, falling back to defaults for formulas the request does not name.
func (r profileRequest) snapshot(defaults biometrics.Formulas) (biometrics.Profile, biometrics.Formulas, error) {
	gender, err := biometrics.ParseGender(r.Gender)
	if err != nil {
		return biometrics.Profile{}, biometrics.Formulas{}, err
	}
	f := defaults
	if r.BMRFormula != "" {
		if f.BMR, err = biometrics.ParseBMRFormula(r.BMRFormula); err != nil {
			return biometrics.Profile{}, f, err
		}
	}
	if r.BodyFatFormula != "" {
		if f.BodyFat, err = biometrics.ParseBodyFatFormula(r.BodyFatFormula); err != nil {
			return biometrics.Profile{}, f, err
		}
	}
	return biometrics.Profile{
		WeightKg: r.WeightKG,
		HeightCm: r.HeightCM,
		AgeYears: r.AgeYears,
		Gender:   gender,
		NeckCm:   valueOr(r.NeckCM),
		WaistCm:  valueOr(r.WaistCM),
		HipCm:    valueOr(r.HipCM),
	}, f.Normalized(), nil
}

// computeAndCount runs the engine and bumps the per-formula counter on success.
func (h *Handler) computeAndCount(p biometrics.Profile, f biometrics.Formulas) (biometrics.DerivedMetrics, error) {
	m, err := biometrics.Compute(p, f)
	if err != nil {
		return m, err
	}
	h.metrics.CounterMetricsComputed.WithLabelValues(string(f.BMR), string(f.BodyFat)).Inc()
	return m, nil
}

// getProfile returns the stored profile with derived metrics and the values
// computed on read (BMI category, TDEE, average burn, goal plan).
// GET /api/profile.
func (h *Handler) getProfile(c *gin.Context) {
	userID := c.GetInt("user_id")

	p, err := h.store.GetProfile(c, userID)
	if err != nil {
		storeError(c, err, "profile")
		return
	}
	h.populateComputed(c, &p)

	c.JSON(http.StatusOK, p)
}

// putProfile validates the full profile, computes its metrics and stores
// inputs and metrics together. Today's weight is also recorded in weight_log.
// PUT /api/profile.
func (h *Handler) putProfile(c *gin.Context) {
	userID := c.GetInt("user_id")

	var body profileRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.ActivityLevel == "" {
		apiError(c, http.StatusBadRequest, "activity_level is required")
		return
	}
	level, err := biometrics.ParseActivityLevel(body.ActivityLevel)
	if err != nil {
		h.invalidInput(c, "profile", err)
		return
	}

	snap, formulas, err := body.snapshot(h.formulas)
	if err != nil {
		h.invalidInput(c, "profile", err)
		return
	}
	derived, err := h.computeAndCount(snap, formulas)
	if err != nil {
		if !h.invalidInput(c, "profile", err) {
			apiError(c, http.StatusInternalServerError, "failed to compute metrics")
		}
		return
	}

	if !validWeight(body.WeightKG) {
		apiError(c, http.StatusBadRequest, "weight_kg must be between 0 and 700")
		return
	}

	target := body.WeightKG - defaultTargetWeightDrop
	if body.TargetWeightKG != nil {
		target = *body.TargetWeightKG
	}
	if target <= 0 {
		apiError(c, http.StatusBadRequest, "target weight must be positive")
		return
	}
	weeks := defaultGoalWeeks
	if body.GoalDurationWeeks != nil {
		weeks = *body.GoalDurationWeeks
	}
	if weeks <= 0 {
		apiError(c, http.StatusBadRequest, "goal duration must be at least one week")
		return
	}

	p := store.Profile{
		UserID:            userID,
		Name:              strings.TrimSpace(body.Name),
		AgeYears:          body.AgeYears,
		Gender:            string(snap.Gender),
		HeightCM:          body.HeightCM,
		WeightKG:          body.WeightKG,
		NeckCM:            body.NeckCM,
		WaistCM:           body.WaistCM,
		HipCM:             body.HipCM,
		ActivityLevel:     string(level),
		Goal:              strings.TrimSpace(body.Goal),
		TargetWeightKG:    target,
		GoalDurationWeeks: weeks,
	}
	p.SetMetrics(derived, formulas)

	saved, err := h.store.SaveProfile(c, p)
	if err != nil {
		log.Errorf("[putProfile] save for user %d: %v", userID, err)
		apiError(c, http.StatusInternalServerError, "failed to save profile")
		return
	}
	if _, err := h.store.UpsertWeight(c, userID, h.today(), body.WeightKG); err != nil {
		log.Warnf("[putProfile] record weight for user %d: %v", userID, err)
	}

	h.populateComputed(c, &saved)
	c.JSON(http.StatusOK, saved)
}

// refreshWeight applies a new weight to the stored profile and recomputes its
// metrics with the formulas the profile already uses. No profile is not an error.
func (h *Handler) refreshWeight(ctx context.Context, userID int, weightKG float64) error {
	p, err := h.store.GetProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return err
	}
	p.WeightKG = weightKG
	snap, err := p.Biometrics()
	if err != nil {
		return err
	}
	f := p.Formulas()
	derived, err := h.computeAndCount(snap, f)
	if err != nil {
		return err
	}
	p.SetMetrics(derived, f)
	_, err = h.store.SaveProfile(ctx, p)
	return err
}

// populateComputed fills the read-only fields of p. Failures only leave the
// corresponding field empty.
func (h *Handler) populateComputed(ctx context.Context, p *store.Profile) {
	p.BMICategory = biometrics.BMICategory(p.BMI)

	level := biometrics.ActivityLevel(p.ActivityLevel)
	tdee, err := biometrics.TDEE(p.BMR, level)
	if err != nil {
		log.Warnf("[populateComputed] tdee for user %d: %v", p.UserID, err)
		return
	}
	p.TDEE = &tdee

	if avg, _, err := h.averageBurn(ctx, p.UserID, p.BMR, level); err == nil {
		p.AvgBurn = &avg
	} else {
		log.Warnf("[populateComputed] burn for user %d: %v", p.UserID, err)
	}

	plan, err := biometrics.PlanGoal(tdee, p.WeightKG, p.TargetWeightKG, p.GoalDurationWeeks)
	if err != nil {
		log.Warnf("[populateComputed] goal plan for user %d: %v", p.UserID, err)
		return
	}
	p.GoalPlan = &plan
}

// averageBurn estimates from the most recent exercise logs, reporting which
// source the estimate came from.
func (h *Handler) averageBurn(ctx context.Context, userID int, bmr float64, level biometrics.ActivityLevel) (float64, string, error) {
	logs, err := h.store.ListLogs(ctx, userID, store.ListLogsParams{
		Type:  store.LogTypeExercise,
		Limit: biometrics.MaxBurnSamples,
	})
	if err != nil {
		return 0, "", err
	}
	samples := make([]biometrics.ExerciseLogSample, len(logs))
	for i, e := range logs {
		samples[i] = e.Sample()
	}

	source := metrics.BurnSourceHistory
	if len(samples) == 0 {
		source = metrics.BurnSourceActivity
	}
	avg, err := biometrics.EstimateAverageBurn(samples, bmr, level)
	if err != nil {
		return 0, source, err
	}
	h.metrics.CounterBurnEstimates.WithLabelValues(source).Inc()
	return avg, source, nil
}

// computeMetrics is the stateless calculator: same validation as putProfile,
// nothing is stored. POST /api/metrics/compute.
func (h *Handler) computeMetrics(c *gin.Context) {
	var body profileRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	snap, formulas, err := body.snapshot(h.formulas)
	if err != nil {
		h.invalidInput(c, "compute", err)
		return
	}
	derived, err := h.computeAndCount(snap, formulas)
	if err != nil {
		if !h.invalidInput(c, "compute", err) {
			apiError(c, http.StatusInternalServerError, "failed to compute metrics")
		}
		return
	}

	resp := gin.H{
		"bmi":              derived.BMI,
		"bmr":              derived.BMR,
		"body_fat_pct":     derived.BodyFatPct,
		"bmi_category":     biometrics.BMICategory(derived.BMI),
		"bmr_formula":      formulas.BMR,
		"body_fat_formula": formulas.BodyFat,
	}
	if body.ActivityLevel != "" {
		level, err := biometrics.ParseActivityLevel(body.ActivityLevel)
		if err != nil {
			h.invalidInput(c, "compute", err)
			return
		}
		if tdee, err := biometrics.TDEE(derived.BMR, level); err == nil {
			resp["tdee"] = tdee
		}
	}
	c.JSON(http.StatusOK, resp)
}

// getBurnEstimate returns the average daily exercise burn for the stored
// profile. GET /api/metrics/burn.
func (h *Handler) getBurnEstimate(c *gin.Context) {
	userID := c.GetInt("user_id")

	p, err := h.store.GetProfile(c, userID)
	if err != nil {
		storeError(c, err, "profile")
		return
	}
	level := biometrics.ActivityLevel(p.ActivityLevel)
	avg, source, err := h.averageBurn(c, userID, p.BMR, level)
	if err != nil {
		if !h.invalidInput(c, "burn", err) {
			log.Errorf("[getBurnEstimate] user %d: %v", userID, err)
			apiError(c, http.StatusInternalServerError, "failed to estimate burn")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"avg_burn":       avg,
		"source":         source,
		"activity_level": level,
		"multiplier":     level.Multiplier(),
		"bmr":            p.BMR,
	})
}
