package store

import (
	"time"

	"lg/fitness-metrics-go-api/internal/biometrics"

	"github.com/jackc/pgx/v5/pgtype"
)

const dateLayout = "2006-01-02"

// DateOnly wraps time.Time to serialize as "YYYY-MM-DD" in JSON.
type DateOnly struct{ time.Time }

func (d DateOnly) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Time.Format(dateLayout) + `"`), nil
}

func (d *DateOnly) UnmarshalJSON(b []byte) error {
	t, err := time.Parse(`"`+dateLayout+`"`, string(b))
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// ScanDate implements pgtype.DateScanner so pgx can scan PostgreSQL date
// columns (OID 1082) into DateOnly. NULL values zero the time.
func (d *DateOnly) ScanDate(v pgtype.Date) error {
	if !v.Valid {
		d.Time = time.Time{}
		return nil
	}
	d.Time = v.Time
	return nil
}

func (d DateOnly) String() string {
	return d.Time.Format(dateLayout)
}

/* ─── Domain structs ─────────────────────────────────────────────────── */

// User maps to the users table. AuthToken and Password are hidden from JSON responses.
type User struct {
	ID        int        `json:"id" db:"id"`
	Username  string     `json:"username" db:"username"`
	Email     string     `json:"email" db:"email"`
	AuthToken string     `json:"-" db:"auth_token"`
	Password  string     `json:"-" db:"password"`
	CreatedAt *time.Time `json:"created_at" db:"created_at"`
}

// Profile maps to the profiles table: one row per user holding the biometric
// inputs, goal, and the metrics derived from exactly those inputs. The
// derived columns are only ever written together with the inputs.
type Profile struct {
	UserID            int      `json:"user_id"             db:"user_id"`
	Name              string   `json:"name"                db:"name"`
	AgeYears          int      `json:"age_years"           db:"age_years"`
	Gender            string   `json:"gender"              db:"gender"`
	HeightCM          float64  `json:"height_cm"           db:"height_cm"`
	WeightKG          float64  `json:"weight_kg"           db:"weight_kg"`
	NeckCM            *float64 `json:"neck_cm"             db:"neck_cm"`
	WaistCM           *float64 `json:"waist_cm"            db:"waist_cm"`
	HipCM             *float64 `json:"hip_cm"              db:"hip_cm"`
	ActivityLevel     string   `json:"activity_level"      db:"activity_level"`
	Goal              string   `json:"goal"                db:"goal"`
	TargetWeightKG    float64  `json:"target_weight_kg"    db:"target_weight_kg"`
	GoalDurationWeeks int      `json:"goal_duration_weeks" db:"goal_duration_weeks"`

	BMI            float64    `json:"bmi"              db:"bmi"`
	BMR            float64    `json:"bmr"              db:"bmr"`
	BodyFatPct     float64    `json:"body_fat_pct"     db:"body_fat_pct"`
	BMRFormula     string     `json:"bmr_formula"      db:"bmr_formula"`
	BodyFatFormula string     `json:"body_fat_formula" db:"body_fat_formula"`
	UpdatedAt      *time.Time `json:"updated_at"       db:"updated_at"`

	// Computed on read; db:"-" tells RowToStructByName to skip these.
	BMICategory string               `json:"bmi_category,omitempty" db:"-"`
	TDEE        *float64             `json:"tdee,omitempty"         db:"-"`
	AvgBurn     *float64             `json:"avg_burn,omitempty"     db:"-"`
	GoalPlan    *biometrics.GoalPlan `json:"goal_plan,omitempty"    db:"-"`
}

// Biometrics converts the stored inputs into a metrics snapshot. Missing
// circumferences become zero.
func (p Profile) Biometrics() (biometrics.Profile, error) {
	gender, err := biometrics.ParseGender(p.Gender)
	if err != nil {
		return biometrics.Profile{}, err
	}
	return biometrics.Profile{
		WeightKg: p.WeightKG,
		HeightCm: p.HeightCM,
		AgeYears: p.AgeYears,
		Gender:   gender,
		NeckCm:   deref(p.NeckCM),
		WaistCm:  deref(p.WaistCM),
		HipCm:    deref(p.HipCM),
	}, nil
}

// Formulas returns the variants the stored metrics were computed with.
func (p Profile) Formulas() biometrics.Formulas {
	return biometrics.Formulas{
		BMR:     biometrics.BMRFormula(p.BMRFormula),
		BodyFat: biometrics.BodyFatFormula(p.BodyFatFormula),
	}.Normalized()
}

// SetMetrics replaces all derived columns at once.
func (p *Profile) SetMetrics(m biometrics.DerivedMetrics, f biometrics.Formulas) {
	f = f.Normalized()
	p.BMI = m.BMI
	p.BMR = m.BMR
	p.BodyFatPct = m.BodyFatPct
	p.BMRFormula = string(f.BMR)
	p.BodyFatFormula = string(f.BodyFat)
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

// Log types. Calories of exercise entries are burned, of meal entries eaten.
const (
	LogTypeMeal     = "meal"
	LogTypeExercise = "exercise"
)

// Log sources.
const (
	SourceManual = "manual"
	SourceFIT    = "fit"
)

// LogEntry maps to the logs table. Date is the calendar day of OccurredAt and
// is stored separately so per-day grouping is a plain GROUP BY.
type LogEntry struct {
	ID           int       `json:"id"           db:"id"`
	UserID       int       `json:"user_id"      db:"user_id"`
	Date         DateOnly  `json:"date"         db:"date"`
	Type         string    `json:"type"         db:"type"`
	Content      string    `json:"content"      db:"content"`
	Satisfaction *int      `json:"satisfaction" db:"satisfaction"`
	Calories     float64   `json:"calories"     db:"calories"`
	Source       string    `json:"source"       db:"source"`
	OccurredAt   time.Time `json:"occurred_at"  db:"occurred_at"`
}

// Sample converts an exercise entry for the burn estimator.
func (e LogEntry) Sample() biometrics.ExerciseLogSample {
	return biometrics.ExerciseLogSample{Calories: e.Calories, OccurredAt: e.OccurredAt}
}

// DayTotals is the shape of each row returned by the per-day GROUP BY query.
type DayTotals struct {
	Date             DateOnly `db:"date"`
	Meals            int      `db:"meals"`
	Exercises        int      `db:"exercises"`
	CaloriesFood     float64  `db:"calories_food"`
	CaloriesExercise float64  `db:"calories_exercise"`
}

// WeightEntry maps to weight_log, one row per user and day.
type WeightEntry struct {
	ID        int        `json:"id"         db:"id"`
	UserID    int        `json:"user_id"    db:"user_id"`
	Date      DateOnly   `json:"date"       db:"date"`
	WeightKG  float64    `json:"weight_kg"  db:"weight_kg"`
	CreatedAt *time.Time `json:"created_at" db:"created_at"`
}
