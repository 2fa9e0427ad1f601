package biometrics

// Pace bounds in kg/week; roughly the 0.25 to 2 lb/week range.
const (
	minPaceKgPerWeek = 0.1
	maxPaceKgPerWeek = 0.9

	// 7700 kcal per kg of body fat, spread across a week.
	dailyKcalPerKgWeeklyPace = 7700.0 / 7
)

// TDEE scales BMR by the activity multiplier.
func TDEE(bmr float64, level ActivityLevel) (float64, error) {
	if !finite(bmr) || bmr < 0 {
		return 0, invalidf("bmr must be a finite non-negative number")
	}
	return checked(bmr*level.Multiplier(), "tdee")
}

type GoalPlan struct {
	PaceKgPerWeek      float64 `json:"pace_kg_per_week"`
	DailyCalorieTarget float64 `json:"daily_calorie_target"`
}

// PlanGoal turns a target weight and a duration into a weekly pace and a
// daily calorie target. The pace is clamped to a safe range; when the target
// is not below the current weight the plan is maintenance (pace 0, target = TDEE).
func PlanGoal(tdee, weightKg, targetWeightKg float64, weeks int) (GoalPlan, error) {
	if !finite(tdee) || tdee < 0 {
		return GoalPlan{}, invalidf("tdee must be a finite non-negative number")
	}
	if !finite(weightKg) || weightKg <= 0 {
		return GoalPlan{}, invalidf("weight must be positive")
	}
	if !finite(targetWeightKg) || targetWeightKg <= 0 {
		return GoalPlan{}, invalidf("target weight must be positive")
	}
	if weeks <= 0 {
		return GoalPlan{}, invalidf("goal duration must be at least one week")
	}

	delta := weightKg - targetWeightKg
	if delta <= 0 {
		return GoalPlan{PaceKgPerWeek: 0, DailyCalorieTarget: Round2(tdee)}, nil
	}

	pace := delta / float64(weeks)
	if pace > maxPaceKgPerWeek {
		pace = maxPaceKgPerWeek
	}
	if pace < minPaceKgPerWeek {
		pace = minPaceKgPerWeek
	}

	target := tdee - pace*dailyKcalPerKgWeeklyPace
	if target < 0 {
		target = 0
	}
	return GoalPlan{PaceKgPerWeek: Round2(pace), DailyCalorieTarget: Round2(target)}, nil
}
