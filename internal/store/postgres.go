package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

type pgStore struct {
	pool *pgxpool.Pool
}

// Stat exposes pool statistics for the Prometheus pool collector.
func (s *pgStore) Stat() *pgxpool.Stat {
	return s.pool.Stat()
}

// NewPostgres creates a connection pool. A pool (not a single conn) survives
// hosted Postgres closing idle connections.
func NewPostgres(ctx context.Context, dbURL string) (Store, error) {
	config, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return nil, fmt.Errorf("parse db url: %w", err)
	}
	// Simple protocol avoids "cached plan must not change result type" errors
	// after migrations alter a table.
	config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol
	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	log.Debugln("postgres pool ready")
	return &pgStore{pool: pool}, nil
}

/* ─── Query helpers ───────────────────────────────────────────────────── */

// queryOne runs a query and scans the first row into T using RowToStructByName.
// Logs query and scan errors (e.g. struct/column mismatches); no rows maps to ErrNotFound.
func queryOne[T any](ctx context.Context, pool *pgxpool.Pool, sql string, args pgx.NamedArgs) (T, error) {
	rows, err := pool.Query(ctx, sql, args)
	if err != nil {
		log.Errorf("[queryOne] query error: %v", err)
		var zero T
		return zero, err
	}
	result, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[T])
	if errors.Is(err, pgx.ErrNoRows) {
		return result, ErrNotFound
	}
	if err != nil {
		log.Errorf("[queryOne] scan error: %v", err)
	}
	return result, err
}

// queryMany runs a query and scans all rows into []T using RowToStructByName.
func queryMany[T any](ctx context.Context, pool *pgxpool.Pool, sql string, args pgx.NamedArgs) ([]T, error) {
	rows, err := pool.Query(ctx, sql, args)
	if err != nil {
		log.Errorf("[queryMany] query error: %v", err)
		return nil, err
	}
	results, err := pgx.CollectRows(rows, pgx.RowToStructByName[T])
	if err != nil {
		log.Errorf("[queryMany] scan error: %v", err)
	}
	return results, err
}

func (s *pgStore) execOwned(ctx context.Context, sql string, userID, id int) error {
	result, err := s.pool.Exec(ctx, sql, pgx.NamedArgs{"id": id, "userID": userID})
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

/* ─── Users ───────────────────────────────────────────────────────────── */

func (s *pgStore) CreateUser(ctx context.Context, u User) (User, error) {
	return queryOne[User](ctx, s.pool,
		`INSERT INTO users (username, email, password, auth_token)
		 VALUES (@username, @email, @password, @authToken)
		 RETURNING *`,
		pgx.NamedArgs{"username": u.Username, "email": u.Email, "password": u.Password, "authToken": u.AuthToken})
}

func (s *pgStore) UserByUsername(ctx context.Context, username string) (User, error) {
	return queryOne[User](ctx, s.pool,
		"SELECT * FROM users WHERE username = @username",
		pgx.NamedArgs{"username": username})
}

func (s *pgStore) UserIDByToken(ctx context.Context, token string) (int, error) {
	var userID int
	err := s.pool.QueryRow(ctx, "SELECT id FROM users WHERE auth_token = $1", token).Scan(&userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrNotFound
	}
	return userID, err
}

/* ─── Profiles ────────────────────────────────────────────────────────── */

func (s *pgStore) GetProfile(ctx context.Context, userID int) (Profile, error) {
	return queryOne[Profile](ctx, s.pool,
		"SELECT * FROM profiles WHERE user_id = @userID",
		pgx.NamedArgs{"userID": userID})
}

func (s *pgStore) SaveProfile(ctx context.Context, p Profile) (Profile, error) {
	return queryOne[Profile](ctx, s.pool,
		`INSERT INTO profiles (user_id, name, age_years, gender, height_cm, weight_kg,
			neck_cm, waist_cm, hip_cm, activity_level, goal, target_weight_kg,
			goal_duration_weeks, bmi, bmr, body_fat_pct, bmr_formula, body_fat_formula)
		 VALUES (@userID, @name, @ageYears, @gender, @heightCM, @weightKG,
			@neckCM, @waistCM, @hipCM, @activityLevel, @goal, @targetWeightKG,
			@goalDurationWeeks, @bmi, @bmr, @bodyFatPct, @bmrFormula, @bodyFatFormula)
		 ON CONFLICT (user_id) DO UPDATE SET
			name = EXCLUDED.name, age_years = EXCLUDED.age_years, gender = EXCLUDED.gender,
			height_cm = EXCLUDED.height_cm, weight_kg = EXCLUDED.weight_kg,
			neck_cm = EXCLUDED.neck_cm, waist_cm = EXCLUDED.waist_cm, hip_cm = EXCLUDED.hip_cm,
			activity_level = EXCLUDED.activity_level, goal = EXCLUDED.goal,
			target_weight_kg = EXCLUDED.target_weight_kg,
			goal_duration_weeks = EXCLUDED.goal_duration_weeks,
			bmi = EXCLUDED.bmi, bmr = EXCLUDED.bmr, body_fat_pct = EXCLUDED.body_fat_pct,
			bmr_formula = EXCLUDED.bmr_formula, body_fat_formula = EXCLUDED.body_fat_formula,
			updated_at = now()
		 RETURNING *`,
		pgx.NamedArgs{
			"userID": p.UserID, "name": p.Name, "ageYears": p.AgeYears, "gender": p.Gender,
			"heightCM": p.HeightCM, "weightKG": p.WeightKG,
			"neckCM": p.NeckCM, "waistCM": p.WaistCM, "hipCM": p.HipCM,
			"activityLevel": p.ActivityLevel, "goal": p.Goal,
			"targetWeightKG": p.TargetWeightKG, "goalDurationWeeks": p.GoalDurationWeeks,
			"bmi": p.BMI, "bmr": p.BMR, "bodyFatPct": p.BodyFatPct,
			"bmrFormula": p.BMRFormula, "bodyFatFormula": p.BodyFatFormula,
		})
}

/* ─── Logs ────────────────────────────────────────────────────────────── */

func (s *pgStore) CreateLog(ctx context.Context, e LogEntry) (LogEntry, error) {
	return queryOne[LogEntry](ctx, s.pool,
		`INSERT INTO logs (user_id, date, type, content, satisfaction, calories, source, occurred_at)
		 VALUES (@userID, @date, @type, @content, @satisfaction, @calories, @source, @occurredAt)
		 RETURNING *`,
		pgx.NamedArgs{
			"userID": e.UserID, "date": e.OccurredAt.Format(dateLayout), "type": e.Type,
			"content": e.Content, "satisfaction": e.Satisfaction, "calories": e.Calories,
			"source": e.Source, "occurredAt": e.OccurredAt,
		})
}

func (s *pgStore) ListLogs(ctx context.Context, userID int, params ListLogsParams) ([]LogEntry, error) {
	where := []string{"user_id = @userID"}
	args := pgx.NamedArgs{"userID": userID}
	if params.Type != "" {
		where = append(where, "type = @type")
		args["type"] = params.Type
	}
	if params.Start != "" {
		where = append(where, "date >= @start")
		args["start"] = params.Start
	}
	if params.End != "" {
		where = append(where, "date <= @end")
		args["end"] = params.End
	}
	query := "SELECT * FROM logs WHERE " + strings.Join(where, " AND ") +
		" ORDER BY occurred_at DESC, id DESC"
	if params.Limit > 0 {
		query += " LIMIT @limit"
		args["limit"] = params.Limit
	}
	return queryMany[LogEntry](ctx, s.pool, query, args)
}

func (s *pgStore) DeleteLog(ctx context.Context, userID, id int) error {
	return s.execOwned(ctx, "DELETE FROM logs WHERE id = @id AND user_id = @userID", userID, id)
}

func (s *pgStore) DayTotals(ctx context.Context, userID int, start, end string) ([]DayTotals, error) {
	return queryMany[DayTotals](ctx, s.pool,
		`SELECT
			date,
			COUNT(*) FILTER (WHERE type = 'meal')     AS meals,
			COUNT(*) FILTER (WHERE type = 'exercise') AS exercises,
			SUM(CASE WHEN type = 'meal'     THEN calories ELSE 0 END) AS calories_food,
			SUM(CASE WHEN type = 'exercise' THEN calories ELSE 0 END) AS calories_exercise
		 FROM logs
		 WHERE user_id = @userID AND date >= @start AND date <= @end
		 GROUP BY date
		 ORDER BY date ASC`,
		pgx.NamedArgs{"userID": userID, "start": start, "end": end})
}

func (s *pgStore) EarliestLogDate(ctx context.Context, userID int) (*string, error) {
	var date *string
	err := s.pool.QueryRow(ctx,
		`SELECT TO_CHAR(MIN(date), 'YYYY-MM-DD') FROM logs WHERE user_id = @userID`,
		pgx.NamedArgs{"userID": userID}).Scan(&date)
	return date, err
}

/* ─── Weight log ──────────────────────────────────────────────────────── */

func (s *pgStore) ListWeights(ctx context.Context, userID int, start, end string) ([]WeightEntry, error) {
	return queryMany[WeightEntry](ctx, s.pool,
		`SELECT * FROM weight_log
		 WHERE user_id = @userID AND date >= @start AND date <= @end
		 ORDER BY date ASC`,
		pgx.NamedArgs{"userID": userID, "start": start, "end": end})
}

// UpsertWeight relies on UNIQUE(user_id, date): posting the same date updates in place.
func (s *pgStore) UpsertWeight(ctx context.Context, userID int, date string, weightKG float64) (WeightEntry, error) {
	return queryOne[WeightEntry](ctx, s.pool,
		`INSERT INTO weight_log (user_id, date, weight_kg)
		 VALUES (@userID, @date, @weightKG)
		 ON CONFLICT (user_id, date) DO UPDATE SET weight_kg = EXCLUDED.weight_kg
		 RETURNING *`,
		pgx.NamedArgs{"userID": userID, "date": date, "weightKG": weightKG})
}

// UpdateWeight uses COALESCE so nil fields keep their current values.
func (s *pgStore) UpdateWeight(ctx context.Context, userID, id int, date *string, weightKG *float64) (WeightEntry, error) {
	return queryOne[WeightEntry](ctx, s.pool,
		`UPDATE weight_log SET
			date      = COALESCE(@date::date, date),
			weight_kg = COALESCE(@weightKG, weight_kg)
		 WHERE id = @id AND user_id = @userID
		 RETURNING *`,
		pgx.NamedArgs{"id": id, "userID": userID, "date": date, "weightKG": weightKG})
}

func (s *pgStore) DeleteWeight(ctx context.Context, userID, id int) error {
	return s.execOwned(ctx, "DELETE FROM weight_log WHERE id = @id AND user_id = @userID", userID, id)
}

func (s *pgStore) Close() error {
	s.pool.Close()
	return nil
}
