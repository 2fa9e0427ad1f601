package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	log "github.com/sirupsen/logrus"
)

// Timestamps are stored as fixed-width UTC TEXT so they sort lexically and the
// driver hands them back verbatim.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

type sqliteStore struct {
	db *sql.DB
}

// NewSQLite opens (creating if needed) a single-file database and its schema.
func NewSQLite(path string) (Store, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}
	// One writer at a time; sqlite serialises writes anyway.
	db.SetMaxOpenConns(1)

	s := &sqliteStore{db: db}
	if err := s.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}
	log.Debugf("sqlite database ready at %s", path)
	return s, nil
}

func (s *sqliteStore) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT UNIQUE NOT NULL,
		email TEXT NOT NULL,
		password TEXT NOT NULL,
		auth_token TEXT UNIQUE NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS profiles (
		user_id INTEGER PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
		name TEXT NOT NULL DEFAULT '',
		age_years INTEGER NOT NULL,
		gender TEXT NOT NULL,
		height_cm REAL NOT NULL,
		weight_kg REAL NOT NULL,
		neck_cm REAL,
		waist_cm REAL,
		hip_cm REAL,
		activity_level TEXT NOT NULL,
		goal TEXT NOT NULL DEFAULT '',
		target_weight_kg REAL NOT NULL,
		goal_duration_weeks INTEGER NOT NULL,
		bmi REAL NOT NULL,
		bmr REAL NOT NULL,
		body_fat_pct REAL NOT NULL,
		bmr_formula TEXT NOT NULL,
		body_fat_formula TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS logs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		date TEXT NOT NULL,
		type TEXT NOT NULL CHECK (type IN ('meal', 'exercise')),
		content TEXT NOT NULL,
		satisfaction INTEGER CHECK (satisfaction BETWEEN 1 AND 10),
		calories REAL NOT NULL DEFAULT 0 CHECK (calories >= 0),
		source TEXT NOT NULL DEFAULT 'manual',
		occurred_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_logs_user_date ON logs(user_id, date);
	CREATE INDEX IF NOT EXISTS idx_logs_user_occurred ON logs(user_id, occurred_at);

	CREATE TABLE IF NOT EXISTS weight_log (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		date TEXT NOT NULL,
		weight_kg REAL NOT NULL,
		created_at TEXT NOT NULL,
		UNIQUE (user_id, date)
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

/* ─── Row scanning ────────────────────────────────────────────────────── */

type rowScanner interface {
	Scan(dest ...any) error
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(sqliteTimeLayout, s)
}

func parseDate(s string) (DateOnly, error) {
	t, err := time.Parse(dateLayout, s)
	return DateOnly{t}, err
}

func formatTime(t time.Time) string {
	return t.UTC().Format(sqliteTimeLayout)
}

const userColumns = "id, username, email, password, auth_token, created_at"

func scanUser(row rowScanner) (User, error) {
	var u User
	var createdAt string
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.Password, &u.AuthToken, &createdAt); err != nil {
		return u, noRows(err)
	}
	t, err := parseTime(createdAt)
	if err != nil {
		return u, err
	}
	u.CreatedAt = &t
	return u, nil
}

const profileColumns = `user_id, name, age_years, gender, height_cm, weight_kg, neck_cm, waist_cm,
	hip_cm, activity_level, goal, target_weight_kg, goal_duration_weeks, bmi, bmr, body_fat_pct,
	bmr_formula, body_fat_formula, updated_at`

func scanProfile(row rowScanner) (Profile, error) {
	var p Profile
	var neck, waist, hip sql.NullFloat64
	var updatedAt string
	err := row.Scan(&p.UserID, &p.Name, &p.AgeYears, &p.Gender, &p.HeightCM, &p.WeightKG,
		&neck, &waist, &hip, &p.ActivityLevel, &p.Goal, &p.TargetWeightKG, &p.GoalDurationWeeks,
		&p.BMI, &p.BMR, &p.BodyFatPct, &p.BMRFormula, &p.BodyFatFormula, &updatedAt)
	if err != nil {
		return p, noRows(err)
	}
	p.NeckCM = nullFloat(neck)
	p.WaistCM = nullFloat(waist)
	p.HipCM = nullFloat(hip)
	t, err := parseTime(updatedAt)
	if err != nil {
		return p, err
	}
	p.UpdatedAt = &t
	return p, nil
}

const logColumns = "id, user_id, date, type, content, satisfaction, calories, source, occurred_at"

func scanLog(row rowScanner) (LogEntry, error) {
	var e LogEntry
	var date, occurredAt string
	var satisfaction sql.NullInt64
	err := row.Scan(&e.ID, &e.UserID, &date, &e.Type, &e.Content, &satisfaction,
		&e.Calories, &e.Source, &occurredAt)
	if err != nil {
		return e, noRows(err)
	}
	if satisfaction.Valid {
		v := int(satisfaction.Int64)
		e.Satisfaction = &v
	}
	if e.Date, err = parseDate(date); err != nil {
		return e, err
	}
	if e.OccurredAt, err = parseTime(occurredAt); err != nil {
		return e, err
	}
	return e, nil
}

const weightColumns = "id, user_id, date, weight_kg, created_at"

func scanWeight(row rowScanner) (WeightEntry, error) {
	var w WeightEntry
	var date, createdAt string
	if err := row.Scan(&w.ID, &w.UserID, &date, &w.WeightKG, &createdAt); err != nil {
		return w, noRows(err)
	}
	var err error
	if w.Date, err = parseDate(date); err != nil {
		return w, err
	}
	t, err := parseTime(createdAt)
	if err != nil {
		return w, err
	}
	w.CreatedAt = &t
	return w, nil
}

func noRows(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	return &v.Float64
}

// collect drains rows through scan. Always returns a non-nil slice on success.
func collect[T any](rows *sql.Rows, scan func(rowScanner) (T, error)) ([]T, error) {
	defer rows.Close()
	out := []T{}
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			log.Errorf("[collect] scan error: %v", err)
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (s *sqliteStore) execOwned(ctx context.Context, query string, userID, id int) error {
	result, err := s.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

/* ─── Users ───────────────────────────────────────────────────────────── */

func (s *sqliteStore) CreateUser(ctx context.Context, u User) (User, error) {
	row := s.db.QueryRowContext(ctx,
		`INSERT INTO users (username, email, password, auth_token, created_at)
		 VALUES (?, ?, ?, ?, ?)
		 RETURNING `+userColumns,
		u.Username, u.Email, u.Password, u.AuthToken, formatTime(time.Now()))
	return scanUser(row)
}

func (s *sqliteStore) UserByUsername(ctx context.Context, username string) (User, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE username = ?", username)
	return scanUser(row)
}

func (s *sqliteStore) UserIDByToken(ctx context.Context, token string) (int, error) {
	var userID int
	err := s.db.QueryRowContext(ctx, "SELECT id FROM users WHERE auth_token = ?", token).Scan(&userID)
	return userID, noRows(err)
}

/* ─── Profiles ────────────────────────────────────────────────────────── */

func (s *sqliteStore) GetProfile(ctx context.Context, userID int) (Profile, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+profileColumns+" FROM profiles WHERE user_id = ?", userID)
	return scanProfile(row)
}

func (s *sqliteStore) SaveProfile(ctx context.Context, p Profile) (Profile, error) {
	row := s.db.QueryRowContext(ctx,
		`INSERT OR REPLACE INTO profiles (`+profileColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 RETURNING `+profileColumns,
		p.UserID, p.Name, p.AgeYears, p.Gender, p.HeightCM, p.WeightKG,
		p.NeckCM, p.WaistCM, p.HipCM, p.ActivityLevel, p.Goal, p.TargetWeightKG,
		p.GoalDurationWeeks, p.BMI, p.BMR, p.BodyFatPct, p.BMRFormula, p.BodyFatFormula,
		formatTime(time.Now()))
	return scanProfile(row)
}

/* ─── Logs ────────────────────────────────────────────────────────────── */

func (s *sqliteStore) CreateLog(ctx context.Context, e LogEntry) (LogEntry, error) {
	row := s.db.QueryRowContext(ctx,
		`INSERT INTO logs (user_id, date, type, content, satisfaction, calories, source, occurred_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 RETURNING `+logColumns,
		e.UserID, e.OccurredAt.Format(dateLayout), e.Type, e.Content, e.Satisfaction,
		e.Calories, e.Source, formatTime(e.OccurredAt))
	return scanLog(row)
}

func (s *sqliteStore) ListLogs(ctx context.Context, userID int, params ListLogsParams) ([]LogEntry, error) {
	where := []string{"user_id = ?"}
	args := []any{userID}
	if params.Type != "" {
		where = append(where, "type = ?")
		args = append(args, params.Type)
	}
	if params.Start != "" {
		where = append(where, "date >= ?")
		args = append(args, params.Start)
	}
	if params.End != "" {
		where = append(where, "date <= ?")
		args = append(args, params.End)
	}
	query := "SELECT " + logColumns + " FROM logs WHERE " + strings.Join(where, " AND ") +
		" ORDER BY occurred_at DESC, id DESC"
	if params.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, params.Limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Errorf("[ListLogs] query error: %v", err)
		return nil, err
	}
	return collect(rows, scanLog)
}

func (s *sqliteStore) DeleteLog(ctx context.Context, userID, id int) error {
	return s.execOwned(ctx, "DELETE FROM logs WHERE id = ? AND user_id = ?", userID, id)
}

func (s *sqliteStore) DayTotals(ctx context.Context, userID int, start, end string) ([]DayTotals, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT
			date,
			SUM(CASE WHEN type = 'meal'     THEN 1 ELSE 0 END),
			SUM(CASE WHEN type = 'exercise' THEN 1 ELSE 0 END),
			TOTAL(CASE WHEN type = 'meal'     THEN calories ELSE 0 END),
			TOTAL(CASE WHEN type = 'exercise' THEN calories ELSE 0 END)
		 FROM logs
		 WHERE user_id = ? AND date >= ? AND date <= ?
		 GROUP BY date
		 ORDER BY date ASC`,
		userID, start, end)
	if err != nil {
		log.Errorf("[DayTotals] query error: %v", err)
		return nil, err
	}
	return collect(rows, func(row rowScanner) (DayTotals, error) {
		var d DayTotals
		var date string
		if err := row.Scan(&date, &d.Meals, &d.Exercises, &d.CaloriesFood, &d.CaloriesExercise); err != nil {
			return d, err
		}
		var err error
		d.Date, err = parseDate(date)
		return d, err
	})
}

func (s *sqliteStore) EarliestLogDate(ctx context.Context, userID int) (*string, error) {
	var date sql.NullString
	err := s.db.QueryRowContext(ctx, "SELECT MIN(date) FROM logs WHERE user_id = ?", userID).Scan(&date)
	if err != nil || !date.Valid {
		return nil, err
	}
	return &date.String, nil
}

/* ─── Weight log ──────────────────────────────────────────────────────── */

func (s *sqliteStore) ListWeights(ctx context.Context, userID int, start, end string) ([]WeightEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+weightColumns+` FROM weight_log
		 WHERE user_id = ? AND date >= ? AND date <= ?
		 ORDER BY date ASC`,
		userID, start, end)
	if err != nil {
		log.Errorf("[ListWeights] query error: %v", err)
		return nil, err
	}
	return collect(rows, scanWeight)
}

func (s *sqliteStore) UpsertWeight(ctx context.Context, userID int, date string, weightKG float64) (WeightEntry, error) {
	row := s.db.QueryRowContext(ctx,
		`INSERT INTO weight_log (user_id, date, weight_kg, created_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (user_id, date) DO UPDATE SET weight_kg = excluded.weight_kg
		 RETURNING `+weightColumns,
		userID, date, weightKG, formatTime(time.Now()))
	return scanWeight(row)
}

func (s *sqliteStore) UpdateWeight(ctx context.Context, userID, id int, date *string, weightKG *float64) (WeightEntry, error) {
	row := s.db.QueryRowContext(ctx,
		`UPDATE weight_log SET
			date      = COALESCE(?, date),
			weight_kg = COALESCE(?, weight_kg)
		 WHERE id = ? AND user_id = ?
		 RETURNING `+weightColumns,
		date, weightKG, id, userID)
	return scanWeight(row)
}

func (s *sqliteStore) DeleteWeight(ctx context.Context, userID, id int) error {
	return s.execOwned(ctx, "DELETE FROM weight_log WHERE id = ? AND user_id = ?", userID, id)
}

func (s *sqliteStore) Close() error {
	return s.db.Close()
}
