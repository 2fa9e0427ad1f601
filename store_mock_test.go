package main

import (
	"context"
	"sort"
	"sync"
	"time"

	"lg/fitness-metrics-go-api/internal/store"
)

// storeMock is an in-memory store.Store. Setting failWith makes every call
// except the token lookup return that error, so requests still authenticate.
type storeMock struct {
	mu       sync.Mutex
	failWith error

	users    map[int]store.User
	profiles map[int]store.Profile
	logs     map[int]store.LogEntry
	weights  map[int]store.WeightEntry
	nextID   int
}

func newStoreMock() *storeMock {
	return &storeMock{
		users:    make(map[int]store.User),
		profiles: make(map[int]store.Profile),
		logs:     make(map[int]store.LogEntry),
		weights:  make(map[int]store.WeightEntry),
	}
}

func (s *storeMock) id() int {
	s.nextID++
	return s.nextID
}

func (s *storeMock) CreateUser(_ context.Context, u store.User) (store.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return store.User{}, s.failWith
	}
	u.ID = s.id()
	now := time.Now()
	u.CreatedAt = &now
	s.users[u.ID] = u
	return u, nil
}

func (s *storeMock) UserByUsername(_ context.Context, username string) (store.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return store.User{}, s.failWith
	}
	for _, u := range s.users {
		if u.Username == username {
			return u, nil
		}
	}
	return store.User{}, store.ErrNotFound
}

func (s *storeMock) UserIDByToken(_ context.Context, token string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.AuthToken == token {
			return u.ID, nil
		}
	}
	return 0, store.ErrNotFound
}

func (s *storeMock) GetProfile(_ context.Context, userID int) (store.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return store.Profile{}, s.failWith
	}
	p, ok := s.profiles[userID]
	if !ok {
		return store.Profile{}, store.ErrNotFound
	}
	return p, nil
}

func (s *storeMock) SaveProfile(_ context.Context, p store.Profile) (store.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return store.Profile{}, s.failWith
	}
	now := time.Now()
	p.UpdatedAt = &now
	s.profiles[p.UserID] = p
	return p, nil
}

func (s *storeMock) CreateLog(_ context.Context, e store.LogEntry) (store.LogEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return store.LogEntry{}, s.failWith
	}
	e.ID = s.id()
	d, _ := time.Parse(dateLayout, e.OccurredAt.Format(dateLayout))
	e.Date = store.DateOnly{Time: d}
	s.logs[e.ID] = e
	return e, nil
}

func (s *storeMock) ListLogs(_ context.Context, userID int, params store.ListLogsParams) ([]store.LogEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return nil, s.failWith
	}
	var out []store.LogEntry
	for _, e := range s.logs {
		if e.UserID != userID || (params.Type != "" && e.Type != params.Type) {
			continue
		}
		if d := e.Date.String(); (params.Start != "" && d < params.Start) || (params.End != "" && d > params.End) {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].OccurredAt.Equal(out[j].OccurredAt) {
			return out[i].OccurredAt.After(out[j].OccurredAt)
		}
		return out[i].ID > out[j].ID
	})
	if params.Limit > 0 && len(out) > params.Limit {
		out = out[:params.Limit]
	}
	return out, nil
}

func (s *storeMock) DeleteLog(_ context.Context, userID, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return s.failWith
	}
	e, ok := s.logs[id]
	if !ok || e.UserID != userID {
		return store.ErrNotFound
	}
	delete(s.logs, id)
	return nil
}

func (s *storeMock) DayTotals(_ context.Context, userID int, start, end string) ([]store.DayTotals, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return nil, s.failWith
	}
	byDate := map[string]*store.DayTotals{}
	for _, e := range s.logs {
		d := e.Date.String()
		if e.UserID != userID || d < start || d > end {
			continue
		}
		t, ok := byDate[d]
		if !ok {
			t = &store.DayTotals{Date: e.Date}
			byDate[d] = t
		}
		if e.Type == store.LogTypeMeal {
			t.Meals++
			t.CaloriesFood += e.Calories
		} else {
			t.Exercises++
			t.CaloriesExercise += e.Calories
		}
	}
	out := make([]store.DayTotals, 0, len(byDate))
	for _, t := range byDate {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date.Time) })
	return out, nil
}

func (s *storeMock) EarliestLogDate(_ context.Context, userID int) (*string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return nil, s.failWith
	}
	var earliest *string
	for _, e := range s.logs {
		if e.UserID != userID {
			continue
		}
		if d := e.Date.String(); earliest == nil || d < *earliest {
			earliest = &d
		}
	}
	return earliest, nil
}

func (s *storeMock) ListWeights(_ context.Context, userID int, start, end string) ([]store.WeightEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return nil, s.failWith
	}
	var out []store.WeightEntry
	for _, w := range s.weights {
		if d := w.Date.String(); w.UserID == userID && d >= start && d <= end {
			out = append(out, w)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date.Time) })
	return out, nil
}

func (s *storeMock) UpsertWeight(_ context.Context, userID int, date string, weightKG float64) (store.WeightEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return store.WeightEntry{}, s.failWith
	}
	for id, w := range s.weights {
		if w.UserID == userID && w.Date.String() == date {
			w.WeightKG = weightKG
			s.weights[id] = w
			return w, nil
		}
	}
	d, _ := time.Parse(dateLayout, date)
	now := time.Now()
	w := store.WeightEntry{ID: s.id(), UserID: userID, Date: store.DateOnly{Time: d}, WeightKG: weightKG, CreatedAt: &now}
	s.weights[w.ID] = w
	return w, nil
}

func (s *storeMock) UpdateWeight(_ context.Context, userID, id int, date *string, weightKG *float64) (store.WeightEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return store.WeightEntry{}, s.failWith
	}
	w, ok := s.weights[id]
	if !ok || w.UserID != userID {
		return store.WeightEntry{}, store.ErrNotFound
	}
	if date != nil {
		d, _ := time.Parse(dateLayout, *date)
		w.Date = store.DateOnly{Time: d}
	}
	if weightKG != nil {
		w.WeightKG = *weightKG
	}
	s.weights[id] = w
	return w, nil
}

func (s *storeMock) DeleteWeight(_ context.Context, userID, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return s.failWith
	}
	w, ok := s.weights[id]
	if !ok || w.UserID != userID {
		return store.ErrNotFound
	}
	delete(s.weights, id)
	return nil
}

func (s *storeMock) Close() error { return nil }
