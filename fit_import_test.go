package main

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"lg/fitness-metrics-go-api/internal/fitimport"
	"lg/fitness-metrics-go-api/internal/store"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fitHeaderOnly carries the ".FIT" signature but no records.
var fitHeaderOnly = []byte{14, 0x10, 0, 0, 0, 0, 0, 0, '.', 'F', 'I', 'T', 0, 0}

func uploadRequest(t *testing.T, field, name string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if field != "" {
		fw, err := mw.CreateFormFile(field, name)
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/logs/import-fit", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+testToken)
	return req
}

func TestImportActivity(t *testing.T) {
	env := newTestEnv(t)
	start := time.Date(2026, 3, 3, 6, 30, 0, 0, time.UTC)

	e, err := env.h.importActivity(context.Background(), env.userID, &fitimport.Activity{
		Sport: "Running", StartTime: start, Duration: 31*time.Minute + 40*time.Second, Calories: 412,
	})
	require.NoError(t, err)
	assert.Equal(t, "Running, 32 min", e.Content)
	assert.Equal(t, store.LogTypeExercise, e.Type)
	assert.Equal(t, store.SourceFIT, e.Source)
	assert.Equal(t, 412.0, e.Calories)
	assert.Equal(t, "2026-03-03", e.Date.String())
	assert.True(t, e.OccurredAt.Equal(start))
	assert.Equal(t, float64(1), testutil.ToFloat64(env.metrics.CounterFitImported))

	// no start time or sport recorded
	e, err = env.h.importActivity(context.Background(), env.userID, &fitimport.Activity{})
	require.NoError(t, err)
	assert.Equal(t, "Activity", e.Content)
	assert.True(t, e.OccurredAt.Equal(fixedNow))
}

func TestImportFitUpload(t *testing.T) {
	env := newTestEnv(t)

	cases := []struct {
		name    string
		field   string
		content []byte
		status  int
		want    string
	}{
		{"missing file", "", nil, http.StatusBadRequest, "file is required"},
		{"not fit", "file", []byte("just some text, no header"), http.StatusBadRequest, "file is not a FIT activity file"},
		{"undecodable", "file", fitHeaderOnly, http.StatusUnprocessableEntity, "could not decode FIT activity"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			env.router.ServeHTTP(w, uploadRequest(t, tc.field, "ride.fit", tc.content))
			assert.Equal(t, tc.status, w.Code)
			assert.Equal(t, tc.want, errorMessage(t, w))
		})
	}
	assert.Equal(t, float64(2), testutil.ToFloat64(env.metrics.CounterFitFailed))
	assert.Equal(t, float64(0), testutil.ToFloat64(env.metrics.CounterFitImported))
}

func TestFitInbox_Scan(t *testing.T) {
	env := newTestEnv(t)
	dir := t.TempDir()

	inbox, err := newFitInbox(env.h, dir, env.userID)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.fit"), []byte("garbage"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "BROKEN.FIT"), fitHeaderOnly, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignore me"), 0o644))

	imported, err := inbox.scan(context.Background())
	assert.Zero(t, imported)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.fit")
	assert.Contains(t, err.Error(), "BROKEN.FIT")

	assert.FileExists(t, filepath.Join(dir, "failed", "bad.fit"))
	assert.FileExists(t, filepath.Join(dir, "failed", "BROKEN.FIT"))
	assert.FileExists(t, filepath.Join(dir, "notes.txt"))
	assert.NoFileExists(t, filepath.Join(dir, "bad.fit"))
	assert.Equal(t, float64(2), testutil.ToFloat64(env.metrics.CounterFitFailed))

	// nothing left to do
	imported, err = inbox.scan(context.Background())
	assert.Zero(t, imported)
	assert.NoError(t, err)
}

func TestFitInbox_Schedule(t *testing.T) {
	env := newTestEnv(t)
	inbox, err := newFitInbox(env.h, t.TempDir(), env.userID)
	require.NoError(t, err)

	c := cron.New()
	require.NoError(t, inbox.schedule(c, "*/5 * * * *"))
	assert.Len(t, c.Entries(), 1)
	assert.Error(t, inbox.schedule(c, "whenever"))
}
