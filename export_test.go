package main

import (
	"bytes"
	"context"
	"net/http"
	"testing"

	"lg/fitness-metrics-go-api/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestBuildWorkbook(t *testing.T) {
	waist := 80.0
	sat := 7
	data := exportData{
		Profile: &store.Profile{
			Name: "Jane", AgeYears: 30, Gender: "female", HeightCM: 165, WeightKG: 60,
			WaistCM: &waist, ActivityLevel: "low", BMI: 22.04, BMR: 1320.25, BodyFatPct: 28.5,
			BMRFormula: "mifflin_st_jeor", BodyFatFormula: "deurenberg",
		},
		Logs: []store.LogEntry{
			{Date: store.DateOnly{Time: fixedNow}, OccurredAt: fixedNow, Type: store.LogTypeMeal,
				Content: "soup", Satisfaction: &sat, Calories: 400, Source: store.SourceManual},
		},
		Weights: []store.WeightEntry{{Date: store.DateOnly{Time: fixedNow}, WeightKG: 60}},
	}

	f, err := buildWorkbook(data)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{sheetProfile, sheetLogs, sheetWeight}, f.GetSheetList())

	cell := func(sheet, ref string) string {
		v, err := f.GetCellValue(sheet, ref)
		require.NoError(t, err)
		return v
	}
	assert.Equal(t, "Field", cell(sheetProfile, "A1"))
	assert.Equal(t, "Jane", cell(sheetProfile, "B2"))
	assert.Equal(t, "", cell(sheetProfile, "B7"), "neck not measured")
	assert.Equal(t, "80", cell(sheetProfile, "B8"))
	assert.Equal(t, "22.04", cell(sheetProfile, "B14"))

	assert.Equal(t, "2026-03-04", cell(sheetLogs, "A2"))
	assert.Equal(t, "12:00", cell(sheetLogs, "B2"))
	assert.Equal(t, "soup", cell(sheetLogs, "D2"))
	assert.Equal(t, "7", cell(sheetLogs, "E2"))
	assert.Equal(t, "400", cell(sheetLogs, "F2"))

	assert.Equal(t, "Weight (kg)", cell(sheetWeight, "B1"))
	assert.Equal(t, "60", cell(sheetWeight, "B2"))
}

func TestBuildWorkbook_NoProfile(t *testing.T) {
	f, err := buildWorkbook(exportData{})
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheetProfile)
	require.NoError(t, err)
	assert.Len(t, rows, 1, "header only")
}

func TestExportWorkbook_Endpoint(t *testing.T) {
	env := newTestEnv(t)
	seedLogs(t, env)
	_, err := env.store.UpsertWeight(context.Background(), env.userID, "2026-03-01", 81)
	require.NoError(t, err)

	w := env.do(t, http.MethodGet, "/api/export", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "fitness_export_2026-03-04.xlsx")

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	logRows, err := f.GetRows(sheetLogs)
	require.NoError(t, err)
	assert.Len(t, logRows, 7, "header plus six entries")
	assert.Equal(t, "pasta", logRows[1][3], "most recent first")

	weight, err := f.GetCellValue(sheetWeight, "B2")
	require.NoError(t, err)
	assert.Equal(t, "81", weight)
}
