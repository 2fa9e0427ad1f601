package main

import (
	"errors"
	"fmt"
	"net/http"

	"lg/fitness-metrics-go-api/internal/store"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
)

const (
	sheetProfile = "Profile"
	sheetLogs    = "Logs"
	sheetWeight  = "Weight"

	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// exportData is everything a workbook holds for one user. Profile is nil when
// the user has not saved one yet.
type exportData struct {
	Profile *store.Profile
	Logs    []store.LogEntry
	Weights []store.WeightEntry
}

// exportWorkbook streams the user's data as an xlsx file.
// GET /api/export.
func (h *Handler) exportWorkbook(c *gin.Context) {
	userID := c.GetInt("user_id")

	var data exportData
	p, err := h.store.GetProfile(c, userID)
	switch {
	case err == nil:
		data.Profile = &p
	case !errors.Is(err, store.ErrNotFound):
		storeError(c, err, "profile")
		return
	}
	if data.Logs, err = h.store.ListLogs(c, userID, store.ListLogsParams{}); err != nil {
		storeError(c, err, "logs")
		return
	}
	if data.Weights, err = h.store.ListWeights(c, userID, "0001-01-01", "9999-12-31"); err != nil {
		storeError(c, err, "weight log")
		return
	}

	f, err := buildWorkbook(data)
	if err != nil {
		log.Errorf("[exportWorkbook] user %d: %v", userID, err)
		apiError(c, http.StatusInternalServerError, "failed to build export")
		return
	}
	defer f.Close()

	buf, err := f.WriteToBuffer()
	if err != nil {
		log.Errorf("[exportWorkbook] write user %d: %v", userID, err)
		apiError(c, http.StatusInternalServerError, "failed to build export")
		return
	}

	filename := fmt.Sprintf("fitness_export_%s.xlsx", h.today())
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// buildWorkbook lays out one sheet per dataset with a bold header row.
func buildWorkbook(data exportData) (*excelize.File, error) {
	f := excelize.NewFile()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	profileRows := [][]any{}
	if p := data.Profile; p != nil {
		profileRows = [][]any{
			{"Name", p.Name},
			{"Age (years)", p.AgeYears},
			{"Gender", p.Gender},
			{"Height (cm)", p.HeightCM},
			{"Weight (kg)", p.WeightKG},
			{"Neck (cm)", optional(p.NeckCM)},
			{"Waist (cm)", optional(p.WaistCM)},
			{"Hip (cm)", optional(p.HipCM)},
			{"Activity level", p.ActivityLevel},
			{"Goal", p.Goal},
			{"Target weight (kg)", p.TargetWeightKG},
			{"Goal duration (weeks)", p.GoalDurationWeeks},
			{"BMI", p.BMI},
			{"BMR (kcal/day)", p.BMR},
			{"Body fat (%)", p.BodyFatPct},
			{"BMR formula", p.BMRFormula},
			{"Body fat formula", p.BodyFatFormula},
		}
	}

	logRows := make([][]any, 0, len(data.Logs))
	for _, e := range data.Logs {
		logRows = append(logRows, []any{
			e.Date.String(), e.OccurredAt.Format("15:04"), e.Type, e.Content,
			optionalInt(e.Satisfaction), e.Calories, e.Source,
		})
	}

	weightRows := make([][]any, 0, len(data.Weights))
	for _, w := range data.Weights {
		weightRows = append(weightRows, []any{w.Date.String(), w.WeightKG})
	}

	sheets := []struct {
		name   string
		header []any
		rows   [][]any
		widths []float64
	}{
		{sheetProfile, []any{"Field", "Value"}, profileRows, []float64{24, 20}},
		{sheetLogs, []any{"Date", "Time", "Type", "Content", "Satisfaction", "Calories", "Source"}, logRows,
			[]float64{12, 8, 10, 30, 12, 10, 8}},
		{sheetWeight, []any{"Date", "Weight (kg)"}, weightRows, []float64{12, 12}},
	}

	for i, s := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", s.name); err != nil {
				return nil, err
			}
		} else if _, err := f.NewSheet(s.name); err != nil {
			return nil, fmt.Errorf("create sheet %s: %w", s.name, err)
		}

		if err := f.SetSheetRow(s.name, "A1", &s.header); err != nil {
			return nil, err
		}
		last, _ := excelize.CoordinatesToCellName(len(s.header), 1)
		if err := f.SetCellStyle(s.name, "A1", last, headerStyle); err != nil {
			return nil, err
		}
		for r, row := range s.rows {
			cell, _ := excelize.CoordinatesToCellName(1, r+2)
			if err := f.SetSheetRow(s.name, cell, &row); err != nil {
				return nil, fmt.Errorf("write %s row %d: %w", s.name, r+2, err)
			}
		}
		for col, w := range s.widths {
			name, _ := excelize.ColumnNumberToName(col + 1)
			if err := f.SetColWidth(s.name, name, name, w); err != nil {
				return nil, err
			}
		}
	}
	return f, nil
}

// optional renders a missing measurement as an empty cell.
func optional(v *float64) any {
	if v == nil {
		return ""
	}
	return *v
}

func optionalInt(v *int) any {
	if v == nil {
		return ""
	}
	return *v
}
