// Package fitimport turns FIT activity files (Garmin and friends) into
// exercise log samples.
package fitimport

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"lg/fitness-metrics-go-api/internal/biometrics"

	"github.com/tormoder/fit"
)

// ErrNotFIT is returned when the data does not carry the FIT header signature.
var ErrNotFIT = errors.New("not a FIT file")

// invalid values for the session fields we read
const (
	invalidCalories  = 0xFFFF
	invalidTimerTime = 0xFFFFFFFF
)

// Activity is the summary of the first session of a FIT activity file.
type Activity struct {
	Sport     string
	StartTime time.Time
	Duration  time.Duration
	Calories  float64
}

// Sample converts the activity into the input of the burn estimator.
func (a Activity) Sample() biometrics.ExerciseLogSample {
	return biometrics.ExerciseLogSample{Calories: a.Calories, OccurredAt: a.StartTime}
}

// IsFIT checks the ".FIT" data type marker at bytes 8-11 of the header.
func IsFIT(header []byte) bool {
	return len(header) >= 12 && bytes.Equal(header[8:12], []byte(".FIT"))
}

func ParseFile(path string) (*Activity, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return Parse(file)
}

// Parse decodes an activity file and summarises its first session.
func Parse(r io.Reader) (*Activity, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read fit data: %w", err)
	}
	if !IsFIT(data) {
		return nil, ErrNotFIT
	}

	fitFile, err := fit.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode fit file: %w", err)
	}

	activity, err := fitFile.Activity()
	if err != nil {
		return nil, fmt.Errorf("get activity from fit: %w", err)
	}
	if len(activity.Sessions) == 0 {
		return nil, errors.New("no sessions found in fit file")
	}

	session := activity.Sessions[0]
	a := &Activity{
		Sport:     session.Sport.String(),
		StartTime: session.StartTime.UTC(),
	}
	// timer time is stored in milliseconds (scale 1000, unit s)
	if session.TotalTimerTime != invalidTimerTime {
		a.Duration = time.Duration(session.TotalTimerTime) * time.Millisecond
	}
	if session.TotalCalories != invalidCalories {
		a.Calories = float64(session.TotalCalories)
	}

	return a, nil
}
