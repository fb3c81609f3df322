package site

import (
	"time"

	"github.com/inkpress/inkpress/internal/metrics"
)

// StageCount tracks per-stage outcome tallies.
type StageCount struct {
	Success  int
	Warning  int
	Fatal    int
	Canceled int
}

// BuildReport summarizes one build run.
type BuildReport struct {
	BuildID        string
	StartedAt      time.Time
	Duration       time.Duration
	PostCount      int
	DraftCount     int
	ContentHash    string // deterministic hash of the source corpus + config
	Outcome        string // success|failed|canceled
	StageDurations map[string]time.Duration
	StageCounts    map[string]StageCount
	Errors         []*StageError
	Warnings       []*StageError
}

func newBuildReport(buildID string, start time.Time) *BuildReport {
	return &BuildReport{
		BuildID:        buildID,
		StartedAt:      start,
		Outcome:        "success",
		StageDurations: make(map[string]time.Duration),
		StageCounts:    make(map[string]StageCount),
	}
}

// recordStage updates counters for one stage outcome and emits metrics.
// A nil StageError records success.
func (r *BuildReport) recordStage(stage string, se *StageError, rec metrics.Recorder) {
	sc := r.StageCounts[stage]
	switch {
	case se == nil:
		sc.Success++
		rec.IncStageResult(stage, metrics.ResultSuccess)
	case se.Kind == StageErrorWarning:
		sc.Warning++
		r.Warnings = append(r.Warnings, se)
		rec.IncStageResult(stage, metrics.ResultWarning)
	case se.Kind == StageErrorCanceled:
		sc.Canceled++
		r.Errors = append(r.Errors, se)
		r.Outcome = "canceled"
		rec.IncStageResult(stage, metrics.ResultCanceled)
	default:
		sc.Fatal++
		r.Errors = append(r.Errors, se)
		r.Outcome = "failed"
		rec.IncStageResult(stage, metrics.ResultFatal)
	}
	r.StageCounts[stage] = sc
}
