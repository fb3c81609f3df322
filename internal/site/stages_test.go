package site

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/inkpress/inkpress/internal/metrics"
)

func newTestState() *BuildState {
	return &BuildState{
		Report:   newBuildReport("test-build", fixedBuildTime),
		Recorder: metrics.NoopRecorder{},
	}
}

func TestRunStages_AllSucceed(t *testing.T) {
	bs := newTestState()
	var order []string
	mk := func(name string) namedStage {
		return namedStage{name, func(context.Context, *BuildState) error {
			order = append(order, name)
			return nil
		}}
	}

	err := runStages(context.Background(), bs, []namedStage{mk("one"), mk("two"), mk("three")})
	require.NoError(t, err)
	require.Equal(t, []string{"one", "two", "three"}, order)
	require.Equal(t, 1, bs.Report.StageCounts["two"].Success)
	require.Equal(t, "success", bs.Report.Outcome)
}

func TestRunStages_FatalStopsPipeline(t *testing.T) {
	bs := newTestState()
	ran := false

	err := runStages(context.Background(), bs, []namedStage{
		{"boom", func(context.Context, *BuildState) error {
			return newFatalStageError("boom", errors.New("nope"))
		}},
		{"after", func(context.Context, *BuildState) error {
			ran = true
			return nil
		}},
	})

	require.Error(t, err)
	require.False(t, ran, "stages after a fatal error must not run")
	require.Equal(t, "failed", bs.Report.Outcome)
	require.Len(t, bs.Report.Errors, 1)

	var se *StageError
	require.True(t, errors.As(err, &se))
	require.Equal(t, StageErrorFatal, se.Kind)
	require.Equal(t, "boom", se.Stage)
}

func TestRunStages_WarningContinues(t *testing.T) {
	bs := newTestState()
	ran := false

	err := runStages(context.Background(), bs, []namedStage{
		{"warn", func(context.Context, *BuildState) error {
			return newWarnStageError("warn", errors.New("minor"))
		}},
		{"after", func(context.Context, *BuildState) error {
			ran = true
			return nil
		}},
	})

	require.NoError(t, err)
	require.True(t, ran)
	require.Equal(t, "success", bs.Report.Outcome)
	require.Len(t, bs.Report.Warnings, 1)
	require.Equal(t, 1, bs.Report.StageCounts["warn"].Warning)
}

func TestRunStages_PlainErrorBecomesFatal(t *testing.T) {
	bs := newTestState()

	err := runStages(context.Background(), bs, []namedStage{
		{"plain", func(context.Context, *BuildState) error { return errors.New("raw") }},
	})

	var se *StageError
	require.True(t, errors.As(err, &se))
	require.Equal(t, StageErrorFatal, se.Kind)
}

func TestRunStages_CanceledBetweenStages(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	bs := newTestState()

	err := runStages(ctx, bs, []namedStage{
		{"first", func(context.Context, *BuildState) error {
			cancel()
			return nil
		}},
		{"second", func(context.Context, *BuildState) error {
			t.Fatal("must not run after cancellation")
			return nil
		}},
	})

	var se *StageError
	require.True(t, errors.As(err, &se))
	require.Equal(t, StageErrorCanceled, se.Kind)
	require.Equal(t, "canceled", bs.Report.Outcome)
}

func TestStageError_Unwrap(t *testing.T) {
	cause := errors.New("cause")
	se := newFatalStageError("x", cause)
	require.ErrorIs(t, se, cause)
}
