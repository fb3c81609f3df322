package metrics

import (
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestNoopRecorder_Implements(t *testing.T) {
	var r Recorder = NoopRecorder{}
	r.ObserveStageDuration("render", time.Second)
	r.IncStageResult("render", ResultSuccess)
	r.IncBuildOutcome("success")
	r.IncPublishOutcome("pages", "success")
	r.SetPostCount(3)
}

func TestPrometheusRecorder_Counters(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)

	pr.IncStageResult("render", ResultSuccess)
	pr.IncStageResult("render", ResultSuccess)
	pr.IncStageResult("feeds", ResultFatal)
	pr.IncBuildOutcome("success")
	pr.IncPublishOutcome("bucket", "failed")
	pr.SetPostCount(42)
	pr.ObserveStageDuration("render", 120*time.Millisecond)
	pr.ObserveBuildDuration(time.Second)

	require.Equal(t, float64(2), testutil.ToFloat64(pr.stageResults.WithLabelValues("render", "success")))
	require.Equal(t, float64(1), testutil.ToFloat64(pr.stageResults.WithLabelValues("feeds", "fatal")))
	require.Equal(t, float64(1), testutil.ToFloat64(pr.buildOutcome.WithLabelValues("success")))
	require.Equal(t, float64(1), testutil.ToFloat64(pr.publishOutcome.WithLabelValues("bucket", "failed")))
	require.Equal(t, float64(42), testutil.ToFloat64(pr.postCount))
}

func TestPrometheusRecorder_NilRegistryAllowed(t *testing.T) {
	pr := NewPrometheusRecorder(nil)
	require.NotNil(t, pr)
	pr.IncBuildOutcome("canceled")
}
