package observability

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestObservability(t *testing.T) *Observability {
	t.Helper()
	reg := promclient.NewRegistry()
	o, err := New(Options{ServiceName: "lead-pipeline-test", Registerer: reg, Gatherer: reg})
	require.NoError(t, err)
	t.Cleanup(func() { _ = o.Shutdown(context.Background()) })
	return o
}

func TestRecordRunAndStage_ExposedOnHandler(t *testing.T) {
	o := newTestObservability(t)
	ctx := context.Background()

	o.RecordRun(ctx, "completed", 1500*time.Millisecond)
	o.RecordRun(ctx, "partial", 10*time.Millisecond)
	o.RecordStage(ctx, "create", 200*time.Millisecond, 3, 2)
	o.RecordStage(ctx, "search", time.Millisecond, 0, 0)

	rec := httptest.NewRecorder()
	o.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)

	out := string(body)
	assert.Contains(t, out, `workflow_runs_total{`)
	assert.Contains(t, out, `status="completed"`)
	assert.Contains(t, out, `status="partial"`)
	assert.Contains(t, out, `workflow_stage_items_total{`)
	assert.Contains(t, out, `result="failure"`)
	assert.Contains(t, out, `workflow_stage_duration_milliseconds`)
}

func TestShutdownIsIdempotentForZeroValue(t *testing.T) {
	var o Observability
	assert.NoError(t, o.Shutdown(context.Background()))
}
