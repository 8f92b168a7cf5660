package metrics

import (
	"fmt"
	"testing"

	"github.com/AdamBeresnev/venue-bracket/internal/bracket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := New(reg)

	r.Operation("advance_stage", nil)
	r.Operation("advance_stage", nil)
	r.Operation("advance_stage", fmt.Errorf("%w: r2 needs r1", bracket.ErrIncompleteStage))
	r.StageCreated(bracket.StageR2)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.operations.WithLabelValues("advance_stage", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.operations.WithLabelValues("advance_stage", "incomplete_stage")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.stagesCreated.WithLabelValues("r2")))
}

func TestNilRecorder(t *testing.T) {
	var r *Recorder
	assert.NotPanics(t, func() {
		r.Operation("record_winner", nil)
		r.StageCreated(bracket.StageFinal)
	})
}
