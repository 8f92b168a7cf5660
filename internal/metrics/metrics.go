package metrics

import (
	"github.com/AdamBeresnev/venue-bracket/internal/bracket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder counts engine operations. A nil Recorder records nothing.
type Recorder struct {
	operations    *prometheus.CounterVec
	stagesCreated *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)
	return &Recorder{
		operations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "bracket_operations_total",
			Help: "Bracket engine operations by outcome.",
		}, []string{"operation", "result"}),
		stagesCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "bracket_stages_created_total",
			Help: "Stages written to the match store.",
		}, []string{"stage"}),
	}
}

// Operation records one call of op, labelled with the kind of err.
func (r *Recorder) Operation(op string, err error) {
	if r == nil {
		return
	}
	r.operations.WithLabelValues(op, bracket.Kind(err)).Inc()
}

func (r *Recorder) StageCreated(stage bracket.Stage) {
	if r == nil {
		return
	}
	r.stagesCreated.WithLabelValues(string(stage)).Inc()
}
