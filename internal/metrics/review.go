package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/sells-group/review-cli/internal/model"
)

var (
	documentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_total",
			Help:      "Documents processed by extraction, by outcome",
		},
		[]string{"status"}, // "ok" / "unreadable"
	)

	fieldsMissingTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fields_missing_total",
			Help:      "Extracted records with a null value, by field",
		},
		[]string{"field"},
	)

	comparisonsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "comparisons_total",
			Help:      "Dataset comparisons, by outcome",
		},
		[]string{"outcome"}, // "ok" / "missing_key" / "missing_indicator"
	)

	highlightedRowsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "highlighted_rows_total",
			Help:      "Joined rows flagged by both files",
		},
	)
)

func init() {
	prometheus.MustRegister(
		httpRequestDuration,
		httpRequestsTotal,
		documentsTotal,
		fieldsMissingTotal,
		comparisonsTotal,
		highlightedRowsTotal,
	)
}

// Comparison outcomes.
const (
	OutcomeOK               = "ok"
	OutcomeMissingKey       = "missing_key"
	OutcomeMissingIndicator = "missing_indicator"
)

// RecordExtraction counts one batch: its readable and unreadable documents
// and, per field, how many records came back null.
func RecordExtraction(ds *model.Dataset, failed int) {
	documentsTotal.WithLabelValues("ok").Add(float64(ds.Len() - failed))
	if failed > 0 {
		documentsTotal.WithLabelValues("unreadable").Add(float64(failed))
	}
	for _, c := range ds.Columns {
		missing := 0
		for _, v := range ds.Column(c) {
			if v == nil {
				missing++
			}
		}
		if missing > 0 {
			fieldsMissingTotal.WithLabelValues(c).Add(float64(missing))
		}
	}
}

// RecordComparison counts one comparison and its highlighted rows.
func RecordComparison(outcome string, highlighted int) {
	comparisonsTotal.WithLabelValues(outcome).Inc()
	highlightedRowsTotal.Add(float64(highlighted))
}
