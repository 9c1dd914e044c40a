package telemetry

// Histogram bucket definitions
var (
	// DispatchBuckets for end-to-end operation dispatch latency
	DispatchBuckets = []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1}

	// RowCountBuckets for row counts returned or affected per statement
	RowCountBuckets = []float64{0, 1, 10, 100, 1000, 10000, 100000}
)

// Dispatch metrics
var (
	// OperationsTotal counts dispatched operations by name and result (ok, error)
	OperationsTotal CounterVec = noopCounterVec{}

	// OperationDurationSeconds measures dispatch latency by operation name
	OperationDurationSeconds HistogramVec = noopHistogramVec{}
)

// Executor metrics
var (
	// RowsReturned measures rows returned per read statement
	RowsReturned Histogram = NoopStat{}

	// RowsAffected measures rows affected per write statement
	RowsAffected Histogram = NoopStat{}
)

// Ledger metrics
var (
	// InsightCount tracks the current size of the insight ledger
	InsightCount Gauge = NoopStat{}
)

// bindMetrics replaces the no-op metric variables with registered
// prometheus instruments. Called once from Initialize.
func bindMetrics() {
	OperationsTotal = NewCounterVec(
		"operations_total",
		"Dispatched operations by name and result",
		[]string{"operation", "result"},
	)

	OperationDurationSeconds = NewHistogramVec(
		"operation_duration_seconds",
		"Operation dispatch latency by operation name",
		[]string{"operation"},
		DispatchBuckets,
	)

	RowsReturned = NewHistogram(
		"rows_returned",
		"Rows returned per read statement",
		RowCountBuckets,
	)

	RowsAffected = NewHistogram(
		"rows_affected",
		"Rows affected per write statement",
		RowCountBuckets,
	)

	InsightCount = NewGauge(
		"insight_count",
		"Current number of recorded insights",
	)
}
