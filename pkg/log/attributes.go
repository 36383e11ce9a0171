// Package log defines standard attribute keys for pipeline operations.
//
// These keys follow a hierarchical naming convention (e.g., "model.name",
// "data.samples") to enable structured log analysis and filtering.
package log

// Model and Operation Context
const (
	// ModelNameKey identifies the type of model.
	// Examples: "SVR", "KMeans"
	ModelNameKey = "model.name"

	// RunIDKey identifies one execution of the batch pipeline.
	RunIDKey = "run.id"

	// OperationKey specifies the operation being performed.
	OperationKey = "ml.operation"

	// ComponentKey identifies which package is performing the operation.
	// Examples: "svm", "cluster", "pipeline", "visualize"
	ComponentKey = "ml.component"

	// PhaseKey indicates the phase of the run.
	PhaseKey = "ml.phase"
)

// Data Shape
const (
	// SamplesKey indicates the number of samples (rows) in the dataset.
	SamplesKey = "data.samples"

	// TrainSamplesKey and TestSamplesKey record the split sizes.
	TrainSamplesKey = "data.train_samples"
	TestSamplesKey  = "data.test_samples"

	// SplitRatioKey records the train fraction used for the ordered split.
	SplitRatioKey = "split.ratio"
)

// Performance and Fit Metrics
const (
	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// IterationKey records the number of solver or update iterations.
	IterationKey = "training.iteration"

	// R2ScoreKey records R² coefficient of determination for regression.
	R2ScoreKey = "metrics.r2_score"

	// RMSEKey and MAEKey record regression errors on the evaluation subset.
	RMSEKey = "metrics.rmse"
	MAEKey  = "metrics.mae"

	// InertiaKey records the within-cluster sum of squares.
	InertiaKey = "metrics.inertia"

	// SupportVectorsKey records how many training points kept a nonzero coefficient.
	SupportVectorsKey = "model.n_support"

	// ClustersKey records the number of clusters.
	ClustersKey = "model.n_clusters"
)

// Error Context
const (
	// ErrorTypeKey categorizes the type of error encountered.
	ErrorTypeKey = "error.type"

	// StacktraceKey contains stack trace information for debugging.
	StacktraceKey = "error.stacktrace"

	// PathKey records a filesystem destination (the rendered image).
	PathKey = "output.path"
)

// Standard attribute values.
const (
	OperationSplit    = "split"
	OperationFit      = "fit"
	OperationPredict  = "predict"
	OperationAssemble = "assemble"
	OperationRender   = "render"

	PhaseTraining   = "training"
	PhaseEvaluation = "evaluation"
	PhaseReporting  = "reporting"
)
