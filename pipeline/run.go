package pipeline

import (
	"context"
	"time"

	"github.com/YuminosukeSato/soilsense/dataset"
	"github.com/YuminosukeSato/soilsense/metrics"
	"github.com/YuminosukeSato/soilsense/pkg/errors"
	"github.com/YuminosukeSato/soilsense/pkg/log"
	"github.com/google/uuid"
)

// RegressorSummary describes the fitted regressor.
type RegressorSummary struct {
	C              float64
	Epsilon        float64
	Gamma          float64
	Intercept      float64
	SupportVectors int
	Iterations     int
}

// ClusterSummary describes the fitted cluster model.
type ClusterSummary struct {
	Centers    []float64
	Inertia    float64
	Iterations int
}

// Outcome is everything one run produced.
type Outcome struct {
	RunID  string
	Config Config

	Dataset *dataset.Dataset
	Train   *dataset.Dataset
	Test    *dataset.Dataset

	Results []Result

	// Metrics compares predictions with observations on the test subset.
	Metrics metrics.Regression
	TrainR2 float64

	Regressor RegressorSummary
	Clusters  ClusterSummary
}

// Point is a plotted (x, y) pair.
type Point struct {
	X, Y float64
}

// ClusterPoint is a plotted point tagged with its cluster id.
type ClusterPoint struct {
	X, Y    float64
	Cluster int
}

// Series holds the three point sets drawn on the scatter plot.
type Series struct {
	Raw        []Point
	Regression []Point
	Clusters   []ClusterPoint
}

// Series returns the raw observations, the regression predictions and the
// cluster assignments. Cluster points sit at the test observation's own
// measured moisture.
func (o *Outcome) Series() Series {
	var s Series
	for _, obs := range o.Dataset.Observations() {
		s.Raw = append(s.Raw, Point{X: obs.Input, Y: obs.Target})
	}
	for _, r := range o.Results {
		s.Regression = append(s.Regression, Point{X: r.Input, Y: r.Predicted})
		s.Clusters = append(s.Clusters, ClusterPoint{X: r.Input, Y: r.Observed, Cluster: r.Cluster})
	}
	return s
}

// Run executes the whole batch on ds. Every error is fatal and returned as is;
// nothing is retried and no fallback model is used.
func Run(ctx context.Context, ds *dataset.Dataset, opts ...Option) (*Outcome, error) {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if ds == nil {
		return nil, errors.NewDataError("pipeline.Run", 0, "nil dataset")
	}

	runID := uuid.New().String()
	logger := cfg.logger.With(log.RunIDKey, runID, log.ComponentKey, "pipeline")
	start := time.Now()

	train, test, err := dataset.Split(ds, cfg.SplitRatio)
	if err != nil {
		logger.Error("split failed", err)
		return nil, err
	}
	logger.Info("dataset split",
		log.OperationKey, log.OperationSplit,
		log.SamplesKey, ds.Len(),
		log.TrainSamplesKey, train.Len(),
		log.TestSamplesKey, test.Len(),
		log.SplitRatioKey, cfg.SplitRatio,
	)

	if err := ctx.Err(); err != nil {
		return nil, errors.WithStack(err)
	}
	svr := cfg.newRegressor(logger)
	if err := withProgress(cfg.progress, "Training SVR", func() error {
		return svr.Fit(train.Matrix(), train.TargetVector())
	}); err != nil {
		logger.Error("regressor fit failed", err, log.PhaseKey, log.PhaseTraining)
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, errors.WithStack(err)
	}
	km := cfg.newClusterer(logger)
	if err := withProgress(cfg.progress, "Training K-Means", func() error {
		return km.Fit(train.Matrix(), nil)
	}); err != nil {
		logger.Error("cluster fit failed", err, log.PhaseKey, log.PhaseTraining)
		return nil, err
	}

	results, err := Assemble(svr, km, test)
	if err != nil {
		logger.Error("assemble failed", err, log.PhaseKey, log.PhaseEvaluation)
		return nil, err
	}

	observed := make([]float64, len(results))
	predicted := make([]float64, len(results))
	for i, r := range results {
		observed[i] = r.Observed
		predicted[i] = r.Predicted
	}
	m, err := metrics.Evaluate(observed, predicted)
	if err != nil {
		return nil, err
	}
	trainR2, err := svr.Score(train.Matrix(), train.TargetVector())
	if err != nil {
		return nil, err
	}

	logger.Info("run complete",
		log.OperationKey, log.OperationAssemble,
		log.PhaseKey, log.PhaseEvaluation,
		log.RMSEKey, m.RMSE,
		log.MAEKey, m.MAE,
		log.R2ScoreKey, m.R2,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)

	return &Outcome{
		RunID:   runID,
		Config:  cfg,
		Dataset: ds,
		Train:   train,
		Test:    test,
		Results: results,
		Metrics: m,
		TrainR2: trainR2,
		Regressor: RegressorSummary{
			C:              cfg.C,
			Epsilon:        cfg.Epsilon,
			Gamma:          svr.Gamma(),
			Intercept:      svr.Intercept(),
			SupportVectors: len(svr.SupportVectors()),
			Iterations:     svr.NIterations(),
		},
		Clusters: ClusterSummary{
			Centers:    km.ClusterCenters(),
			Inertia:    km.Inertia(),
			Iterations: km.NIterations(),
		},
	}, nil
}

// withProgress runs fit inside the optional indicator. The indicator is
// stopped and joined before fit's result is returned.
func withProgress(p ProgressFunc, label string, fit func() error) error {
	if p == nil {
		return fit()
	}
	stop := p(label)
	err := fit()
	stop()
	return err
}
