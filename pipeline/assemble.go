// Package pipeline runs the batch: ordered split, regressor and cluster fits on
// the training subset, and assembly of per-observation results on the
// evaluation subset.
package pipeline

import (
	"github.com/YuminosukeSato/soilsense/core/model"
	"github.com/YuminosukeSato/soilsense/dataset"
	"github.com/YuminosukeSato/soilsense/pkg/errors"
	"github.com/rs/zerolog"
)

// Result pairs one evaluation observation with both model outputs.
type Result struct {
	Input     float64
	Observed  float64
	Predicted float64
	Cluster   int
}

// MarshalZerologObject adds the result fields to a log event.
func (r Result) MarshalZerologObject(e *zerolog.Event) {
	e.Float64("input", r.Input).
		Float64("observed", r.Observed).
		Float64("predicted", r.Predicted).
		Int("cluster", r.Cluster)
}

// Assemble predicts every observation of test with both fitted models and
// returns one Result per observation, in test order. It has no side effects.
func Assemble(reg model.Regressor, clu model.Clusterer, test *dataset.Dataset) ([]Result, error) {
	if reg == nil || clu == nil {
		return nil, errors.NewValueError("pipeline.Assemble", "both models are required")
	}
	if test == nil || test.Len() == 0 {
		return nil, errors.NewModelError("pipeline.Assemble", "empty evaluation subset", errors.ErrEmptyData)
	}

	X := test.Matrix()
	pred, err := reg.Predict(X)
	if err != nil {
		return nil, errors.Wrap(err, "predict regression")
	}
	ids, err := clu.PredictCluster(X)
	if err != nil {
		return nil, errors.Wrap(err, "predict clusters")
	}

	rows, _ := pred.Dims()
	if rows != test.Len() {
		return nil, errors.NewDimensionError("pipeline.Assemble", test.Len(), rows, 0)
	}
	if len(ids) != test.Len() {
		return nil, errors.NewDimensionError("pipeline.Assemble", test.Len(), len(ids), 0)
	}

	results := make([]Result, test.Len())
	for i := range results {
		o := test.At(i)
		results[i] = Result{
			Input:     o.Input,
			Observed:  o.Target,
			Predicted: pred.At(i, 0),
			Cluster:   ids[i],
		}
	}
	return results, nil
}
