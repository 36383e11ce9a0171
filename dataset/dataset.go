// Package dataset holds the ordered (water added, sensor moisture) observations
// and the deterministic train/test split.
package dataset

import (
	"fmt"

	"github.com/YuminosukeSato/soilsense/core/model"
	"github.com/YuminosukeSato/soilsense/pkg/errors"
	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/mat"
)

// Observation is one measurement: Input is water added to the 100 g sample in
// mL, Target the sensor moisture reading in percent.
type Observation struct {
	Input  float64
	Target float64
}

// Dataset is an ordered, non-empty sequence of finite observations.
// It is never modified after New returns.
type Dataset struct {
	obs []Observation
}

// New validates obs and copies it into a Dataset.
func New(obs []Observation) (*Dataset, error) {
	if len(obs) == 0 {
		return nil, errors.NewDataError("dataset.New", 0, "no observations")
	}
	for i, o := range obs {
		if !errors.IsFinite(o.Input) || !errors.IsFinite(o.Target) {
			return nil, errors.NewDataError("dataset.New", i+1,
				fmt.Sprintf("non-finite value (input=%v, target=%v)", o.Input, o.Target))
		}
	}
	return &Dataset{obs: append([]Observation(nil), obs...)}, nil
}

// Len returns the number of observations.
func (d *Dataset) Len() int { return len(d.obs) }

// At returns the i-th observation.
func (d *Dataset) At(i int) Observation { return d.obs[i] }

// Observations returns a copy of the observations in order.
func (d *Dataset) Observations() []Observation {
	return append([]Observation(nil), d.obs...)
}

// Inputs returns the input column in order.
func (d *Dataset) Inputs() []float64 {
	out := make([]float64, len(d.obs))
	for i, o := range d.obs {
		out[i] = o.Input
	}
	return out
}

// Targets returns the target column in order.
func (d *Dataset) Targets() []float64 {
	out := make([]float64, len(d.obs))
	for i, o := range d.obs {
		out[i] = o.Target
	}
	return out
}

// Matrix returns the inputs as an n×1 design matrix.
func (d *Dataset) Matrix() *mat.Dense {
	return model.ColumnMatrix(d.Inputs())
}

// TargetVector returns the targets as an n×1 matrix.
func (d *Dataset) TargetVector() *mat.Dense {
	return model.ColumnMatrix(d.Targets())
}

// MarshalZerologObject adds the dataset shape and input range to a log event.
func (d *Dataset) MarshalZerologObject(e *zerolog.Event) {
	e.Int("samples", len(d.obs)).
		Float64("input_first", d.obs[0].Input).
		Float64("input_last", d.obs[len(d.obs)-1].Input)
}
