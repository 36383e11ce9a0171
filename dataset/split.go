package dataset

import (
	"math"

	"github.com/YuminosukeSato/soilsense/pkg/errors"
)

// Split partitions ds by position: the first round(ratio·n) observations form
// train and the rest form test, both in dataset order. There is no shuffling,
// so the same dataset and ratio always give the same subsets.
//
// ratio must lie strictly between 0 and 1. If either subset would be empty
// Split returns an InsufficientDataError.
func Split(ds *Dataset, ratio float64) (train, test *Dataset, err error) {
	if !(ratio > 0 && ratio < 1) {
		return nil, nil, errors.NewValidationError("ratio", "must be in (0, 1)", ratio)
	}
	if ds == nil {
		return nil, nil, errors.NewDataError("dataset.Split", 0, "nil dataset")
	}

	n := ds.Len()
	nTrain := int(math.Round(ratio * float64(n)))
	if n < 2 || nTrain == 0 || nTrain == n {
		return nil, nil, errors.NewInsufficientDataError("dataset.Split", n, nTrain, n-nTrain)
	}

	train = &Dataset{obs: append([]Observation(nil), ds.obs[:nTrain]...)}
	test = &Dataset{obs: append([]Observation(nil), ds.obs[nTrain:]...)}
	return train, test, nil
}
