package model

import (
	"github.com/YuminosukeSato/soilsense/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Column は n×1 行列を検証して値のスライスとして取り出す。
// 入力特徴量は常に1つ（加水量）なので、列数が1以外はDimensionErrorとする。
func Column(op string, X mat.Matrix) ([]float64, error) {
	if X == nil {
		return nil, errors.NewModelError(op, "empty data", errors.ErrEmptyData)
	}
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return nil, errors.NewModelError(op, "empty data", errors.ErrEmptyData)
	}
	if c != 1 {
		return nil, errors.NewDimensionError(op, 1, c, 1)
	}

	values := make([]float64, r)
	for i := 0; i < r; i++ {
		values[i] = X.At(i, 0)
	}
	if err := errors.CheckNumericalStability(op, values, 0); err != nil {
		return nil, err
	}
	return values, nil
}

// Target は X と行数が揃った目的変数（n×1）を取り出す
func Target(op string, y mat.Matrix, rows int) ([]float64, error) {
	if y == nil {
		return nil, errors.NewModelError(op, "empty target", errors.ErrEmptyData)
	}
	ry, cy := y.Dims()
	if ry != rows {
		return nil, errors.NewDimensionError(op, rows, ry, 0)
	}
	if cy != 1 {
		return nil, errors.NewValueError(op, "y must be a column vector")
	}

	values := make([]float64, ry)
	for i := 0; i < ry; i++ {
		values[i] = y.At(i, 0)
	}
	if err := errors.CheckNumericalStability(op, values, 0); err != nil {
		return nil, err
	}
	return values, nil
}

// ColumnMatrix は値のスライスを n×1 行列にする
func ColumnMatrix(values []float64) *mat.Dense {
	data := make([]float64, len(values))
	copy(data, values)
	return mat.NewDense(len(values), 1, data)
}
