// Package metrics は回帰予測の評価指標を提供する。
package metrics

import (
	"math"

	"github.com/YuminosukeSato/soilsense/pkg/errors"
	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// MSE は平均二乗誤差（Mean Squared Error）を計算する
func MSE(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := checkPair("MSE", yTrue, yPred)
	if err != nil {
		return 0, err
	}

	// MSE = (1/n) * Σ(yTrue - yPred)²
	var sum float64
	for i := 0; i < n; i++ {
		diff := yTrue.AtVec(i) - yPred.AtVec(i)
		sum += diff * diff
	}
	return sum / float64(n), nil
}

// RMSE は平方根平均二乗誤差（Root Mean Squared Error）を計算する
func RMSE(yTrue, yPred *mat.VecDense) (float64, error) {
	mse, err := MSE(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(mse), nil
}

// MAE は平均絶対誤差（Mean Absolute Error）を計算する
func MAE(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := checkPair("MAE", yTrue, yPred)
	if err != nil {
		return 0, err
	}

	var sum float64
	for i := 0; i < n; i++ {
		sum += math.Abs(yTrue.AtVec(i) - yPred.AtVec(i))
	}
	return sum / float64(n), nil
}

// R2Score は決定係数（R²）を計算する。
// yTrue が定数（全変動0）の場合は定義できないのでエラーを返す。
func R2Score(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := checkPair("R2Score", yTrue, yPred)
	if err != nil {
		return 0, err
	}

	truth := make([]float64, n)
	for i := range truth {
		truth[i] = yTrue.AtVec(i)
	}
	yMean := stat.Mean(truth, nil)

	var tss, rss float64
	for i, t := range truth {
		p := yPred.AtVec(i)
		tss += (t - yMean) * (t - yMean)
		rss += (t - p) * (t - p)
	}
	if tss == 0 {
		return 0, errors.NewValueError("R2Score", "total sum of squares is zero (no variance in yTrue)")
	}

	// R² = 1 - RSS/TSS
	return 1 - rss/tss, nil
}

func checkPair(op string, yTrue, yPred *mat.VecDense) (int, error) {
	n := yTrue.Len()
	if n == 0 {
		return 0, errors.NewValueError(op, "empty vector")
	}
	if yPred.Len() != n {
		return 0, errors.NewDimensionError(op, n, yPred.Len(), 0)
	}
	return n, nil
}

// Regression は予測の評価結果をまとめたもの
type Regression struct {
	N    int
	RMSE float64
	MAE  float64
	// R2 は観測値が定数のとき NaN
	R2 float64
}

// MarshalZerologObject はzerologのイベントに評価指標を追加します。
func (r Regression) MarshalZerologObject(e *zerolog.Event) {
	e.Int("n", r.N).
		Float64("rmse", r.RMSE).
		Float64("mae", r.MAE).
		Float64("r2", r.R2)
}

// Evaluate は観測値と予測値の対から RMSE, MAE, R² をまとめて計算する
func Evaluate(observed, predicted []float64) (Regression, error) {
	if len(observed) == 0 {
		return Regression{}, errors.NewValueError("Evaluate", "empty vector")
	}
	if len(predicted) != len(observed) {
		return Regression{}, errors.NewDimensionError("Evaluate", len(observed), len(predicted), 0)
	}
	yTrue := mat.NewVecDense(len(observed), append([]float64(nil), observed...))
	yPred := mat.NewVecDense(len(predicted), append([]float64(nil), predicted...))

	r := Regression{N: len(observed)}
	var err error
	if r.RMSE, err = RMSE(yTrue, yPred); err != nil {
		return Regression{}, err
	}
	if r.MAE, err = MAE(yTrue, yPred); err != nil {
		return Regression{}, err
	}
	if r.R2, err = R2Score(yTrue, yPred); err != nil {
		var valErr *errors.ValueError
		if !errors.As(err, &valErr) {
			return Regression{}, err
		}
		r.R2 = math.NaN()
	}
	return r, nil
}
