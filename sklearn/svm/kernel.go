package svm

import (
	"math"

	"github.com/YuminosukeSato/soilsense/core/parallel"
	"gonum.org/v1/gonum/mat"
)

// gramParallelThreshold 以下の行数ではGram行列を逐次計算する
const gramParallelThreshold = 1000

// rbf はガウシアンカーネル exp(-γ(a-b)²)
func rbf(gamma, a, b float64) float64 {
	d := a - b
	return math.Exp(-gamma * d * d)
}

// gammaFromBandwidth はバンド幅 σ から γ = 1/(2σ²) を求める
func gammaFromBandwidth(bandwidth float64) float64 {
	return 1.0 / (2.0 * bandwidth * bandwidth)
}

// gramMatrix は入力同士のカーネル行列 K[i][j] = rbf(x_i, x_j) を作る。
// 各ワーカーは自分の担当行だけを書くので、並列でも結果は同じ。
func gramMatrix(x []float64, gamma float64) *mat.SymDense {
	n := len(x)
	data := make([]float64, n*n)
	parallel.ParallelizeWithThreshold(n, gramParallelThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			row := data[i*n : (i+1)*n]
			for j := range row {
				row[j] = rbf(gamma, x[i], x[j])
			}
		}
	})
	return mat.NewSymDense(n, data)
}
