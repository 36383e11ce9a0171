package model

import "gonum.org/v1/gonum/mat"

// Fitter は学習可能なモデルのインターフェース
type Fitter interface {
	// Fit はモデルを訓練データで学習させる
	Fit(X, y mat.Matrix) error
}

// Predictor は予測可能なモデルのインターフェース
type Predictor interface {
	// Predict は入力データに対する予測を行う
	Predict(X mat.Matrix) (mat.Matrix, error)
}

// Regressor は1次元入力の回帰モデル
type Regressor interface {
	Fitter
	Predictor

	// PredictValue は単一の入力値に対する予測値を返す
	PredictValue(x float64) (float64, error)
}

// Clusterer は1次元入力のクラスタリングモデル
type Clusterer interface {
	Fitter
	Predictor

	// PredictCluster は新しいデータのクラスタIDを予測
	PredictCluster(X mat.Matrix) ([]int, error)

	// NClusters はクラスタ数を返す
	NClusters() int
}
