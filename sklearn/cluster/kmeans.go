// Package cluster は1次元入力のK-meansクラスタリングを提供する。
package cluster

import (
	"math"
	"sort"
	"sync"
	"time"

	"github.com/YuminosukeSato/soilsense/core/model"
	"github.com/YuminosukeSato/soilsense/pkg/errors"
	"github.com/YuminosukeSato/soilsense/pkg/log"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

const modelName = "KMeans"

// KMeans はLloydアルゴリズムによるK-means。
// 初期中心は学習データの異なる値から決定的に選ぶので、乱数は使わない。
type KMeans struct {
	model.BaseEstimator

	// ハイパーパラメータ
	nClusters int // クラスタ数
	maxIter   int // 最大更新回数

	logger log.Logger

	// 学習パラメータ
	clusterCenters_ []float64 // クラスタ中心（IDの順）
	labels_         []int     // 各学習サンプルのクラスタID
	inertia_        float64   // クラスタ内平方和
	nIter_          int       // 実行された更新回数

	mu sync.RWMutex
}

// KMeansOption はKMeansの設定オプション
type KMeansOption func(*KMeans)

// NewKMeans は新しいKMeansを作成
func NewKMeans(options ...KMeansOption) *KMeans {
	kmeans := &KMeans{
		nClusters: 3,
		maxIter:   100,
		logger:    log.NewNopLogger(),
	}
	for _, opt := range options {
		opt(kmeans)
	}
	return kmeans
}

// WithKMeansNClusters はクラスタ数を設定
func WithKMeansNClusters(n int) KMeansOption {
	return func(kmeans *KMeans) {
		kmeans.nClusters = n
	}
}

// WithKMeansMaxIter は最大更新回数を設定
func WithKMeansMaxIter(maxIter int) KMeansOption {
	return func(kmeans *KMeans) {
		kmeans.maxIter = maxIter
	}
}

// WithKMeansLogger はロガーを設定
func WithKMeansLogger(logger log.Logger) KMeansOption {
	return func(kmeans *KMeans) {
		if logger != nil {
			kmeans.logger = logger
		}
	}
}

// Fit は X（n×1）をクラスタリングする。y は使わないので nil でよい。
// 異なる値が nClusters 個未満なら FitError。
func (kmeans *KMeans) Fit(X, _ mat.Matrix) error {
	kmeans.mu.Lock()
	defer kmeans.mu.Unlock()

	start := time.Now()
	if kmeans.nClusters < 1 {
		return errors.NewValidationError("nClusters", "must be at least 1", kmeans.nClusters)
	}
	if kmeans.maxIter < 1 {
		return errors.NewValidationError("maxIter", "must be at least 1", kmeans.maxIter)
	}
	x, err := model.Column("KMeans.Fit", X)
	if err != nil {
		return err
	}

	distinct := distinctSorted(x)
	if len(distinct) < kmeans.nClusters {
		return errors.NewFitError(modelName, "fewer distinct inputs than clusters", errors.ErrDegenerateInput)
	}

	centers := initCenters(distinct, kmeans.nClusters)
	labels := make([]int, len(x))
	for i, v := range x {
		labels[i] = nearest(centers, v)
	}

	nIter := 0
	converged := false
	for nIter < kmeans.maxIter {
		updateCenters(centers, x, labels)
		nIter++

		changed := false
		for i, v := range x {
			if id := nearest(centers, v); id != labels[i] {
				labels[i] = id
				changed = true
			}
		}
		if !changed {
			converged = true
			break
		}
	}
	if !converged {
		errors.Warn(errors.NewConvergenceWarning(modelName, nIter, "assignments still changing"))
	}

	sq := make([]float64, len(x))
	for i, v := range x {
		d := v - centers[labels[i]]
		sq[i] = d * d
	}

	kmeans.clusterCenters_ = centers
	kmeans.labels_ = labels
	kmeans.inertia_ = floats.Sum(sq)
	kmeans.nIter_ = nIter
	kmeans.SetFitted()

	kmeans.logger.Info("model fitted",
		log.ModelNameKey, modelName,
		log.OperationKey, log.OperationFit,
		log.SamplesKey, len(x),
		log.ClustersKey, kmeans.nClusters,
		log.IterationKey, nIter,
		log.InertiaKey, kmeans.inertia_,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return nil
}

// initCenters は昇順の異なる値 d から d[round(c·(m-1)/(k-1))] を選ぶ。
// k=1 のときは中央の値。
func initCenters(distinct []float64, k int) []float64 {
	m := len(distinct)
	centers := make([]float64, k)
	if k == 1 {
		centers[0] = distinct[int(math.Round(float64(m-1)/2))]
		return centers
	}
	for c := range centers {
		idx := int(math.Round(float64(c) * float64(m-1) / float64(k-1)))
		centers[c] = distinct[idx]
	}
	return centers
}

// updateCenters は各中心を所属点の平均にする。点のないクラスタは前の中心を保つ。
func updateCenters(centers, x []float64, labels []int) {
	members := make([][]float64, len(centers))
	for i, v := range x {
		members[labels[i]] = append(members[labels[i]], v)
	}
	for c, pts := range members {
		if len(pts) > 0 {
			centers[c] = stat.Mean(pts, nil)
		}
	}
}

// nearest は |x-c| が最小の中心IDを返す。同距離なら小さいID。
func nearest(centers []float64, x float64) int {
	best := 0
	bestDist := math.Abs(x - centers[0])
	for c := 1; c < len(centers); c++ {
		if d := math.Abs(x - centers[c]); d < bestDist {
			best = c
			bestDist = d
		}
	}
	return best
}

func distinctSorted(x []float64) []float64 {
	sorted := append([]float64(nil), x...)
	sort.Float64s(sorted)
	out := sorted[:0]
	for i, v := range sorted {
		if i == 0 || v != sorted[i-1] {
			out = append(out, v)
		}
	}
	return out
}

// Predict は各入力のクラスタIDを n×1 行列で返す
func (kmeans *KMeans) Predict(X mat.Matrix) (mat.Matrix, error) {
	ids, err := kmeans.PredictCluster(X)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(ids))
	for i, id := range ids {
		out[i] = float64(id)
	}
	return model.ColumnMatrix(out), nil
}

// PredictCluster は新しいデータのクラスタIDを予測
func (kmeans *KMeans) PredictCluster(X mat.Matrix) ([]int, error) {
	kmeans.mu.RLock()
	defer kmeans.mu.RUnlock()

	if err := kmeans.RequireFitted(modelName, "PredictCluster"); err != nil {
		return nil, err
	}
	x, err := model.Column("KMeans.PredictCluster", X)
	if err != nil {
		return nil, err
	}
	ids := make([]int, len(x))
	for i, v := range x {
		ids[i] = nearest(kmeans.clusterCenters_, v)
	}
	return ids, nil
}

// PredictValue は単一の入力のクラスタIDを返す
func (kmeans *KMeans) PredictValue(x float64) (int, error) {
	kmeans.mu.RLock()
	defer kmeans.mu.RUnlock()

	if err := kmeans.RequireFitted(modelName, "PredictValue"); err != nil {
		return 0, err
	}
	if err := errors.CheckScalar("KMeans.PredictValue", x, 0); err != nil {
		return 0, err
	}
	return nearest(kmeans.clusterCenters_, x), nil
}

// NClusters はクラスタ数を返す
func (kmeans *KMeans) NClusters() int {
	return kmeans.nClusters
}

// ClusterCenters はクラスタ中心をID順に返す
func (kmeans *KMeans) ClusterCenters() []float64 {
	kmeans.mu.RLock()
	defer kmeans.mu.RUnlock()
	return append([]float64(nil), kmeans.clusterCenters_...)
}

// Labels は学習サンプルのクラスタIDを返す
func (kmeans *KMeans) Labels() []int {
	kmeans.mu.RLock()
	defer kmeans.mu.RUnlock()
	return append([]int(nil), kmeans.labels_...)
}

// Inertia はクラスタ内平方和を返す
func (kmeans *KMeans) Inertia() float64 {
	kmeans.mu.RLock()
	defer kmeans.mu.RUnlock()
	return kmeans.inertia_
}

// NIterations は実行された更新回数を返す
func (kmeans *KMeans) NIterations() int {
	kmeans.mu.RLock()
	defer kmeans.mu.RUnlock()
	return kmeans.nIter_
}
