// Package svm はガウシアンカーネルによる ε-SVR（サポートベクター回帰）を提供する。
package svm

import (
	"math"
	"sort"
	"sync"
	"time"

	"github.com/YuminosukeSato/soilsense/core/model"
	"github.com/YuminosukeSato/soilsense/metrics"
	"github.com/YuminosukeSato/soilsense/pkg/errors"
	"github.com/YuminosukeSato/soilsense/pkg/log"
	"gonum.org/v1/gonum/mat"
)

const modelName = "SVR"

// SVR はガウシアンカーネル ε-SVR。入力は1次元（加水量）。
// 学習後は不変で、予測は純粋関数。
type SVR struct {
	model.BaseEstimator

	// ハイパーパラメータ
	c         float64 // 箱制約
	epsilon   float64 // ε-insensitive 損失の幅
	bandwidth float64 // カーネルのバンド幅 σ
	gamma     float64 // 0 のときは bandwidth から求める
	tol       float64 // SMO の停止許容誤差
	maxIter   int     // SMO の最大反復数

	logger log.Logger

	// 学習パラメータ
	supportVectors_ []float64 // 係数が0でない学習入力
	dualCoef_       []float64 // 対応する α_i - α_i*
	intercept_      float64
	gamma_          float64
	nIter_          int

	mu sync.RWMutex
}

// SVROption はSVRの設定オプション
type SVROption func(*SVR)

// NewSVR は新しいSVRを作成
func NewSVR(options ...SVROption) *SVR {
	svr := &SVR{
		c:         100.0,
		epsilon:   0.1,
		bandwidth: 10.0,
		tol:       1e-3,
		maxIter:   100000,
		logger:    log.NewNopLogger(),
	}
	for _, opt := range options {
		opt(svr)
	}
	return svr
}

// WithSVRC は箱制約 C を設定
func WithSVRC(c float64) SVROption {
	return func(s *SVR) {
		s.c = c
	}
}

// WithSVREpsilon は ε を設定
func WithSVREpsilon(epsilon float64) SVROption {
	return func(s *SVR) {
		s.epsilon = epsilon
	}
}

// WithSVRBandwidth はカーネルのバンド幅 σ を設定（γ = 1/(2σ²)）
func WithSVRBandwidth(bandwidth float64) SVROption {
	return func(s *SVR) {
		s.bandwidth = bandwidth
	}
}

// WithSVRGamma は γ を直接設定する。バンド幅より優先される。
func WithSVRGamma(gamma float64) SVROption {
	return func(s *SVR) {
		s.gamma = gamma
	}
}

// WithSVRTol は停止許容誤差を設定
func WithSVRTol(tol float64) SVROption {
	return func(s *SVR) {
		s.tol = tol
	}
}

// WithSVRMaxIter は最大反復数を設定
func WithSVRMaxIter(maxIter int) SVROption {
	return func(s *SVR) {
		s.maxIter = maxIter
	}
}

// WithSVRLogger はロガーを設定
func WithSVRLogger(logger log.Logger) SVROption {
	return func(s *SVR) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func (s *SVR) validateParams() error {
	switch {
	case !(s.c > 0) || math.IsInf(s.c, 0):
		return errors.NewValidationError("C", "must be positive and finite", s.c)
	case !(s.epsilon >= 0) || math.IsInf(s.epsilon, 0):
		return errors.NewValidationError("epsilon", "must be non-negative and finite", s.epsilon)
	case s.gamma == 0 && (!(s.bandwidth > 0) || math.IsInf(s.bandwidth, 0)):
		return errors.NewValidationError("bandwidth", "must be positive and finite", s.bandwidth)
	case s.gamma < 0 || math.IsNaN(s.gamma) || math.IsInf(s.gamma, 0):
		return errors.NewValidationError("gamma", "must be positive and finite", s.gamma)
	case !(s.tol > 0):
		return errors.NewValidationError("tol", "must be positive", s.tol)
	case s.maxIter <= 0:
		return errors.NewValidationError("maxIter", "must be positive", s.maxIter)
	}
	return nil
}

// Fit は X（n×1）と y（n×1）で SMO により双対問題を解く。
// 入力の異なる値が2つ未満、または反復上限までに収束しない場合は FitError。
func (s *SVR) Fit(X, y mat.Matrix) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	if err := s.validateParams(); err != nil {
		return err
	}
	x, err := model.Column("SVR.Fit", X)
	if err != nil {
		return err
	}
	target, err := model.Target("SVR.Fit", y, len(x))
	if err != nil {
		return err
	}
	if countDistinct(x) < 2 {
		return errors.NewFitError(modelName, "need at least 2 distinct inputs", errors.ErrDegenerateInput)
	}

	gamma := s.gamma
	if gamma == 0 {
		gamma = gammaFromBandwidth(s.bandwidth)
	}

	solver := newSMOSolver(gramMatrix(x, gamma), target, s.c, s.epsilon, s.tol, s.maxIter)
	sol, err := solver.solve()
	if err != nil {
		return errors.NewFitError(modelName, "numerical failure in solver", err)
	}
	if !sol.converged {
		w := errors.NewConvergenceWarning(modelName, sol.iterations, "SMO stopping tolerance not met")
		return errors.NewFitError(modelName, "solver did not converge", w)
	}

	s.supportVectors_ = s.supportVectors_[:0]
	s.dualCoef_ = s.dualCoef_[:0]
	for i, coef := range sol.coef {
		if coef != 0 {
			s.supportVectors_ = append(s.supportVectors_, x[i])
			s.dualCoef_ = append(s.dualCoef_, coef)
		}
	}
	s.intercept_ = -sol.rho
	s.gamma_ = gamma
	s.nIter_ = sol.iterations
	s.SetFitted()

	s.logger.Info("model fitted",
		log.ModelNameKey, modelName,
		log.OperationKey, log.OperationFit,
		log.SamplesKey, len(x),
		log.SupportVectorsKey, len(s.supportVectors_),
		log.IterationKey, sol.iterations,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return nil
}

// Predict は各入力に対して Σ coef_i K(sv_i, x) + b を返す（n×1）
func (s *SVR) Predict(X mat.Matrix) (mat.Matrix, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.RequireFitted(modelName, "Predict"); err != nil {
		return nil, err
	}
	x, err := model.Column("SVR.Predict", X)
	if err != nil {
		return nil, err
	}

	pred := make([]float64, len(x))
	for i, v := range x {
		pred[i] = s.decision(v)
	}
	return model.ColumnMatrix(pred), nil
}

// PredictValue は単一の入力に対する予測値を返す。[0,100] への切り詰めはしない。
func (s *SVR) PredictValue(x float64) (float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.RequireFitted(modelName, "PredictValue"); err != nil {
		return 0, err
	}
	if err := errors.CheckScalar("SVR.PredictValue", x, 0); err != nil {
		return 0, err
	}
	return s.decision(x), nil
}

func (s *SVR) decision(x float64) float64 {
	sum := s.intercept_
	for i, sv := range s.supportVectors_ {
		sum += s.dualCoef_[i] * rbf(s.gamma_, sv, x)
	}
	return sum
}

// Score は決定係数 R² を返す
func (s *SVR) Score(X, y mat.Matrix) (float64, error) {
	pred, err := s.Predict(X)
	if err != nil {
		return 0, err
	}
	rows, _ := pred.Dims()
	target, err := model.Target("SVR.Score", y, rows)
	if err != nil {
		return 0, err
	}
	yPred := mat.NewVecDense(rows, mat.Col(nil, 0, pred))
	return metrics.R2Score(mat.NewVecDense(rows, target), yPred)
}

// SupportVectors は係数が0でない学習入力を返す
func (s *SVR) SupportVectors() []float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]float64(nil), s.supportVectors_...)
}

// DualCoef はサポートベクターごとの α_i - α_i* を返す
func (s *SVR) DualCoef() []float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]float64(nil), s.dualCoef_...)
}

// Intercept はバイアス項 b を返す
func (s *SVR) Intercept() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.intercept_
}

// Gamma は学習に使ったカーネル係数 γ を返す
func (s *SVR) Gamma() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gamma_
}

// NIterations はSMOの反復回数を返す
func (s *SVR) NIterations() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nIter_
}

func countDistinct(x []float64) int {
	sorted := append([]float64(nil), x...)
	sort.Float64s(sorted)
	n := 0
	for i, v := range sorted {
		if i == 0 || v != sorted[i-1] {
			n++
		}
	}
	return n
}
