package svm

import (
	"math"

	"github.com/YuminosukeSato/soilsense/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// tau は曲率が0以下になったときの下限値
const tau = 1e-12

// smoSolution は ε-SVR 双対問題の解
type smoSolution struct {
	coef       []float64 // α_i - α_i*
	rho        float64   // 切片は -rho
	iterations int
	converged  bool
}

// smoSolver は ε-SVR の双対問題
//
//	min ½βᵀQβ + pᵀβ  s.t. Σ y_s β_s = 0, 0 ≤ β ≤ C
//
// を 2n 変数上で解く。β の前半 n 個が α、後半 n 個が α*。
// Q_st = y_s y_t K(x_{s mod n}, x_{t mod n})。
type smoSolver struct {
	k       *mat.SymDense
	n       int
	c       float64
	tol     float64
	maxIter int

	sign  []float64 // y_s ∈ {+1, -1}
	beta  []float64
	grad  []float64
	qDiag []float64
}

func newSMOSolver(k *mat.SymDense, target []float64, c, epsilon, tol float64, maxIter int) *smoSolver {
	n := len(target)
	l := 2 * n
	s := &smoSolver{
		k:       k,
		n:       n,
		c:       c,
		tol:     tol,
		maxIter: maxIter,
		sign:    make([]float64, l),
		beta:    make([]float64, l),
		grad:    make([]float64, l),
		qDiag:   make([]float64, l),
	}
	for i := 0; i < n; i++ {
		s.sign[i] = 1
		s.sign[i+n] = -1
		// β = 0 なので勾配の初期値は p そのもの
		s.grad[i] = epsilon - target[i]
		s.grad[i+n] = epsilon + target[i]
		s.qDiag[i] = k.At(i, i)
		s.qDiag[i+n] = k.At(i, i)
	}
	return s
}

func (s *smoSolver) q(a, b int) float64 {
	return s.sign[a] * s.sign[b] * s.k.At(a%s.n, b%s.n)
}

func (s *smoSolver) inUp(t int) bool {
	if s.sign[t] > 0 {
		return s.beta[t] < s.c
	}
	return s.beta[t] > 0
}

func (s *smoSolver) inLow(t int) bool {
	if s.sign[t] > 0 {
		return s.beta[t] > 0
	}
	return s.beta[t] < s.c
}

// selectWorkingSet は最大違反ペアを二次情報で選ぶ。
// 停止条件を満たしたら ok=false を返す。
func (s *smoSolver) selectWorkingSet() (i, j int, ok bool) {
	gmax := math.Inf(-1)
	gmax2 := math.Inf(-1)
	i = -1
	for t := range s.beta {
		if s.inUp(t) {
			if v := -s.sign[t] * s.grad[t]; v >= gmax {
				gmax = v
				i = t
			}
		}
	}

	j = -1
	objMin := math.Inf(1)
	for t := range s.beta {
		if !s.inLow(t) {
			continue
		}
		yg := s.sign[t] * s.grad[t]
		if yg >= gmax2 {
			gmax2 = yg
		}
		if i < 0 {
			continue
		}
		b := gmax + yg
		if b > 0 {
			a := s.qDiag[i] + s.qDiag[t] - 2*s.sign[i]*s.sign[t]*s.q(i, t)
			if a <= 0 {
				a = tau
			}
			if obj := -b * b / a; obj <= objMin {
				objMin = obj
				j = t
			}
		}
	}

	if gmax+gmax2 < s.tol || j < 0 {
		return -1, -1, false
	}
	return i, j, true
}

// update は (i, j) の2変数部分問題を解析的に解き、箱制約に収める
func (s *smoSolver) update(i, j int) {
	c := s.c
	b := s.beta
	oldI, oldJ := b[i], b[j]

	if s.sign[i] != s.sign[j] {
		quad := s.qDiag[i] + s.qDiag[j] + 2*s.q(i, j)
		if quad <= 0 {
			quad = tau
		}
		delta := (-s.grad[i] - s.grad[j]) / quad
		diff := b[i] - b[j]
		b[i] += delta
		b[j] += delta
		if diff > 0 {
			if b[j] < 0 {
				b[j] = 0
				b[i] = diff
			}
			if b[i] > c {
				b[i] = c
				b[j] = c - diff
			}
		} else {
			if b[i] < 0 {
				b[i] = 0
				b[j] = -diff
			}
			if b[j] > c {
				b[j] = c
				b[i] = c + diff
			}
		}
	} else {
		quad := s.qDiag[i] + s.qDiag[j] - 2*s.q(i, j)
		if quad <= 0 {
			quad = tau
		}
		delta := (s.grad[i] - s.grad[j]) / quad
		sum := b[i] + b[j]
		b[i] -= delta
		b[j] += delta
		if sum > c {
			if b[i] > c {
				b[i] = c
				b[j] = sum - c
			}
			if b[j] > c {
				b[j] = c
				b[i] = sum - c
			}
		} else {
			if b[j] < 0 {
				b[j] = 0
				b[i] = sum
			}
			if b[i] < 0 {
				b[i] = 0
				b[j] = sum
			}
		}
	}

	dI, dJ := b[i]-oldI, b[j]-oldJ
	for t := range s.grad {
		s.grad[t] += s.q(t, i)*dI + s.q(t, j)*dJ
	}
}

// calculateRho は自由変数の y·G の平均、なければ上下界の中点を返す
func (s *smoSolver) calculateRho() float64 {
	ub := math.Inf(1)
	lb := math.Inf(-1)
	var sum float64
	nFree := 0
	for t := range s.beta {
		yg := s.sign[t] * s.grad[t]
		switch {
		case s.beta[t] >= s.c:
			if s.sign[t] < 0 {
				ub = math.Min(ub, yg)
			} else {
				lb = math.Max(lb, yg)
			}
		case s.beta[t] <= 0:
			if s.sign[t] > 0 {
				ub = math.Min(ub, yg)
			} else {
				lb = math.Max(lb, yg)
			}
		default:
			sum += yg
			nFree++
		}
	}
	if nFree > 0 {
		return sum / float64(nFree)
	}
	return (ub + lb) / 2
}

func (s *smoSolver) solve() (*smoSolution, error) {
	sol := &smoSolution{}
	for {
		i, j, ok := s.selectWorkingSet()
		if !ok {
			sol.converged = true
			break
		}
		if sol.iterations >= s.maxIter {
			break
		}
		sol.iterations++
		s.update(i, j)
		if err := errors.CheckScalar("smo_gradient", s.grad[i], sol.iterations); err != nil {
			return nil, err
		}
		if err := errors.CheckScalar("smo_gradient", s.grad[j], sol.iterations); err != nil {
			return nil, err
		}
	}
	if err := errors.CheckNumericalStability("smo_gradient", s.grad, sol.iterations); err != nil {
		return nil, err
	}

	sol.rho = s.calculateRho()
	sol.coef = make([]float64, s.n)
	for i := range sol.coef {
		sol.coef[i] = s.beta[i] - s.beta[i+s.n]
	}
	return sol, nil
}
