package cluster

import (
	"math"
	"testing"

	"github.com/YuminosukeSato/soilsense/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

func column(v []float64) *mat.Dense {
	return mat.NewDense(len(v), 1, append([]float64(nil), v...))
}

// 加水量 0..80 mL
var trainInputs = []float64{0, 10, 20, 30, 40, 50, 60, 70, 80}

func TestKMeansFit(t *testing.T) {
	km := NewKMeans()
	if err := km.Fit(column(trainInputs), nil); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	wantCenters := []float64{10, 45, 75}
	centers := km.ClusterCenters()
	if len(centers) != len(wantCenters) {
		t.Fatalf("got %d centers, want %d", len(centers), len(wantCenters))
	}
	for i, want := range wantCenters {
		if math.Abs(centers[i]-want) > 1e-9 {
			t.Errorf("center[%d] = %v, want %v", i, centers[i], want)
		}
	}

	wantLabels := []int{0, 0, 0, 1, 1, 1, 1, 2, 2}
	labels := km.Labels()
	for i, want := range wantLabels {
		if labels[i] != want {
			t.Errorf("label[%d] = %d, want %d", i, labels[i], want)
		}
	}

	if km.NIterations() != 1 {
		t.Errorf("NIterations() = %d, want 1", km.NIterations())
	}
	// 200 + 500 + 50
	if math.Abs(km.Inertia()-750) > 1e-9 {
		t.Errorf("Inertia() = %v, want 750", km.Inertia())
	}
}

func TestKMeansCentersAscendWithIDs(t *testing.T) {
	km := NewKMeans()
	if err := km.Fit(column(trainInputs), nil); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	centers := km.ClusterCenters()
	for i := 1; i < len(centers); i++ {
		if centers[i] <= centers[i-1] {
			t.Errorf("centers not ascending: %v", centers)
		}
	}
}

func TestKMeansPredict(t *testing.T) {
	km := NewKMeans()
	if err := km.Fit(column(trainInputs), nil); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	tests := []struct {
		x    float64
		want int
	}{
		{x: 90, want: 2},
		{x: 100, want: 2},
		{x: -5, want: 0},
		{x: 27.5, want: 0}, // 10 と 45 の中点 → 小さいID
		{x: 60, want: 1},   // 45 と 75 の中点 → 小さいID
		{x: 61, want: 2},
	}
	for _, tt := range tests {
		got, err := km.PredictValue(tt.x)
		if err != nil {
			t.Fatalf("PredictValue(%v) failed: %v", tt.x, err)
		}
		if got != tt.want {
			t.Errorf("PredictValue(%v) = %d, want %d", tt.x, got, tt.want)
		}
	}

	pred, err := km.Predict(column([]float64{90, 100, 0}))
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	want := []float64{2, 2, 0}
	for i := range want {
		if pred.At(i, 0) != want[i] {
			t.Errorf("Predict row %d = %v, want %v", i, pred.At(i, 0), want[i])
		}
	}
}

func TestKMeansLabelRange(t *testing.T) {
	inputs := []float64{3, 8, 9, 11, 17, 18, 25, 40, 41, 90}
	for k := 1; k <= 4; k++ {
		km := NewKMeans(WithKMeansNClusters(k))
		if err := km.Fit(column(inputs), nil); err != nil {
			t.Fatalf("k=%d: Fit failed: %v", k, err)
		}
		ids, err := km.PredictCluster(column([]float64{-100, 0, 12.5, 50, 1000}))
		if err != nil {
			t.Fatalf("k=%d: PredictCluster failed: %v", k, err)
		}
		for _, id := range append(ids, km.Labels()...) {
			if id < 0 || id >= k {
				t.Errorf("k=%d: id %d out of range", k, id)
			}
		}
		if km.NIterations() > 100 {
			t.Errorf("k=%d: NIterations() = %d exceeds cap", k, km.NIterations())
		}
	}
}

func TestKMeansIterationCap(t *testing.T) {
	var warnings []error
	errors.SetWarningHandler(func(w error) { warnings = append(warnings, w) })
	defer errors.SetWarningHandler(func(w error) {})

	// 2回目の更新で収束するデータ
	inputs := []float64{3, 8, 9, 11, 17, 18}

	capped := NewKMeans(WithKMeansNClusters(2), WithKMeansMaxIter(1))
	if err := capped.Fit(column(inputs), nil); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	if capped.NIterations() != 1 {
		t.Errorf("NIterations() = %d, want 1", capped.NIterations())
	}
	if len(warnings) != 1 {
		t.Fatalf("expected 1 convergence warning, got %d", len(warnings))
	}
	var cw *errors.ConvergenceWarning
	if !errors.As(warnings[0], &cw) {
		t.Errorf("expected ConvergenceWarning, got %v", warnings[0])
	}

	free := NewKMeans(WithKMeansNClusters(2))
	if err := free.Fit(column(inputs), nil); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	if free.NIterations() != 2 {
		t.Errorf("NIterations() = %d, want 2", free.NIterations())
	}
	centers := free.ClusterCenters()
	if math.Abs(centers[0]-7.75) > 1e-9 || math.Abs(centers[1]-17.5) > 1e-9 {
		t.Errorf("centers = %v, want [7.75 17.5]", centers)
	}
}

func TestKMeansSingleCluster(t *testing.T) {
	km := NewKMeans(WithKMeansNClusters(1))
	if err := km.Fit(column([]float64{0, 10, 20, 30}), nil); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	if c := km.ClusterCenters(); len(c) != 1 || c[0] != 15 {
		t.Errorf("centers = %v, want [15]", c)
	}
}

func TestKMeansDeterministic(t *testing.T) {
	a := NewKMeans()
	b := NewKMeans()
	if err := a.Fit(column(trainInputs), nil); err != nil {
		t.Fatal(err)
	}
	if err := b.Fit(column(trainInputs), nil); err != nil {
		t.Fatal(err)
	}
	ca, cb := a.ClusterCenters(), b.ClusterCenters()
	for i := range ca {
		if ca[i] != cb[i] {
			t.Errorf("center[%d] differs: %v vs %v", i, ca[i], cb[i])
		}
	}
}

func TestKMeansFitErrors(t *testing.T) {
	tests := []struct {
		name  string
		km    *KMeans
		X     mat.Matrix
		check func(t *testing.T, err error)
	}{
		{
			name: "fewer distinct values than clusters",
			km:   NewKMeans(),
			X:    column([]float64{10, 10, 20, 20}),
			check: func(t *testing.T, err error) {
				var fitErr *errors.FitError
				if !errors.As(err, &fitErr) {
					t.Fatalf("expected FitError, got %v", err)
				}
				if fitErr.Model != "KMeans" {
					t.Errorf("Model = %q, want KMeans", fitErr.Model)
				}
			},
		},
		{
			name: "two feature columns",
			km:   NewKMeans(),
			X:    mat.NewDense(3, 2, []float64{0, 1, 2, 3, 4, 5}),
			check: func(t *testing.T, err error) {
				var dimErr *errors.DimensionError
				if !errors.As(err, &dimErr) {
					t.Fatalf("expected DimensionError, got %v", err)
				}
			},
		},
		{
			name: "zero clusters",
			km:   NewKMeans(WithKMeansNClusters(0)),
			X:    column(trainInputs),
			check: func(t *testing.T, err error) {
				var valErr *errors.ValidationError
				if !errors.As(err, &valErr) {
					t.Fatalf("expected ValidationError, got %v", err)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.km.Fit(tt.X, nil)
			if err == nil {
				t.Fatal("expected error")
			}
			tt.check(t, err)
		})
	}
}

func TestKMeansNotFitted(t *testing.T) {
	km := NewKMeans()
	var nfErr *errors.NotFittedError
	if _, err := km.PredictCluster(column([]float64{1})); !errors.As(err, &nfErr) {
		t.Errorf("PredictCluster: expected NotFittedError, got %v", err)
	}
	if _, err := km.PredictValue(1); !errors.As(err, &nfErr) {
		t.Errorf("PredictValue: expected NotFittedError, got %v", err)
	}
}
