package pipeline

import (
	"github.com/YuminosukeSato/soilsense/pkg/log"
	"github.com/YuminosukeSato/soilsense/sklearn/cluster"
	"github.com/YuminosukeSato/soilsense/sklearn/svm"
)

// Config holds the constants of one run. The zero value is not usable; start
// from DefaultConfig.
type Config struct {
	// SplitRatio is the fraction of observations used for training.
	SplitRatio float64

	// Regressor settings.
	C         float64
	Epsilon   float64
	Bandwidth float64

	// Cluster settings.
	NClusters      int
	ClusterMaxIter int

	regressorOptions []svm.SVROption
	clusterOptions   []cluster.KMeansOption
	logger           log.Logger
	progress         ProgressFunc
}

// DefaultConfig returns the settings the measurements were analysed with:
// an 80/20 ordered split, a Gaussian kernel of bandwidth 10 with C=100 and
// ε=0.1, and three clusters with at most 100 update rounds.
func DefaultConfig() Config {
	return Config{
		SplitRatio:     0.8,
		C:              100,
		Epsilon:        0.1,
		Bandwidth:      10,
		NClusters:      3,
		ClusterMaxIter: 100,
		logger:         log.NewNopLogger(),
	}
}

// ProgressFunc starts a progress indicator for a long step and returns the
// function that stops it. Stop must not return before the indicator has
// finished writing.
type ProgressFunc func(label string) (stop func())

// Option configures Run.
type Option func(*Config)

// WithSplitRatio sets the train fraction.
func WithSplitRatio(ratio float64) Option {
	return func(c *Config) {
		c.SplitRatio = ratio
	}
}

// WithRegressorOptions appends options passed to svm.NewSVR after the
// configured defaults, so they take precedence.
func WithRegressorOptions(opts ...svm.SVROption) Option {
	return func(c *Config) {
		c.regressorOptions = append(c.regressorOptions, opts...)
	}
}

// WithClusterOptions appends options passed to cluster.NewKMeans after the
// configured defaults.
func WithClusterOptions(opts ...cluster.KMeansOption) Option {
	return func(c *Config) {
		c.clusterOptions = append(c.clusterOptions, opts...)
	}
}

// WithLogger sets the logger used by the run and both models.
func WithLogger(logger log.Logger) Option {
	return func(c *Config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithProgress wraps each model fit in a progress indicator.
func WithProgress(p ProgressFunc) Option {
	return func(c *Config) {
		c.progress = p
	}
}

func (c Config) newRegressor(logger log.Logger) *svm.SVR {
	opts := []svm.SVROption{
		svm.WithSVRC(c.C),
		svm.WithSVREpsilon(c.Epsilon),
		svm.WithSVRBandwidth(c.Bandwidth),
		svm.WithSVRLogger(logger),
	}
	return svm.NewSVR(append(opts, c.regressorOptions...)...)
}

func (c Config) newClusterer(logger log.Logger) *cluster.KMeans {
	opts := []cluster.KMeansOption{
		cluster.WithKMeansNClusters(c.NClusters),
		cluster.WithKMeansMaxIter(c.ClusterMaxIter),
		cluster.WithKMeansLogger(logger),
	}
	return cluster.NewKMeans(append(opts, c.clusterOptions...)...)
}
