// Package visualize draws the run as a static scatter plot.
package visualize

import (
	"image/color"
	"os"

	"github.com/YuminosukeSato/soilsense/pipeline"
	"github.com/YuminosukeSato/soilsense/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// Image size in pixels and the resolution used to reach it.
const (
	Width  = 800
	Height = 600
	DPI    = 96
)

// Labels of the chart.
const (
	Title       = "Model Predictions"
	XLabel      = "Water Added (mL)"
	YLabel      = "Sensor Moisture (%)"
	LegendRaw   = "Raw Data"
	LegendSVR   = "SVR Prediction"
	LegendKMean = "K-Means Cluster"
)

// Both axes are fixed to this range.
const (
	axisMin = 0
	axisMax = 100
)

var (
	rawColor = color.RGBA{B: 255, A: 255}
	svrColor = color.RGBA{R: 255, A: 255}

	// clusterColors is indexed by cluster id and cycles for larger ids.
	clusterColors = []color.RGBA{
		{G: 255, A: 255},
		{R: 255, B: 255, A: 255},
		{G: 255, B: 255, A: 255},
	}
)

// Render writes s as an 800×600 PNG to path. Any failure, including a panic
// inside the plotting library, is returned as a RenderError.
func Render(path string, s pipeline.Series) error {
	err := render(path, s)
	var renderErr *errors.RenderError
	if err != nil && !errors.As(err, &renderErr) {
		return errors.NewRenderError(path, err)
	}
	return err
}

func render(path string, s pipeline.Series) (err error) {
	defer errors.Recover(&err, "visualize.Render")

	p, err := newPlot(s)
	if err != nil {
		return errors.NewRenderError(path, err)
	}

	c := vgimg.NewWith(
		vgimg.UseWH(vg.Length(Width)*vg.Inch/DPI, vg.Length(Height)*vg.Inch/DPI),
		vgimg.UseDPI(DPI),
	)
	p.Draw(draw.New(c))

	f, err := os.Create(path)
	if err != nil {
		return errors.NewRenderError(path, err)
	}
	if _, err := (vgimg.PngCanvas{Canvas: c}).WriteTo(f); err != nil {
		_ = f.Close()
		return errors.NewRenderError(path, err)
	}
	if err := f.Close(); err != nil {
		return errors.NewRenderError(path, err)
	}
	return nil
}

func newPlot(s pipeline.Series) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = Title
	p.X.Label.Text = XLabel
	p.Y.Label.Text = YLabel
	p.Legend.Top = true
	p.Legend.Left = true
	p.Add(plotter.NewGrid())

	raw := make(plotter.XYs, len(s.Raw))
	for i, pt := range s.Raw {
		raw[i] = plotter.XY{X: pt.X, Y: pt.Y}
	}
	if err := addScatter(p, raw, rawColor, draw.CircleGlyph{}, vg.Points(4), LegendRaw); err != nil {
		return nil, errors.Wrap(err, "raw data")
	}

	reg := make(plotter.XYs, len(s.Regression))
	for i, pt := range s.Regression {
		reg[i] = plotter.XY{X: pt.X, Y: pt.Y}
	}
	if err := addScatter(p, reg, svrColor, draw.CircleGlyph{}, vg.Points(4), LegendSVR); err != nil {
		return nil, errors.Wrap(err, "regression")
	}

	// クラスタごとに色を変える。凡例は最初のクラスタで1つだけ。
	groups := map[int]plotter.XYs{}
	maxID := -1
	for _, pt := range s.Clusters {
		groups[pt.Cluster] = append(groups[pt.Cluster], plotter.XY{X: pt.X, Y: pt.Y})
		if pt.Cluster > maxID {
			maxID = pt.Cluster
		}
	}
	legend := LegendKMean
	for id := 0; id <= maxID; id++ {
		col := clusterColors[id%len(clusterColors)]
		if err := addScatter(p, groups[id], col, draw.TriangleGlyph{}, vg.Points(7), legend); err != nil {
			return nil, errors.Wrapf(err, "cluster %d", id)
		}
		if len(groups[id]) > 0 {
			legend = ""
		}
	}

	p.X.Min, p.X.Max = axisMin, axisMax
	p.Y.Min, p.Y.Max = axisMin, axisMax
	return p, nil
}

// addScatter adds a filled-glyph series. Empty series are skipped.
func addScatter(p *plot.Plot, xys plotter.XYs, col color.Color, shape draw.GlyphDrawer, radius vg.Length, legend string) error {
	if len(xys) == 0 {
		return nil
	}
	sc, err := plotter.NewScatter(xys)
	if err != nil {
		return err
	}
	sc.GlyphStyle.Color = col
	sc.GlyphStyle.Shape = shape
	sc.GlyphStyle.Radius = radius
	p.Add(sc)
	if legend != "" {
		p.Legend.Add(legend, sc)
	}
	return nil
}
