// Package report prints a finished run as console tables.
package report

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/YuminosukeSato/soilsense/pipeline"
	"github.com/YuminosukeSato/soilsense/pkg/errors"
	"github.com/olekukonko/tablewriter"
)

// Section titles, in print order.
const (
	TitleRawData     = "=== Raw Data ==="
	TitlePredictions = "=== SVR Predictions ==="
	TitleClusters    = "=== K-Means Clusters ==="
	TitleSummary     = "=== Model Summary ==="
)

// errWriter keeps the first write error, since tablewriter drops them.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) Write(p []byte) (int, error) {
	if ew.err != nil {
		return 0, ew.err
	}
	n, err := ew.w.Write(p)
	if err != nil {
		ew.err = err
	}
	return n, err
}

// Print writes every section for out to w.
func Print(w io.Writer, out *pipeline.Outcome) error {
	if out == nil {
		return errors.NewValueError("report.Print", "nil outcome")
	}
	ew := &errWriter{w: w}

	section(ew, TitleRawData)
	raw := newTable(ew, "No", "Water Added (mL)", "Sensor Moisture (%)")
	for i, o := range out.Dataset.Observations() {
		raw.Append([]string{strconv.Itoa(i + 1), formatNumber(o.Input), formatNumber(o.Target)})
	}
	raw.Render()

	section(ew, TitlePredictions)
	pred := newTable(ew, "Test Input", "Observed", "Predicted")
	for _, r := range out.Results {
		pred.Append([]string{
			fmt.Sprintf("%.1f mL", r.Input),
			fmt.Sprintf("%.2f%%", r.Observed),
			fmt.Sprintf("%.2f%%", r.Predicted),
		})
	}
	pred.Render()

	section(ew, TitleClusters)
	clu := newTable(ew, "Test Input", "Cluster")
	for _, r := range out.Results {
		clu.Append([]string{fmt.Sprintf("%.1f mL", r.Input), strconv.Itoa(r.Cluster)})
	}
	clu.Render()

	section(ew, TitleSummary)
	sum := newTable(ew, "Item", "Value")
	sum.AppendBulk(summaryRows(out))
	sum.Render()

	if ew.err != nil {
		return errors.Wrap(ew.err, "write report")
	}
	return nil
}

func summaryRows(out *pipeline.Outcome) [][]string {
	rows := [][]string{
		{"Run ID", out.RunID},
		{"Split (train/test)", fmt.Sprintf("%d/%d", out.Train.Len(), out.Test.Len())},
		{"SVR C / epsilon / gamma", fmt.Sprintf("%g / %g / %g", out.Regressor.C, out.Regressor.Epsilon, out.Regressor.Gamma)},
		{"SVR support vectors", strconv.Itoa(out.Regressor.SupportVectors)},
		{"SVR intercept", fmt.Sprintf("%.4f", out.Regressor.Intercept)},
		{"SVR solver iterations", strconv.Itoa(out.Regressor.Iterations)},
		{"SVR train R²", formatMetric(out.TrainR2)},
		{"SVR test RMSE", formatMetric(out.Metrics.RMSE)},
		{"SVR test MAE", formatMetric(out.Metrics.MAE)},
		{"SVR test R²", formatMetric(out.Metrics.R2)},
	}
	for i, c := range out.Clusters.Centers {
		rows = append(rows, []string{fmt.Sprintf("Cluster %d center", i), fmt.Sprintf("%.2f mL", c)})
	}
	rows = append(rows,
		[]string{"K-Means inertia", fmt.Sprintf("%.2f", out.Clusters.Inertia)},
		[]string{"K-Means iterations", strconv.Itoa(out.Clusters.Iterations)},
	)
	return rows
}

func section(w io.Writer, title string) {
	fmt.Fprintf(w, "\n%s\n", title)
}

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	t := tablewriter.NewWriter(w)
	t.SetHeader(header)
	t.SetAutoFormatHeaders(false)
	t.SetAlignment(tablewriter.ALIGN_RIGHT)
	return t
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatMetric(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return fmt.Sprintf("%.4f", v)
}
