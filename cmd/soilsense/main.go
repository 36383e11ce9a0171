// Command soilsense fits the moisture models to the bundled measurements,
// prints the report and writes plot.png to the working directory.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/YuminosukeSato/soilsense/dataset"
	"github.com/YuminosukeSato/soilsense/pipeline"
	"github.com/YuminosukeSato/soilsense/pkg/log"
	"github.com/YuminosukeSato/soilsense/pkg/progress"
	"github.com/YuminosukeSato/soilsense/report"
	"github.com/YuminosukeSato/soilsense/visualize"
)

const plotPath = "plot.png"

func main() {
	logger := log.SetupLogger("info")
	if err := run(context.Background(), os.Stdout, logger); err != nil {
		logger.Error("soilsense failed", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, stdout io.Writer, logger log.Logger) error {
	ds, err := dataset.Default()
	if err != nil {
		return err
	}

	out, err := pipeline.Run(ctx, ds,
		pipeline.WithLogger(logger),
		pipeline.WithProgress(spinner(stdout, logger)),
	)
	if err != nil {
		return err
	}

	if err := report.Print(stdout, out); err != nil {
		return err
	}

	// レポートは既に出力済み。描画の失敗はその後で報告する。
	if err := visualize.Render(plotPath, out.Series()); err != nil {
		return err
	}
	logger.Info("plot written", log.OperationKey, log.OperationRender, log.PathKey, plotPath, log.RunIDKey, out.RunID)
	fmt.Fprintf(stdout, "\nPlot saved to %s\n", plotPath)
	return nil
}

func spinner(w io.Writer, logger log.Logger) pipeline.ProgressFunc {
	return func(label string) func() {
		s := progress.Start(w, label)
		return func() {
			if err := s.Stop(); err != nil {
				logger.Warn("progress output failed", err)
			}
		}
	}
}
