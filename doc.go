// Package soilsense models how a 100 g soil sample's sensor moisture reading
// responds to added water.
//
// The batch is small and fully deterministic: the bundled measurements are
// split in order (first 80% train, rest test), a Gaussian-kernel ε-SVR and a
// three-cluster k-means are fitted on the training subset, and both are
// evaluated on the test subset.
//
// # Packages
//
//   - dataset: observations, the ordered split and CSV ingestion
//   - sklearn/svm: ε-SVR solved by SMO
//   - sklearn/cluster: Lloyd's k-means with deterministic initialisation
//   - pipeline: runs the batch and assembles per-observation results
//   - metrics: RMSE, MAE and R²
//   - report, visualize: console tables and the 800×600 PNG scatter plot
//   - pkg/errors, pkg/log, pkg/progress: error taxonomy, zerolog logging and
//     the console spinner
//
// # Quick Start
//
//	ds, err := dataset.Default()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	out, err := pipeline.Run(context.Background(), ds)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, r := range out.Results {
//	    fmt.Printf("%.1f mL -> %.2f%% (cluster %d)\n", r.Input, r.Predicted, r.Cluster)
//	}
//
// The command in cmd/soilsense does the same, prints the report and writes
// plot.png.
package soilsense
