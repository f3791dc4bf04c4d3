package main

import (
	"fmt"
	"sync"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/thalesfsp/stump"
	"github.com/thalesfsp/stump/haar"
)

func runTrain(cmd *cobra.Command, _ []string) error {
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	cfg, catalog, ds, classes, err := setup()
	if err != nil {
		return err
	}

	opts, err := cfg.Options()
	if err != nil {
		return err
	}

	progress := make(chan stump.ProgressUpdate, len(catalog))
	opts.Logger = logger
	opts.ProgressChan = progress

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for update := range progress {
			logger.Info("feature type searched",
				zap.String("type", update.FeatureType),
				zap.Int("processed", update.Processed),
				zap.Duration("elapsed", update.Elapsed),
				zap.Float64("best_energy", update.CurrentBestEnergy),
			)
		}
	}()

	learner, err := stump.NewLearner[int, *haar.Dataset](opts)
	if err != nil {
		close(progress)
		wg.Wait()
		return err
	}

	logger.Info("training",
		zap.Int("examples", ds.NumExamples()),
		zap.Strings("classes", classes),
		zap.Stringer("sampling", opts.Sampling.Kind),
		zap.Int("workers", opts.Workers),
	)

	h, err := learner.Train(cmd.Context(), ds, catalog)
	close(progress)
	wg.Wait()
	if err != nil {
		return err
	}

	if err := h.SaveFile(outPath); err != nil {
		return err
	}

	correct := 0
	for i := 0; i < ds.NumExamples(); i++ {
		if predict(h, ds, i) == ds.Label(i) {
			correct++
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "type=%s config=%v alpha=%.6g energy=%.6g train_accuracy=%.4f saved=%s\n",
		h.Feature().Name(), h.Config(), h.Alpha(), h.Energy(),
		float64(correct)/float64(ds.NumExamples()), outPath)

	return nil
}
