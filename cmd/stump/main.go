// Command stump trains and applies multi-class Haar stumps.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/thalesfsp/stump"
	"github.com/thalesfsp/stump/haar"
	"github.com/thalesfsp/stump/internal/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// newLogger returns a console logger at debug level when verbose is set.
func newLogger() (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.DisableStacktrace = true
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)

	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	return cfg.Build()
}

// setup loads the configuration, the catalog and the dataset shared by every
// command.
func setup() (*config.Config, stump.Catalog[int, *haar.Dataset], *haar.Dataset, []string, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	catalog, err := cfg.Catalog()
	if err != nil {
		return nil, nil, nil, nil, err
	}

	ds, classes, err := haar.LoadDir(dataDir, cfg.Haar.Width, cfg.Haar.Height)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	return cfg, catalog, ds, classes, nil
}

// predict returns the class with the highest score of example idx.
func predict(h *stump.Hypothesis[int, *haar.Dataset], ds *haar.Dataset, idx int) int {
	scores := h.Scores(ds, idx)

	best := 0
	for l, s := range scores {
		if s > scores[best] {
			best = l
		}
	}

	return best
}
