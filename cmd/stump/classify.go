package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/thalesfsp/stump"
)

func runClassify(cmd *cobra.Command, _ []string) error {
	_, catalog, ds, classes, err := setup()
	if err != nil {
		return err
	}

	h, err := stump.LoadFile(modelPath, catalog)
	if err != nil {
		return err
	}

	if h.NumClasses() != ds.NumClasses() {
		return errors.Errorf("stump has %d classes, data has %d", h.NumClasses(), ds.NumClasses())
	}

	out := cmd.OutOrStdout()
	correct := 0
	for i := 0; i < ds.NumExamples(); i++ {
		got := predict(h, ds, i)
		if got == ds.Label(i) {
			correct++
		}
		fmt.Fprintf(out, "%d\t%s\t%s\n", i, classes[ds.Label(i)], classes[got])
	}

	if ds.NumExamples() > 0 {
		fmt.Fprintf(out, "accuracy=%.4f\n", float64(correct)/float64(ds.NumExamples()))
	}

	return nil
}
