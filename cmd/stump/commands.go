package main

import (
	"github.com/spf13/cobra"
)

// --- Global Command Variables ---
var (
	configPath string
	dataDir    string
	outPath    string
	modelPath  string
	verbose    bool

	rootCmd = &cobra.Command{
		Use:   "stump",
		Short: "Train and apply multi-class Haar stumps",
		Long: `stump searches the Haar feature catalog of a labeled image set for the
single best multi-class threshold stump, and applies saved stumps to images.`,
		SilenceUsage: true,
	}

	trainCmd = &cobra.Command{
		Use:   "train",
		Short: "Select the best Haar stump for an image directory (one class per sub-directory)",
		Args:  cobra.NoArgs,
		RunE:  runTrain, // Defined in train.go
	}

	classifyCmd = &cobra.Command{
		Use:   "classify",
		Short: "Classify an image directory with a saved stump and report accuracy",
		Args:  cobra.NoArgs,
		RunE:  runClassify, // Defined in classify.go
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to the YAML configuration (default: ./configs/stump.yaml or ./stump.yaml)")
	rootCmd.PersistentFlags().StringVarP(&dataDir, "data", "d", "", "Image directory with one sub-directory per class")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log every feature type")
	_ = rootCmd.MarkPersistentFlagRequired("data")

	trainCmd.Flags().StringVarP(&outPath, "out", "o", "hypothesis.xml", "Where to save the selected stump")

	classifyCmd.Flags().StringVarP(&modelPath, "model", "m", "hypothesis.xml", "Stump saved by train")

	rootCmd.AddCommand(trainCmd)
	rootCmd.AddCommand(classifyCmd)
}
