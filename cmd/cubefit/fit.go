package main

import (
	"fmt"
	"log"
	"runtime"

	"github.com/spf13/cobra"

	"cubefit/pkg/annotation"
	"cubefit/pkg/config"
	"cubefit/pkg/reconstruction"
)

var (
	fitInputDir          string
	fitPointsFile        string
	fitOutputDir         string
	fitConfigFile        string
	fitAcceptUnconverged bool
	fitCores             int
	fitVerbose           bool
)

var fitCmd = &cobra.Command{
	Use:   "fit",
	Short: "Fit cubes to every annotated image in a directory",
	Long: `Fit cubes to the images 1.jpg, 2.jpg, ... in the input directory.

The scan stops at the first missing number. Images without annotations are
skipped. Each fitted image is written as <id>_fit.jpg with the wireframe drawn
over it, and accepted fits are appended to the CSV file.

Examples:
  cubefit fit --input photos --points points.yaml
  cubefit fit --input photos --points points.yaml --config cubefit.yaml --accept-unconverged`,
	RunE: runFit,
}

func init() {
	fitCmd.Flags().StringVar(&fitInputDir, "input", "", "Directory containing 1.jpg, 2.jpg, ...")
	fitCmd.Flags().StringVar(&fitPointsFile, "points", "", "YAML file with seven ordered points per image")
	fitCmd.Flags().StringVar(&fitOutputDir, "output", "output", "Directory for overlays and the CSV file")
	fitCmd.Flags().StringVar(&fitConfigFile, "config", "", "YAML configuration file (defaults are used if empty or missing)")
	fitCmd.Flags().BoolVar(&fitAcceptUnconverged, "accept-unconverged", false, "Export fits that hit the iteration cap")
	fitCmd.Flags().IntVar(&fitCores, "cores", runtime.NumCPU(), "Number of images fitted concurrently")
	fitCmd.Flags().BoolVar(&fitVerbose, "verbose", false, "Report descent progress every 1000 iterations")
	_ = fitCmd.MarkFlagRequired("input")
	_ = fitCmd.MarkFlagRequired("points")
}

func runFit(cmd *cobra.Command, args []string) error {
	cfg := config.DefaultConfig()
	if fitConfigFile != "" {
		loaded, err := config.LoadConfig(fitConfigFile)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	// Flags given explicitly win over the file
	flags := cmd.Flags()
	if flags.Changed("accept-unconverged") {
		cfg.Output.AcceptUnconverged = fitAcceptUnconverged
	}
	if flags.Changed("cores") || fitConfigFile == "" {
		cfg.Processing.NumCores = fitCores
	}
	if flags.Changed("verbose") {
		cfg.Output.Verbose = fitVerbose
	}

	points, err := annotation.Load(fitPointsFile)
	if err != nil {
		return fmt.Errorf("failed to load annotations: %w", err)
	}

	fmt.Println("================================")
	fmt.Println("CUBE POSE FITTING")
	fmt.Println("================================")
	fmt.Printf("Input: %s (%d annotated images)\n", fitInputDir, points.Len())
	fmt.Printf("Output: %s\n", fitOutputDir)

	reconstructor := reconstruction.NewReconstructor(&reconstruction.Params{
		InputDir:    fitInputDir,
		OutputDir:   fitOutputDir,
		Annotations: points,
		Config:      cfg,
	})
	if err := reconstructor.Process(); err != nil {
		return fmt.Errorf("fitting failed: %w", err)
	}

	summary := reconstructor.GetSummary()
	fmt.Printf("\nFitting completed in %.2f seconds\n", summary.Elapsed.Seconds())
	fmt.Printf("- Images found: %d\n", summary.Images)
	fmt.Printf("- Annotated: %d\n", summary.Annotated)
	fmt.Printf("- Accepted: %d\n", summary.Accepted)
	fmt.Printf("- Unconverged: %d\n", summary.Unconverged)
	fmt.Printf("- Failed: %d\n", summary.Failed)
	fmt.Printf("- RMS landmark error: %.3f px (std %.3f)\n", summary.MeanRMSError, summary.StdRMSError)

	for id, err := range reconstructor.GetFailures() {
		log.Printf("Warning: image %d: %v", id, err)
	}
	return nil
}
