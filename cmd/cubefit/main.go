package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "cubefit",
	Short: "Fit a 3D cube pose to seven annotated image points",
	Long: `cubefit recovers the pose of a cube-shaped object from seven marked corners.

For every annotated image it fits rotation, camera distance, scale and offset
by gradient descent, draws the fitted wireframe over the image and writes the
accepted fits to a CSV file.`,
	SilenceUsage: true,
}

func main() {
	rootCmd.AddCommand(fitCmd, projectCmd, initConfigCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
