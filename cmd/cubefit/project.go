package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"cubefit/pkg/cube"
	"cubefit/pkg/visualization"
)

var (
	projectParams string
	projectImage  string
	projectOutput string
	projectWidth  int
	projectHeight int
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Print the projected cube corners for a pose vector",
	Long: `Print the eight projected corners of the cube placed with a pose vector
[thetaX, thetaY, thetaZ, cameraDist, scale, offsetX, offsetY].

With --image the wireframe is also drawn over the image, resized to
--width x --height, and saved to --out.

Example:
  cubefit project --params "0,-0.785,-0.785,-1,1000,240,320"`,
	RunE: runProject,
}

func init() {
	projectCmd.Flags().StringVar(&projectParams, "params", "", "Comma-separated pose vector of seven values")
	projectCmd.Flags().StringVar(&projectImage, "image", "", "Optional image to draw the wireframe on")
	projectCmd.Flags().StringVar(&projectOutput, "out", "projected.jpg", "Overlay output file")
	projectCmd.Flags().IntVar(&projectWidth, "width", 480, "Overlay width")
	projectCmd.Flags().IntVar(&projectHeight, "height", 640, "Overlay height")
	_ = projectCmd.MarkFlagRequired("params")
}

func parseParams(s string) ([]float64, error) {
	fields := strings.Split(s, ",")
	params := make([]float64, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid parameter %q: %w", f, err)
		}
		params = append(params, v)
	}
	return params, nil
}

func runProject(cmd *cobra.Command, args []string) error {
	params, err := parseParams(projectParams)
	if err != nil {
		return err
	}
	c, err := cube.New(params)
	if err != nil {
		return err
	}

	for i, v := range c.ProjectedVertices() {
		fmt.Printf("%d: %.3f %.3f\n", i, v.X, v.Y)
	}

	if projectImage == "" {
		return nil
	}
	img, err := visualization.LoadImage(projectImage)
	if err != nil {
		return err
	}
	viewer := visualization.NewViewer(visualization.Resize(img, projectWidth, projectHeight))
	viewer.DrawCube(c)
	viewer.DrawMarkers(c.LandmarkPoints())
	if err := viewer.Save(projectOutput); err != nil {
		return err
	}
	fmt.Printf("Overlay saved to: %s\n", projectOutput)
	return nil
}

