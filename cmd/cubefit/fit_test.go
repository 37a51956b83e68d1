package main

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cubefit/internal/models"
	"cubefit/pkg/annotation"
	"cubefit/pkg/cube"
)

// TestRunFitReturnsError checks that a failed run is reported through the
// command's error instead of exiting the process
func TestRunFitReturnsError(t *testing.T) {
	dir := t.TempDir()

	c, err := cube.New([]float64{0, -math.Pi / 4, -math.Pi / 4, -1, 1000, 240, 320})
	if err != nil {
		t.Fatalf("cube.New failed: %v", err)
	}
	set := annotation.NewSet()
	if err := set.Add(1, c.LandmarkPoints()); err != nil {
		t.Fatalf("Failed to add annotation: %v", err)
	}
	pointsPath := filepath.Join(dir, "points.yaml")
	if err := set.Save(pointsPath); err != nil {
		t.Fatalf("Failed to save annotations: %v", err)
	}

	// no 1.jpg in the input directory
	inputDir := filepath.Join(dir, "input")
	if err := os.MkdirAll(inputDir, 0755); err != nil {
		t.Fatalf("Failed to create input dir: %v", err)
	}

	fitInputDir = inputDir
	fitPointsFile = pointsPath
	fitOutputDir = filepath.Join(dir, "output")
	fitConfigFile = ""

	err = runFit(fitCmd, nil)
	if err == nil {
		t.Fatalf("Expected an error for an input directory without images")
	}
	if !strings.Contains(err.Error(), "fitting failed") {
		t.Errorf("Expected the error to name the failed fit, got %v", err)
	}
}

func TestRunFitBadConfig(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "cubefit.yaml")
	if err := os.WriteFile(configPath, []byte("fit:\n  rate: [1, 2]\n"), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	fitConfigFile = configPath
	defer func() { fitConfigFile = "" }()

	if err := runFit(fitCmd, nil); !errors.Is(err, models.ErrInvalidArgument) {
		t.Errorf("Expected ErrInvalidArgument, got %v", err)
	}
}
