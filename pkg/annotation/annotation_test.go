package annotation

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"cubefit/internal/models"
	"cubefit/pkg/geometry"
)

func samplePoints(shift float64) []geometry.Point2d {
	return []geometry.Point2d{
		{X: 240 + shift, Y: 320}, {X: 238, Y: 180}, {X: 120, Y: 250}, {X: 125, Y: 390},
		{X: 242, Y: 470}, {X: 360, Y: 390}, {X: 362, Y: 250},
	}
}

func writeFile(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "points.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write annotations: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeFile(t, `images:
  - id: 2
    points: [[240, 320], [238, 180], [120, 250], [125, 390], [242, 470], [360, 390], [362, 250]]
  - id: 1
    points:
      - [1, 2]
      - [3, 4]
      - [5, 6]
      - [7, 8]
      - [9, 10]
      - [11, 12]
      - [13, 14]
`)

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if s.Len() != 2 {
		t.Fatalf("Expected 2 images, got %d", s.Len())
	}
	if ids := s.IDs(); ids[0] != 1 || ids[1] != 2 {
		t.Errorf("Expected ids [1 2], got %v", ids)
	}

	pts, ok := s.Points(1)
	if !ok {
		t.Fatalf("Image 1 missing")
	}
	if pts[6] != (geometry.Point2d{X: 13, Y: 14}) {
		t.Errorf("Expected last point (13, 14), got %v", pts[6])
	}

	if _, ok := s.Points(3); ok {
		t.Errorf("Image 3 should not be annotated")
	}
}

func TestLoadRejectsBadInput(t *testing.T) {
	testCases := []struct {
		name    string
		content string
	}{
		{"six points", "images:\n  - id: 1\n    points: [[1,2],[1,2],[1,2],[1,2],[1,2],[1,2]]\n"},
		{"eight points", "images:\n  - id: 1\n    points: [[1,2],[1,2],[1,2],[1,2],[1,2],[1,2],[1,2],[1,2]]\n"},
		{"three coordinates", "images:\n  - id: 1\n    points: [[1,2,3],[1,2],[1,2],[1,2],[1,2],[1,2],[1,2]]\n"},
		{"duplicate id", "images:\n  - id: 1\n    points: [[1,2],[1,2],[1,2],[1,2],[1,2],[1,2],[1,2]]\n  - id: 1\n    points: [[1,2],[1,2],[1,2],[1,2],[1,2],[1,2],[1,2]]\n"},
	}

	for _, tc := range testCases {
		_, err := Load(writeFile(t, tc.content))
		if !errors.Is(err, models.ErrInvalidArgument) {
			t.Errorf("%s: expected ErrInvalidArgument, got %v", tc.name, err)
		}
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "none.yaml")); err == nil {
		t.Errorf("Expected an error for a missing file")
	}
}

func TestSaveAndLoad(t *testing.T) {
	s := NewSet()
	if err := s.Add(5, samplePoints(0.5)); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := s.Add(3, samplePoints(0)); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	path := filepath.Join(t.TempDir(), "out.yaml")
	if err := s.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	pts, ok := loaded.Points(5)
	if !ok || pts[0].X != 240.5 {
		t.Errorf("Expected image 5 first point x=240.5, got %v", pts)
	}
}

func TestAddRejectsWrongCount(t *testing.T) {
	s := NewSet()
	if err := s.Add(1, samplePoints(0)[:6]); !errors.Is(err, models.ErrInvalidArgument) {
		t.Errorf("Expected ErrInvalidArgument, got %v", err)
	}
}
