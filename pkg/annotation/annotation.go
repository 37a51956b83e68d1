// Package annotation reads the corner points marked on each image.
//
// A file lists the seven points of every annotated image in the order the
// fit expects: the central corner, the top corner, then the rest
// anti-clockwise.
//
//	images:
//	  - id: 1
//	    points: [[240, 320], [238, 180], [120, 250], [125, 390], [242, 470], [360, 390], [362, 250]]
package annotation

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"cubefit/internal/models"
	"cubefit/pkg/cube"
	"cubefit/pkg/geometry"
)

// Image holds the points marked on one image
type Image struct {
	ID     int         `yaml:"id"`
	Points [][]float64 `yaml:"points,flow"`
}

// File is the on-disk layout
type File struct {
	Images []Image `yaml:"images"`
}

// Set maps image ids to their ordered points
type Set struct {
	points map[int][]geometry.Point2d
}

// NewSet returns an empty set
func NewSet() *Set {
	return &Set{points: make(map[int][]geometry.Point2d)}
}

// Add records the points for an image, replacing any earlier entry
func (s *Set) Add(id int, points []geometry.Point2d) error {
	if len(points) != cube.NumLandmarks {
		return fmt.Errorf("image %d has %d points, want %d: %w",
			id, len(points), cube.NumLandmarks, models.ErrInvalidArgument)
	}
	s.points[id] = append([]geometry.Point2d(nil), points...)
	return nil
}

// Points returns the points for an image
func (s *Set) Points(id int) ([]geometry.Point2d, bool) {
	p, ok := s.points[id]
	if !ok {
		return nil, false
	}
	return append([]geometry.Point2d(nil), p...), true
}

// IDs returns the annotated image ids in increasing order
func (s *Set) IDs() []int {
	ids := make([]int, 0, len(s.points))
	for id := range s.points {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Len returns the number of annotated images
func (s *Set) Len() int {
	return len(s.points)
}

// Load reads an annotation file
func Load(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading annotations: %w", err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("error parsing annotations: %w", err)
	}

	s := NewSet()
	for _, img := range f.Images {
		if _, dup := s.points[img.ID]; dup {
			return nil, fmt.Errorf("image %d annotated twice: %w", img.ID, models.ErrInvalidArgument)
		}
		pts := make([]geometry.Point2d, len(img.Points))
		for i, p := range img.Points {
			if len(p) != 2 {
				return nil, fmt.Errorf("image %d point %d has %d coordinates: %w",
					img.ID, i, len(p), models.ErrInvalidArgument)
			}
			pts[i] = geometry.Point2d{X: p[0], Y: p[1]}
		}
		if err := s.Add(img.ID, pts); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Save writes the set to path
func (s *Set) Save(path string) error {
	var f File
	for _, id := range s.IDs() {
		img := Image{ID: id}
		for _, p := range s.points[id] {
			img.Points = append(img.Points, []float64{p.X, p.Y})
		}
		f.Images = append(f.Images, img)
	}

	data, err := yaml.Marshal(&f)
	if err != nil {
		return fmt.Errorf("error marshaling annotations: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("error writing annotations: %w", err)
	}
	return nil
}
