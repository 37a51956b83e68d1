// Package export writes accepted fits as CSV. Each fit takes two rows: the
// image id followed by the eight projected vertices as "x y" pairs, then an
// empty cell followed by the seven pose parameters.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"cubefit/internal/models"
	"cubefit/pkg/cube"
	"cubefit/pkg/geometry"
)

// Writer appends fits to a CSV stream. It is safe for concurrent use.
type Writer struct {
	mu sync.Mutex
	w  *csv.Writer
	n  int
}

// NewWriter returns a writer on w
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: csv.NewWriter(w)}
}

// Write appends one fit
func (w *Writer) Write(fit *models.Fit) error {
	if len(fit.Params) != geometry.NumParams {
		return fmt.Errorf("fit %d has %d parameters: %w", fit.ID, len(fit.Params), models.ErrInvalidArgument)
	}

	vertexRow := make([]string, 0, 1+cube.NumVertices)
	vertexRow = append(vertexRow, strconv.Itoa(fit.ID))
	for _, v := range fit.Vertices {
		vertexRow = append(vertexRow, formatFloat(v.X)+" "+formatFloat(v.Y))
	}

	paramRow := make([]string, 0, 1+geometry.NumParams)
	paramRow = append(paramRow, "")
	for _, p := range fit.Params {
		paramRow = append(paramRow, formatFloat(p))
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.w.Write(vertexRow); err != nil {
		return err
	}
	if err := w.w.Write(paramRow); err != nil {
		return err
	}
	w.w.Flush()
	if err := w.w.Error(); err != nil {
		return err
	}
	w.n++
	return nil
}

// Count returns the number of fits written
func (w *Writer) Count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.n
}

// Read parses fits written by Writer. Only ID, Vertices and Params are
// restored.
func Read(r io.Reader) ([]*models.Fit, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records)%2 != 0 {
		return nil, fmt.Errorf("odd number of rows (%d): %w", len(records), models.ErrInvalidArgument)
	}

	var fits []*models.Fit
	for i := 0; i < len(records); i += 2 {
		fit, err := parseFit(records[i], records[i+1])
		if err != nil {
			return nil, fmt.Errorf("rows %d-%d: %w", i+1, i+2, err)
		}
		fits = append(fits, fit)
	}
	return fits, nil
}

func parseFit(vertexRow, paramRow []string) (*models.Fit, error) {
	if len(vertexRow) != 1+cube.NumVertices || len(paramRow) != 1+geometry.NumParams || paramRow[0] != "" {
		return nil, fmt.Errorf("unexpected row layout: %w", models.ErrInvalidArgument)
	}

	id, err := strconv.Atoi(vertexRow[0])
	if err != nil {
		return nil, fmt.Errorf("bad id %q: %w", vertexRow[0], models.ErrInvalidArgument)
	}
	fit := &models.Fit{ID: id, Params: make([]float64, geometry.NumParams)}

	for i, cell := range vertexRow[1:] {
		xy := strings.Fields(cell)
		if len(xy) != 2 {
			return nil, fmt.Errorf("bad vertex %q: %w", cell, models.ErrInvalidArgument)
		}
		x, errX := strconv.ParseFloat(xy[0], 64)
		y, errY := strconv.ParseFloat(xy[1], 64)
		if errX != nil || errY != nil {
			return nil, fmt.Errorf("bad vertex %q: %w", cell, models.ErrInvalidArgument)
		}
		fit.Vertices[i] = models.Vertex{X: x, Y: y}
	}

	for i, cell := range paramRow[1:] {
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return nil, fmt.Errorf("bad parameter %q: %w", cell, models.ErrInvalidArgument)
		}
		fit.Params[i] = v
	}
	return fit, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
