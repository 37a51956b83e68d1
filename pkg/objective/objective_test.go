package objective

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"

	"cubefit/internal/models"
	"cubefit/pkg/cube"
	"cubefit/pkg/geometry"
)

var truth = []float64{0.15, -math.Pi / 5, -math.Pi / 4, -3, 900, 250, 310}

// observedFrom reads the landmark projections of the cube posed by params
func observedFrom(t testing.TB, params []float64) []geometry.Point2d {
	c, err := cube.New(params)
	if err != nil {
		t.Fatalf("cube.New failed: %v", err)
	}
	return c.LandmarkPoints()
}

func TestNewRejectsWrongPointCount(t *testing.T) {
	for _, n := range []int{0, 6, 8} {
		_, err := New(make([]geometry.Point2d, n))
		if !errors.Is(err, models.ErrInvalidArgument) {
			t.Errorf("New with %d points: expected ErrInvalidArgument, got %v", n, err)
		}
	}
}

func TestEvaluateZeroAtExactFit(t *testing.T) {
	obj, err := New(observedFrom(t, truth))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	value, err := obj.Evaluate(truth)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if math.Abs(value) > 1e-6 {
		t.Errorf("Expected residual ~0 at the true pose, got %g", value)
	}

	rms, err := obj.RMSError(truth)
	if err != nil {
		t.Fatalf("RMSError failed: %v", err)
	}
	if rms > 1e-3 {
		t.Errorf("Expected RMS error ~0, got %g", rms)
	}
}

func TestEvaluateNonNegative(t *testing.T) {
	obj, err := New(observedFrom(t, truth))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	perturbed := [][]float64{
		{0, 0, 0, -1, 1000, 240, 320},
		{0, -math.Pi / 4, -math.Pi / 4, -1, 1000, 240, 320},
		{0.3, -0.5, -0.9, -5, 700, 200, 400},
		{-1, 2, 0.5, -2, 1, 0, 0},
	}
	for _, p := range perturbed {
		value, err := obj.Evaluate(p)
		if err != nil {
			t.Fatalf("Evaluate(%v) failed: %v", p, err)
		}
		if value <= 0 {
			t.Errorf("Evaluate(%v): expected a positive residual, got %g", p, value)
		}
	}
}

func TestEvaluateMatchesManualSum(t *testing.T) {
	observed := []geometry.Point2d{
		{X: 240, Y: 320}, {X: 200, Y: 250}, {X: 180, Y: 300}, {X: 190, Y: 380}, {X: 250, Y: 400}, {X: 300, Y: 380}, {X: 290, Y: 280},
	}
	obj, err := New(observed)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	params := []float64{0, -math.Pi / 4, -math.Pi / 4, -1, 1000, 240, 320}
	pose, _ := geometry.Decode(params)
	want := 0.0
	for i, v := range cube.Landmarks() {
		p, err := pose.Apply(v)
		if err != nil {
			t.Fatalf("Apply failed: %v", err)
		}
		d := p.Sub(observed[i])
		want += d.Dot(d)
	}

	got, err := obj.Evaluate(params)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if !scalar.EqualWithinRel(got, want, 1e-12) {
		t.Errorf("Expected %g, got %g", want, got)
	}

	res, err := obj.Residuals(params)
	if err != nil {
		t.Fatalf("Residuals failed: %v", err)
	}
	sq := 0.0
	for _, r := range res {
		sq += r * r
	}
	if !scalar.EqualWithinRel(sq, want, 1e-9) {
		t.Errorf("Residuals squared should sum to %g, got %g", want, sq)
	}
}

func TestEvaluateRejectsWrongParams(t *testing.T) {
	obj, err := New(observedFrom(t, truth))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if _, err := obj.Evaluate(truth[:6]); !errors.Is(err, models.ErrInvalidArgument) {
		t.Errorf("Expected ErrInvalidArgument, got %v", err)
	}
	if _, err := obj.Residuals(append(truth, 0)); !errors.Is(err, models.ErrInvalidArgument) {
		t.Errorf("Expected ErrInvalidArgument, got %v", err)
	}
}

func TestEvaluateDegenerateCamera(t *testing.T) {
	obj, err := New(observedFrom(t, truth))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	_, err = obj.Evaluate([]float64{0, 0, 0, 1, 1, 0, 0})
	if !errors.Is(err, models.ErrNumericalDegeneracy) {
		t.Errorf("Expected ErrNumericalDegeneracy, got %v", err)
	}
}

func TestObservedIsCopied(t *testing.T) {
	observed := observedFrom(t, truth)
	obj, err := New(observed)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	observed[0] = geometry.Point2d{X: -1, Y: -1}

	if obj.Observed()[0] == observed[0] {
		t.Errorf("Objective must keep its own copy of the observed points")
	}
}

func BenchmarkEvaluate(b *testing.B) {
	obj, err := New(observedFrom(b, truth))
	if err != nil {
		b.Fatalf("New failed: %v", err)
	}
	params := []float64{0, -math.Pi / 4, -math.Pi / 4, -1, 1000, 240, 320}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		obj.Evaluate(params)
	}
}
