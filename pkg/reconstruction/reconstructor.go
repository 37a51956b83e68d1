// Package reconstruction recovers cube poses for a sequence of annotated
// images: it scans the image directory, fits every annotated image, renders
// the fitted wireframes and exports the accepted fits.
package reconstruction

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"time"

	"gonum.org/v1/gonum/stat"

	"cubefit/internal/models"
	"cubefit/pkg/annotation"
	"cubefit/pkg/config"
	"cubefit/pkg/cube"
	"cubefit/pkg/export"
	"cubefit/pkg/optimize"
	"cubefit/pkg/visualization"
)

// observeEvery is how often, in iterations, verbose runs report descent state
const observeEvery = 1000

// ProgressCallback receives the number of completed items, the total number
// of items and a message. An empty message asks for a progress update only.
type ProgressCallback func(completed, total int, message string)

// Params holds the input/output configuration of a run
type Params struct {
	// InputDir contains the images 1.jpg, 2.jpg, ... The scan stops at the
	// first missing number.
	InputDir string

	// OutputDir receives the CSV file and the overlays
	OutputDir string

	// Annotations holds the points marked on each image
	Annotations *annotation.Set

	// Config holds the fit, image and output settings
	Config *config.Config
}

// Summary describes a finished run
type Summary struct {
	// Images is the number of sequential images found
	Images int

	// Annotated is the number of those images with annotations
	Annotated int

	// Accepted is the number of fits written to the CSV file
	Accepted int

	// Unconverged is the number of fits that hit the iteration cap
	Unconverged int

	// Failed is the number of annotated images that could not be fitted
	Failed int

	// MeanRMSError and StdRMSError summarise the per-image RMS landmark
	// error in pixels over the fitted images
	MeanRMSError float64
	StdRMSError  float64

	// Elapsed is the wall time of Process
	Elapsed time.Duration
}

type frame struct {
	id   int
	path string
}

// Reconstructor runs the fitting pipeline over a directory of images
type Reconstructor struct {
	params   *Params
	frames   []frame
	fits     []*models.Fit
	failures map[int]error
	summary  Summary

	progressCallback ProgressCallback
	startTime        time.Time

	// progressMu serialises reports from the collector and verbose workers
	progressMu sync.Mutex
}

// NewReconstructor creates a new reconstructor instance with the provided parameters.
func NewReconstructor(params *Params) *Reconstructor {
	if params.Config == nil {
		params.Config = config.DefaultConfig()
	}
	if params.Annotations == nil {
		params.Annotations = annotation.NewSet()
	}
	return &Reconstructor{
		params:   params,
		failures: make(map[int]error),
	}
}

// SetProgressCallback sets a callback function to report progress. Without
// one, progress is printed to stdout.
func (r *Reconstructor) SetProgressCallback(callback ProgressCallback) {
	r.progressCallback = callback
}

// Process runs the complete pipeline
func (r *Reconstructor) Process() error {
	r.startTime = time.Now()
	if err := r.params.Config.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(r.params.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	// Step 1: find the sequential images
	r.reportProgress(0, 0, "Step 1: Scanning input images...")
	if err := r.scanFrames(); err != nil {
		return fmt.Errorf("failed to scan images: %w", err)
	}

	// Step 2: fit every annotated image
	r.reportProgress(0, 0, "Step 2: Fitting cubes to annotated images...")
	if err := r.fitFramesInParallel(); err != nil {
		return err
	}

	// Step 3: export the accepted fits
	r.reportProgress(0, 0, "Step 3: Exporting accepted fits...")
	if err := r.exportFits(); err != nil {
		return fmt.Errorf("failed to export fits: %w", err)
	}

	r.summarise()
	return nil
}

// scanFrames collects 1.jpg, 2.jpg, ... until the first missing number
func (r *Reconstructor) scanFrames() error {
	r.frames = r.frames[:0]
	for id := 1; ; id++ {
		path := filepath.Join(r.params.InputDir, strconv.Itoa(id)+".jpg")
		info, err := os.Stat(path)
		if os.IsNotExist(err) {
			break
		}
		if err != nil {
			return err
		}
		if info.IsDir() {
			break
		}
		r.frames = append(r.frames, frame{id: id, path: path})
	}

	if len(r.frames) == 0 {
		return fmt.Errorf("no image 1.jpg in %s", r.params.InputDir)
	}
	r.reportProgress(0, 0, fmt.Sprintf("Found %d images, %d annotated",
		len(r.frames), r.countAnnotated()))
	return nil
}

func (r *Reconstructor) countAnnotated() int {
	n := 0
	for _, f := range r.frames {
		if _, ok := r.params.Annotations.Points(f.id); ok {
			n++
		}
	}
	return n
}

// fitFramesInParallel fits the annotated frames, at most NumCores at a time
func (r *Reconstructor) fitFramesInParallel() error {
	type fitResult struct {
		id  int
		fit *models.Fit
		err error
	}

	var jobs []frame
	for _, f := range r.frames {
		if _, ok := r.params.Annotations.Points(f.id); ok {
			jobs = append(jobs, f)
		}
	}

	workers := r.params.Config.Processing.NumCores
	if workers < 1 {
		workers = 1
	}
	sem := make(chan struct{}, workers)
	resultChan := make(chan fitResult)

	var wg sync.WaitGroup
	for _, f := range jobs {
		wg.Add(1)
		go func(f frame) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			fit, err := r.processFrame(f)
			resultChan <- fitResult{id: f.id, fit: fit, err: err}
		}(f)
	}
	go func() {
		wg.Wait()
		close(resultChan)
	}()

	completed := 0
	r.fits = r.fits[:0]
	r.failures = make(map[int]error)
	for res := range resultChan {
		completed++
		if res.err != nil {
			r.failures[res.id] = res.err
			r.reportProgress(completed, len(jobs), fmt.Sprintf("Warning: image %d: %v", res.id, res.err))
			continue
		}
		if !res.fit.Converged {
			r.reportProgress(completed, len(jobs), fmt.Sprintf(
				"Warning: image %d did not converge in %d iterations", res.id, res.fit.Iterations))
		}
		r.fits = append(r.fits, res.fit)
		r.reportProgress(completed, len(jobs), "")
	}

	sort.Slice(r.fits, func(i, j int) bool { return r.fits[i].ID < r.fits[j].ID })
	return nil
}

// processFrame fits one image and writes its overlay
func (r *Reconstructor) processFrame(f frame) (*models.Fit, error) {
	cfg := r.params.Config
	points, _ := r.params.Annotations.Points(f.id)

	var observer optimize.Observer
	if cfg.Output.Verbose {
		observer = func(it optimize.Iteration) {
			if it.Iter%observeEvery == 0 {
				r.reportProgress(0, 0, fmt.Sprintf("image %d: iteration %d, residual %.4g, |g|^2 %.4g",
					f.id, it.Iter, it.Value, it.GradNormSq))
			}
		}
	}

	fit, c, err := FitPoints(f.id, points, cfg, observer)
	if err != nil {
		return nil, err
	}
	fit.Filename = filepath.Base(f.path)

	if cfg.Output.RenderOverlays {
		if err := r.renderOverlay(f, c); err != nil {
			return nil, fmt.Errorf("failed to render overlay: %w", err)
		}
	}
	return fit, nil
}

func (r *Reconstructor) renderOverlay(f frame, c *cube.Cube) error {
	img, err := visualization.LoadImage(f.path)
	if err != nil {
		return err
	}
	cfg := r.params.Config
	resized := visualization.Resize(img, cfg.Image.Width, cfg.Image.Height)

	viewer := visualization.NewViewer(resized)
	points, _ := r.params.Annotations.Points(f.id)
	viewer.DrawCube(c)
	viewer.DrawMarkers(points)
	return viewer.Save(filepath.Join(r.params.OutputDir, fmt.Sprintf("%d_fit.jpg", f.id)))
}

// exportFits writes the accepted fits in image order
func (r *Reconstructor) exportFits() error {
	path := filepath.Join(r.params.OutputDir, r.params.Config.Output.CSVName)
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	w := export.NewWriter(file)
	for _, fit := range r.fits {
		if !fit.Accepted(r.params.Config.Output.AcceptUnconverged) {
			r.reportProgress(0, 0, fmt.Sprintf("Rejecting unconverged fit for image %d", fit.ID))
			continue
		}
		if err := w.Write(fit); err != nil {
			return err
		}
	}
	r.summary.Accepted = w.Count()
	r.reportProgress(0, 0, fmt.Sprintf("Wrote %d fits to %s", w.Count(), path))
	return nil
}

func (r *Reconstructor) summarise() {
	s := &r.summary
	s.Images = len(r.frames)
	s.Annotated = r.countAnnotated()
	s.Failed = len(r.failures)
	s.Unconverged = 0

	rms := make([]float64, 0, len(r.fits))
	for _, fit := range r.fits {
		if !fit.Converged {
			s.Unconverged++
		}
		rms = append(rms, fit.RMSError)
	}
	if len(rms) > 0 {
		s.MeanRMSError = stat.Mean(rms, nil)
	}
	if len(rms) > 1 {
		s.StdRMSError = stat.StdDev(rms, nil)
	}
	s.Elapsed = time.Since(r.startTime)
}

// GetSummary returns the counts and error statistics of the last run
func (r *Reconstructor) GetSummary() Summary {
	return r.summary
}

// GetFits returns the fits of the last run in image order, accepted or not
func (r *Reconstructor) GetFits() []*models.Fit {
	return append([]*models.Fit(nil), r.fits...)
}

// GetFailures returns the error for each annotated image that could not be
// fitted
func (r *Reconstructor) GetFailures() map[int]error {
	out := make(map[int]error, len(r.failures))
	for id, err := range r.failures {
		out[id] = err
	}
	return out
}

// reportProgress calls the progress callback if set, otherwise prints to stdout
func (r *Reconstructor) reportProgress(completed, total int, message string) {
	r.progressMu.Lock()
	defer r.progressMu.Unlock()

	if r.progressCallback != nil {
		r.progressCallback(completed, total, message)
		return
	}

	if message != "" {
		fmt.Println(message)
		return
	}
	if total > 0 {
		percentage := float64(completed) / float64(total) * 100
		elapsed := time.Since(r.startTime)
		fmt.Printf("\rFitting images: %.1f%% (%d/%d) [%.1fs elapsed]", percentage, completed, total, elapsed.Seconds())
		if completed >= total {
			fmt.Println()
		}
	}
}
