// Package envmap generates analytic environment radiance images: a vertical
// gradient of sky above a darkening floor band, suitable as a light source
// for image-based lighting. It is a standalone peer of the scene loader and
// shares nothing with it.
package envmap

import (
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
)

// EnvironmentImage is a generated radiance image. Pixels are linear RGB
// triples in row-major order, top row first.
type EnvironmentImage struct {
	// Width is the image width in pixels.
	Width int

	// Height is the image height in pixels.
	Height int

	// Pixels holds Width*Height*3 linear RGB components.
	Pixels []float32
}

// generator is the implementation of the Generator interface.
type generator struct {
	width  int
	height int

	skyZenith    [3]float32
	skyHorizon   [3]float32
	floorHorizon [3]float32
	floorNadir   [3]float32

	workers int
	rowPool worker.DynamicWorkerPool
}

// Generator defines the interface for producing analytic environment images.
// The vertical axis maps to elevation: the top half of the image blends from
// the zenith color down to the horizon color, and the bottom half blends
// from the floor's horizon color down to its nadir color.
type Generator interface {
	// Generate produces a freshly allocated environment image using the
	// generator's configured size and colors. Rows are filled in parallel
	// internally, but the call is synchronous and the result is owned by
	// the caller.
	//
	// Returns:
	//   - *EnvironmentImage: the generated radiance image
	Generate() *EnvironmentImage
}

var _ Generator = &generator{}

// NewGenerator creates a new Generator with the given options applied.
// Defaults produce a 64x32 blue-sky-over-brown-floor image.
//
// Parameters:
//   - options: functional options (WithSize, WithSkyColors, WithFloorColors, WithWorkers)
//
// Returns:
//   - Generator: the configured generator
func NewGenerator(options ...GeneratorBuilderOption) Generator {
	g := &generator{
		width:        64,
		height:       32,
		skyZenith:    [3]float32{0.15, 0.25, 0.60},
		skyHorizon:   [3]float32{0.50, 0.70, 0.95},
		floorHorizon: [3]float32{0.35, 0.22, 0.12},
		floorNadir:   [3]float32{0.25, 0.14, 0.08},
		workers:      max(runtime.NumCPU()-1, 1),
	}

	for _, option := range options {
		option(g)
	}

	// Initialize the row pool after options so WithWorkers can override the
	// default. One task per worker band keeps the queue well under capacity.
	g.rowPool = worker.NewDynamicWorkerPool(g.workers, 256, 1*time.Second)

	return g
}

func (g *generator) Generate() *EnvironmentImage {
	img := &EnvironmentImage{
		Width:  g.width,
		Height: g.height,
		Pixels: make([]float32, g.width*g.height*3),
	}

	// Split rows into contiguous bands, one task per band. A WaitGroup
	// provides the completion barrier; pool workers are reused across calls.
	bands := g.workers
	if bands > g.height {
		bands = g.height
	}
	rowsPerBand := (g.height + bands - 1) / bands

	var wg sync.WaitGroup
	for band := 0; band < bands; band++ {
		startRow := band * rowsPerBand
		endRow := startRow + rowsPerBand
		if endRow > g.height {
			endRow = g.height
		}

		wg.Add(1)
		g.rowPool.SubmitTask(worker.Task{
			ID: band,
			Do: func() (any, error) {
				defer wg.Done()
				for y := startRow; y < endRow; y++ {
					g.fillRow(img, y)
				}
				return nil, nil
			},
		})
	}
	wg.Wait()

	return img
}

// fillRow writes one row of the vertical gradient.
func (g *generator) fillRow(img *EnvironmentImage, y int) {
	denominator := img.Height - 1
	if denominator < 1 {
		denominator = 1
	}
	t := float32(y) / float32(denominator)

	var color [3]float32
	if t < 0.5 {
		k := t / 0.5
		color = lerp3(g.skyZenith, g.skyHorizon, k)
	} else {
		k := (t - 0.5) / 0.5
		color = lerp3(g.floorHorizon, g.floorNadir, k)
	}

	rowStart := y * img.Width * 3
	for x := 0; x < img.Width; x++ {
		offset := rowStart + x*3
		img.Pixels[offset] = color[0]
		img.Pixels[offset+1] = color[1]
		img.Pixels[offset+2] = color[2]
	}
}

// lerp3 linearly interpolates between two RGB colors.
func lerp3(a, b [3]float32, k float32) [3]float32 {
	return [3]float32{
		a[0] + (b[0]-a[0])*k,
		a[1] + (b[1]-a[1])*k,
		a[2] + (b[2]-a[2])*k,
	}
}
