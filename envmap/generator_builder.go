package envmap

// GeneratorBuilderOption is a functional option for configuring a Generator via NewGenerator.
type GeneratorBuilderOption func(*generator)

// WithSize is an option builder that sets the output image dimensions.
// Values below 1 are clamped to 1.
//
// Parameters:
//   - width: image width in pixels
//   - height: image height in pixels
//
// Returns:
//   - GeneratorBuilderOption: a function that applies the size to a generator
func WithSize(width, height int) GeneratorBuilderOption {
	return func(g *generator) {
		if width < 1 {
			width = 1
		}
		if height < 1 {
			height = 1
		}
		g.width = width
		g.height = height
	}
}

// WithSkyColors is an option builder that sets the sky gradient colors.
//
// Parameters:
//   - zenith: linear RGB at the top of the image
//   - horizon: linear RGB where sky meets floor
//
// Returns:
//   - GeneratorBuilderOption: a function that applies the sky colors to a generator
func WithSkyColors(zenith, horizon [3]float32) GeneratorBuilderOption {
	return func(g *generator) {
		g.skyZenith = zenith
		g.skyHorizon = horizon
	}
}

// WithFloorColors is an option builder that sets the floor gradient colors.
//
// Parameters:
//   - horizon: linear RGB where floor meets sky
//   - nadir: linear RGB at the bottom of the image
//
// Returns:
//   - GeneratorBuilderOption: a function that applies the floor colors to a generator
func WithFloorColors(horizon, nadir [3]float32) GeneratorBuilderOption {
	return func(g *generator) {
		g.floorHorizon = horizon
		g.floorNadir = nadir
	}
}

// WithWorkers is an option builder that sets the number of parallel fill
// workers. Values below 1 are clamped to 1.
//
// Parameters:
//   - n: the worker count
//
// Returns:
//   - GeneratorBuilderOption: a function that applies the worker count to a generator
func WithWorkers(n int) GeneratorBuilderOption {
	return func(g *generator) {
		if n < 1 {
			n = 1
		}
		g.workers = n
	}
}
