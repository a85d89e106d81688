package envmap

import "math"

// EncodeRGBE converts a linear RGB radiance value into the shared-exponent
// RGBE byte encoding used by the Radiance HDR format: three mantissa bytes
// scaled by the brightest channel plus one exponent byte biased by 128.
// Values too dim to represent encode as all zeros.
//
// Parameters:
//   - r, g, b: linear radiance components
//
// Returns:
//   - [4]byte: the RGBE-encoded pixel
func EncodeRGBE(r, g, b float32) [4]byte {
	brightest := r
	if g > brightest {
		brightest = g
	}
	if b > brightest {
		brightest = b
	}
	if brightest < 1e-32 {
		return [4]byte{}
	}

	mantissa, exponent := math.Frexp(float64(brightest))
	scale := mantissa * 256.0 / float64(brightest)

	return [4]byte{
		rgbeByte(float64(r) * scale),
		rgbeByte(float64(g) * scale),
		rgbeByte(float64(b) * scale),
		rgbeByte(float64(exponent) + 128),
	}
}

// rgbeByte rounds and clamps a value into the byte range.
func rgbeByte(v float64) byte {
	n := int(v + 0.5)
	if n < 0 {
		return 0
	}
	if n > 255 {
		return 255
	}
	return byte(n)
}
