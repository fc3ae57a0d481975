package explorer

import "encoding/binary"

// Last-resort recovery for buffers whose compression path failed or is
// unrecognized. The strategy is deliberately crude: try a handful of
// fixed byte offsets, probe each for a run of values that look like
// scaled reflectance, and extract the full raster from the first
// plausible one. It is kept behind this single entry point so the
// primary decode path never depends on its heuristics.

const (
	fallbackProbeLen = 100 // samples inspected per candidate
	fallbackProbeMin = 80  // samples that must look like reflectance

	// Plausible scaled-reflectance range, as raw sample values.
	fallbackMinRaw = -1 * reflectanceScale
	fallbackMaxRaw = 2 * reflectanceScale
)

// scanFallback searches candidate byte offsets for a plausible sample
// run and builds a raster from the first match. When nothing qualifies
// it returns an all-zero raster rather than an error; the Degraded
// flag is the only record that recovery was attempted.
func scanFallback(buf []byte, bo binary.ByteOrder, width, height int) *BandRaster {
	expected := width * height * 2

	// Buffer start, past a header-sized prefix, and end-aligned
	// assuming the expected payload size sits at the tail.
	candidates := []int{0, 8, len(buf) - expected}

	for _, off := range candidates {
		if off < 0 || off+fallbackProbeLen*2 > len(buf) {
			continue
		}
		if probeSamples(buf[off:], bo) >= fallbackProbeMin {
			r := samplesToRaster(buf[off:], bo, width, height)
			r.Degraded = true
			return r
		}
	}

	return &BandRaster{
		Width:    width,
		Height:   height,
		Samples:  make([]float64, width*height),
		Degraded: true,
	}
}

// probeSamples counts how many of the first fallbackProbeLen 16-bit
// values fall inside the plausible reflectance range.
func probeSamples(data []byte, bo binary.ByteOrder) int {
	plausible := 0
	for i := 0; i < fallbackProbeLen; i++ {
		raw := int16(bo.Uint16(data[i*2 : i*2+2]))
		if float64(raw) >= fallbackMinRaw && float64(raw) <= fallbackMaxRaw {
			plausible++
		}
	}
	return plausible
}
