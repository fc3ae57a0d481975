package explorer

import (
	"errors"
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ErrShapeMismatch is returned when bands of unequal dimensions are
// combined. This is a caller-contract violation, never silently
// truncated.
var ErrShapeMismatch = errors.New("band rasters have mismatched dimensions")

// vegetatedThreshold is the index value above which a pixel counts as
// vegetated in the scalar summary statistic.
const vegetatedThreshold = 0.3

// IndexRaster is a derived per-pixel normalized difference index.
// Values are typically in [-1, 1]; pixels where the denominator was
// not positive hold exactly 0.
type IndexRaster struct {
	Width  int
	Height int
	Values []float64
}

// MaskImage is a renderable classification: a dense RGBA buffer,
// row-major, top-to-bottom, 4 bytes per pixel.
type MaskImage struct {
	Width  int
	Height int
	Pix    []byte
}

// VegetationClass is one classification bucket: pixels with an index
// value strictly above Threshold (and not claimed by a higher bucket)
// belong to it.
type VegetationClass struct {
	Name      string
	Threshold float64
	Color     color.RGBA
}

// DefaultClasses is the NDVI bucket table, ordered from most to least
// vegetated. The last entry is the catch-all and its threshold is
// never consulted. Water gets a higher alpha so it stands out against
// the vegetation shades when the mask is drawn over imagery.
func DefaultClasses() []VegetationClass {
	return []VegetationClass{
		{Name: "dense vegetation", Threshold: 0.6, Color: color.RGBA{R: 0, G: 100, B: 0, A: 180}},
		{Name: "moderate vegetation", Threshold: 0.4, Color: color.RGBA{R: 34, G: 139, B: 34, A: 180}},
		{Name: "sparse vegetation", Threshold: 0.2, Color: color.RGBA{R: 154, G: 205, B: 50, A: 180}},
		{Name: "bare soil", Threshold: 0.0, Color: color.RGBA{R: 210, G: 180, B: 140, A: 180}},
		{Name: "water/non-vegetation", Threshold: math.Inf(-1), Color: color.RGBA{R: 0, G: 105, B: 148, A: 230}},
	}
}

// ClassLabels returns the ordered class names for a bucket table.
func ClassLabels(classes []VegetationClass) []string {
	labels := make([]string, len(classes))
	for i, c := range classes {
		labels[i] = c.Name
	}
	return labels
}

// ComputeNDVI combines the near-infrared and red bands into the
// normalized difference vegetation index (nir-red)/(nir+red). The
// index is defined pointwise only where nir+red > 0; elsewhere, and
// wherever the quotient is non-finite, the value is exactly 0 so that
// downstream classification stays total.
func ComputeNDVI(nir, red *BandRaster) (*IndexRaster, error) {
	if nir.Width != red.Width || nir.Height != red.Height {
		return nil, fmt.Errorf("%w: nir %dx%d, red %dx%d",
			ErrShapeMismatch, nir.Width, nir.Height, red.Width, red.Height)
	}

	values := make([]float64, len(nir.Samples))
	for i := range values {
		a := nir.Samples[i]
		b := red.Samples[i]
		sum := a + b
		if sum <= 0 {
			continue
		}
		v := (a - b) / sum
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		values[i] = v
	}

	return &IndexRaster{Width: nir.Width, Height: nir.Height, Values: values}, nil
}

// Classify buckets every index value into the given ordered class
// table and paints the matching color. Buckets are scanned from the
// highest threshold down with a strict > comparison, so boundary
// values land in the more vegetated bucket.
func Classify(idx *IndexRaster, classes []VegetationClass) *MaskImage {
	mask := &MaskImage{
		Width:  idx.Width,
		Height: idx.Height,
		Pix:    make([]byte, idx.Width*idx.Height*4),
	}

	for i, v := range idx.Values {
		c := classes[len(classes)-1].Color
		for _, cls := range classes[:len(classes)-1] {
			if v > cls.Threshold {
				c = cls.Color
				break
			}
		}
		o := i * 4
		mask.Pix[o] = c.R
		mask.Pix[o+1] = c.G
		mask.Pix[o+2] = c.B
		mask.Pix[o+3] = c.A
	}

	return mask
}

// VegetatedFraction reports the fraction of pixels whose index value
// exceeds the vegetation threshold.
func VegetatedFraction(idx *IndexRaster) float64 {
	if len(idx.Values) == 0 {
		return 0
	}
	n := 0
	for _, v := range idx.Values {
		if v > vegetatedThreshold {
			n++
		}
	}
	return float64(n) / float64(len(idx.Values))
}

// IndexSummary is the scalar roll-up of an index raster handed to the
// boundary layer alongside the mask.
type IndexSummary struct {
	Mean              float64
	StdDev            float64
	Min               float64
	Max               float64
	VegetatedFraction float64
}

// Summarize computes distribution statistics over the index raster.
func Summarize(idx *IndexRaster) IndexSummary {
	if len(idx.Values) == 0 {
		return IndexSummary{}
	}
	mean, std := stat.MeanStdDev(idx.Values, nil)
	if math.IsNaN(std) {
		std = 0 // single-pixel raster
	}
	return IndexSummary{
		Mean:              mean,
		StdDev:            std,
		Min:               floats.Min(idx.Values),
		Max:               floats.Max(idx.Values),
		VegetatedFraction: VegetatedFraction(idx),
	}
}
