// Package explorer turns raw per-band TIFF buffers from a remote
// imagery service into calibrated reflectance rasters, derives a
// vegetation index from them, and renders the classified result as a
// minimal self-contained bitmap.
package explorer

import "fmt"

// Band identifiers used for the vegetation index.
const (
	BandRed = "B04"
	BandNIR = "B08"
)

// VegetationResult bundles everything the boundary layer needs for one
// analyzed area: the raw index, its summary statistics, the ordered
// class labels, and the classification mask both as pixels and as a
// ready-to-transport BMP buffer.
type VegetationResult struct {
	Index   *IndexRaster
	Summary IndexSummary
	Labels  []string
	Mask    *MaskImage
	MaskBMP []byte
	// Degraded is set when any contributing band came through the
	// fallback decode path.
	Degraded bool
}

// AnalyzeVegetation runs the derive/classify/encode half of the
// pipeline over an already-decoded band set. The set must contain the
// NIR and red bands at matching dimensions.
func AnalyzeVegetation(set MultiBandSet, classes []VegetationClass) (*VegetationResult, error) {
	nir, err := set.Band(BandNIR)
	if err != nil {
		return nil, err
	}
	red, err := set.Band(BandRed)
	if err != nil {
		return nil, err
	}

	idx, err := ComputeNDVI(nir, red)
	if err != nil {
		return nil, fmt.Errorf("computing NDVI: %w", err)
	}

	if len(classes) == 0 {
		classes = DefaultClasses()
	}
	mask := Classify(idx, classes)

	return &VegetationResult{
		Index:    idx,
		Summary:  Summarize(idx),
		Labels:   ClassLabels(classes),
		Mask:     mask,
		MaskBMP:  EncodeBMP(mask),
		Degraded: nir.Degraded || red.Degraded,
	}, nil
}
