package explorer

import (
	"encoding/binary"
	"fmt"
	"sync"
)

// reflectanceScale is the calibration convention for band samples:
// each signed 16-bit sample equals round(reflectance * 10000), with
// reflectance pre-clamped to [-3.2, 3.2] by the producer.
const reflectanceScale = 10000.0

// BandRaster is one decoded band as calibrated reflectance fractions,
// stored row-major with exactly Width*Height samples.
type BandRaster struct {
	Width  int
	Height int
	// Samples holds reflectance values; positions the decode could not
	// recover are zero.
	Samples []float64
	// Degraded reports that the normal codec path recovered too little
	// data and the raster came through the fallback scanner (possibly
	// as all zeros). Genuinely dark imagery and a failed decode look
	// identical in the samples alone, so quality-sensitive callers
	// should check this flag.
	Degraded bool
}

// At returns the sample at (x, y), or 0 outside the raster.
func (b *BandRaster) At(x, y int) float64 {
	if x < 0 || x >= b.Width || y < 0 || y >= b.Height {
		return 0
	}
	return b.Samples[y*b.Width+x]
}

// MultiBandSet maps band identifiers (e.g. "B04", "B08") to decoded
// rasters. All members share the same dimensions.
type MultiBandSet map[string]*BandRaster

// Band returns the raster for the given identifier or an error naming
// the missing band.
func (s MultiBandSet) Band(id string) (*BandRaster, error) {
	b, ok := s[id]
	if !ok {
		return nil, fmt.Errorf("band %s not present in set", id)
	}
	return b, nil
}

// samplesToRaster reinterprets a decompressed byte stream as signed
// 16-bit samples in the given byte order and rescales them to
// reflectance. Short input never fails: the remaining positions stay
// zero and upstream quality checks decide whether the result is
// usable.
func samplesToRaster(data []byte, bo binary.ByteOrder, width, height int) *BandRaster {
	samples := make([]float64, width*height)
	n := len(data) / 2
	if n > len(samples) {
		n = len(samples)
	}
	for i := 0; i < n; i++ {
		raw := int16(bo.Uint16(data[i*2 : i*2+2]))
		samples[i] = float64(raw) / reflectanceScale
	}
	return &BandRaster{Width: width, Height: height, Samples: samples}
}

// DecodeBand decodes one band tile from a raw TIFF buffer into a
// calibrated raster of the declared dimensions. The dimensions are
// supplied by the caller, not re-derived from the container.
//
// Strip-level codec failures zero-fill that strip's pixel range and
// decoding continues. If the codec path recovers fewer than half of
// the expected pixels, or the compression code is unrecognized, the
// fallback scanner takes over; its result is degraded but non-fatal.
// Only a malformed container is a hard error.
func DecodeBand(buf []byte, width, height int) (*BandRaster, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid raster dimensions %dx%d", width, height)
	}

	ifd, err := ParseTIFF(buf)
	if err != nil {
		return nil, err
	}

	kind := classifyCompression(ifd.Compression)
	if kind == kindUnsupported {
		return scanFallback(buf, ifd.ByteOrder, width, height), nil
	}

	rps := int(ifd.RowsPerStrip)
	if rps <= 0 || rps > height {
		rps = height
	}

	bytesPerRow := width * 2
	payload := GetBuffer(height * bytesPerRow)
	defer PutBuffer(payload)
	recovered := 0

	for i, strip := range ifd.Strips {
		startRow := i * rps
		if startRow >= height {
			break
		}
		rows := rps
		if startRow+rows > height {
			rows = height - startRow
		}
		dst := payload[startRow*bytesPerRow : startRow*bytesPerRow+rows*bytesPerRow]

		end := int64(strip.Offset) + int64(strip.ByteCount)
		if end > int64(len(buf)) {
			continue // strip table points past the buffer; leave zeros
		}
		src := buf[strip.Offset:end]

		var decoded []byte
		switch kind {
		case kindNone:
			decoded = src
		case kindLZW:
			decoded = decompressLZW(src)
		case kindDeflate:
			d, err := inflate(src)
			if err != nil {
				continue // both framings rejected; leave zeros
			}
			decoded = d
		}
		recovered += copy(dst, decoded)
	}

	// Fewer than 50% of pixels recovered means the codec path is not
	// trustworthy; hand the raw buffer to the offset scanner instead.
	if (recovered/2)*2 < width*height {
		return scanFallback(buf, ifd.ByteOrder, width, height), nil
	}

	return samplesToRaster(payload, ifd.ByteOrder, width, height), nil
}

type bandResult struct {
	id     string
	raster *BandRaster
	err    error
}

// DecodeBands decodes several band buffers concurrently and assembles
// them into a MultiBandSet. Band decodes share no state, so each runs
// as an independent goroutine; the first fatal parse error aborts the
// whole set.
func DecodeBands(buffers map[string][]byte, width, height int) (MultiBandSet, error) {
	results := make(chan bandResult, len(buffers))

	var wg sync.WaitGroup
	for id, buf := range buffers {
		wg.Add(1)
		go func(id string, buf []byte) {
			defer wg.Done()
			r, err := DecodeBand(buf, width, height)
			results <- bandResult{id: id, raster: r, err: err}
		}(id, buf)
	}
	wg.Wait()
	close(results)

	set := make(MultiBandSet, len(buffers))
	for res := range results {
		if res.err != nil {
			return nil, fmt.Errorf("decoding band %s: %w", res.id, res.err)
		}
		set[res.id] = res.raster
	}
	return set, nil
}
