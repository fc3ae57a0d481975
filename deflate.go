package explorer

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zlib"
)

// inflate decompresses one strip's byte range that was written with
// Deflate. Imagery services disagree on framing: some emit raw Deflate
// blocks, others the zlib-wrapped form (and TIFF has two compression
// codes for the pair). Raw Deflate is tried first, then zlib; callers
// must not assume the framing in advance.
func inflate(data []byte) ([]byte, error) {
	fr := flate.NewReader(bytes.NewReader(data))
	out, rawErr := io.ReadAll(fr)
	fr.Close()
	if rawErr == nil && len(out) > 0 {
		return out, nil
	}

	zr, zlibErr := zlib.NewReader(bytes.NewReader(data))
	if zlibErr == nil {
		out, zlibErr = io.ReadAll(zr)
		zr.Close()
		if zlibErr == nil {
			return out, nil
		}
	}

	return nil, fmt.Errorf("deflate: raw (%v) and zlib (%v) framings both rejected", rawErr, zlibErr)
}
