package explorer

import "encoding/binary"

// Minimal BMP container writer. The boundary layer renders the
// classification mask without any platform image codec, so the mask is
// serialized as the one bitmap flavor every renderer accepts: 32-bit
// BGRA, BITMAPINFOHEADER, no compression. Rows are 4-byte aligned by
// construction at 32 bits per pixel, so no padding is ever written.

const (
	bmpFileHeaderSize = 14
	bmpInfoHeaderSize = 40
	bmpPixelOffset    = bmpFileHeaderSize + bmpInfoHeaderSize
)

// EncodeBMP serializes an RGBA mask into a self-contained BMP byte
// buffer. The height field is written negative to declare top-down
// row order, matching the classifier's output, and red/blue channels
// are swapped into the BGRA order the container requires.
func EncodeBMP(mask *MaskImage) []byte {
	imageSize := mask.Width * mask.Height * 4
	out := make([]byte, bmpPixelOffset+imageSize)
	le := binary.LittleEndian

	// File header.
	out[0] = 'B'
	out[1] = 'M'
	le.PutUint32(out[2:6], uint32(bmpPixelOffset+imageSize))
	// Bytes 6-10 are reserved and stay zero.
	le.PutUint32(out[10:14], bmpPixelOffset)

	// Info header (BITMAPINFOHEADER).
	le.PutUint32(out[14:18], bmpInfoHeaderSize)
	le.PutUint32(out[18:22], uint32(int32(mask.Width)))
	le.PutUint32(out[22:26], uint32(int32(-mask.Height))) // top-down
	le.PutUint16(out[26:28], 1)                           // color planes
	le.PutUint16(out[28:30], 32)                          // bits per pixel
	le.PutUint32(out[30:34], 0)                           // BI_RGB, no compression
	le.PutUint32(out[34:38], uint32(imageSize))
	// Resolution and palette fields (bytes 38-54) stay zero.

	px := out[bmpPixelOffset:]
	for i := 0; i+3 < len(mask.Pix); i += 4 {
		px[i] = mask.Pix[i+2] // B
		px[i+1] = mask.Pix[i+1]
		px[i+2] = mask.Pix[i] // R
		px[i+3] = mask.Pix[i+3]
	}

	return out
}
