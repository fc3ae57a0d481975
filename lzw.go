package explorer

// TIFF-flavored LZW decompression.
//
// TIFF packs LZW codes MSB-first and widens the code size one code
// earlier than the GIF variant implemented by compress/lzw, so streams
// produced by imagery services cannot be fed to the standard library
// decoder. Codes start at 9 bits and grow to at most 12; code 256
// clears the dictionary and 257 ends the stream.

const (
	lzwClearCode = 256
	lzwEOICode   = 257
	lzwFirstCode = 258
	lzwMaxCode   = 4095
	lzwMinWidth  = 9
	lzwMaxWidth  = 12
)

// bitReader extracts MSB-first variable-width codes from a byte range.
// The partially-consumed bit state lives entirely in this value; a
// fresh reader is created per strip.
type bitReader struct {
	src []byte
	pos int    // next byte to consume
	acc uint32 // buffered bits, right-aligned
	n   int    // number of valid bits in acc
}

// read returns the next width-bit code, or ok=false once the input
// range is exhausted.
func (r *bitReader) read(width int) (code int, ok bool) {
	for r.n < width {
		if r.pos >= len(r.src) {
			return 0, false
		}
		r.acc = r.acc<<8 | uint32(r.src[r.pos])
		r.pos++
		r.n += 8
	}
	r.n -= width
	code = int(r.acc >> uint(r.n))
	r.acc &= 1<<uint(r.n) - 1
	return code, true
}

// decompressLZW reconstructs the byte stream for one strip. Corrupt
// codes terminate decoding early; whatever was decoded up to that
// point is returned rather than discarded, and the caller's zero-fill
// covers the rest of the strip.
func decompressLZW(data []byte) []byte {
	if len(data) == 0 {
		return nil
	}

	// Dictionary seeded with the 256 single-byte strings. Entries 256
	// and 257 are placeholders for the clear and EOI codes, which are
	// never stored.
	dict := make([][]byte, lzwFirstCode, lzwMaxCode+1)
	for i := 0; i < 256; i++ {
		dict[i] = []byte{byte(i)}
	}

	r := &bitReader{src: data}
	width := lzwMinWidth
	var prev []byte
	var out []byte

	for {
		code, ok := r.read(width)
		if !ok || code == lzwEOICode {
			return out
		}

		if code == lzwClearCode {
			dict = dict[:lzwFirstCode]
			width = lzwMinWidth
			prev = nil
			continue
		}

		var entry []byte
		switch {
		case code < len(dict):
			entry = dict[code]
		case code == len(dict) && prev != nil:
			// The code being defined by this very step: prev + prev[0].
			entry = append(append(make([]byte, 0, len(prev)+1), prev...), prev[0])
		default:
			// Corrupt stream; keep the partial output.
			return out
		}

		out = append(out, entry...)

		if prev != nil && len(dict) <= lzwMaxCode {
			grown := append(append(make([]byte, 0, len(prev)+1), prev...), entry[0])
			dict = append(dict, grown)
			// TIFF widens one code before the table is actually full.
			if len(dict)+1 >= 1<<width && width < lzwMaxWidth {
				width++
			}
		}
		prev = entry
	}
}
