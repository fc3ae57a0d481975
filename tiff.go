package explorer

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// TIFF compression codes used by the imagery service.
const (
	CompressionNone    = 1
	CompressionLZW     = 5
	CompressionDeflate = 8
	CompressionZlib    = 32946 // legacy code, same payload as Deflate
)

// TIFF field types. Only the types that appear in single-band imagery
// tiles are interpreted; everything else is skipped.
const (
	ftByte  = 1
	ftASCII = 2
	ftShort = 3
	ftLong  = 4
)

// Tag IDs the parser acts on. Unknown tags are ignored.
const (
	TagCompression     = 259
	TagStripOffsets    = 273
	TagRowsPerStrip    = 278
	TagStripByteCounts = 279
)

// ErrMalformedHeader is returned when a buffer cannot be a TIFF at all:
// too short, bad byte-order magic, or a directory that points past the
// end of the buffer.
var ErrMalformedHeader = errors.New("tiff: malformed header")

// TiffTag is a single raw IFD entry.
type TiffTag struct {
	ID    uint16
	Type  uint16
	Count uint32
	// Value holds the 4-byte inline value field; for count > 1 it is
	// an offset into the buffer.
	Value uint32
}

// Strip is one contiguous row-range segment of the image data.
type Strip struct {
	Offset    uint32
	ByteCount uint32
}

// ImageFileDirectory is the parsed container metadata for one band
// tile. It is built once per input buffer and not modified afterwards.
type ImageFileDirectory struct {
	ByteOrder    binary.ByteOrder
	Compression  uint16
	RowsPerStrip uint32
	Strips       []Strip
}

// compressionKind is the closed set of decode strategies. The fallback
// scanner is not a member: it is a quality-driven recovery path, not a
// format.
type compressionKind int

const (
	kindNone compressionKind = iota
	kindLZW
	kindDeflate
	kindUnsupported
)

func classifyCompression(code uint16) compressionKind {
	switch code {
	case CompressionNone:
		return kindNone
	case CompressionLZW:
		return kindLZW
	case CompressionDeflate, CompressionZlib:
		return kindDeflate
	default:
		return kindUnsupported
	}
}

// ParseTIFF parses the IFD of a single-band TIFF held entirely in buf.
// It returns the compression code, rows-per-strip, and the ordered
// strip table. A buffer that cannot be parsed yields an error wrapping
// ErrMalformedHeader; no partial directory is returned.
func ParseTIFF(buf []byte) (*ImageFileDirectory, error) {
	if len(buf) < 8 {
		return nil, fmt.Errorf("%w: %d bytes", ErrMalformedHeader, len(buf))
	}

	var bo binary.ByteOrder
	switch string(buf[0:2]) {
	case "II":
		bo = binary.LittleEndian
	case "MM":
		bo = binary.BigEndian
	default:
		return nil, fmt.Errorf("%w: byte order %q", ErrMalformedHeader, buf[0:2])
	}

	ifdOffset := bo.Uint32(buf[4:8])
	if int64(ifdOffset)+2 > int64(len(buf)) {
		return nil, fmt.Errorf("%w: IFD offset %d beyond buffer end", ErrMalformedHeader, ifdOffset)
	}

	entryCount := int(bo.Uint16(buf[ifdOffset : ifdOffset+2]))
	entriesEnd := int64(ifdOffset) + 2 + int64(entryCount)*12
	if entriesEnd > int64(len(buf)) {
		return nil, fmt.Errorf("%w: %d IFD entries exceed buffer", ErrMalformedHeader, entryCount)
	}

	ifd := &ImageFileDirectory{
		ByteOrder:   bo,
		Compression: CompressionNone,
	}

	var offsets, counts []uint32
	for i := 0; i < entryCount; i++ {
		entry := buf[int(ifdOffset)+2+i*12:]
		tag := TiffTag{
			ID:    bo.Uint16(entry[0:2]),
			Type:  bo.Uint16(entry[2:4]),
			Count: bo.Uint32(entry[4:8]),
			Value: bo.Uint32(entry[8:12]),
		}

		switch tag.ID {
		case TagCompression:
			ifd.Compression = uint16(tagScalar(entry, tag, bo))
		case TagRowsPerStrip:
			ifd.RowsPerStrip = tagScalar(entry, tag, bo)
		case TagStripOffsets:
			vals, err := tagValues(buf, entry, tag, bo)
			if err != nil {
				return nil, err
			}
			offsets = vals
		case TagStripByteCounts:
			vals, err := tagValues(buf, entry, tag, bo)
			if err != nil {
				return nil, err
			}
			counts = vals
		}
	}

	if len(offsets) != len(counts) {
		return nil, fmt.Errorf("tiff: %d strip offsets but %d byte counts", len(offsets), len(counts))
	}
	ifd.Strips = make([]Strip, len(offsets))
	for i := range offsets {
		ifd.Strips[i] = Strip{Offset: offsets[i], ByteCount: counts[i]}
	}

	return ifd, nil
}

// tagScalar reads a single-valued tag. SHORT values live in the first
// two bytes of the value field; everything else is read as a LONG.
func tagScalar(entry []byte, tag TiffTag, bo binary.ByteOrder) uint32 {
	if tag.Type == ftShort {
		return uint32(bo.Uint16(entry[8:10]))
	}
	return tag.Value
}

// tagValues reads a possibly multi-valued tag. Single values are
// inline; larger counts resolve through the offset in the value field.
func tagValues(buf, entry []byte, tag TiffTag, bo binary.ByteOrder) ([]uint32, error) {
	if tag.Count == 1 {
		return []uint32{tagScalar(entry, tag, bo)}, nil
	}

	size := 4
	if tag.Type == ftShort {
		size = 2
	}
	start := int64(tag.Value)
	end := start + int64(tag.Count)*int64(size)
	if end > int64(len(buf)) {
		return nil, fmt.Errorf("%w: tag %d values [%d:%d] beyond buffer", ErrMalformedHeader, tag.ID, start, end)
	}

	vals := make([]uint32, tag.Count)
	for i := range vals {
		off := start + int64(i*size)
		if tag.Type == ftShort {
			vals[i] = uint32(bo.Uint16(buf[off : off+2]))
		} else {
			vals[i] = bo.Uint32(buf[off : off+4])
		}
	}
	return vals, nil
}
