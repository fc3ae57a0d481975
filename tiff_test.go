package explorer

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"testing"
)

// buildBandTIFF assembles a single-band TIFF for testing: header, one
// IFD with the usual imagery-tile tags, then the strip payloads. Strip
// offset/count arrays are written inline for a single strip and through
// a value pointer for more, so both parser paths get exercised.
func buildBandTIFF(bo binary.ByteOrder, compression uint16, width, height, rowsPerStrip uint32, strips [][]byte) []byte {
	var buf bytes.Buffer

	if bo == binary.LittleEndian {
		binary.Write(&buf, bo, uint16(0x4949)) // "II"
	} else {
		binary.Write(&buf, bo, uint16(0x4D4D)) // "MM"
	}
	binary.Write(&buf, bo, uint16(42)) // version
	binary.Write(&buf, bo, uint32(8))  // first IFD offset

	const numTags = 6
	afterIFD := uint32(8 + 2 + numTags*12 + 4)

	k := uint32(len(strips))
	var offsetsAt, countsAt, dataAt uint32
	if k == 1 {
		dataAt = afterIFD
	} else {
		offsetsAt = afterIFD
		countsAt = afterIFD + 4*k
		dataAt = afterIFD + 8*k
	}

	stripOffsets := make([]uint32, k)
	stripCounts := make([]uint32, k)
	at := dataAt
	for i, s := range strips {
		stripOffsets[i] = at
		stripCounts[i] = uint32(len(s))
		at += uint32(len(s))
	}

	writeTag := func(id, typ uint16, count, value uint32) {
		binary.Write(&buf, bo, id)
		binary.Write(&buf, bo, typ)
		binary.Write(&buf, bo, count)
		if typ == ftShort && count == 1 {
			binary.Write(&buf, bo, uint16(value))
			binary.Write(&buf, bo, uint16(0))
			return
		}
		binary.Write(&buf, bo, value)
	}

	binary.Write(&buf, bo, uint16(numTags))
	writeTag(256, ftLong, 1, width)  // ImageWidth, ignored by the parser
	writeTag(257, ftLong, 1, height) // ImageLength, ignored by the parser
	writeTag(TagCompression, ftShort, 1, uint32(compression))
	if k == 1 {
		writeTag(TagStripOffsets, ftLong, 1, stripOffsets[0])
	} else {
		writeTag(TagStripOffsets, ftLong, k, offsetsAt)
	}
	writeTag(TagRowsPerStrip, ftLong, 1, rowsPerStrip)
	if k == 1 {
		writeTag(TagStripByteCounts, ftLong, 1, stripCounts[0])
	} else {
		writeTag(TagStripByteCounts, ftLong, k, countsAt)
	}
	binary.Write(&buf, bo, uint32(0)) // next IFD

	if k > 1 {
		for _, o := range stripOffsets {
			binary.Write(&buf, bo, o)
		}
		for _, c := range stripCounts {
			binary.Write(&buf, bo, c)
		}
	}
	for _, s := range strips {
		buf.Write(s)
	}

	return buf.Bytes()
}

// samplePayload encodes reflectance values as scaled signed 16-bit
// samples in the given byte order.
func samplePayload(bo binary.ByteOrder, reflectance []float64) []byte {
	out := make([]byte, len(reflectance)*2)
	for i, v := range reflectance {
		raw := int16(math.Round(v * reflectanceScale))
		bo.PutUint16(out[i*2:], uint16(raw))
	}
	return out
}

func TestParseTIFFLittleEndian(t *testing.T) {
	payload := samplePayload(binary.LittleEndian, []float64{0.1, 0.2, 0.3, 0.4})
	data := buildBandTIFF(binary.LittleEndian, CompressionNone, 2, 2, 2, [][]byte{payload})

	ifd, err := ParseTIFF(data)
	if err != nil {
		t.Fatalf("ParseTIFF failed: %v", err)
	}
	if ifd.ByteOrder != binary.LittleEndian {
		t.Error("expected little-endian byte order")
	}
	if ifd.Compression != CompressionNone {
		t.Errorf("expected compression %d, got %d", CompressionNone, ifd.Compression)
	}
	if ifd.RowsPerStrip != 2 {
		t.Errorf("expected rows-per-strip 2, got %d", ifd.RowsPerStrip)
	}
	if len(ifd.Strips) != 1 {
		t.Fatalf("expected 1 strip, got %d", len(ifd.Strips))
	}
	if ifd.Strips[0].ByteCount != uint32(len(payload)) {
		t.Errorf("expected strip byte count %d, got %d", len(payload), ifd.Strips[0].ByteCount)
	}
	got := data[ifd.Strips[0].Offset : ifd.Strips[0].Offset+ifd.Strips[0].ByteCount]
	if !bytes.Equal(got, payload) {
		t.Error("strip offset does not point at the payload")
	}
}

func TestParseTIFFBigEndian(t *testing.T) {
	payload := samplePayload(binary.BigEndian, []float64{0.5, -0.5})
	data := buildBandTIFF(binary.BigEndian, CompressionLZW, 1, 2, 1, [][]byte{payload})

	ifd, err := ParseTIFF(data)
	if err != nil {
		t.Fatalf("ParseTIFF failed: %v", err)
	}
	if ifd.ByteOrder != binary.BigEndian {
		t.Error("expected big-endian byte order")
	}
	if ifd.Compression != CompressionLZW {
		t.Errorf("expected compression %d, got %d", CompressionLZW, ifd.Compression)
	}
}

func TestParseTIFFMultiStrip(t *testing.T) {
	bo := binary.LittleEndian
	s1 := samplePayload(bo, []float64{0.1, 0.2, 0.3, 0.4})
	s2 := samplePayload(bo, []float64{0.5, 0.6, 0.7, 0.8})
	data := buildBandTIFF(bo, CompressionNone, 4, 2, 1, [][]byte{s1, s2})

	ifd, err := ParseTIFF(data)
	if err != nil {
		t.Fatalf("ParseTIFF failed: %v", err)
	}
	if len(ifd.Strips) != 2 {
		t.Fatalf("expected 2 strips, got %d", len(ifd.Strips))
	}
	for i, want := range [][]byte{s1, s2} {
		s := ifd.Strips[i]
		got := data[s.Offset : s.Offset+s.ByteCount]
		if !bytes.Equal(got, want) {
			t.Errorf("strip %d does not match payload", i)
		}
	}
}

func TestParseTIFFMalformed(t *testing.T) {
	cases := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"short", []byte{'I', 'I', 42, 0}},
		{"bad magic", []byte{'X', 'X', 0, 42, 8, 0, 0, 0}},
		{"ifd beyond end", []byte{'I', 'I', 42, 0, 0xFF, 0xFF, 0, 0}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ParseTIFF(tc.data); !errors.Is(err, ErrMalformedHeader) {
				t.Errorf("expected ErrMalformedHeader, got %v", err)
			}
		})
	}
}

func TestParseTIFFTruncatedEntries(t *testing.T) {
	payload := samplePayload(binary.LittleEndian, []float64{0.1})
	data := buildBandTIFF(binary.LittleEndian, CompressionNone, 1, 1, 1, [][]byte{payload})

	// Cut the buffer in the middle of the IFD entry table.
	if _, err := ParseTIFF(data[:20]); !errors.Is(err, ErrMalformedHeader) {
		t.Error("expected ErrMalformedHeader for truncated IFD")
	}
}

func TestClassifyCompression(t *testing.T) {
	cases := []struct {
		code uint16
		want compressionKind
	}{
		{CompressionNone, kindNone},
		{CompressionLZW, kindLZW},
		{CompressionDeflate, kindDeflate},
		{CompressionZlib, kindDeflate},
		{6, kindUnsupported},
		{7, kindUnsupported},
	}
	for _, tc := range cases {
		if got := classifyCompression(tc.code); got != tc.want {
			t.Errorf("classifyCompression(%d) = %d, want %d", tc.code, got, tc.want)
		}
	}
}
