package explorer

import "testing"

func TestGetBufferZeroesReusedMemory(t *testing.T) {
	buf := GetBuffer(1024)
	if len(buf) != 1024 {
		t.Fatalf("expected 1024 bytes, got %d", len(buf))
	}
	for i := range buf {
		buf[i] = 0xAB
	}
	PutBuffer(buf)

	// Strip decodes rely on untouched regions reading as zero, so a
	// recycled buffer must come back clean.
	again := GetBuffer(2048)
	for i, b := range again {
		if b != 0 {
			t.Fatalf("byte %d not zeroed after reuse: %x", i, b)
		}
	}
	PutBuffer(again)
}

func TestGetBufferOversized(t *testing.T) {
	buf := GetBuffer(largeBufferSize + 1)
	if len(buf) != largeBufferSize+1 {
		t.Fatalf("expected %d bytes, got %d", largeBufferSize+1, len(buf))
	}
	PutBuffer(buf) // dropped, must not panic
}

func TestGetBytesBufferReset(t *testing.T) {
	b := GetBytesBuffer()
	b.WriteString("leftover")
	PutBytesBuffer(b)

	if got := GetBytesBuffer(); got.Len() != 0 {
		t.Errorf("expected a reset buffer, got %d bytes", got.Len())
	}
}
