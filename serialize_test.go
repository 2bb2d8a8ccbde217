package bloomd

import (
	"bytes"
	"errors"
	"fmt"
	"testing"
)

func TestSnapshotRoundTrip(t *testing.T) {
	f, err := NewWithRate(1000, 0.01)
	if err != nil {
		t.Fatal(err)
	}
	for i := range 500 {
		f.Insert(fmt.Appendf(nil, "item-%d", i))
	}

	data, err := f.MarshalBinary()
	if err != nil {
		t.Fatal(err)
	}

	g, err := UnmarshalBinary(data)
	if err != nil {
		t.Fatal(err)
	}

	if g.M() != f.M() || g.K() != f.K() || g.Count() != f.Count() {
		t.Errorf("parameters changed across round trip: m=%d/%d k=%d/%d count=%d/%d",
			f.M(), g.M(), f.K(), g.K(), f.Count(), g.Count())
	}
	for i := range 500 {
		if !g.Contains(fmt.Appendf(nil, "item-%d", i)) {
			t.Fatalf("false negative after round trip for item-%d", i)
		}
	}

	// Round-tripping again must produce identical bytes.
	data2, err := g.MarshalBinary()
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(data, data2) {
		t.Error("expected identical snapshot bytes across round trips")
	}
}

func TestSnapshotInvalidData(t *testing.T) {
	f, err := NewWithHashCount(100, 4)
	if err != nil {
		t.Fatal(err)
	}
	valid, err := f.MarshalBinary()
	if err != nil {
		t.Fatal(err)
	}

	// Too short.
	if _, err := UnmarshalBinary(valid[:10]); !errors.Is(err, ErrInvalidSnapshot) {
		t.Errorf("expected ErrInvalidSnapshot for short data, got %v", err)
	}

	// Unknown version.
	bad := bytes.Clone(valid)
	bad[0] = 99
	if _, err := UnmarshalBinary(bad); !errors.Is(err, ErrUnsupportedVersion) {
		t.Errorf("expected ErrUnsupportedVersion, got %v", err)
	}

	// Truncated word data.
	if _, err := UnmarshalBinary(valid[:len(valid)-8]); !errors.Is(err, ErrInvalidSnapshot) {
		t.Errorf("expected ErrInvalidSnapshot for truncated data, got %v", err)
	}

	// Zero bit-array size.
	bad = bytes.Clone(valid)
	for i := 1; i < 9; i++ {
		bad[i] = 0
	}
	if _, err := UnmarshalBinary(bad); !errors.Is(err, ErrInvalidSnapshot) {
		t.Errorf("expected ErrInvalidSnapshot for zero size, got %v", err)
	}
}
