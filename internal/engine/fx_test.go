package engine

import (
	"errors"
	"testing"

	"github.com/kashyapn/inrhedge/internal/domain"
)

func TestConversionRoundTrip(t *testing.T) {
	amounts := []float64{1, 999.99, 1_000_000, 12_345_678.9}
	rates := []float64{0.013, 1, 74.5, 85, 89.25, 100}

	for _, x := range amounts {
		for _, r := range rates {
			usd, err := ToForeign(x, r)
			if err != nil {
				t.Fatalf("ToForeign(%v, %v): %v", x, r, err)
			}
			back, err := ToLocal(usd, r)
			if err != nil {
				t.Fatalf("ToLocal(%v, %v): %v", usd, r, err)
			}
			if !approx(back, x) {
				t.Errorf("round trip x=%v r=%v: got %v", x, r, back)
			}
		}
	}
}

func TestConversionKnownValues(t *testing.T) {
	usd, err := ToForeign(1_000_000, 85.0)
	if err != nil {
		t.Fatal(err)
	}
	if !approx(usd, 11764.705882352941) {
		t.Errorf("ToForeign(1000000, 85) = %v", usd)
	}

	inr, err := ToLocal(1000, 85.0)
	if err != nil {
		t.Fatal(err)
	}
	if inr != 85_000 {
		t.Errorf("ToLocal(1000, 85) = %v, want 85000", inr)
	}
}

func TestConversionInvalidRate(t *testing.T) {
	for _, rate := range []float64{0, -1, -85} {
		if _, err := ToForeign(100, rate); !errors.Is(err, domain.ErrInvalidRate) {
			t.Errorf("ToForeign rate=%v error = %v, want ErrInvalidRate", rate, err)
		}
		if _, err := ToLocal(100, rate); !errors.Is(err, domain.ErrInvalidRate) {
			t.Errorf("ToLocal rate=%v error = %v, want ErrInvalidRate", rate, err)
		}
	}
}
