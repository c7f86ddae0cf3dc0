package dimension

import (
	"errors"
	"math"
	"testing"
)

func TestUnitToMeters(t *testing.T) {
	tests := []struct {
		unit Unit
		want float64
	}{
		{Meter, 1.0},
		{Foot, 0.3048},
		{Inch, 0.0254},
	}

	for _, tt := range tests {
		t.Run(tt.unit.String(), func(t *testing.T) {
			n, err := Normalize(Token{Value: 1, Unit: tt.unit, RawText: "1"})
			if err != nil {
				t.Fatalf("Normalize failed: %v", err)
			}
			if math.Abs(n.ValueM-tt.want) > 1e-9 {
				t.Errorf("1 %s = %v m, want %v", tt.unit, n.ValueM, tt.want)
			}
		})
	}
}

func TestNormalize_RejectsNonPositive(t *testing.T) {
	for _, v := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		_, err := Normalize(Token{Value: v, Unit: Meter})
		if !errors.Is(err, ErrNonPositive) {
			t.Errorf("Normalize(%v) error = %v, want ErrNonPositive", v, err)
		}
	}
}

func TestNormalize_KeepsSource(t *testing.T) {
	tok := Token{Value: 10, Unit: Foot, RawText: "10 ft", Start: 4, End: 9}
	n, err := Normalize(tok)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if n.Source != tok {
		t.Errorf("Source = %+v, want %+v", n.Source, tok)
	}
	if math.Abs(n.ValueM-3.048) > 1e-9 {
		t.Errorf("ValueM = %v, want 3.048", n.ValueM)
	}
}

func TestNormalizeAll(t *testing.T) {
	tokens := []Token{
		{Value: 2, Unit: Meter},
		{Value: 0, Unit: Foot},
		{Value: 12, Unit: Inch},
	}

	got, rejected := NormalizeAll(tokens)
	if rejected != 1 {
		t.Errorf("rejected = %d, want 1", rejected)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Source.Unit != Meter || got[1].Source.Unit != Inch {
		t.Errorf("order not preserved: %v", got)
	}
}

func TestParseUnit(t *testing.T) {
	tests := map[string]Unit{
		"m": Meter, "Metres": Meter, "FT": Foot, "feet": Foot, "in": Inch, "inches": Inch,
	}
	for in, want := range tests {
		got, err := ParseUnit(in)
		if err != nil || got != want {
			t.Errorf("ParseUnit(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseUnit("yd"); err == nil {
		t.Error("ParseUnit(yd) should fail")
	}
}

func TestUnitTextRoundTrip(t *testing.T) {
	for _, u := range Units {
		b, err := u.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText(%v): %v", u, err)
		}
		var back Unit
		if err := back.UnmarshalText(b); err != nil || back != u {
			t.Errorf("round trip %v -> %s -> %v (%v)", u, b, back, err)
		}
	}
}

func TestSquareFeet(t *testing.T) {
	if got := SquareFeet(10.5); math.Abs(got-113.02095) > 1e-6 {
		t.Errorf("SquareFeet(10.5) = %v", got)
	}
}

func TestFeet(t *testing.T) {
	if got := Feet(0.3048); math.Abs(got-1) > 1e-12 {
		t.Errorf("Feet(0.3048) = %v, want 1", got)
	}
	if got := Feet(3.048); math.Abs(got-10) > 1e-9 {
		t.Errorf("Feet(3.048) = %v, want 10", got)
	}
}
