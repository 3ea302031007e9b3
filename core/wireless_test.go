package core

import (
	"math"
	"testing"
)

func TestToLinearToDB_RoundTrip(t *testing.T) {
	for _, db := range []float64{-120, -90, -3.5, 0, 10, 27} {
		if got := ToDB(ToLinear(db)); math.Abs(got-db) > 1e-9 {
			t.Fatalf("ToDB(ToLinear(%v)) = %v", db, got)
		}
	}
}

func TestNegativeInfinityMapsToZero(t *testing.T) {
	if got := ToLinear(math.Inf(-1)); got != 0 {
		t.Fatalf("ToLinear(-Inf) = %v, want 0", got)
	}
	if got := ToDB(0); !math.IsInf(got, -1) {
		t.Fatalf("ToDB(0) = %v, want -Inf", got)
	}
}

func TestAddPowersDB(t *testing.T) {
	if got := AddPowersDB(-90, math.Inf(-1)); got != -90 {
		t.Fatalf("adding -Inf changed value: %v", got)
	}
	if got := AddPowersDB(math.Inf(-1), -42.5); got != -42.5 {
		t.Fatalf("adding to -Inf changed value: %v", got)
	}
	if got := AddPowersDB(math.Inf(-1), math.Inf(-1)); !math.IsInf(got, -1) {
		t.Fatalf("-Inf + -Inf = %v", got)
	}
	// two equal signals add 10*log10(2) dB
	if got := AddPowersDB(-50, -50); math.Abs(got-(-50+10*math.Log10(2))) > 1e-9 {
		t.Fatalf("-50 + -50 = %v", got)
	}
}
