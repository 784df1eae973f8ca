package tone_test

import (
	"math"
	"testing"

	"pitchref/pkg/tone"
)

func TestTableShape(t *testing.T) {
	if len(tone.Table) != 15 {
		t.Fatalf("table has %d entries, want 15", len(tone.Table))
	}
	if got := tone.Table[0].Frequency; got != 261.63 {
		t.Errorf("first entry is %v Hz, want 261.63", got)
	}
	if got := tone.Table[len(tone.Table)-1].Frequency; got != 659.25 {
		t.Errorf("last entry is %v Hz, want 659.25", got)
	}
	for i := 1; i < len(tone.Table); i++ {
		if tone.Table[i].Frequency <= tone.Table[i-1].Frequency {
			t.Errorf("frequencies not strictly increasing at %s", tone.Table[i].Name)
		}
	}
	seen := make(map[string]bool)
	for _, n := range tone.Table {
		if seen[n.Name] {
			t.Errorf("duplicate name %s", n.Name)
		}
		seen[n.Name] = true
		if n.Label == "" {
			t.Errorf("%s has an empty label", n.Name)
		}
	}
}

func TestByName(t *testing.T) {
	n, ok := tone.ByName("A4")
	if !ok {
		t.Fatal("A4 not found")
	}
	if n.Frequency != 440.00 {
		t.Errorf("A4 is %v Hz, want 440.00", n.Frequency)
	}
	if _, ok := tone.ByName("Z9"); ok {
		t.Error("Z9 should be absent")
	}
}

func TestNearest(t *testing.T) {
	if got := tone.Nearest(440); got.Name != "A4" {
		t.Errorf("Nearest(440) = %s, want A4", got.Name)
	}
	if got := tone.Nearest(0); got.Name != tone.Table[0].Name {
		t.Errorf("Nearest(0) = %s, want lowest entry", got.Name)
	}
	if got := tone.Nearest(10000); got.Name != tone.Table[len(tone.Table)-1].Name {
		t.Errorf("Nearest(10000) = %s, want highest entry", got.Name)
	}
}

func TestNearestTieKeepsEarlier(t *testing.T) {
	a, b := tone.Table[0], tone.Table[1]
	mid := (a.Frequency + b.Frequency) / 2
	want := a
	// the scan replaces only on a strictly smaller difference, so on an
	// exact tie the earlier entry wins; floating point may tip the
	// midpoint to one side, in which case that side is simply nearer
	if math.Abs(mid-b.Frequency) < math.Abs(mid-a.Frequency) {
		want = b
	}
	if got := tone.Nearest(mid); got.Name != want.Name {
		t.Errorf("Nearest(%v) = %s, want %s", mid, got.Name, want.Name)
	}
}

func TestCents(t *testing.T) {
	a4, _ := tone.ByName("A4")
	if got := tone.Cents(440, a4); got != 0 {
		t.Errorf("Cents(440, A4) = %v, want 0", got)
	}
	sharp, _ := tone.ByName("A#4")
	if got := tone.Cents(sharp.Frequency, a4); math.Abs(got-100) > 0.5 {
		t.Errorf("A#4 sits %v cents above A4, want ~100", got)
	}
	if got := tone.Cents(a4.Frequency, sharp); math.Abs(got+100) > 0.5 {
		t.Errorf("A4 sits %v cents below A#4, want ~-100", got)
	}
}
