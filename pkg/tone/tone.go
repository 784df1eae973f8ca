// Package tone holds the fixed reference-note table the pitch-training
// exercises draw from: one chromatic octave starting at C4 plus the
// diatonic steps up to E5.
package tone

import "math"

// Note is one entry of the reference table.
type Note struct {
	Name      string  // scientific pitch name, e.g. "A4"
	Frequency float64 // equal temperament, Hz
	Label     string  // katakana solfège shown to the trainee
}

// Table lists the 15 reference notes. The order is chromatic and
// meaningful: Nearest resolves ties to the earlier entry.
var Table = []Note{
	{"C4", 261.63, "ド4"},
	{"C#4", 277.18, "ド♯4"},
	{"D4", 293.66, "レ4"},
	{"D#4", 311.13, "レ♯4"},
	{"E4", 329.63, "ミ4"},
	{"F4", 349.23, "ファ4"},
	{"F#4", 369.99, "ファ♯4"},
	{"G4", 392.00, "ソ4"},
	{"G#4", 415.30, "ソ♯4"},
	{"A4", 440.00, "ラ4"},
	{"A#4", 466.16, "ラ♯4"},
	{"B4", 493.88, "シ4"},
	{"C5", 523.25, "ド5"},
	{"D5", 587.33, "レ5"},
	{"E5", 659.25, "ミ5"},
}

// ByName returns the entry with the given name. A miss is a normal
// query outcome, not an error.
func ByName(name string) (Note, bool) {
	for _, n := range Table {
		if n.Name == name {
			return n, true
		}
	}
	return Note{}, false
}

// Nearest returns the entry closest to freq. It is total: frequencies
// outside the covered range map to the boundary entries.
func Nearest(freq float64) Note {
	best := Table[0]
	bestDiff := math.Abs(freq - best.Frequency)
	for _, n := range Table[1:] {
		if d := math.Abs(freq - n.Frequency); d < bestDiff {
			best, bestDiff = n, d
		}
	}
	return best
}

// Names returns every note name in table order.
func Names() []string {
	names := make([]string, len(Table))
	for i, n := range Table {
		names[i] = n.Name
	}
	return names
}

// Cents returns how far freq sits from n, in cents. Positive means
// sharp of the reference.
func Cents(freq float64, n Note) float64 {
	return 1200 * math.Log2(freq/n.Frequency)
}
