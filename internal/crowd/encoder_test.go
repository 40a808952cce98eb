package crowd

import (
	"testing"
)

func TestFeatureEncoder_Encode(t *testing.T) {
	t.Parallel()
	enc := NewFeatureEncoder([]string{"pyr_giza", "sphinx", "luxor"})

	if got, want := enc.Width(), 7; got != want {
		t.Fatalf("Width() = %d, want %d", got, want)
	}

	tests := []struct {
		name     string
		location string
		wantHot  int // index of the one-hot bit, -1 for none
	}{
		{name: "first location", location: "pyr_giza", wantHot: 0},
		{name: "last location", location: "luxor", wantHot: 2},
		{name: "unknown location encodes all-zero", location: "atlantis", wantHot: -1},
		{name: "empty location encodes all-zero", location: "", wantHot: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vec := enc.Encode(tt.location, 7, 15, 14, 30)
			if len(vec) != enc.Width() {
				t.Fatalf("len(vec) = %d, want %d", len(vec), enc.Width())
			}
			for i := 0; i < 3; i++ {
				want := 0.0
				if i == tt.wantHot {
					want = 1.0
				}
				if vec[i] != want {
					t.Errorf("vec[%d] = %v, want %v", i, vec[i], want)
				}
			}
			if vec[3] != 7 || vec[4] != 15 || vec[5] != 14 || vec[6] != 30 {
				t.Errorf("numeric tail = %v, want [7 15 14 30]", vec[3:])
			}
		})
	}
}

func TestFeatureEncoder_CopiesLocations(t *testing.T) {
	t.Parallel()
	locs := []string{"a", "b"}
	enc := NewFeatureEncoder(locs)
	locs[0] = "mutated"

	vec := enc.Encode("a", 1, 1, 0, 0)
	if vec[0] != 1 {
		t.Error("encoder should not observe mutations of the fitted slice")
	}
}
