package crowd

// FeatureEncoder maps a location plus calendar/time fields into a
// fixed-width numeric vector: a one-hot indicator over the fitted
// location set followed by the four raw numeric fields. Numeric
// fields are deliberately unscaled.
//
// Fields are exported so the encoder round-trips through gob as part
// of the model artifact.
type FeatureEncoder struct {
	Locations []string
}

// NewFeatureEncoder fits an encoder on the given location set. The
// one-hot column order follows the slice order.
func NewFeatureEncoder(locations []string) *FeatureEncoder {
	locs := make([]string, len(locations))
	copy(locs, locations)
	return &FeatureEncoder{Locations: locs}
}

// Width returns the length of encoded vectors.
func (e *FeatureEncoder) Width() int {
	return len(e.Locations) + 4
}

// Encode produces the feature vector for one visit. Locations not in
// the fitted set encode as an all-zero indicator rather than failing:
// the encoder is fitted once and must tolerate new locations at
// inference time.
func (e *FeatureEncoder) Encode(location string, month, day, hour, minute int) []float64 {
	vec := make([]float64, e.Width())
	for i, loc := range e.Locations {
		if loc == location {
			vec[i] = 1
			break
		}
	}
	n := len(e.Locations)
	vec[n] = float64(month)
	vec[n+1] = float64(day)
	vec[n+2] = float64(hour)
	vec[n+3] = float64(minute)
	return vec
}
