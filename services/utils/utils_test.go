package utils

import (
	"math"
	"testing"
)

func TestHaversineZeroDistance(t *testing.T) {
	if got := Haversine(6.5244, 3.3792, 6.5244, 3.3792); got != 0 {
		t.Errorf("Haversine(same point) = %v, want 0", got)
	}
}

func TestHaversineKnownDistances(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
		wantKm                 float64
		tolerance              float64
	}{
		{"Lagos to Abuja", 6.5244, 3.3792, 9.0765, 7.3986, 536, 10},
		{"Lagos to Ibadan", 6.5244, 3.3792, 7.3775, 3.9470, 106, 5},
		{"one degree of latitude", 0, 0, 1, 0, 111.19, 0.5},
	}
	for _, tt := range tests {
		got := Haversine(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
		if math.Abs(got-tt.wantKm) > tt.tolerance {
			t.Errorf("%s: Haversine = %.2f km, want %.2f +/- %.2f", tt.name, got, tt.wantKm, tt.tolerance)
		}
	}
}

func TestHaversineSymmetry(t *testing.T) {
	forward := Haversine(6.5244, 3.3792, 9.0765, 7.3986)
	backward := Haversine(9.0765, 7.3986, 6.5244, 3.3792)
	if math.Abs(forward-backward) > 1e-9 {
		t.Errorf("Haversine not symmetric: %v vs %v", forward, backward)
	}
}
