package domain

import (
	"math"
	"testing"
)

func TestEstimateCarbonKg(t *testing.T) {
	// 105 g/t-km x 500 km x 0.01 t = 525 g = 0.525 kg
	if got := EstimateCarbonKg(ModeRoad, 500, 10); math.Abs(got-0.525) > 1e-9 {
		t.Fatalf("road estimate: expected 0.525, got %v", got)
	}

	// Mode ordering must hold for identical legs.
	legs := []TransportMode{ModeSea, ModeRail, ModeRoad, ModeAir}
	prev := 0.0
	for _, m := range legs {
		kg := EstimateCarbonKg(m, 1000, 100)
		if kg <= prev {
			t.Fatalf("expected %s to emit more than the previous mode, got %v <= %v", m, kg, prev)
		}
		prev = kg
	}
}

func TestEstimateCarbonKg_UnknownModeFallsBackToRoad(t *testing.T) {
	want := EstimateCarbonKg(ModeRoad, 300, 50)
	if got := EstimateCarbonKg(TransportMode("hyperloop"), 300, 50); got != want {
		t.Fatalf("expected road fallback %v, got %v", want, got)
	}
}

func TestCarrier_ServesCountry(t *testing.T) {
	c := Carrier{ID: "CARR-1", ServiceCountries: []string{"DE", "NL"}}
	if !c.ServesCountry("DE") {
		t.Errorf("expected DE to be served")
	}
	if c.ServesCountry("ES") {
		t.Errorf("ES should not be served")
	}
}

func TestHaversineKm(t *testing.T) {
	ams := Coordinates{Lat: 52.37, Lng: 4.90}
	ber := Coordinates{Lat: 52.52, Lng: 13.40}

	d := HaversineKm(ams, ber)
	// Amsterdam–Berlin is roughly 575 km great-circle.
	if d < 550 || d > 600 {
		t.Fatalf("unexpected distance %v km", d)
	}
	if HaversineKm(ams, ams) != 0 {
		t.Fatalf("distance to self must be zero")
	}
	if math.Abs(HaversineKm(ams, ber)-HaversineKm(ber, ams)) > 1e-9 {
		t.Fatalf("distance must be symmetric")
	}
}
