package domain

import "math"

// TransportMode is the primary mode a carrier moves freight with.
type TransportMode string

const (
	ModeRoad TransportMode = "road"
	ModeRail TransportMode = "rail"
	ModeAir  TransportMode = "air"
	ModeSea  TransportMode = "sea"
)

// carbonPerTonneKm maps a transport mode to its emission factor in
// grams CO2e per tonne-kilometre. Values are freight-average constants
// (long-haul air 600, diesel truck 105, electric/diesel rail mix 28,
// container ship 15) and intentionally coarse: relative ordering between
// modes is what the carbon score needs, not gram-level accuracy.
var carbonPerTonneKm = map[TransportMode]float64{
	ModeAir:  600,
	ModeRoad: 105,
	ModeRail: 28,
	ModeSea:  15,
}

// IsValid reports whether the mode is a known transport mode.
func (m TransportMode) IsValid() bool {
	_, ok := carbonPerTonneKm[m]
	return ok
}

// EstimateCarbonKg computes kg CO2e for moving weightKg over distanceKm with
// the given mode: factor (g/t-km) x distance (km) x weight factor (tonnes),
// converted from grams to kilograms. Unknown modes estimate as road.
func EstimateCarbonKg(mode TransportMode, distanceKm, weightKg float64) float64 {
	factor, ok := carbonPerTonneKm[mode]
	if !ok {
		factor = carbonPerTonneKm[ModeRoad]
	}
	return factor * distanceKm * (weightKg / 1000) / 1000
}

// Warehouse is a static, administratively managed fulfillment location.
type Warehouse struct {
	ID          string      `json:"id" bson:"_id"`
	Name        string      `json:"name" bson:"name"`
	CountryCode string      `json:"country_code" bson:"country_code"`
	Coordinates Coordinates `json:"coordinates" bson:"coordinates"`
	// Disabled excludes the warehouse from candidate generation entirely.
	Disabled bool `json:"disabled,omitempty" bson:"disabled,omitempty"`
}

// Carrier is a shipping carrier with a static service area.
type Carrier struct {
	ID   string        `json:"id" bson:"_id"`
	Name string        `json:"name" bson:"name"`
	Mode TransportMode `json:"mode" bson:"mode"`
	// ServiceCountries lists the ISO country codes the carrier is licensed
	// to deliver to.
	ServiceCountries []string `json:"service_countries" bson:"service_countries"`
}

// ServesCountry reports whether the carrier is licensed for the destination country.
func (c Carrier) ServesCountry(countryCode string) bool {
	for _, cc := range c.ServiceCountries {
		if cc == countryCode {
			return true
		}
	}
	return false
}

const earthRadiusKm = 6371.0

// HaversineKm returns the great-circle distance between two points in kilometres.
func HaversineKm(a, b Coordinates) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(h))
}
