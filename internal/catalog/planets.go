// Package catalog holds the static body data: the Sun, the eight planets,
// famous comets, the procedural asteroid belt and notable dated events.
package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/litescript/ls-orrery/internal/astro"
	"github.com/litescript/ls-orrery/internal/orbit"
)

// ErrUnknownBody is returned when a lookup names no catalogued body.
var ErrUnknownBody = errors.New("unknown body")

// PlanetType classifies planets by composition.
type PlanetType string

const (
	Terrestrial PlanetType = "terrestrial"
	GasGiant    PlanetType = "gas-giant"
	IceGiant    PlanetType = "ice-giant"
)

// PlanetData describes one planet. Orbital distance is the mean distance in
// million km; the remaining elements are J2000 values.
type PlanetData struct {
	Name           string
	Code           string
	Type           PlanetType
	DistanceMkm    float64
	Eccentricity   float64
	InclinationDeg float64
	MeanAnomalyDeg float64
	PeriodDays     float64

	RadiusKm       float64
	RotationHours  float64 // negative is retrograde
	Moons          int
	HasRings       bool
	RingInner      float64 // planet radii
	RingOuter      float64 // planet radii
	SurfaceGravity float64 // m/s^2
	EscapeVelocity float64 // km/s
	Mass           string
	Temperature    string
	Color          string
	Description    string
}

// SemiMajorAU returns the mean orbital distance in AU.
func (p PlanetData) SemiMajorAU() float64 {
	return astro.MkmToAU(p.DistanceMkm)
}

// Elements returns the planet's orbit with the semi-major axis in AU.
func (p PlanetData) Elements() orbit.Elements {
	return orbit.Elements{
		SemiMajorAxis:  p.SemiMajorAU(),
		Eccentricity:   p.Eccentricity,
		InclinationDeg: p.InclinationDeg,
		MeanAnomalyDeg: p.MeanAnomalyDeg,
		PeriodDays:     p.PeriodDays,
	}
}

// IsInner reports whether the planet orbits inside the asteroid belt.
func (p PlanetData) IsInner() bool {
	return p.Type == Terrestrial
}

// Planets lists the major planets in order from the Sun.
var Planets = []PlanetData{
	{
		Name: "Mercury", Code: "MERC", Type: Terrestrial,
		DistanceMkm: 57.9, Eccentricity: 0.2056, InclinationDeg: 7.005,
		MeanAnomalyDeg: 174.796, PeriodDays: 87.969,
		RadiusKm: 2439.7, RotationHours: 1407.6, Moons: 0,
		SurfaceGravity: 3.7, EscapeVelocity: 4.3,
		Mass: "3.30e23 kg", Temperature: "-173 to 427 °C", Color: "#B5B5B5",
		Description: "The smallest planet and closest to the Sun. A year lasts 88 days but a solar day lasts 176.",
	},
	{
		Name: "Venus", Code: "VEN", Type: Terrestrial,
		DistanceMkm: 108.2, Eccentricity: 0.0068, InclinationDeg: 3.395,
		MeanAnomalyDeg: 50.115, PeriodDays: 224.701,
		RadiusKm: 6051.8, RotationHours: -5832.5, Moons: 0,
		SurfaceGravity: 8.87, EscapeVelocity: 10.36,
		Mass: "4.87e24 kg", Temperature: "464 °C", Color: "#E8CDA2",
		Description: "Shrouded in sulfuric acid clouds over a runaway greenhouse. Spins backwards, slower than it orbits.",
	},
	{
		Name: "Earth", Code: "EARTH", Type: Terrestrial,
		DistanceMkm: 149.6, Eccentricity: 0.0167, InclinationDeg: 0,
		MeanAnomalyDeg: 357.517, PeriodDays: 365.256,
		RadiusKm: 6371, RotationHours: 23.9345, Moons: 1,
		SurfaceGravity: 9.81, EscapeVelocity: 11.19,
		Mass: "5.97e24 kg", Temperature: "-88 to 58 °C", Color: "#4B9CD3",
		Description: "The only known world with liquid surface oceans and life. Defines the astronomical unit.",
	},
	{
		Name: "Mars", Code: "MARS", Type: Terrestrial,
		DistanceMkm: 227.9, Eccentricity: 0.0934, InclinationDeg: 1.850,
		MeanAnomalyDeg: 19.373, PeriodDays: 686.980,
		RadiusKm: 3389.5, RotationHours: 24.6229, Moons: 2,
		SurfaceGravity: 3.71, EscapeVelocity: 5.03,
		Mass: "6.42e23 kg", Temperature: "-153 to 20 °C", Color: "#C1440E",
		Description: "The red planet, home to Olympus Mons and Valles Marineris. Its thin air is mostly carbon dioxide.",
	},
	{
		Name: "Jupiter", Code: "JUP", Type: GasGiant,
		DistanceMkm: 778.5, Eccentricity: 0.0489, InclinationDeg: 1.303,
		MeanAnomalyDeg: 20.020, PeriodDays: 4332.59,
		RadiusKm: 69911, RotationHours: 9.925, Moons: 95,
		HasRings: true, RingInner: 1.4, RingOuter: 1.8,
		SurfaceGravity: 24.79, EscapeVelocity: 59.5,
		Mass: "1.90e27 kg", Temperature: "-108 °C (cloud tops)", Color: "#D8CA9D",
		Description: "More than twice as massive as every other planet combined. The Great Red Spot is a storm wider than Earth.",
	},
	{
		Name: "Saturn", Code: "SAT", Type: GasGiant,
		DistanceMkm: 1432.0, Eccentricity: 0.0565, InclinationDeg: 2.485,
		MeanAnomalyDeg: 317.020, PeriodDays: 10759.22,
		RadiusKm: 58232, RotationHours: 10.656, Moons: 146,
		HasRings: true, RingInner: 1.2, RingOuter: 3.4,
		SurfaceGravity: 10.44, EscapeVelocity: 35.5,
		Mass: "5.68e26 kg", Temperature: "-139 °C (cloud tops)", Color: "#EAD6B8",
		Description: "Its ring system of ice and rock spans 280,000 km yet is mostly tens of meters thick. Less dense than water.",
	},
	{
		Name: "Uranus", Code: "URA", Type: IceGiant,
		DistanceMkm: 2867.0, Eccentricity: 0.0457, InclinationDeg: 0.773,
		MeanAnomalyDeg: 142.238, PeriodDays: 30688.5,
		RadiusKm: 25362, RotationHours: -17.24, Moons: 28,
		HasRings: true, RingInner: 1.6, RingOuter: 2.0,
		SurfaceGravity: 8.87, EscapeVelocity: 21.3,
		Mass: "8.68e25 kg", Temperature: "-197 °C (cloud tops)", Color: "#ACE5EE",
		Description: "Rolls around the Sun on its side with a 98 degree axial tilt, giving each pole 42 years of daylight.",
	},
	{
		Name: "Neptune", Code: "NEP", Type: IceGiant,
		DistanceMkm: 4495.1, Eccentricity: 0.0113, InclinationDeg: 1.770,
		MeanAnomalyDeg: 256.228, PeriodDays: 60182.0,
		RadiusKm: 24622, RotationHours: 16.11, Moons: 16,
		HasRings: true, RingInner: 1.7, RingOuter: 2.5,
		SurfaceGravity: 11.15, EscapeVelocity: 23.5,
		Mass: "1.02e26 kg", Temperature: "-201 °C (cloud tops)", Color: "#5B5DDF",
		Description: "Found by mathematics before it was seen. Hosts the fastest winds in the solar system at 2,100 km/h.",
	},
}

// SunData describes the central star.
type SunData struct {
	Name        string
	RadiusKm    float64
	Temperature string
	Color       string
	Description string
}

// Sun is the central body at the origin.
var Sun = SunData{
	Name:        "Sun",
	RadiusKm:    696340,
	Temperature: "5,500 °C surface, 15 million °C core",
	Color:       "#FDB813",
	Description: "A G-type main-sequence star holding 99.86% of the solar system's mass.",
}

// Planet looks up a planet by name or code, ignoring case.
func Planet(name string) (PlanetData, error) {
	i := PlanetIndex(name)
	if i < 0 {
		return PlanetData{}, fmt.Errorf("planet %q: %w", name, ErrUnknownBody)
	}
	return Planets[i], nil
}

// PlanetIndex returns the catalogue index of a planet, or -1.
func PlanetIndex(name string) int {
	name = strings.TrimSpace(name)
	for i, p := range Planets {
		if strings.EqualFold(p.Name, name) || strings.EqualFold(p.Code, name) {
			return i
		}
	}
	return -1
}

// PlanetNames returns the planet names in catalogue order.
func PlanetNames() []string {
	names := make([]string, len(Planets))
	for i, p := range Planets {
		names[i] = p.Name
	}
	return names
}
