package catalog

import (
	"fmt"
	"strings"

	"github.com/litescript/ls-orrery/internal/orbit"
)

// CometData describes a periodic comet with elements in AU.
type CometData struct {
	Name           string
	Code           string
	SemiMajorAU    float64
	Eccentricity   float64
	InclinationDeg float64
	PeriodDays     float64
	MeanAnomalyDeg float64
	PerihelionAU   float64
	LastPerihelion string // YYYY-MM-DD
	Color          string
	TailColor      string
	Description    string
}

// Elements returns the comet's orbit.
func (c CometData) Elements() orbit.Elements {
	return orbit.Elements{
		SemiMajorAxis:  c.SemiMajorAU,
		Eccentricity:   c.Eccentricity,
		InclinationDeg: c.InclinationDeg,
		MeanAnomalyDeg: c.MeanAnomalyDeg,
		PeriodDays:     c.PeriodDays,
	}
}

// Comets lists the famous comets shown in the orrery.
var Comets = []CometData{
	{
		Name: "Halley's Comet", Code: "HALLEY",
		SemiMajorAU: 17.834, Eccentricity: 0.9671, InclinationDeg: 162.26,
		PeriodDays: 27510, MeanAnomalyDeg: 38.38,
		PerihelionAU: 0.586, LastPerihelion: "1986-02-09",
		Color: "#E8E8FF", TailColor: "#6699FF",
		Description: "The most famous periodic comet, visible from Earth every 75-79 years. Last seen in 1986.",
	},
	{
		Name: "Hale-Bopp", Code: "HALEBOPP",
		SemiMajorAU: 186.0, Eccentricity: 0.995, InclinationDeg: 89.43,
		PeriodDays: 927375, MeanAnomalyDeg: 0.11,
		PerihelionAU: 0.914, LastPerihelion: "1997-04-01",
		Color: "#FFFFEE", TailColor: "#FFCC44",
		Description: "The Great Comet of 1997, visible to the naked eye for a record 18 months.",
	},
	{
		Name: "Encke", Code: "ENCKE",
		SemiMajorAU: 2.215, Eccentricity: 0.8483, InclinationDeg: 11.78,
		PeriodDays: 1204, MeanAnomalyDeg: 186.55,
		PerihelionAU: 0.336, LastPerihelion: "2023-10-22",
		Color: "#DDDDCC", TailColor: "#88AAFF",
		Description: "Shortest orbital period of any known comet at 3.3 years. Parent of the Taurid meteor showers.",
	},
}

// Comet looks up a comet by name or code, ignoring case. A bare "Halley"
// matches "Halley's Comet".
func Comet(name string) (CometData, error) {
	name = strings.TrimSpace(name)
	for _, c := range Comets {
		if strings.EqualFold(c.Name, name) || strings.EqualFold(c.Code, name) {
			return c, nil
		}
		if first, _, ok := strings.Cut(c.Name, "'"); ok && strings.EqualFold(first, name) {
			return c, nil
		}
	}
	return CometData{}, fmt.Errorf("comet %q: %w", name, ErrUnknownBody)
}

// Ref identifies a catalogued body by kind and index.
type Ref struct {
	Kind  string // "sun", "planet" or "comet"
	Name  string
	Index int
}

// Body resolves any catalogued body (the Sun, a planet or a comet) by name.
func Body(name string) (Ref, error) {
	if strings.EqualFold(strings.TrimSpace(name), Sun.Name) {
		return Ref{Kind: "sun", Name: Sun.Name, Index: 0}, nil
	}
	if i := PlanetIndex(name); i >= 0 {
		return Ref{Kind: "planet", Name: Planets[i].Name, Index: i}, nil
	}
	c, err := Comet(name)
	if err != nil {
		return Ref{}, fmt.Errorf("body %q: %w", name, ErrUnknownBody)
	}
	for i := range Comets {
		if Comets[i].Name == c.Name {
			return Ref{Kind: "comet", Name: c.Name, Index: i}, nil
		}
	}
	return Ref{}, fmt.Errorf("body %q: %w", name, ErrUnknownBody)
}
