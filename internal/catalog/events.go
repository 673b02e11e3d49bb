package catalog

import (
	"fmt"
	"strings"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
)

// J2000JD is the Julian Day of the J2000 epoch, 2000-01-01 12:00.
const J2000JD = 2451545.0

// DaysSinceJ2000 returns the days from J2000 to noon on a Gregorian date.
func DaysSinceJ2000(year, month, day int) float64 {
	return julian.CalendarGregorianToJD(year, month, float64(day)+0.5) - J2000JD
}

// DaysSinceJ2000Time returns the days from J2000 to t.
func DaysSinceJ2000Time(t time.Time) float64 {
	return julian.TimeToJD(t.UTC()) - J2000JD
}

// TimeFromDays converts elapsed days since J2000 back to a UTC time.
func TimeFromDays(days float64) time.Time {
	return julian.JDToTime(J2000JD + days).UTC()
}

// ParseDate parses YYYY-MM-DD and returns the elapsed days at noon UTC.
func ParseDate(s string) (float64, error) {
	t, err := time.Parse(time.DateOnly, strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("parse date %q: %w", s, err)
	}
	return DaysSinceJ2000(t.Year(), int(t.Month()), t.Day()), nil
}

// EventCategory groups time machine events.
type EventCategory string

const (
	CategoryComet      EventCategory = "comet"
	CategoryTransit    EventCategory = "transit"
	CategoryEclipse    EventCategory = "eclipse"
	CategoryAlignment  EventCategory = "alignment"
	CategoryOpposition EventCategory = "opposition"
	CategoryHistoric   EventCategory = "historic"
)

// Color returns the display color for the category.
func (c EventCategory) Color() string {
	switch c {
	case CategoryComet:
		return "#00BFFF"
	case CategoryTransit:
		return "#FFD700"
	case CategoryEclipse:
		return "#FF6B6B"
	case CategoryAlignment:
		return "#9B59B6"
	case CategoryOpposition:
		return "#E67E22"
	case CategoryHistoric:
		return "#FF4444"
	default:
		return "#AAAAAA"
	}
}

// Event is a dated moment the clock can jump to.
type Event struct {
	ID          string
	Name        string
	Year        int
	Month       int
	Day         int
	Category    EventCategory
	FocusPlanet string // empty for no focus
	Description string
}

// ElapsedDays returns the event's days since J2000.
func (e Event) ElapsedDays() float64 {
	return DaysSinceJ2000(e.Year, e.Month, e.Day)
}

// Date formats the event date like "Feb 9, 1986".
func (e Event) Date() string {
	return time.Date(e.Year, time.Month(e.Month), e.Day, 0, 0, 0, 0, time.UTC).Format("Jan 2, 2006")
}

// Events lists the time machine presets in display order.
var Events = []Event{
	{
		ID: "halley-1986", Name: "Halley's Comet Return", Year: 1986, Month: 2, Day: 9,
		Category:    CategoryComet,
		Description: "Halley's Comet reached perihelion 0.586 AU from the Sun. Five spacecraft flew past to study it.",
	},
	{
		ID: "shoemaker-levy-1994", Name: "Shoemaker-Levy 9 Impact", Year: 1994, Month: 7, Day: 16,
		Category: CategoryHistoric, FocusPlanet: "Jupiter",
		Description: "Fragments of a torn-apart comet struck Jupiter over six days, leaving scars larger than Earth.",
	},
	{
		ID: "mars-opposition-2003", Name: "Mars Closest Approach", Year: 2003, Month: 8, Day: 27,
		Category: CategoryOpposition, FocusPlanet: "Mars",
		Description: "Mars came within 55.76 million km of Earth, the closest in nearly 60,000 years.",
	},
	{
		ID: "venus-transit-2004", Name: "Transit of Venus", Year: 2004, Month: 6, Day: 8,
		Category: CategoryTransit, FocusPlanet: "Venus",
		Description: "Venus crossed the face of the Sun, the first transit since 1882. They come in pairs eight years apart.",
	},
	{
		ID: "venus-transit-2012", Name: "Last Transit of Venus", Year: 2012, Month: 6, Day: 5,
		Category: CategoryTransit, FocusPlanet: "Venus",
		Description: "The second of the 2004/2012 pair. The next will not occur until December 2117.",
	},
	{
		ID: "jupiter-saturn-2020", Name: "Great Conjunction", Year: 2020, Month: 12, Day: 21,
		Category: CategoryAlignment, FocusPlanet: "Jupiter",
		Description: "Jupiter and Saturn appeared 0.1 degrees apart, their closest conjunction since 1623.",
	},
	{
		ID: "total-eclipse-2024", Name: "Great American Eclipse", Year: 2024, Month: 4, Day: 8,
		Category: CategoryEclipse, FocusPlanet: "Earth",
		Description: "A total solar eclipse crossed North America from Mexico to Canada with up to 4m28s of totality.",
	},
	{
		ID: "planetary-parade-2025", Name: "Planetary Parade", Year: 2025, Month: 2, Day: 28,
		Category:    CategoryAlignment,
		Description: "Mercury, Venus, Mars, Jupiter and Saturn lined up in the evening sky at the same time.",
	},
	{
		ID: "mercury-transit-2032", Name: "Transit of Mercury", Year: 2032, Month: 11, Day: 13,
		Category: CategoryTransit, FocusPlanet: "Mercury",
		Description: "Mercury will cross the solar disk as a tiny black dot. Such transits happen about 13 times a century.",
	},
	{
		ID: "halley-2061", Name: "Halley's Comet Return", Year: 2061, Month: 7, Day: 28,
		Category:    CategoryComet,
		Description: "The next return of Halley's Comet, expected to be far better placed for Earth viewers than 1986.",
	},
}

// EventByID returns the event with the given ID.
func EventByID(id string) (Event, bool) {
	for _, e := range Events {
		if e.ID == id {
			return e, true
		}
	}
	return Event{}, false
}
