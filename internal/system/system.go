// Package system evaluates the whole orrery at a simulated instant: the Sun,
// planets, comets and the asteroid belt, in both physical and scene units.
package system

import (
	"runtime"
	"sync"
	"time"

	"github.com/litescript/ls-orrery/internal/astro"
	"github.com/litescript/ls-orrery/internal/catalog"
	"github.com/litescript/ls-orrery/internal/metrics"
	"github.com/litescript/ls-orrery/internal/orbit"
)

// BodyKind categorizes bodies for rendering.
type BodyKind int

const (
	BodySun BodyKind = iota
	BodyPlanet
	BodyComet
)

// String returns the body kind name.
func (k BodyKind) String() string {
	switch k {
	case BodySun:
		return "sun"
	case BodyPlanet:
		return "planet"
	case BodyComet:
		return "comet"
	default:
		return "unknown"
	}
}

// EclipticBody is one body at one instant.
type EclipticBody struct {
	Name        string // Display name (e.g., "Earth", "Encke")
	Code        string // Short code (e.g., "EARTH", "ENCKE")
	Kind        BodyKind
	Index       int        // catalogue index within its kind
	Pos         astro.Vec3 // heliocentric, AU
	Scene       astro.Vec3 // Pos mapped through the scale mode
	RadiusKm    float64
	TrueAnomaly float64 // radians
	Tail        Tail    // comets only
}

// DistanceAU returns the heliocentric distance in AU.
func (b EclipticBody) DistanceAU() float64 {
	return b.Pos.Norm()
}

// EclipticLatDeg returns the latitude above the reference plane in degrees.
func (b EclipticBody) EclipticLatDeg() float64 {
	return astro.EclipticLatitude(b.Pos)
}

// EclipticLonDeg returns the in-plane longitude in degrees.
func (b EclipticBody) EclipticLonDeg() float64 {
	return astro.EclipticLongitude(b.Pos)
}

// LightTimeSec returns the one-way light time from the Sun in seconds.
func (b EclipticBody) LightTimeSec() float64 {
	return astro.LightTimeFromAU(b.DistanceAU())
}

// Snapshot is the evaluated state of the orrery at ElapsedDays.
type Snapshot struct {
	ElapsedDays float64
	Scale       astro.ScaleMode
	Bodies      []EclipticBody
	Belt        []astro.Vec3 // scene units
}

// GetBody returns a body by name or code, or nil if not found.
func (s Snapshot) GetBody(name string) *EclipticBody {
	for i := range s.Bodies {
		if s.Bodies[i].Code == name || s.Bodies[i].Name == name {
			return &s.Bodies[i]
		}
	}
	return nil
}

// Planets returns the planet bodies in catalogue order.
func (s Snapshot) Planets() []EclipticBody {
	return s.ofKind(BodyPlanet)
}

// Comets returns the comet bodies in catalogue order.
func (s Snapshot) Comets() []EclipticBody {
	return s.ofKind(BodyComet)
}

func (s Snapshot) ofKind(kind BodyKind) []EclipticBody {
	var out []EclipticBody
	for _, b := range s.Bodies {
		if b.Kind == kind {
			out = append(out, b)
		}
	}
	return out
}

// Options configures a System.
type Options struct {
	BeltSize int    // asteroids; 0 disables the belt
	BeltSeed uint64 // belt layout seed
	Workers  int    // belt propagation goroutines; <= 0 uses GOMAXPROCS
}

// DefaultOptions returns the standard orrery setup.
func DefaultOptions() Options {
	return Options{
		BeltSize: catalog.DefaultBeltSize,
		BeltSeed: 1801, // Ceres discovery year
	}
}

// beltChunk is the smallest slice of the belt handed to one worker.
const beltChunk = 256

// System evaluates catalogue bodies. It is safe for concurrent use; the only
// mutable state is the per-mode orbit outline cache.
type System struct {
	planets []orbit.Elements
	comets  []orbit.Elements
	belt    []orbit.Elements
	workers int

	mu    sync.RWMutex
	paths map[pathKey][][]astro.Vec3
}

type pathKey struct {
	mode     astro.ScaleMode
	segments int
	comets   bool
}

// New builds a System from the catalogue.
func New(opts Options) *System {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	s := &System{
		belt:    catalog.Belt(opts.BeltSize, opts.BeltSeed),
		workers: workers,
		paths:   make(map[pathKey][][]astro.Vec3),
	}
	for _, p := range catalog.Planets {
		s.planets = append(s.planets, p.Elements())
	}
	for _, c := range catalog.Comets {
		s.comets = append(s.comets, c.Elements())
	}
	return s
}

// BeltSize returns the number of asteroids evaluated per frame.
func (s *System) BeltSize() int {
	return len(s.belt)
}

// Evaluate computes every body at elapsedDays since J2000.
func (s *System) Evaluate(elapsedDays float64, mode astro.ScaleMode) Snapshot {
	start := time.Now()
	defer func() { metrics.ObserveFrame(time.Since(start)) }()

	snap := Snapshot{
		ElapsedDays: elapsedDays,
		Scale:       mode,
		Bodies:      make([]EclipticBody, 0, 1+len(s.planets)+len(s.comets)),
	}

	snap.Bodies = append(snap.Bodies, EclipticBody{
		Name:     catalog.Sun.Name,
		Code:     "SUN",
		Kind:     BodySun,
		RadiusKm: catalog.Sun.RadiusKm,
	})

	snap.Bodies = append(snap.Bodies, s.PlanetsAt(elapsedDays, mode)...)

	for i, el := range s.comets {
		c := catalog.Comets[i]
		st := el.StateAt(elapsedDays)
		snap.Bodies = append(snap.Bodies, EclipticBody{
			Name:        c.Name,
			Code:        c.Code,
			Kind:        BodyComet,
			Index:       i,
			Pos:         st.Pos,
			Scene:       astro.ScalePosition(st.Pos, mode),
			TrueAnomaly: st.TrueAnomaly,
			Tail:        CometTail(st.Pos, mode),
		})
	}

	snap.Belt = s.evaluateBelt(elapsedDays, mode)
	return snap
}

// PlanetsAt computes only the planets, in catalogue order. It skips the belt
// and comets, which the eclipse scan does not need.
func (s *System) PlanetsAt(elapsedDays float64, mode astro.ScaleMode) []EclipticBody {
	out := make([]EclipticBody, len(s.planets))
	for i, el := range s.planets {
		p := catalog.Planets[i]
		st := el.StateAt(elapsedDays)
		out[i] = EclipticBody{
			Name:        p.Name,
			Code:        p.Code,
			Kind:        BodyPlanet,
			Index:       i,
			Pos:         st.Pos,
			Scene:       astro.ScalePosition(st.Pos, mode),
			RadiusKm:    p.RadiusKm,
			TrueAnomaly: st.TrueAnomaly,
		}
	}
	return out
}

// evaluateBelt propagates the belt on a fixed pool of workers. Each job owns
// a disjoint range of the output slice.
func (s *System) evaluateBelt(elapsedDays float64, mode astro.ScaleMode) []astro.Vec3 {
	if len(s.belt) == 0 {
		return nil
	}
	out := make([]astro.Vec3, len(s.belt))

	type job struct{ lo, hi int }
	jobs := make(chan job, s.workers*2)

	var wg sync.WaitGroup
	for i := 0; i < s.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				for k := j.lo; k < j.hi; k++ {
					out[k] = astro.ScalePosition(s.belt[k].PositionAt(elapsedDays), mode)
				}
			}
		}()
	}

	for lo := 0; lo < len(s.belt); lo += beltChunk {
		jobs <- job{lo: lo, hi: min(lo+beltChunk, len(s.belt))}
	}
	close(jobs)
	wg.Wait()

	return out
}

// PlanetPaths returns the scene-unit orbit outline of every planet. The
// slices are shared between callers and must not be modified.
func (s *System) PlanetPaths(mode astro.ScaleMode, segments int) [][]astro.Vec3 {
	return s.cachedPaths(pathKey{mode: mode, segments: segments}, s.planets)
}

// CometPaths returns the scene-unit orbit outline of every comet.
func (s *System) CometPaths(mode astro.ScaleMode, segments int) [][]astro.Vec3 {
	return s.cachedPaths(pathKey{mode: mode, segments: segments, comets: true}, s.comets)
}

func (s *System) cachedPaths(key pathKey, els []orbit.Elements) [][]astro.Vec3 {
	s.mu.RLock()
	paths, ok := s.paths[key]
	s.mu.RUnlock()
	if ok {
		return paths
	}

	paths = make([][]astro.Vec3, len(els))
	for i, el := range els {
		pts := el.Path(key.segments)
		for j := range pts {
			pts[j] = astro.ScalePosition(pts[j], key.mode)
		}
		paths[i] = pts
	}

	s.mu.Lock()
	s.paths[key] = paths
	s.mu.Unlock()
	return paths
}

// PlanetElements returns the orbit of the i-th catalogue planet.
func (s *System) PlanetElements(i int) (orbit.Elements, bool) {
	if i < 0 || i >= len(s.planets) {
		return orbit.Elements{}, false
	}
	return s.planets[i], true
}
