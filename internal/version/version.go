// Package version provides build and version information.
package version

// Version is the current application version.
const Version = "0.3.0"

// Milestones:
// 0.3.0 - Websocket frame stream, Prometheus metrics, headless eclipse sweep
// 0.2.0 - Mission planner, Hohmann transfer arcs, time machine events
// 0.1.0 - Initial release: Keplerian orrery view, comets, asteroid belt
