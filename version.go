// Package goap is a goal-oriented action planner: given a state, weighted
// goals and a catalogue of actions it searches for the action sequence
// that leaves the agent least discontented.
//
// The planner lives in infrastructure/planner, the domain model in
// domain/planning, and the goap command in cmd/goap.
package goap

// Version is the current version of goap.
const Version = "0.3.0"

// GetVersion returns the current version string.
func GetVersion() string {
	return Version
}
