// Package analysis inspects recorded trajectories.
//
//   - [DominantFrequency]: strongest oscillation in a sampled series
//   - [BodyPortrait]: phase space trajectory of one body along one axis
//
// A pendulum run, for example, can be checked against its small angle
// period:
//
//	f, ok := analysis.DominantFrequency(xs, dt)
//	if ok {
//	    period := 1 / f
//	}
package analysis
