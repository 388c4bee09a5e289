// Package analysis inspects simulated trajectories.
//
//   - [PhasePortrait]: two variables plotted against each other
//   - [PoincareSection]: states recorded where a variable crosses a threshold
//   - [Bifurcation]: peak values of one variable across a parameter sweep
//   - [DominantPeriod]: spectral period estimate on a resampled series
//
// Trajectories from the adaptive driver are unevenly spaced in time, so
// spectral tools resample onto a uniform grid first:
//
//	period, err := analysis.DominantPeriod(tr, "C", 200, 1024)
package analysis
