// Package sim advances flows through time. A Simulator pairs a flow
// with a stepper and records the trajectory, step count, and any
// metrics attached to the run. Adaptive stepping uses the stepper's
// own error estimate when it provides one, and falls back to step
// doubling when it does not.
package sim
