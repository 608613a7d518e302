// Package integrators provides stepping methods for flows: fixed-step
// Euler and RK4, adaptive Dormand-Prince RK45, and a discrete-time
// stochastic map. A stepper only needs a flow's derivative; it never
// looks inside the system it advances.
package integrators
