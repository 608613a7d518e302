// Package models builds epidemic systems out of the composition
// primitives: a directed two-machine SIR cycle, resource-sharer SIR
// variants, and a staged-infection ladder of arbitrary depth.
package models
