// Package traffic turns the router's resetting byte counters into daily and
// monthly totals and a per-tick average throughput.
//
// Everything here is pure: callers read the previous state, call ComputeTick
// and Decide, and persist the results themselves.
package traffic
