// Package observe provides observability primitives for the resilience
// engine.
//
// It is a pure instrumentation library: no execution, no transport, no I/O
// beyond exporter setup. Consumers wire the observer into the queue and
// batch dispatcher through EventsRecorder, or wrap submission functions
// with Middleware.
package observe
