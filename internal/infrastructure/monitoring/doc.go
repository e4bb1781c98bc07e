// Package monitoring exposes Prometheus metrics for the HTTP surface,
// driver operations and the job host, plus a gin middleware that records
// per-request series.
package monitoring
