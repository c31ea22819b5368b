// Package statusapi serves and reads the collector's status endpoint.
//
// A running collector exposes two routes on its api_bind address:
//
//	GET /api/status   state.Status as JSON (state, counters, last error)
//	GET /metrics      Prometheus exposition of the metrics registry
//
// The status document never carries log content. Client is used by the
// monitor and the status command to read it back.
package statusapi
