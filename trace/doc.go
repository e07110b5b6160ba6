// Package trace records a full audit trail for every pipeline query. Each
// invocation becomes one JSON file capturing the query, the retrieved
// sources, the constructed prompt, the model's response, and per-stage
// latency, so any answer can be traced back to the chunks that produced it.
package trace
