/*
Package observability provides tools for monitoring the exploration engine.

Every helper here produces domain.LifecycleHooks: Metrics records Prometheus
counters and histograms, LogHooks writes one structured log line per event, and
Combine fans a single hook set out to several consumers.
*/
package observability
