/*
Package metrics defines Lookout's Prometheus instrumentation.

All collectors are package-level and registered in init; callers just
touch the exported variables. Handler returns the exposition handler
mounted at /metrics.
*/
package metrics
