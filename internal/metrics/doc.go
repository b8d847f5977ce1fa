// Package metrics provides run metrics for the orrery.
//
// [Revolutions], [PhaseError] and [RateDrift] implement [dynamo.Metric]
// and summarise a run. [Exporter] is a [dynamo.Observer] that publishes
// live values to Prometheus.
package metrics
