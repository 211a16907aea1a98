/*
Package observability turns simulation lifecycle hooks into metrics, logs and a status view.

Metrics registers Prometheus collectors on its own registry and exposes a domain.LifecycleHooks
value to pass to the simulation. LogHooks does the same for a structured logger. Combine them
with domain.ChainHooks.
*/
package observability
