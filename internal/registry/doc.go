/*
Package registry provides the central "glue" for the step system.

Two registries live here. The SpecRegistry maps step-type names to their
declared specifications; one registry exists per named context, managed by
Manager, and contexts are fully isolated from each other. The StepTypeTable
is the checked, total mapping from configuration variant names to step-type
tags; every variant must be registered exactly once, so there is never a
need to derive a step type heuristically at use time.

Registries are populated during application startup and then read-only
during compilation. Every write to a SpecRegistry bumps its generation
counter, which downstream resolvers use to invalidate derived caches.
*/
package registry
