// Package core coordinates the entity store, the resolver and the link
// engine for one active environment.
//
// An App owns the three entity collections (skills, profiles, projects)
// and the active Environment, which bundles the link primitives,
// persistence, scanner and usage recorder of either the local machine or a
// remote server. Core code only sees the capability interfaces, so
// switching environments is a parameter change and never a code path fork.
//
// # Cascade
//
// Saving a profile persists it and then resynchronizes every project that
// references it, in store order, one project at a time. Deleting a profile
// computes the affected projects first, removes the profile from storage
// and memory, and resyncs each affected project once; the resolver no
// longer sees the profile, so Sync removes its orphaned links. A failure on
// one project is logged and recorded in the CascadeReport; the remaining
// projects are still synced.
//
// Deleting a project never removes links already placed in it.
package core
