// Package swarm implements the specialist-swarm orchestration engine: the
// hub-and-spoke layer that fans bounded payloads out to model-backed
// specialists, caches their outputs, recovers structured data from their
// free-text responses and degrades to a deterministic mapping when the model
// backend misbehaves.
//
// Building blocks:
//   - Monitor: per-run counters and timers (calls, durations, cache traffic)
//   - Cache: content-addressed result store with single-flight de-duplication
//   - Specialist: one fixed role bound to a completion client tier
//   - Manager: model-directed hub that selects and invokes specialist tools
//     against an allow-listed registry under a hard turn budget
//   - Extract: ordered fallback chain recovering JSON from arbitrary text
//   - BuildFallbackDraft: the model-free path guaranteeing a valid draft
//
// All shared state (Cache, Monitor) is explicitly constructed and injected;
// nothing in this package is a process-wide singleton. Domain packages
// (assembly, document) compose these pieces into coordinators.
package swarm
