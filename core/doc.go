// Package core defines the shared data model for cadkg: the DomainNode tree
// produced by external parsers (CAD assemblies, document sections, code
// elements) and the GraphDraft handed to the graph-persistence layer.
//
// Both sides of the model are deliberately plain data. DomainNode trees are
// read-only inputs to the enrichment engine; GraphDraft is the single output
// shape every enrichment path (swarm-produced or fallback-produced) must
// satisfy, so downstream writers never see a partially constructed draft.
package core
