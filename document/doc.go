// Package document enriches knowledge graphs from technical documentation
// using two chained specialist swarms: a document analysis phase that mines
// the text for components, specifications and requirements, and a graph
// enrichment phase that matches those findings against existing CAD
// entities and emits semantic properties and relationships. Each phase has
// its own hub manager; the coordinator degrades gracefully when either
// phase fails.
package document
