// Package graph persists enriched drafts. The baseline Store is a
// process-local idempotent upsert target suitable for tests and pipelines
// that export JSON; swap for a graph database writer for production use.
package graph

import (
	"sort"
	"sync"

	"github.com/rdszhao/cadkg/core"
)

// Store is an idempotent in-memory sink for graph drafts. Entities are
// keyed by id; relationships by the (source, relation, target) triple.
// Re-applying the same draft is a no-op apart from property merges.
//
// Concurrency: protected by RWMutex.
type Store struct {
	mu            sync.RWMutex
	entities      map[string]core.Entity
	relationships map[relKey]core.Relationship
}

type relKey struct {
	source   string
	relation string
	target   string
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		entities:      make(map[string]core.Entity),
		relationships: make(map[relKey]core.Relationship),
	}
}

// Apply upserts every entity and relationship of the draft. The draft is
// validated first; an invalid draft mutates nothing. Existing entity
// properties are merged, with the draft's values winning on conflict.
func (s *Store) Apply(draft *core.GraphDraft) error {
	if err := draft.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range draft.Entities {
		existing, ok := s.entities[e.ID]
		if !ok {
			s.entities[e.ID] = cloneEntity(e)
			continue
		}
		if e.Kind != "" {
			existing.Kind = e.Kind
		}
		if e.Name != "" {
			existing.Name = e.Name
		}
		if len(e.Properties) > 0 {
			if existing.Properties == nil {
				existing.Properties = make(map[string]any, len(e.Properties))
			}
			for k, v := range e.Properties {
				existing.Properties[k] = v
			}
		}
		s.entities[e.ID] = existing
	}

	for _, r := range draft.Relationships {
		key := relKey{source: r.SourceID, relation: r.Relation, target: r.TargetID}
		existing, ok := s.relationships[key]
		if !ok {
			s.relationships[key] = cloneRelationship(r)
			continue
		}
		if len(r.Properties) > 0 {
			if existing.Properties == nil {
				existing.Properties = make(map[string]any, len(r.Properties))
			}
			for k, v := range r.Properties {
				existing.Properties[k] = v
			}
			s.relationships[key] = existing
		}
	}
	return nil
}

// Entity returns the stored entity with the given id.
func (s *Store) Entity(id string) (core.Entity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entities[id]
	if !ok {
		return core.Entity{}, false
	}
	return cloneEntity(e), true
}

// Entities returns all stored entities sorted by id.
func (s *Store) Entities() []core.Entity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Entity, 0, len(s.entities))
	for _, e := range s.entities {
		out = append(out, cloneEntity(e))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Relationships returns all stored relationships sorted by source, relation
// and target.
func (s *Store) Relationships() []core.Relationship {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Relationship, 0, len(s.relationships))
	for _, r := range s.relationships {
		out = append(out, cloneRelationship(r))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SourceID != out[j].SourceID {
			return out[i].SourceID < out[j].SourceID
		}
		if out[i].Relation != out[j].Relation {
			return out[i].Relation < out[j].Relation
		}
		return out[i].TargetID < out[j].TargetID
	})
	return out
}

// Counts reports the number of stored entities and relationships.
func (s *Store) Counts() (entities, relationships int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entities), len(s.relationships)
}

func cloneEntity(e core.Entity) core.Entity {
	out := e
	if e.Properties != nil {
		out.Properties = make(map[string]any, len(e.Properties))
		for k, v := range e.Properties {
			out.Properties[k] = v
		}
	}
	return out
}

func cloneRelationship(r core.Relationship) core.Relationship {
	out := r
	if r.Properties != nil {
		out.Properties = make(map[string]any, len(r.Properties))
		for k, v := range r.Properties {
			out.Properties[k] = v
		}
	}
	return out
}
