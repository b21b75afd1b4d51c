// Package entity provides a normalized, id-keyed entity table paired with
// per-id fetch status records.
package entity

import (
	"encoding/json"
	"maps"
	"slices"
)

// Table is an ordered id to entity mapping with a parallel id to status mapping.
// Tables are values: every mutation returns a new table and never writes into
// maps or slices reachable from an older one.
type Table[T any] struct {
	ids      []string
	entities map[string]T
	statuses map[string]FetchStatus
}

// SelectByID returns the entity stored under id.
func (t Table[T]) SelectByID(id string) (T, bool) {
	e, ok := t.entities[id]
	return e, ok
}

// SelectAll returns the entities in table order.
func (t Table[T]) SelectAll() []T {
	out := make([]T, 0, len(t.ids))
	for _, id := range t.ids {
		out = append(out, t.entities[id])
	}
	return out
}

// SelectIDs returns the ids in table order.
func (t Table[T]) SelectIDs() []string {
	return slices.Clone(t.ids)
}

// Len returns the number of entities.
func (t Table[T]) Len() int {
	return len(t.ids)
}

// Has reports whether an entity is stored under id.
func (t Table[T]) Has(id string) bool {
	_, ok := t.entities[id]
	return ok
}

// StatusOf returns the fetch status of id; ids never requested are idle.
func (t Table[T]) StatusOf(id string) FetchStatus {
	if s, ok := t.statuses[id]; ok {
		return s
	}
	return Idle
}

// StatusIDs returns every id holding a status record.
func (t Table[T]) StatusIDs() []string {
	return slices.Sorted(maps.Keys(t.statuses))
}

func (t Table[T]) clone() Table[T] {
	return Table[T]{
		ids:      slices.Clone(t.ids),
		entities: maps.Clone(t.entities),
		statuses: maps.Clone(t.statuses),
	}
}

func (t *Table[T]) ensure() {
	if t.entities == nil {
		t.entities = make(map[string]T)
	}
	if t.statuses == nil {
		t.statuses = make(map[string]FetchStatus)
	}
}

type persistedTable[T any] struct {
	IDs      []string     `json:"ids"`
	Entities map[string]T `json:"entities"`
}

// MarshalJSON encodes the entities only; fetch statuses are never persisted.
func (t Table[T]) MarshalJSON() ([]byte, error) {
	p := persistedTable[T]{IDs: t.ids, Entities: t.entities}
	if p.IDs == nil {
		p.IDs = []string{}
	}
	if p.Entities == nil {
		p.Entities = map[string]T{}
	}
	return json.Marshal(p)
}

// UnmarshalJSON restores entities with every status idle. Ids without an
// entity are dropped.
func (t *Table[T]) UnmarshalJSON(data []byte) error {
	var p persistedTable[T]
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	out := Table[T]{}
	out.ensure()
	for _, id := range p.IDs {
		e, ok := p.Entities[id]
		if !ok || out.Has(id) {
			continue
		}
		out.ids = append(out.ids, id)
		out.entities[id] = e
	}
	*t = out
	return nil
}
