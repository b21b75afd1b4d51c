package entity

import "slices"

// Adapter describes how a Table stores one entity type.
type Adapter[T any] struct {
	// ID extracts the stable identifier of an entity.
	ID func(T) string
	// Less, when set, keeps the table sorted; otherwise insertion order is kept.
	Less func(a, b T) bool
	// Merge combines an existing record with an incoming one on upsert.
	// When nil the incoming record replaces the existing one.
	Merge func(existing, incoming T) T
}

// Empty returns a table with no entities and no status records.
func (a Adapter[T]) Empty() Table[T] {
	t := Table[T]{}
	t.ensure()
	return t
}

// UpsertOne inserts e or merges it into the existing record, marking its id fulfilled.
func (a Adapter[T]) UpsertOne(t Table[T], e T) Table[T] {
	return a.UpsertMany(t, []T{e})
}

// UpsertMany upserts every entity and marks each id fulfilled. Existing
// entities not present in es are left untouched.
func (a Adapter[T]) UpsertMany(t Table[T], es []T) Table[T] {
	out := t.clone()
	out.ensure()
	for _, e := range es {
		id := a.ID(e)
		if existing, ok := out.entities[id]; ok {
			if a.Merge != nil {
				e = a.Merge(existing, e)
			}
		} else {
			out.ids = append(out.ids, id)
		}
		out.entities[id] = e
		out.statuses[id] = Fulfilled()
	}
	a.sort(&out)
	return out
}

// SetAll replaces the whole table. Ids absent from es lose both their entity
// and their status record; ids present are fulfilled.
func (a Adapter[T]) SetAll(t Table[T], es []T) Table[T] {
	out := a.Empty()
	for _, e := range es {
		id := a.ID(e)
		if _, ok := out.entities[id]; !ok {
			out.ids = append(out.ids, id)
		}
		out.entities[id] = e
		out.statuses[id] = Fulfilled()
	}
	// keep in-flight records for ids a concurrent by-id fetch is still loading
	for id, s := range t.statuses {
		if _, ok := out.entities[id]; !ok && s.Status.InFlight() {
			out.statuses[id] = s
		}
	}
	a.sort(&out)
	return out
}

// RemoveOne deletes the entity and its status record together.
func (a Adapter[T]) RemoveOne(t Table[T], id string) Table[T] {
	return a.RemoveMany(t, []string{id})
}

// RemoveMany deletes the entities and their status records together.
func (a Adapter[T]) RemoveMany(t Table[T], ids []string) Table[T] {
	out := t.clone()
	out.ensure()
	for _, id := range ids {
		delete(out.entities, id)
		delete(out.statuses, id)
	}
	out.ids = slices.DeleteFunc(out.ids, func(id string) bool {
		_, ok := out.entities[id]
		return !ok
	})
	return out
}

// UpdateOne replaces an existing entity with fn(entity). Status is unchanged.
// It reports false, and returns t unchanged, when id is absent.
func (a Adapter[T]) UpdateOne(t Table[T], id string, fn func(T) T) (Table[T], bool) {
	e, ok := t.entities[id]
	if !ok {
		return t, false
	}
	out := t.clone()
	out.entities[id] = fn(e)
	a.sort(&out)
	return out, true
}

// SetStatus records a status for id without touching the entity table.
// Setting fulfilled for an id without an entity is ignored, keeping the
// fulfilled-implies-present invariant.
func (a Adapter[T]) SetStatus(t Table[T], id string, s FetchStatus) Table[T] {
	return a.SetStatuses(t, []string{id}, s)
}

// SetStatuses records the same status for every id.
func (a Adapter[T]) SetStatuses(t Table[T], ids []string, s FetchStatus) Table[T] {
	out := t.clone()
	out.ensure()
	for _, id := range ids {
		if s.Status == StatusFulfilled {
			if _, ok := out.entities[id]; !ok {
				continue
			}
		}
		out.statuses[id] = s
	}
	return out
}

// ClearStatus drops the status record of id, returning it to idle. Used when
// a request for an id that was never stored fails to start or is withdrawn.
func (a Adapter[T]) ClearStatus(t Table[T], id string) Table[T] {
	if _, ok := t.statuses[id]; !ok {
		return t
	}
	out := t.clone()
	delete(out.statuses, id)
	return out
}

func (a Adapter[T]) sort(t *Table[T]) {
	if a.Less == nil {
		return
	}
	slices.SortStableFunc(t.ids, func(x, y string) int {
		ex, ey := t.entities[x], t.entities[y]
		switch {
		case a.Less(ex, ey):
			return -1
		case a.Less(ey, ex):
			return 1
		default:
			return 0
		}
	})
}
