package store

import (
	"slices"

	"github.com/stemsi/classbook-backend/internal/model"
	"github.com/stemsi/classbook-backend/internal/validator"
)

// Collection is one typed, insertion-ordered table of the store.
// All methods lock the owning Store; returned records are copies.
type Collection[T any] struct {
	st   *Store
	name string

	slice func(*model.AppState) *[]T
	id    func(*T) *string
	clone func(T) T

	// prepare fills create-time defaults.
	prepare func(st *Store, rec *T)
	// check runs after tag validation, against the rest of the state.
	check func(state *model.AppState, rec *T) error
	// guard may veto a delete.
	guard func(state *model.AppState, id string) error
	// cascade removes records owned by the deleted one.
	cascade func(state *model.AppState, id string)
}

// Name returns the collection's export key (e.g. "student_grades").
func (c *Collection[T]) Name() string { return c.name }

func (c *Collection[T]) copyOf(rec T) T {
	if c.clone == nil {
		return rec
	}
	return c.clone(rec)
}

func (c *Collection[T]) indexOf(state *model.AppState, id string) int {
	return slices.IndexFunc(*c.slice(state), func(rec T) bool {
		return *c.id(&rec) == id
	})
}

// List returns the records matching pred (all when pred is nil), in store order.
func (c *Collection[T]) List(pred func(T) bool) []T {
	c.st.mu.RLock()
	defer c.st.mu.RUnlock()

	out := []T{}
	for _, rec := range *c.slice(c.st.state) {
		if pred == nil || pred(rec) {
			out = append(out, c.copyOf(rec))
		}
	}
	return out
}

// Count returns the number of stored records.
func (c *Collection[T]) Count() int {
	c.st.mu.RLock()
	defer c.st.mu.RUnlock()
	return len(*c.slice(c.st.state))
}

// Get returns the record with the given ID.
func (c *Collection[T]) Get(id string) (T, error) {
	c.st.mu.RLock()
	defer c.st.mu.RUnlock()

	var zero T
	i := c.indexOf(c.st.state, id)
	if i < 0 {
		return zero, NotFound(c.name, id)
	}
	return c.copyOf((*c.slice(c.st.state))[i]), nil
}

// Create assigns a new ID to rec, validates it and appends it.
func (c *Collection[T]) Create(rec T) (T, error) {
	var zero T
	rec = c.copyOf(rec)

	c.st.mu.Lock()
	if c.prepare != nil {
		c.prepare(c.st, &rec)
	}
	*c.id(&rec) = c.st.newID()
	if err := c.validate(&rec); err != nil {
		c.st.mu.Unlock()
		return zero, err
	}
	items := c.slice(c.st.state)
	*items = append(*items, rec)
	out := c.copyOf(rec)
	c.st.mu.Unlock()

	c.st.changed()
	return out, nil
}

// Update applies patch to a copy of the stored record, then validates and
// stores it. The ID cannot be changed. On any error the store is untouched.
func (c *Collection[T]) Update(id string, patch func(*T) error) (T, error) {
	var zero T

	c.st.mu.Lock()
	i := c.indexOf(c.st.state, id)
	if i < 0 {
		c.st.mu.Unlock()
		return zero, NotFound(c.name, id)
	}
	items := c.slice(c.st.state)
	rec := c.copyOf((*items)[i])
	if err := patch(&rec); err != nil {
		c.st.mu.Unlock()
		return zero, err
	}
	*c.id(&rec) = id
	if err := c.validate(&rec); err != nil {
		c.st.mu.Unlock()
		return zero, err
	}
	(*items)[i] = rec
	out := c.copyOf(rec)
	c.st.mu.Unlock()

	c.st.changed()
	return out, nil
}

// Delete removes the record, subject to the collection's guard, and
// cascades to the records it owns.
func (c *Collection[T]) Delete(id string) error {
	c.st.mu.Lock()
	i := c.indexOf(c.st.state, id)
	if i < 0 {
		c.st.mu.Unlock()
		return NotFound(c.name, id)
	}
	if c.guard != nil {
		if err := c.guard(c.st.state, id); err != nil {
			c.st.mu.Unlock()
			return err
		}
	}
	items := c.slice(c.st.state)
	*items = slices.Delete(*items, i, i+1)
	if c.cascade != nil {
		c.cascade(c.st.state, id)
	}
	c.st.mu.Unlock()

	c.st.changed()
	return nil
}

func (c *Collection[T]) validate(rec *T) error {
	if fields := validator.Struct(rec); fields != nil {
		return &ValidationError{Fields: fields}
	}
	if c.check != nil {
		return c.check(c.st.state, rec)
	}
	return nil
}
