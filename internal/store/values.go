package store

import (
	"fmt"
	"slices"
	"strings"

	"github.com/stemsi/classbook-backend/internal/model"
)

// ValueList is a plain list of names edited by position (subjects, periods).
type ValueList struct {
	st    *Store
	name  string
	slice func(*model.AppState) *[]string
}

// List returns the names in order.
func (l *ValueList) List() []string {
	l.st.mu.RLock()
	defer l.st.mu.RUnlock()
	return slices.Clone(*l.slice(l.st.state))
}

// Add appends a name.
func (l *ValueList) Add(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return Invalid("name", "name is required")
	}

	l.st.mu.Lock()
	items := l.slice(l.st.state)
	*items = append(*items, name)
	l.st.mu.Unlock()

	l.st.changed()
	return nil
}

// Rename replaces the name at index.
func (l *ValueList) Rename(index int, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return Invalid("name", "name is required")
	}

	l.st.mu.Lock()
	items := l.slice(l.st.state)
	if index < 0 || index >= len(*items) {
		l.st.mu.Unlock()
		return NotFound(l.name, fmt.Sprint(index))
	}
	(*items)[index] = name
	l.st.mu.Unlock()

	l.st.changed()
	return nil
}

// Remove deletes the name at index.
func (l *ValueList) Remove(index int) error {
	l.st.mu.Lock()
	items := l.slice(l.st.state)
	if index < 0 || index >= len(*items) {
		l.st.mu.Unlock()
		return NotFound(l.name, fmt.Sprint(index))
	}
	*items = slices.Delete(*items, index, index+1)
	l.st.mu.Unlock()

	l.st.changed()
	return nil
}
