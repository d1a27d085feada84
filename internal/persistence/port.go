// Package persistence stores the whole workbook as one JSON document.
// The in-memory store stays authoritative; adapters only load at startup
// and receive snapshots afterwards.
package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/stemsi/classbook-backend/internal/model"
)

// ErrPersistence marks every load or save failure of an adapter.
var ErrPersistence = errors.New("persistence failure")

// Port is implemented by every storage adapter.
type Port interface {
	// Load returns the stored workbook. found is false when nothing was saved yet.
	Load(ctx context.Context) (state *model.AppState, found bool, err error)
	Save(ctx context.Context, state *model.AppState) error
	// Name identifies the adapter in logs and status reports.
	Name() string
}

// LoadOrDefault loads the workbook, falling back to an empty one with the
// default subjects and periods when nothing was stored.
func LoadOrDefault(ctx context.Context, p Port) (*model.AppState, bool, error) {
	st, found, err := p.Load(ctx)
	if err != nil {
		return nil, false, err
	}
	if !found || st == nil {
		return model.NewAppState(), false, nil
	}
	st.Normalize()
	return st, true, nil
}

func failure(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrPersistence, op, err)
}

func encode(st *model.AppState) ([]byte, error) {
	b, err := json.Marshal(st)
	if err != nil {
		return nil, failure("encode", err)
	}
	return b, nil
}

func decode(b []byte) (*model.AppState, error) {
	st := &model.AppState{}
	if err := json.Unmarshal(b, st); err != nil {
		return nil, failure("decode", err)
	}
	return st, nil
}
