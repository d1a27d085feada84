package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stemsi/classbook-backend/internal/persistence"
	"github.com/stemsi/classbook-backend/internal/response"
	"github.com/stemsi/classbook-backend/internal/seating"
	"github.com/stemsi/classbook-backend/internal/service"
	"github.com/stemsi/classbook-backend/internal/store"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   response.ErrCode
	}{
		{"validation", store.Invalid("name", "name is required"), http.StatusBadRequest, response.ErrValidation},
		{"not found", store.NotFound("classes", "c1"), http.StatusNotFound, response.ErrNotFound},
		{"session", fmt.Errorf("%w: s1", service.ErrSessionNotFound), http.StatusNotFound, response.ErrSessionClosed},
		{"referenced", fmt.Errorf("%w: class", store.ErrReferentialIntegrity), http.StatusConflict, response.ErrDependencyExists},
		{"conflict", store.ErrConflict, http.StatusConflict, response.ErrConflict},
		{"import", fmt.Errorf("%w: bad", service.ErrImportFormat), http.StatusBadRequest, response.ErrImportFormat},
		{"persistence", fmt.Errorf("%w: save", persistence.ErrPersistence), http.StatusServiceUnavailable, response.ErrPersistence},
		{"no desk", seating.ErrNoDeskSelected, http.StatusConflict, response.ErrNoDeskSelected},
		{"out of range", seating.ErrDeskOutOfRange, http.StatusBadRequest, response.ErrDeskOutOfRange},
		{"malformed desk", seating.ErrMalformedDeskKey, http.StatusBadRequest, response.ErrDeskOutOfRange},
		{"no student", seating.ErrNoStudent, http.StatusBadRequest, response.ErrValidation},
		{"other", fmt.Errorf("disk on fire"), http.StatusInternalServerError, response.ErrInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, code := classify(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, code)
		})
	}
}

func TestSlug(t *testing.T) {
	assert.Equal(t, "trimestre-1", slug(" Trimestre 1 "))
	assert.Equal(t, "semestre-2", slug("Semestre_2"))
	assert.Equal(t, "t1", slug("T1?!"))
}

func TestMergeJSONReplacesWholeFields(t *testing.T) {
	type rec struct {
		Name   string            `json:"name"`
		Levels map[string]string `json:"levels"`
	}
	r := rec{Name: "a", Levels: map[string]string{"s1": "A", "s2": "B"}}
	err := mergeJSON(&r, map[string]json.RawMessage{"levels": json.RawMessage(`{"s3":"C"}`)})
	assert.NoError(t, err)
	assert.Equal(t, "a", r.Name)
	assert.Equal(t, map[string]string{"s3": "C"}, r.Levels)

	err = mergeJSON(&r, map[string]json.RawMessage{"name": json.RawMessage(`42`)})
	assert.Error(t, err)
}
