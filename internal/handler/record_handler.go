package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stemsi/classbook-backend/internal/response"
	"github.com/stemsi/classbook-backend/internal/store"
	"github.com/stemsi/classbook-backend/internal/validator"
)

// Filter builds a list predicate from the request's query string.
// A nil predicate keeps every record.
type Filter[T any] func(c *gin.Context) func(T) bool

// RecordHandler exposes CRUD over one store collection. Records are sent
// under their singular key and lists under their plural key.
type RecordHandler[T any] struct {
	records  *store.Collection[T]
	singular string
	plural   string
	filter   Filter[T]
}

// NewRecordHandler creates a new RecordHandler.
func NewRecordHandler[T any](records *store.Collection[T], singular, plural string, filter Filter[T]) *RecordHandler[T] {
	return &RecordHandler[T]{records: records, singular: singular, plural: plural, filter: filter}
}

// List godoc
// GET /api/v1/{collection}
// Lists the collection in insertion order, optionally filtered by query parameters.
func (h *RecordHandler[T]) List(c *gin.Context) {
	var pred func(T) bool
	if h.filter != nil {
		pred = h.filter(c)
	}
	response.Success(c, http.StatusOK, gin.H{h.plural: h.records.List(pred)})
}

// Get godoc
// GET /api/v1/{collection}/:id
func (h *RecordHandler[T]) Get(c *gin.Context) {
	rec, err := h.records.Get(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{h.singular: rec})
}

// Create godoc
// POST /api/v1/{collection}
// Creates a record. Any client-sent id is replaced.
func (h *RecordHandler[T]) Create(c *gin.Context) {
	var rec T
	if fields := validator.Bind(c, &rec); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrInvalidPayload, fields)
		return
	}

	created, err := h.records.Create(rec)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{h.singular: created})
}

// Update godoc
// PUT /api/v1/{collection}/:id
// Merges the top-level fields of the body into the record. The id never changes.
func (h *RecordHandler[T]) Update(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		return
	}
	var patch map[string]json.RawMessage
	if err := json.Unmarshal(body, &patch); err != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrInvalidPayload, map[string]string{"detail": err.Error()})
		return
	}

	updated, err := h.records.Update(c.Param("id"), func(rec *T) error {
		return mergeJSON(rec, patch)
	})
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{h.singular: updated})
}

// Delete godoc
// DELETE /api/v1/{collection}/:id
// Fails with DEPENDENCY_EXISTS while other records reference this one.
func (h *RecordHandler[T]) Delete(c *gin.Context) {
	if err := h.records.Delete(c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": h.singular + " deleted successfully"})
}

// Register mounts the CRUD routes on g.
func (h *RecordHandler[T]) Register(g *gin.RouterGroup) {
	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}

// mergeJSON overlays patch onto rec key by key. A patched key replaces the
// whole field, including maps and slices.
func mergeJSON[T any](rec *T, patch map[string]json.RawMessage) error {
	current, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(current, &fields); err != nil {
		return err
	}
	for k, v := range patch {
		fields[k] = v
	}
	merged, err := json.Marshal(fields)
	if err != nil {
		return err
	}

	var next T
	if err := json.Unmarshal(merged, &next); err != nil {
		return store.Invalid("detail", err.Error())
	}
	*rec = next
	return nil
}

// ─── Filters ───────────────────────────────────────────────────────────

// queryEquals keeps records whose field matches the query parameter when it is set.
func queryEquals[T any](param string, field func(T) string) Filter[T] {
	return func(c *gin.Context) func(T) bool {
		want := c.Query(param)
		if want == "" {
			return nil
		}
		return func(rec T) bool { return field(rec) == want }
	}
}

// allOf combines filters; unset parameters are ignored.
func allOf[T any](filters ...Filter[T]) Filter[T] {
	return func(c *gin.Context) func(T) bool {
		var preds []func(T) bool
		for _, f := range filters {
			if p := f(c); p != nil {
				preds = append(preds, p)
			}
		}
		if len(preds) == 0 {
			return nil
		}
		return func(rec T) bool {
			for _, p := range preds {
				if !p(rec) {
					return false
				}
			}
			return true
		}
	}
}
