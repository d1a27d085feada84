package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stemsi/classbook-backend/internal/persistence"
	"github.com/stemsi/classbook-backend/internal/response"
	"github.com/stemsi/classbook-backend/internal/seating"
	"github.com/stemsi/classbook-backend/internal/service"
	"github.com/stemsi/classbook-backend/internal/store"
)

// classify maps a domain error to its HTTP status and error code.
func classify(err error) (int, response.ErrCode) {
	var ve *store.ValidationError
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest, response.ErrValidation
	case errors.Is(err, service.ErrSessionNotFound):
		return http.StatusNotFound, response.ErrSessionClosed
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, response.ErrNotFound
	case errors.Is(err, store.ErrReferentialIntegrity):
		return http.StatusConflict, response.ErrDependencyExists
	case errors.Is(err, store.ErrConflict):
		return http.StatusConflict, response.ErrConflict
	case errors.Is(err, service.ErrImportFormat):
		return http.StatusBadRequest, response.ErrImportFormat
	case errors.Is(err, persistence.ErrPersistence):
		return http.StatusServiceUnavailable, response.ErrPersistence
	case errors.Is(err, seating.ErrNoDeskSelected):
		return http.StatusConflict, response.ErrNoDeskSelected
	case errors.Is(err, seating.ErrDeskOutOfRange), errors.Is(err, seating.ErrMalformedDeskKey):
		return http.StatusBadRequest, response.ErrDeskOutOfRange
	case errors.Is(err, seating.ErrNoStudent):
		return http.StatusBadRequest, response.ErrValidation
	default:
		return http.StatusInternalServerError, response.ErrInternal
	}
}

// writeError sends the envelope for err. Validation errors carry their
// fields; import and referential errors carry the detail message.
func writeError(c *gin.Context, err error) {
	status, code := classify(err)

	var ve *store.ValidationError
	switch {
	case errors.As(err, &ve):
		response.FailWithFields(c, status, code, ve.Fields)
	case code == response.ErrImportFormat, code == response.ErrDependencyExists:
		response.FailWithMessage(c, status, code, response.GetMessage(code)+" ("+err.Error()+")")
	case errors.Is(err, seating.ErrNoStudent):
		response.FailWithFields(c, status, code, map[string]string{"studentId": "studentId is required"})
	default:
		_ = c.Error(err)
		response.Fail(c, status, code)
	}
}
