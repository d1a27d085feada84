package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/stemsi/classbook-backend/internal/response"
	"github.com/stemsi/classbook-backend/internal/service"
	"github.com/stemsi/classbook-backend/internal/validator"
)

// CatalogHandler manages the subject and period lists and the calendar URL.
type CatalogHandler struct {
	catalogService *service.CatalogService
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(catalogService *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

// CatalogValueRequest is the payload for adding or renaming a catalog entry.
type CatalogValueRequest struct {
	Name string `json:"name" binding:"notblank"`
}

// ListValues godoc
// GET /api/v1/catalogs/:name
// Lists "subjects" or "periods".
func (h *CatalogHandler) ListValues(c *gin.Context) {
	name := c.Param("name")
	values, err := h.catalogService.List(name)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{name: values})
}

// AddValue godoc
// POST /api/v1/catalogs/:name
func (h *CatalogHandler) AddValue(c *gin.Context) {
	var req CatalogValueRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	name := c.Param("name")
	values, err := h.catalogService.Add(name, req.Name)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{name: values})
}

// RenameValue godoc
// PUT /api/v1/catalogs/:name/:index
func (h *CatalogHandler) RenameValue(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req CatalogValueRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	name := c.Param("name")
	values, err := h.catalogService.Rename(name, index, req.Name)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{name: values})
}

// RemoveValue godoc
// DELETE /api/v1/catalogs/:name/:index
func (h *CatalogHandler) RemoveValue(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	name := c.Param("name")
	values, err := h.catalogService.Remove(name, index)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{name: values})
}

// ICalURLRequest is the payload for the calendar feed setting.
type ICalURLRequest struct {
	ICalURL string `json:"icalUrl"`
}

// GetICalURL godoc
// GET /api/v1/settings/ical-url
func (h *CatalogHandler) GetICalURL(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{"icalUrl": h.catalogService.ICalURL()})
}

// SetICalURL godoc
// PUT /api/v1/settings/ical-url
// An empty URL disables the feed.
func (h *CatalogHandler) SetICalURL(c *gin.Context) {
	var req ICalURLRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	if err := h.catalogService.SetICalURL(req.ICalURL); err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"icalUrl": h.catalogService.ICalURL()})
}
