package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stemsi/classbook-backend/internal/response"
	"github.com/stemsi/classbook-backend/internal/service"
	"github.com/stemsi/classbook-backend/internal/validator"
)

// SeatingHandler renders seating charts and drives editing sessions over HTTP.
type SeatingHandler struct {
	seatingService *service.SeatingService
}

// NewSeatingHandler creates a new SeatingHandler.
func NewSeatingHandler(seatingService *service.SeatingService) *SeatingHandler {
	return &SeatingHandler{seatingService: seatingService}
}

// OpenSessionRequest starts an editor on a chart.
type OpenSessionRequest struct {
	ChartID string `json:"chartId" binding:"notblank"`
}

// SelectDeskRequest is a click on a desk, keyed "row-col".
type SelectDeskRequest struct {
	Desk string `json:"desk" binding:"notblank"`
}

// AssignStudentRequest seats a student at the selected desk.
type AssignStudentRequest struct {
	StudentID string `json:"studentId"`
}

// GetLayout godoc
// GET /api/v1/seating-charts/:id/layout
// Renders the desk grid of a stored chart with unseated students.
func (h *SeatingHandler) GetLayout(c *gin.Context) {
	layout, err := h.seatingService.Layout(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"layout": layout})
}

// OpenSession godoc
// POST /api/v1/seating-sessions
func (h *SeatingHandler) OpenSession(c *gin.Context) {
	var req OpenSessionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	view, err := h.seatingService.Open(req.ChartID)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"session": view})
}

// GetSession godoc
// GET /api/v1/seating-sessions/:id
func (h *SeatingHandler) GetSession(c *gin.Context) {
	view, err := h.seatingService.Get(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"session": view})
}

// SelectDesk godoc
// POST /api/v1/seating-sessions/:id/select
// Selects a desk, or picks up its occupant when the desk is taken.
func (h *SeatingHandler) SelectDesk(c *gin.Context) {
	var req SelectDeskRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	view, err := h.seatingService.SelectDesk(c.Param("id"), req.Desk)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"session": view})
}

// AssignStudent godoc
// POST /api/v1/seating-sessions/:id/assign
func (h *SeatingHandler) AssignStudent(c *gin.Context) {
	var req AssignStudentRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	view, err := h.seatingService.AssignStudent(c.Param("id"), req.StudentID)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"session": view})
}

// SaveSession godoc
// POST /api/v1/seating-sessions/:id/save
// Writes the session arrangement to its chart.
func (h *SeatingHandler) SaveSession(c *gin.Context) {
	chart, err := h.seatingService.Save(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"seating_chart": chart})
}

// CloseSession godoc
// DELETE /api/v1/seating-sessions/:id
// Discards unsaved changes.
func (h *SeatingHandler) CloseSession(c *gin.Context) {
	if err := h.seatingService.Close(c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "session closed"})
}
