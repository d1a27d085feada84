package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/stemsi/classbook-backend/internal/response"
	"github.com/stemsi/classbook-backend/internal/service"
)

// TimetableHandler serves the week view and the lesson import.
type TimetableHandler struct {
	timetableService *service.TimetableService
}

// NewTimetableHandler creates a new TimetableHandler.
func NewTimetableHandler(timetableService *service.TimetableService) *TimetableHandler {
	return &TimetableHandler{timetableService: timetableService}
}

// GetWeek godoc
// GET /api/v1/timetable/week?offset=0
// Returns the week offset weeks from the current one, merged with the calendar feed.
func (h *TimetableHandler) GetWeek(c *gin.Context) {
	offset := 0
	if raw := c.Query("offset"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation,
				map[string]string{"offset": "offset must be an integer"})
			return
		}
		offset = n
	}
	response.Success(c, http.StatusOK, gin.H{"week": h.timetableService.Week(c.Request.Context(), offset)})
}

// ImportLessons godoc
// POST /api/v1/timetable/lessons-import
// Replaces the dated lessons with the JSON array in the body.
func (h *TimetableHandler) ImportLessons(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		return
	}
	n, err := h.timetableService.ImportLessons(body)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"imported": n})
}
