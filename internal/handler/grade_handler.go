package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stemsi/classbook-backend/internal/query"
	"github.com/stemsi/classbook-backend/internal/response"
	"github.com/stemsi/classbook-backend/internal/service"
	"github.com/stemsi/classbook-backend/internal/validator"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// GradeHandler handles grade entry, grade tables and the workbook export.
type GradeHandler struct {
	gradeService *service.GradeService
}

// NewGradeHandler creates a new GradeHandler.
func NewGradeHandler(gradeService *service.GradeService) *GradeHandler {
	return &GradeHandler{gradeService: gradeService}
}

// GetTable godoc
// GET /api/v1/grade-table?targetId=&targetType=&period=&subject=
// Returns the grade grid of a context with each student's average.
func (h *GradeHandler) GetTable(c *gin.Context) {
	var ctx query.Context
	if err := c.ShouldBindQuery(&ctx); err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		return
	}

	table, err := h.gradeService.Table(ctx)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"table": table})
}

// SaveGrade godoc
// PUT /api/v1/grade-entries
// Creates or replaces the grade of a student for an evaluation.
func (h *GradeHandler) SaveGrade(c *gin.Context) {
	var req service.GradeInput
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	grade, created, err := h.gradeService.SaveGrade(req)
	if err != nil {
		writeError(c, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	response.Success(c, status, gin.H{"grade": grade})
}

// ExportWorkbook godoc
// GET /api/v1/grade-exports/notes.xlsx?period=
// Downloads every grade table of a period as an XLSX workbook.
func (h *GradeHandler) ExportWorkbook(c *gin.Context) {
	period := c.Query("period")
	b, err := h.gradeService.ExportWorkbook(period)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Attachment(c, fmt.Sprintf("notes-%s.xlsx", slug(period)), xlsxContentType, b)
}
