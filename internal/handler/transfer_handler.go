package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/stemsi/classbook-backend/internal/response"
	"github.com/stemsi/classbook-backend/internal/service"
)

// TransferHandler exports and imports the whole workbook.
type TransferHandler struct {
	transferService *service.TransferService
	now             func() string
}

// NewTransferHandler creates a new TransferHandler. today formats the
// export file date.
func NewTransferHandler(transferService *service.TransferService, today func() string) *TransferHandler {
	return &TransferHandler{transferService: transferService, now: today}
}

// Export godoc
// GET /api/v1/data/export
// Downloads the workbook as a JSON backup.
func (h *TransferHandler) Export(c *gin.Context) {
	b, err := h.transferService.Export()
	if err != nil {
		writeError(c, err)
		return
	}
	response.Attachment(c, fmt.Sprintf("sauvegarde-gestion-scolaire-%s.json", h.now()), "application/json", b)
}

// Import godoc
// POST /api/v1/data/import
// Replaces every collection present in the uploaded document.
func (h *TransferHandler) Import(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		return
	}
	keys, err := h.transferService.Import(body)
	if err != nil {
		writeError(c, err)
		return
	}
	if keys == nil {
		keys = []string{}
	}
	response.Success(c, http.StatusOK, gin.H{"replaced": keys})
}

// slug makes s safe for a download file name.
func slug(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			return r
		case r == ' ' || r == '_':
			return '-'
		default:
			return -1
		}
	}, s)
}
