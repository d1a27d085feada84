package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(h gin.HandlerFunc, reqID string) (*httptest.ResponseRecorder, Response) {
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/", h)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if reqID != "" {
		req.Header.Set("X-Request-ID", reqID)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var body Response
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return w, body
}

func TestRequestIDReuse(t *testing.T) {
	tests := []struct {
		name   string
		header string
		reused bool
	}{
		{"well-formed", "front-42.a_b", true},
		{"missing", "", false},
		{"too long", strings.Repeat("a", 65), false},
		{"injection", "abc\r\nSet-Cookie", false},
		{"spaces", "a b", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, body := serve(func(c *gin.Context) { Success(c, http.StatusOK, nil) }, tt.header)
			got := w.Header().Get("X-Request-ID")
			require.NotEmpty(t, got)
			assert.Equal(t, got, body.Metadata.RequestID)
			if tt.reused {
				assert.Equal(t, tt.header, got)
			} else {
				assert.NotEqual(t, tt.header, got)
			}
		})
	}
}

func TestFailEnvelope(t *testing.T) {
	w, body := serve(func(c *gin.Context) {
		FailWithFields(c, http.StatusBadRequest, ErrValidation, map[string]string{"name": "name is required"})
	}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, body.Error)
	assert.Equal(t, ErrValidation, body.Error.Code)
	assert.Equal(t, GetMessage(ErrValidation), body.Error.Message)
	assert.Equal(t, "name is required", body.Error.Fields["name"])
	assert.Nil(t, body.Data)
}

func TestFailWithMessage(t *testing.T) {
	_, body := serve(func(c *gin.Context) {
		_ = c.Error(errors.New("boom"))
		FailWithMessage(c, http.StatusBadRequest, ErrImportFormat, "fichier invalide")
	}, "")
	require.NotNil(t, body.Error)
	assert.Equal(t, "fichier invalide", body.Error.Message)
}

func TestAttachment(t *testing.T) {
	w, _ := serve(func(c *gin.Context) {
		Attachment(c, "notes.xlsx", "application/octet-stream", []byte("PK"))
	}, "")
	assert.Equal(t, `attachment; filename="notes.xlsx"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "PK", w.Body.String())
}
