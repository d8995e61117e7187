package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"mail-extractor-go/internal/models"
)

func extractRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	h := NewHandlers(nil, nil, nil, nil)
	router.POST("/api/v1/extract", h.Extract)
	return router
}

func TestExtractEndpoint(t *testing.T) {
	router := extractRouter()

	body := `{"text": "Check out www.example.com and https://docs.python.org/3/library/re.html, email info@mysite.org"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/extract", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp models.ExtractResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []string{"www.example.com", "https://docs.python.org/3/library/re.html"}, resp.URLs)
	assert.Equal(t, []string{"info@mysite.org"}, resp.Emails)
}

func TestExtractEndpointNoMatches(t *testing.T) {
	router := extractRouter()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/extract", strings.NewReader(`{"text": "nothing to see here"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	// empty categories serialize as empty arrays, not null
	assert.JSONEq(t, `{"urls": [], "emails": []}`, w.Body.String())
}

func TestExtractEndpointRejectsMissingText(t *testing.T) {
	router := extractRouter()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/extract", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
