package response_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ideaforge/ideaforge/internal/api/response"
)

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestNewMeta_GeneratesUUID(t *testing.T) {
	meta := response.NewMeta("")

	_, err := uuid.Parse(meta.RequestID)
	assert.NoError(t, err, "requestId should be a valid UUID")
}

func TestNewMeta_UsesProvidedRequestID(t *testing.T) {
	meta := response.NewMeta("my-custom-request-id")

	assert.Equal(t, "my-custom-request-id", meta.RequestID)
}

func TestNewMeta_TimestampIsRFC3339(t *testing.T) {
	before := time.Now().UTC().Add(-1 * time.Second)

	meta := response.NewMeta("")

	parsed, err := time.Parse(time.RFC3339, meta.Timestamp)
	require.NoError(t, err)
	assert.False(t, parsed.Before(before), "timestamp should be recent")
}

func TestSuccess(t *testing.T) {
	w := httptest.NewRecorder()

	response.Success(w, http.StatusCreated, map[string]string{"title": "Solar kiosks"}, "req-1")

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	body := decode(t, w)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "Solar kiosks", data["title"])
	meta := body["meta"].(map[string]interface{})
	assert.Equal(t, "req-1", meta["requestId"])
}

func TestSuccessList_IncludesTotal(t *testing.T) {
	w := httptest.NewRecorder()

	response.SuccessList(w, http.StatusOK, []string{"a", "b"}, 2, "req-2")

	body := decode(t, w)
	assert.Len(t, body["data"], 2)
	meta := body["meta"].(map[string]interface{})
	assert.Equal(t, float64(2), meta["total"])
	assert.Equal(t, "req-2", meta["requestId"])
}

func TestSuccessList_EmptyIsArray(t *testing.T) {
	w := httptest.NewRecorder()

	response.SuccessList(w, http.StatusOK, []string{}, 0, "")

	assert.Contains(t, w.Body.String(), `"data":[]`)
}

func TestMessage(t *testing.T) {
	w := httptest.NewRecorder()

	response.Message(w, http.StatusOK, "Logged out successfully", "req-3")

	body := decode(t, w)
	assert.Equal(t, "Logged out successfully", body["message"])
	assert.NotContains(t, body, "data")
}

func TestNoContent(t *testing.T) {
	w := httptest.NewRecorder()

	response.NoContent(w)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.Bytes())
}

func TestErr_OmitsDetails(t *testing.T) {
	w := httptest.NewRecorder()

	response.Err(w, http.StatusNotFound, "NOT_FOUND", "Idea not found", "req-4")

	assert.Equal(t, http.StatusNotFound, w.Code)
	body := decode(t, w)
	assert.Equal(t, "Idea not found", body["message"])
	assert.Equal(t, "NOT_FOUND", body["code"])
	assert.NotContains(t, body, "details")
	assert.Equal(t, "req-4", body["meta"].(map[string]interface{})["requestId"])
}

func TestErrWithDetails(t *testing.T) {
	w := httptest.NewRecorder()
	details := []map[string]string{{"field": "title", "message": "Title must be at least 5 characters."}}

	response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", details, "")

	body := decode(t, w)
	assert.Equal(t, "Input validation failed", body["message"])
	got := body["details"].([]interface{})
	require.Len(t, got, 1)
	assert.Equal(t, "title", got[0].(map[string]interface{})["field"])
}
