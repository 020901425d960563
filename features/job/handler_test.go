package job

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestHandler_List(t *testing.T) {
	repo := new(MockRepo)
	repo.On("List", mock.Anything).Return([]Job{{ID: "job-1", DocumentID: "doc-1"}}, nil)

	h := NewHandler(NewService(repo, nil))

	req := httptest.NewRequest(http.MethodGet, "/jobs/failed", nil)
	rec := httptest.NewRecorder()
	h.List(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data []Job          `json:"data"`
		Meta map[string]int `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "doc-1", resp.Data[0].DocumentID)
	assert.Equal(t, 1, resp.Meta["count"])
}

func TestHandler_List_EmptyIsArray(t *testing.T) {
	repo := new(MockRepo)
	repo.On("List", mock.Anything).Return([]Job(nil), nil)

	h := NewHandler(NewService(repo, nil))

	req := httptest.NewRequest(http.MethodGet, "/jobs/failed", nil)
	rec := httptest.NewRecorder()
	h.List(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"data":[]`)
}

func TestHandler_Retry_NotFound(t *testing.T) {
	repo := new(MockRepo)
	repo.On("Get", mock.Anything, "missing").Return(nil, sql.ErrNoRows)

	h := NewHandler(NewService(repo, new(MockPublisher)))

	req := httptest.NewRequest(http.MethodPost, "/jobs/missing/retry", nil)
	req.SetPathValue("id", "missing")
	rec := httptest.NewRecorder()
	h.Retry(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	errObj, ok := resp["error"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "NOT_FOUND", errObj["code"])
}

func TestHandler_Retry_Success(t *testing.T) {
	repo := new(MockRepo)
	pub := new(MockPublisher)
	repo.On("Get", mock.Anything, "job-1").Return(&Job{ID: "job-1", Payload: json.RawMessage(`{}`)}, nil)
	pub.On("Publish", mock.Anything, mock.Anything).Return(nil)
	repo.On("Delete", mock.Anything, "job-1").Return(nil)

	h := NewHandler(NewService(repo, pub))

	req := httptest.NewRequest(http.MethodPost, "/jobs/job-1/retry", nil)
	req.SetPathValue("id", "job-1")
	rec := httptest.NewRecorder()
	h.Retry(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "job retried")
}
