package progress

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

func TestHandler_GetProgress(t *testing.T) {
	repo := new(MockRepo)
	repo.On("GetFolder", mock.Anything, "folder-1").Return(&Folder{ID: "folder-1"}, nil)
	repo.On("GetQuote", mock.Anything, "folder-1").Return(&Quote{ID: "q1", PaymentStatus: "paid"}, nil)
	repo.On("ListForms", mock.Anything, "folder-1").Return([]FormAssignment(nil), nil)
	repo.On("ListEsignatures", mock.Anything, "folder-1").Return([]Esignature(nil), nil)
	repo.On("GetShipment", mock.Anything, "folder-1").Return(Shipment{}, nil)

	h := NewHandler(NewService(repo))

	req := httptest.NewRequest(http.MethodGet, "/folders/folder-1/progress", nil)
	req.SetPathValue("id", "folder-1")
	rec := httptest.NewRecorder()
	h.GetProgress(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data struct {
			Progress StageResult `json:"progress"`
			Tasks    []Task      `json:"tasks"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, StageProduction, resp.Data.Progress.ComputedStage)
	assert.Equal(t, "In Production", resp.Data.Progress.StageLabel)
	require.Len(t, resp.Data.Tasks, 1)
	assert.Equal(t, "Quote paid", resp.Data.Tasks[0].Title)
}

func TestHandler_GetProgress_NotFound(t *testing.T) {
	repo := new(MockRepo)
	repo.On("GetFolder", mock.Anything, "missing").Return(nil, sql.ErrNoRows)

	h := NewHandler(NewService(repo))

	req := httptest.NewRequest(http.MethodGet, "/folders/missing/progress", nil)
	req.SetPathValue("id", "missing")
	rec := httptest.NewRecorder()
	h.GetProgress(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	errObj := resp["error"].(map[string]interface{})
	assert.Equal(t, "NOT_FOUND", errObj["code"])
}

func TestHandler_GetTasks(t *testing.T) {
	repo := new(MockRepo)
	repo.On("GetFolder", mock.Anything, "folder-1").Return(&Folder{ID: "folder-1", FilesTotal: 2, FilesViewed: 0}, nil)
	repo.On("GetQuote", mock.Anything, "folder-1").Return(nil, nil)
	repo.On("ListForms", mock.Anything, "folder-1").Return([]FormAssignment(nil), nil)
	repo.On("ListEsignatures", mock.Anything, "folder-1").Return([]Esignature(nil), nil)
	repo.On("GetShipment", mock.Anything, "folder-1").Return(Shipment{}, nil)

	h := NewHandler(NewService(repo))

	req := httptest.NewRequest(http.MethodGet, "/folders/folder-1/tasks", nil)
	req.SetPathValue("id", "folder-1")
	rec := httptest.NewRecorder()
	h.GetTasks(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data []Task         `json:"data"`
		Meta map[string]int `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, TaskFileReview, resp.Data[0].Kind)
	assert.Equal(t, 1, resp.Meta["count"])
}

func TestHandler_GetTasks_EmptyIsArray(t *testing.T) {
	repo := new(MockRepo)
	repo.On("GetFolder", mock.Anything, "folder-1").Return(&Folder{ID: "folder-1"}, nil)
	repo.On("GetQuote", mock.Anything, "folder-1").Return(nil, nil)
	repo.On("ListForms", mock.Anything, "folder-1").Return([]FormAssignment(nil), nil)
	repo.On("ListEsignatures", mock.Anything, "folder-1").Return([]Esignature(nil), nil)
	repo.On("GetShipment", mock.Anything, "folder-1").Return(Shipment{}, nil)

	h := NewHandler(NewService(repo))

	req := httptest.NewRequest(http.MethodGet, "/folders/folder-1/tasks", nil)
	req.SetPathValue("id", "folder-1")
	rec := httptest.NewRecorder()
	h.GetTasks(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"data":[]`)
}
