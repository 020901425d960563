package chat

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"merchflow/backend/internal/adapter/gemini"
)

func newTestHandler(grounder *MockGrounder, progress *MockProgress, model *MockModel) *Handler {
	return NewHandler(NewService(grounder, progress, model))
}

func TestHandler_Chat(t *testing.T) {
	grounder := new(MockGrounder)
	model := new(MockModel)
	grounder.On("GroundingContext", mock.Anything, "cust-1", "hi").Return("", nil)
	model.On("Generate", mock.Anything, mock.Anything, "hi").Return("Hello!", nil)

	h := newTestHandler(grounder, new(MockProgress), model)

	body := strings.NewReader(`{"customer_id": "cust-1", "message": "hi"}`)
	req := httptest.NewRequest(http.MethodPost, "/chat", body)
	rec := httptest.NewRecorder()
	h.Chat(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data Response `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Hello!", resp.Data.Reply)
}

func TestHandler_Chat_RequiresMessage(t *testing.T) {
	h := newTestHandler(new(MockGrounder), new(MockProgress), new(MockModel))

	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{"message": "  "}`))
	rec := httptest.NewRecorder()
	h.Chat(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_Chat_InvalidJSON(t *testing.T) {
	h := newTestHandler(new(MockGrounder), new(MockProgress), new(MockModel))

	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{not json`))
	rec := httptest.NewRecorder()
	h.Chat(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_Chat_ModelUnavailable(t *testing.T) {
	grounder := new(MockGrounder)
	model := new(MockModel)
	grounder.On("GroundingContext", mock.Anything, "", "hi").Return("", nil)
	model.On("Generate", mock.Anything, mock.Anything, "hi").Return("", gemini.ErrUnavailable)

	h := newTestHandler(grounder, new(MockProgress), model)

	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{"message": "hi"}`))
	rec := httptest.NewRecorder()
	h.Chat(rec, req)

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	errObj := resp["error"].(map[string]interface{})
	assert.Equal(t, "MODEL_UNAVAILABLE", errObj["code"])
}
