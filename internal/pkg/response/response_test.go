package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	apperrors "github.com/lk2023060901/world-explorer/internal/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, h gin.HandlerFunc) (*httptest.ResponseRecorder, Response) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	h(c)

	var body Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, body
}

func TestHandleError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   int
		wantMsg    string
	}{
		{
			name:       "app error uses registered message",
			err:        apperrors.New(apperrors.ErrSearchFailed),
			wantStatus: http.StatusNotFound,
			wantCode:   apperrors.ErrSearchFailed,
			wantMsg:    "No matching country found.",
		},
		{
			name:       "busy",
			err:        apperrors.New(apperrors.ErrSearchBusy),
			wantStatus: http.StatusConflict,
			wantCode:   apperrors.ErrSearchBusy,
			wantMsg:    "A search is already in progress.",
		},
		{
			name:       "plain error",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   apperrors.ErrInternalServer,
			wantMsg:    "Internal server error: boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, body := serve(t, func(c *gin.Context) { HandleError(c, tt.err) })
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantCode, body.Code)
			assert.Equal(t, tt.wantMsg, body.Message)
		})
	}
}

func TestSuccess(t *testing.T) {
	w, body := serve(t, func(c *gin.Context) { SuccessWithMessage(c, "hi", gin.H{"a": 1}) })
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, apperrors.Success, body.Code)
	assert.Equal(t, "hi", body.Message)
	assert.Equal(t, map[string]interface{}{"a": float64(1)}, body.Data)
}
