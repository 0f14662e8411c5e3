package handler_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"ocrsvc/internal/domain"
	"ocrsvc/internal/handler"
	"ocrsvc/mocks"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func postJSON(t *testing.T, h gin.HandlerFunc, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, path, strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set("request_id", "req-1")
	h(c)
	return w
}

func TestOCRHandler_Process_BindsAliases(t *testing.T) {
	tests := []struct {
		name string
		body string
		want domain.OCRRequest
	}{
		{
			name: "flat camelCase",
			body: `{"imageData":"aW1n","promptType":"text_only"}`,
			want: domain.OCRRequest{ImageData: "aW1n", PromptType: "text_only"},
		},
		{
			name: "wrapped input",
			body: `{"input":{"pdfData":"cGRm"}}`,
			want: domain.OCRRequest{PDFData: "cGRm"},
		},
		{
			name: "snake_case",
			body: `{"image_data":"aW1n","prompt_type":"layout_detection"}`,
			want: domain.OCRRequest{ImageData: "aW1n", PromptType: "layout_detection"},
		},
		{
			name: "legacy image_base64",
			body: `{"input":{"image_base64":"aW1n","prompt_type":"layout_parsing"}}`,
			want: domain.OCRRequest{ImageData: "aW1n", PromptType: "layout_parsing"},
		},
		{
			name: "pdf_data alias",
			body: `{"pdf_data":"cGRm"}`,
			want: domain.OCRRequest{PDFData: "cGRm"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(mocks.MockOCRService)
			svc.On("Process", mock.Anything, "req-1", tt.want).
				Return(domain.OCRResponse{Status: domain.StatusSuccess, RequestID: "req-1"})

			w := postJSON(t, handler.NewOCRHandler(svc, 0).Process, "/api/v1/ocr", tt.body)

			assert.Equal(t, http.StatusOK, w.Code)
			svc.AssertExpectations(t)
		})
	}
}

func TestOCRHandler_Process_StatusCodes(t *testing.T) {
	tests := []struct {
		name string
		resp domain.OCRResponse
		want int
	}{
		{"success", domain.OCRResponse{Status: domain.StatusSuccess}, http.StatusOK},
		{"degraded", domain.OCRResponse{Status: domain.StatusImportFailed, Error: "engine down"}, http.StatusOK},
		{"missing input", domain.OCRResponse{Status: domain.StatusError, Err: domain.ErrMissingInput}, http.StatusBadRequest},
		{"ambiguous input", domain.OCRResponse{Status: domain.StatusError, Err: domain.ErrAmbiguousInput}, http.StatusBadRequest},
		{"decode", domain.OCRResponse{Status: domain.StatusError, Err: &domain.DecodeError{Kind: domain.InputKindPDF, Err: errors.New("x")}}, http.StatusBadRequest},
		{"inference", domain.OCRResponse{Status: domain.StatusError, Err: &domain.InferenceError{Engine: "e", Err: errors.New("x")}}, http.StatusBadGateway},
		{"other", domain.OCRResponse{Status: domain.StatusError, Err: errors.New("disk full")}, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(mocks.MockOCRService)
			svc.On("Process", mock.Anything, mock.Anything, mock.Anything).Return(tt.resp)

			w := postJSON(t, handler.NewOCRHandler(svc, 0).Process, "/api/v1/ocr", `{"imageData":"aW1n"}`)

			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestOCRHandler_Process_ErrorBody(t *testing.T) {
	svc := new(mocks.MockOCRService)
	svc.On("Process", mock.Anything, mock.Anything, mock.Anything).Return(domain.OCRResponse{
		Status:    domain.StatusError,
		Error:     domain.ErrMissingInput.Error(),
		Err:       domain.ErrMissingInput,
		RequestID: "req-1",
	})

	w := postJSON(t, handler.NewOCRHandler(svc, 0).Process, "/api/v1/ocr", `{}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"status":"error","error":"no imageData or pdfData provided in input","requestId":"req-1"}`, w.Body.String())
}

func TestOCRHandler_Process_InvalidJSON(t *testing.T) {
	svc := new(mocks.MockOCRService)

	w := postJSON(t, handler.NewOCRHandler(svc, 0).Process, "/api/v1/ocr", `{"imageData":`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var resp handler.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "INVALID_REQUEST", resp.Error.Code)
	svc.AssertNotCalled(t, "Process", mock.Anything, mock.Anything, mock.Anything)
}

func TestOCRHandler_Process_BodyTooLarge(t *testing.T) {
	svc := new(mocks.MockOCRService)
	body := `{"imageData":"` + strings.Repeat("A", 2048) + `"}`

	w := postJSON(t, handler.NewOCRHandler(svc, 1024).Process, "/api/v1/ocr", body)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	svc.AssertNotCalled(t, "Process", mock.Anything, mock.Anything, mock.Anything)
}

func TestOCRHandler_RunSync_Envelope(t *testing.T) {
	svc := new(mocks.MockOCRService)
	svc.On("Process", mock.Anything, "req-1", domain.OCRRequest{ImageData: "aW1n"}).Return(domain.OCRResponse{
		Status:    domain.StatusError,
		Error:     "failed to decode image: bad",
		Err:       &domain.DecodeError{Kind: domain.InputKindImage, Err: errors.New("bad")},
		RequestID: "req-1",
	})

	w := postJSON(t, handler.NewOCRHandler(svc, 0).RunSync, "/runsync", `{"input":{"image_base64":"aW1n"}}`)

	assert.Equal(t, http.StatusOK, w.Code)
	var got map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "req-1", got["id"])
	assert.Equal(t, "COMPLETED", got["status"])
	output := got["output"].(map[string]any)
	assert.Equal(t, "error", output["status"])
	assert.Equal(t, "failed to decode image: bad", output["error"])
}

func TestMaxBodyBytes(t *testing.T) {
	assert.Equal(t, int64(0), handler.MaxBodyBytes(0))
	assert.Greater(t, handler.MaxBodyBytes(3*1024*1024), int64(4*1024*1024))
}

func TestMapDomainError_Unauthorized(t *testing.T) {
	status, code, _ := handler.MapDomainError(domain.ErrUnauthorized)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "UNAUTHORIZED", code)
}
