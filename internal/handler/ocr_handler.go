package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"ocrsvc/internal/domain"
	"ocrsvc/internal/service"
)

// ocrInput accepts the camelCase fields plus the snake_case and legacy aliases
// sent by older clients.
type ocrInput struct {
	ImageData       string `json:"imageData"`
	ImageDataSnake  string `json:"image_data"`
	ImageBase64     string `json:"image_base64"`
	PDFData         string `json:"pdfData"`
	PDFDataSnake    string `json:"pdf_data"`
	PromptType      string `json:"promptType"`
	PromptTypeSnake string `json:"prompt_type"`
}

// ocrBody is either a flat ocrInput or one wrapped in {"input": {...}}.
type ocrBody struct {
	Input *ocrInput `json:"input"`
	ocrInput
}

func (in ocrInput) request() domain.OCRRequest {
	return domain.OCRRequest{
		ImageData:  firstNonEmpty(in.ImageData, in.ImageDataSnake, in.ImageBase64),
		PDFData:    firstNonEmpty(in.PDFData, in.PDFDataSnake),
		PromptType: domain.PromptType(firstNonEmpty(in.PromptType, in.PromptTypeSnake)),
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// OCRHandler serves the OCR endpoints.
type OCRHandler struct {
	ocrService   service.OCRService
	maxBodyBytes int64
}

// NewOCRHandler creates a new OCRHandler. maxBodyBytes caps the request body;
// 0 disables the cap.
func NewOCRHandler(ocrService service.OCRService, maxBodyBytes int64) *OCRHandler {
	return &OCRHandler{ocrService: ocrService, maxBodyBytes: maxBodyBytes}
}

// MaxBodyBytes returns the request body cap for a decoded payload limit,
// allowing for base64 expansion and JSON framing.
func MaxBodyBytes(maxPayloadBytes int64) int64 {
	if maxPayloadBytes <= 0 {
		return 0
	}
	return maxPayloadBytes/3*4 + 64*1024
}

// Process handles POST /api/v1/ocr.
func (h *OCRHandler) Process(c *gin.Context) {
	req, ok := h.bind(c)
	if !ok {
		return
	}
	resp := h.ocrService.Process(c.Request.Context(), requestID(c), req)
	c.JSON(StatusFor(resp), resp)
}

// RunSync handles POST /runsync, answering in the serverless job envelope.
// The HTTP status is always 200 once the body is parsed; the outcome is in
// output.status.
func (h *OCRHandler) RunSync(c *gin.Context) {
	req, ok := h.bind(c)
	if !ok {
		return
	}
	resp := h.ocrService.Process(c.Request.Context(), requestID(c), req)
	c.JSON(http.StatusOK, gin.H{
		"id":     resp.RequestID,
		"status": "COMPLETED",
		"output": resp,
	})
}

func (h *OCRHandler) bind(c *gin.Context) (domain.OCRRequest, bool) {
	if h.maxBodyBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBodyBytes)
	}

	var body ocrBody
	if err := c.ShouldBindJSON(&body); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			HandleError(c, err)
			return domain.OCRRequest{}, false
		}
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", fmt.Sprintf("invalid request body: %v", err))
		return domain.OCRRequest{}, false
	}

	if body.Input != nil {
		return body.Input.request(), true
	}
	return body.ocrInput.request(), true
}
