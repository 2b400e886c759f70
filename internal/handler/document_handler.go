package handler

import (
	"errors"
	"net/http"

	"github.com/docquiz/docquiz-backend/internal/response"
	"github.com/docquiz/docquiz-backend/internal/service"
	"github.com/gin-gonic/gin"
)

// DocumentHandler handles source-document endpoints.
type DocumentHandler struct {
	documentService *service.DocumentService
}

// NewDocumentHandler creates a new DocumentHandler.
func NewDocumentHandler(documentService *service.DocumentService) *DocumentHandler {
	return &DocumentHandler{documentService: documentService}
}

// Upload godoc
// POST /api/v1/documents/upload
// Stores a source document for question extraction.
func (h *DocumentHandler) Upload(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrFileRequired)
		return
	}
	defer file.Close()

	uploaded, err := h.documentService.SaveUpload(file, header)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnsupportedFileType):
			response.Fail(c, http.StatusBadRequest, response.ErrUnsupportedFile)
		case errors.Is(err, service.ErrFileTooLarge):
			response.Fail(c, http.StatusBadRequest, response.ErrFileTooLarge)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusCreated, uploaded)
}

// ListSamples godoc
// GET /api/v1/documents/samples
// Lists the bundled sample documents.
func (h *DocumentHandler) ListSamples(c *gin.Context) {
	samples, err := h.documentService.ListSamples()
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"files": samples})
}

// PreviewSamples godoc
// GET /api/v1/documents/samples/preview
// Returns a short text preview of the sample documents.
func (h *DocumentHandler) PreviewSamples(c *gin.Context) {
	preview, err := h.documentService.PreviewSamples()
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, preview)
}
