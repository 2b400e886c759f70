package handler

import (
	"errors"
	"net/http"

	"github.com/docquiz/docquiz-backend/internal/model"
	"github.com/docquiz/docquiz-backend/internal/response"
	"github.com/docquiz/docquiz-backend/internal/service"
	"github.com/docquiz/docquiz-backend/internal/validator"
	"github.com/gin-gonic/gin"
)

// ExtractionHandler handles question-extraction endpoints.
type ExtractionHandler struct {
	extractionService *service.ExtractionService
}

// NewExtractionHandler creates a new ExtractionHandler.
func NewExtractionHandler(extractionService *service.ExtractionService) *ExtractionHandler {
	return &ExtractionHandler{extractionService: extractionService}
}

// Start godoc
// POST /api/v1/extractions
// Starts a background extraction job and returns its id for polling.
func (h *ExtractionHandler) Start(c *gin.Context) {
	var req model.StartExtractionRequest
	// An empty body means defaults: all uploads, configured question target.
	if c.Request.ContentLength > 0 {
		if fields := validator.Bind(c, &req); fields != nil {
			response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
			return
		}
	}

	jobID, err := h.extractionService.Start(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrExtractionThrottle) {
			response.Fail(c, http.StatusConflict, response.ErrConflict)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusAccepted, gin.H{"job_id": jobID})
}

// Progress godoc
// GET /api/v1/extractions/:job_id/progress
// Returns the staged progress of a running or finished job.
func (h *ExtractionHandler) Progress(c *gin.Context) {
	progress, err := h.extractionService.Progress(c.Request.Context(), c.Param("job_id"))
	if err != nil {
		if errors.Is(err, service.ErrJobNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, progress)
}

// Questions godoc
// GET /api/v1/questions
// Returns the current sanitized question paper.
func (h *ExtractionHandler) Questions(c *gin.Context) {
	payload, err := h.extractionService.Payload(c.Request.Context())
	if err != nil {
		if errors.Is(err, service.ErrNoQuestionSet) {
			response.Fail(c, http.StatusNotFound, response.ErrNoQuestions)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, payload)
}
