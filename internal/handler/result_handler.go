package handler

import (
	"net/http"
	"strconv"

	"github.com/docquiz/docquiz-backend/internal/repository"
	"github.com/docquiz/docquiz-backend/internal/response"
	"github.com/gin-gonic/gin"
)

const (
	resultDefaultPerPage = 20
	resultMaxPerPage     = 100
)

// ResultHandler handles persisted exam-result endpoints.
type ResultHandler struct {
	results *repository.ResultRepository
}

// NewResultHandler creates a new ResultHandler.
func NewResultHandler(results *repository.ResultRepository) *ResultHandler {
	return &ResultHandler{results: results}
}

// List godoc
// GET /api/v1/results
// Returns persisted results newest-first with pagination.
func (h *ResultHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", strconv.Itoa(resultDefaultPerPage)))
	if perPage < 1 || perPage > resultMaxPerPage {
		perPage = resultDefaultPerPage
	}

	results, total, err := h.results.ListRecent(c.Request.Context(), page, perPage)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if results == nil {
		results = []repository.StoredResult{}
	}

	totalPages := int(total) / perPage
	if int(total)%perPage != 0 {
		totalPages++
	}

	response.SuccessWithPagination(c, http.StatusOK, results, &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: int(total),
		TotalPages: totalPages,
	})
}
