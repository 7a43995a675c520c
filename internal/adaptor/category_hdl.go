package adaptor

import (
	"net/http"

	"reader-hub/internal/dto/request"
	"reader-hub/internal/usecase"
	"reader-hub/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type CategoryHandler struct {
	service usecase.CategoryService
	log     *zap.Logger
}

func NewCategoryHandler(service usecase.CategoryService, log *zap.Logger) *CategoryHandler {
	return &CategoryHandler{
		service: service,
		log:     log.With(zap.String("handler", "category")),
	}
}

// Create handles POST /api/categories
func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CategoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	category, err := h.service.Create(r.Context(), &req)
	if err != nil {
		handleServiceError(w, r, h.log, err, "create category")
		return
	}

	utils.ResponseCreated(w, localize(r).T("CATEGORY_CREATED"), category)
}

// GetAll handles GET /api/categories
func (h *CategoryHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.GetAll(r.Context())
	if err != nil {
		handleServiceError(w, r, h.log, err, "get categories")
		return
	}

	utils.ResponseSuccess(w, localize(r).T("CATEGORIES_RETRIEVED"), categories)
}

// GetByID handles GET /api/categories/{id}
func (h *CategoryHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	category, err := h.service.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, r, h.log, err, "get category")
		return
	}

	utils.ResponseSuccess(w, localize(r).T("CATEGORY_RETRIEVED"), category)
}

// Update handles PUT /api/categories/{id}
func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req request.CategoryUpdateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	category, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		handleServiceError(w, r, h.log, err, "update category")
		return
	}

	utils.ResponseSuccess(w, localize(r).T("CATEGORY_UPDATED"), category)
}

// Delete handles DELETE /api/categories/{id}
func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, r, h.log, err, "delete category")
		return
	}

	utils.ResponseSuccess(w, localize(r).T("CATEGORY_DELETED"), nil)
}
