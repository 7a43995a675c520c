package adaptor

import (
	"net/http"

	"reader-hub/internal/data/entity"
	"reader-hub/internal/dto/request"
	"reader-hub/internal/usecase"
	"reader-hub/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type BookHandler struct {
	service usecase.BookService
	log     *zap.Logger
}

func NewBookHandler(service usecase.BookService, log *zap.Logger) *BookHandler {
	return &BookHandler{
		service: service,
		log:     log.With(zap.String("handler", "book")),
	}
}

// Create handles POST /api/books
func (h *BookHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	var req request.BookRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	book, err := h.service.Create(r.Context(), actor, &req)
	if err != nil {
		handleServiceError(w, r, h.log, err, "create book")
		return
	}

	utils.ResponseCreated(w, localize(r).T("BOOK_CREATED"), book)
}

// GetAll handles GET /api/books
func (h *BookHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := &request.BookListRequest{
		PaginatedRequest: request.PaginatedRequest{
			Page:  utils.ParseInt(query.Get("page"), 1),
			Limit: utils.ParseInt(query.Get("limit"), 10),
		},
		Status:      query.Get("status"),
		CategoryID:  query.Get("category_id"),
		AuthorID:    query.Get("author_id"),
		PublisherID: query.Get("publisher_id"),
		Title:       query.Get("title"),
	}

	books, err := h.service.GetAll(r.Context(), req)
	if err != nil {
		handleServiceError(w, r, h.log, err, "get books")
		return
	}

	utils.ResponseSuccess(w, localize(r).T("BOOKS_RETRIEVED"), books)
}

// GetByID handles GET /api/books/{id}
func (h *BookHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	book, err := h.service.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, r, h.log, err, "get book")
		return
	}

	utils.ResponseSuccess(w, localize(r).T("BOOK_RETRIEVED"), book)
}

// Update handles PUT /api/books/{id}
func (h *BookHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	var req request.BookUpdateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	book, err := h.service.Update(r.Context(), actor, chi.URLParam(r, "id"), &req)
	if err != nil {
		handleServiceError(w, r, h.log, err, "update book")
		return
	}

	utils.ResponseSuccess(w, localize(r).T("BOOK_UPDATED"), book)
}

// Delete handles DELETE /api/books/{id}
func (h *BookHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), actor, chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, r, h.log, err, "delete book")
		return
	}

	utils.ResponseSuccess(w, localize(r).T("BOOK_DELETED"), nil)
}

func (h *BookHandler) actor(w http.ResponseWriter, r *http.Request) (usecase.Actor, bool) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	role, roleOK := utils.GetRoleFromContext(r.Context())
	if !ok || !roleOK {
		utils.ResponseUnauthorized(w, localize(r).T("UNAUTHORIZED"))
		return usecase.Actor{}, false
	}
	return usecase.Actor{ID: userID, Role: entity.UserRole(role)}, true
}
