package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"reader-hub/internal/data/entity"
	"reader-hub/internal/data/repository"
	"reader-hub/internal/dto/request"
	"reader-hub/internal/dto/response"
	"reader-hub/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Actor is the authenticated caller of a book write.
type Actor struct {
	ID   uuid.UUID
	Role entity.UserRole
}

type BookService interface {
	Create(ctx context.Context, actor Actor, req *request.BookRequest) (*response.BookResponse, error)
	GetAll(ctx context.Context, req *request.BookListRequest) (*response.BookListResponse, error)
	GetByID(ctx context.Context, id string) (*response.BookResponse, error)
	Update(ctx context.Context, actor Actor, id string, req *request.BookUpdateRequest) (*response.BookResponse, error)
	Delete(ctx context.Context, actor Actor, id string) error
}

type bookService struct {
	bookRepo     repository.BookRepository
	userRepo     repository.UserRepository
	categoryRepo repository.CategoryRepository
	log          *zap.Logger
}

func NewBookService(repo *repository.Repository, log *zap.Logger) BookService {
	return &bookService{
		bookRepo:     repo.Book,
		userRepo:     repo.User,
		categoryRepo: repo.Category,
		log:          log.With(zap.String("service", "book")),
	}
}

func (s *bookService) Create(ctx context.Context, actor Actor, req *request.BookRequest) (*response.BookResponse, error) {
	// 1. Validate
	req.Title = strings.TrimSpace(req.Title)
	if fields := utils.ValidateStruct(req); len(fields) > 0 {
		return nil, utils.ErrValidation(fields)
	}

	// 2. Build entity
	publishingDate, err := parsePublishingDate(req.PublishingDate)
	if err != nil {
		return nil, err
	}
	book := &entity.Book{
		Base:           entity.NewBase(time.Now()),
		Title:          req.Title,
		Description:    req.Description,
		Images:         req.Images,
		Price:          *req.Price,
		PublishingDate: publishingDate,
		AuthorID:       uuid.MustParse(req.AuthorID),
		PublisherID:    uuid.MustParse(req.PublisherID),
		CategoryID:     uuid.MustParse(req.CategoryID),
		Status:         entity.BookUnpublished,
	}
	if req.Discount != nil {
		book.Discount = *req.Discount
	}
	if req.Status != "" {
		book.Status = entity.BookStatus(req.Status)
	}

	// 3. Publishers only create their own books
	if !actor.canWrite(book) {
		return nil, utils.ErrForbidden("FORBIDDEN")
	}

	// 4. Check references
	if err := s.checkReferences(ctx, book); err != nil {
		return nil, err
	}

	// 5. Save
	if err := s.bookRepo.Create(ctx, book); err != nil {
		return nil, s.mapError(err)
	}

	s.log.Info("Book created",
		zap.String("book_id", book.ID.String()),
		zap.String("actor_id", actor.ID.String()))

	return s.detail(ctx, book.ID)
}

func (s *bookService) GetAll(ctx context.Context, req *request.BookListRequest) (*response.BookListResponse, error) {
	// 1. Normalize paging and validate filters
	if req.Page < 1 {
		req.Page = 1
	}
	req.Limit = req.PerPage()
	if fields := utils.ValidateStruct(req); len(fields) > 0 {
		return nil, utils.ErrValidation(fields)
	}

	// 2. Build filter
	filter := repository.BookFilter{Title: strings.TrimSpace(req.Title)}
	if req.Status != "" {
		status := entity.BookStatus(req.Status)
		filter.Status = &status
	}
	filter.CategoryID = optionalUUID(req.CategoryID)
	filter.AuthorID = optionalUUID(req.AuthorID)
	filter.PublisherID = optionalUUID(req.PublisherID)

	// 3. Query
	books, err := s.bookRepo.FindAll(ctx, filter, req.Limit, req.Offset())
	if err != nil {
		s.log.Error("Failed to list books", zap.Error(err))
		return nil, utils.ErrInternal("INTERNAL_ERROR", err)
	}
	total, err := s.bookRepo.CountAll(ctx, filter)
	if err != nil {
		s.log.Error("Failed to count books", zap.Error(err))
		return nil, utils.ErrInternal("INTERNAL_ERROR", err)
	}

	return &response.BookListResponse{
		Books:      response.BooksToResponse(books),
		Pagination: response.NewPaginationMeta(req.Page, req.Limit, total),
	}, nil
}

func (s *bookService) GetByID(ctx context.Context, id string) (*response.BookResponse, error) {
	bookID, err := utils.ParseUUID(id)
	if err != nil {
		return nil, utils.ErrBadRequest("INVALID_ID")
	}
	return s.detail(ctx, bookID)
}

func (s *bookService) Update(ctx context.Context, actor Actor, id string, req *request.BookUpdateRequest) (*response.BookResponse, error) {
	// 1. Validate
	bookID, err := utils.ParseUUID(id)
	if err != nil {
		return nil, utils.ErrBadRequest("INVALID_ID")
	}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		req.Title = &title
	}
	if fields := utils.ValidateStruct(req); len(fields) > 0 {
		return nil, utils.ErrValidation(fields)
	}

	// 2. Load and check ownership
	existing, err := s.find(ctx, bookID)
	if err != nil {
		return nil, err
	}
	book := &existing.Book
	if !actor.canWrite(book) {
		return nil, utils.ErrForbidden("FORBIDDEN")
	}

	// 3. Apply present fields
	if err := applyBookUpdate(book, req); err != nil {
		return nil, err
	}

	// 4. The new owner must still be the caller
	if !actor.canWrite(book) {
		return nil, utils.ErrForbidden("FORBIDDEN")
	}

	// 5. Re-check references
	if err := s.checkReferences(ctx, book); err != nil {
		return nil, err
	}

	// 6. Save
	book.UpdatedAt = time.Now()
	if err := s.bookRepo.Update(ctx, book); err != nil {
		return nil, s.mapError(err)
	}

	s.log.Info("Book updated", zap.String("book_id", book.ID.String()), zap.String("actor_id", actor.ID.String()))
	return s.detail(ctx, book.ID)
}

func (s *bookService) Delete(ctx context.Context, actor Actor, id string) error {
	bookID, err := utils.ParseUUID(id)
	if err != nil {
		return utils.ErrBadRequest("INVALID_ID")
	}

	existing, err := s.find(ctx, bookID)
	if err != nil {
		return err
	}
	if !actor.canWrite(&existing.Book) {
		return utils.ErrForbidden("FORBIDDEN")
	}

	if err := s.bookRepo.Delete(ctx, bookID); err != nil {
		return s.mapError(err)
	}

	s.log.Info("Book deleted", zap.String("book_id", id), zap.String("actor_id", actor.ID.String()))
	return nil
}

// ==================== HELPER METHODS ====================

func (a Actor) canWrite(book *entity.Book) bool {
	switch a.Role {
	case entity.RoleAdmin:
		return true
	case entity.RolePublisher:
		return book.PublisherID == a.ID
	}
	return false
}

func (s *bookService) find(ctx context.Context, id uuid.UUID) (*entity.BookDetail, error) {
	book, err := s.bookRepo.FindByID(ctx, id)
	if err != nil {
		s.log.Error("Failed to find book", zap.Error(err), zap.String("book_id", id.String()))
		return nil, utils.ErrInternal("INTERNAL_ERROR", err)
	}
	if book == nil {
		return nil, utils.ErrNotFound("BOOK_NOT_FOUND")
	}
	return book, nil
}

func (s *bookService) detail(ctx context.Context, id uuid.UUID) (*response.BookResponse, error) {
	book, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := response.BookToResponse(book)
	return &resp, nil
}

// checkReferences reports every bad reference of the book at once.
func (s *bookService) checkReferences(ctx context.Context, book *entity.Book) error {
	var fields []utils.FieldError

	author, err := s.userRepo.FindByID(ctx, book.AuthorID)
	if err != nil {
		return utils.ErrInternal("INTERNAL_ERROR", err)
	}
	if author == nil || author.Role != entity.RoleAuthor {
		fields = append(fields, utils.FieldError{Field: "author_id", Key: "INVALID_AUTHOR"})
	}

	publisher, err := s.userRepo.FindByID(ctx, book.PublisherID)
	if err != nil {
		return utils.ErrInternal("INTERNAL_ERROR", err)
	}
	if publisher == nil || !publisher.IsPublisher() {
		fields = append(fields, utils.FieldError{Field: "publisher_id", Key: "INVALID_PUBLISHER"})
	}

	category, err := s.categoryRepo.FindByID(ctx, book.CategoryID)
	if err != nil {
		return utils.ErrInternal("INTERNAL_ERROR", err)
	}
	if category == nil {
		fields = append(fields, utils.FieldError{Field: "category_id", Key: "INVALID_CATEGORY"})
	}

	if len(fields) > 0 {
		return utils.ErrValidation(fields)
	}
	return nil
}

func (s *bookService) mapError(err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return utils.ErrNotFound("BOOK_NOT_FOUND")
	case errors.Is(err, repository.ErrInvalidReference):
		// a reference vanished between the check and the write
		return utils.ErrValidation([]utils.FieldError{{Field: "category_id", Key: "INVALID_CATEGORY"}})
	default:
		s.log.Error("Book repository failure", zap.Error(err))
		return utils.ErrInternal("INTERNAL_ERROR", err)
	}
}

func parsePublishingDate(value string) (time.Time, error) {
	d, err := time.Parse(response.DateLayout, value)
	if err != nil {
		return time.Time{}, utils.ErrValidation([]utils.FieldError{{Field: "publishing_date", Key: "validation.date"}})
	}
	return d, nil
}

func applyBookUpdate(book *entity.Book, req *request.BookUpdateRequest) error {
	if req.Title != nil {
		book.Title = *req.Title
	}
	if req.Description != nil {
		book.Description = *req.Description
	}
	if len(req.Images) > 0 {
		book.Images = req.Images
	}
	if req.Price != nil {
		book.Price = *req.Price
	}
	if req.Discount != nil {
		book.Discount = *req.Discount
	}
	if req.PublishingDate != nil {
		d, err := parsePublishingDate(*req.PublishingDate)
		if err != nil {
			return err
		}
		book.PublishingDate = d
	}
	if req.AuthorID != nil {
		book.AuthorID = uuid.MustParse(*req.AuthorID)
	}
	if req.PublisherID != nil {
		book.PublisherID = uuid.MustParse(*req.PublisherID)
	}
	if req.CategoryID != nil {
		book.CategoryID = uuid.MustParse(*req.CategoryID)
	}
	if req.Status != nil {
		book.Status = entity.BookStatus(*req.Status)
	}
	return nil
}

func optionalUUID(s string) *uuid.UUID {
	if s == "" {
		return nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return nil
	}
	return &id
}
