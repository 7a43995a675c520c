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

	"go.uber.org/zap"
)

type CategoryService interface {
	Create(ctx context.Context, req *request.CategoryRequest) (*response.CategoryResponse, error)
	GetAll(ctx context.Context) ([]response.CategoryResponse, error)
	GetByID(ctx context.Context, id string) (*response.CategoryResponse, error)
	Update(ctx context.Context, id string, req *request.CategoryUpdateRequest) (*response.CategoryResponse, error)
	Delete(ctx context.Context, id string) error
}

type categoryService struct {
	categoryRepo repository.CategoryRepository
	log          *zap.Logger
}

func NewCategoryService(categoryRepo repository.CategoryRepository, log *zap.Logger) CategoryService {
	return &categoryService{
		categoryRepo: categoryRepo,
		log:          log.With(zap.String("service", "category")),
	}
}

func (s *categoryService) Create(ctx context.Context, req *request.CategoryRequest) (*response.CategoryResponse, error) {
	// 1. Validate
	req.Name = strings.TrimSpace(req.Name)
	if fields := utils.ValidateStruct(req); len(fields) > 0 {
		return nil, utils.ErrValidation(fields)
	}

	// 2. Build entity
	appropriate := true
	if req.Appropriate != nil {
		appropriate = *req.Appropriate
	}
	category := &entity.Category{
		Base:        entity.NewBase(time.Now()),
		Name:        req.Name,
		Description: req.Description,
		Image:       req.Image,
		Appropriate: appropriate,
	}

	// 3. Save
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, s.mapError(err)
	}

	s.log.Info("Category created", zap.String("category_id", category.ID.String()), zap.String("name", category.Name))
	resp := response.CategoryToResponse(category)
	return &resp, nil
}

func (s *categoryService) GetAll(ctx context.Context) ([]response.CategoryResponse, error) {
	categories, err := s.categoryRepo.FindAll(ctx)
	if err != nil {
		s.log.Error("Failed to list categories", zap.Error(err))
		return nil, utils.ErrInternal("INTERNAL_ERROR", err)
	}
	return response.CategoriesToResponse(categories), nil
}

func (s *categoryService) GetByID(ctx context.Context, id string) (*response.CategoryResponse, error) {
	category, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := response.CategoryToResponse(category)
	return &resp, nil
}

func (s *categoryService) Update(ctx context.Context, id string, req *request.CategoryUpdateRequest) (*response.CategoryResponse, error) {
	// 1. Validate
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		req.Name = &name
	}
	if fields := utils.ValidateStruct(req); len(fields) > 0 {
		return nil, utils.ErrValidation(fields)
	}

	// 2. Load
	category, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	// 3. Apply present fields
	if req.Name != nil {
		category.Name = *req.Name
	}
	if req.Description != nil {
		category.Description = req.Description
	}
	if req.Image != nil {
		category.Image = *req.Image
	}
	if req.Appropriate != nil {
		category.Appropriate = *req.Appropriate
	}
	category.UpdatedAt = time.Now()

	// 4. Save
	if err := s.categoryRepo.Update(ctx, category); err != nil {
		return nil, s.mapError(err)
	}

	s.log.Info("Category updated", zap.String("category_id", category.ID.String()))
	resp := response.CategoryToResponse(category)
	return &resp, nil
}

func (s *categoryService) Delete(ctx context.Context, id string) error {
	categoryID, err := utils.ParseUUID(id)
	if err != nil {
		return utils.ErrBadRequest("INVALID_ID")
	}

	if err := s.categoryRepo.Delete(ctx, categoryID); err != nil {
		return s.mapError(err)
	}

	s.log.Info("Category deleted", zap.String("category_id", id))
	return nil
}

func (s *categoryService) find(ctx context.Context, id string) (*entity.Category, error) {
	categoryID, err := utils.ParseUUID(id)
	if err != nil {
		return nil, utils.ErrBadRequest("INVALID_ID")
	}

	category, err := s.categoryRepo.FindByID(ctx, categoryID)
	if err != nil {
		s.log.Error("Failed to find category", zap.Error(err), zap.String("category_id", id))
		return nil, utils.ErrInternal("INTERNAL_ERROR", err)
	}
	if category == nil {
		return nil, utils.ErrNotFound("CATEGORY_NOT_FOUND")
	}
	return category, nil
}

func (s *categoryService) mapError(err error) error {
	switch {
	case errors.Is(err, repository.ErrDuplicateName):
		return utils.ErrDuplicate("CATEGORY_EXISTS")
	case errors.Is(err, repository.ErrNotFound):
		return utils.ErrNotFound("CATEGORY_NOT_FOUND")
	case errors.Is(err, repository.ErrStillReferenced):
		return utils.ErrConflict("CATEGORY_IN_USE", err)
	default:
		s.log.Error("Category repository failure", zap.Error(err))
		return utils.ErrInternal("INTERNAL_ERROR", err)
	}
}
