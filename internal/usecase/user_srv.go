package usecase

import (
	"context"
	"strings"

	"reader-hub/internal/data/entity"
	"reader-hub/internal/data/repository"
	"reader-hub/internal/dto/request"
	"reader-hub/internal/dto/response"
	"reader-hub/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type UserService interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*response.UserResponse, error)
	GetAllUsers(ctx context.Context, req *request.PaginatedRequest, role string) (*response.PaginatedResponse[response.UserResponse], error)
	UpdatePublisherStatus(ctx context.Context, userID string, req *request.UpdatePublisherStatusRequest) (*response.UserResponse, error)
}

type userService struct {
	userRepo repository.UserRepository
	log      *zap.Logger
}

func NewUserService(userRepo repository.UserRepository, log *zap.Logger) UserService {
	return &userService{
		userRepo: userRepo,
		log:      log.With(zap.String("service", "user")),
	}
}

func (us *userService) GetProfile(ctx context.Context, userID uuid.UUID) (*response.UserResponse, error) {
	user, err := us.userRepo.FindByID(ctx, userID)
	if err != nil {
		us.log.Error("Failed to find user", zap.Error(err), zap.String("user_id", userID.String()))
		return nil, utils.ErrInternal("INTERNAL_ERROR", err)
	}
	if user == nil {
		return nil, utils.ErrNotFound("USER_NOT_FOUND")
	}

	resp := response.UserToResponse(user)
	return &resp, nil
}

// GetAllUsers lists accounts newest first, optionally filtered by role.
func (us *userService) GetAllUsers(ctx context.Context, req *request.PaginatedRequest, role string) (*response.PaginatedResponse[response.UserResponse], error) {
	// 1. Normalize paging
	if req.Page < 1 {
		req.Page = 1
	}
	perPage := req.PerPage()

	// 2. Role filter
	var filter repository.UserFilter
	if role = strings.TrimSpace(role); role != "" {
		r := entity.UserRole(role)
		if !r.Valid() {
			return nil, utils.ErrValidation([]utils.FieldError{{
				Field: "role", Key: "validation.one_of", Param: "client, author, publisher, admin",
			}})
		}
		filter.Role = &r
	}

	// 3. Query page and total
	users, err := us.userRepo.FindAll(ctx, filter, perPage, req.Offset())
	if err != nil {
		us.log.Error("Failed to get all users", zap.Error(err), zap.Int("page", req.Page), zap.Int("per_page", perPage))
		return nil, utils.ErrInternal("INTERNAL_ERROR", err)
	}
	total, err := us.userRepo.CountAll(ctx, filter)
	if err != nil {
		us.log.Error("Failed to count users", zap.Error(err))
		return nil, utils.ErrInternal("INTERNAL_ERROR", err)
	}

	us.log.Info("Users retrieved",
		zap.Int("count", len(users)),
		zap.Int64("total", total),
		zap.Int("page", req.Page),
		zap.Int("per_page", perPage),
	)

	return response.NewPaginatedResponse(response.UsersToResponse(users), req.Page, perPage, total), nil
}

// UpdatePublisherStatus lets an admin activate or deactivate a publisher.
func (us *userService) UpdatePublisherStatus(ctx context.Context, userID string, req *request.UpdatePublisherStatusRequest) (*response.UserResponse, error) {
	// 1. Parse and validate
	id, err := utils.ParseUUID(userID)
	if err != nil {
		return nil, utils.ErrBadRequest("INVALID_ID")
	}
	if fields := utils.ValidateStruct(req); len(fields) > 0 {
		return nil, utils.ErrValidation(fields)
	}

	// 2. Load target
	user, err := us.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, utils.ErrInternal("INTERNAL_ERROR", err)
	}
	if user == nil {
		return nil, utils.ErrNotFound("USER_NOT_FOUND")
	}
	if !user.IsPublisher() {
		return nil, utils.ErrValidation([]utils.FieldError{{Field: "id", Key: "NOT_A_PUBLISHER"}})
	}

	// 3. Save
	status := entity.PublisherStatus(req.Status)
	user.Status = &status
	if err := us.userRepo.Update(ctx, user); err != nil {
		return nil, utils.ErrInternal("INTERNAL_ERROR", err)
	}

	us.log.Info("Publisher status updated",
		zap.String("user_id", user.ID.String()),
		zap.String("status", req.Status))

	resp := response.UserToResponse(user)
	return &resp, nil
}
