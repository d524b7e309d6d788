package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/padeliga/league-system/models"
	"github.com/padeliga/league-system/repositories"
	"github.com/padeliga/league-system/storage"
)

type CategoryService interface {
	CreateCategory(ctx context.Context, seasonID int, input CreateCategoryInput) (*models.Category, error)
	GetCategoryByID(ctx context.Context, id int) (*models.Category, error)
	ListCategoriesBySeason(ctx context.Context, seasonID int) ([]models.Category, error)
	UpdateCategory(ctx context.Context, id int, input UpdateCategoryInput) (*models.Category, error)
	DeleteCategory(ctx context.Context, id int) error
	UploadCategoryPoster(ctx context.Context, id int, file io.Reader, contentType string) (*models.Category, error)
}

type CreateCategoryInput struct {
	Name          string
	MaxPlayers    int
	PlayoffSize   *int
	PlayoffFormat *string
}

type UpdateCategoryInput struct {
	Name          models.Optional[string]
	MaxPlayers    models.Optional[int]
	PlayoffSize   models.Optional[int]
	PlayoffFormat models.Optional[string]
}

type categoryService struct {
	categoryRepo repositories.CategoryRepository
	seasonRepo   repositories.SeasonRepository
	uploader     storage.FileUploader
	logger       *slog.Logger
}

func NewCategoryService(
	categoryRepo repositories.CategoryRepository,
	seasonRepo repositories.SeasonRepository,
	uploader storage.FileUploader,
	logger *slog.Logger,
) CategoryService {
	return &categoryService{
		categoryRepo: categoryRepo,
		seasonRepo:   seasonRepo,
		uploader:     uploader,
		logger:       logger,
	}
}

func (s *categoryService) CreateCategory(ctx context.Context, seasonID int, input CreateCategoryInput) (*models.Category, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrCategoryNameRequired
	}
	if input.MaxPlayers <= 0 {
		return nil, ErrCategoryInvalidCapacity
	}
	if _, err := s.seasonRepo.GetByID(ctx, seasonID); err != nil {
		if errors.Is(err, repositories.ErrSeasonNotFound) {
			return nil, ErrSeasonNotFound
		}
		return nil, fmt.Errorf("failed to check season %d: %w", seasonID, err)
	}

	category := &models.Category{
		SeasonID:      seasonID,
		Name:          name,
		MaxPlayers:    input.MaxPlayers,
		PlayoffSize:   input.PlayoffSize,
		PlayoffFormat: input.PlayoffFormat,
	}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		switch {
		case errors.Is(err, repositories.ErrCategoryNameConflict):
			return nil, ErrCategoryNameConflict
		case errors.Is(err, repositories.ErrCategoryInvalidSeason):
			return nil, ErrSeasonNotFound
		default:
			return nil, fmt.Errorf("failed to create category: %w", err)
		}
	}
	return category, nil
}

func (s *categoryService) GetCategoryByID(ctx context.Context, id int) (*models.Category, error) {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrCategoryNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to get category by id %d: %w", id, err)
	}
	populateCategoryPosterURL(category, s.uploader)
	return category, nil
}

func (s *categoryService) ListCategoriesBySeason(ctx context.Context, seasonID int) ([]models.Category, error) {
	categories, err := s.categoryRepo.ListBySeason(ctx, seasonID)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories for season %d: %w", seasonID, err)
	}
	for i := range categories {
		populateCategoryPosterURL(&categories[i], s.uploader)
	}
	return categories, nil
}

func (s *categoryService) UpdateCategory(ctx context.Context, id int, input UpdateCategoryInput) (*models.Category, error) {
	category, err := s.GetCategoryByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name.Set {
		name := strings.TrimSpace(input.Name.Value)
		if input.Name.Null || name == "" {
			return nil, ErrCategoryNameRequired
		}
		category.Name = name
	}
	if input.MaxPlayers.HasValue() {
		if input.MaxPlayers.Value <= 0 {
			return nil, ErrCategoryInvalidCapacity
		}
		category.MaxPlayers = input.MaxPlayers.Value
	}
	if input.PlayoffSize.Set {
		category.PlayoffSize = input.PlayoffSize.Ptr()
	}
	if input.PlayoffFormat.Set {
		category.PlayoffFormat = input.PlayoffFormat.Ptr()
	}

	if err := s.categoryRepo.Update(ctx, category); err != nil {
		switch {
		case errors.Is(err, repositories.ErrCategoryNotFound):
			return nil, ErrCategoryNotFound
		case errors.Is(err, repositories.ErrCategoryNameConflict):
			return nil, ErrCategoryNameConflict
		default:
			return nil, fmt.Errorf("failed to update category %d: %w", id, err)
		}
	}
	populateCategoryPosterURL(category, s.uploader)
	return category, nil
}

func (s *categoryService) DeleteCategory(ctx context.Context, id int) error {
	err := s.categoryRepo.Delete(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrCategoryNotFound):
			return ErrCategoryNotFound
		case errors.Is(err, repositories.ErrCategoryInUse):
			return repositories.ErrCategoryInUse
		default:
			return fmt.Errorf("failed to delete category %d: %w", id, err)
		}
	}
	return nil
}

func (s *categoryService) UploadCategoryPoster(ctx context.Context, id int, file io.Reader, contentType string) (*models.Category, error) {
	category, err := s.GetCategoryByID(ctx, id)
	if err != nil {
		return nil, err
	}

	ext, err := GetExtensionFromContentType(contentType)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidationFailed, err)
	}

	oldKey := category.PosterKey
	newKey := fmt.Sprintf("categories/%d/poster_%d%s", id, time.Now().UnixNano(), ext)

	result, err := s.uploader.Upload(ctx, newKey, contentType, file)
	if err != nil {
		return nil, fmt.Errorf("failed to upload category poster: %w", err)
	}

	if err := s.categoryRepo.UpdatePosterKey(ctx, id, &result.Key); err != nil {
		// Файл загружен, но ключ не сохранен — убираем осиротевший объект.
		if delErr := s.uploader.Delete(ctx, result.Key); delErr != nil {
			s.logger.WarnContext(ctx, "failed to delete orphaned poster",
				slog.String("key", result.Key), slog.Any("error", delErr))
		}
		if errors.Is(err, repositories.ErrCategoryNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to save poster key for category %d: %w", id, err)
	}

	if oldKey != nil && *oldKey != "" && *oldKey != result.Key {
		if err := s.uploader.Delete(ctx, *oldKey); err != nil {
			s.logger.WarnContext(ctx, "failed to delete previous poster",
				slog.String("key", *oldKey), slog.Any("error", err))
		}
	}

	category.PosterKey = &result.Key
	populateCategoryPosterURL(category, s.uploader)
	return category, nil
}
