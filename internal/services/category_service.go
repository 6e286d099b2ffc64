package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"order-desk/internal/entities"
	"order-desk/internal/integrations"
	"order-desk/internal/repositories"
	apperrors "order-desk/pkg/errors"
)

const categoriesCacheKey = "categories:all"

// DefaultCategoryTTL - сколько живёт кеш категорий, если не задано иное.
const DefaultCategoryTTL = 10 * time.Minute

type CategoryServiceInterface interface {
	Categories(ctx context.Context) ([]entities.Category, error)
	Category(ctx context.Context, id int64) (entities.Category, error)
	InvalidateCategoriesCache(ctx context.Context) error
}

// CategoryService отдаёт категории с этапами из кеша, загружая их с сервера при промахе.
type CategoryService struct {
	backend   integrations.OrderBackend
	cacheRepo repositories.CacheRepositoryInterface
	cacheTTL  time.Duration
	logger    *zap.Logger
}

func NewCategoryService(
	backend integrations.OrderBackend,
	cacheRepo repositories.CacheRepositoryInterface,
	cacheTTL time.Duration,
	logger *zap.Logger,
) CategoryServiceInterface {
	return &CategoryService{
		backend:   backend,
		cacheRepo: cacheRepo,
		cacheTTL:  cacheTTL,
		logger:    logger.Named("categories"),
	}
}

func (s *CategoryService) Categories(ctx context.Context) ([]entities.Category, error) {
	var categories []entities.Category

	// 1. Попытка получить данные из кеша
	cached, errGet := s.cacheRepo.Get(ctx, categoriesCacheKey)
	if errGet == nil {
		if err := json.Unmarshal([]byte(cached), &categories); err == nil {
			s.logger.Debug("CategoryService: Категории найдены в кеше", zap.Int("count", len(categories)))
			return categories, nil
		} else {
			s.logger.Warn("CategoryService: Ошибка при десериализации категорий из кеша", zap.Error(err))
		}
	} else {
		s.logger.Debug("CategoryService: Категорий нет в кеше, запрос к серверу", zap.Error(errGet))
	}

	// 2. Получаем с сервера
	categories, err := s.backend.ListCategories(ctx)
	if err != nil {
		s.logger.Error("CategoryService: Не удалось загрузить категории", zap.Error(err))
		return nil, err
	}

	// 3. Кешируем
	if len(categories) > 0 {
		raw, errMarshal := json.Marshal(categories)
		if errMarshal != nil {
			s.logger.Error("CategoryService: Не удалось сериализовать категории для кеширования", zap.Error(errMarshal))
		} else if errSet := s.cacheRepo.Set(ctx, categoriesCacheKey, string(raw), s.cacheTTL); errSet != nil {
			s.logger.Error("CategoryService: Не удалось сохранить категории в кеш", zap.Error(errSet))
		}
	}
	return categories, nil
}

// Category ищет категорию по ID. Если её нет в кеше, кеш сбрасывается и список загружается заново один раз.
func (s *CategoryService) Category(ctx context.Context, id int64) (entities.Category, error) {
	for attempt := 0; attempt < 2; attempt++ {
		list, err := s.Categories(ctx)
		if err != nil {
			return entities.Category{}, err
		}
		for _, c := range list {
			if c.ID == id {
				return c, nil
			}
		}
		if attempt == 0 {
			if err := s.InvalidateCategoriesCache(ctx); err != nil {
				break
			}
		}
	}
	return entities.Category{}, fmt.Errorf("%w: категория %d", apperrors.ErrNotFound, id)
}

func (s *CategoryService) InvalidateCategoriesCache(ctx context.Context) error {
	if err := s.cacheRepo.Del(ctx, categoriesCacheKey); err != nil {
		s.logger.Error("CategoryService: Ошибка инвалидации кеша категорий", zap.Error(err))
		return err
	}
	s.logger.Info("CategoryService: Кеш категорий инвалидирован")
	return nil
}
