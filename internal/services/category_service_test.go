package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"order-desk/internal/entities"
	"order-desk/internal/integrations/mock"
	"order-desk/internal/repositories"
	apperrors "order-desk/pkg/errors"
)

func TestCategoryService_CachesList(t *testing.T) {
	backend := mock.NewMockProvider()
	backend.Categories = []entities.Category{{ID: 1, Name: "کارت ویزیت", Stages: []string{"Designer", "Printer"}}}
	svc := NewCategoryService(backend, repositories.NewMemoryCacheRepository(), time.Minute, zap.NewNop())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		cat, err := svc.Category(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, []string{"Designer", "Printer"}, cat.Stages)
	}
	assert.Equal(t, 1, backend.CategoryCalls)
}

func TestCategoryService_ReloadsOnUnknownID(t *testing.T) {
	backend := mock.NewMockProvider()
	backend.Categories = []entities.Category{{ID: 1, Name: "a"}}
	svc := NewCategoryService(backend, repositories.NewMemoryCacheRepository(), time.Minute, zap.NewNop())
	ctx := context.Background()

	_, err := svc.Categories(ctx)
	require.NoError(t, err)

	backend.Categories = append(backend.Categories, entities.Category{ID: 2, Name: "b"})
	cat, err := svc.Category(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "b", cat.Name)
	assert.Equal(t, 2, backend.CategoryCalls)

	_, err = svc.Category(ctx, 99)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
