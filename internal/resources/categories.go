package resources

import (
	"context"

	"donaplus/models"
)

type CategoryStore interface {
	ListCategories(ctx context.Context, f models.CategoryFilter) ([]models.Category, error)
}

// Categories справочник категорий, только чтение
type Categories struct {
	*collection[models.Category, models.CategoryFilter]
}

// NewCategories по умолчанию только активные категории
func NewCategories(store CategoryStore, env Env) *Categories {
	return &Categories{
		collection: newCollection("categories", env, models.CategoryFilter{ActiveOnly: true}, store.ListCategories,
			func(f models.CategoryFilter, _ models.Scope) models.CategoryFilter { return f }),
	}
}
