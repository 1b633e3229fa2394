package memstore

import (
	"sort"

	"donaplus/models"
)

// DefaultCategories справочник категорий, совпадает с миграцией 00002
func DefaultCategories() []models.Category {
	names := []struct{ id, name, slug string }{
		{"6c1c5f0e-0b1a-4a51-9d3e-000000000001", "Clothing", "clothing"},
		{"6c1c5f0e-0b1a-4a51-9d3e-000000000002", "Food", "food"},
		{"6c1c5f0e-0b1a-4a51-9d3e-000000000003", "Furniture", "furniture"},
		{"6c1c5f0e-0b1a-4a51-9d3e-000000000004", "Electronics", "electronics"},
		{"6c1c5f0e-0b1a-4a51-9d3e-000000000005", "Toys", "toys"},
		{"6c1c5f0e-0b1a-4a51-9d3e-000000000006", "Books", "books"},
		{"6c1c5f0e-0b1a-4a51-9d3e-000000000007", "Hygiene", "hygiene"},
		{"6c1c5f0e-0b1a-4a51-9d3e-000000000008", "Other", "other"},
	}
	out := make([]models.Category, len(names))
	for i, n := range names {
		out[i] = models.Category{ID: n.id, Name: n.name, Slug: n.slug, SortOrder: i + 1, IsActive: true}
	}
	return out
}

// SeedCategories добавляет категории, существующие id перезаписываются
func (s *Store) SeedCategories(categories ...models.Category) {
	if len(categories) == 0 {
		categories = DefaultCategories()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range categories {
		c.ID = newID(c.ID)
		if c.CreatedAt.IsZero() {
			c.CreatedAt = s.now()
		}
		s.categories.insert(c.ID, c)
	}
}

func sortCategories(out []models.Category) {
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		return out[i].Name < out[j].Name
	})
}
