package memstore

import (
	"context"
	"time"

	"donaplus/db"
	"donaplus/models"
)

func (s *Store) CreateCenter(ctx context.Context, c *models.Center) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = newID(c.ID)
	if c.Status == "" {
		c.Status = models.CenterActive
	}
	if c.OperatingHours == nil {
		c.OperatingHours = models.JSONMap{}
	}
	if c.AcceptedItems == nil {
		c.AcceptedItems = models.StringList{}
	}
	c.CreatedAt = s.now()
	c.UpdatedAt = c.CreatedAt
	s.centers.insert(c.ID, *c)
	return nil
}

func (s *Store) GetCenter(ctx context.Context, id string) (*models.Center, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.centers.get(id)
	if !ok {
		return nil, db.ErrNotFound
	}
	return &c, nil
}

func (s *Store) UpdateCenter(ctx context.Context, id string, fields models.Fields) (*models.Center, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.centers.rows[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	c := r.v
	if err := applyFields("centers", &c, fields); err != nil {
		return nil, err
	}
	c.UpdatedAt = s.now()
	r.v = c
	return &c, nil
}

func (s *Store) DeleteCenter(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.centers.rows[id]; !ok {
		return db.ErrNotFound
	}
	delete(s.centers.rows, id)
	// ON DELETE SET NULL
	for _, r := range s.donations.rows {
		if r.v.CenterID != nil && *r.v.CenterID == id {
			r.v.CenterID = nil
		}
	}
	return nil
}

func centerMatch(f models.CenterFilter) func(models.Center) bool {
	return func(c models.Center) bool {
		return eq(f.OrganizationID, c.OrganizationID) &&
			eqPtr(f.ManagerID, c.ManagerID) &&
			eq(string(f.Status), string(c.Status)) &&
			contains(f.Search, c.Name, c.Address)
	}
}

func (s *Store) ListCenters(ctx context.Context, f models.CenterFilter) ([]models.Center, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.centers.list(centerMatch(f), func(c models.Center) time.Time { return c.CreatedAt }, true, f.Page), nil
}

func (s *Store) CountCenters(ctx context.Context, f models.CenterFilter) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.centers.count(centerMatch(f)), nil
}
