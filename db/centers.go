package db

import (
	"context"

	"donaplus/models"

	"github.com/google/uuid"
)

// Center (Пункт сбора)

var centerColumns = columnSet("name", "address", "phone", "operating_hours", "accepted_items", "capacity", "status", "manager_id")

const centerSelect = `
    SELECT id, organization_id, name, address, phone, operating_hours, accepted_items, capacity, status, manager_id, created_at, updated_at
    FROM centers`

func (s *Storage) CreateCenter(ctx context.Context, c *models.Center) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	query := `
        INSERT INTO centers (id, organization_id, name, address, phone, operating_hours, accepted_items, capacity, status, manager_id)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        RETURNING created_at, updated_at`
	return s.db.QueryRowContext(ctx, s.db.Rebind(query),
		c.ID, c.OrganizationID, c.Name, c.Address, c.Phone, c.OperatingHours, c.AcceptedItems, c.Capacity, c.Status, c.ManagerID,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
}

func (s *Storage) GetCenter(ctx context.Context, id string) (*models.Center, error) {
	c := &models.Center{}
	if err := s.getRow(ctx, c, centerSelect, "id", id); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Storage) UpdateCenter(ctx context.Context, id string, fields models.Fields) (*models.Center, error) {
	if err := s.update(ctx, "centers", id, fields); err != nil {
		return nil, err
	}
	return s.GetCenter(ctx, id)
}

func (s *Storage) DeleteCenter(ctx context.Context, id string) error {
	return s.deleteRow(ctx, "centers", id)
}

func centerWhere(f models.CenterFilter) *where {
	w := &where{}
	w.eq("organization_id", f.OrganizationID)
	w.eq("manager_id", f.ManagerID)
	w.eq("status", string(f.Status))
	w.search(f.Search, "name", "address")
	return w
}

func (s *Storage) ListCenters(ctx context.Context, f models.CenterFilter) ([]models.Center, error) {
	out := []models.Center{}
	if err := s.selectRows(ctx, &out, centerSelect, centerWhere(f), "created_at DESC", f.Page); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Storage) CountCenters(ctx context.Context, f models.CenterFilter) (int, error) {
	return s.count(ctx, `SELECT COUNT(*) FROM centers`, centerWhere(f))
}
