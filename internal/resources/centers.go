package resources

import (
	"context"

	"donaplus/db"
	"donaplus/models"
)

type CenterStore interface {
	ListCenters(ctx context.Context, f models.CenterFilter) ([]models.Center, error)
	CountCenters(ctx context.Context, f models.CenterFilter) (int, error)
	GetCenter(ctx context.Context, id string) (*models.Center, error)
	CreateCenter(ctx context.Context, c *models.Center) error
	UpdateCenter(ctx context.Context, id string, fields models.Fields) (*models.Center, error)
	DeleteCenter(ctx context.Context, id string) error
}

// Centers пункты сбора. Пользователи без организации видят все пункты.
type Centers struct {
	*collection[models.Center, models.CenterFilter]
	store CenterStore
}

func NewCenters(store CenterStore, env Env, f models.CenterFilter) *Centers {
	return &Centers{
		collection: newCollection("centers", env, f, store.ListCenters, scopeCenters).counted(store.CountCenters),
		store:      store,
	}
}

func scopeCenters(f models.CenterFilter, s models.Scope) models.CenterFilter {
	ownerScope{org: &f.OrganizationID}.apply(s)
	return f
}

func centerVisible(c *models.Center, s models.Scope) bool {
	return s.OrganizationID == "" || visibleTo(s, c.OrganizationID, strOrEmpty(c.ManagerID))
}

func centerManageable(c *models.Center, s models.Scope) bool {
	return s.CanManage(c.OrganizationID) || (c.ManagerID != nil && *c.ManagerID == s.UserID)
}

func (r *Centers) Get(ctx context.Context, id string) (*models.Center, error) {
	return get(ctx, r.collection, id, r.store.GetCenter, centerVisible)
}

func (r *Centers) Create(ctx context.Context, in models.CenterInput) (*models.Center, error) {
	m := opCreate.messages("Center created successfully", "Failed to create center")
	return mutate(ctx, r.collection, m, func(ctx context.Context, sc models.Scope) (*models.Center, string, error) {
		c := &models.Center{
			OrganizationID: in.OrganizationID,
			Name:           in.Name,
			Address:        in.Address,
			Phone:          in.Phone,
			OperatingHours: in.OperatingHours,
			AcceptedItems:  models.StringList(in.AcceptedItems),
			Capacity:       in.Capacity.Normalize(),
			Status:         in.Status,
			ManagerID:      in.ManagerID,
		}
		if foreignOrganization(sc, c.OrganizationID) {
			return nil, "", db.ErrNotFound
		}
		if c.OrganizationID == "" {
			c.OrganizationID = sc.OrganizationID
		}
		if c.OrganizationID == "" {
			return nil, "", ErrOrganizationRequired
		}
		if !sc.CanManage(c.OrganizationID) {
			return nil, "", db.ErrNotFound
		}
		if c.Status == "" {
			c.Status = models.CenterActive
		}
		if c.OperatingHours == nil {
			c.OperatingHours = models.JSONMap{}
		}
		if c.AcceptedItems == nil {
			c.AcceptedItems = models.StringList{}
		}
		if err := r.store.CreateCenter(ctx, c); err != nil {
			return nil, "", err
		}
		return c, c.ID, nil
	})
}

// Update пересчитывает процент заполненности, если передана вместимость
func (r *Centers) Update(ctx context.Context, id string, fields models.Fields) (*models.Center, error) {
	m := opUpdate.messages("Center updated successfully", "Failed to update center")
	return mutate(ctx, r.collection, m, func(ctx context.Context, sc models.Scope) (*models.Center, string, error) {
		if err := ensureVisible(ctx, sc, id, r.store.GetCenter, centerManageable); err != nil {
			return nil, "", err
		}
		switch c := fields["capacity"].(type) {
		case models.Capacity:
			fields = fields.Merge(models.Fields{"capacity": c.Normalize()})
		case *models.Capacity:
			if c != nil {
				fields = fields.Merge(models.Fields{"capacity": c.Normalize()})
			}
		}
		c, err := r.store.UpdateCenter(ctx, id, fields)
		if err != nil {
			return nil, "", err
		}
		return c, c.ID, nil
	})
}

func (r *Centers) Delete(ctx context.Context, id string) error {
	m := opDelete.messages("Center deleted successfully", "Failed to delete center")
	_, err := mutate(ctx, r.collection, m, func(ctx context.Context, sc models.Scope) (*models.Center, string, error) {
		c, err := visibleRow(ctx, sc, id, r.store.GetCenter, centerManageable)
		if err != nil {
			return nil, "", err
		}
		return c, id, r.store.DeleteCenter(ctx, id)
	})
	return err
}
