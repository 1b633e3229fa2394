package memstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"donaplus/db"
	"donaplus/models"
)

func (s *Store) CreateIdentity(ctx context.Context, i *models.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i.Email = strings.ToLower(strings.TrimSpace(i.Email))
	for _, r := range s.identities.rows {
		if r.v.Email == i.Email {
			return fmt.Errorf("identity %s: %w", i.Email, db.ErrConflict)
		}
	}
	i.ID = newID(i.ID)
	i.CreatedAt = s.now()
	s.identities.insert(i.ID, *i)
	return nil
}

func (s *Store) GetIdentity(ctx context.Context, id string) (*models.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.identities.get(id)
	if !ok {
		return nil, db.ErrNotFound
	}
	return &i, nil
}

func (s *Store) GetIdentityByEmail(ctx context.Context, email string) (*models.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, r := range s.identities.rows {
		if r.v.Email == email {
			i := r.v
			return &i, nil
		}
	}
	return nil, db.ErrNotFound
}

func (s *Store) TouchIdentity(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.identities.rows[id]
	if !ok {
		return db.ErrNotFound
	}
	now := s.now()
	r.v.LastSignInAt = &now
	return nil
}

// ConfirmIdentity отмечает email подтвержденным (в postgres это делает внешний сервис почты)
func (s *Store) ConfirmIdentity(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.identities.rows[id]
	if !ok {
		return db.ErrNotFound
	}
	now := s.now()
	r.v.EmailConfirmedAt = &now
	return nil
}

func (s *Store) CreateOrganization(ctx context.Context, o *models.Organization) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o.ID = newID(o.ID)
	if o.Address == nil {
		o.Address = models.JSONMap{}
	}
	if o.Settings == nil {
		o.Settings = models.JSONMap{}
	}
	o.CreatedAt = s.now()
	o.UpdatedAt = o.CreatedAt
	s.organizations.insert(o.ID, *o)
	return nil
}

func (s *Store) GetOrganization(ctx context.Context, id string) (*models.Organization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.organizations.get(id)
	if !ok {
		return nil, db.ErrNotFound
	}
	return &o, nil
}

func (s *Store) CreateProfile(ctx context.Context, p *models.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = newID(p.ID)
	if _, exists := s.profiles.rows[p.ID]; exists {
		return fmt.Errorf("profile %s: %w", p.ID, db.ErrConflict)
	}
	if p.Role == "" {
		p.Role = models.RoleDonor
	}
	if p.Address == nil {
		p.Address = models.JSONMap{}
	}
	p.CreatedAt = s.now()
	p.UpdatedAt = p.CreatedAt
	s.profiles.insert(p.ID, *p)
	return nil
}

func (s *Store) GetProfile(ctx context.Context, id string) (*models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles.get(id)
	if !ok {
		return nil, db.ErrNotFound
	}
	return &p, nil
}

func (s *Store) UpdateProfile(ctx context.Context, id string, fields models.Fields) (*models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.profiles.rows[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	p := r.v
	if err := applyFields("profiles", &p, fields); err != nil {
		return nil, err
	}
	p.UpdatedAt = s.now()
	r.v = p
	return &p, nil
}

func profileMatch(f models.ProfileFilter) func(models.Profile) bool {
	return func(p models.Profile) bool {
		return eq(f.ID, p.ID) &&
			eqPtr(f.OrganizationID, p.OrganizationID) &&
			eq(string(f.Role), string(p.Role)) &&
			f.Verified.Match(p.IsVerified) &&
			contains(f.Search, p.FullName, p.Email, deref(p.Phone))
	}
}

func (s *Store) ListProfiles(ctx context.Context, f models.ProfileFilter) ([]models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profiles.list(profileMatch(f), func(p models.Profile) time.Time { return p.CreatedAt }, true, f.Page), nil
}

func (s *Store) CountProfiles(ctx context.Context, f models.ProfileFilter) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profiles.count(profileMatch(f)), nil
}

func (s *Store) ListCategories(ctx context.Context, f models.CategoryFilter) ([]models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := s.categories.list(func(c models.Category) bool {
		return !f.ActiveOnly || c.IsActive
	}, func(c models.Category) time.Time { return c.CreatedAt }, false, models.Page{})
	sortCategories(out)
	return out, nil
}
