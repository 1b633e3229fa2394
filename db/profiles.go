package db

import (
	"context"
	"fmt"
	"strings"

	"donaplus/models"

	"github.com/google/uuid"
)

// Identity (учетная запись)

func (s *Storage) CreateIdentity(ctx context.Context, i *models.Identity) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	i.Email = strings.ToLower(strings.TrimSpace(i.Email))
	query := `
        INSERT INTO identities (id, email, password_hash, email_confirmed_at)
        VALUES (?, ?, ?, ?)
        RETURNING created_at`
	err := s.db.QueryRowContext(ctx, s.db.Rebind(query), i.ID, i.Email, i.PasswordHash, i.EmailConfirmedAt).
		Scan(&i.CreatedAt)
	if isUniqueViolation(err) {
		return fmt.Errorf("identity %s: %w", i.Email, ErrConflict)
	}
	return err
}

const identitySelect = `SELECT id, email, password_hash, email_confirmed_at, last_sign_in_at, created_at FROM identities`

func (s *Storage) GetIdentity(ctx context.Context, id string) (*models.Identity, error) {
	i := &models.Identity{}
	if err := s.getRow(ctx, i, identitySelect, "id", id); err != nil {
		return nil, err
	}
	return i, nil
}

func (s *Storage) GetIdentityByEmail(ctx context.Context, email string) (*models.Identity, error) {
	i := &models.Identity{}
	if err := s.getRow(ctx, i, identitySelect, "email", strings.ToLower(strings.TrimSpace(email))); err != nil {
		return nil, err
	}
	return i, nil
}

// TouchIdentity фиксирует время последнего входа
func (s *Storage) TouchIdentity(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`UPDATE identities SET last_sign_in_at = NOW() WHERE id = ?`), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Organization (Организация)

func (s *Storage) CreateOrganization(ctx context.Context, o *models.Organization) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	query := `
        INSERT INTO organizations (id, name, email, phone, address, settings)
        VALUES (?, ?, ?, ?, ?, ?)
        RETURNING created_at, updated_at`
	return s.db.QueryRowContext(ctx, s.db.Rebind(query), o.ID, o.Name, o.Email, o.Phone, o.Address, o.Settings).
		Scan(&o.CreatedAt, &o.UpdatedAt)
}

func (s *Storage) GetOrganization(ctx context.Context, id string) (*models.Organization, error) {
	o := &models.Organization{}
	query := `SELECT id, name, email, phone, address, settings, created_at, updated_at FROM organizations`
	if err := s.getRow(ctx, o, query, "id", id); err != nil {
		return nil, err
	}
	return o, nil
}

// Profile (Профиль)

var profileColumns = columnSet("full_name", "phone", "role", "organization_id", "is_verified", "verified_at", "address")

const profileSelect = `
    SELECT id, email, full_name, phone, role, organization_id, is_verified, verified_at, address, created_at, updated_at
    FROM profiles`

func (s *Storage) CreateProfile(ctx context.Context, p *models.Profile) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	query := `
        INSERT INTO profiles (id, email, full_name, phone, role, organization_id, is_verified, verified_at, address)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
        RETURNING created_at, updated_at`
	err := s.db.QueryRowContext(ctx, s.db.Rebind(query),
		p.ID, p.Email, p.FullName, p.Phone, p.Role, p.OrganizationID, p.IsVerified, p.VerifiedAt, p.Address,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if isUniqueViolation(err) {
		return fmt.Errorf("profile %s: %w", p.ID, ErrConflict)
	}
	return err
}

func (s *Storage) GetProfile(ctx context.Context, id string) (*models.Profile, error) {
	p := &models.Profile{}
	if err := s.getRow(ctx, p, profileSelect, "id", id); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Storage) UpdateProfile(ctx context.Context, id string, fields models.Fields) (*models.Profile, error) {
	if err := s.update(ctx, "profiles", id, fields); err != nil {
		return nil, err
	}
	return s.GetProfile(ctx, id)
}

func profileWhere(f models.ProfileFilter) *where {
	w := &where{}
	w.eq("id", f.ID)
	w.eq("organization_id", f.OrganizationID)
	w.eq("role", string(f.Role))
	w.boolean("is_verified", f.Verified)
	w.search(f.Search, "full_name", "email", "phone")
	return w
}

func (s *Storage) ListProfiles(ctx context.Context, f models.ProfileFilter) ([]models.Profile, error) {
	out := []models.Profile{}
	if err := s.selectRows(ctx, &out, profileSelect, profileWhere(f), "created_at DESC", f.Page); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Storage) CountProfiles(ctx context.Context, f models.ProfileFilter) (int, error) {
	return s.count(ctx, `SELECT COUNT(*) FROM profiles`, profileWhere(f))
}

// Category (Справочник)

func (s *Storage) ListCategories(ctx context.Context, f models.CategoryFilter) ([]models.Category, error) {
	w := &where{}
	if f.ActiveOnly {
		w.add("is_active = TRUE")
	}
	out := []models.Category{}
	err := s.selectRows(ctx, &out, `SELECT id, name, slug, sort_order, is_active, created_at FROM categories`, w, "sort_order ASC, name ASC", models.Page{})
	if err != nil {
		return nil, err
	}
	return out, nil
}
