package resources

import (
	"context"
	"strings"

	"donaplus/db"
	"donaplus/models"
)

type ProfileStore interface {
	ListProfiles(ctx context.Context, f models.ProfileFilter) ([]models.Profile, error)
	CountProfiles(ctx context.Context, f models.ProfileFilter) (int, error)
	GetProfile(ctx context.Context, id string) (*models.Profile, error)
	CreateProfile(ctx context.Context, p *models.Profile) error
	UpdateProfile(ctx context.Context, id string, fields models.Fields) (*models.Profile, error)
}

// Beneficiaries профили с ролью beneficiary
type Beneficiaries struct {
	*collection[models.Profile, models.ProfileFilter]
	store ProfileStore
}

func NewBeneficiaries(store ProfileStore, env Env, f models.ProfileFilter) *Beneficiaries {
	return &Beneficiaries{
		collection: newCollection("beneficiaries", env, f, store.ListProfiles, scopeBeneficiaries).counted(store.CountProfiles),
		store:      store,
	}
}

func scopeBeneficiaries(f models.ProfileFilter, s models.Scope) models.ProfileFilter {
	f.Role = models.RoleBeneficiary
	ownerScope{org: &f.OrganizationID, fallback: &f.ID}.apply(s)
	return f
}

func beneficiaryVisible(p *models.Profile, s models.Scope) bool {
	return p.Role == models.RoleBeneficiary && visibleTo(s, strOrEmpty(p.OrganizationID), p.ID)
}

func beneficiaryManageable(p *models.Profile, s models.Scope) bool {
	return p.Role == models.RoleBeneficiary && s.CanManage(strOrEmpty(p.OrganizationID))
}

func (r *Beneficiaries) Get(ctx context.Context, id string) (*models.Profile, error) {
	return get(ctx, r.collection, id, r.store.GetProfile, beneficiaryVisible)
}

// Create профиль получателя без учетной записи для входа
func (r *Beneficiaries) Create(ctx context.Context, in models.BeneficiaryInput) (*models.Profile, error) {
	m := opCreate.messages("Beneficiary created successfully", "Failed to create beneficiary")
	return mutate(ctx, r.collection, m, func(ctx context.Context, sc models.Scope) (*models.Profile, string, error) {
		orgID := in.OrganizationID
		if orgID == "" {
			orgID = sc.OrganizationID
		}
		if orgID == "" {
			return nil, "", ErrOrganizationRequired
		}
		if !sc.CanManage(orgID) {
			return nil, "", db.ErrNotFound
		}
		p := &models.Profile{
			Email:          strings.ToLower(strings.TrimSpace(in.Email)),
			FullName:       in.FullName,
			Phone:          in.Phone,
			Role:           models.RoleBeneficiary,
			OrganizationID: &orgID,
			Address:        in.Address,
		}
		if p.Address == nil {
			p.Address = models.JSONMap{}
		}
		if err := r.store.CreateProfile(ctx, p); err != nil {
			return nil, "", err
		}
		return p, p.ID, nil
	})
}

func (r *Beneficiaries) Update(ctx context.Context, id string, fields models.Fields) (*models.Profile, error) {
	m := opUpdate.messages("Beneficiary updated successfully", "Failed to update beneficiary")
	return r.update(ctx, id, fields, m)
}

func (r *Beneficiaries) update(ctx context.Context, id string, fields models.Fields, m mutation) (*models.Profile, error) {
	return mutate(ctx, r.collection, m, func(ctx context.Context, sc models.Scope) (*models.Profile, string, error) {
		if err := ensureVisible(ctx, sc, id, r.store.GetProfile, beneficiaryManageable); err != nil {
			return nil, "", err
		}
		p, err := r.store.UpdateProfile(ctx, id, fields)
		if err != nil {
			return nil, "", err
		}
		return p, p.ID, nil
	})
}

func (r *Beneficiaries) Verify(ctx context.Context, id string) (*models.Profile, error) {
	m := opUpdate.messages("Beneficiary verified", "Failed to verify beneficiary")
	return r.update(ctx, id, models.Fields{"is_verified": true, "verified_at": r.env.now()}, m)
}

func (r *Beneficiaries) Unverify(ctx context.Context, id string) (*models.Profile, error) {
	m := opUpdate.messages("Beneficiary verification removed", "Failed to update beneficiary")
	return r.update(ctx, id, models.Fields{"is_verified": false, "verified_at": nil}, m)
}
