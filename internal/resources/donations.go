package resources

import (
	"context"
	"fmt"

	"donaplus/db"
	"donaplus/models"
)

type DonationStore interface {
	ListDonations(ctx context.Context, f models.DonationFilter) ([]models.Donation, error)
	CountDonations(ctx context.Context, f models.DonationFilter) (int, error)
	GetDonation(ctx context.Context, id string) (*models.Donation, error)
	CreateDonation(ctx context.Context, d *models.Donation) error
	UpdateDonation(ctx context.Context, id string, fields models.Fields) (*models.Donation, error)
	DeleteDonation(ctx context.Context, id string) error
	GetCenter(ctx context.Context, id string) (*models.Center, error)
}

// Donations пожертвования, видимые текущему пользователю
type Donations struct {
	*collection[models.Donation, models.DonationFilter]
	store DonationStore
}

func NewDonations(store DonationStore, env Env, f models.DonationFilter) *Donations {
	return &Donations{
		collection: newCollection("donations", env, f, store.ListDonations, scopeDonations).counted(store.CountDonations),
		store:      store,
	}
}

func scopeDonations(f models.DonationFilter, s models.Scope) models.DonationFilter {
	ownerScope{org: &f.OrganizationID, donor: &f.DonorID, benef: &f.BeneficiaryID, fallback: &f.DonorID}.apply(s)
	return f
}

func donationVisible(d *models.Donation, s models.Scope) bool {
	return visibleTo(s, d.OrganizationID, d.DonorID, strOrEmpty(d.BeneficiaryID))
}

func (r *Donations) Get(ctx context.Context, id string) (*models.Donation, error) {
	return get(ctx, r.collection, id, r.store.GetDonation, donationVisible)
}

// Create организация и донор берутся из сессии, если не заданы; без организации
// в сессии она определяется по пункту сбора
func (r *Donations) Create(ctx context.Context, in models.DonationInput) (*models.Donation, error) {
	m := opCreate.messages("Donation created successfully", "Failed to create donation")
	return mutate(ctx, r.collection, m, func(ctx context.Context, sc models.Scope) (*models.Donation, string, error) {
		d := &models.Donation{
			OrganizationID: in.OrganizationID,
			DonorID:        in.DonorID,
			CategoryID:     in.CategoryID,
			CenterID:       in.CenterID,
			BeneficiaryID:  in.BeneficiaryID,
			Title:          in.Title,
			Description:    in.Description,
			Quantity:       in.Quantity,
			Condition:      in.Condition,
			Images:         models.StringList(in.Images),
			PickupAddress:  in.PickupAddress,
			Status:         in.Status,
			IsUrgent:       in.IsUrgent,
			Tags:           models.StringList(in.Tags),
		}
		if foreignOrganization(sc, d.OrganizationID) {
			return nil, "", db.ErrNotFound
		}
		if d.OrganizationID == "" {
			d.OrganizationID = sc.OrganizationID
		}
		if d.OrganizationID == "" && d.CenterID != nil {
			center, err := r.store.GetCenter(ctx, *d.CenterID)
			if err != nil {
				return nil, "", fmt.Errorf("resolve center organization: %w", err)
			}
			d.OrganizationID = center.OrganizationID
		}
		if d.OrganizationID == "" {
			return nil, "", ErrOrganizationRequired
		}
		if d.DonorID == "" {
			d.DonorID = sc.UserID
		}
		if d.Status == "" {
			d.Status = models.DonationPending
		}
		if d.Condition == "" {
			d.Condition = models.ConditionGood
		}
		if d.Images == nil {
			d.Images = models.StringList{}
		}
		if d.Tags == nil {
			d.Tags = models.StringList{}
		}
		if err := r.store.CreateDonation(ctx, d); err != nil {
			return nil, "", err
		}
		return d, d.ID, nil
	})
}

func (r *Donations) Update(ctx context.Context, id string, fields models.Fields) (*models.Donation, error) {
	m := opUpdate.messages("Donation updated successfully", "Failed to update donation")
	return mutate(ctx, r.collection, m, func(ctx context.Context, sc models.Scope) (*models.Donation, string, error) {
		if err := ensureVisible(ctx, sc, id, r.store.GetDonation, donationVisible); err != nil {
			return nil, "", err
		}
		d, err := r.store.UpdateDonation(ctx, id, fields)
		if err != nil {
			return nil, "", err
		}
		return d, d.ID, nil
	})
}

// SetStatus частный случай Update
func (r *Donations) SetStatus(ctx context.Context, id string, status models.DonationStatus) (*models.Donation, error) {
	return r.Update(ctx, id, models.Fields{"status": status})
}

func (r *Donations) Delete(ctx context.Context, id string) error {
	m := opDelete.messages("Donation deleted successfully", "Failed to delete donation")
	_, err := mutate(ctx, r.collection, m, func(ctx context.Context, sc models.Scope) (*models.Donation, string, error) {
		d, err := visibleRow(ctx, sc, id, r.store.GetDonation, donationVisible)
		if err != nil {
			return nil, "", err
		}
		return d, id, r.store.DeleteDonation(ctx, id)
	})
	return err
}
