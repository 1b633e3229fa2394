package memstore

import (
	"context"
	"fmt"
	"time"

	"donaplus/db"
	"donaplus/models"
)

func (s *Store) CreateDonation(ctx context.Context, d *models.Donation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d.ID = newID(d.ID)
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
	d.ViewCount = 0
	d.CreatedAt = s.now()
	d.UpdatedAt = d.CreatedAt
	d.CategoryName, d.CenterName, d.DonorName = nil, nil, nil
	s.donations.insert(d.ID, *d)
	return nil
}

// joinDonation заполняет поля из связанных таблиц, как LEFT JOIN
func (s *Store) joinDonation(d models.Donation) models.Donation {
	d.CategoryName, d.CenterName, d.DonorName = nil, nil, nil
	if d.CategoryID != nil {
		if c, ok := s.categories.get(*d.CategoryID); ok {
			d.CategoryName = &c.Name
		}
	}
	if d.CenterID != nil {
		if c, ok := s.centers.get(*d.CenterID); ok {
			d.CenterName = &c.Name
		}
	}
	if p, ok := s.profiles.get(d.DonorID); ok {
		d.DonorName = &p.FullName
	}
	return d
}

func (s *Store) GetDonation(ctx context.Context, id string) (*models.Donation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.donations.get(id)
	if !ok {
		return nil, db.ErrNotFound
	}
	d = s.joinDonation(d)
	return &d, nil
}

func (s *Store) UpdateDonation(ctx context.Context, id string, fields models.Fields) (*models.Donation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.donations.rows[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	d := r.v
	if err := applyFields("donations", &d, fields); err != nil {
		return nil, err
	}
	d.UpdatedAt = s.now()
	r.v = d
	d = s.joinDonation(d)
	return &d, nil
}

func (s *Store) DeleteDonation(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.donations.rows[id]; !ok {
		return db.ErrNotFound
	}
	delete(s.donations.rows, id)
	// ON DELETE CASCADE
	for did, r := range s.deliveries.rows {
		if r.v.DonationID == id {
			delete(s.deliveries.rows, did)
		}
	}
	return nil
}

func donationMatch(f models.DonationFilter) func(models.Donation) bool {
	return func(d models.Donation) bool {
		return eq(f.OrganizationID, d.OrganizationID) &&
			eq(f.DonorID, d.DonorID) &&
			eqPtr(f.CategoryID, d.CategoryID) &&
			eqPtr(f.CenterID, d.CenterID) &&
			eqPtr(f.BeneficiaryID, d.BeneficiaryID) &&
			eq(string(f.Status), string(d.Status)) &&
			f.Urgent.Match(d.IsUrgent) &&
			contains(f.Search, d.Title, d.Description)
	}
}

func (s *Store) ListDonations(ctx context.Context, f models.DonationFilter) ([]models.Donation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := s.donations.list(donationMatch(f), func(d models.Donation) time.Time { return d.CreatedAt }, true, f.Page)
	for i := range out {
		out[i] = s.joinDonation(out[i])
	}
	return out, nil
}

func (s *Store) CountDonations(ctx context.Context, f models.DonationFilter) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.donations.count(donationMatch(f)), nil
}

func (s *Store) CreateDelivery(ctx context.Context, d *models.Delivery) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.donations.rows[d.DonationID]; !ok {
		return fmt.Errorf("donation %s: %w", d.DonationID, db.ErrNotFound)
	}
	for _, r := range s.deliveries.rows {
		if r.v.TrackingNumber == d.TrackingNumber {
			return fmt.Errorf("tracking number %s: %w", d.TrackingNumber, db.ErrConflict)
		}
	}
	d.ID = newID(d.ID)
	if d.Status == "" {
		d.Status = models.DeliveryPending
	}
	if d.ProofOfDelivery == nil {
		d.ProofOfDelivery = models.JSONMap{}
	}
	d.CreatedAt = s.now()
	d.UpdatedAt = d.CreatedAt
	d.DonationTitle, d.BeneficiaryName, d.DriverName = nil, nil, nil
	s.deliveries.insert(d.ID, *d)
	return nil
}

func (s *Store) joinDelivery(d models.Delivery) models.Delivery {
	d.DonationTitle, d.BeneficiaryName, d.DriverName = nil, nil, nil
	if dn, ok := s.donations.get(d.DonationID); ok {
		d.DonationTitle = &dn.Title
	}
	if p, ok := s.profiles.get(d.BeneficiaryID); ok {
		d.BeneficiaryName = &p.FullName
	}
	if d.DriverID != nil {
		if p, ok := s.profiles.get(*d.DriverID); ok {
			d.DriverName = &p.FullName
		}
	}
	return d
}

func (s *Store) GetDelivery(ctx context.Context, id string) (*models.Delivery, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.deliveries.get(id)
	if !ok {
		return nil, db.ErrNotFound
	}
	d = s.joinDelivery(d)
	return &d, nil
}

func (s *Store) UpdateDelivery(ctx context.Context, id string, fields models.Fields) (*models.Delivery, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.deliveries.rows[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	d := r.v
	if err := applyFields("deliveries", &d, fields); err != nil {
		return nil, err
	}
	d.UpdatedAt = s.now()
	r.v = d
	d = s.joinDelivery(d)
	return &d, nil
}

func deliveryMatch(f models.DeliveryFilter) func(models.Delivery) bool {
	return func(d models.Delivery) bool {
		return eq(f.OrganizationID, d.OrganizationID) &&
			eq(f.DonationID, d.DonationID) &&
			eq(f.BeneficiaryID, d.BeneficiaryID) &&
			eqPtr(f.DriverID, d.DriverID) &&
			eq(string(f.Status), string(d.Status)) &&
			contains(f.Search, d.TrackingNumber, d.PickupAddress, d.DeliveryAddress)
	}
}

func (s *Store) ListDeliveries(ctx context.Context, f models.DeliveryFilter) ([]models.Delivery, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := s.deliveries.list(deliveryMatch(f), func(d models.Delivery) time.Time { return d.CreatedAt }, true, f.Page)
	for i := range out {
		out[i] = s.joinDelivery(out[i])
	}
	return out, nil
}

func (s *Store) CountDeliveries(ctx context.Context, f models.DeliveryFilter) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.deliveries.count(deliveryMatch(f)), nil
}
