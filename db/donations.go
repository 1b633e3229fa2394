package db

import (
	"context"

	"donaplus/models"

	"github.com/google/uuid"
)

// Donation (Пожертвование)

var donationColumns = columnSet(
	"category_id", "center_id", "beneficiary_id", "title", "description", "quantity",
	"condition", "images", "pickup_address", "status", "is_urgent", "tags", "view_count",
)

const donationSelect = `
    SELECT d.id, d.organization_id, d.donor_id, d.category_id, d.center_id, d.beneficiary_id,
           d.title, d.description, d.quantity, d.condition, d.images, d.pickup_address,
           d.status, d.is_urgent, d.view_count, d.tags, d.created_at, d.updated_at,
           cat.name AS category_name, c.name AS center_name, p.full_name AS donor_name
    FROM donations d
    LEFT JOIN categories cat ON cat.id = d.category_id
    LEFT JOIN centers c ON c.id = d.center_id
    LEFT JOIN profiles p ON p.id = d.donor_id`

func (s *Storage) CreateDonation(ctx context.Context, d *models.Donation) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	query := `
        INSERT INTO donations (id, organization_id, donor_id, category_id, center_id, beneficiary_id,
                               title, description, quantity, condition, images, pickup_address, status, is_urgent, tags)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        RETURNING view_count, created_at, updated_at`
	return s.db.QueryRowContext(ctx, s.db.Rebind(query),
		d.ID, d.OrganizationID, d.DonorID, d.CategoryID, d.CenterID, d.BeneficiaryID,
		d.Title, d.Description, d.Quantity, d.Condition, d.Images, d.PickupAddress, d.Status, d.IsUrgent, d.Tags,
	).Scan(&d.ViewCount, &d.CreatedAt, &d.UpdatedAt)
}

func (s *Storage) GetDonation(ctx context.Context, id string) (*models.Donation, error) {
	d := &models.Donation{}
	if err := s.getRow(ctx, d, donationSelect, "d.id", id); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Storage) UpdateDonation(ctx context.Context, id string, fields models.Fields) (*models.Donation, error) {
	if err := s.update(ctx, "donations", id, fields); err != nil {
		return nil, err
	}
	return s.GetDonation(ctx, id)
}

func (s *Storage) DeleteDonation(ctx context.Context, id string) error {
	return s.deleteRow(ctx, "donations", id)
}

func donationWhere(f models.DonationFilter) *where {
	w := &where{}
	w.eq("d.organization_id", f.OrganizationID)
	w.eq("d.donor_id", f.DonorID)
	w.eq("d.category_id", f.CategoryID)
	w.eq("d.center_id", f.CenterID)
	w.eq("d.beneficiary_id", f.BeneficiaryID)
	w.eq("d.status", string(f.Status))
	w.boolean("d.is_urgent", f.Urgent)
	w.search(f.Search, "d.title", "d.description")
	return w
}

func (s *Storage) ListDonations(ctx context.Context, f models.DonationFilter) ([]models.Donation, error) {
	out := []models.Donation{}
	if err := s.selectRows(ctx, &out, donationSelect, donationWhere(f), "d.created_at DESC", f.Page); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Storage) CountDonations(ctx context.Context, f models.DonationFilter) (int, error) {
	return s.count(ctx, `SELECT COUNT(*) FROM donations d`, donationWhere(f))
}

// Delivery (Доставка)

var deliveryColumns = columnSet(
	"driver_id", "pickup_address", "delivery_address", "pickup_coordinates", "delivery_coordinates",
	"scheduled_pickup_at", "scheduled_delivery_at", "actual_pickup_at", "actual_delivery_at",
	"status", "proof_of_delivery", "notes",
)

const deliverySelect = `
    SELECT dl.id, dl.organization_id, dl.donation_id, dl.beneficiary_id, dl.driver_id,
           dl.pickup_address, dl.delivery_address, dl.pickup_coordinates, dl.delivery_coordinates,
           dl.scheduled_pickup_at, dl.scheduled_delivery_at, dl.actual_pickup_at, dl.actual_delivery_at,
           dl.status, dl.tracking_number, dl.proof_of_delivery, dl.notes, dl.created_at, dl.updated_at,
           d.title AS donation_title, b.full_name AS beneficiary_name, dr.full_name AS driver_name
    FROM deliveries dl
    LEFT JOIN donations d ON d.id = dl.donation_id
    LEFT JOIN profiles b ON b.id = dl.beneficiary_id
    LEFT JOIN profiles dr ON dr.id = dl.driver_id`

func (s *Storage) CreateDelivery(ctx context.Context, d *models.Delivery) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	query := `
        INSERT INTO deliveries (id, organization_id, donation_id, beneficiary_id, driver_id,
                                pickup_address, delivery_address, pickup_coordinates, delivery_coordinates,
                                scheduled_pickup_at, scheduled_delivery_at, status, tracking_number, proof_of_delivery, notes)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        RETURNING created_at, updated_at`
	return s.db.QueryRowContext(ctx, s.db.Rebind(query),
		d.ID, d.OrganizationID, d.DonationID, d.BeneficiaryID, d.DriverID,
		d.PickupAddress, d.DeliveryAddress, d.PickupCoordinates, d.DeliveryCoordinates,
		d.ScheduledPickupAt, d.ScheduledDeliveryAt, d.Status, d.TrackingNumber, d.ProofOfDelivery, d.Notes,
	).Scan(&d.CreatedAt, &d.UpdatedAt)
}

func (s *Storage) GetDelivery(ctx context.Context, id string) (*models.Delivery, error) {
	d := &models.Delivery{}
	if err := s.getRow(ctx, d, deliverySelect, "dl.id", id); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Storage) UpdateDelivery(ctx context.Context, id string, fields models.Fields) (*models.Delivery, error) {
	if err := s.update(ctx, "deliveries", id, fields); err != nil {
		return nil, err
	}
	return s.GetDelivery(ctx, id)
}

func deliveryWhere(f models.DeliveryFilter) *where {
	w := &where{}
	w.eq("dl.organization_id", f.OrganizationID)
	w.eq("dl.donation_id", f.DonationID)
	w.eq("dl.beneficiary_id", f.BeneficiaryID)
	w.eq("dl.driver_id", f.DriverID)
	w.eq("dl.status", string(f.Status))
	w.search(f.Search, "dl.tracking_number", "dl.pickup_address", "dl.delivery_address")
	return w
}

func (s *Storage) ListDeliveries(ctx context.Context, f models.DeliveryFilter) ([]models.Delivery, error) {
	out := []models.Delivery{}
	if err := s.selectRows(ctx, &out, deliverySelect, deliveryWhere(f), "dl.created_at DESC", f.Page); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Storage) CountDeliveries(ctx context.Context, f models.DeliveryFilter) (int, error) {
	return s.count(ctx, `SELECT COUNT(*) FROM deliveries dl`, deliveryWhere(f))
}
