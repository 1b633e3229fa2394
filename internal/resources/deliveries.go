package resources

import (
	"context"
	"fmt"
	"time"

	"donaplus/db"
	"donaplus/models"
)

type DeliveryStore interface {
	ListDeliveries(ctx context.Context, f models.DeliveryFilter) ([]models.Delivery, error)
	CountDeliveries(ctx context.Context, f models.DeliveryFilter) (int, error)
	GetDelivery(ctx context.Context, id string) (*models.Delivery, error)
	CreateDelivery(ctx context.Context, d *models.Delivery) error
	UpdateDelivery(ctx context.Context, id string, fields models.Fields) (*models.Delivery, error)
	GetDonation(ctx context.Context, id string) (*models.Donation, error)
}

type Deliveries struct {
	*collection[models.Delivery, models.DeliveryFilter]
	store DeliveryStore
}

func NewDeliveries(store DeliveryStore, env Env, f models.DeliveryFilter) *Deliveries {
	return &Deliveries{
		collection: newCollection("deliveries", env, f, store.ListDeliveries, scopeDeliveries).counted(store.CountDeliveries),
		store:      store,
	}
}

func scopeDeliveries(f models.DeliveryFilter, s models.Scope) models.DeliveryFilter {
	ownerScope{org: &f.OrganizationID, driver: &f.DriverID, benef: &f.BeneficiaryID, fallback: &f.BeneficiaryID}.apply(s)
	return f
}

func deliveryVisible(d *models.Delivery, s models.Scope) bool {
	return visibleTo(s, d.OrganizationID, d.BeneficiaryID, strOrEmpty(d.DriverID))
}

// TrackingNumber номер вида DN-<год>-<6 цифр> от текущего времени
func TrackingNumber(now time.Time) string {
	return fmt.Sprintf("DN-%d-%06d", now.Year(), now.UnixMilli()%1000000)
}

func (r *Deliveries) Get(ctx context.Context, id string) (*models.Delivery, error) {
	return get(ctx, r.collection, id, r.store.GetDelivery, deliveryVisible)
}

func (r *Deliveries) Create(ctx context.Context, in models.DeliveryInput) (*models.Delivery, error) {
	m := opCreate.messages("Delivery created successfully", "Failed to create delivery")
	return mutate(ctx, r.collection, m, func(ctx context.Context, sc models.Scope) (*models.Delivery, string, error) {
		d := &models.Delivery{
			OrganizationID:      in.OrganizationID,
			DonationID:          in.DonationID,
			BeneficiaryID:       in.BeneficiaryID,
			DriverID:            in.DriverID,
			PickupAddress:       in.PickupAddress,
			DeliveryAddress:     in.DeliveryAddress,
			PickupCoordinates:   in.PickupCoordinates,
			DeliveryCoordinates: in.DeliveryCoordinates,
			ScheduledPickupAt:   in.ScheduledPickupAt,
			ScheduledDeliveryAt: in.ScheduledDeliveryAt,
			Status:              in.Status,
			TrackingNumber:      in.TrackingNumber,
			Notes:               in.Notes,
			ProofOfDelivery:     models.JSONMap{},
		}
		if foreignOrganization(sc, d.OrganizationID) {
			return nil, "", db.ErrNotFound
		}
		if d.OrganizationID == "" {
			d.OrganizationID = sc.OrganizationID
		}
		if d.OrganizationID == "" {
			return nil, "", ErrOrganizationRequired
		}
		if err := ensureVisible(ctx, sc, d.DonationID, r.store.GetDonation, sameOrganization(d.OrganizationID)); err != nil {
			return nil, "", err
		}
		if d.TrackingNumber == "" {
			d.TrackingNumber = TrackingNumber(r.env.now())
		}
		if d.Status == "" {
			d.Status = models.DeliveryPending
		}
		if err := r.store.CreateDelivery(ctx, d); err != nil {
			return nil, "", err
		}
		return d, d.ID, nil
	})
}

func (r *Deliveries) Update(ctx context.Context, id string, fields models.Fields) (*models.Delivery, error) {
	m := opUpdate.messages("Delivery updated successfully", "Failed to update delivery")
	return mutate(ctx, r.collection, m, func(ctx context.Context, sc models.Scope) (*models.Delivery, string, error) {
		if err := ensureVisible(ctx, sc, id, r.store.GetDelivery, deliveryVisible); err != nil {
			return nil, "", err
		}
		d, err := r.store.UpdateDelivery(ctx, id, fields)
		if err != nil {
			return nil, "", err
		}
		return d, d.ID, nil
	})
}

// UpdateStatus статус вместе с дополнительными полями, статус перекрывает extra
func (r *Deliveries) UpdateStatus(ctx context.Context, id string, status models.DeliveryStatus, extra models.Fields) (*models.Delivery, error) {
	return r.Update(ctx, id, extra.Merge(models.Fields{"status": status}))
}

// Advance переводит доставку на следующий шаг и отмечает фактическое время забора/доставки
func (r *Deliveries) Advance(ctx context.Context, id string) (*models.Delivery, error) {
	m := opUpdate.messages("Delivery status updated", "Failed to update delivery")
	return mutate(ctx, r.collection, m, func(ctx context.Context, sc models.Scope) (*models.Delivery, string, error) {
		d, err := r.store.GetDelivery(ctx, id)
		if err != nil {
			return nil, "", err
		}
		if !deliveryVisible(d, sc) {
			return nil, "", db.ErrNotFound
		}
		next, ok := d.Status.Next()
		if !ok {
			return nil, "", fmt.Errorf("delivery in status %q: %w", d.Status, ErrFinalStatus)
		}
		fields := models.Fields{"status": next}
		switch next {
		case models.DeliveryInTransit:
			fields["actual_pickup_at"] = r.env.now()
		case models.DeliveryDelivered:
			fields["actual_delivery_at"] = r.env.now()
		}
		out, err := r.store.UpdateDelivery(ctx, id, fields)
		if err != nil {
			return nil, "", err
		}
		return out, out.ID, nil
	})
}
