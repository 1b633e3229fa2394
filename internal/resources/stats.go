package resources

import (
	"context"
	"fmt"

	"donaplus/models"

	"golang.org/x/sync/errgroup"
)

type StatsStore interface {
	CountDonations(ctx context.Context, f models.DonationFilter) (int, error)
	CountCenters(ctx context.Context, f models.CenterFilter) (int, error)
	CountDeliveries(ctx context.Context, f models.DeliveryFilter) (int, error)
	CountProfiles(ctx context.Context, f models.ProfileFilter) (int, error)
}

// StatsFilter ограничения счетчиков, заполняются из сессии
type StatsFilter struct {
	OrganizationID string
	DonorID        string
	DriverID       string
	BeneficiaryID  string
	ProfileID      string
}

// Stats сводные счетчики панели, без операций записи
type Stats struct {
	*collection[models.Stats, StatsFilter]
	store StatsStore
}

func NewStats(store StatsStore, env Env) *Stats {
	s := &Stats{store: store}
	s.collection = newCollection("stats", env, StatsFilter{}, s.count, scopeStats)
	return s
}

func scopeStats(f StatsFilter, s models.Scope) StatsFilter {
	ownerScope{org: &f.OrganizationID, donor: &f.DonorID, driver: &f.DriverID, benef: &f.BeneficiaryID, fallback: &f.DonorID}.apply(s)
	if !s.Global() && f.OrganizationID == "" {
		f.ProfileID = s.UserID
	}
	return f
}

// Value последние загруженные счетчики, нули до первой загрузки
func (s *Stats) Value() models.Stats {
	items := s.Items()
	if len(items) == 0 {
		return models.Stats{}
	}
	return items[0]
}

func (s *Stats) count(ctx context.Context, f StatsFilter) ([]models.Stats, error) {
	var out models.Stats
	g, ctx := errgroup.WithContext(ctx)

	donation := models.DonationFilter{OrganizationID: f.OrganizationID, DonorID: f.DonorID, BeneficiaryID: f.BeneficiaryID}
	delivery := models.DeliveryFilter{OrganizationID: f.OrganizationID, DriverID: f.DriverID, BeneficiaryID: f.BeneficiaryID}
	center := models.CenterFilter{OrganizationID: f.OrganizationID}
	profile := models.ProfileFilter{ID: f.ProfileID, OrganizationID: f.OrganizationID}

	counter := func(dst *int, name string, fn func(context.Context) (int, error)) {
		g.Go(func() error {
			n, err := fn(ctx)
			if err != nil {
				return fmt.Errorf("count %s: %w", name, err)
			}
			*dst = n
			return nil
		})
	}
	donations := func(mod func(*models.DonationFilter)) func(context.Context) (int, error) {
		f := donation
		mod(&f)
		return func(ctx context.Context) (int, error) { return s.store.CountDonations(ctx, f) }
	}
	centers := func(st models.CenterStatus) func(context.Context) (int, error) {
		f := center
		f.Status = st
		return func(ctx context.Context) (int, error) { return s.store.CountCenters(ctx, f) }
	}
	deliveries := func(st models.DeliveryStatus) func(context.Context) (int, error) {
		f := delivery
		f.Status = st
		return func(ctx context.Context) (int, error) { return s.store.CountDeliveries(ctx, f) }
	}
	profiles := func(role models.Role, verified models.BoolFilter) func(context.Context) (int, error) {
		f := profile
		f.Role, f.Verified = role, verified
		return func(ctx context.Context) (int, error) { return s.store.CountProfiles(ctx, f) }
	}
	status := func(st models.DonationStatus) func(*models.DonationFilter) {
		return func(f *models.DonationFilter) { f.Status = st }
	}

	counter(&out.TotalDonations, "donations", donations(func(*models.DonationFilter) {}))
	counter(&out.PublishedDonations, "published donations", donations(status(models.DonationPublished)))
	counter(&out.ClaimedDonations, "claimed donations", donations(status(models.DonationClaimed)))
	counter(&out.DeliveredDonations, "delivered donations", donations(status(models.DonationDelivered)))
	counter(&out.UrgentDonations, "urgent donations", donations(func(f *models.DonationFilter) { f.Urgent = models.OnlyTrue }))
	counter(&out.TotalCenters, "centers", centers(""))
	counter(&out.ActiveCenters, "active centers", centers(models.CenterActive))
	counter(&out.FullCenters, "full centers", centers(models.CenterFull))
	counter(&out.TotalDeliveries, "deliveries", deliveries(""))
	counter(&out.PendingDeliveries, "pending deliveries", deliveries(models.DeliveryPending))
	counter(&out.InTransitDeliveries, "in-transit deliveries", deliveries(models.DeliveryInTransit))
	counter(&out.CompletedDeliveries, "delivered deliveries", deliveries(models.DeliveryDelivered))
	counter(&out.TotalBeneficiaries, "beneficiaries", profiles(models.RoleBeneficiary, models.Any))
	counter(&out.VerifiedBeneficiaries, "verified beneficiaries", profiles(models.RoleBeneficiary, models.OnlyTrue))
	counter(&out.TotalDonors, "donors", profiles(models.RoleDonor, models.Any))

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return []models.Stats{out}, nil
}
