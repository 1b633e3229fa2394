package models

// Role роль пользователя
type Role string

const (
	RoleSuperAdmin  Role = "super_admin"
	RoleOrgAdmin    Role = "org_admin"
	RoleOrgMember   Role = "org_member"
	RoleDriver      Role = "driver"
	RoleBeneficiary Role = "beneficiary"
	RoleDonor       Role = "donor"
)

func (r Role) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleOrgAdmin, RoleOrgMember, RoleDriver, RoleBeneficiary, RoleDonor:
		return true
	}
	return false
}

type CenterStatus string

const (
	CenterActive    CenterStatus = "active"
	CenterAccepting CenterStatus = "accepting"
	CenterFull      CenterStatus = "full"
	CenterInactive  CenterStatus = "inactive"
)

type DonationCondition string

const (
	ConditionNew     DonationCondition = "new"
	ConditionLikeNew DonationCondition = "like_new"
	ConditionGood    DonationCondition = "good"
	ConditionFair    DonationCondition = "fair"
)

// DonationStatus: pending → published → claimed → in_transit → delivered, cancelled в любой момент до delivered
type DonationStatus string

const (
	DonationPending   DonationStatus = "pending"
	DonationPublished DonationStatus = "published"
	DonationClaimed   DonationStatus = "claimed"
	DonationInTransit DonationStatus = "in_transit"
	DonationDelivered DonationStatus = "delivered"
	DonationCancelled DonationStatus = "cancelled"
)

var donationPipeline = []DonationStatus{
	DonationPending, DonationPublished, DonationClaimed, DonationInTransit, DonationDelivered,
}

// Next возвращает следующий шаг конвейера, false для конечных статусов
func (s DonationStatus) Next() (DonationStatus, bool) {
	for i := 0; i < len(donationPipeline)-1; i++ {
		if donationPipeline[i] == s {
			return donationPipeline[i+1], true
		}
	}
	return "", false
}

// DeliveryStatus: pending → scheduled → in_transit → delivered, cancelled/failed как боковые выходы
type DeliveryStatus string

const (
	DeliveryPending   DeliveryStatus = "pending"
	DeliveryScheduled DeliveryStatus = "scheduled"
	DeliveryInTransit DeliveryStatus = "in_transit"
	DeliveryDelivered DeliveryStatus = "delivered"
	DeliveryCancelled DeliveryStatus = "cancelled"
	DeliveryFailed    DeliveryStatus = "failed"
)

var deliveryPipeline = []DeliveryStatus{
	DeliveryPending, DeliveryScheduled, DeliveryInTransit, DeliveryDelivered,
}

func (s DeliveryStatus) Next() (DeliveryStatus, bool) {
	for i := 0; i < len(deliveryPipeline)-1; i++ {
		if deliveryPipeline[i] == s {
			return deliveryPipeline[i+1], true
		}
	}
	return "", false
}
