package models

import "time"

// Входные данные создания и частичного обновления сущностей.
// Patch-структуры превращаются в Fields через FieldsOf.

type DonationInput struct {
	OrganizationID string            `json:"organizationId"`
	DonorID        string            `json:"donorId"`
	CategoryID     *string           `json:"categoryId"`
	CenterID       *string           `json:"centerId"`
	BeneficiaryID  *string           `json:"beneficiaryId"`
	Title          string            `json:"title" validate:"required,max=200"`
	Description    string            `json:"description" validate:"max=2000"`
	Quantity       int               `json:"quantity" validate:"gte=0"`
	Condition      DonationCondition `json:"condition" validate:"omitempty,oneof=new like_new good fair"`
	Images         []string          `json:"images"`
	PickupAddress  *string           `json:"pickupAddress"`
	Status         DonationStatus    `json:"status" validate:"omitempty,oneof=pending published claimed in_transit delivered cancelled"`
	IsUrgent       bool              `json:"isUrgent"`
	Tags           []string          `json:"tags"`
}

type DonationPatch struct {
	CategoryID    *string            `db:"category_id" json:"categoryId"`
	CenterID      *string            `db:"center_id" json:"centerId"`
	BeneficiaryID *string            `db:"beneficiary_id" json:"beneficiaryId"`
	Title         *string            `db:"title" json:"title" validate:"omitempty,min=1,max=200"`
	Description   *string            `db:"description" json:"description" validate:"omitempty,max=2000"`
	Quantity      *int               `db:"quantity" json:"quantity" validate:"omitempty,gte=0"`
	Condition     *DonationCondition `db:"condition" json:"condition" validate:"omitempty,oneof=new like_new good fair"`
	Images        *StringList        `db:"images" json:"images"`
	PickupAddress *string            `db:"pickup_address" json:"pickupAddress"`
	Status        *DonationStatus    `db:"status" json:"status" validate:"omitempty,oneof=pending published claimed in_transit delivered cancelled"`
	IsUrgent      *bool              `db:"is_urgent" json:"isUrgent"`
	Tags          *StringList        `db:"tags" json:"tags"`
}

type CenterInput struct {
	OrganizationID string       `json:"organizationId"`
	Name           string       `json:"name" validate:"required,max=200"`
	Address        string       `json:"address" validate:"required,max=500"`
	Phone          *string      `json:"phone"`
	OperatingHours JSONMap      `json:"operatingHours"`
	AcceptedItems  []string     `json:"acceptedItems"`
	Capacity       Capacity     `json:"capacity"`
	Status         CenterStatus `json:"status" validate:"omitempty,oneof=active accepting full inactive"`
	ManagerID      *string      `json:"managerId"`
}

type CenterPatch struct {
	Name           *string       `db:"name" json:"name" validate:"omitempty,min=1,max=200"`
	Address        *string       `db:"address" json:"address" validate:"omitempty,max=500"`
	Phone          *string       `db:"phone" json:"phone"`
	OperatingHours *JSONMap      `db:"operating_hours" json:"operatingHours"`
	AcceptedItems  *StringList   `db:"accepted_items" json:"acceptedItems"`
	Capacity       *Capacity     `db:"capacity" json:"capacity"`
	Status         *CenterStatus `db:"status" json:"status" validate:"omitempty,oneof=active accepting full inactive"`
	ManagerID      *string       `db:"manager_id" json:"managerId"`
}

type DeliveryInput struct {
	OrganizationID      string         `json:"organizationId"`
	DonationID          string         `json:"donationId" validate:"required"`
	BeneficiaryID       string         `json:"beneficiaryId" validate:"required"`
	DriverID            *string        `json:"driverId"`
	PickupAddress       string         `json:"pickupAddress" validate:"max=500"`
	DeliveryAddress     string         `json:"deliveryAddress" validate:"max=500"`
	PickupCoordinates   *GeoPoint      `json:"pickupCoordinates"`
	DeliveryCoordinates *GeoPoint      `json:"deliveryCoordinates"`
	ScheduledPickupAt   *time.Time     `json:"scheduledPickupAt"`
	ScheduledDeliveryAt *time.Time     `json:"scheduledDeliveryAt"`
	Status              DeliveryStatus `json:"status" validate:"omitempty,oneof=pending scheduled in_transit delivered cancelled failed"`
	TrackingNumber      string         `json:"trackingNumber"`
	Notes               *string        `json:"notes"`
}

type DeliveryPatch struct {
	DriverID            *string         `db:"driver_id" json:"driverId"`
	PickupAddress       *string         `db:"pickup_address" json:"pickupAddress" validate:"omitempty,max=500"`
	DeliveryAddress     *string         `db:"delivery_address" json:"deliveryAddress" validate:"omitempty,max=500"`
	PickupCoordinates   *GeoPoint       `db:"pickup_coordinates" json:"pickupCoordinates"`
	DeliveryCoordinates *GeoPoint       `db:"delivery_coordinates" json:"deliveryCoordinates"`
	ScheduledPickupAt   *time.Time      `db:"scheduled_pickup_at" json:"scheduledPickupAt"`
	ScheduledDeliveryAt *time.Time      `db:"scheduled_delivery_at" json:"scheduledDeliveryAt"`
	ActualPickupAt      *time.Time      `db:"actual_pickup_at" json:"actualPickupAt"`
	ActualDeliveryAt    *time.Time      `db:"actual_delivery_at" json:"actualDeliveryAt"`
	Status              *DeliveryStatus `db:"status" json:"status" validate:"omitempty,oneof=pending scheduled in_transit delivered cancelled failed"`
	ProofOfDelivery     *JSONMap        `db:"proof_of_delivery" json:"proofOfDelivery"`
	Notes               *string         `db:"notes" json:"notes"`
}

type ProfilePatch struct {
	FullName *string  `db:"full_name" json:"fullName" validate:"omitempty,min=1,max=200"`
	Phone    *string  `db:"phone" json:"phone" validate:"omitempty,max=32"`
	Address  *JSONMap `db:"address" json:"address"`
}

type BeneficiaryInput struct {
	OrganizationID string  `json:"organizationId"`
	Email          string  `json:"email" validate:"required,email"`
	FullName       string  `json:"fullName" validate:"required,max=200"`
	Phone          *string `json:"phone"`
	Address        JSONMap `json:"address"`
}

type ConversationInput struct {
	ParticipantIDs []string `json:"participantIds" validate:"required,min=1"`
	DonationID     *string  `json:"donationId"`
	DeliveryID     *string  `json:"deliveryId"`
}

type MessageInput struct {
	Content     string   `json:"content" validate:"required,max=5000"`
	Attachments []string `json:"attachments"`
}
