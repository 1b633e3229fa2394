package models

import "time"

// Сущность Организации (тенант)
type Organization struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name" validate:"required,max=200"`
	Email     *string   `db:"email" json:"email,omitempty" validate:"omitempty,email"`
	Phone     *string   `db:"phone" json:"phone,omitempty"`
	Address   JSONMap   `db:"address" json:"address"`
	Settings  JSONMap   `db:"settings" json:"settings"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// Учетная запись подсистемы аутентификации, хеш пароля наружу не отдается
type Identity struct {
	ID               string     `db:"id" json:"id"`
	Email            string     `db:"email" json:"email"`
	PasswordHash     string     `db:"password_hash" json:"-"`
	EmailConfirmedAt *time.Time `db:"email_confirmed_at" json:"emailConfirmedAt,omitempty"`
	LastSignInAt     *time.Time `db:"last_sign_in_at" json:"lastSignInAt,omitempty"`
	CreatedAt        time.Time  `db:"created_at" json:"createdAt"`
}

// AuthSession серверная запись входа, cookie хранит только token
type AuthSession struct {
	Token      string    `db:"token" json:"-"`
	IdentityID string    `db:"identity_id" json:"identityId"`
	ExpiresAt  time.Time `db:"expires_at" json:"expiresAt"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
}

// Профиль пользователя, id совпадает с id учетной записи
type Profile struct {
	ID             string     `db:"id" json:"id"`
	Email          string     `db:"email" json:"email"`
	FullName       string     `db:"full_name" json:"fullName"`
	Phone          *string    `db:"phone" json:"phone,omitempty"`
	Role           Role       `db:"role" json:"role"`
	OrganizationID *string    `db:"organization_id" json:"organizationId,omitempty"`
	IsVerified     bool       `db:"is_verified" json:"isVerified"`
	VerifiedAt     *time.Time `db:"verified_at" json:"verifiedAt,omitempty"`
	Address        JSONMap    `db:"address" json:"address"`
	CreatedAt      time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updatedAt"`
}

// Справочник категорий, только чтение
type Category struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Slug      string    `db:"slug" json:"slug"`
	SortOrder int       `db:"sort_order" json:"sortOrder"`
	IsActive  bool      `db:"is_active" json:"isActive"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// Пункт сбора
type Center struct {
	ID             string       `db:"id" json:"id"`
	OrganizationID string       `db:"organization_id" json:"organizationId"`
	Name           string       `db:"name" json:"name"`
	Address        string       `db:"address" json:"address"`
	Phone          *string      `db:"phone" json:"phone,omitempty"`
	OperatingHours JSONMap      `db:"operating_hours" json:"operatingHours"`
	AcceptedItems  StringList   `db:"accepted_items" json:"acceptedItems"`
	Capacity       Capacity     `db:"capacity" json:"capacity"`
	Status         CenterStatus `db:"status" json:"status"`
	ManagerID      *string      `db:"manager_id" json:"managerId,omitempty"`
	CreatedAt      time.Time    `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time    `db:"updated_at" json:"updatedAt"`
}

// Пожертвование, центральная сущность процесса
type Donation struct {
	ID             string            `db:"id" json:"id"`
	OrganizationID string            `db:"organization_id" json:"organizationId"`
	DonorID        string            `db:"donor_id" json:"donorId"`
	CategoryID     *string           `db:"category_id" json:"categoryId,omitempty"`
	CenterID       *string           `db:"center_id" json:"centerId,omitempty"`
	BeneficiaryID  *string           `db:"beneficiary_id" json:"beneficiaryId,omitempty"`
	Title          string            `db:"title" json:"title"`
	Description    string            `db:"description" json:"description"`
	Quantity       int               `db:"quantity" json:"quantity"`
	Condition      DonationCondition `db:"condition" json:"condition"`
	Images         StringList        `db:"images" json:"images"`
	PickupAddress  *string           `db:"pickup_address" json:"pickupAddress,omitempty"`
	Status         DonationStatus    `db:"status" json:"status"`
	IsUrgent       bool              `db:"is_urgent" json:"isUrgent"`
	ViewCount      int               `db:"view_count" json:"viewCount"`
	Tags           StringList        `db:"tags" json:"tags"`
	CreatedAt      time.Time         `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time         `db:"updated_at" json:"updatedAt"`

	// Поля из связанных таблиц (только чтение)
	CategoryName *string `db:"category_name" json:"categoryName,omitempty"`
	CenterName   *string `db:"center_name" json:"centerName,omitempty"`
	DonorName    *string `db:"donor_name" json:"donorName,omitempty"`
}

// Доставка пожертвования получателю
type Delivery struct {
	ID                  string         `db:"id" json:"id"`
	OrganizationID      string         `db:"organization_id" json:"organizationId"`
	DonationID          string         `db:"donation_id" json:"donationId"`
	BeneficiaryID       string         `db:"beneficiary_id" json:"beneficiaryId"`
	DriverID            *string        `db:"driver_id" json:"driverId,omitempty"`
	PickupAddress       string         `db:"pickup_address" json:"pickupAddress"`
	DeliveryAddress     string         `db:"delivery_address" json:"deliveryAddress"`
	PickupCoordinates   *GeoPoint      `db:"pickup_coordinates" json:"pickupCoordinates,omitempty"`
	DeliveryCoordinates *GeoPoint      `db:"delivery_coordinates" json:"deliveryCoordinates,omitempty"`
	ScheduledPickupAt   *time.Time     `db:"scheduled_pickup_at" json:"scheduledPickupAt,omitempty"`
	ScheduledDeliveryAt *time.Time     `db:"scheduled_delivery_at" json:"scheduledDeliveryAt,omitempty"`
	ActualPickupAt      *time.Time     `db:"actual_pickup_at" json:"actualPickupAt,omitempty"`
	ActualDeliveryAt    *time.Time     `db:"actual_delivery_at" json:"actualDeliveryAt,omitempty"`
	Status              DeliveryStatus `db:"status" json:"status"`
	TrackingNumber      string         `db:"tracking_number" json:"trackingNumber"`
	ProofOfDelivery     JSONMap        `db:"proof_of_delivery" json:"proofOfDelivery"`
	Notes               *string        `db:"notes" json:"notes,omitempty"`
	CreatedAt           time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt           time.Time      `db:"updated_at" json:"updatedAt"`

	DonationTitle   *string `db:"donation_title" json:"donationTitle,omitempty"`
	BeneficiaryName *string `db:"beneficiary_name" json:"beneficiaryName,omitempty"`
	DriverName      *string `db:"driver_name" json:"driverName,omitempty"`
}

// Переписка между участниками
type Conversation struct {
	ID             string     `db:"id" json:"id"`
	OrganizationID *string    `db:"organization_id" json:"organizationId,omitempty"`
	ParticipantIDs StringList `db:"participant_ids" json:"participantIds"`
	DonationID     *string    `db:"donation_id" json:"donationId,omitempty"`
	DeliveryID     *string    `db:"delivery_id" json:"deliveryId,omitempty"`
	LastMessageAt  *time.Time `db:"last_message_at" json:"lastMessageAt,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"createdAt"`
}

// Сообщение в переписке
type Message struct {
	ID             string     `db:"id" json:"id"`
	ConversationID string     `db:"conversation_id" json:"conversationId"`
	SenderID       string     `db:"sender_id" json:"senderId"`
	Content        string     `db:"content" json:"content"`
	Attachments    StringList `db:"attachments" json:"attachments"`
	IsRead         bool       `db:"is_read" json:"isRead"`
	IsEdited       bool       `db:"is_edited" json:"isEdited"`
	CreatedAt      time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updatedAt"`
}

// Сводная статистика для дашборда
type Stats struct {
	TotalDonations        int `json:"totalDonations"`
	PublishedDonations    int `json:"publishedDonations"`
	ClaimedDonations      int `json:"claimedDonations"`
	DeliveredDonations    int `json:"deliveredDonations"`
	UrgentDonations       int `json:"urgentDonations"`
	TotalCenters          int `json:"totalCenters"`
	ActiveCenters         int `json:"activeCenters"`
	FullCenters           int `json:"fullCenters"`
	TotalDeliveries       int `json:"totalDeliveries"`
	PendingDeliveries     int `json:"pendingDeliveries"`
	InTransitDeliveries   int `json:"inTransitDeliveries"`
	CompletedDeliveries   int `json:"completedDeliveries"`
	TotalBeneficiaries    int `json:"totalBeneficiaries"`
	VerifiedBeneficiaries int `json:"verifiedBeneficiaries"`
	TotalDonors           int `json:"totalDonors"`
}
