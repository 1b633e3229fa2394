package models

// BoolFilter трехзначный фильтр: не задан / true / false
type BoolFilter int8

const (
	Any BoolFilter = iota
	OnlyTrue
	OnlyFalse
)

// Match проверяет значение по фильтру
func (b BoolFilter) Match(v bool) bool {
	switch b {
	case OnlyTrue:
		return v
	case OnlyFalse:
		return !v
	}
	return true
}

// ParseBoolFilter "true"/"false", все остальное Any
func ParseBoolFilter(s string) BoolFilter {
	switch s {
	case "true", "1", "yes":
		return OnlyTrue
	case "false", "0", "no":
		return OnlyFalse
	}
	return Any
}

// Page пагинация, Limit 0 означает без ограничения
type Page struct {
	Limit  int
	Offset int
}

type DonationFilter struct {
	OrganizationID string
	DonorID        string
	CategoryID     string
	CenterID       string
	BeneficiaryID  string
	Status         DonationStatus
	Urgent         BoolFilter
	Search         string
	Page
}

type CenterFilter struct {
	OrganizationID string
	ManagerID      string
	Status         CenterStatus
	Search         string
	Page
}

type DeliveryFilter struct {
	OrganizationID string
	DonationID     string
	BeneficiaryID  string
	DriverID       string
	Status         DeliveryStatus
	Search         string
	Page
}

type ProfileFilter struct {
	ID             string
	OrganizationID string
	Role           Role
	Verified       BoolFilter
	Search         string
	Page
}

type CategoryFilter struct {
	ActiveOnly bool
}

type ConversationFilter struct {
	ParticipantID string
	DonationID    string
	DeliveryID    string
	Page
}

type MessageFilter struct {
	ConversationID string
	Page
}

// Scope производные права текущего пользователя
type Scope struct {
	UserID         string
	Role           Role
	OrganizationID string
}

// Global super_admin видит все организации
func (s Scope) Global() bool {
	return s.Role == RoleSuperAdmin
}

// CanManage может ли пользователь изменять данные организации
func (s Scope) CanManage(orgID string) bool {
	if s.Global() {
		return true
	}
	if s.Role != RoleOrgAdmin && s.Role != RoleOrgMember {
		return false
	}
	return s.OrganizationID != "" && s.OrganizationID == orgID
}
